package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

var (
	panelBackground = color.RGBA{24, 24, 32, 0xd8}
	panelText       = color.RGBA{235, 235, 235, 255}
	panelMuted      = color.Gray{Y: 150}
)

func solidNineSlice(c color.Color) *image.NineSlice {
	return image.NewNineSliceColor(c)
}

func newEditorTheme(fontFace *text.Face) *widget.Theme {
	return &widget.Theme{
		ListTheme: &widget.ListParams{
			EntryFace: fontFace,
			EntryColor: &widget.ListEntryColor{
				Unselected:          panelText,
				Selected:            color.Black,
				DisabledUnselected:  color.Gray{Y: 128},
				DisabledSelected:    color.Gray{Y: 64},
				SelectingBackground: color.RGBA{120, 150, 210, 255},
				SelectedBackground:  color.RGBA{170, 200, 255, 255},
			},
			ScrollContainerImage: &widget.ScrollContainerImage{
				Idle: solidNineSlice(color.RGBA{36, 36, 48, 255}),
				Mask: solidNineSlice(color.RGBA{36, 36, 48, 255}),
			},
		},
		PanelTheme: &widget.PanelParams{
			BackgroundImage: solidNineSlice(panelBackground),
		},
		ButtonTheme: &widget.ButtonParams{
			Image: &widget.ButtonImage{
				Idle:    solidNineSlice(color.RGBA{90, 90, 110, 255}),
				Hover:   solidNineSlice(color.RGBA{120, 120, 145, 255}),
				Pressed: solidNineSlice(color.RGBA{70, 70, 90, 255}),
			},
			TextFace: fontFace,
			TextColor: &widget.ButtonTextColor{
				Idle: panelText,
			},
		},
	}
}
