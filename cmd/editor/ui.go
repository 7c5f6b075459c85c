package main

import (
	"bytes"
	"fmt"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// BuildEditorUI lays out the status panel top-left and the brush palette on
// the right edge.
func BuildEditorUI(palette *Palette) (*ebitenui.UI, *StatusPanel, *PalettePanel, error) {
	ui := &ebitenui.UI{}

	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("editor: load font: %w", err)
	}
	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}
	ui.PrimaryTheme = newEditorTheme(&fontFace)

	status := buildStatusPanel(&fontFace)
	pal := buildPalettePanel(ui.PrimaryTheme, &fontFace, palette)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	status.Container.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionStart,
		VerticalPosition:   widget.AnchorLayoutPositionStart,
	}
	pal.Container.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionEnd,
		VerticalPosition:   widget.AnchorLayoutPositionStart,
		StretchVertical:    true,
	}
	root.AddChild(status.Container)
	root.AddChild(pal.Container)
	ui.Container = root

	return ui, status, pal, nil
}
