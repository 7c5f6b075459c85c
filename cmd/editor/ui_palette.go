package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// PalettePanel lists the brushes and mirrors the keyboard-driven Palette.
type PalettePanel struct {
	Container *widget.Container
	list      *widget.List
	entries   []any
	offset    *widget.Text
	palette   *Palette

	// suppressEvents keeps Sync's programmatic selection from reaching the
	// palette as a click.
	suppressEvents bool
}

func buildPalettePanel(theme *widget.Theme, fontFace *text.Face, palette *Palette) *PalettePanel {
	pp := &PalettePanel{palette: palette}
	pp.Container = widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(widget.WidgetOpts.MinSize(200, 0)),
		widget.ContainerOpts.BackgroundImage(theme.PanelTheme.BackgroundImage),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 8, Right: 8}),
		)),
	)

	pp.Container.AddChild(widget.NewLabel(
		widget.LabelOpts.Text("Brushes", fontFace, &widget.LabelColor{Idle: color.White, Disabled: color.Gray{Y: 140}}),
	))

	for _, e := range palette.Entries() {
		pp.entries = append(pp.entries, e)
	}
	pp.list = widget.NewList(
		widget.ListOpts.Entries(pp.entries),
		widget.ListOpts.EntryLabelFunc(func(e any) string {
			if entry, ok := e.(PaletteEntry); ok {
				return entry.Name
			}
			return ""
		}),
		widget.ListOpts.EntrySelectedHandler(func(args *widget.ListEntrySelectedEventArgs) {
			if pp.suppressEvents {
				return
			}
			if entry, ok := args.Entry.(PaletteEntry); ok {
				pp.palette.Choose(entry.Index)
			}
		}),
	)
	pp.list.GetWidget().MinHeight = 160
	pp.Container.AddChild(pp.list)

	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
		)),
	)
	row.AddChild(widget.NewButton(
		widget.ButtonOpts.Image(theme.ButtonTheme.Image),
		widget.ButtonOpts.Text("-", fontFace, theme.ButtonTheme.TextColor),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			pp.palette.Nudge(-1)
		}),
	))
	row.AddChild(widget.NewButton(
		widget.ButtonOpts.Image(theme.ButtonTheme.Image),
		widget.ButtonOpts.Text("+", fontFace, theme.ButtonTheme.TextColor),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			pp.palette.Nudge(1)
		}),
	))
	pp.offset = widget.NewText(widget.TextOpts.Text("", fontFace, panelMuted))
	row.AddChild(pp.offset)
	pp.Container.AddChild(row)

	pp.Sync()
	return pp
}

// Sync moves the list selection and the offset readout to match keyboard
// changes made to the palette.
func (pp *PalettePanel) Sync() {
	idx := pp.palette.Index()
	if idx >= 0 && idx < len(pp.entries) && pp.list.SelectedEntry() != pp.entries[idx] {
		pp.suppressEvents = true
		pp.list.SetSelectedEntry(pp.entries[idx])
		pp.suppressEvents = false
	}
	if pp.palette.static || len(pp.palette.defs) == 0 {
		pp.offset.Label = fmt.Sprintf("tile %d", pp.palette.tile)
	} else {
		pp.offset.Label = fmt.Sprintf("offset %d", pp.palette.offset)
	}
}
