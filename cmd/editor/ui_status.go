package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/tile"
	"github.com/milk9111/tileed/visibility"
)

const statusLines = 6

// StatusPanel shows document, clock and tracker state.
type StatusPanel struct {
	Container *widget.Container
	lines     []*widget.Text

	message      string
	messageUntil time.Time
}

func buildStatusPanel(fontFace *text.Face) *StatusPanel {
	sp := &StatusPanel{}
	sp.Container = widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(solidNineSlice(panelBackground)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 6, Bottom: 6, Left: 8, Right: 8}),
		)),
	)
	for i := 0; i < statusLines; i++ {
		t := widget.NewText(widget.TextOpts.Text("", fontFace, panelText))
		sp.lines = append(sp.lines, t)
		sp.Container.AddChild(t)
	}
	return sp
}

// Flash shows msg for a few seconds.
func (sp *StatusPanel) Flash(msg string) {
	sp.message = msg
	sp.messageUntil = time.Now().Add(3 * time.Second)
}

type statusState struct {
	doc       document.Snapshot
	index     int
	count     int
	tick      int64
	suspended bool
	preview   bool
	stats     visibility.Stats
	visible   bool
	brush     string
	hover     string
}

func (sp *StatusPanel) Set(st statusState) {
	lines := []string{
		fmt.Sprintf("[%d/%d] %s  v%d  origin %.1f,%.1f  zoom %.2f", st.index+1, st.count, st.doc.Name, st.doc.Version, st.doc.Viewport.X, st.doc.Viewport.Y, st.doc.Viewport.Zoom),
		fmt.Sprintf("tick %d  visible %v  suspended %v  preview %v", st.tick, st.visible, st.suspended, st.preview),
		fmt.Sprintf("scans %d  skipped %d  docs %d (%d animating)", st.stats.Scans, st.stats.Skipped, st.stats.Documents, st.stats.VisibleDocuments),
		"brush " + st.brush,
		st.hover,
	}
	if sp.message != "" && time.Now().Before(sp.messageUntil) {
		lines = append(lines, sp.message)
	}
	sp.show(lines)
}

// Clear blanks the panel when no document is open.
func (sp *StatusPanel) Clear() {
	sp.show([]string{"no documents open (ctrl+n for a new one)"})
}

func (sp *StatusPanel) show(lines []string) {
	for i, t := range sp.lines {
		if i < len(lines) {
			t.Label = lines[i]
		} else {
			t.Label = ""
		}
	}
}

// describeCell is the hover line for a cell.
func describeCell(x, y int, cell tile.Cell, catalog *anim.Catalog, tick int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%d,%d) %s", x, y, cell)
	if !tile.IsAnimated(cell) {
		return b.String()
	}
	def, frameTile, ok := catalog.Resolve(cell, tick)
	if !ok {
		b.WriteString(" undefined")
		return b.String()
	}
	fmt.Fprintf(&b, " %s tile %d", def.Name, frameTile)
	return b.String()
}
