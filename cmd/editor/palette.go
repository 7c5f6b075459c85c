package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/tile"
)

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// PaletteEntry is one row of the palette list.
type PaletteEntry struct {
	Index int
	Name  string
}

// Palette is the current brush: one of the catalog's animations with a frame
// offset, or a static tile.
type Palette struct {
	defs     []anim.Definition
	selected int
	offset   int
	static   bool
	tile     int
}

func NewPalette(catalog *anim.Catalog) *Palette {
	return &Palette{defs: catalog.Definitions(), tile: 1}
}

func (p *Palette) Update() {
	for i, k := range digitKeys {
		if i < len(p.defs) && inpututil.IsKeyJustPressed(k) {
			p.selected = i
			p.static = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit0) {
		p.static = !p.static
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		p.step(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		p.step(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		p.Nudge(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		p.Nudge(1)
	}
}

// Choose selects entry i of Entries. The last entry is the static tile.
func (p *Palette) Choose(i int) {
	switch {
	case i == len(p.defs):
		p.static = true
	case i >= 0 && i < len(p.defs):
		p.selected = i
		p.static = false
	}
}

// Index is the entry Choose last selected.
func (p *Palette) Index() int {
	if p.static || len(p.defs) == 0 {
		return len(p.defs)
	}
	return p.selected
}

// Entries lists the brush choices: every animation, then the static tile.
func (p *Palette) Entries() []PaletteEntry {
	out := make([]PaletteEntry, 0, len(p.defs)+1)
	for i, d := range p.defs {
		out = append(out, PaletteEntry{Index: i, Name: fmt.Sprintf("%d. %s", d.ID, d.Name)})
	}
	return append(out, PaletteEntry{Index: len(p.defs), Name: "static tile"})
}

// Nudge moves the frame offset, or the tile index for a static brush.
func (p *Palette) Nudge(d int) {
	if p.static || len(p.defs) == 0 {
		p.tile = min(max(1, p.tile+d), int(tile.MaxTileIndex))
		return
	}
	p.offset = min(max(0, p.offset+d), tile.MaxFrameOffset)
}

func (p *Palette) step(dir int) {
	if p.static {
		p.tile = max(1, p.tile+dir)
		return
	}
	if len(p.defs) == 0 {
		return
	}
	p.selected = (p.selected + dir + len(p.defs)) % len(p.defs)
}

// Brush is the cell a left click paints.
func (p *Palette) Brush() tile.Cell {
	if p.static || len(p.defs) == 0 {
		return tile.Static(p.tile)
	}
	return tile.Encode(int(p.defs[p.selected].ID), p.offset)
}

func (p *Palette) String() string {
	if p.static || len(p.defs) == 0 {
		return fmt.Sprintf("tile %d", p.tile)
	}
	def := p.defs[p.selected]
	return fmt.Sprintf("%s (id %d) +%d", def.Name, def.ID, p.offset)
}
