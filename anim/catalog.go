// Package anim holds the fixed animation catalog and the frame selection
// rule shared by every renderer of animated tiles.
package anim

import (
	"image/color"
	"log"

	"github.com/milk9111/tileed/prefabs"
	"github.com/milk9111/tileed/tile"
)

// Definition is one animation: an ordered sequence of tile indices.
type Definition struct {
	ID     uint8
	Name   string
	Frames []int
	Color  color.Color
}

func (d Definition) FrameCount() int {
	return len(d.Frames)
}

// Catalog maps an animation id to its definition. It is built once and is
// read-only afterwards, so it can be shared freely across goroutines.
type Catalog struct {
	defs    [tile.MaxAnimationID + 1]Definition
	present [tile.MaxAnimationID + 1]bool
}

// NewCatalog builds a catalog. A later definition with the same id replaces
// an earlier one.
func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{}
	for _, d := range defs {
		d.Frames = append([]int(nil), d.Frames...)
		c.defs[d.ID] = d
		c.present[d.ID] = true
	}
	return c
}

// FromSpec builds a catalog from its YAML spec.
func FromSpec(spec *prefabs.AnimationCatalogSpec) *Catalog {
	if spec == nil {
		return NewCatalog()
	}
	defs := make([]Definition, 0, len(spec.Animations))
	seen := make(map[int]bool, len(spec.Animations))
	for _, s := range spec.Animations {
		if s.ID < 0 || s.ID > tile.MaxAnimationID {
			log.Printf("anim: skipping %q: id %d out of range", s.Name, s.ID)
			continue
		}
		if seen[s.ID] {
			log.Printf("anim: duplicate id %d (%q) replaces earlier entry", s.ID, s.Name)
		}
		seen[s.ID] = true
		d := Definition{ID: uint8(s.ID), Name: s.Name, Frames: s.Frames}
		if s.Color != nil {
			d.Color = s.Color.Color
		}
		defs = append(defs, d)
	}
	return NewCatalog(defs...)
}

// Load reads prefabs/animations.yaml and builds the catalog.
func Load() (*Catalog, error) {
	spec, err := prefabs.LoadAnimationCatalogSpec()
	if err != nil {
		return nil, err
	}
	return FromSpec(spec), nil
}

// Get returns a copy of the definition for id. A missing id and an id with no
// frames both report false.
func (c *Catalog) Get(id uint8) (Definition, bool) {
	if c == nil || !c.present[id] || len(c.defs[id].Frames) == 0 {
		return Definition{}, false
	}
	d := c.defs[id]
	d.Frames = append([]int(nil), d.Frames...)
	return d, true
}

// Defined reports whether a cell is animated and references an animation
// with at least one frame.
func (c *Catalog) Defined(cell tile.Cell) bool {
	if !tile.IsAnimated(cell) {
		return false
	}
	id, _ := tile.Decode(cell)
	_, ok := c.Get(id)
	return ok
}

// Definitions returns the defined animations in id order.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	var out []Definition
	for id := range c.defs {
		if d, ok := c.Get(uint8(id)); ok {
			out = append(out, d)
		}
	}
	return out
}

// FrameIndex is the displayed frame of an animation with frameCount frames at
// the given tick for a placement with the given offset. ok is false when the
// animation has no frames and a placeholder must be drawn.
func FrameIndex(tick int64, offset uint8, frameCount int) (int, bool) {
	if frameCount <= 0 {
		return 0, false
	}
	n := int64(frameCount)
	i := (tick%n + int64(offset)%n) % n
	if i < 0 {
		i += n
	}
	return int(i), true
}

// Resolve returns the tile index to draw for an animated cell at tick.
func (c *Catalog) Resolve(cell tile.Cell, tick int64) (Definition, int, bool) {
	if !tile.IsAnimated(cell) {
		return Definition{}, 0, false
	}
	id, offset := tile.Decode(cell)
	def, ok := c.Get(id)
	if !ok {
		return Definition{}, 0, false
	}
	frame, _ := FrameIndex(tick, offset, def.FrameCount())
	return def, def.Frames[frame], true
}
