// Package document models the open editor documents the scheduler reads:
// a fixed-size square grid of cells and the viewport looking at it.
package document

import (
	"math"

	"github.com/milk9111/tileed/tile"
)

// MapSide is the side length of every document map, in tiles.
const MapSide = 128

const (
	MinZoom = 0.25
	MaxZoom = 8.0
)

// Map is a square grid of cells addressed row-major.
type Map [MapSide * MapSide]tile.Cell

func inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < MapSide && y < MapSide
}

// At returns the cell at (x, y), or 0 when out of bounds.
func (m *Map) At(x, y int) tile.Cell {
	if m == nil || !inBounds(x, y) {
		return 0
	}
	return m[y*MapSide+x]
}

// Set stores c at (x, y). It reports false when out of bounds.
func (m *Map) Set(x, y int, c tile.Cell) bool {
	if m == nil || !inBounds(x, y) {
		return false
	}
	m[y*MapSide+x] = c
	return true
}

// Viewport is the visible window onto a map. X and Y are the origin in tile
// units and may be fractional.
type Viewport struct {
	X    float64
	Y    float64
	Zoom float64
}

// DefaultViewport shows the map's top-left corner at 1x.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// Clamped returns the viewport with zoom limited to [MinZoom, MaxZoom] and
// NaN coordinates reset.
func (v Viewport) Clamped() Viewport {
	if math.IsNaN(v.X) || math.IsInf(v.X, 0) {
		v.X = 0
	}
	if math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
		v.Y = 0
	}
	if math.IsNaN(v.Zoom) || v.Zoom == 0 {
		v.Zoom = 1
	}
	v.Zoom = math.Max(MinZoom, math.Min(MaxZoom, v.Zoom))
	return v
}

// ID identifies an open document within a workspace.
type ID int

// Document is an open map. Its map and viewport are only mutated through
// the owning Workspace, which bumps Version on every change.
type Document struct {
	ID   ID
	Name string
	Path string

	cells    *Map
	viewport Viewport
	version  uint64
}

// Snapshot is a consistent read-only view of a document.
type Snapshot struct {
	ID       ID
	Name     string
	Path     string
	Version  uint64
	Viewport Viewport
	Map      *Map
}
