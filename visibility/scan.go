// Package visibility answers whether any defined animated tile is inside a
// document's viewport, and caches that answer per document version so the
// scheduler never scans on its hot path.
package visibility

import (
	"math"

	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/tile"
)

// Surface is the reference render surface: its size in pixels and the
// on-screen size of one tile at zoom 1.
type Surface struct {
	Width    int
	Height   int
	TileSize int
}

// Catalog decides whether an animated cell references a usable animation.
// *anim.Catalog implements it.
type Catalog interface {
	Defined(c tile.Cell) bool
}

// Rect is a half-open tile rectangle [X0,X1) x [Y0,Y1).
type Rect struct {
	X0, Y0, X1, Y1 int
}

func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return (r.X1 - r.X0) * (r.Y1 - r.Y0)
}

// VisibleRect returns the tiles the viewport can show on the surface: the
// whole tiles that fit plus one tile of slack for partial tiles at the
// edges, starting at the tile under the origin, clamped to the map.
func VisibleRect(vp document.Viewport, s Surface) Rect {
	if s.Width <= 0 || s.Height <= 0 || s.TileSize <= 0 {
		return Rect{}
	}
	zoom := vp.Zoom
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	tilePx := float64(s.TileSize) * zoom
	cols := int(math.Min(float64(s.Width)/tilePx, document.MapSide)) + 1
	rows := int(math.Min(float64(s.Height)/tilePx, document.MapSide)) + 1

	x0 := originTile(vp.X)
	y0 := originTile(vp.Y)
	r := Rect{X0: x0, Y0: y0, X1: x0 + cols, Y1: y0 + rows}
	r.X0 = clampInt(r.X0, 0, document.MapSide)
	r.Y0 = clampInt(r.Y0, 0, document.MapSide)
	r.X1 = clampInt(r.X1, 0, document.MapSide)
	r.Y1 = clampInt(r.Y1, 0, document.MapSide)
	return r
}

// originTile floors a tile coordinate, keeping absurd values in a range
// that converts safely to int.
func originTile(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	limit := float64(2 * document.MapSide)
	v = math.Max(-limit, math.Min(limit, v))
	return int(math.Floor(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AnyAnimatedVisible scans the visible rectangle row-major and stops at the
// first animated cell whose animation is defined. With a nil catalog every
// animated cell counts.
func AnyAnimatedVisible(m *document.Map, vp document.Viewport, s Surface, catalog Catalog) bool {
	if m == nil {
		return false
	}
	r := VisibleRect(vp, s)
	for y := r.Y0; y < r.Y1; y++ {
		row := m[y*document.MapSide : (y+1)*document.MapSide]
		for x := r.X0; x < r.X1; x++ {
			c := row[x]
			if !tile.IsAnimated(c) {
				continue
			}
			if catalog == nil || catalog.Defined(c) {
				return true
			}
		}
	}
	return false
}
