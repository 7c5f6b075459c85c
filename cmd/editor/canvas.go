package main

import (
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/tile"
	"github.com/milk9111/tileed/visibility"
	"golang.org/x/image/colornames"
)

// Canvas maps screen pixels onto the active document's tiles and turns mouse
// and keyboard input into workspace edits.
type Canvas struct {
	ws       *document.Workspace
	surface  visibility.Surface
	tileSize int
	pixel    *ebiten.Image

	// middle-drag pan state
	dragActive bool
	lastMX     int
	lastMY     int

	HoverX  int
	HoverY  int
	HoverOK bool
}

func NewCanvas(ws *document.Workspace, surface visibility.Surface) *Canvas {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &Canvas{ws: ws, surface: surface, tileSize: surface.TileSize, pixel: pixel}
}

func (c *Canvas) tilePx(vp document.Viewport) float64 {
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return float64(c.tileSize) * zoom
}

func (c *Canvas) screenToTile(vp document.Viewport, sx, sy int) (float64, float64) {
	px := c.tilePx(vp)
	return vp.X + float64(sx)/px, vp.Y + float64(sy)/px
}

// Update handles pan, zoom, paint and erase for doc. Mouse input over a UI
// panel belongs to the panel.
func (c *Canvas) Update(doc document.Snapshot, brush tile.Cell, uiHovered bool) {
	mx, my := ebiten.CursorPosition()
	vp := doc.Viewport
	tx, ty := c.screenToTile(vp, mx, my)
	gx := int(math.Floor(tx))
	gy := int(math.Floor(ty))
	c.HoverX, c.HoverY = gx, gy
	c.HoverOK = !uiHovered && gx >= 0 && gy >= 0 && gx < document.MapSide && gy < document.MapSide

	// wheel zoom keeps the point under the cursor fixed
	if _, wy := ebiten.Wheel(); wy != 0 && !uiHovered {
		factor := 1.1
		if wy < 0 {
			factor = 1.0 / 1.1
		}
		zoom := math.Max(document.MinZoom, math.Min(document.MaxZoom, vp.Zoom*factor))
		px := float64(c.tileSize) * zoom
		next := document.Viewport{X: tx - float64(mx)/px, Y: ty - float64(my)/px, Zoom: zoom}
		c.report(c.ws.SetViewport(doc.ID, next))
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		if !c.dragActive {
			c.dragActive = true
			c.lastMX, c.lastMY = mx, my
		}
		dx, dy := mx-c.lastMX, my-c.lastMY
		if dx != 0 || dy != 0 {
			px := c.tilePx(vp)
			c.report(c.ws.Pan(doc.ID, -float64(dx)/px, -float64(dy)/px))
		}
		c.lastMX, c.lastMY = mx, my
	} else {
		c.dragActive = false
	}

	step := 1.0
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		step = 8
	}
	var dx, dy float64
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		dx -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		dx += step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		dy -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		dy += step
	}
	if dx != 0 || dy != 0 {
		c.report(c.ws.Pan(doc.ID, dx, dy))
	}

	if !c.HoverOK {
		return
	}
	// writing an unchanged cell is not a change, so dragging is cheap
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		c.report(c.ws.SetCell(doc.ID, gx, gy, brush))
	} else if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		c.report(c.ws.SetCell(doc.ID, gx, gy, 0))
	}
}

func (c *Canvas) report(err error) {
	if err != nil {
		log.Printf("editor: %v", err)
	}
}

// Draw renders the cells of doc that the visibility scanner would consider,
// so what is on screen is exactly what keeps the clock running.
func (c *Canvas) Draw(screen *ebiten.Image, doc document.Snapshot, catalog *anim.Catalog, tick int64) {
	vp := doc.Viewport
	px := c.tilePx(vp)
	gap := 0.0
	if px >= 8 {
		gap = 1
	}

	r := visibility.VisibleRect(vp, c.surface)
	for y := r.Y0; y < r.Y1; y++ {
		for x := r.X0; x < r.X1; x++ {
			cell := doc.Map.At(x, y)
			if cell == 0 {
				continue
			}
			sx := (float64(x) - vp.X) * px
			sy := (float64(y) - vp.Y) * px
			c.drawCell(screen, cell, sx, sy, px-gap, catalog, tick)
		}
	}

	if c.HoverOK {
		sx := (float64(c.HoverX) - vp.X) * px
		sy := (float64(c.HoverY) - vp.Y) * px
		c.strokeRect(screen, sx, sy, px, px, colornames.White)
	}
	c.drawBounds(screen, vp, px)
}

func (c *Canvas) drawCell(dst *ebiten.Image, cell tile.Cell, x, y, size float64, catalog *anim.Catalog, tick int64) {
	if !tile.IsAnimated(cell) {
		shade := 0.35 + 0.5*float64(cell.TileIndex()%8)/7
		c.fillRect(dst, x, y, size, size, colornames.Slategray, shade)
		return
	}

	id, offset := tile.Decode(cell)
	def, ok := catalog.Get(id)
	if !ok {
		c.drawPlaceholder(dst, x, y, size)
		return
	}
	frame, _ := anim.FrameIndex(tick, offset, def.FrameCount())
	var base color.Color = colornames.Lightgray
	if def.Color != nil {
		base = def.Color
	}
	shade := 1.0
	if n := def.FrameCount(); n > 1 {
		shade = 0.55 + 0.45*float64(frame)/float64(n-1)
	}
	c.fillRect(dst, x, y, size, size, base, shade)
}

// drawPlaceholder marks an animated cell whose animation is missing or has
// no frames.
func (c *Canvas) drawPlaceholder(dst *ebiten.Image, x, y, size float64) {
	half := size / 2
	c.fillRect(dst, x, y, size, size, colornames.Black, 1)
	c.fillRect(dst, x, y, half, half, colornames.Magenta, 1)
	c.fillRect(dst, x+half, y+half, size-half, size-half, colornames.Magenta, 1)
}

// drawBounds outlines the map edge when it is on screen.
func (c *Canvas) drawBounds(dst *ebiten.Image, vp document.Viewport, px float64) {
	x := -vp.X * px
	y := -vp.Y * px
	side := float64(document.MapSide) * px
	c.strokeRect(dst, x, y, side, side, colornames.Darkslategray)
}

func (c *Canvas) fillRect(dst *ebiten.Image, x, y, w, h float64, clr color.Color, shade float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.ColorScale.Scale(float32(shade), float32(shade), float32(shade), 1)
	dst.DrawImage(c.pixel, op)
}

func (c *Canvas) strokeRect(dst *ebiten.Image, x, y, w, h float64, clr color.Color) {
	c.fillRect(dst, x, y, w, 1, clr, 1)
	c.fillRect(dst, x, y+h-1, w, 1, clr, 1)
	c.fillRect(dst, x, y, 1, h, clr, 1)
	c.fillRect(dst, x+w-1, y, 1, h, clr, 1)
}
