package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ebitenui/ebitenui"
	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/clock"
	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/driver"
	"github.com/milk9111/tileed/levels"
	"github.com/milk9111/tileed/session"
	"github.com/milk9111/tileed/visibility"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

// Editor is the ebiten game hosting the workspace and the animation loops.
type Editor struct {
	ws      *document.Workspace
	tracker *visibility.Tracker
	catalog *anim.Catalog
	surface visibility.Surface

	counter     *clock.Counter
	suspension  *clock.Flag
	minInterval time.Duration
	queue       *driver.FrameQueue
	loop        *driver.Loop
	preview     *driver.Loop
	start       time.Time

	viewports *session.Viewports
	clipboard bool

	active  document.ID
	canvas  *Canvas
	palette *Palette
	ui      *ebitenui.UI
	status  *StatusPanel
	brushes *PalettePanel
}

type editorConfig struct {
	catalog     *anim.Catalog
	surface     visibility.Surface
	minInterval time.Duration
	preview     bool
	viewports   *session.Viewports
}

func NewEditor(cfg editorConfig) (*Editor, error) {
	palette := NewPalette(cfg.catalog)
	ui, status, brushes, err := BuildEditorUI(palette)
	if err != nil {
		return nil, err
	}

	ws := document.NewWorkspace()
	tracker := visibility.NewTracker(cfg.surface, cfg.catalog)
	tracker.Attach(ws)

	e := &Editor{
		ws:          ws,
		tracker:     tracker,
		catalog:     cfg.catalog,
		surface:     cfg.surface,
		counter:     clock.NewCounter(),
		suspension:  &clock.Flag{},
		minInterval: cfg.minInterval,
		queue:       driver.NewFrameQueue(),
		start:       time.Now(),
		viewports:   cfg.viewports,
		canvas:      NewCanvas(ws, cfg.surface),
		palette:     palette,
		ui:          ui,
		status:      status,
		brushes:     brushes,
	}

	clk := clock.New(e.counter,
		clock.WithSuspension(e.suspension),
		clock.WithVisibility(tracker),
		clock.WithMinInterval(cfg.minInterval),
		clock.WithName("editor"),
	)
	e.loop = driver.New(e.queue, clk).Named("editor").Start()
	if cfg.preview {
		e.togglePreview()
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("editor: clipboard unavailable: %v", err)
	} else {
		e.clipboard = true
	}
	return e, nil
}

// OpenLevel opens a level and restores its last viewport.
func (e *Editor) OpenLevel(name string) error {
	id, lvl, err := levels.Open(e.ws, name)
	if err != nil {
		return fmt.Errorf("editor: open %s: %w", name, err)
	}
	if vp, ok := e.viewports.Load(lvl.Name); ok {
		if err := e.ws.SetViewport(id, vp); err != nil {
			return err
		}
	}
	e.active = id
	return nil
}

func (e *Editor) newDocument() {
	name := fmt.Sprintf("untitled-%d", len(e.ws.Documents())+1)
	e.active = e.ws.Open(name, "", nil, document.DefaultViewport())
}

// activeDocument returns the active document, falling back to the first open
// one after a close.
func (e *Editor) activeDocument() (document.Snapshot, int, int, bool) {
	docs := e.ws.Documents()
	if len(docs) == 0 {
		return document.Snapshot{}, 0, 0, false
	}
	for i, d := range docs {
		if d.ID == e.active {
			return d, i, len(docs), true
		}
	}
	e.active = docs[0].ID
	return docs[0], 0, len(docs), true
}

func (e *Editor) cycle(dir int) {
	docs := e.ws.Documents()
	if len(docs) == 0 {
		return
	}
	_, i, n, _ := e.activeDocument()
	e.active = docs[(i+dir+n)%n].ID
}

// togglePreview starts or stops the always-on preview loop. It shares the
// editor's counter but ignores focus and visibility.
func (e *Editor) togglePreview() {
	if e.preview != nil {
		e.preview.Stop()
		e.preview = nil
		return
	}
	clk := clock.Ungated(e.counter, clock.WithMinInterval(e.minInterval))
	e.preview = driver.New(e.queue, clk).Named("preview").Start()
}

func (e *Editor) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	e.suspension.Set(!ebiten.IsFocused() || ebiten.IsWindowMinimized())

	e.ui.Update()
	e.handleKeys()
	e.palette.Update()
	e.brushes.Sync()
	if doc, _, _, ok := e.activeDocument(); ok {
		e.canvas.Update(doc, e.palette.Brush(), ebuiinput.UIHovered)
	}

	e.queue.Pump(time.Since(e.start))
	return nil
}

func (e *Editor) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab) && shift:
		e.cycle(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		e.cycle(1)
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		e.save()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyN):
		e.newDocument()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyW):
		e.closeActive()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		e.copyHovered()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		e.togglePreview()
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		if doc, _, _, ok := e.activeDocument(); ok {
			e.canvas.report(e.ws.SetViewport(doc.ID, document.DefaultViewport()))
		}
	}
}

func (e *Editor) save() {
	doc, _, _, ok := e.activeDocument()
	if !ok {
		return
	}
	path := doc.Path
	if path == "" {
		path = filepath.Join("levels", doc.Name+".json")
	}
	if err := levels.Save(path, levels.FromMap(doc.Name, doc.Map, doc.Viewport)); err != nil {
		log.Printf("editor: %v", err)
		e.status.Flash("save failed: " + err.Error())
		return
	}
	e.status.Flash("saved " + path)
}

func (e *Editor) closeActive() {
	doc, _, _, ok := e.activeDocument()
	if !ok {
		return
	}
	if err := e.viewports.Save(doc.Name, doc.Viewport); err != nil {
		log.Printf("editor: %v", err)
	}
	e.ws.Close(doc.ID)
	e.cycle(0)
}

func (e *Editor) copyHovered() {
	doc, _, _, ok := e.activeDocument()
	if !ok || !e.canvas.HoverOK {
		return
	}
	cell := doc.Map.At(e.canvas.HoverX, e.canvas.HoverY)
	s := fmt.Sprintf("%s 0x%04x", cell, uint16(cell))
	if e.clipboard {
		clipboard.Write(clipboard.FmtText, []byte(s))
	}
	e.status.Flash("copied " + s)
}

func (e *Editor) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	doc, index, count, ok := e.activeDocument()
	if !ok {
		e.status.Clear()
		e.ui.Draw(screen)
		return
	}
	tick := e.counter.Get()
	e.canvas.Draw(screen, doc, e.catalog, tick)

	st := statusState{
		doc:       doc,
		index:     index,
		count:     count,
		tick:      tick,
		suspended: e.suspension.Suspended(),
		preview:   e.preview != nil,
		stats:     e.tracker.Stats(),
		visible:   e.tracker.AnyVisible(),
		brush:     e.palette.String(),
	}
	if e.canvas.HoverOK {
		st.hover = describeCell(e.canvas.HoverX, e.canvas.HoverY, doc.Map.At(e.canvas.HoverX, e.canvas.HoverY), e.catalog, tick)
	}
	e.status.Set(st)
	e.ui.Draw(screen)
}

// Layout pins the logical screen to the reference surface the tracker scans
// against.
func (e *Editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	return e.surface.Width, e.surface.Height
}

// Close stops the loops and remembers every open viewport.
func (e *Editor) Close() {
	e.loop.Stop()
	if e.preview != nil {
		e.preview.Stop()
	}
	if err := e.viewports.SaveAll(e.ws); err != nil {
		log.Printf("editor: %v", err)
	}
}
