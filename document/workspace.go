package document

import (
	"fmt"
	"sort"
	"sync"

	"github.com/milk9111/tileed/tile"
)

type ChangeKind int

const (
	Opened ChangeKind = iota
	CellsChanged
	ViewportChanged
	Closed
)

func (k ChangeKind) String() string {
	switch k {
	case Opened:
		return "opened"
	case CellsChanged:
		return "cells"
	case ViewportChanged:
		return "viewport"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind     ChangeKind
	Document Snapshot
}

// Workspace is the set of open documents. It is safe for concurrent use.
// Subscribers run synchronously on the mutating goroutine, after the lock
// is released.
type Workspace struct {
	mu     sync.RWMutex
	docs   map[ID]*Document
	nextID ID

	subMu sync.RWMutex
	subs  []func(Change)
}

func NewWorkspace() *Workspace {
	return &Workspace{docs: make(map[ID]*Document)}
}

// Subscribe registers fn for every subsequent change.
func (w *Workspace) Subscribe(fn func(Change)) {
	if w == nil || fn == nil {
		return
	}
	w.subMu.Lock()
	w.subs = append(w.subs, fn)
	w.subMu.Unlock()
}

func (w *Workspace) notify(kind ChangeKind, snap Snapshot) {
	w.subMu.RLock()
	subs := append(([]func(Change))(nil), w.subs...)
	w.subMu.RUnlock()
	for _, fn := range subs {
		fn(Change{Kind: kind, Document: snap})
	}
}

// Open adds a document holding a copy of m. A nil map opens an empty one.
func (w *Workspace) Open(name, path string, m *Map, vp Viewport) ID {
	cells := copyMap(m)
	w.mu.Lock()
	w.nextID++
	doc := &Document{ID: w.nextID, Name: name, Path: path, cells: cells, viewport: vp.Clamped(), version: 1}
	w.docs[doc.ID] = doc
	snap := doc.snapshot()
	w.mu.Unlock()

	w.notify(Opened, snap)
	return doc.ID
}

// Close removes a document. It reports false if id is not open.
func (w *Workspace) Close(id ID) bool {
	w.mu.Lock()
	doc, ok := w.docs[id]
	if !ok {
		w.mu.Unlock()
		return false
	}
	delete(w.docs, id)
	doc.version++
	snap := doc.snapshot()
	w.mu.Unlock()

	w.notify(Closed, snap)
	return true
}

// Get returns a snapshot of one document.
func (w *Workspace) Get(id ID) (Snapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs[id]
	if !ok {
		return Snapshot{}, false
	}
	return doc.snapshot(), true
}

// Documents returns snapshots of all open documents ordered by id.
func (w *Workspace) Documents() []Snapshot {
	w.mu.RLock()
	out := make([]Snapshot, 0, len(w.docs))
	for _, doc := range w.docs {
		out = append(out, doc.snapshot())
	}
	w.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByPath returns the open document loaded from path.
func (w *Workspace) FindByPath(path string) (ID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for id, doc := range w.docs {
		if doc.Path != "" && doc.Path == path {
			return id, true
		}
	}
	return 0, false
}

// SetCell writes one cell. Writing the value already present is not a change.
func (w *Workspace) SetCell(id ID, x, y int, c tile.Cell) error {
	w.mu.Lock()
	doc, ok := w.docs[id]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("document: set cell: %d not open", id)
	}
	if !inBounds(x, y) {
		w.mu.Unlock()
		return fmt.Errorf("document: set cell: (%d,%d) out of bounds", x, y)
	}
	if doc.cells.At(x, y) == c {
		w.mu.Unlock()
		return nil
	}
	// copy on write so earlier snapshots stay stable
	next := *doc.cells
	next.Set(x, y, c)
	doc.cells = &next
	doc.version++
	snap := doc.snapshot()
	w.mu.Unlock()

	w.notify(CellsChanged, snap)
	return nil
}

// ReplaceMap swaps in a copy of m, e.g. after the file changed on disk.
func (w *Workspace) ReplaceMap(id ID, m *Map) error {
	cells := copyMap(m)
	w.mu.Lock()
	doc, ok := w.docs[id]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("document: replace map: %d not open", id)
	}
	doc.cells = cells
	doc.version++
	snap := doc.snapshot()
	w.mu.Unlock()

	w.notify(CellsChanged, snap)
	return nil
}

// SetViewport replaces a document's viewport. The zoom is clamped.
func (w *Workspace) SetViewport(id ID, vp Viewport) error {
	return w.updateViewport(id, func(Viewport) Viewport { return vp })
}

// Pan moves the viewport origin by (dx, dy) tiles.
func (w *Workspace) Pan(id ID, dx, dy float64) error {
	return w.updateViewport(id, func(vp Viewport) Viewport {
		vp.X += dx
		vp.Y += dy
		return vp
	})
}

// ZoomBy multiplies the zoom by factor.
func (w *Workspace) ZoomBy(id ID, factor float64) error {
	return w.updateViewport(id, func(vp Viewport) Viewport {
		vp.Zoom *= factor
		return vp
	})
}

func (w *Workspace) updateViewport(id ID, fn func(Viewport) Viewport) error {
	w.mu.Lock()
	doc, ok := w.docs[id]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("document: viewport: %d not open", id)
	}
	next := fn(doc.viewport).Clamped()
	if next == doc.viewport {
		w.mu.Unlock()
		return nil
	}
	doc.viewport = next
	doc.version++
	snap := doc.snapshot()
	w.mu.Unlock()

	w.notify(ViewportChanged, snap)
	return nil
}

func (d *Document) snapshot() Snapshot {
	return Snapshot{ID: d.ID, Name: d.Name, Path: d.Path, Version: d.version, Viewport: d.viewport, Map: d.cells}
}

// copyMap detaches a caller's map so later writes through it cannot change a
// document behind the workspace's back.
func copyMap(m *Map) *Map {
	if m == nil {
		return &Map{}
	}
	cp := *m
	return &cp
}
