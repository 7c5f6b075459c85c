package visibility

import (
	"sync"
	"sync/atomic"

	"github.com/milk9111/tileed/document"
)

type entry struct {
	version uint64
	visible bool
}

// Stats counts tracker work; Scans grows with state changes, never with
// scheduler ticks.
type Stats struct {
	Scans            int64
	Skipped          int64
	Documents        int
	VisibleDocuments int
}

// Tracker caches AnyAnimatedVisible per document, keyed by document
// version, and keeps the cross-document aggregate ready for the clock.
//
// Notifications may arrive after the document they describe was closed.
// Once attached, the tracker asks the workspace whether a document is still
// open; a detached tracker remembers forgotten ids instead, relying on ids
// never being reused.
type Tracker struct {
	catalog Catalog

	mu      sync.Mutex
	surface Surface
	entries map[document.ID]entry
	closed  map[document.ID]struct{}
	visible int
	ws      *document.Workspace

	any     atomic.Bool
	scans   atomic.Int64
	skipped atomic.Int64
}

func NewTracker(surface Surface, catalog Catalog) *Tracker {
	return &Tracker{
		catalog: catalog,
		surface: surface,
		entries: make(map[document.ID]entry),
		closed:  make(map[document.ID]struct{}),
	}
}

// Attach subscribes the tracker to ws and observes the documents already
// open.
func (t *Tracker) Attach(ws *document.Workspace) {
	if t == nil || ws == nil {
		return
	}
	t.mu.Lock()
	t.ws = ws
	t.closed = make(map[document.ID]struct{})
	t.mu.Unlock()

	ws.Subscribe(func(c document.Change) {
		if c.Kind == document.Closed {
			t.Forget(c.Document.ID)
			return
		}
		t.Observe(c.Document)
	})
	for _, snap := range ws.Documents() {
		t.Observe(snap)
	}
}

// Observe records the document's visibility, scanning only when its version
// differs from the cached one. Stale snapshots are ignored.
func (t *Tracker) Observe(s document.Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.gone(s.ID) {
		return false
	}
	prev, cached := t.entries[s.ID]
	if cached && s.Version <= prev.version {
		t.skipped.Add(1)
		return prev.visible
	}

	t.scans.Add(1)
	visible := AnyAnimatedVisible(s.Map, s.Viewport, t.surface, t.catalog)
	t.entries[s.ID] = entry{version: s.Version, visible: visible}
	if cached && prev.visible {
		t.visible--
	}
	if visible {
		t.visible++
	}
	t.any.Store(t.visible > 0)
	return visible
}

// Forget drops a closed document from the aggregate.
func (t *Tracker) Forget(id document.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[id]; ok {
		if e.visible {
			t.visible--
		}
		delete(t.entries, id)
	}
	if t.ws == nil {
		t.closed[id] = struct{}{}
	}
	t.any.Store(t.visible > 0)
}

// gone reports whether id was closed. Callers hold t.mu.
func (t *Tracker) gone(id document.ID) bool {
	if t.ws != nil {
		_, open := t.ws.Get(id)
		return !open
	}
	_, closed := t.closed[id]
	return closed
}

// SetSurface changes the reference surface and rescans the attached
// workspace, since every cached rectangle is now stale.
func (t *Tracker) SetSurface(s Surface) {
	t.mu.Lock()
	if t.surface == s {
		t.mu.Unlock()
		return
	}
	t.surface = s
	t.entries = make(map[document.ID]entry)
	t.visible = 0
	t.any.Store(false)
	ws := t.ws
	t.mu.Unlock()

	if ws == nil {
		return
	}
	for _, snap := range ws.Documents() {
		t.Observe(snap)
	}
}

// AnyVisible is the cached aggregate: true iff at least one open document
// has a defined animated tile in view. It never scans.
func (t *Tracker) AnyVisible() bool {
	if t == nil {
		return false
	}
	return t.any.Load()
}

// Visible returns the cached result for one document.
func (t *Tracker) Visible(id document.ID) (visible, known bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	return e.visible, ok
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Scans:            t.scans.Load(),
		Skipped:          t.skipped.Load(),
		Documents:        len(t.entries),
		VisibleDocuments: t.visible,
	}
}
