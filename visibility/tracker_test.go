package visibility

import (
	"testing"

	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/tile"
)

func newTrackedWorkspace() (*document.Workspace, *Tracker) {
	ws := document.NewWorkspace()
	tr := NewTracker(testSurface, anim.NewCatalog(anim.Definition{ID: 3, Frames: []int{1, 2, 3, 4}}))
	tr.Attach(ws)
	return ws, tr
}

func TestTrackerAggregate(t *testing.T) {
	ws, tr := newTrackedWorkspace()

	a := ws.Open("a", "", nil, document.DefaultViewport())
	b := ws.Open("b", "", nil, document.DefaultViewport())
	if tr.AnyVisible() {
		t.Fatalf("empty documents reported visible")
	}

	if err := ws.SetCell(b, 1, 1, tile.Encode(3, 0)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if !tr.AnyVisible() {
		t.Fatalf("animated tile in b not reflected in aggregate")
	}

	// pan b away from its only animated tile
	if err := ws.Pan(b, 50, 50); err != nil {
		t.Fatalf("Pan: %v", err)
	}
	if tr.AnyVisible() {
		t.Fatalf("aggregate still true after panning away")
	}

	if err := ws.SetCell(a, 0, 0, tile.Encode(3, 1)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if !tr.AnyVisible() {
		t.Fatalf("animated tile in a not reflected")
	}

	ws.Close(a)
	if tr.AnyVisible() {
		t.Fatalf("closed document still counted")
	}
	if st := tr.Stats(); st.Documents != 1 || st.VisibleDocuments != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestTrackerCachesByVersion(t *testing.T) {
	ws, tr := newTrackedWorkspace()
	id := ws.Open("a", "", nil, document.DefaultViewport())
	scans := tr.Stats().Scans

	snap, _ := ws.Get(id)
	for i := 0; i < 100; i++ {
		tr.Observe(snap)
		_ = tr.AnyVisible()
	}
	st := tr.Stats()
	if st.Scans != scans {
		t.Fatalf("unchanged version rescanned: %d -> %d", scans, st.Scans)
	}
	if st.Skipped < 100 {
		t.Fatalf("skipped = %d, want >= 100", st.Skipped)
	}

	if err := ws.SetCell(id, 0, 0, tile.Encode(3, 0)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if got := tr.Stats().Scans; got != scans+1 {
		t.Fatalf("scans after one change = %d, want %d", got, scans+1)
	}

	// a stale snapshot must not overwrite the newer result
	tr.Observe(snap)
	if !tr.AnyVisible() {
		t.Fatalf("stale snapshot overwrote newer result")
	}
}

func TestTrackerIgnoresLateUpdatesForClosedDocuments(t *testing.T) {
	ws, tr := newTrackedWorkspace()
	id := ws.Open("a", "", nil, document.DefaultViewport())
	if err := ws.SetCell(id, 0, 0, tile.Encode(3, 0)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	snap, _ := ws.Get(id)
	ws.Close(id)

	tr.Observe(snap)
	if tr.AnyVisible() {
		t.Fatalf("late snapshot of a closed document revived it")
	}
}

func TestTrackerKeepsNoTombstonesWhenAttached(t *testing.T) {
	ws, tr := newTrackedWorkspace()
	for i := 0; i < 50; i++ {
		id := ws.Open("churn", "", nil, document.DefaultViewport())
		snap, _ := ws.Get(id)
		ws.Close(id)
		tr.Observe(snap)
	}
	if n := len(tr.closed); n != 0 {
		t.Fatalf("closed ids retained: %d", n)
	}
	if st := tr.Stats(); st.Documents != 0 {
		t.Fatalf("closed documents cached: %+v", st)
	}
}

func TestDetachedTrackerForget(t *testing.T) {
	tr := NewTracker(testSurface, anim.NewCatalog(anim.Definition{ID: 3, Frames: []int{1, 2}}))
	var m document.Map
	m.Set(0, 0, tile.Encode(3, 0))
	snap := document.Snapshot{ID: 7, Version: 1, Viewport: document.DefaultViewport(), Map: &m}

	if !tr.Observe(snap) {
		t.Fatalf("animated tile not visible")
	}
	tr.Forget(7)
	snap.Version = 2
	if tr.Observe(snap) || tr.AnyVisible() {
		t.Fatalf("forgotten document revived")
	}
}

func TestTrackerSetSurface(t *testing.T) {
	ws, tr := newTrackedWorkspace()
	id := ws.Open("a", "", nil, document.DefaultViewport())
	if err := ws.SetCell(id, 20, 0, tile.Encode(3, 0)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if tr.AnyVisible() {
		t.Fatalf("tile at column 20 should be off a 10-tile-wide surface")
	}

	tr.SetSurface(Surface{Width: 640, Height: 160, TileSize: 32})
	if !tr.AnyVisible() {
		t.Fatalf("wider surface should reveal column 20")
	}
	if visible, known := tr.Visible(id); !known || !visible {
		t.Fatalf("document result after rescan = %v, known %v", visible, known)
	}
}
