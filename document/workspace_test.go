package document

import (
	"testing"

	"github.com/milk9111/tileed/tile"
)

func TestMapBounds(t *testing.T) {
	var m Map
	cases := []struct {
		name   string
		x, y   int
		wantOK bool
	}{
		{"origin", 0, 0, true},
		{"far_corner", MapSide - 1, MapSide - 1, true},
		{"negative", -1, 0, false},
		{"past_edge", MapSide, 3, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ok := m.Set(c.x, c.y, tile.Encode(1, 0))
			if ok != c.wantOK {
				t.Fatalf("Set ok = %v, want %v", ok, c.wantOK)
			}
			if c.wantOK && m.At(c.x, c.y) != tile.Encode(1, 0) {
				t.Fatalf("At did not return stored cell")
			}
			if !c.wantOK && m.At(c.x, c.y) != 0 {
				t.Fatalf("out of bounds At should be 0")
			}
		})
	}
}

func TestWorkspaceVersionsAndNotifications(t *testing.T) {
	ws := NewWorkspace()
	var changes []Change
	ws.Subscribe(func(c Change) { changes = append(changes, c) })

	id := ws.Open("a", "", nil, DefaultViewport())
	snap, _ := ws.Get(id)
	v0 := snap.Version

	if err := ws.SetCell(id, 1, 1, tile.Encode(2, 0)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	// same value again is not a change
	if err := ws.SetCell(id, 1, 1, tile.Encode(2, 0)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if err := ws.Pan(id, 0.5, 2); err != nil {
		t.Fatalf("Pan: %v", err)
	}
	if err := ws.ZoomBy(id, 2); err != nil {
		t.Fatalf("ZoomBy: %v", err)
	}

	snap, _ = ws.Get(id)
	if snap.Version != v0+3 {
		t.Fatalf("version = %d, want %d", snap.Version, v0+3)
	}
	if snap.Viewport != (Viewport{X: 0.5, Y: 2, Zoom: 2}) {
		t.Fatalf("viewport = %+v", snap.Viewport)
	}

	wantKinds := []ChangeKind{Opened, CellsChanged, ViewportChanged, ViewportChanged}
	if len(changes) != len(wantKinds) {
		t.Fatalf("got %d changes, want %d", len(changes), len(wantKinds))
	}
	for i, k := range wantKinds {
		if changes[i].Kind != k {
			t.Fatalf("change %d = %s, want %s", i, changes[i].Kind, k)
		}
	}

	if !ws.Close(id) {
		t.Fatalf("Close returned false")
	}
	if ws.Close(id) {
		t.Fatalf("second Close returned true")
	}
	if changes[len(changes)-1].Kind != Closed {
		t.Fatalf("last change = %s, want closed", changes[len(changes)-1].Kind)
	}
}

func TestSnapshotsAreStable(t *testing.T) {
	ws := NewWorkspace()
	id := ws.Open("a", "", nil, DefaultViewport())
	before, _ := ws.Get(id)
	if err := ws.SetCell(id, 0, 0, tile.Encode(1, 0)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if before.Map.At(0, 0) != 0 {
		t.Fatalf("earlier snapshot observed a later write")
	}
	after, _ := ws.Get(id)
	if after.Map.At(0, 0) != tile.Encode(1, 0) {
		t.Fatalf("write not visible in new snapshot")
	}
}

func TestCallerMapIsDetached(t *testing.T) {
	cases := []struct {
		name  string
		apply func(ws *Workspace, m *Map) ID
	}{
		{"open", func(ws *Workspace, m *Map) ID {
			return ws.Open("a", "", m, DefaultViewport())
		}},
		{"replace", func(ws *Workspace, m *Map) ID {
			id := ws.Open("a", "", nil, DefaultViewport())
			if err := ws.ReplaceMap(id, m); err != nil {
				t.Fatalf("ReplaceMap: %v", err)
			}
			return id
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ws := NewWorkspace()
			m := &Map{}
			id := c.apply(ws, m)
			before, _ := ws.Get(id)

			m.Set(0, 0, tile.Encode(3, 0))

			after, _ := ws.Get(id)
			if after.Map.At(0, 0) != 0 {
				t.Fatalf("write through caller's map reached the document: %s", after.Map.At(0, 0))
			}
			if after.Version != before.Version {
				t.Fatalf("version changed without a workspace mutation")
			}
		})
	}
}

func TestWorkspaceErrors(t *testing.T) {
	ws := NewWorkspace()
	if err := ws.SetCell(42, 0, 0, 1); err == nil {
		t.Fatalf("expected error for unknown document")
	}
	id := ws.Open("a", "levels/a.json", nil, DefaultViewport())
	if err := ws.SetCell(id, MapSide, 0, 1); err == nil {
		t.Fatalf("expected error for out of bounds cell")
	}
	if err := ws.SetViewport(42, DefaultViewport()); err == nil {
		t.Fatalf("expected error for unknown document")
	}
	if got, ok := ws.FindByPath("levels/a.json"); !ok || got != id {
		t.Fatalf("FindByPath = %d, %v", got, ok)
	}
}

func TestViewportClamped(t *testing.T) {
	cases := []struct {
		name string
		in   Viewport
		want float64
	}{
		{"zero_zoom", Viewport{Zoom: 0}, 1},
		{"too_small", Viewport{Zoom: 0.01}, MinZoom},
		{"too_large", Viewport{Zoom: 100}, MaxZoom},
		{"negative", Viewport{Zoom: -2}, MinZoom},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.in.Clamped().Zoom; got != c.want {
				t.Fatalf("zoom = %v, want %v", got, c.want)
			}
		})
	}
}
