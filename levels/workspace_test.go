package levels

import (
	"path/filepath"
	"testing"

	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/tile"
)

func TestOpenEmbedded(t *testing.T) {
	ws := document.NewWorkspace()
	id, lvl, err := Open(ws, "demo")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	snap, ok := ws.Get(id)
	if !ok {
		t.Fatalf("document not open")
	}
	if snap.Name != lvl.Name {
		t.Fatalf("name = %q, want %q", snap.Name, lvl.Name)
	}
	if !tile.IsAnimated(snap.Map.At(4, 19)) {
		t.Fatalf("demo water tile missing")
	}
}

func TestReloadReplacesMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hot.json")

	var m document.Map
	m.Set(1, 1, tile.Static(3))
	if err := Save(path, FromMap("hot", &m, document.DefaultViewport())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ws := document.NewWorkspace()
	id, _, err := Open(ws, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	before, _ := ws.Get(id)

	m.Set(2, 2, tile.Encode(0, 1))
	if err := Save(path, FromMap("hot", &m, document.DefaultViewport())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := Reload(ws, path)
	if err != nil || !ok || got != id {
		t.Fatalf("Reload = %d, %v, %v", got, ok, err)
	}
	after, _ := ws.Get(id)
	if after.Version <= before.Version {
		t.Fatalf("reload did not bump the version")
	}
	if after.Map.At(2, 2) != tile.Encode(0, 1) {
		t.Fatalf("reloaded cell = %s", after.Map.At(2, 2))
	}

	if _, ok, err := Reload(ws, filepath.Join(dir, "other.json")); ok || err != nil {
		t.Fatalf("unrelated path matched: %v %v", ok, err)
	}
}
