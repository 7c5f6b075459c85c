package anim

import (
	"testing"

	"github.com/milk9111/tileed/prefabs"
	"github.com/milk9111/tileed/tile"
)

func TestCatalogGet(t *testing.T) {
	c := NewCatalog(
		Definition{ID: 3, Name: "conveyor", Frames: []int{10, 11, 12, 13}},
		Definition{ID: 7, Name: "empty"},
	)

	cases := []struct {
		name   string
		id     uint8
		wantOK bool
		frames int
	}{
		{"defined", 3, true, 4},
		{"empty_frames", 7, false, 0},
		{"missing", 200, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := c.Get(tc.id)
			if ok != tc.wantOK {
				t.Fatalf("Get(%d) ok = %v, want %v", tc.id, ok, tc.wantOK)
			}
			if d.FrameCount() != tc.frames {
				t.Fatalf("Get(%d) frames = %d, want %d", tc.id, d.FrameCount(), tc.frames)
			}
		})
	}

	var nilCatalog *Catalog
	if _, ok := nilCatalog.Get(3); ok {
		t.Fatalf("nil catalog should report undefined")
	}
}

func TestCatalogCopiesFrames(t *testing.T) {
	frames := []int{1, 2}
	c := NewCatalog(Definition{ID: 1, Frames: frames})
	frames[0] = 99
	d, _ := c.Get(1)
	if d.Frames[0] != 1 {
		t.Fatalf("catalog shares caller's frame slice")
	}

	d.Frames[0] = 77
	if again, _ := c.Get(1); again.Frames[0] != 1 {
		t.Fatalf("write through Get reached the catalog")
	}
	defs := c.Definitions()
	defs[0].Frames[1] = 77
	if _, tileIdx, _ := c.Resolve(tile.Encode(1, 1), 0); tileIdx != 2 {
		t.Fatalf("write through Definitions reached the catalog: tile %d", tileIdx)
	}
}

func TestDefined(t *testing.T) {
	c := NewCatalog(Definition{ID: 3, Frames: []int{1, 2, 3, 4}}, Definition{ID: 5})
	cases := []struct {
		name string
		cell tile.Cell
		want bool
	}{
		{"static", tile.Static(3), false},
		{"animated_defined", tile.Encode(3, 9), true},
		{"animated_empty", tile.Encode(5, 0), false},
		{"animated_missing", tile.Encode(6, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Defined(tc.cell); got != tc.want {
				t.Fatalf("Defined(%s) = %v, want %v", tc.cell, got, tc.want)
			}
		})
	}
}

func TestFrameIndex(t *testing.T) {
	want := []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}
	for tick, w := range want {
		got, ok := FrameIndex(int64(tick), 0, 4)
		if !ok || got != w {
			t.Fatalf("FrameIndex(%d, 0, 4) = %d, %v; want %d", tick, got, ok, w)
		}
	}

	if got, _ := FrameIndex(1, 2, 4); got != 3 {
		t.Fatalf("offset not applied: got %d", got)
	}
	if got, _ := FrameIndex(0, 127, 4); got != 3 {
		t.Fatalf("large offset: got %d", got)
	}
	if _, ok := FrameIndex(5, 0, 0); ok {
		t.Fatalf("zero-frame animation must report placeholder")
	}
}

func TestResolve(t *testing.T) {
	c := NewCatalog(Definition{ID: 3, Frames: []int{10, 11, 12, 13}})

	_, idx, ok := c.Resolve(tile.Encode(3, 1), 2)
	if !ok || idx != 13 {
		t.Fatalf("Resolve = %d, %v; want 13, true", idx, ok)
	}
	if _, _, ok := c.Resolve(tile.Encode(4, 0), 2); ok {
		t.Fatalf("undefined animation resolved")
	}
	if _, _, ok := c.Resolve(tile.Static(10), 2); ok {
		t.Fatalf("static cell resolved")
	}
}

func TestFromSpec(t *testing.T) {
	spec := &prefabs.AnimationCatalogSpec{Animations: []prefabs.AnimationDefSpec{
		{ID: 1, Name: "a", Frames: []int{1}},
		{ID: 1, Name: "b", Frames: []int{2, 3}},
		{ID: 300, Name: "bad", Frames: []int{1}},
	}}
	c := FromSpec(spec)
	d, ok := c.Get(1)
	if !ok || d.Name != "b" || d.FrameCount() != 2 {
		t.Fatalf("duplicate id should take last entry, got %+v", d)
	}
	if n := len(c.Definitions()); n != 1 {
		t.Fatalf("Definitions() = %d entries, want 1", n)
	}
}

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d, ok := c.Get(3)
	if !ok || d.FrameCount() != 4 {
		t.Fatalf("expected animation 3 with 4 frames, got %+v ok=%v", d, ok)
	}
	if _, ok := c.Get(5); ok {
		t.Fatalf("animation 5 has no frames and must be undefined")
	}
}
