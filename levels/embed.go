package levels

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/tile"
	"github.com/natefinch/atomic"
)

//go:embed *.json
var LevelsFS embed.FS

// Level is the on-disk form of a document map. Only non-empty cells are
// stored.
type Level struct {
	Name     string         `json:"name"`
	Size     int            `json:"size,omitempty"`
	Cells    []PlacedCell   `json:"cells"`
	Viewport *ViewportEntry `json:"viewport,omitempty"`
}

// PlacedCell is either an animated placement (Anim set) or a static tile.
type PlacedCell struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Anim   *int `json:"anim,omitempty"`
	Offset int  `json:"offset,omitempty"`
	Tile   int  `json:"tile,omitempty"`
}

// ViewportEntry is the viewport a level opens with.
type ViewportEntry struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Map decodes the level into a document map.
func (l *Level) Map() (*document.Map, error) {
	if l.Size != 0 && l.Size != document.MapSide {
		return nil, fmt.Errorf("level %q: size %d, want %d", l.Name, l.Size, document.MapSide)
	}
	var m document.Map
	for i, c := range l.Cells {
		cell := tile.Static(c.Tile)
		if c.Anim != nil {
			cell = tile.Encode(*c.Anim, c.Offset)
		}
		if !m.Set(c.X, c.Y, cell) {
			return nil, fmt.Errorf("level %q: cell %d at (%d,%d) out of bounds", l.Name, i, c.X, c.Y)
		}
	}
	return &m, nil
}

// ViewportOrDefault returns the stored viewport or the default one.
func (l *Level) ViewportOrDefault() document.Viewport {
	if l.Viewport == nil {
		return document.DefaultViewport()
	}
	return document.Viewport{X: l.Viewport.X, Y: l.Viewport.Y, Zoom: l.Viewport.Zoom}.Clamped()
}

// FromMap encodes a document map, skipping empty cells.
func FromMap(name string, m *document.Map, vp document.Viewport) *Level {
	lvl := &Level{Name: name, Size: document.MapSide, Viewport: &ViewportEntry{X: vp.X, Y: vp.Y, Zoom: vp.Zoom}}
	if m == nil {
		return lvl
	}
	for y := 0; y < document.MapSide; y++ {
		for x := 0; x < document.MapSide; x++ {
			c := m.At(x, y)
			if c == 0 {
				continue
			}
			pc := PlacedCell{X: x, Y: y}
			if tile.IsAnimated(c) {
				id, off := tile.Decode(c)
				a := int(id)
				pc.Anim = &a
				pc.Offset = int(off)
			} else {
				pc.Tile = c.TileIndex()
			}
			lvl.Cells = append(lvl.Cells, pc)
		}
	}
	return lvl
}

func decode(name string, data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level %s: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return &lvl, nil
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return decode(name, data)
}

// LoadLevelFile reads a level from disk.
func LoadLevelFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return decode(path, data)
}

// Load resolves a level name the way the editor's -level flag does: a path
// on disk first, then levels/<name>.json on disk, then the embedded copy.
func Load(name string) (*Level, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("read level: empty name")
	}
	file := name
	if filepath.Ext(file) == "" {
		file += ".json"
	}
	for _, p := range []string{name, file, filepath.Join("levels", filepath.Base(file))} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			lvl, err := LoadLevelFile(p)
			return lvl, p, err
		}
	}
	lvl, err := LoadLevelFromFS(filepath.Base(file))
	return lvl, "", err
}

// Save writes the level atomically so a watcher never sees a torn file.
func Save(path string, lvl *Level) error {
	data, err := json.MarshalIndent(lvl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal level %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write level %s: %w", path, err)
	}
	return nil
}

// Embedded lists the embedded level files.
func Embedded() ([]string, error) {
	names, err := fs.Glob(LevelsFS, "*.json")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
