// Package session remembers per-level editor state between runs.
package session

import (
	"fmt"
	"log"
	"strings"

	"github.com/milk9111/tileed/document"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const viewportObject = "viewports"

// Store is the subset of *gdata.Manager the session uses.
type Store interface {
	ObjectPropExists(objectKey, propKey string) bool
	LoadObjectProp(objectKey, propKey string) ([]byte, error)
	SaveObjectProp(objectKey, propKey string, data []byte) error
}

// Viewports persists the viewport each level was last viewed with. A nil
// store degrades to an in-memory no-op.
type Viewports struct {
	store Store
}

// Open creates the gdata-backed store for appName.
func Open(appName string) (*Viewports, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", appName, err)
	}
	return New(m), nil
}

func New(store Store) *Viewports {
	return &Viewports{store: store}
}

type viewportRecord struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Zoom float64 `yaml:"zoom"`
}

// Load returns the saved viewport for level.
func (v *Viewports) Load(level string) (document.Viewport, bool) {
	if v == nil || v.store == nil {
		return document.Viewport{}, false
	}
	key := propKey(level)
	if key == "" || !v.store.ObjectPropExists(viewportObject, key) {
		return document.Viewport{}, false
	}
	data, err := v.store.LoadObjectProp(viewportObject, key)
	if err != nil {
		log.Printf("session: load viewport %s: %v", level, err)
		return document.Viewport{}, false
	}
	var rec viewportRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		log.Printf("session: decode viewport %s: %v", level, err)
		return document.Viewport{}, false
	}
	return document.Viewport{X: rec.X, Y: rec.Y, Zoom: rec.Zoom}.Clamped(), true
}

// Save stores the viewport for level.
func (v *Viewports) Save(level string, vp document.Viewport) error {
	if v == nil || v.store == nil {
		return nil
	}
	key := propKey(level)
	if key == "" {
		return fmt.Errorf("session: save viewport: empty level name")
	}
	data, err := yaml.Marshal(viewportRecord{X: vp.X, Y: vp.Y, Zoom: vp.Zoom})
	if err != nil {
		return fmt.Errorf("session: encode viewport %s: %w", level, err)
	}
	if err := v.store.SaveObjectProp(viewportObject, key, data); err != nil {
		return fmt.Errorf("session: save viewport %s: %w", level, err)
	}
	return nil
}

// SaveAll stores the viewport of every open document.
func (v *Viewports) SaveAll(ws *document.Workspace) error {
	if ws == nil {
		return nil
	}
	for _, doc := range ws.Documents() {
		if err := v.Save(doc.Name, doc.Viewport); err != nil {
			return err
		}
	}
	return nil
}

// propKey maps a level name onto the characters gdata accepts in keys.
func propKey(level string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(level) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ' ' || r == '/':
			b.WriteRune('_')
		}
	}
	return b.String()
}
