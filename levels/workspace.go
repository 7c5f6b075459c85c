package levels

import (
	"fmt"
	"path/filepath"

	"github.com/milk9111/tileed/document"
)

// Open loads a level by name into ws. Documents backed by a file on disk are
// keyed by absolute path so watcher events can find them.
func Open(ws *document.Workspace, name string) (document.ID, *Level, error) {
	lvl, path, err := Load(name)
	if err != nil {
		return 0, nil, err
	}
	m, err := lvl.Map()
	if err != nil {
		return 0, nil, err
	}
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return ws.Open(lvl.Name, path, m, lvl.ViewportOrDefault()), lvl, nil
}

// Reload re-reads the file at path into the document opened from it. It
// reports false when no open document came from path.
func Reload(ws *document.Workspace, path string) (document.ID, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, false, fmt.Errorf("reload level %s: %w", path, err)
	}
	id, ok := ws.FindByPath(abs)
	if !ok {
		return 0, false, nil
	}
	lvl, err := LoadLevelFile(abs)
	if err != nil {
		return id, true, err
	}
	m, err := lvl.Map()
	if err != nil {
		return id, true, err
	}
	if err := ws.ReplaceMap(id, m); err != nil {
		return id, true, err
	}
	return id, true, nil
}
