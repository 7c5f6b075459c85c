package script

import (
	"log"

	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/prefabs"
	"github.com/milk9111/tileed/visibility"
)

// ConfigFromSpec builds a runtime config from the editor spec, so scenarios
// see the same surface and interval as the editor.
func ConfigFromSpec(catalog *anim.Catalog, spec *prefabs.EditorSpec, logger *log.Logger) Config {
	cfg := Config{Catalog: catalog, Logger: logger}
	if spec == nil {
		return cfg
	}
	cfg.Surface = visibility.Surface{
		Width:    spec.Surface.Width,
		Height:   spec.Surface.Height,
		TileSize: spec.Surface.TileSize,
	}
	cfg.MinInterval = spec.MinInterval()
	cfg.Preview = spec.PreviewLoop
	return cfg
}

// DefaultConfig loads the catalog and editor spec from prefabs.
func DefaultConfig(logger *log.Logger) (Config, error) {
	catalog, err := anim.Load()
	if err != nil {
		return Config{}, err
	}
	spec, err := prefabs.LoadEditorSpec()
	if err != nil {
		return Config{}, err
	}
	return ConfigFromSpec(catalog, spec, logger), nil
}
