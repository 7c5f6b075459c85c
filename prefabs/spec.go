package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

const (
	AnimationsFile = "animations.yaml"
	EditorFile     = "editor.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// AnimationCatalogSpec is the on-disk form of the animated tile catalog.
type AnimationCatalogSpec struct {
	Animations []AnimationDefSpec `yaml:"animations"`
}

type AnimationDefSpec struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Frames []int  `yaml:"frames"`
	// Color is the swatch the editor draws for the animation's frames.
	Color *YAMLColor `yaml:"color"`
}

func LoadAnimationCatalogSpec() (*AnimationCatalogSpec, error) {
	spec, err := LoadSpec[AnimationCatalogSpec](AnimationsFile)
	if err != nil {
		return nil, err
	}
	for i, def := range spec.Animations {
		if def.ID < 0 || def.ID > 255 {
			return nil, fmt.Errorf("prefabs: %s: animation %d (%q): id %d out of range", AnimationsFile, i, def.Name, def.ID)
		}
	}
	return &spec, nil
}

// EditorSpec configures the scheduler and the reference render surface.
type EditorSpec struct {
	MinIntervalMS   int         `yaml:"min_interval_ms"`
	RefreshHz       int         `yaml:"refresh_hz"`
	Surface         SurfaceSpec `yaml:"surface"`
	PreviewLoop     bool        `yaml:"preview_loop"`
	WatchDebounceMS int         `yaml:"watch_debounce_ms"`
}

type SurfaceSpec struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	TileSize int `yaml:"tile_size"`
}

const (
	defaultMinIntervalMS = 150
	defaultRefreshHz     = 60
	defaultSurfaceW      = 1280
	defaultSurfaceH      = 736
	defaultTileSize      = 32
	defaultWatchDebounce = 100
)

func LoadEditorSpec() (*EditorSpec, error) {
	spec, err := LoadSpec[EditorSpec](EditorFile)
	if err != nil {
		return nil, err
	}
	spec.applyDefaults()
	return &spec, nil
}

func (s *EditorSpec) applyDefaults() {
	if s.MinIntervalMS <= 0 {
		s.MinIntervalMS = defaultMinIntervalMS
	}
	if s.RefreshHz <= 0 {
		s.RefreshHz = defaultRefreshHz
	}
	if s.Surface.Width <= 0 {
		s.Surface.Width = defaultSurfaceW
	}
	if s.Surface.Height <= 0 {
		s.Surface.Height = defaultSurfaceH
	}
	if s.Surface.TileSize <= 0 {
		s.Surface.TileSize = defaultTileSize
	}
	if s.WatchDebounceMS <= 0 {
		s.WatchDebounceMS = defaultWatchDebounce
	}
}

func (s *EditorSpec) MinInterval() time.Duration {
	return time.Duration(s.MinIntervalMS) * time.Millisecond
}

func (s *EditorSpec) WatchDebounce() time.Duration {
	return time.Duration(s.WatchDebounceMS) * time.Millisecond
}

func (s *EditorSpec) RefreshInterval() time.Duration {
	return time.Second / time.Duration(s.RefreshHz)
}

// YAMLColor accepts "#rrggbb", "#rrggbbaa" or an SVG colour name.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(value.Value)]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
