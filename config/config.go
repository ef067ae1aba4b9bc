// Package config loads the YAML session file shared by shapedump and
// shapeview.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/milk9111/shapecache/shape"
	"gopkg.in/yaml.v3"
)

const (
	BackendChipmunk = "chipmunk"
	BackendBox2D    = "box2d"
)

var (
	ErrInvalidScale   = errors.New("config: scale must be a positive number")
	ErrUnknownBackend = errors.New("config: unknown backend")
	ErrNoFiles        = errors.New("config: no shape files listed")
)

type WindowSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Config struct {
	// Scale divides every coordinate. 0 in the file means "use each
	// file's ptm_ratio".
	Scale         float64    `yaml:"scale"`
	Backend       string     `yaml:"backend"`
	Files         []string   `yaml:"files"`
	Gravity       shape.Vec2 `yaml:"gravity"`
	LogLevel      string     `yaml:"log_level"`
	Watch         bool       `yaml:"watch"`
	Sprites       string     `yaml:"sprites"`
	Window        WindowSpec `yaml:"window"`
	PixelsPerUnit float64    `yaml:"pixels_per_unit"`
}

// Default returns a config with every optional field filled in.
func Default() Config {
	return Config{
		Scale:         1,
		Backend:       BackendChipmunk,
		Gravity:       shape.Vec2{X: 0, Y: -10},
		LogLevel:      "info",
		Window:        WindowSpec{Width: 1280, Height: 720},
		PixelsPerUnit: 1,
	}
}

// Load reads filename over Default. Relative shape and sprite paths are
// resolved against the config file's directory.
func Load(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", filename, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", filename, err)
	}

	dir := filepath.Dir(filename)
	for i, f := range cfg.Files {
		cfg.Files[i] = resolve(dir, f)
	}
	if cfg.Sprites != "" {
		cfg.Sprites = resolve(dir, cfg.Sprites)
	}
	return cfg, nil
}

// Parse decodes data over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		cfg.Window = Default().Window
	}
	if cfg.PixelsPerUnit <= 0 {
		cfg.PixelsPerUnit = 1
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Scale < 0 || math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, c.Scale)
	}
	switch c.Backend {
	case BackendChipmunk, BackendBox2D:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if len(c.Files) == 0 {
		return ErrNoFiles
	}
	return nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
