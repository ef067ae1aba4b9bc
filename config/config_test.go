package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/shapecache/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("files: [shapes.plist]\n"))
	require.NoError(t, err)

	want := Default()
	want.Files = []string{"shapes.plist"}
	assert.Equal(t, want, cfg)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
scale: 0
backend: box2d
files: [a.yaml, b.plist.zst]
gravity: {x: 1, y: 2}
log_level: debug
watch: true
sprites: art
window: {width: 640, height: 480}
pixels_per_unit: 32
`))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Scale:         0,
		Backend:       BackendBox2D,
		Files:         []string{"a.yaml", "b.plist.zst"},
		Gravity:       shape.Vec2{X: 1, Y: 2},
		LogLevel:      "debug",
		Watch:         true,
		Sprites:       "art",
		Window:        WindowSpec{Width: 640, Height: 480},
		PixelsPerUnit: 32,
	}, cfg)
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		is   error
	}{
		{"negative_scale", "scale: -1\nfiles: [a.yaml]\n", ErrInvalidScale},
		{"unknown_backend", "backend: bullet\nfiles: [a.yaml]\n", ErrUnknownBackend},
		{"no_files", "scale: 2\n", ErrNoFiles},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.doc))
			assert.ErrorIs(t, err, c.is)
		})
	}

	_, err := Parse([]byte("files: ["))
	assert.Error(t, err)
}

func TestParseFixesBadWindow(t *testing.T) {
	cfg, err := Parse([]byte("files: [a.yaml]\nwindow: {width: 0, height: 10}\npixels_per_unit: -4\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Window, cfg.Window)
	assert.Equal(t, 1.0, cfg.PixelsPerUnit)
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere", "c.yaml")
	doc := "files: [a.yaml, sub/b.plist, " + abs + "]\nsprites: art\n"
	path := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "sub", "b.plist"),
		abs,
	}, cfg.Files)
	assert.Equal(t, filepath.Join(dir, "art"), cfg.Sprites)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
