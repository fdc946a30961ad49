package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"sources": ["a.wav", "b.mp3"],
		"format": "PNG",
		"width": 320,
		"wireframe": false,
		"style": "gradient"
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.wav", "b.mp3"}, cfg.Sources)
	assert.Equal(t, 320, cfg.Width)
	require.NotNil(t, cfg.Wireframe)
	assert.False(t, *cfg.Wireframe)

	cfg.Resolve(Flags{})
	assert.Equal(t, "png", cfg.Format)
	assert.False(t, *cfg.Wireframe)
	assert.Equal(t, "gradient", cfg.Style)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "config: parse")
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	assert.Equal(t, "webp", cfg.Format)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 512, cfg.FFTSize)
	require.NotNil(t, cfg.Smoothing)
	assert.Equal(t, 0.8, *cfg.Smoothing)
	assert.Equal(t, -100.0, cfg.MinDB)
	assert.Equal(t, -30.0, cfg.MaxDB)
	assert.Equal(t, "gradient", cfg.Style)
	assert.True(t, *cfg.Wireframe)
	assert.Equal(t, 75.0, cfg.FOV)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, filepath.IsAbs(cfg.OutputDir))
	assert.NoError(t, cfg.Validate())
}

func TestFlagsOverrideFile(t *testing.T) {
	cfg := Config{Sources: []string{"file.wav"}, Width: 100, Style: "gradient", FPS: 24}
	cfg.Resolve(Flags{
		Sources:  []string{"flag.mp3"},
		Width:    640,
		Style:    "emissive",
		Seed:     42,
		LogLevel: "debug",
	})
	assert.Equal(t, []string{"flag.mp3"}, cfg.Sources)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, "emissive", cfg.Style)
	assert.Equal(t, 24, cfg.FPS)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cfg := Config{Format: "gif"}
	cfg.Resolve(Flags{})
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Config{MinDB: -20, MaxDB: -40}
	cfg.Resolve(Flags{})
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestBackgroundRGB(t *testing.T) {
	cfg := Config{}
	bg, err := cfg.BackgroundRGB()
	require.NoError(t, err)
	assert.Nil(t, bg)

	cfg.Background = "#102030"
	bg, err = cfg.BackgroundRGB()
	require.NoError(t, err)
	assert.Equal(t, &[3]uint8{0x10, 0x20, 0x30}, bg)

	cfg.Background = "blue"
	cfg.Resolve(Flags{})
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestSmoothingZeroSurvivesResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"smoothing": 0}`), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Resolve(Flags{})
	require.NotNil(t, cfg.Smoothing)
	assert.Zero(t, *cfg.Smoothing)
	assert.NoError(t, cfg.Validate())

	k := 1.5
	cfg.Smoothing = &k
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}
