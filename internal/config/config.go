package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// ErrInvalid reports a setting that cannot be used.
var ErrInvalid = errors.New("config: invalid")

// Supported frame formats.
var Formats = []string{"webp", "png", "tga"}

// Config holds all sources, output paths and render settings.
type Config struct {
	// Paths
	Sources   []string `json:"sources"`
	OutputDir string   `json:"output_dir"`

	// Output settings
	Format      string  `json:"format"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Supersample int     `json:"supersample"`
	FPS         int     `json:"fps"`
	Duration    float64 `json:"duration"` // seconds per source, 0 = whole clip
	Workers     int     `json:"workers"`
	Background  string  `json:"background"` // "#rrggbb", empty keeps alpha

	// Analysis
	FFTSize   int      `json:"fft_size"`
	Smoothing *float64 `json:"smoothing"` // nil means 0.8; 0 disables smoothing
	MinDB     float64  `json:"min_db"`
	MaxDB     float64  `json:"max_db"`

	// Scene
	Style     string  `json:"style"`
	Detail    int     `json:"detail"`
	Radius    float64 `json:"radius"`
	Wireframe *bool   `json:"wireframe"`
	Color     string  `json:"color"`
	FOV       float64 `json:"fov"`
	Seed      int64   `json:"seed"`

	LogLevel string `json:"log_level"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if len(flags.Sources) > 0 {
		c.Sources = flags.Sources
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Duration > 0 {
		c.Duration = flags.Duration
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Style != "" {
		c.Style = flags.Style
	}
	if flags.Detail > 0 {
		c.Detail = flags.Detail
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}
	if !filepath.IsAbs(c.OutputDir) {
		if cwd, err := os.Getwd(); err == nil {
			c.OutputDir = filepath.Join(cwd, c.OutputDir)
		}
	}

	// Defaults for render settings
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Width <= 0 {
		c.Width = 512
	}
	if c.Height <= 0 {
		c.Height = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	if c.FFTSize <= 0 {
		c.FFTSize = 512
	}
	if c.Smoothing == nil {
		k := 0.8
		c.Smoothing = &k
	}
	if c.MinDB == 0 && c.MaxDB == 0 {
		c.MinDB, c.MaxDB = -100, -30
	}

	if c.Style == "" {
		c.Style = "gradient"
	}
	if c.Wireframe == nil {
		on := true
		c.Wireframe = &on
	}
	if c.FOV <= 0 {
		c.FOV = 75
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects settings Resolve cannot repair.
func (c *Config) Validate() error {
	ok := false
	for _, f := range Formats {
		if c.Format == f {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: format %q (want one of %s)", ErrInvalid, c.Format, strings.Join(Formats, ", "))
	}
	if c.Smoothing != nil && (*c.Smoothing < 0 || *c.Smoothing > 1) {
		return fmt.Errorf("%w: smoothing %.2f outside [0, 1]", ErrInvalid, *c.Smoothing)
	}
	if c.MinDB >= c.MaxDB {
		return fmt.Errorf("%w: min_db %.1f must be below max_db %.1f", ErrInvalid, c.MinDB, c.MaxDB)
	}
	if _, err := c.BackgroundRGB(); err != nil {
		return err
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration %.2f", ErrInvalid, c.Duration)
	}
	return nil
}

// BackgroundRGB parses Background. It returns nil when no background is set.
func (c *Config) BackgroundRGB() (*[3]uint8, error) {
	if c.Background == "" {
		return nil, nil
	}
	h := strings.TrimPrefix(c.Background, "#")
	v, err := strconv.ParseUint(h, 16, 32)
	if len(h) != 6 || err != nil {
		return nil, fmt.Errorf("%w: background %q (want #rrggbb)", ErrInvalid, c.Background)
	}
	return &[3]uint8{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Sources   []string
	OutputDir string
	Format    string
	Width     int
	Height    int
	FPS       int
	Duration  float64
	Workers   int
	Style     string
	Detail    int
	Seed      int64
	LogLevel  string
}
