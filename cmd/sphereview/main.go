//go:build !headless

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"audio-sphere/internal/audio"
	"audio-sphere/internal/config"
	"audio-sphere/internal/lifecycle"
	"audio-sphere/internal/window"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	width := flag.Int("width", 0, "Window width (default: 512)")
	height := flag.Int("height", 0, "Window height (default: 512)")
	style := flag.String("style", "", "Material style: gradient, emissive or lambert")
	detail := flag.Int("detail", 0, "Icosphere subdivision level (default: per style)")
	seed := flag.Int64("seed", 0, "Noise and palette seed (default: random)")
	logLevel := flag.String("log-level", "", "Log level (default: info)")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		Sources:  flag.Args(),
		Width:    *width,
		Height:   *height,
		Style:    *style,
		Detail:   *detail,
		Seed:     *seed,
		LogLevel: *logLevel,
	})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}

	if len(cfg.Sources) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: sphereview [flags] <audio file or URL>...")
		os.Exit(2)
	}

	dev, err := audio.NewDevice(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	host := window.New("Audio Sphere", cfg.Width, cfg.Height)
	opts := lifecycle.OptionsFromConfig(cfg)
	// The window scales the frame itself.
	opts.Supersample = 1
	opts.Autoplay = true
	mgr, err := lifecycle.New(lifecycle.Deps{Output: dev, Scheduler: host, Display: host}, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer mgr.Close()

	ctx := context.Background()
	current := 0
	load := func() {
		src := cfg.Sources[current]
		if err := mgr.Load(ctx, src); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", src, err)
		}
	}
	host.Bind(mgr, func() {
		current = (current + 1) % len(cfg.Sources)
		load()
	})

	load()
	fmt.Println("Space: play/pause  N: next source  Esc: quit")
	if err := host.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
