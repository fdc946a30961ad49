package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"audio-sphere/internal/audio"
	"audio-sphere/internal/config"
	"audio-sphere/internal/export"
	"audio-sphere/internal/frame"
	"audio-sphere/internal/lifecycle"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	outputDir := flag.String("output", "", "Output directory (default: ./renders)")
	format := flag.String("format", "", "Frame format: webp, png or tga (default: webp)")
	width := flag.Int("width", 0, "Frame width in pixels (default: 512)")
	height := flag.Int("height", 0, "Frame height in pixels (default: 512)")
	fps := flag.Int("fps", 0, "Frames per second (default: 30)")
	duration := flag.Float64("duration", 0, "Seconds to render per source (default: whole clip)")
	workers := flag.Int("workers", 0, "Number of encoder goroutines (default: NumCPU)")
	style := flag.String("style", "", "Material style: gradient, emissive or lambert")
	detail := flag.Int("detail", 0, "Icosphere subdivision level (default: per style)")
	seed := flag.Int64("seed", 0, "Noise and palette seed (default: random)")
	logLevel := flag.String("log-level", "", "Log level (default: info)")
	play := flag.Bool("play", false, "Play audio in real time while exporting")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Sources:   flag.Args(),
		OutputDir: *outputDir,
		Format:    *format,
		Width:     *width,
		Height:    *height,
		FPS:       *fps,
		Duration:  *duration,
		Workers:   *workers,
		Style:     *style,
		Detail:    *detail,
		Seed:      *seed,
		LogLevel:  *logLevel,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(lvl)

	if len(cfg.Sources) == 0 {
		fmt.Println("No sources to render. Pass audio files or URLs as arguments.")
		os.Exit(0)
	}

	bg, _ := cfg.BackgroundRGB()
	sink, err := export.NewSink(export.Options{
		OutputDir:   cfg.OutputDir,
		Format:      cfg.Format,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		FPS:         cfg.FPS,
		Background:  bg,
		Progress:    true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mode := ""
	if *play {
		mode = " (real time)"
	}
	fmt.Printf("Audio Sphere Visualizer → %s%s\n", strings.ToUpper(cfg.Format), mode)
	fmt.Printf("Sources: %d, Style: %s, Size: %dx%d @ %d fps, Workers: %d\n",
		len(cfg.Sources), cfg.Style, cfg.Width, cfg.Height, cfg.FPS, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	var failures []string
	if *play {
		failures = runRealtime(ctx, cfg, sink)
	} else {
		failures = runHeadless(ctx, cfg, sink)
	}

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	frames := 0
	for _, s := range sink.Summaries() {
		frames += s.Frames
		fmt.Printf("  %s: %d frames", s.Dir, s.Frames)
		if s.Failed > 0 {
			fmt.Printf(", %d failed", s.Failed)
			failures = append(failures, fmt.Sprintf("%s: %d frames failed", s.Dir, s.Failed))
		}
		fmt.Println()
	}
	fmt.Printf("Rendered: %d frames from %d/%d sources\n", frames, len(sink.Summaries()), len(cfg.Sources))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failures))
		limit := 20
		if len(failures) < limit {
			limit = len(failures)
		}
		for _, f := range failures[:limit] {
			fmt.Printf("  %s\n", f)
		}
		os.Exit(1)
	}
}

// runHeadless steps a deterministic clock, so frame N always shows the
// audio at N/fps seconds regardless of how long encoding takes.
func runHeadless(ctx context.Context, cfg config.Config, sink *export.Sink) []string {
	sched := frame.NewManual()
	opts := lifecycle.OptionsFromConfig(cfg)
	opts.Autoplay = true
	mgr, err := lifecycle.New(lifecycle.Deps{
		Output:    audio.ClockOutput{Clock: sched},
		Scheduler: sched,
		Display:   sink,
	}, opts)
	if err != nil {
		return []string{err.Error()}
	}
	defer mgr.Close()

	dt := time.Second / time.Duration(cfg.FPS)
	var failures []string
	for _, src := range cfg.Sources {
		if ctx.Err() != nil {
			break
		}
		sink.Label(src)
		if err := mgr.Load(ctx, src); err != nil {
			failures = append(failures, err.Error())
			continue
		}
		n := frameCount(mgr.Status().Duration, cfg.Duration, cfg.FPS)
		stepFrames(ctx, sched, n, dt)
	}
	return failures
}

// runRealtime plays each source through the sound card and renders on a
// wall-clock ticker until the clip ends.
func runRealtime(ctx context.Context, cfg config.Config, sink *export.Sink) []string {
	dev, err := audio.NewDevice(0)
	if err != nil {
		return []string{err.Error()}
	}
	ticker := frame.NewTicker(time.Second / time.Duration(cfg.FPS))
	opts := lifecycle.OptionsFromConfig(cfg)
	opts.Autoplay = true
	mgr, err := lifecycle.New(lifecycle.Deps{Output: dev, Scheduler: ticker, Display: sink}, opts)
	if err != nil {
		return []string{err.Error()}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var failures []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for _, src := range cfg.Sources {
			loaded := make(chan error, 1)
			ticker.Post(func() {
				sink.Label(src)
				loaded <- mgr.Load(runCtx, src)
			})
			if err := wait(runCtx, loaded); err != nil {
				if runCtx.Err() != nil {
					return
				}
				failures = append(failures, err.Error())
				continue
			}

			limit := time.Duration(math.MaxInt64)
			if cfg.Duration > 0 {
				limit = time.Duration(cfg.Duration * float64(time.Second))
			}
			for {
				select {
				case <-runCtx.Done():
					return
				case <-time.After(100 * time.Millisecond):
				}
				status := make(chan lifecycle.Status, 1)
				ticker.Post(func() { status <- mgr.Status() })
				var st lifecycle.Status
				select {
				case <-runCtx.Done():
					return
				case st = <-status:
				}
				if st.Playback != lifecycle.Playing || st.Position >= limit {
					break
				}
			}
		}
	}()

	err = ticker.Run(runCtx)
	<-done
	if err != nil && !errors.Is(err, context.Canceled) {
		failures = append(failures, err.Error())
	}
	mgr.Close()
	return failures
}

func wait(ctx context.Context, ch <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-ch:
		return err
	}
}

// stepFrames runs n frames at 0, dt, 2·dt... after the session start, so
// frame i shows the audio at i/fps, as the manifest records.
func stepFrames(ctx context.Context, sched *frame.Manual, n int, dt time.Duration) {
	for i := 0; i < n && ctx.Err() == nil; i++ {
		if i == 0 {
			sched.Step(0)
			continue
		}
		sched.Step(dt)
	}
}

func frameCount(clip time.Duration, limit float64, fps int) int {
	d := clip.Seconds()
	if limit > 0 && limit < d {
		d = limit
	}
	return int(math.Ceil(d * float64(fps)))
}
