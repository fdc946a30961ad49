package export

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"audio-sphere/internal/postprocess"
	"audio-sphere/internal/raster"
)

// ErrNotAttached is returned by Present outside Attach/Detach.
var ErrNotAttached = errors.New("export: sink not attached")

// Options configure a Sink.
type Options struct {
	OutputDir   string
	Format      string
	Supersample int
	Workers     int
	FPS         int
	Background  *[3]uint8 // flatten onto this color when set
	Progress    bool      // print throughput while a session is attached
}

// Summary holds the outcome of one exported session.
type Summary struct {
	Dir     string
	Frames  int
	Failed  int
	Elapsed time.Duration
}

type job struct {
	index int
	img   *image.NRGBA
}

// Sink is a display that encodes every presented frame on a worker pool.
// Each Attach opens a new session directory; Detach drains the pool and
// writes manifest.json.
type Sink struct {
	opts Options
	enc  Encoder
	ext  string

	label    string
	sessions int
	summary  []Summary

	// per session
	dir      string
	manifest Manifest
	next     int
	jobs     chan job
	wg       sync.WaitGroup
	mu       sync.Mutex
	written  atomic.Int64
	start    time.Time
	done     chan struct{}
}

// NewSink validates the format and fills defaults.
func NewSink(opts Options) (*Sink, error) {
	enc, err := EncoderFor(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.FPS < 1 {
		opts.FPS = 30
	}
	return &Sink{opts: opts, enc: enc, ext: opts.Format}, nil
}

// Label names the next session directory.
func (s *Sink) Label(name string) { s.label = name }

// Summaries returns the finished sessions in order.
func (s *Sink) Summaries() []Summary { return s.summary }

// Attach implements the lifecycle display: it creates the session directory
// and starts the workers.
func (s *Sink) Attach(w, h int) error {
	if s.jobs != nil {
		return errors.New("export: sink already attached")
	}
	s.sessions++
	name := fmt.Sprintf("%03d_%s", s.sessions, sanitize(s.label))
	dir := filepath.Join(s.opts.OutputDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("export: attach %s: %w", dir, err)
	}

	s.dir = dir
	s.manifest = Manifest{Source: s.label, Format: s.opts.Format, Width: w, Height: h, FPS: s.opts.FPS}
	s.next = 0
	s.written.Store(0)
	s.start = time.Now()
	s.jobs = make(chan job, s.opts.Workers*2)

	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	if s.opts.Progress {
		s.done = make(chan struct{})
		go s.report(s.done)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Sink.Attach",
		"dir":      dir,
		"workers":  s.opts.Workers,
	}).Debug("export session opened")
	return nil
}

// Present copies the framebuffer and queues it for encoding. It blocks
// while every worker is busy.
func (s *Sink) Present(fb *raster.FrameBuffer) error {
	if s.jobs == nil {
		return ErrNotAttached
	}
	idx := s.next
	s.next++
	s.mu.Lock()
	s.manifest.Frames = append(s.manifest.Frames, ManifestEntry{
		Index:  idx,
		TimeMs: float64(idx) * 1000 / float64(s.opts.FPS),
		Image:  frameName(idx, s.ext),
	})
	s.mu.Unlock()
	s.jobs <- job{index: idx, img: fb.Image()}
	return nil
}

// Detach waits for queued frames and writes the manifest.
func (s *Sink) Detach() error {
	if s.jobs == nil {
		return ErrNotAttached
	}
	close(s.jobs)
	s.wg.Wait()
	s.jobs = nil
	if s.done != nil {
		close(s.done)
		s.done = nil
	}

	failed := 0
	var first string
	for _, e := range s.manifest.Frames {
		if e.Error != "" {
			failed++
			if first == "" {
				first = e.Error
			}
		}
	}
	sum := Summary{Dir: s.dir, Frames: len(s.manifest.Frames), Failed: failed, Elapsed: time.Since(s.start)}
	s.summary = append(s.summary, sum)

	if err := WriteManifest(filepath.Join(s.dir, "manifest.json"), s.manifest); err != nil {
		return fmt.Errorf("export: write manifest: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("export: %d of %d frames failed: %s", failed, sum.Frames, first)
	}
	return nil
}

func (s *Sink) worker() {
	defer s.wg.Done()
	for j := range s.jobs {
		if err := s.writeFrame(j); err != nil {
			s.mu.Lock()
			s.manifest.Frames[j.index].Error = err.Error()
			s.mu.Unlock()
			logrus.WithFields(logrus.Fields{
				"function": "Sink.worker",
				"frame":    j.index,
				"error":    err.Error(),
			}).Warn("frame write failed")
		}
		s.written.Add(1)
	}
}

func (s *Sink) writeFrame(j job) error {
	img := j.img
	if ss := s.opts.Supersample; ss > 1 {
		b := img.Bounds()
		img = postprocess.Downsample(img, b.Dx()/ss, b.Dy()/ss)
	}
	if bg := s.opts.Background; bg != nil {
		img = postprocess.Flatten(img, *bg)
	}

	f, err := os.Create(filepath.Join(s.dir, frameName(j.index, s.ext)))
	if err != nil {
		return err
	}
	if err := s.enc(f, img); err != nil {
		f.Close()
		return fmt.Errorf("%s encode: %w", s.ext, err)
	}
	return f.Close()
}

func (s *Sink) report(done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			p := s.written.Load()
			if p > 0 {
				rate := float64(p) / time.Since(s.start).Seconds()
				fmt.Printf("  [%d] %.1f frames/sec\n", p, rate)
			}
		}
	}
}

func frameName(idx int, ext string) string {
	return fmt.Sprintf("frame_%05d.%s", idx, ext)
}

func sanitize(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "session"
	}
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}
