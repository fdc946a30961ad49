// Package lifecycle builds and tears down render sessions as the audio
// source changes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"audio-sphere/internal/audio"
	"audio-sphere/internal/frame"
	"audio-sphere/internal/mathutil"
	"audio-sphere/internal/mesh"
	"audio-sphere/internal/noise"
	"audio-sphere/internal/scene"
	"audio-sphere/internal/spectrum"
)

var (
	// ErrAcquire wraps any failure to build a session.
	ErrAcquire = errors.New("lifecycle: acquire")
	// ErrPlayback wraps a rejected play or pause.
	ErrPlayback = errors.New("lifecycle: playback")
	// ErrNotRunning is returned by controls that need a live session.
	ErrNotRunning = errors.New("lifecycle: not running")
)

// Opener resolves and decodes an audio source reference.
type Opener func(ctx context.Context, ref string) (*audio.Clip, error)

// Display is the surface sessions render into.
type Display interface {
	scene.Presenter
	Attach(width, height int) error
	Detach() error
}

// Deps are the host collaborators.
type Deps struct {
	Open      Opener // defaults to audio.Open
	Output    audio.Output
	Scheduler frame.Scheduler
	Display   Display
}

// Options are the per-session settings.
type Options struct {
	Style       scene.Style
	Analysis    spectrum.Options
	FOV         float64
	Width       int
	Height      int
	Supersample int
	Seed        int64 // 0 seeds each session from the clock
	Autoplay    bool
}

// session is everything one audio source owns. It is built by acquire and
// discarded by teardown; it is never reused.
type session struct {
	source   string
	clip     *audio.Clip
	playback audio.Playback
	sampler  *spectrum.Sampler
	viewport *scene.Viewport
	loop     *scene.Loop
}

// Manager owns the single live session. Its methods must be called from
// the goroutine that delivers frames.
type Manager struct {
	deps Deps
	opts Options

	state     State
	recording RecordingState
	sess      *session
	geometry  *mesh.Geometry
	loads     uint64

	width, height int
}

// New validates the collaborators and resolves the style.
func New(deps Deps, opts Options) (*Manager, error) {
	if deps.Open == nil {
		deps.Open = audio.Open
	}
	if deps.Output == nil || deps.Scheduler == nil || deps.Display == nil {
		return nil, errors.New("lifecycle: output, scheduler and display are required")
	}
	style, err := opts.Style.Resolve()
	if err != nil {
		return nil, fmt.Errorf("lifecycle: %w", err)
	}
	opts.Style = style
	if opts.Analysis == (spectrum.Options{}) {
		opts.Analysis = spectrum.DefaultOptions()
	}
	if opts.FOV <= 0 {
		opts.FOV = scene.DefaultFOV
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.Width <= 0 {
		opts.Width = 512
	}
	if opts.Height <= 0 {
		opts.Height = 512
	}
	return &Manager{deps: deps, opts: opts, width: opts.Width, height: opts.Height}, nil
}

// State returns the lifecycle phase.
func (m *Manager) State() State { return m.state }

// Geometry returns the cached reference geometry, or nil before the first load.
func (m *Manager) Geometry() *mesh.Geometry { return m.geometry }

// Load replaces the current session with one for ref. A running session is
// fully torn down first. On failure nothing stays acquired and the manager
// is Idle.
func (m *Manager) Load(ctx context.Context, ref string) error {
	if m.sess != nil {
		m.teardown()
	}

	m.state = Initializing
	s, err := m.acquire(ctx, ref)
	if err != nil {
		m.state = Idle
		logrus.WithFields(logrus.Fields{
			"function": "Manager.Load",
			"source":   ref,
			"error":    err.Error(),
		}).Error("session setup failed")
		return fmt.Errorf("%w %s: %w", ErrAcquire, ref, err)
	}
	m.sess = s
	m.state = Running
	m.loads++

	logrus.WithFields(logrus.Fields{
		"function": "Manager.Load",
		"source":   ref,
		"duration": s.clip.Duration().String(),
		"vertices": m.geometry.Len(),
	}).Info("session running")

	if m.opts.Autoplay {
		if err := m.Play(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) acquire(ctx context.Context, ref string) (s *session, err error) {
	var undo []func()
	defer func() {
		if err == nil {
			return
		}
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}()

	clip, err := m.deps.Open(ctx, ref)
	if err != nil {
		return nil, err
	}

	pb, err := m.deps.Output.Open(clip)
	if err != nil {
		return nil, fmt.Errorf("open playback: %w", err)
	}
	undo = append(undo, func() { _ = pb.Close() })

	analyser, err := spectrum.NewAnalyser(m.opts.Analysis)
	if err != nil {
		return nil, err
	}
	sampler := spectrum.NewSampler(analyser, audio.NewTap(clip, pb))
	undo = append(undo, sampler.Disconnect)

	style := m.opts.Style
	field := noise.New(m.opts.Seed)
	rng := rand.New(rand.NewPCG(uint64(field.Seed()), m.loads))
	mat, err := scene.NewMaterial(style, style.Light(), rng)
	if err != nil {
		return nil, err
	}
	sc := scene.New(mesh.New(m.referenceGeometry(), field), mat, style)

	cam := scene.NewCamera(m.opts.FOV, 1, scene.DefaultNear, scene.DefaultFar,
		mathutil.Vec3{0, 0, scene.DefaultCameraZ})
	vp := scene.NewViewport(cam, m.width, m.height, m.opts.Supersample)
	undo = append(undo, vp.Release)

	if err := m.deps.Display.Attach(m.width, m.height); err != nil {
		return nil, fmt.Errorf("attach display: %w", err)
	}

	loop := scene.NewLoop(m.deps.Scheduler, sampler, sc, vp, m.deps.Display)
	loop.Start()

	return &session{
		source:   ref,
		clip:     clip,
		playback: pb,
		sampler:  sampler,
		viewport: vp,
		loop:     loop,
	}, nil
}

// referenceGeometry reuses the cached sphere while radius and detail match.
func (m *Manager) referenceGeometry() *mesh.Geometry {
	st := m.opts.Style
	if m.geometry != nil && m.geometry.Radius() == st.Radius && m.geometry.Detail() == st.Detail {
		return m.geometry
	}
	m.geometry = mesh.Icosphere(st.Radius, st.Detail)
	return m.geometry
}

// teardown releases the live session in frame, audio, render, surface order.
func (m *Manager) teardown() {
	s := m.sess
	m.state = TearingDown
	log := logrus.WithFields(logrus.Fields{
		"function": "Manager.teardown",
		"source":   s.source,
	})

	s.loop.Stop()

	if s.playback.Playing() {
		if err := s.playback.Pause(); err != nil {
			log.WithField("error", err.Error()).Warn("pause failed")
		}
	}
	if err := s.playback.Close(); err != nil {
		log.WithField("error", err.Error()).Warn("close playback failed")
	}
	s.sampler.Disconnect()

	s.viewport.Release()

	if err := m.deps.Display.Detach(); err != nil {
		log.WithField("error", err.Error()).Warn("detach failed")
	}

	log.WithField("frames", s.loop.Frames()).Debug("session torn down")
	m.sess = nil
	m.state = Idle
}

// Play starts or resumes playback.
func (m *Manager) Play() error {
	if m.state != Running {
		return ErrNotRunning
	}
	return m.control("play", m.sess.playback.Play)
}

// Pause halts playback.
func (m *Manager) Pause() error {
	if m.state != Running {
		return ErrNotRunning
	}
	return m.control("pause", m.sess.playback.Pause)
}

// Toggle flips between playing and paused without leaving Running. A
// rejected request is logged and returned; the next call tries again.
func (m *Manager) Toggle() error {
	if m.state != Running {
		return ErrNotRunning
	}
	if m.sess.playback.Playing() {
		return m.control("pause", m.sess.playback.Pause)
	}
	return m.control("play", m.sess.playback.Play)
}

func (m *Manager) control(op string, fn func() error) error {
	if err := fn(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Manager.control",
			"op":       op,
			"source":   m.sess.source,
			"error":    err.Error(),
		}).Warn("playback request rejected")
		return fmt.Errorf("%w: %s: %w", ErrPlayback, op, err)
	}
	return nil
}

// Resize applies new output dimensions to the live viewport and remembers
// them for later sessions. Non-positive sizes are ignored.
func (m *Manager) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.width, m.height = w, h
	if m.sess != nil {
		m.sess.viewport.Resize(w, h)
	}
}

// Size returns the current output dimensions.
func (m *Manager) Size() (int, int) { return m.width, m.height }

// BeginCapture marks a recording in progress and pauses playback.
func (m *Manager) BeginCapture() error {
	m.recording = Capturing
	if m.sess != nil && m.sess.playback.Playing() {
		return m.control("pause", m.sess.playback.Pause)
	}
	return nil
}

// EndCapture ends the recording and switches to the uploaded clip at ref,
// starting it immediately.
func (m *Manager) EndCapture(ctx context.Context, ref string) error {
	m.recording = RecordingIdle
	if ref == "" {
		return nil
	}
	if err := m.Load(ctx, ref); err != nil {
		return err
	}
	if m.sess.playback.Playing() {
		return nil
	}
	return m.Play()
}

// Close tears down any live session.
func (m *Manager) Close() error {
	if m.sess != nil {
		m.teardown()
	}
	m.state = Idle
	return nil
}

// Status returns a snapshot of the session state.
func (m *Manager) Status() Status {
	st := Status{State: m.state, Recording: m.recording}
	s := m.sess
	if s == nil {
		return st
	}
	st.Source = s.source
	st.Duration = s.clip.Duration()
	st.Position = s.playback.Position()
	switch {
	case s.playback.Playing():
		st.Playback = Playing
	case st.Position > 0 && st.Position < st.Duration:
		st.Playback = Paused
	}
	st.Frames = s.loop.Frames()
	sig := s.loop.Signals()
	st.Bass, st.Treble = sig.Bass, sig.Treble
	return st
}
