package lifecycle

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio-sphere/internal/audio"
	"audio-sphere/internal/config"
	"audio-sphere/internal/frame"
	"audio-sphere/internal/raster"
	"audio-sphere/internal/scene"
	"audio-sphere/internal/spectrum"
)

type events struct{ log []string }

func (e *events) add(s string) { e.log = append(e.log, s) }

func (e *events) index(s string) int {
	for i, v := range e.log {
		if v == s {
			return i
		}
	}
	return -1
}

type fakeScheduler struct {
	*frame.Manual
	ev *events
}

func (f fakeScheduler) Cancel(h frame.Handle) {
	f.ev.add("cancel")
	f.Manual.Cancel(h)
}

type fakePlayback struct {
	ev      *events
	name    string
	playing bool
	pos     time.Duration
	failing error
}

func (p *fakePlayback) Play() error {
	if p.failing != nil {
		return p.failing
	}
	p.ev.add("play:" + p.name)
	p.playing = true
	return nil
}

func (p *fakePlayback) Pause() error {
	p.ev.add("pause:" + p.name)
	p.playing = false
	p.pos = 500 * time.Millisecond
	return nil
}

func (p *fakePlayback) Playing() bool           { return p.playing }
func (p *fakePlayback) Position() time.Duration { return p.pos }

func (p *fakePlayback) Close() error {
	p.ev.add("close:" + p.name)
	p.playing = false
	return nil
}

type fakeOutput struct {
	ev      *events
	opened  []*fakePlayback
	failing error
}

func (o *fakeOutput) Open(clip *audio.Clip) (audio.Playback, error) {
	if o.failing != nil {
		return nil, o.failing
	}
	pb := &fakePlayback{ev: o.ev, name: clip.Name}
	o.opened = append(o.opened, pb)
	return pb, nil
}

type fakeDisplay struct {
	ev        *events
	attachErr error
	frames    []*raster.FrameBuffer
	colors    [][]uint8
}

func (d *fakeDisplay) Attach(w, h int) error {
	if d.attachErr != nil {
		return d.attachErr
	}
	d.ev.add("attach")
	return nil
}

func (d *fakeDisplay) Present(fb *raster.FrameBuffer) error {
	d.frames = append(d.frames, fb)
	d.colors = append(d.colors, fb.Color)
	return nil
}

func (d *fakeDisplay) Detach() error {
	d.ev.add("detach")
	return nil
}

func opener(ctx context.Context, ref string) (*audio.Clip, error) {
	if ref == "missing" {
		return nil, errors.New("no such source")
	}
	pcm := make([]float32, 8000)
	for i := range pcm {
		pcm[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}
	return audio.NewClip(ref, 8000, 1, pcm), nil
}

type harness struct {
	ev      *events
	sched   fakeScheduler
	out     *fakeOutput
	display *fakeDisplay
	mgr     *Manager
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	ev := &events{}
	h := &harness{
		ev:      ev,
		sched:   fakeScheduler{Manual: frame.NewManual(), ev: ev},
		out:     &fakeOutput{ev: ev},
		display: &fakeDisplay{ev: ev},
	}
	if opts.Style.Material == "" {
		opts.Style = scene.Style{Material: scene.Lambert, Detail: 1}
	}
	if opts.Analysis.FFTSize == 0 {
		opts.Analysis = spectrum.DefaultOptions()
	}
	if opts.Width == 0 {
		opts.Width, opts.Height = 32, 32
	}
	opts.Seed = 1
	mgr, err := New(Deps{Open: opener, Output: h.out, Scheduler: h.sched, Display: h.display}, opts)
	require.NoError(t, err)
	h.mgr = mgr
	return h
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Deps{}, Options{Style: scene.Style{Material: scene.Lambert}})
	assert.Error(t, err)

	ev := &events{}
	_, err = New(Deps{Output: &fakeOutput{ev: ev}, Scheduler: frame.NewManual(), Display: &fakeDisplay{ev: ev}},
		Options{Style: scene.Style{Material: "chrome"}})
	assert.ErrorIs(t, err, scene.ErrUnknownStyle)
}

func TestLoadRunsSession(t *testing.T) {
	h := newHarness(t, Options{Autoplay: true})
	require.NoError(t, h.mgr.Load(context.Background(), "a"))

	st := h.mgr.Status()
	assert.Equal(t, Running, st.State)
	assert.Equal(t, "a", st.Source)
	assert.Equal(t, Playing, st.Playback)
	assert.Equal(t, time.Second, st.Duration)

	h.sched.Step(16 * time.Millisecond)
	h.sched.Step(16 * time.Millisecond)
	assert.Equal(t, uint64(2), h.mgr.Status().Frames)
	assert.Len(t, h.display.frames, 2)
}

func TestSwapTearsDownOnceBeforeInit(t *testing.T) {
	h := newHarness(t, Options{Autoplay: true})
	ctx := context.Background()
	require.NoError(t, h.mgr.Load(ctx, "a"))
	h.sched.Step(time.Millisecond)

	require.NoError(t, h.mgr.Load(ctx, "b"))
	assert.Equal(t, []string{
		"attach", "play:a",
		"cancel", "pause:a", "close:a", "detach",
		"attach", "play:b",
	}, h.ev.log)
	assert.Equal(t, "b", h.mgr.Status().Source)
}

func TestNoStaleFrameAfterSwap(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	// Queued ahead of the first session's frame so both fire in one step.
	h.sched.Schedule(func(time.Duration) {
		require.NoError(t, h.mgr.Load(ctx, "b"))
	})
	require.NoError(t, h.mgr.Load(ctx, "a"))

	h.sched.Step(time.Millisecond)
	assert.Empty(t, h.display.frames, "old session rendered after teardown")

	h.sched.Step(time.Millisecond)
	require.Len(t, h.display.frames, 1)
	assert.Equal(t, "b", h.mgr.Status().Source)
	assert.NotNil(t, h.display.colors[0])
	assert.Equal(t, 1, h.sched.Pending())
}

func TestTeardownOrder(t *testing.T) {
	h := newHarness(t, Options{Autoplay: true})
	require.NoError(t, h.mgr.Load(context.Background(), "a"))
	require.NoError(t, h.mgr.Close())

	cancel := h.ev.index("cancel")
	pause := h.ev.index("pause:a")
	closed := h.ev.index("close:a")
	detach := h.ev.index("detach")
	require.NotEqual(t, -1, cancel)
	assert.Less(t, cancel, pause)
	assert.Less(t, pause, closed)
	assert.Less(t, closed, detach)
	assert.Equal(t, Idle, h.mgr.State())
	assert.Equal(t, 0, h.sched.Pending())
}

func TestOpenFailureLeavesIdle(t *testing.T) {
	h := newHarness(t, Options{})
	err := h.mgr.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAcquire)
	assert.Equal(t, Idle, h.mgr.State())
	assert.Empty(t, h.out.opened)
	assert.Equal(t, 0, h.sched.Pending())
}

func TestAttachFailureReleasesPlayback(t *testing.T) {
	h := newHarness(t, Options{})
	h.display.attachErr = errors.New("no surface")

	err := h.mgr.Load(context.Background(), "a")
	assert.ErrorIs(t, err, ErrAcquire)
	assert.Equal(t, Idle, h.mgr.State())
	assert.Equal(t, []string{"close:a"}, h.ev.log)
	assert.Equal(t, 0, h.sched.Pending())
	assert.Equal(t, Status{}, h.mgr.Status())
}

func TestFailureAfterRunningTearsDownFirst(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	require.NoError(t, h.mgr.Load(ctx, "a"))
	assert.ErrorIs(t, h.mgr.Load(ctx, "missing"), ErrAcquire)
	assert.Equal(t, Idle, h.mgr.State())
	assert.Contains(t, h.ev.log, "detach")
}

func TestBadAnalysisOptions(t *testing.T) {
	h := newHarness(t, Options{Analysis: spectrum.Options{FFTSize: 100, MinDB: -100, MaxDB: -30}})
	err := h.mgr.Load(context.Background(), "a")
	assert.ErrorIs(t, err, ErrAcquire)
	assert.ErrorIs(t, err, spectrum.ErrInvalidOptions)
	assert.Equal(t, []string{"close:a"}, h.ev.log)
}

func TestToggle(t *testing.T) {
	h := newHarness(t, Options{})
	assert.ErrorIs(t, h.mgr.Toggle(), ErrNotRunning)

	require.NoError(t, h.mgr.Load(context.Background(), "a"))
	assert.Equal(t, PlaybackIdle, h.mgr.Status().Playback)

	require.NoError(t, h.mgr.Toggle())
	assert.Equal(t, Playing, h.mgr.Status().Playback)
	require.NoError(t, h.mgr.Toggle())
	assert.Equal(t, Paused, h.mgr.Status().Playback)
	assert.Equal(t, Running, h.mgr.State())
}

func TestToggleFailureIsRetried(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.mgr.Load(context.Background(), "a"))
	pb := h.out.opened[0]
	pb.failing = errors.New("autoplay blocked")

	err := h.mgr.Toggle()
	assert.ErrorIs(t, err, ErrPlayback)
	assert.Equal(t, Running, h.mgr.State())

	h.sched.Step(time.Millisecond)
	assert.Equal(t, uint64(1), h.mgr.Status().Frames)

	pb.failing = nil
	require.NoError(t, h.mgr.Toggle())
	assert.True(t, pb.playing)
}

func TestAutoplayFailureKeepsSession(t *testing.T) {
	h := newHarness(t, Options{Autoplay: true})
	h.mgr.deps.Output = &blockedOutput{fakeOutput: h.out}

	err := h.mgr.Load(context.Background(), "a")
	assert.ErrorIs(t, err, ErrPlayback)
	assert.Equal(t, Running, h.mgr.State())
}

type blockedOutput struct{ *fakeOutput }

func (o *blockedOutput) Open(clip *audio.Clip) (audio.Playback, error) {
	pb, err := o.fakeOutput.Open(clip)
	if err != nil {
		return nil, err
	}
	pb.(*fakePlayback).failing = errors.New("blocked")
	return pb, nil
}

func TestResizeForwardsAndPersists(t *testing.T) {
	h := newHarness(t, Options{})
	h.mgr.Resize(64, 16)
	h.mgr.Resize(0, 16)
	w, ht := h.mgr.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 16, ht)

	require.NoError(t, h.mgr.Load(context.Background(), "a"))
	h.sched.Step(time.Millisecond)
	require.Len(t, h.display.frames, 1)
	assert.Equal(t, 64, h.display.frames[0].Width)

	h.mgr.Resize(20, 40)
	h.sched.Step(time.Millisecond)
	assert.Equal(t, 20, h.display.frames[1].Width)
	assert.Equal(t, 40, h.display.frames[1].Height)
}

func TestGeometryReusedAcrossSessions(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	require.NoError(t, h.mgr.Load(ctx, "a"))
	g := h.mgr.Geometry()
	require.NotNil(t, g)
	require.NoError(t, h.mgr.Load(ctx, "b"))
	assert.Same(t, g, h.mgr.Geometry())
}

func TestCaptureFlow(t *testing.T) {
	h := newHarness(t, Options{Autoplay: true})
	ctx := context.Background()
	require.NoError(t, h.mgr.Load(ctx, "a"))

	require.NoError(t, h.mgr.BeginCapture())
	st := h.mgr.Status()
	assert.Equal(t, Capturing, st.Recording)
	assert.Equal(t, Paused, st.Playback)

	require.NoError(t, h.mgr.EndCapture(ctx, "upload"))
	st = h.mgr.Status()
	assert.Equal(t, RecordingIdle, st.Recording)
	assert.Equal(t, "upload", st.Source)
	assert.Equal(t, Playing, st.Playback)
}

func TestEndCaptureStartsPlaybackWithoutAutoplay(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	require.NoError(t, h.mgr.BeginCapture())
	require.NoError(t, h.mgr.EndCapture(ctx, "upload"))
	assert.Equal(t, Playing, h.mgr.Status().Playback)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "tearing-down", TearingDown.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "capturing", Capturing.String())
}

func TestOptionsFromConfig(t *testing.T) {
	var cfg config.Config
	cfg.Style = "gradient"
	cfg.Resolve(config.Flags{Width: 100, Height: 50, Seed: 9})
	opts := OptionsFromConfig(cfg)
	assert.Equal(t, scene.Gradient, opts.Style.Material)
	assert.True(t, opts.Style.Wireframe)
	assert.Equal(t, spectrum.DefaultOptions(), opts.Analysis)
	assert.Equal(t, 100, opts.Width)
	assert.Equal(t, 2, opts.Supersample)
	assert.Equal(t, int64(9), opts.Seed)

	zero := 0.0
	cfg.Smoothing = &zero
	assert.Zero(t, OptionsFromConfig(cfg).Analysis.Smoothing)
}

func TestFinishedClipReadsIdle(t *testing.T) {
	h := newHarness(t, Options{Autoplay: true})
	require.NoError(t, h.mgr.Load(context.Background(), "a"))
	pb := h.out.opened[0]

	pb.playing = false
	pb.pos = 400 * time.Millisecond
	assert.Equal(t, Paused, h.mgr.Status().Playback)

	pb.pos = time.Second
	st := h.mgr.Status()
	assert.Equal(t, st.Duration, st.Position)
	assert.Equal(t, PlaybackIdle, st.Playback)
}
