package scene

import (
	"time"

	"github.com/sirupsen/logrus"

	"audio-sphere/internal/frame"
	"audio-sphere/internal/raster"
	"audio-sphere/internal/reduce"
	"audio-sphere/internal/spectrum"
)

// Presenter receives each finished frame.
type Presenter interface {
	Present(fb *raster.FrameBuffer) error
}

// Loop drives one session's per-frame work. A Loop is started once and
// stopped once; callbacks that fire after Stop do nothing.
type Loop struct {
	sched   frame.Scheduler
	sampler *spectrum.Sampler
	scene   *Scene
	vp      *Viewport
	out     Presenter

	handle  frame.Handle
	running bool
	stopped bool
	frames  uint64
	last    reduce.Signals
}

// NewLoop wires a loop; nothing runs until Start.
func NewLoop(sched frame.Scheduler, sampler *spectrum.Sampler, sc *Scene, vp *Viewport, out Presenter) *Loop {
	return &Loop{sched: sched, sampler: sampler, scene: sc, vp: vp, out: out}
}

// Start requests the first frame. Calling it again, or after Stop, is a no-op.
func (l *Loop) Start() {
	if l.running || l.stopped {
		return
	}
	l.running = true
	l.handle = l.sched.Schedule(l.tick)
}

// Stop cancels the pending frame request.
func (l *Loop) Stop() {
	if !l.running {
		l.stopped = true
		return
	}
	l.running = false
	l.stopped = true
	l.sched.Cancel(l.handle)
	l.handle = 0
}

// Running reports whether frames are being produced.
func (l *Loop) Running() bool { return l.running }

// Frames returns the number of frames rendered.
func (l *Loop) Frames() uint64 { return l.frames }

// Signals returns the drive signals of the latest frame.
func (l *Loop) Signals() reduce.Signals { return l.last }

func (l *Loop) tick(now time.Duration) {
	if !l.running {
		return
	}
	l.handle = l.sched.Schedule(l.tick)

	l.last = reduce.Drive(l.sampler.Sample())
	l.scene.Mesh.Update(l.last.Bass, l.last.Treble, millis(now))
	l.scene.Material.Advance(now)
	l.scene.Render(l.vp, now)
	l.frames++

	if err := l.out.Present(l.vp.FB); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Loop.tick",
			"frame":    l.frames,
			"error":    err.Error(),
		}).Warn("present failed")
	}
}
