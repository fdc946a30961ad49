package audio

import "time"

// Playback controls one clip's playhead.
type Playback interface {
	Play() error
	Pause() error
	Playing() bool
	Position() time.Duration
	Close() error
}

// Output opens playbacks for decoded clips.
type Output interface {
	Open(clip *Clip) (Playback, error)
}

// Clock reports elapsed host time.
type Clock interface {
	Now() time.Duration
}

// ClockOutput opens silent playbacks whose playhead follows a Clock.
// The headless exporter drives it from the frame scheduler.
type ClockOutput struct {
	Clock Clock
}

// Open implements Output.
func (o ClockOutput) Open(clip *Clip) (Playback, error) {
	return &clockPlayback{clip: clip, clock: o.Clock}, nil
}

type clockPlayback struct {
	clip      *Clip
	clock     Clock
	playing   bool
	closed    bool
	base      time.Duration // position when last paused
	startedAt time.Duration
}

func (p *clockPlayback) Play() error {
	if p.closed {
		return ErrClosed
	}
	if p.playing {
		return nil
	}
	// Playing a finished clip starts it over.
	if p.base >= p.clip.Duration() {
		p.base = 0
	}
	p.startedAt = p.clock.Now()
	p.playing = true
	return nil
}

func (p *clockPlayback) Pause() error {
	if p.closed {
		return ErrClosed
	}
	p.base = p.Position()
	p.playing = false
	return nil
}

func (p *clockPlayback) Playing() bool {
	p.Position()
	return p.playing
}

func (p *clockPlayback) Position() time.Duration {
	if !p.playing {
		return p.base
	}
	pos := p.base + p.clock.Now() - p.startedAt
	if end := p.clip.Duration(); pos >= end {
		p.base = end
		p.playing = false
		return end
	}
	return pos
}

func (p *clockPlayback) Close() error {
	p.playing = false
	p.closed = true
	return nil
}
