// Package audio decodes audio sources into PCM clips and plays them back.
package audio

import (
	"errors"
	"time"
)

var (
	// ErrUnsupportedFormat is returned when a source is neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
	// ErrClosed is returned by playback controls after Close.
	ErrClosed = errors.New("audio: playback closed")
	// ErrNoDevice is returned when no audible output is available.
	ErrNoDevice = errors.New("audio: no output device")
)

// Clip is a fully decoded audio source.
type Clip struct {
	Name       string
	SampleRate int
	Channels   int
	PCM        []float32 // interleaved, [-1, 1]
	Mono       []float64 // channel average, one entry per frame
}

// NewClip wraps interleaved PCM and computes the mono mixdown.
func NewClip(name string, sampleRate, channels int, pcm []float32) *Clip {
	if channels < 1 {
		channels = 1
	}
	frames := len(pcm) / channels
	mono := make([]float64, frames)
	inv := 1.0 / float64(channels)
	for f := 0; f < frames; f++ {
		var sum float64
		base := f * channels
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm[base+ch])
		}
		mono[f] = sum * inv
	}
	return &Clip{
		Name:       name,
		SampleRate: sampleRate,
		Channels:   channels,
		PCM:        pcm[:frames*channels],
		Mono:       mono,
	}
}

// Frames returns the number of sample frames.
func (c *Clip) Frames() int { return len(c.Mono) }

// Duration returns the playback length.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(c.Frames()) * int64(time.Second) / int64(c.SampleRate))
}

// FrameAt converts a playback position to a frame index, clamped to the clip.
func (c *Clip) FrameAt(pos time.Duration) int {
	if pos <= 0 || c.SampleRate <= 0 {
		return 0
	}
	f := int(int64(pos) * int64(c.SampleRate) / int64(time.Second))
	if f > c.Frames() {
		return c.Frames()
	}
	return f
}

// Resample returns a copy of the clip at the given rate using linear
// interpolation. The receiver is returned unchanged when rates match.
func (c *Clip) Resample(rate int) *Clip {
	if rate <= 0 || rate == c.SampleRate || c.SampleRate <= 0 {
		return c
	}
	src := c.Frames()
	dst := int(int64(src) * int64(rate) / int64(c.SampleRate))
	pcm := make([]float32, dst*c.Channels)
	step := float64(c.SampleRate) / float64(rate)
	for f := 0; f < dst; f++ {
		pos := float64(f) * step
		i0 := int(pos)
		i1 := i0 + 1
		if i1 >= src {
			i1 = src - 1
		}
		frac := float32(pos - float64(i0))
		for ch := 0; ch < c.Channels; ch++ {
			a := c.PCM[i0*c.Channels+ch]
			b := c.PCM[i1*c.Channels+ch]
			pcm[f*c.Channels+ch] = a + (b-a)*frac
		}
	}
	return NewClip(c.Name, rate, c.Channels, pcm)
}
