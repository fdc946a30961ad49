//go:build !headless

package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

const (
	deviceChannels    = 2
	deviceFrameBytes  = deviceChannels * 4 // float32 LE
	defaultDeviceRate = 44100
)

// oto allows a single context per process.
var (
	deviceOnce sync.Once
	deviceCtx  *oto.Context
	deviceRate int
	deviceErr  error
)

// Device plays clips audibly through the process-wide oto context.
type Device struct {
	ctx  *oto.Context
	rate int
}

// NewDevice returns the shared output device, creating it on first use.
// Later calls ignore sampleRate and reuse the first context's rate.
func NewDevice(sampleRate int) (*Device, error) {
	if sampleRate <= 0 {
		sampleRate = defaultDeviceRate
	}
	deviceOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: deviceChannels,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			deviceErr = errors.Join(ErrNoDevice, err)
			return
		}
		<-ready
		deviceCtx = ctx
		deviceRate = sampleRate
		logrus.WithFields(logrus.Fields{
			"function":    "NewDevice",
			"sample_rate": sampleRate,
		}).Info("Audio device ready")
	})
	if deviceErr != nil {
		return nil, deviceErr
	}
	return &Device{ctx: deviceCtx, rate: deviceRate}, nil
}

// SampleRate returns the device output rate.
func (d *Device) SampleRate() int { return d.rate }

// Open implements Output. The clip is resampled and up/down-mixed to the
// device layout; timing stays in the clip's own time base.
func (d *Device) Open(clip *Clip) (Playback, error) {
	c := clip.Resample(d.rate)
	frames := c.Frames()
	stereo := make([]float32, frames*deviceChannels)
	for f := 0; f < frames; f++ {
		l := c.PCM[f*c.Channels]
		r := l
		if c.Channels > 1 {
			r = c.PCM[f*c.Channels+1]
		}
		stereo[2*f] = l
		stereo[2*f+1] = r
	}
	src := &pcmReader{data: stereo}
	return &devicePlayback{
		player: d.ctx.NewPlayer(src),
		src:    src,
		rate:   d.rate,
		total:  int64(len(stereo)) * 4,
	}, nil
}

type devicePlayback struct {
	player *oto.Player
	src    *pcmReader
	rate   int
	total  int64
	closed bool
}

func (p *devicePlayback) Play() error {
	if p.closed {
		return ErrClosed
	}
	if p.src.consumed.Load() >= p.total && !p.player.IsPlaying() {
		if _, err := p.player.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}
	p.player.Play()
	return nil
}

func (p *devicePlayback) Pause() error {
	if p.closed {
		return ErrClosed
	}
	p.player.Pause()
	return nil
}

func (p *devicePlayback) Playing() bool {
	return !p.closed && p.player.IsPlaying()
}

// Position subtracts what is still queued inside oto from what it has read.
func (p *devicePlayback) Position() time.Duration {
	played := p.src.consumed.Load() - int64(p.player.BufferedSize())
	if played < 0 {
		played = 0
	}
	frames := played / deviceFrameBytes
	return time.Duration(frames * int64(time.Second) / int64(p.rate))
}

func (p *devicePlayback) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.player.Close()
}

// pcmReader streams float32 samples as little-endian bytes. oto reads it
// from its own goroutine, so progress is tracked atomically.
type pcmReader struct {
	mu       sync.Mutex
	data     []float32
	off      int // sample index
	consumed atomic.Int64
}

func (r *pcmReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	n := 0
	for n+4 <= len(p) && r.off < len(r.data) {
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(r.data[r.off]))
		r.off++
		n += 4
	}
	r.consumed.Add(int64(n))
	return n, nil
}

func (r *pcmReader) Seek(offset int64, whence int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := int64(len(r.data)) * 4
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(r.off)*4 + offset
	case io.SeekEnd:
		abs = size + offset
	default:
		return 0, errors.New("audio: invalid whence")
	}
	if abs < 0 || abs > size {
		return 0, errors.New("audio: seek out of range")
	}
	abs -= abs % 4
	r.off = int(abs / 4)
	r.consumed.Store(abs)
	return abs, nil
}
