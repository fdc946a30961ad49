// Package spectrum turns the signal at the playhead into byte magnitude
// frames, the way a Web Audio analyser node does.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// ErrInvalidOptions is returned for out-of-range analyser settings.
var ErrInvalidOptions = errors.New("spectrum: invalid analyser options")

const (
	DefaultFFTSize   = 512
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0

	minFFTSize = 32
	maxFFTSize = 32768
)

// Options configures an Analyser. A zero FFTSize or decibel range takes the
// default; Smoothing is used as given.
type Options struct {
	FFTSize   int
	Smoothing float64 // time constant in [0, 1]
	MinDB     float64
	MaxDB     float64
}

// DefaultOptions matches a freshly created Web Audio analyser with fftSize 512.
func DefaultOptions() Options {
	return Options{
		FFTSize:   DefaultFFTSize,
		Smoothing: DefaultSmoothing,
		MinDB:     DefaultMinDB,
		MaxDB:     DefaultMaxDB,
	}
}

// Frame holds one magnitude snapshot, 0..255 per bin.
type Frame []uint8

// Analyser computes smoothed, dB-scaled byte spectra.
type Analyser struct {
	size      int
	smoothing float64
	minDB     float64
	maxDB     float64

	fft      *fourier.FFT
	window   []float64
	buf      []float64
	coeffs   []complex128
	smoothed []float64
}

// NewAnalyser validates opts and allocates the transform.
func NewAnalyser(opts Options) (*Analyser, error) {
	if opts.FFTSize == 0 {
		opts.FFTSize = DefaultFFTSize
	}
	if opts.MinDB == 0 && opts.MaxDB == 0 {
		opts.MinDB, opts.MaxDB = DefaultMinDB, DefaultMaxDB
	}
	n := opts.FFTSize
	if n < minFFTSize || n > maxFFTSize || n&(n-1) != 0 {
		return nil, fmt.Errorf("fft size %d: %w", n, ErrInvalidOptions)
	}
	if opts.Smoothing < 0 || opts.Smoothing > 1 || math.IsNaN(opts.Smoothing) {
		return nil, fmt.Errorf("smoothing %v: %w", opts.Smoothing, ErrInvalidOptions)
	}
	if opts.MinDB >= opts.MaxDB {
		return nil, fmt.Errorf("decibel range [%v, %v]: %w", opts.MinDB, opts.MaxDB, ErrInvalidOptions)
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	window.Blackman(w)

	return &Analyser{
		size:      n,
		smoothing: opts.Smoothing,
		minDB:     opts.MinDB,
		maxDB:     opts.MaxDB,
		fft:       fourier.NewFFT(n),
		window:    w,
		buf:       make([]float64, n),
		coeffs:    make([]complex128, n/2+1),
		smoothed:  make([]float64, n/2),
	}, nil
}

// FFTSize returns the analysis window length.
func (a *Analyser) FFTSize() int { return a.size }

// BinCount returns the number of output bins (FFTSize / 2).
func (a *Analyser) BinCount() int { return a.size / 2 }

// Reset clears the smoothing state.
func (a *Analyser) Reset() { clear(a.smoothed) }

// ByteFrequencyData analyses samples (FFTSize long, shorter input is
// zero-padded at the front) and writes BinCount bytes into dst.
func (a *Analyser) ByteFrequencyData(samples []float64, dst Frame) Frame {
	bins := a.BinCount()
	if cap(dst) < bins {
		dst = make(Frame, bins)
	}
	dst = dst[:bins]

	pad := a.size - len(samples)
	if pad < 0 {
		samples = samples[-pad:]
		pad = 0
	}
	for i := 0; i < pad; i++ {
		a.buf[i] = 0
	}
	for i, s := range samples {
		a.buf[pad+i] = s * a.window[pad+i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.buf)

	scale := 1 / float64(a.size)
	k := a.smoothing
	rangeScale := 255 / (a.maxDB - a.minDB)
	for i := 0; i < bins; i++ {
		mag := cmplx.Abs(a.coeffs[i]) * scale
		s := k*a.smoothed[i] + (1-k)*mag
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.smoothed[i] = s

		if s <= 0 {
			dst[i] = 0
			continue
		}
		db := 20 * math.Log10(s)
		v := math.Floor(rangeScale * (db - a.minDB))
		switch {
		case v < 0:
			dst[i] = 0
		case v > 255:
			dst[i] = 255
		default:
			dst[i] = uint8(v)
		}
	}
	return dst
}
