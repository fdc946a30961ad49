// Package reduce collapses a spectrum frame into the two drive signals.
package reduce

import (
	"math"

	"audio-sphere/internal/spectrum"
)

// Output ranges of the drive signals.
const (
	MaxBass   = 5.0
	MaxTreble = 4.0

	bassCurve = 0.8
)

// Signals are the per-frame drive values fed to the deformer.
type Signals struct {
	Bass   float64 // [0, MaxBass]
	Treble float64 // [0, MaxTreble]
}

// Modulate maps v linearly from [inMin, inMax] to [outMin, outMax].
// It does not clamp.
func Modulate(v, inMin, inMax, outMin, outMax float64) float64 {
	fr := (v - inMin) / (inMax - inMin)
	return outMin + fr*(outMax-outMin)
}

// Reduce splits the frame at floor(N/2) and returns the raw band values:
// bass is the lower-half peak over its length, treble the upper-half mean
// divided by its length once more. The two normalizations differ on purpose.
func Reduce(frame spectrum.Frame) (bass, treble float64) {
	mid := len(frame) / 2
	lower, upper := frame[:mid], frame[mid:]

	if len(lower) > 0 {
		var peak uint8
		for _, v := range lower {
			if v > peak {
				peak = v
			}
		}
		bass = float64(peak) / float64(len(lower))
	}

	if len(upper) > 0 {
		var sum float64
		for _, v := range upper {
			sum += float64(v)
		}
		n := float64(len(upper))
		treble = sum / n / n
	}
	return bass, treble
}

// Drive reduces the frame and remaps both bands to their output ranges,
// with a power curve on bass.
func Drive(frame spectrum.Frame) Signals {
	bass, treble := Reduce(frame)
	return Signals{
		Bass:   Modulate(math.Pow(bass, bassCurve), 0, 1, 0, MaxBass),
		Treble: Modulate(treble, 0, 1, 0, MaxTreble),
	}
}
