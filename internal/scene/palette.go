package scene

import (
	"math/rand/v2"
	"time"

	"audio-sphere/internal/mathutil"
)

// Palette timing.
const (
	PaletteInterval = 5 * time.Second
	PaletteLerp     = 0.02
)

// Palette is a pair of colors that drift toward randomly chosen hues.
// Targets change every interval; A and B approach them by PaletteLerp
// each frame.
type Palette struct {
	A, B             mathutil.Vec3
	TargetA, TargetB mathutil.Vec3

	rng      *rand.Rand
	interval time.Duration
	last     time.Duration
	started  bool
}

// NewPalette starts both colors at white with fresh random targets.
func NewPalette(rng *rand.Rand, interval time.Duration) *Palette {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if interval <= 0 {
		interval = PaletteInterval
	}
	p := &Palette{
		A:        mathutil.Vec3{1, 1, 1},
		B:        mathutil.Vec3{1, 1, 1},
		rng:      rng,
		interval: interval,
	}
	p.retarget()
	return p
}

func (p *Palette) retarget() {
	p.TargetA = HSL(p.rng.Float64(), 1, 0.5)
	p.TargetB = HSL(p.rng.Float64(), 1, 0.5)
}

// Advance retargets when an interval has elapsed since the first frame (or
// the previous retarget) and smooths both colors one step.
func (p *Palette) Advance(now time.Duration) {
	if !p.started {
		p.started = true
		p.last = now
	}
	for now-p.last >= p.interval {
		p.last += p.interval
		p.retarget()
	}
	p.A = p.A.Lerp(p.TargetA, PaletteLerp)
	p.B = p.B.Lerp(p.TargetB, PaletteLerp)
}
