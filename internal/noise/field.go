// Package noise provides the coherent 3D noise that perturbs the sphere.
package noise

import (
	"time"

	"github.com/ojrac/opensimplex-go"
)

// Field is seeded 3D OpenSimplex noise.
type Field struct {
	seed int64
	src  opensimplex.Noise
}

// New returns a field for seed. Seed 0 picks one from the clock.
func New(seed int64) *Field {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Field{seed: seed, src: opensimplex.New(seed)}
}

// Seed returns the seed in use.
func (f *Field) Seed() int64 { return f.seed }

// Sample returns noise at (x, y, z) in [-1, 1].
func (f *Field) Sample(x, y, z float64) float64 {
	v := f.src.Eval3(x, y, z)
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
