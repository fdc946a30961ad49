package mesh

import "audio-sphere/internal/mathutil"

// Displacement constants.
const (
	BaseRadius = 20.0
	TimeRate   = 0.00001 // rf: noise phase speed per millisecond
	Amplitude  = 5.0
)

// Per-axis time multipliers keep the noise phase from moving diagonally,
// which would show up as banding along the axes.
var phaseRate = mathutil.Vec3{4, 6, 7}

// Field samples coherent noise in [-1, 1].
type Field interface {
	Sample(x, y, z float64) float64
}

// Deform writes the displaced positions of ref into dst (grown or shrunk to
// ref.Len()) and returns it. Every vertex is pushed radially to
//
//	20 + bass + noise(n + t·rf·(4, 6, 7)) · amp · treble · 2
//
// where n is the unit direction of the reference vertex.
func Deform(dst []mathutil.Vec3, ref *Geometry, field Field, bass, treble, elapsedMs float64) []mathutil.Vec3 {
	n := ref.Len()
	if cap(dst) < n {
		dst = make([]mathutil.Vec3, n)
	}
	dst = dst[:n]

	tx := elapsedMs * TimeRate * phaseRate[0]
	ty := elapsedMs * TimeRate * phaseRate[1]
	tz := elapsedMs * TimeRate * phaseRate[2]
	gain := Amplitude * treble * 2

	for i, v := range ref.verts {
		u := v.Normalize()
		d := BaseRadius + bass
		if gain != 0 {
			d += field.Sample(u[0]+tx, u[1]+ty, u[2]+tz) * gain
		}
		dst[i] = u.Scale(d)
	}
	return dst
}

// FaceNormals writes the unit normal of each triangle to its three vertices
// and returns dst sized to positions. Degenerate faces get the zero vector.
func FaceNormals(dst, positions []mathutil.Vec3) []mathutil.Vec3 {
	n := len(positions)
	if cap(dst) < n {
		dst = make([]mathutil.Vec3, n)
	}
	dst = dst[:n]

	for i := 0; i+2 < n; i += 3 {
		a, b, c := positions[i], positions[i+1], positions[i+2]
		nrm := b.Sub(a).Cross(c.Sub(a)).Normalize()
		dst[i], dst[i+1], dst[i+2] = nrm, nrm, nrm
	}
	for i := n - n%3; i < n; i++ {
		dst[i] = mathutil.Vec3{}
	}
	return dst
}
