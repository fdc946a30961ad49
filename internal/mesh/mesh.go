package mesh

import "audio-sphere/internal/mathutil"

// Spin is the constant per-frame orientation increment, in radians.
var Spin = mathutil.Vec3{0.001, 0.003, 0.005}

// Buffer is the live vertex data handed to the rasterizer.
type Buffer struct {
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
}

// Len returns the vertex count.
func (b *Buffer) Len() int { return len(b.Positions) }

// Mesh joins the reference geometry, its live buffer and its orientation.
type Mesh struct {
	Ref      *Geometry
	Live     Buffer
	Rotation mathutil.Vec3 // XYZ Euler angles

	field Field
}

// New returns a mesh whose live buffer starts as a copy of ref.
func New(ref *Geometry, field Field) *Mesh {
	m := &Mesh{Ref: ref, field: field}
	m.Live.Positions = append(make([]mathutil.Vec3, 0, ref.Len()), ref.verts...)
	m.Live.Normals = FaceNormals(nil, m.Live.Positions)
	return m
}

// Update advances the ambient rotation, deforms the live buffer from the
// drive signals and recomputes normals.
func (m *Mesh) Update(bass, treble, elapsedMs float64) {
	m.Rotation = m.Rotation.Add(Spin)
	m.Live.Positions = Deform(m.Live.Positions, m.Ref, m.field, bass, treble, elapsedMs)
	m.Live.Normals = FaceNormals(m.Live.Normals, m.Live.Positions)
}

// Model returns the rotation part of the model matrix.
func (m *Mesh) Model() mathutil.Mat3 {
	return mathutil.EulerXYZ(m.Rotation)
}
