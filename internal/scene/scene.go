package scene

import (
	"time"

	"audio-sphere/internal/mathutil"
	"audio-sphere/internal/mesh"
	"audio-sphere/internal/raster"
)

// Scene is everything drawn in one session.
type Scene struct {
	Mesh      *mesh.Mesh
	Material  Material
	Light     raster.DirectionalLight
	Wireframe bool

	screen  []raster.Vertex
	visible []bool
}

// New assembles a scene for the given mesh and style.
func New(m *mesh.Mesh, mat Material, style Style) *Scene {
	return &Scene{
		Mesh:      m,
		Material:  mat,
		Light:     style.Light(),
		Wireframe: style.Wireframe,
	}
}

// Render draws the mesh into vp.FB. The framebuffer is cleared to
// transparent black first.
func (s *Scene) Render(vp *Viewport, now time.Duration) {
	fb := vp.FB
	fb.Clear(0, 0, 0, 0)
	if fb.Width == 0 || fb.Height == 0 {
		return
	}

	model := s.Mesh.Model()
	mv := mathutil.Mat4Mul(vp.Camera.View(), mathutil.FromMat3Translation(model, mathutil.Vec3{}))
	mvp := mathutil.Mat4Mul(vp.Camera.Projection(), mv)

	pos := s.Mesh.Live.Positions
	nrm := s.Mesh.Live.Normals
	n := len(pos)
	if cap(s.screen) < n {
		s.screen = make([]raster.Vertex, n)
		s.visible = make([]bool, n)
	}
	s.screen = s.screen[:n]
	s.visible = s.visible[:n]

	w, h := float64(fb.Width), float64(fb.Height)
	for i, p := range pos {
		x, y, z, cw := mvp.Project(p)
		if cw <= 0 {
			s.visible[i] = false
			continue
		}
		nx, ny, nz := x/cw, y/cw, z/cw
		s.visible[i] = nz >= -1 && nz <= 1
		s.screen[i] = raster.Vertex{
			X:     (nx + 1) / 2 * w,
			Y:     (1 - ny) / 2 * h,
			Z:     -nz,
			Color: s.Material.Shade(p, model.MulVec3(nrm[i])),
		}
	}

	for i := 0; i+2 < n; i += 3 {
		if !s.visible[i] || !s.visible[i+1] || !s.visible[i+2] {
			continue
		}
		a, b, c := s.screen[i], s.screen[i+1], s.screen[i+2]
		if s.Wireframe {
			raster.DrawLine(fb, a, b)
			raster.DrawLine(fb, b, c)
			raster.DrawLine(fb, c, a)
			continue
		}
		// Screen Y points down, so front (counter-clockwise) faces have a
		// negative signed area here.
		if (b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y) >= 0 {
			continue
		}
		raster.RasterizeTriangle(fb, a, b, c)
	}
}
