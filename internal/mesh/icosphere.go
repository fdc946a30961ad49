// Package mesh builds the reference sphere and deforms it every frame.
package mesh

import (
	"math"

	"audio-sphere/internal/mathutil"
)

// Geometry is an immutable triangle soup: every three consecutive vertices
// form one face. Only accessors are exported so callers cannot mutate it.
type Geometry struct {
	radius float64
	detail int
	verts  []mathutil.Vec3
}

// Len returns the vertex count.
func (g *Geometry) Len() int { return len(g.verts) }

// Faces returns the triangle count.
func (g *Geometry) Faces() int { return len(g.verts) / 3 }

// At returns vertex i.
func (g *Geometry) At(i int) mathutil.Vec3 { return g.verts[i] }

// Radius returns the radius the vertices were projected to.
func (g *Geometry) Radius() float64 { return g.radius }

// Detail returns the subdivision level.
func (g *Geometry) Detail() int { return g.detail }

// Icosahedron corners and faces.
var (
	phi = (1 + math.Sqrt(5)) / 2

	icoVerts = [12]mathutil.Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}

	icoFaces = [20][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// Icosphere subdivides every icosahedron face into (detail+1)² triangles and
// projects all vertices onto the sphere of the given radius. The result has
// 60·(detail+1)² vertices.
func Icosphere(radius float64, detail int) *Geometry {
	if detail < 0 {
		detail = 0
	}
	cols := detail + 1
	verts := make([]mathutil.Vec3, 0, 60*cols*cols)

	grid := make([][]mathutil.Vec3, cols+1)
	for _, f := range icoFaces {
		a, b, c := icoVerts[f[0]], icoVerts[f[1]], icoVerts[f[2]]

		for i := 0; i <= cols; i++ {
			t := float64(i) / float64(cols)
			aj := a.Lerp(c, t)
			bj := b.Lerp(c, t)
			rows := cols - i
			row := grid[i][:0]
			for j := 0; j <= rows; j++ {
				if j == 0 && i == cols {
					row = append(row, aj)
					continue
				}
				row = append(row, aj.Lerp(bj, float64(j)/float64(rows)))
			}
			grid[i] = row
		}

		for i := 0; i < cols; i++ {
			for j := 0; j < 2*(cols-i)-1; j++ {
				k := j / 2
				if j%2 == 0 {
					verts = append(verts, grid[i][k+1], grid[i+1][k], grid[i][k])
				} else {
					verts = append(verts, grid[i][k+1], grid[i+1][k+1], grid[i+1][k])
				}
			}
		}
	}

	for i, v := range verts {
		verts[i] = v.Normalize().Scale(radius)
	}
	return &Geometry{radius: radius, detail: detail, verts: verts}
}
