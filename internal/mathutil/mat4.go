package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major. Column vectors: p' = M × p.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the affine part of the matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// Project transforms a point (w=1) to homogeneous clip space.
func (m Mat4) Project(v Vec3) (x, y, z, w float64) {
	x = m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]
	y = m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]
	z = m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]
	w = m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]
	return x, y, z, w
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Translate returns a pure translation matrix.
func Translate(t Vec3) Mat4 {
	return FromMat3Translation(Mat3Identity(), t)
}

// Perspective returns an OpenGL-style projection for a vertical field of
// view in degrees. Clip z maps [-near, -far] to [-1, 1].
func Perspective(fovDeg, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(Deg2Rad(fovDeg)/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}
