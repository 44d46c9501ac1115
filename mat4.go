package main

import "math"

// Matrix4 is a 4x4 transform stored as 16 float32 values, row-major
// (element [row*4+col]). Mutating operations modify the receiver in
// place and return it so calls can be chained; Copy and Inverse
// allocate. The flat layout is handed to the GL as-is.
type Matrix4 [16]float32

const degToRad = math.Pi / 180

// NewMatrix4 returns a fresh identity matrix.
func NewMatrix4() *Matrix4 {
	m := &Matrix4{}
	return m.LoadIdentity()
}

func (m *Matrix4) LoadIdentity() *Matrix4 {
	*m = Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	return m
}

func (m *Matrix4) Copy() *Matrix4 {
	c := *m
	return &c
}

// Multiply right-multiplies: m = m * other. A temporary accumulator
// keeps the result correct when other aliases m.
func (m *Matrix4) Multiply(other *Matrix4) *Matrix4 {
	var tmp Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			tmp[row*4+col] = sum
		}
	}
	*m = tmp
	return m
}

// premultiply sets m = other * m.
func (m *Matrix4) premultiply(other *Matrix4) *Matrix4 {
	tmp := *other
	tmp.Multiply(m)
	*m = tmp
	return m
}

func (m *Matrix4) Scale(sx, sy, sz float32) *Matrix4 {
	return m.Multiply(&Matrix4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, sz, 0,
		0, 0, 0, 1,
	})
}

func (m *Matrix4) Translate(tx, ty, tz float32) *Matrix4 {
	return m.Multiply(&Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		tx, ty, tz, 1,
	})
}

// Rotate applies a rotation of angleDeg degrees about the given axis.
// A near-zero axis is a no-op so callers cannot trigger a divide by
// zero during normalization.
func (m *Matrix4) Rotate(angleDeg, ax, ay, az float32) *Matrix4 {
	mag := float32(math.Sqrt(float64(ax*ax + ay*ay + az*az)))
	if mag < 1e-8 {
		return m
	}
	x, y, z := ax/mag, ay/mag, az/mag
	rad := float64(angleDeg) * degToRad
	c := float32(math.Cos(rad))
	s := float32(math.Sin(rad))
	t := 1 - c
	return m.Multiply(&Matrix4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	})
}

// Frustum builds a perspective frustum and pre-multiplies it into m.
func (m *Matrix4) Frustum(left, right, bottom, top, near, far float32) *Matrix4 {
	a := (right + left) / (right - left)
	b := (top + bottom) / (top - bottom)
	c := -(far + near) / (far - near)
	d := -(2 * far * near) / (far - near)
	return m.premultiply(&Matrix4{
		2 * near / (right - left), 0, 0, 0,
		0, 2 * near / (top - bottom), 0, 0,
		a, b, c, -1,
		0, 0, d, 0,
	})
}

// Perspective builds a symmetric projection from a vertical field of
// view in degrees and pre-multiplies it into m.
func (m *Matrix4) Perspective(fovyDeg, aspect, near, far float32) *Matrix4 {
	top := near * float32(math.Tan(float64(fovyDeg)*degToRad/2))
	right := top * aspect
	return m.Frustum(-right, right, -top, top, near, far)
}

// Ortho builds an orthographic projection and pre-multiplies it into m.
func (m *Matrix4) Ortho(left, right, bottom, top, near, far float32) *Matrix4 {
	tx := -(right + left) / (right - left)
	ty := -(top + bottom) / (top - bottom)
	tz := -(far + near) / (far - near)
	return m.premultiply(&Matrix4{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		tx, ty, tz, 1,
	})
}

func (m *Matrix4) Transpose() *Matrix4 {
	*m = Matrix4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
	return m
}

// Invert replaces m with its inverse, computed by cofactor expansion.
// There is no singularity check: inverting a singular matrix divides
// by a zero determinant and the non-finite values propagate.
func (m *Matrix4) Invert() *Matrix4 {
	var inv Matrix4

	inv[0] = m[5]*m[10]*m[15] - m[5]*m[11]*m[14] - m[9]*m[6]*m[15] +
		m[9]*m[7]*m[14] + m[13]*m[6]*m[11] - m[13]*m[7]*m[10]
	inv[4] = -m[4]*m[10]*m[15] + m[4]*m[11]*m[14] + m[8]*m[6]*m[15] -
		m[8]*m[7]*m[14] - m[12]*m[6]*m[11] + m[12]*m[7]*m[10]
	inv[8] = m[4]*m[9]*m[15] - m[4]*m[11]*m[13] - m[8]*m[5]*m[15] +
		m[8]*m[7]*m[13] + m[12]*m[5]*m[11] - m[12]*m[7]*m[9]
	inv[12] = -m[4]*m[9]*m[14] + m[4]*m[10]*m[13] + m[8]*m[5]*m[14] -
		m[8]*m[6]*m[13] - m[12]*m[5]*m[10] + m[12]*m[6]*m[9]

	inv[1] = -m[1]*m[10]*m[15] + m[1]*m[11]*m[14] + m[9]*m[2]*m[15] -
		m[9]*m[3]*m[14] - m[13]*m[2]*m[11] + m[13]*m[3]*m[10]
	inv[5] = m[0]*m[10]*m[15] - m[0]*m[11]*m[14] - m[8]*m[2]*m[15] +
		m[8]*m[3]*m[14] + m[12]*m[2]*m[11] - m[12]*m[3]*m[10]
	inv[9] = -m[0]*m[9]*m[15] + m[0]*m[11]*m[13] + m[8]*m[1]*m[15] -
		m[8]*m[3]*m[13] - m[12]*m[1]*m[11] + m[12]*m[3]*m[9]
	inv[13] = m[0]*m[9]*m[14] - m[0]*m[10]*m[13] - m[8]*m[1]*m[14] +
		m[8]*m[2]*m[13] + m[12]*m[1]*m[10] - m[12]*m[2]*m[9]

	inv[2] = m[1]*m[6]*m[15] - m[1]*m[7]*m[14] - m[5]*m[2]*m[15] +
		m[5]*m[3]*m[14] + m[13]*m[2]*m[7] - m[13]*m[3]*m[6]
	inv[6] = -m[0]*m[6]*m[15] + m[0]*m[7]*m[14] + m[4]*m[2]*m[15] -
		m[4]*m[3]*m[14] - m[12]*m[2]*m[7] + m[12]*m[3]*m[6]
	inv[10] = m[0]*m[5]*m[15] - m[0]*m[7]*m[13] - m[4]*m[1]*m[15] +
		m[4]*m[3]*m[13] + m[12]*m[1]*m[7] - m[12]*m[3]*m[5]
	inv[14] = -m[0]*m[5]*m[14] + m[0]*m[6]*m[13] + m[4]*m[1]*m[14] -
		m[4]*m[2]*m[13] - m[12]*m[1]*m[6] + m[12]*m[2]*m[5]

	inv[3] = -m[1]*m[6]*m[11] + m[1]*m[7]*m[10] + m[5]*m[2]*m[11] -
		m[5]*m[3]*m[10] - m[9]*m[2]*m[7] + m[9]*m[3]*m[6]
	inv[7] = m[0]*m[6]*m[11] - m[0]*m[7]*m[10] - m[4]*m[2]*m[11] +
		m[4]*m[3]*m[10] + m[8]*m[2]*m[7] - m[8]*m[3]*m[6]
	inv[11] = -m[0]*m[5]*m[11] + m[0]*m[7]*m[9] + m[4]*m[1]*m[11] -
		m[4]*m[3]*m[9] - m[8]*m[1]*m[7] + m[8]*m[3]*m[5]
	inv[15] = m[0]*m[5]*m[10] - m[0]*m[6]*m[9] - m[4]*m[1]*m[10] +
		m[4]*m[2]*m[9] + m[8]*m[1]*m[6] - m[8]*m[2]*m[5]

	det := m[0]*inv[0] + m[1]*inv[4] + m[2]*inv[8] + m[3]*inv[12]
	invDet := 1 / det
	for i := range inv {
		inv[i] *= invDet
	}
	*m = inv
	return m
}

// Inverse returns a newly allocated inverse, leaving m untouched.
func (m *Matrix4) Inverse() *Matrix4 {
	return m.Copy().Invert()
}
