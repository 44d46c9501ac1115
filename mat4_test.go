package main

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// toMgl reinterprets the flat storage as an mgl32 matrix. The row-major
// row-vector layout used here stores the same 16 values, in the same
// order, as mgl32's column-major column-vector equivalent, so mgl32
// serves as a reference implementation for the raw arrays. A product
// a*b on this side corresponds to b.Mul4(a) on the mgl32 side.
func toMgl(m *Matrix4) mgl32.Mat4 {
	var out mgl32.Mat4
	copy(out[:], m[:])
	return out
}

func matricesNear(t *testing.T, got *Matrix4, want mgl32.Mat4, eps float32) {
	t.Helper()
	for i := range got {
		if diff := float32(math.Abs(float64(got[i] - want[i]))); diff > eps {
			t.Fatalf("element %d: got %v, want %v (diff %v)\ngot  %v\nwant %v",
				i, got[i], want[i], diff, *got, want)
		}
	}
}

func TestNewMatrix4IsIdentity(t *testing.T) {
	m := NewMatrix4()
	for i := range m {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Fatalf("element %d: got %v, want %v", i, m[i], want)
		}
	}
}

func TestMultiplyMatchesReference(t *testing.T) {
	a := &Matrix4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	b := &Matrix4{
		2, 0, 1, 0,
		1, 3, 0, 2,
		0, 1, 4, 0,
		3, 0, 0, 1,
	}
	want := toMgl(b).Mul4(toMgl(a))
	got := a.Copy().Multiply(b)
	matricesNear(t, got, want, 0)
}

func TestMultiplyAliasing(t *testing.T) {
	m := &Matrix4{
		1, 2, 0, 0,
		3, 4, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	want := toMgl(m).Mul4(toMgl(m))
	m.Multiply(m)
	matricesNear(t, m, want, 0)
}

func TestTransformChainMatchesReference(t *testing.T) {
	got := NewMatrix4().
		Translate(1, 2, 3).
		Rotate(37, 0, 1, 0).
		Scale(2, 2, 0.5)
	// translate applied first, then rotate, then scale; in mgl32's
	// column-vector convention that product reads right to left
	want := mgl32.Scale3D(2, 2, 0.5).
		Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(37), mgl32.Vec3{0, 1, 0})).
		Mul4(mgl32.Translate3D(1, 2, 3))
	matricesNear(t, got, want, 1e-5)
}

func TestRotateUsesDegrees(t *testing.T) {
	m := NewMatrix4().Rotate(90, 0, 0, 1)
	want := mgl32.HomogRotate3DZ(mgl32.DegToRad(90))
	matricesNear(t, m, want, 1e-6)
}

func TestRotateZeroAxisIsNoOp(t *testing.T) {
	m := NewMatrix4().Translate(5, 6, 7)
	before := *m
	m.Rotate(45, 0, 0, 0)
	if *m != before {
		t.Fatalf("zero-axis rotate changed the matrix: %v", *m)
	}
}

func TestPerspectiveMatchesReference(t *testing.T) {
	got := NewMatrix4().Perspective(55, 4.0/3.0, 1, 100)
	want := mgl32.Perspective(mgl32.DegToRad(55), 4.0/3.0, 1, 100)
	matricesNear(t, got, want, 1e-5)
}

func TestOrthoMatchesReference(t *testing.T) {
	got := NewMatrix4().Ortho(-2, 2, -1, 1, 0.1, 10)
	want := mgl32.Ortho(-2, 2, -1, 1, 0.1, 10)
	matricesNear(t, got, want, 1e-6)
}

func TestFrustumPremultiplies(t *testing.T) {
	translate := NewMatrix4().Translate(0, 0, -9)
	got := translate.Copy().Frustum(-1, 1, -1, 1, 1, 100)
	// pre-multiplying the frustum means the translation applies first
	want := toMgl(translate).Mul4(mgl32.Frustum(-1, 1, -1, 1, 1, 100))
	matricesNear(t, got, want, 1e-5)
}

func TestInverseRoundTrip(t *testing.T) {
	m := NewMatrix4().
		Translate(3, -2, 5).
		Rotate(30, 1, 0, 0).
		Rotate(60, 0, 1, 0).
		Scale(2, 1, 0.5)
	orig := *m
	product := m.Copy().Multiply(m.Inverse())
	matricesNear(t, product, mgl32.Ident4(), 1e-5)
	if *m != orig {
		t.Fatal("Inverse mutated the receiver")
	}
}

func TestInvertInPlace(t *testing.T) {
	m := NewMatrix4().Translate(1, 2, 3)
	m.Invert()
	want := mgl32.Translate3D(-1, -2, -3)
	matricesNear(t, m, want, 1e-6)
}

func TestInvertSingularPropagatesNonFinite(t *testing.T) {
	m := &Matrix4{} // zero matrix, determinant zero
	m.Invert()
	hasNonFinite := false
	for _, v := range m {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			hasNonFinite = true
		}
	}
	if !hasNonFinite {
		t.Fatalf("inverting a singular matrix produced finite values: %v", *m)
	}
}

func TestTransposeMatchesReference(t *testing.T) {
	m := &Matrix4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	want := toMgl(m).Transpose()
	m.Transpose()
	matricesNear(t, m, want, 0)
}
