package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/rotations/utils"
)

// RotationMatrix is an orthonormal 3x3 matrix with determinant +1. For passive usage the stored
// matrix is the transpose of the active matrix with the same parameters, so in both usages
// Rotate is a plain matrix-vector product and Compose a plain matrix product.
// The zero value is the identity rotation.
type RotationMatrix[U Usage, T Scalar] struct {
	// row-major
	mat [9]T
	set bool
}

// Common instantiations.
type (
	RotationMatrixAD = RotationMatrix[Active, float64]
	RotationMatrixAF = RotationMatrix[Active, float32]
	RotationMatrixPD = RotationMatrix[Passive, float64]
	RotationMatrixPF = RotationMatrix[Passive, float32]
)

// NewRotationMatrix returns the rotation matrix with the given row-major entries. The matrix must
// be a proper rotation up to small floating point error; it is stored as given, use Unique to
// remove drift.
func NewRotationMatrix[U Usage, T Scalar](r00, r01, r02, r10, r11, r12, r20, r21, r22 T) (RotationMatrix[U, T], error) {
	entries := []float64{
		float64(r00), float64(r01), float64(r02),
		float64(r10), float64(r11), float64(r12),
		float64(r20), float64(r21), float64(r22),
	}
	if !allFinite(entries...) {
		return RotationMatrix[U, T]{}, newNonFiniteError(ErrInvalidRotationMatrix, entries...)
	}
	m := mat3FromRows(
		[3]float64{entries[0], entries[1], entries[2]},
		[3]float64{entries[3], entries[4], entries[5]},
		[3]float64{entries[6], entries[7], entries[8]},
	)
	if det := m.Det(); det <= 0 {
		return RotationMatrix[U, T]{}, newImproperRotationError(det)
	}
	if dev := orthonormalDeviation(m); dev > maxOrthonormalDeviation {
		return RotationMatrix[U, T]{}, newNotOrthonormalError(dev)
	}
	return rotationMatrixFromMat3[U, T](m), nil
}

// IdentityRotationMatrix returns the 3x3 identity.
func IdentityRotationMatrix[U Usage, T Scalar]() RotationMatrix[U, T] {
	return rotationMatrixFromMat3[U, T](mgl64.Ident3())
}

func rotationMatrixFromMat3[U Usage, T Scalar](m mgl64.Mat3) RotationMatrix[U, T] {
	out := RotationMatrix[U, T]{set: true}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.mat[3*r+c] = T(m.At(r, c))
		}
	}
	return out
}

// Mat3 returns the stored matrix as a float64 mathgl matrix.
func (m RotationMatrix[U, T]) Mat3() mgl64.Mat3 {
	if !m.set {
		return mgl64.Ident3()
	}
	var out mgl64.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.Set(r, c, float64(m.mat[3*r+c]))
		}
	}
	return out
}

// At returns the entry at row, col.
func (m RotationMatrix[U, T]) At(row, col int) T {
	return T(m.Mat3().At(row, col))
}

// Usage returns the usage convention of m.
func (m RotationMatrix[U, T]) Usage() UsageKind { return usageOf[U]() }

// activeMat3 returns the matrix that rotates vectors by the same parameters.
func (m RotationMatrix[U, T]) activeMat3() mgl64.Mat3 {
	if usageOf[U]() == PassiveUsage {
		return m.Mat3().Transpose()
	}
	return m.Mat3()
}

// Quaternion returns the rotation in quaternion representation.
func (m RotationMatrix[U, T]) Quaternion() Quaternion[U, T] {
	return quaternionFromNumber[U, T](activeMat3ToQuat(m.activeMat3()))
}

// RotationMatrix returns m.
func (m RotationMatrix[U, T]) RotationMatrix() RotationMatrix[U, T] {
	return m
}

// AngleAxis returns the rotation in canonical angle-axis representation.
func (m RotationMatrix[U, T]) AngleAxis() AngleAxis[U, T] {
	return m.Quaternion().AngleAxis()
}

// RotationVector returns the rotation in canonical rotation vector representation.
func (m RotationMatrix[U, T]) RotationVector() RotationVector[U, T] {
	return m.Quaternion().RotationVector()
}

// Compose returns the matrix product m·other, which applies other first.
func (m RotationMatrix[U, T]) Compose(other Rotation[U, T]) RotationMatrix[U, T] {
	return rotationMatrixFromMat3[U, T](m.Mat3().Mul3(other.RotationMatrix().Mat3()))
}

// Inverse returns the transpose of m.
func (m RotationMatrix[U, T]) Inverse() RotationMatrix[U, T] {
	return rotationMatrixFromMat3[U, T](m.Mat3().Transpose())
}

// Unique returns m projected back onto the rotation group. A matrix has no redundancy, so this
// only removes accumulated floating point drift.
func (m RotationMatrix[U, T]) Unique() RotationMatrix[U, T] {
	return rotationMatrixFromMat3[U, T](orthonormalize(m.Mat3()))
}

// Rotate returns m·v.
func (m RotationMatrix[U, T]) Rotate(v r3.Vector) r3.Vector {
	out := m.Mat3().Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}

// InverseRotate returns mᵀ·v.
func (m RotationMatrix[U, T]) InverseRotate(v r3.Vector) r3.Vector {
	return m.Inverse().Rotate(v)
}

// BoxPlus perturbs m by the rotation vector delta: exp(delta) composed after m.
func (m RotationMatrix[U, T]) BoxPlus(delta r3.Vector) RotationMatrix[U, T] {
	return m.Quaternion().BoxPlus(delta).RotationMatrix()
}

// BoxMinus returns the rotation vector delta such that other.BoxPlus(delta) equals m.
func (m RotationMatrix[U, T]) BoxMinus(other Rotation[U, T]) r3.Vector {
	return m.Quaternion().BoxMinus(other)
}

// AlmostEqual compares the entries of m and other with an absolute tolerance.
func (m RotationMatrix[U, T]) AlmostEqual(other RotationMatrix[U, T], tol float64) bool {
	a, b := m.Mat3(), other.Mat3()
	for i := range a {
		if !utils.Float64AlmostEqual(a[i], b[i], tol) {
			return false
		}
	}
	return true
}

// Equivalent reports whether m and other describe the same rotation within tol.
func (m RotationMatrix[U, T]) Equivalent(other Rotation[U, T], tol float64) bool {
	return m.Quaternion().Equivalent(other, tol)
}

// CastRotationMatrix converts m to another precision. The conversion may lose precision.
func CastRotationMatrix[To Scalar, U Usage, From Scalar](m RotationMatrix[U, From]) RotationMatrix[U, To] {
	return rotationMatrixFromMat3[U, To](m.Mat3())
}
