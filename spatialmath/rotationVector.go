package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/rotations/utils"
)

// RotationVector is the exponential coordinate form of a rotation: its norm is the angle and its
// direction the axis. Like an angle-axis pair it is not unique; v and v·(1 + 2πk/|v|) denote the
// same rotation. The zero value is the identity rotation.
type RotationVector[U Usage, T Scalar] struct {
	x, y, z T
}

// Common instantiations.
type (
	RotationVectorAD = RotationVector[Active, float64]
	RotationVectorAF = RotationVector[Active, float32]
	RotationVectorPD = RotationVector[Passive, float64]
	RotationVectorPF = RotationVector[Passive, float32]
)

// NewRotationVector returns the rotation vector (x, y, z). Any vector with a finite norm is a valid
// rotation.
func NewRotationVector[U Usage, T Scalar](x, y, z T) (RotationVector[U, T], error) {
	if !allFinite(float64(x), float64(y), float64(z)) {
		return RotationVector[U, T]{}, newNonFiniteError(ErrInvalidRotationVector, float64(x), float64(y), float64(z))
	}
	if math.IsInf(vectorNorm(r3.Vector{X: float64(x), Y: float64(y), Z: float64(z)}), 0) {
		return RotationVector[U, T]{}, newNormOverflowError(ErrInvalidRotationVector, float64(x), float64(y), float64(z))
	}
	return RotationVector[U, T]{x: x, y: y, z: z}, nil
}

// IdentityRotationVector returns the zero vector.
func IdentityRotationVector[U Usage, T Scalar]() RotationVector[U, T] {
	return RotationVector[U, T]{}
}

func rotationVectorFromVector[U Usage, T Scalar](v r3.Vector) RotationVector[U, T] {
	return RotationVector[U, T]{x: T(v.X), y: T(v.Y), z: T(v.Z)}
}

// X returns the first component.
func (rv RotationVector[U, T]) X() T { return rv.x }

// Y returns the second component.
func (rv RotationVector[U, T]) Y() T { return rv.y }

// Z returns the third component.
func (rv RotationVector[U, T]) Z() T { return rv.z }

// Vector returns the components as a float64 vector.
func (rv RotationVector[U, T]) Vector() r3.Vector {
	return r3.Vector{X: float64(rv.x), Y: float64(rv.y), Z: float64(rv.z)}
}

// Angle returns the norm of the vector.
func (rv RotationVector[U, T]) Angle() T {
	return T(vectorNorm(rv.Vector()))
}

// Axis returns the normalized vector, or the default axis (1, 0, 0) for the zero vector.
func (rv RotationVector[U, T]) Axis() r3.Vector {
	axis, ok := unitVector(rv.Vector())
	if !ok {
		return defaultAxis
	}
	return axis
}

// Usage returns the usage convention of rv.
func (rv RotationVector[U, T]) Usage() UsageKind { return usageOf[U]() }

// Quaternion returns the rotation in quaternion representation.
func (rv RotationVector[U, T]) Quaternion() Quaternion[U, T] {
	return quaternionFromNumber[U, T](rotationVectorToQuat(rv.Vector()))
}

// RotationMatrix returns the rotation in matrix representation.
func (rv RotationVector[U, T]) RotationMatrix() RotationMatrix[U, T] {
	return rv.Quaternion().RotationMatrix()
}

// AngleAxis returns the rotation in canonical angle-axis representation.
func (rv RotationVector[U, T]) AngleAxis() AngleAxis[U, T] {
	theta := vectorNorm(rv.Vector())
	if theta == 0 {
		return IdentityAngleAxis[U, T]()
	}
	angle, axis := canonicalAngleAxis(theta, rv.Axis(), halfTurnTolerance[T]())
	return angleAxisFromFloats[U, T](angle, axis)
}

// RotationVector returns rv.
func (rv RotationVector[U, T]) RotationVector() RotationVector[U, T] {
	return rv
}

// Compose returns the rotation that applies other first and then rv, computed on quaternions.
func (rv RotationVector[U, T]) Compose(other Rotation[U, T]) RotationVector[U, T] {
	return rv.Quaternion().Compose(other).RotationVector()
}

// Inverse returns the inverse rotation, computed on quaternions.
func (rv RotationVector[U, T]) Inverse() RotationVector[U, T] {
	return rv.Quaternion().Inverse().RotationVector()
}

// Unique rescales the vector so that its norm lies in [0, π], with the same half turn
// tie-break as AngleAxis.Unique.
func (rv RotationVector[U, T]) Unique() RotationVector[U, T] {
	theta := vectorNorm(rv.Vector())
	if theta == 0 {
		return RotationVector[U, T]{}
	}
	angle, axis := canonicalAngleAxis(theta, rv.Axis(), halfTurnTolerance[T]())
	return rotationVectorFromVector[U, T](axis.Mul(angle))
}

// Rotate maps v through the rotation according to its usage.
func (rv RotationVector[U, T]) Rotate(v r3.Vector) r3.Vector {
	return rv.Quaternion().Rotate(v)
}

// InverseRotate maps v through the inverse rotation.
func (rv RotationVector[U, T]) InverseRotate(v r3.Vector) r3.Vector {
	return rv.Quaternion().InverseRotate(v)
}

// BoxPlus perturbs rv by the rotation vector delta: exp(delta) composed after rv.
func (rv RotationVector[U, T]) BoxPlus(delta r3.Vector) RotationVector[U, T] {
	return rv.Quaternion().BoxPlus(delta).RotationVector()
}

// BoxMinus returns the rotation vector delta such that other.BoxPlus(delta) equals rv.
func (rv RotationVector[U, T]) BoxMinus(other Rotation[U, T]) r3.Vector {
	return rv.Quaternion().BoxMinus(other)
}

// AlmostEqual compares the components of rv and other.
func (rv RotationVector[U, T]) AlmostEqual(other RotationVector[U, T], tol float64) bool {
	a, b := rv.Vector(), other.Vector()
	return utils.Float64AlmostEqual(a.X, b.X, tol) &&
		utils.Float64AlmostEqual(a.Y, b.Y, tol) &&
		utils.Float64AlmostEqual(a.Z, b.Z, tol)
}

// Equivalent reports whether rv and other describe the same rotation within tol.
func (rv RotationVector[U, T]) Equivalent(other Rotation[U, T], tol float64) bool {
	return rv.Quaternion().Equivalent(other, tol)
}

// CastRotationVector converts rv to another precision. The conversion may lose precision. A vector
// too long for the target precision is cast in its Unique form.
func CastRotationVector[To Scalar, U Usage, From Scalar](rv RotationVector[U, From]) RotationVector[U, To] {
	v := rv.Vector()
	if !allFinite(float64(To(v.X)), float64(To(v.Y)), float64(To(v.Z))) {
		v = rv.Unique().Vector()
	}
	return rotationVectorFromVector[U, To](v)
}
