package spatialmath

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rotations/utils"
)

// See here for a thorough explanation: https://en.wikipedia.org/wiki/Axis%E2%80%93angle_representation
// Basic explanation: imagine a unit sphere centered at the origin. A rotation can be expressed by
// picking an axis, i.e. a line from the origin to a point on that sphere, and an angle to turn
// around that axis. The pair is not unique: (θ, a), (θ+2πk, a) and (-θ, -a) are the same rotation.
// Multiplying the axis by the angle gives the RotationVector representation.

// AngleAxis is a rotation by Angle around a unit Axis. When the angle is zero the axis carries no
// information and is fixed to (1, 0, 0).
type AngleAxis[U Usage, T Scalar] struct {
	angle T
	axis  [3]T
}

// Common instantiations.
type (
	AngleAxisAD = AngleAxis[Active, float64]
	AngleAxisAF = AngleAxis[Active, float32]
	AngleAxisPD = AngleAxis[Passive, float64]
	AngleAxisPF = AngleAxis[Passive, float32]
)

// NewAngleAxis returns the rotation by angle around (x, y, z). The axis is normalized; it may only
// be zero when the angle is zero.
func NewAngleAxis[U Usage, T Scalar](angle, x, y, z T) (AngleAxis[U, T], error) {
	th := float64(angle)
	axis := r3.Vector{X: float64(x), Y: float64(y), Z: float64(z)}
	if !allFinite(th, axis.X, axis.Y, axis.Z) {
		return AngleAxis[U, T]{}, newNonFiniteError(ErrInvalidAngleAxis, th, axis.X, axis.Y, axis.Z)
	}
	if th == 0 {
		return angleAxisFromFloats[U, T](0, defaultAxis), nil
	}
	unit, ok := unitVector(axis)
	if !ok {
		return AngleAxis[U, T]{}, newZeroAxisError(th)
	}
	return angleAxisFromFloats[U, T](th, unit), nil
}

// IdentityAngleAxis returns the zero rotation around the default axis.
func IdentityAngleAxis[U Usage, T Scalar]() AngleAxis[U, T] {
	return angleAxisFromFloats[U, T](0, defaultAxis)
}

func angleAxisFromFloats[U Usage, T Scalar](angle float64, axis r3.Vector) AngleAxis[U, T] {
	return AngleAxis[U, T]{angle: T(angle), axis: [3]T{T(axis.X), T(axis.Y), T(axis.Z)}}
}

// Angle returns the rotation angle in radians.
func (aa AngleAxis[U, T]) Angle() T { return aa.angle }

// Axis returns the unit rotation axis.
func (aa AngleAxis[U, T]) Axis() r3.Vector {
	axis := r3.Vector{X: float64(aa.axis[0]), Y: float64(aa.axis[1]), Z: float64(aa.axis[2])}
	if axis.Norm2() == 0 {
		return defaultAxis
	}
	return axis
}

// Usage returns the usage convention of aa.
func (aa AngleAxis[U, T]) Usage() UsageKind { return usageOf[U]() }

// Quaternion returns the rotation in quaternion representation.
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/angleToQuaternion/index.htm
func (aa AngleAxis[U, T]) Quaternion() Quaternion[U, T] {
	// the stored axis may be a float32 rounding away from unit length
	q, _ := normalizeNumber(angleAxisToQuat(float64(aa.angle), aa.Axis().Normalize()))
	return quaternionFromNumber[U, T](q)
}

// RotationMatrix returns the rotation in matrix representation.
func (aa AngleAxis[U, T]) RotationMatrix() RotationMatrix[U, T] {
	return aa.Quaternion().RotationMatrix()
}

// AngleAxis returns aa.
func (aa AngleAxis[U, T]) AngleAxis() AngleAxis[U, T] {
	return aa
}

// RotationVector returns the rotation in canonical rotation vector representation.
func (aa AngleAxis[U, T]) RotationVector() RotationVector[U, T] {
	return rotationVectorFromVector[U, T](aa.Axis().Mul(float64(aa.angle))).Unique()
}

// Compose returns the rotation that applies other first and then aa. There is no closed form for
// composing angle-axis pairs, so both sides go through the quaternion.
func (aa AngleAxis[U, T]) Compose(other Rotation[U, T]) AngleAxis[U, T] {
	return aa.Quaternion().Compose(other).AngleAxis()
}

// Inverse returns the rotation by the negated angle, canonicalized.
func (aa AngleAxis[U, T]) Inverse() AngleAxis[U, T] {
	return angleAxisFromFloats[U, T](-float64(aa.angle), aa.Axis()).Unique()
}

// Unique wraps the angle into [0, π], flipping the axis where needed. At exactly a half turn
// (within 1e-12 for float64, 1e-6 for float32) the axis is signed so that its largest magnitude
// component is positive, ties going to the lowest index.
func (aa AngleAxis[U, T]) Unique() AngleAxis[U, T] {
	angle, axis := canonicalAngleAxis(float64(aa.angle), aa.Axis(), halfTurnTolerance[T]())
	return angleAxisFromFloats[U, T](angle, axis)
}

// Rotate maps v through the rotation according to its usage.
func (aa AngleAxis[U, T]) Rotate(v r3.Vector) r3.Vector {
	return aa.Quaternion().Rotate(v)
}

// InverseRotate maps v through the inverse rotation.
func (aa AngleAxis[U, T]) InverseRotate(v r3.Vector) r3.Vector {
	return aa.Quaternion().InverseRotate(v)
}

// BoxPlus perturbs aa by the rotation vector delta: exp(delta) composed after aa.
func (aa AngleAxis[U, T]) BoxPlus(delta r3.Vector) AngleAxis[U, T] {
	return aa.Quaternion().BoxPlus(delta).AngleAxis()
}

// BoxMinus returns the rotation vector delta such that other.BoxPlus(delta) equals aa.
func (aa AngleAxis[U, T]) BoxMinus(other Rotation[U, T]) r3.Vector {
	return aa.Quaternion().BoxMinus(other)
}

// AlmostEqual compares the angle and axis components of aa and other.
func (aa AngleAxis[U, T]) AlmostEqual(other AngleAxis[U, T], tol float64) bool {
	a, b := aa.Axis(), other.Axis()
	return utils.Float64AlmostEqual(float64(aa.angle), float64(other.angle), tol) &&
		utils.Float64AlmostEqual(a.X, b.X, tol) &&
		utils.Float64AlmostEqual(a.Y, b.Y, tol) &&
		utils.Float64AlmostEqual(a.Z, b.Z, tol)
}

// Equivalent reports whether aa and other describe the same rotation within tol.
func (aa AngleAxis[U, T]) Equivalent(other Rotation[U, T], tol float64) bool {
	return aa.Quaternion().Equivalent(other, tol)
}

// CastAngleAxis converts aa to another precision. The conversion may lose precision. An angle too
// large for the target precision is cast in its Unique form.
func CastAngleAxis[To Scalar, U Usage, From Scalar](aa AngleAxis[U, From]) AngleAxis[U, To] {
	if !allFinite(float64(To(aa.angle))) {
		aa = aa.Unique()
	}
	return angleAxisFromFloats[U, To](float64(aa.angle), aa.Axis())
}
