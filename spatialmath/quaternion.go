package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rotations/utils"
)

// Quaternion is a unit quaternion (w, x, y, z). It is the hub representation: every other
// representation converts to and from it. q and -q denote the same rotation.
// The zero value is the identity rotation.
type Quaternion[U Usage, T Scalar] struct {
	w, x, y, z T
	set        bool
}

// Common instantiations.
type (
	QuaternionAD = Quaternion[Active, float64]
	QuaternionAF = Quaternion[Active, float32]
	QuaternionPD = Quaternion[Passive, float64]
	QuaternionPF = Quaternion[Passive, float32]
)

// NewQuaternion returns the unit quaternion pointing in the direction of (w, x, y, z).
// The input does not need to be normalized, but it must not be zero.
func NewQuaternion[U Usage, T Scalar](w, x, y, z T) (Quaternion[U, T], error) {
	if !allFinite(float64(w), float64(x), float64(y), float64(z)) {
		return Quaternion[U, T]{}, newNonFiniteError(ErrInvalidQuaternion, float64(w), float64(x), float64(y), float64(z))
	}
	q, ok := normalizeNumber(quat.Number{Real: float64(w), Imag: float64(x), Jmag: float64(y), Kmag: float64(z)})
	if !ok {
		return Quaternion[U, T]{}, newZeroQuaternionError()
	}
	return quaternionFromNumber[U, T](q), nil
}

// IdentityQuaternion returns the quaternion (1, 0, 0, 0).
func IdentityQuaternion[U Usage, T Scalar]() Quaternion[U, T] {
	return quaternionFromNumber[U, T](identityNumber)
}

// quaternionFromNumber expects a unit quaternion.
func quaternionFromNumber[U Usage, T Scalar](q quat.Number) Quaternion[U, T] {
	return Quaternion[U, T]{w: T(q.Real), x: T(q.Imag), y: T(q.Jmag), z: T(q.Kmag), set: true}
}

// Number returns the quaternion as a float64 gonum quaternion.
func (q Quaternion[U, T]) Number() quat.Number {
	if !q.set {
		return identityNumber
	}
	return quat.Number{Real: float64(q.w), Imag: float64(q.x), Jmag: float64(q.y), Kmag: float64(q.z)}
}

// W returns the real part.
func (q Quaternion[U, T]) W() T { return T(q.Number().Real) }

// X returns the first imaginary part.
func (q Quaternion[U, T]) X() T { return T(q.Number().Imag) }

// Y returns the second imaginary part.
func (q Quaternion[U, T]) Y() T { return T(q.Number().Jmag) }

// Z returns the third imaginary part.
func (q Quaternion[U, T]) Z() T { return T(q.Number().Kmag) }

// Usage returns the usage convention of q.
func (q Quaternion[U, T]) Usage() UsageKind { return usageOf[U]() }

// Quaternion returns q.
func (q Quaternion[U, T]) Quaternion() Quaternion[U, T] {
	return q
}

// RotationMatrix returns the rotation in matrix representation.
func (q Quaternion[U, T]) RotationMatrix() RotationMatrix[U, T] {
	m := quatToActiveMat3(q.Number())
	if usageOf[U]() == PassiveUsage {
		m = m.Transpose()
	}
	return rotationMatrixFromMat3[U, T](m)
}

// AngleAxis returns the rotation in canonical angle-axis representation.
func (q Quaternion[U, T]) AngleAxis() AngleAxis[U, T] {
	angle, axis := quatToAngleAxis(q.Number())
	angle, axis = canonicalAngleAxis(angle, axis, halfTurnTolerance[T]())
	return angleAxisFromFloats[U, T](angle, axis)
}

// RotationVector returns the rotation in canonical rotation vector representation.
func (q Quaternion[U, T]) RotationVector() RotationVector[U, T] {
	return rotationVectorFromVector[U, T](quatToRotationVector(q.Number())).Unique()
}

// Compose returns the rotation that applies other first and then q.
// Active: q⊗other. Passive: other⊗q.
func (q Quaternion[U, T]) Compose(other Rotation[U, T]) Quaternion[U, T] {
	return quaternionFromNumber[U, T](composeNumbers[U](q.Number(), other.Quaternion().Number()))
}

// Inverse returns the conjugate of q, which is its inverse because q has unit norm.
func (q Quaternion[U, T]) Inverse() Quaternion[U, T] {
	return quaternionFromNumber[U, T](quat.Conj(q.Number()))
}

// Unique returns the representative of {q, -q} with w > 0. If w is exactly 0, the first nonzero of
// x, y, z is made positive.
func (q Quaternion[U, T]) Unique() Quaternion[U, T] {
	return quaternionFromNumber[U, T](canonicalNumber(q.Number()))
}

// Rotate maps v through q: q v q* for active usage, q* v q for passive usage.
func (q Quaternion[U, T]) Rotate(v r3.Vector) r3.Vector {
	return rotateByNumber[U](q.Number(), v)
}

// InverseRotate maps v through the inverse of q.
func (q Quaternion[U, T]) InverseRotate(v r3.Vector) r3.Vector {
	return rotateByNumber[U](quat.Conj(q.Number()), v)
}

// BoxPlus perturbs q by the rotation vector delta: exp(delta) composed after q.
func (q Quaternion[U, T]) BoxPlus(delta r3.Vector) Quaternion[U, T] {
	return quaternionFromNumber[U, T](composeNumbers[U](rotationVectorToQuat(delta), q.Number()))
}

// BoxMinus returns the rotation vector delta such that other.BoxPlus(delta) equals q.
func (q Quaternion[U, T]) BoxMinus(other Rotation[U, T]) r3.Vector {
	diff := composeNumbers[U](q.Number(), quat.Conj(other.Quaternion().Number()))
	return quatToRotationVector(diff)
}

// Slerp spherically interpolates from q (by = 0) to other (by = 1) along the shorter arc.
func (q Quaternion[U, T]) Slerp(other Quaternion[U, T], by float64) Quaternion[U, T] {
	return quaternionFromNumber[U, T](slerp(q.Number(), other.Number(), by))
}

// AlmostEqual compares the components of q and other. It does not identify q with -q; compare
// Unique values or use Equivalent for that.
func (q Quaternion[U, T]) AlmostEqual(other Quaternion[U, T], tol float64) bool {
	a, b := q.Number(), other.Number()
	return utils.Float64AlmostEqual(a.Real, b.Real, tol) &&
		utils.Float64AlmostEqual(a.Imag, b.Imag, tol) &&
		utils.Float64AlmostEqual(a.Jmag, b.Jmag, tol) &&
		utils.Float64AlmostEqual(a.Kmag, b.Kmag, tol)
}

// Equivalent reports whether q and other describe the same rotation within tol, whatever the
// representation of other. q and -q are considered equal.
func (q Quaternion[U, T]) Equivalent(other Rotation[U, T], tol float64) bool {
	o := other.Quaternion()
	return q.AlmostEqual(o, tol) || q.AlmostEqual(quaternionFromNumber[U, T](Flip(o.Number())), tol)
}

// slerp interpolates between two unit quaternions.
// See: https://en.wikipedia.org/wiki/Slerp
func slerp(from, to quat.Number, by float64) quat.Number {
	cosHalf := from.Real*to.Real + from.Imag*to.Imag + from.Jmag*to.Jmag + from.Kmag*to.Kmag
	if cosHalf < 0 {
		to = Flip(to)
		cosHalf = -cosHalf
	}
	var q quat.Number
	if cosHalf > 1-1e-9 {
		// nearly parallel, fall back to linear interpolation
		q = quat.Add(quat.Scale(1-by, from), quat.Scale(by, to))
	} else {
		half := math.Acos(cosHalf)
		sinHalf := math.Sin(half)
		q = quat.Add(quat.Scale(math.Sin((1-by)*half)/sinHalf, from), quat.Scale(math.Sin(by*half)/sinHalf, to))
	}
	q, _ = normalizeNumber(q)
	return q
}

// CastQuaternion converts q to another precision. The conversion may lose precision.
func CastQuaternion[To Scalar, U Usage, From Scalar](q Quaternion[U, From]) Quaternion[U, To] {
	n := q.Number()
	q2, _ := normalizeNumber(n)
	return quaternionFromNumber[U, To](q2)
}
