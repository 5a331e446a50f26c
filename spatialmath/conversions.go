package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rotations/utils"
)

// All formulas in this file work on float64 primitives and only know about unit quaternions and
// active matrices. Usage handling (transposing for passive matrices, reversing products) happens
// in the representation types.

const (
	// Below this imaginary-part norm the rotation axis of a quaternion is numerically undefined.
	axisUndefinedNorm = 1e-12
	// Below this angle the exponential and logarithmic maps use their Taylor expansions.
	taylorThreshold = 1e-4
	// Largest entry of |RᵀR - I| accepted for a raw rotation matrix.
	maxOrthonormalDeviation = 1e-3
)

var (
	defaultAxis    = r3.Vector{X: 1}
	identityNumber = quat.Number{Real: 1}
)

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func imagPart(q quat.Number) r3.Vector {
	return r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

// unitComponents divides c in place first by its largest magnitude and then by its norm, so that
// subnormal and near-overflow inputs normalize as well as ordinary ones. It reports false if c is
// zero or not finite.
func unitComponents(c []float64) bool {
	if !allFinite(c...) {
		return false
	}
	largest := floats.Norm(c, math.Inf(1))
	if largest == 0 {
		return false
	}
	for i := range c {
		c[i] /= largest
	}
	norm := floats.Norm(c, 2)
	for i := range c {
		c[i] /= norm
	}
	return true
}

// normalizeNumber scales q to unit length. It reports false if q has no direction.
func normalizeNumber(q quat.Number) (quat.Number, bool) {
	c := []float64{q.Real, q.Imag, q.Jmag, q.Kmag}
	if !unitComponents(c) {
		return identityNumber, false
	}
	return quat.Number{Real: c[0], Imag: c[1], Jmag: c[2], Kmag: c[3]}, true
}

// vectorNorm is the Euclidean norm of v. Squares are never formed directly, so it only overflows
// when the norm itself does.
func vectorNorm(v r3.Vector) float64 {
	return floats.Norm([]float64{v.X, v.Y, v.Z}, 2)
}

// unitVector scales v to unit length. It reports false if v has no direction.
func unitVector(v r3.Vector) (r3.Vector, bool) {
	c := []float64{v.X, v.Y, v.Z}
	if !unitComponents(c) {
		return r3.Vector{}, false
	}
	return r3.Vector{X: c[0], Y: c[1], Z: c[2]}, true
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same rotation
// from the opposite hemisphere.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// canonicalNumber picks the representative of {q, -q} with positive real part. When the real part
// is exactly zero the first nonzero imaginary component decides.
func canonicalNumber(q quat.Number) quat.Number {
	switch {
	case q.Real > 0:
		return q
	case q.Real < 0:
		return Flip(q)
	}
	for _, c := range []float64{q.Imag, q.Jmag, q.Kmag} {
		if c > 0 {
			return q
		}
		if c < 0 {
			return Flip(q)
		}
	}
	return q
}

// composeNumbers returns the quaternion that applies rhs first and lhs second under usage U.
func composeNumbers[U Usage](lhs, rhs quat.Number) quat.Number {
	var q quat.Number
	if usageOf[U]() == PassiveUsage {
		q = quat.Mul(rhs, lhs)
	} else {
		q = quat.Mul(lhs, rhs)
	}
	// renormalize so that long chains do not drift off the unit sphere
	q, _ = normalizeNumber(q)
	return q
}

// rotateByNumber maps v through q: q v q* for active usage, q* v q for passive usage.
func rotateByNumber[U Usage](q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	var out quat.Number
	if usageOf[U]() == PassiveUsage {
		out = quat.Mul(quat.Mul(quat.Conj(q), p), q)
	} else {
		out = quat.Mul(quat.Mul(q, p), quat.Conj(q))
	}
	return imagPart(out)
}

// quatToActiveMat3 converts a unit quaternion to the matrix that rotates vectors by it.
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/quaternionToMatrix/index.htm
func quatToActiveMat3(q quat.Number) mgl64.Mat3 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat3FromRows(
		[3]float64{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		[3]float64{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		[3]float64{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	)
}

// activeMat3ToQuat converts an active rotation matrix to a unit quaternion. The branch is chosen
// on the largest of the trace and the diagonal entries so the square root argument never
// approaches zero.
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/matrixToQuaternion/index.htm
func activeMat3ToQuat(m mgl64.Mat3) quat.Number {
	m00, m01, m02 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m10, m11, m12 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	m20, m21, m22 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	var q quat.Number
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{Real: 0.25 / s, Imag: (m21 - m12) * s, Jmag: (m02 - m20) * s, Kmag: (m10 - m01) * s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{Real: (m21 - m12) / s, Imag: 0.25 * s, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: 0.25 * s, Kmag: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: 0.25 * s}
	}
	q, _ = normalizeNumber(q)
	return q
}

// quatToAngleAxis converts a unit quaternion to an angle in [0, pi] and a unit axis.
func quatToAngleAxis(q quat.Number) (float64, r3.Vector) {
	q = canonicalNumber(q)
	v := imagPart(q)
	norm := v.Norm()
	if norm < axisUndefinedNorm {
		return 0, defaultAxis
	}
	return 2 * math.Atan2(norm, q.Real), v.Mul(1 / norm)
}

// reduceAngle maps angle into [-pi, pi] with the same 2pi that canonicalAngleAxis wraps by. Going
// through it keeps the quaternion of a huge angle consistent with its Unique form.
func reduceAngle(angle float64) float64 {
	return math.Remainder(angle, 2*math.Pi)
}

// angleAxisToQuat expects a unit axis.
func angleAxisToQuat(angle float64, axis r3.Vector) quat.Number {
	s, c := math.Sincos(reduceAngle(angle) / 2)
	return quat.Number{Real: c, Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// quatToRotationVector is the logarithmic map of a unit quaternion.
func quatToRotationVector(q quat.Number) r3.Vector {
	q = canonicalNumber(q)
	v := imagPart(q)
	norm := v.Norm()
	if norm < taylorThreshold {
		// 2*atan2(n, w)/n = (2/w)(1 - n²/(3w²) + O(n⁴))
		w := q.Real
		return v.Mul(2 / w * (1 - utils.Square(norm/w)/3))
	}
	return v.Mul(2 * math.Atan2(norm, q.Real) / norm)
}

// rotationVectorToQuat is the exponential map of a rotation vector.
func rotationVectorToQuat(v r3.Vector) quat.Number {
	theta := vectorNorm(v)
	if theta < taylorThreshold {
		t2 := utils.Square(theta)
		// cos(θ/2) = 1 - θ²/8, sin(θ/2)/θ = 1/2 - θ²/48
		s := 0.5 - t2/48
		q, _ := normalizeNumber(quat.Number{Real: 1 - t2/8, Imag: s * v.X, Jmag: s * v.Y, Kmag: s * v.Z})
		return q
	}
	sinHalf, cosHalf := math.Sincos(reduceAngle(theta) / 2)
	s := sinHalf / theta
	return quat.Number{Real: cosHalf, Imag: s * v.X, Jmag: s * v.Y, Kmag: s * v.Z}
}

func halfTurnTolerance[T Scalar]() float64 {
	if isSinglePrecision[T]() {
		return 1e-6
	}
	return 1e-12
}

// canonicalAngleAxis wraps angle into [0, pi], flipping the axis for negative angles. Angle zero
// gets the default axis; an angle within tol of pi is snapped to pi and its axis sign resolved by
// resolveHalfTurnAxis.
func canonicalAngleAxis(angle float64, axis r3.Vector, tol float64) (float64, r3.Vector) {
	angle = reduceAngle(angle)
	if angle < 0 {
		angle = -angle
		axis = axis.Mul(-1)
	}
	if angle == 0 {
		return 0, defaultAxis
	}
	if math.Pi-angle <= tol {
		return math.Pi, resolveHalfTurnAxis(axis)
	}
	return angle, axis
}

// resolveHalfTurnAxis chooses between the two equivalent axes of a half turn: the component with
// the largest magnitude must be positive, ties going to the lowest index.
func resolveHalfTurnAxis(axis r3.Vector) r3.Vector {
	components := []float64{axis.X, axis.Y, axis.Z}
	largest := 0
	for i := 1; i < len(components); i++ {
		if math.Abs(components[i]) > math.Abs(components[largest]) {
			largest = i
		}
	}
	if components[largest] < 0 {
		return axis.Mul(-1)
	}
	return axis
}

// mat3FromRows builds a column-major mgl64.Mat3 from row-major data.
func mat3FromRows(r0, r1, r2 [3]float64) mgl64.Mat3 {
	return mgl64.Mat3{
		r0[0], r1[0], r2[0],
		r0[1], r1[1], r2[1],
		r0[2], r1[2], r2[2],
	}
}

// orthonormalDeviation returns the largest entry of |mᵀm - I|.
func orthonormalDeviation(m mgl64.Mat3) float64 {
	diff := m.Transpose().Mul3(m).Sub(mgl64.Ident3())
	var worst float64
	for _, v := range diff {
		worst = math.Max(worst, math.Abs(v))
	}
	return worst
}

// orthonormalize returns the rotation closest to m in the Frobenius norm, U·Vᵀ from the SVD of m.
func orthonormalize(m mgl64.Mat3) mgl64.Mat3 {
	a := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			a.Set(r, c, m.At(r, c))
		}
	}
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return m
	}
	var u, v, rot mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	rot.Mul(&u, v.T())
	if mat.Det(&rot) < 0 {
		// singular values are sorted, so the last column pairs with the smallest one
		for r := 0; r < 3; r++ {
			u.Set(r, 2, -u.At(r, 2))
		}
		rot.Mul(&u, v.T())
	}

	var out mgl64.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.Set(r, c, rot.At(r, c))
		}
	}
	return out
}
