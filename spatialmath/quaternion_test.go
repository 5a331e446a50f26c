package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestNewQuaternion(t *testing.T) {
	q, err := NewQuaternion[Active](2., 0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q.Number(), test.ShouldResemble, quat.Number{Real: 1})

	q, err = NewQuaternion[Active](2., 3, 4, 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, quat.Abs(q.Number()), test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, q.W(), test.ShouldAlmostEqual, 2/math.Sqrt(54), 1e-12)
	test.That(t, q.Z(), test.ShouldAlmostEqual, 5/math.Sqrt(54), 1e-12)

	// not canonicalized on construction
	qp, err := NewQuaternion[Passive](-1., 0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, qp.W(), test.ShouldEqual, -1.)

	qf, err := NewQuaternion[Active](float32(0), 0, 3, 4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, qf.Y(), test.ShouldAlmostEqual, 0.6, 1e-7)
	test.That(t, qf.Z(), test.ShouldAlmostEqual, 0.8, 1e-7)

	// subnormal and near-overflow components normalize like any other
	q, err = NewQuaternion[Active](1e-320, 0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q.Number(), test.ShouldResemble, quat.Number{Real: 1})
	q, err = NewQuaternion[Active](1e308, 1e308, 1e308, 1e308)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q.Number(), test.ShouldResemble, quat.Number{Real: 0.5, Imag: 0.5, Jmag: 0.5, Kmag: 0.5})
	q, err = NewQuaternion[Active](-math.MaxFloat64, 0, math.MaxFloat64, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q.W(), test.ShouldAlmostEqual, -1/math.Sqrt2, 1e-12)
	test.That(t, q.Y(), test.ShouldAlmostEqual, 1/math.Sqrt2, 1e-12)
	test.That(t, quat.Abs(q.Number()), test.ShouldAlmostEqual, 1, 1e-12)

	for _, tc := range []struct {
		name       string
		w, x, y, z float64
	}{
		{"zero", 0, 0, 0, 0},
		{"nan", math.NaN(), 0, 0, 0},
		{"inf", 1, math.Inf(-1), 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewQuaternion[Active](tc.w, tc.x, tc.y, tc.z)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrInvalidQuaternion), test.ShouldBeTrue)
		})
	}
}

func TestQuaternionUnique(t *testing.T) {
	for _, tc := range []struct {
		name     string
		in       quat.Number
		expected quat.Number
	}{
		{"positive w", quat.Number{Real: 0.6, Imag: -0.8}, quat.Number{Real: 0.6, Imag: -0.8}},
		{"negative w", quat.Number{Real: -0.6, Jmag: 0.8}, quat.Number{Real: 0.6, Jmag: -0.8}},
		{"negative identity", quat.Number{Real: -1}, quat.Number{Real: 1}},
		{"zero w negative x", quat.Number{Imag: -1}, quat.Number{Imag: 1}},
		{"zero w positive x", quat.Number{Imag: 0.6, Jmag: -0.8}, quat.Number{Imag: 0.6, Jmag: -0.8}},
		{"zero w zero x negative y", quat.Number{Jmag: -0.6, Kmag: 0.8}, quat.Number{Jmag: 0.6, Kmag: -0.8}},
		{"zero w only z", quat.Number{Kmag: -1}, quat.Number{Kmag: 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q, err := NewQuaternion[Active](tc.in.Real, tc.in.Imag, tc.in.Jmag, tc.in.Kmag)
			test.That(t, err, test.ShouldBeNil)
			u := q.Unique()
			test.That(t, u.AlmostEqual(quaternionFromNumber[Active, float64](tc.expected), 1e-12), test.ShouldBeTrue)
			test.That(t, u.Unique(), test.ShouldResemble, u)
			test.That(t, u.Equivalent(q, 1e-12), test.ShouldBeTrue)
		})
	}
}

func TestQuaternionCompose(t *testing.T) {
	s := math.Sqrt2 / 2
	quarterX, err := NewQuaternion[Active](s, s, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	quarterZ, err := NewQuaternion[Active](s, 0, 0, s)
	test.That(t, err, test.ShouldBeNil)

	// z first, then x: the Hamilton product x⊗z
	composed := quarterX.Compose(quarterZ)
	expected := quat.Mul(quarterX.Number(), quarterZ.Number())
	test.That(t, composed.AlmostEqual(quaternionFromNumber[Active, float64](expected), 1e-12), test.ShouldBeTrue)
	assertVectorNear(t, composed.Rotate(r3.Vector{X: 1}), r3.Vector{Z: 1}, 1e-12)

	// the same parameters used passively compose the other way around
	px := quaternionFromNumber[Passive, float64](quarterX.Number())
	pz := quaternionFromNumber[Passive, float64](quarterZ.Number())
	pcomposed := px.Compose(pz)
	expected = quat.Mul(pz.Number(), px.Number())
	test.That(t, pcomposed.AlmostEqual(quaternionFromNumber[Passive, float64](expected), 1e-12), test.ShouldBeTrue)
	assertVectorNear(t, pcomposed.Rotate(r3.Vector{X: 1}), px.Rotate(pz.Rotate(r3.Vector{X: 1})), 1e-12)

	// composition of mixed representations goes through the quaternion
	aa, err := NewAngleAxis[Active](math.Pi/2, 0., 0, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, quarterX.Compose(aa).Equivalent(composed, 1e-12), test.ShouldBeTrue)

	// long chains stay on the unit sphere
	chain := IdentityQuaternion[Active, float32]()
	step, err := NewQuaternion[Active](float32(0.9), 0.1, -0.3, 0.2)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 10000; i++ {
		chain = chain.Compose(step)
	}
	test.That(t, quat.Abs(chain.Number()), test.ShouldAlmostEqual, 1, 1e-6)
}

func TestQuaternionInverse(t *testing.T) {
	q, err := NewQuaternion[Active](2., 3, 4, 5)
	test.That(t, err, test.ShouldBeNil)
	inv := q.Inverse()
	test.That(t, inv.W(), test.ShouldEqual, q.W())
	test.That(t, inv.X(), test.ShouldEqual, -q.X())
	test.That(t, inv.Inverse(), test.ShouldResemble, q)
	test.That(t, q.Compose(inv).Equivalent(IdentityQuaternion[Active, float64](), 1e-12), test.ShouldBeTrue)
	test.That(t, inv.Compose(q).Equivalent(IdentityQuaternion[Active, float64](), 1e-12), test.ShouldBeTrue)

	v := r3.Vector{X: -1, Y: 0.5, Z: 2}
	assertVectorNear(t, q.InverseRotate(q.Rotate(v)), v, 1e-12)
	assertVectorNear(t, inv.Rotate(v), q.InverseRotate(v), 1e-12)
}

func TestQuaternionRotate(t *testing.T) {
	s := math.Sqrt2 / 2
	qa, err := NewQuaternion[Active](s, 0, 0, s)
	test.That(t, err, test.ShouldBeNil)
	qp, err := NewQuaternion[Passive](s, 0, 0, s)
	test.That(t, err, test.ShouldBeNil)

	// a quarter turn around z moves x onto y, and expresses x as -y in the turned frame
	assertVectorNear(t, qa.Rotate(r3.Vector{X: 1}), r3.Vector{Y: 1}, 1e-12)
	assertVectorNear(t, qp.Rotate(r3.Vector{X: 1}), r3.Vector{Y: -1}, 1e-12)

	m := qa.RotationMatrix()
	assertVectorNear(t, m.Rotate(r3.Vector{X: 1, Y: 2, Z: 3}), qa.Rotate(r3.Vector{X: 1, Y: 2, Z: 3}), 1e-12)
	mp := qp.RotationMatrix()
	assertVectorNear(t, mp.Rotate(r3.Vector{X: 1, Y: 2, Z: 3}), qp.Rotate(r3.Vector{X: 1, Y: 2, Z: 3}), 1e-12)
}

func TestQuaternionToAngleAxisTieBreak(t *testing.T) {
	// w == 0 is a half turn; the axis must come out canonical whatever sign q has
	for _, n := range []quat.Number{{Kmag: -1}, {Kmag: 1}} {
		q, err := NewQuaternion[Active](n.Real, n.Imag, n.Jmag, n.Kmag)
		test.That(t, err, test.ShouldBeNil)
		aa := q.AngleAxis()
		test.That(t, aa.Angle(), test.ShouldEqual, math.Pi)
		test.That(t, aa.Axis(), test.ShouldResemble, r3.Vector{Z: 1})
		rv := q.RotationVector()
		assertVectorNear(t, rv.Vector(), r3.Vector{Z: math.Pi}, 1e-12)
	}

	q, err := NewQuaternion[Active](0., 0.6, -0.8, 0)
	test.That(t, err, test.ShouldBeNil)
	aa := q.AngleAxis()
	test.That(t, aa.Angle(), test.ShouldEqual, math.Pi)
	assertVectorNear(t, aa.Axis(), r3.Vector{X: -0.6, Y: 0.8}, 1e-12)
}

func TestQuaternionSmallAngles(t *testing.T) {
	for _, theta := range []float64{1e-3, 1e-5, 1e-8, 1e-12} {
		q, err := NewQuaternion[Active](math.Cos(theta/2), 0, math.Sin(theta/2), 0)
		test.That(t, err, test.ShouldBeNil)
		rv := q.RotationVector()
		test.That(t, rv.Y(), test.ShouldAlmostEqual, theta, theta*1e-9)
		test.That(t, rv.X(), test.ShouldEqual, 0.)

		back := rv.Quaternion()
		test.That(t, back.AlmostEqual(q, 1e-12), test.ShouldBeTrue)
	}

	// below the axis threshold the angle-axis falls back to the default axis
	q, err := NewQuaternion[Active](1., 0, 0, 1e-14)
	test.That(t, err, test.ShouldBeNil)
	aa := q.AngleAxis()
	test.That(t, aa.Angle(), test.ShouldEqual, 0.)
	test.That(t, aa.Axis(), test.ShouldResemble, r3.Vector{X: 1})
}

func TestQuaternionBoxOperators(t *testing.T) {
	q, err := NewQuaternion[Active](0.3, -0.2, 0.9, 0.1)
	test.That(t, err, test.ShouldBeNil)
	delta := r3.Vector{X: 0.01, Y: -0.2, Z: 0.3}

	moved := q.BoxPlus(delta)
	assertVectorNear(t, moved.BoxMinus(q), delta, 1e-12)
	test.That(t, q.BoxPlus(r3.Vector{}).AlmostEqual(q, 1e-12), test.ShouldBeTrue)
	assertVectorNear(t, q.BoxMinus(q), r3.Vector{}, 1e-12)

	other, err := NewQuaternion[Active](-0.5, 0.5, 0.5, 0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, other.BoxPlus(q.BoxMinus(other)).Equivalent(q, 1e-12), test.ShouldBeTrue)

	// BoxPlus applies the perturbation after q
	exp := rotationVectorFromVector[Active, float64](delta)
	test.That(t, moved.Equivalent(exp.Compose(q), 1e-12), test.ShouldBeTrue)

	qp := quaternionFromNumber[Passive, float64](q.Number())
	op := quaternionFromNumber[Passive, float64](other.Number())
	test.That(t, op.BoxPlus(qp.BoxMinus(op)).Equivalent(qp, 1e-12), test.ShouldBeTrue)
}

func TestQuaternionSlerp(t *testing.T) {
	s := math.Sqrt2 / 2
	start := IdentityQuaternion[Active, float64]()
	end, err := NewQuaternion[Active](s, 0, 0, s)
	test.That(t, err, test.ShouldBeNil)

	half := start.Slerp(end, 0.5)
	test.That(t, half.W(), test.ShouldAlmostEqual, math.Cos(math.Pi/8), 1e-12)
	test.That(t, half.Z(), test.ShouldAlmostEqual, math.Sin(math.Pi/8), 1e-12)
	test.That(t, start.Slerp(end, 0).AlmostEqual(start, 1e-12), test.ShouldBeTrue)
	test.That(t, start.Slerp(end, 1).AlmostEqual(end, 1e-12), test.ShouldBeTrue)

	// takes the shorter arc when the other end is in the opposite hemisphere
	flipped := quaternionFromNumber[Active, float64](Flip(end.Number()))
	test.That(t, start.Slerp(flipped, 0.5).Equivalent(half, 1e-12), test.ShouldBeTrue)

	// nearly identical ends
	near := start.BoxPlus(r3.Vector{X: 1e-12})
	test.That(t, start.Slerp(near, 0.5).Equivalent(start, 1e-12), test.ShouldBeTrue)
}

func TestQuaternionEquivalent(t *testing.T) {
	q, err := NewQuaternion[Active](0.5, 0.5, 0.5, 0.5)
	test.That(t, err, test.ShouldBeNil)
	neg := quaternionFromNumber[Active, float64](Flip(q.Number()))
	test.That(t, q.AlmostEqual(neg, 1e-9), test.ShouldBeFalse)
	test.That(t, q.Equivalent(neg, 1e-9), test.ShouldBeTrue)
	test.That(t, q.Equivalent(q.RotationMatrix(), 1e-12), test.ShouldBeTrue)
	test.That(t, q.Equivalent(IdentityQuaternion[Active, float64](), 1e-3), test.ShouldBeFalse)
}

func TestCastQuaternion(t *testing.T) {
	q, err := NewQuaternion[Passive](2., 3, 4, 5)
	test.That(t, err, test.ShouldBeNil)
	qf := CastQuaternion[float32](q)
	test.That(t, float64(qf.W()), test.ShouldAlmostEqual, q.W(), 1e-7)
	test.That(t, float64(qf.Z()), test.ShouldAlmostEqual, q.Z(), 1e-7)
	test.That(t, qf.Usage(), test.ShouldEqual, PassiveUsage)

	back := CastQuaternion[float64](qf)
	test.That(t, back.AlmostEqual(q, 1e-7), test.ShouldBeTrue)

	// casting works between every representation and precision
	m := CastRotationMatrix[float32](q.RotationMatrix())
	test.That(t, m.Quaternion().Equivalent(qf, 1e-6), test.ShouldBeTrue)
	aa := CastAngleAxis[float32](q.AngleAxis())
	test.That(t, aa.Quaternion().Equivalent(qf, 1e-6), test.ShouldBeTrue)
	rv := CastRotationVector[float64](qf.RotationVector())
	test.That(t, rv.Quaternion().Equivalent(q, 1e-6), test.ShouldBeTrue)
}
