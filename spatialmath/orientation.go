// Package spatialmath defines the algebra of a single 3D rotation in several parameterizations.
//
// Every representation is generic over a usage convention U (Active or Passive) and a scalar
// precision T (float32 or float64). All conversions between representations are routed through
// the unit quaternion, so only quaternion<->X formulas exist.
package spatialmath

import (
	"github.com/golang/geo/r3"
)

// UsageKind identifies how a rotation acts on coordinates.
type UsageKind int

const (
	// ActiveUsage rotates a vector inside a fixed reference frame.
	ActiveUsage UsageKind = iota
	// PassiveUsage re-expresses a fixed vector in a rotated reference frame.
	PassiveUsage
)

func (k UsageKind) String() string {
	switch k {
	case ActiveUsage:
		return "active"
	case PassiveUsage:
		return "passive"
	default:
		return "unknown"
	}
}

// Active is the usage tag for rotations that move vectors.
type Active struct{}

// Kind returns ActiveUsage.
func (Active) Kind() UsageKind { return ActiveUsage }

// Passive is the usage tag for rotations that move the reference frame.
type Passive struct{}

// Kind returns PassiveUsage.
func (Passive) Kind() UsageKind { return PassiveUsage }

// Usage constrains the usage type parameter of every representation. Two rotations can only be
// composed or compared when their usage tags are the same type.
type Usage interface {
	Active | Passive
	Kind() UsageKind
}

// Scalar constrains the precision type parameter of every representation.
type Scalar interface {
	~float32 | ~float64
}

// Rotation is the set of conversions every representation supports. Composition, inversion and
// canonicalization return the concrete representation and so live on the types themselves.
//
// The composition rule is shared by all representations and both usages: a.Compose(b) is the
// rotation whose Rotate applies b first and then a, i.e.
//
//	a.Compose(b).Rotate(v) == a.Rotate(b.Rotate(v))
//
// For active quaternions that is the Hamilton product a⊗b. Passive rotations act on coordinates
// through the conjugate (q* v q), so the same physical chain is the reversed product b⊗a, and the
// passive matrix of a quaternion is the transpose of the active one.
type Rotation[U Usage, T Scalar] interface {
	Quaternion() Quaternion[U, T]
	RotationMatrix() RotationMatrix[U, T]
	AngleAxis() AngleAxis[U, T]
	RotationVector() RotationVector[U, T]

	// Rotate maps coordinates through the rotation according to its usage.
	Rotate(v r3.Vector) r3.Vector
	// InverseRotate maps coordinates through the inverse rotation.
	InverseRotate(v r3.Vector) r3.Vector

	Usage() UsageKind
}

func usageOf[U Usage]() UsageKind {
	var u U
	return u.Kind()
}

// isSinglePrecision reports whether T carries float32 resolution; 1e-10 is below the float32
// spacing at 1.
func isSinglePrecision[T Scalar]() bool {
	var one T = 1
	return one+T(1e-10) == one
}

var (
	_ Rotation[Active, float64]  = Quaternion[Active, float64]{}
	_ Rotation[Passive, float32] = RotationMatrix[Passive, float32]{}
	_ Rotation[Active, float32]  = AngleAxis[Active, float32]{}
	_ Rotation[Passive, float64] = RotationVector[Passive, float64]{}
)
