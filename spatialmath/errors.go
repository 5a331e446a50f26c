package spatialmath

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidQuaternion is returned for quaternion components that cannot be normalized.
	ErrInvalidQuaternion = errors.New("invalid quaternion")
	// ErrInvalidRotationMatrix is returned for matrices that are not proper rotations.
	ErrInvalidRotationMatrix = errors.New("invalid rotation matrix")
	// ErrInvalidAngleAxis is returned for an angle-axis pair without a usable axis.
	ErrInvalidAngleAxis = errors.New("invalid angle axis")
	// ErrInvalidRotationVector is returned for rotation vectors with non-finite components.
	ErrInvalidRotationVector = errors.New("invalid rotation vector")
	// ErrUsageMismatch is returned when a rotation tagged with one usage is read as the other.
	ErrUsageMismatch = errors.New("rotation usage mismatch")
	// ErrUnknownRotationType is returned for an unrecognized rotation type name.
	ErrUnknownRotationType = errors.New("unknown rotation type")
)

func newZeroQuaternionError() error {
	return errors.Wrap(ErrInvalidQuaternion, "cannot normalize a zero quaternion")
}

func newNonFiniteError(kind error, values ...float64) error {
	return errors.Wrapf(kind, "components must be finite, got %v", values)
}

func newNormOverflowError(kind error, values ...float64) error {
	return errors.Wrapf(kind, "norm of %v overflows", values)
}

func newZeroAxisError(angle float64) error {
	return errors.Wrapf(ErrInvalidAngleAxis, "zero axis for nonzero angle %v", angle)
}

func newNotOrthonormalError(deviation float64) error {
	return errors.Wrapf(ErrInvalidRotationMatrix, "matrix is not orthonormal (max deviation %.3g)", deviation)
}

func newImproperRotationError(det float64) error {
	return errors.Wrapf(ErrInvalidRotationMatrix, "determinant must be positive, got %v", det)
}

// NewUsageMismatchError is used when a serialized rotation carries a different usage than requested.
func NewUsageMismatchError(expected, actual UsageKind) error {
	return errors.Wrapf(ErrUsageMismatch, "expected %s rotation but got %s", expected, actual)
}

// NewUnknownRotationTypeError is used when a rotation type name is not recognized.
func NewUnknownRotationTypeError(name RotationType) error {
	return errors.Wrapf(ErrUnknownRotationType, "rotation type %q not recognized", name)
}
