package spatialmath

import (
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// RotationType defines what representation a RotationConfig holds.
type RotationType string

// The set of allowed representations for rotations in json.
const (
	QuaternionType     RotationType = "quaternion"
	RotationMatrixType RotationType = "rotation_matrix"
	AngleAxisType      RotationType = "angle_axis"
	RotationVectorType RotationType = "rotation_vector"
)

// RotationConfig holds the underlying type of rotation, its usage, and the value.
type RotationConfig struct {
	Type  RotationType    `json:"type"`
	Usage string          `json:"usage,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

type quaternionJSON struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type rotationMatrixJSON struct {
	Rows [3][3]float64 `json:"rows"`
}

type angleAxisJSON struct {
	Angle float64 `json:"angle"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

type rotationVectorJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ParseUsage converts "active" or "passive" to a UsageKind.
func ParseUsage(name string) (UsageKind, error) {
	switch name {
	case ActiveUsage.String():
		return ActiveUsage, nil
	case PassiveUsage.String():
		return PassiveUsage, nil
	default:
		return ActiveUsage, errors.Errorf("usage %q not recognized, expected %q or %q", name, ActiveUsage, PassiveUsage)
	}
}

// Validate checks the type and usage names of the config. All problems are reported together.
func (cfg *RotationConfig) Validate(path string) error {
	var errs error
	switch cfg.Type {
	case QuaternionType, RotationMatrixType, AngleAxisType, RotationVectorType:
	case "":
		if len(cfg.Value) != 0 {
			errs = multierr.Append(errs, errors.New("rotation value given without a type"))
		}
	default:
		errs = multierr.Append(errs, NewUnknownRotationTypeError(cfg.Type))
	}
	if cfg.Usage != "" {
		if _, err := ParseUsage(cfg.Usage); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return errors.Wrapf(errs, "error validating rotation config %q", path)
	}
	return nil
}

// ParseRotationConfig converts a RotationConfig into a Rotation with usage U and precision T.
// An empty config is the identity. A config whose usage names the other convention is rejected.
func ParseRotationConfig[U Usage, T Scalar](cfg RotationConfig) (Rotation[U, T], error) {
	if err := cfg.Validate("rotation"); err != nil {
		return nil, err
	}
	if cfg.Usage != "" {
		// already validated
		usage, _ := ParseUsage(cfg.Usage)
		if usage != usageOf[U]() {
			return nil, NewUsageMismatchError(usageOf[U](), usage)
		}
	}
	if len(cfg.Value) == 0 {
		return identityOfType[U, T](cfg.Type), nil
	}

	var (
		r   Rotation[U, T]
		err error
	)
	switch cfg.Type {
	case QuaternionType:
		var v quaternionJSON
		if err := json.Unmarshal(cfg.Value, &v); err != nil {
			return nil, err
		}
		r, err = NewQuaternion[U](T(v.W), T(v.X), T(v.Y), T(v.Z))
	case RotationMatrixType:
		var v rotationMatrixJSON
		if err := json.Unmarshal(cfg.Value, &v); err != nil {
			return nil, err
		}
		rows := v.Rows
		r, err = NewRotationMatrix[U](
			T(rows[0][0]), T(rows[0][1]), T(rows[0][2]),
			T(rows[1][0]), T(rows[1][1]), T(rows[1][2]),
			T(rows[2][0]), T(rows[2][1]), T(rows[2][2]),
		)
	case AngleAxisType:
		var v angleAxisJSON
		if err := json.Unmarshal(cfg.Value, &v); err != nil {
			return nil, err
		}
		r, err = NewAngleAxis[U](T(v.Angle), T(v.X), T(v.Y), T(v.Z))
	case RotationVectorType:
		var v rotationVectorJSON
		if err := json.Unmarshal(cfg.Value, &v); err != nil {
			return nil, err
		}
		r, err = NewRotationVector[U](T(v.X), T(v.Y), T(v.Z))
	default:
		return nil, NewUnknownRotationTypeError(cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func identityOfType[U Usage, T Scalar](t RotationType) Rotation[U, T] {
	switch t {
	case RotationMatrixType:
		return IdentityRotationMatrix[U, T]()
	case AngleAxisType:
		return IdentityAngleAxis[U, T]()
	case RotationVectorType:
		return IdentityRotationVector[U, T]()
	default:
		return IdentityQuaternion[U, T]()
	}
}

// NewRotationConfig builds the json config of a rotation, keeping its representation.
func NewRotationConfig[U Usage, T Scalar](r Rotation[U, T]) (*RotationConfig, error) {
	var (
		rType RotationType
		value interface{}
	)
	switch rot := r.(type) {
	case Quaternion[U, T]:
		q := rot.Number()
		rType, value = QuaternionType, quaternionJSON{W: q.Real, X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	case RotationMatrix[U, T]:
		m := rot.Mat3()
		var v rotationMatrixJSON
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				v.Rows[row][col] = m.At(row, col)
			}
		}
		rType, value = RotationMatrixType, v
	case AngleAxis[U, T]:
		axis := rot.Axis()
		rType, value = AngleAxisType, angleAxisJSON{Angle: float64(rot.Angle()), X: axis.X, Y: axis.Y, Z: axis.Z}
	case RotationVector[U, T]:
		v := rot.Vector()
		rType, value = RotationVectorType, rotationVectorJSON{X: v.X, Y: v.Y, Z: v.Z}
	default:
		return nil, errors.Errorf("do not know how to map rotation type %T to json fields", r)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return &RotationConfig{Type: rType, Usage: usageOf[U]().String(), Value: data}, nil
}

func marshalRotation[U Usage, T Scalar](r Rotation[U, T]) ([]byte, error) {
	cfg, err := NewRotationConfig(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cfg)
}

func unmarshalRotation[U Usage, T Scalar](data []byte) (Rotation[U, T], error) {
	var cfg RotationConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return ParseRotationConfig[U, T](cfg)
}

// MarshalJSON encodes q as a RotationConfig.
func (q Quaternion[U, T]) MarshalJSON() ([]byte, error) {
	return marshalRotation[U, T](q)
}

// UnmarshalJSON decodes any RotationConfig of matching usage into a quaternion.
func (q *Quaternion[U, T]) UnmarshalJSON(data []byte) error {
	r, err := unmarshalRotation[U, T](data)
	if err != nil {
		return err
	}
	*q = r.Quaternion()
	return nil
}

// MarshalJSON encodes m as a RotationConfig.
func (m RotationMatrix[U, T]) MarshalJSON() ([]byte, error) {
	return marshalRotation[U, T](m)
}

// UnmarshalJSON decodes any RotationConfig of matching usage into a rotation matrix.
func (m *RotationMatrix[U, T]) UnmarshalJSON(data []byte) error {
	r, err := unmarshalRotation[U, T](data)
	if err != nil {
		return err
	}
	*m = r.RotationMatrix()
	return nil
}

// MarshalJSON encodes aa as a RotationConfig.
func (aa AngleAxis[U, T]) MarshalJSON() ([]byte, error) {
	return marshalRotation[U, T](aa)
}

// UnmarshalJSON decodes any RotationConfig of matching usage into an angle-axis pair.
func (aa *AngleAxis[U, T]) UnmarshalJSON(data []byte) error {
	r, err := unmarshalRotation[U, T](data)
	if err != nil {
		return err
	}
	*aa = r.AngleAxis()
	return nil
}

// MarshalJSON encodes rv as a RotationConfig.
func (rv RotationVector[U, T]) MarshalJSON() ([]byte, error) {
	return marshalRotation[U, T](rv)
}

// UnmarshalJSON decodes any RotationConfig of matching usage into a rotation vector.
func (rv *RotationVector[U, T]) UnmarshalJSON(data []byte) error {
	r, err := unmarshalRotation[U, T](data)
	if err != nil {
		return err
	}
	*rv = r.RotationVector()
	return nil
}
