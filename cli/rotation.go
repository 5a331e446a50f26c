package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go.viam.com/rotations/spatialmath"
	"go.viam.com/rotations/utils"
	"go.viam.com/rotations/utils/matrix"
)

// rotationRunner executes the rotation commands for one usage and precision.
type rotationRunner interface {
	convert(cfgs []spatialmath.RotationConfig) ([]*spatialmath.RotationConfig, error)
	compose(cfgs []spatialmath.RotationConfig) (*spatialmath.RotationConfig, error)
	invert(cfgs []spatialmath.RotationConfig) ([]*spatialmath.RotationConfig, error)
	rotate(cfg spatialmath.RotationConfig, v r3.Vector, inverse bool) (r3.Vector, error)
	random(count int) ([]*spatialmath.RotationConfig, error)
}

type runnerOptions struct {
	to      spatialmath.RotationType
	unique  bool
	degrees bool
	logger  golog.Logger
}

type runner[U spatialmath.Usage, T spatialmath.Scalar] struct {
	runnerOptions
}

func newLogger(c *cli.Context) golog.Logger {
	if c.Bool(flagDebug) {
		return golog.NewDebugLogger("rotconv")
	}
	return zap.NewNop().Sugar()
}

// newRunner picks the runner instantiation matching the usage and precision flags.
func newRunner(c *cli.Context) (rotationRunner, error) {
	usage, err := spatialmath.ParseUsage(c.String(flagUsage))
	if err != nil {
		return nil, err
	}
	to := spatialmath.RotationType(c.String(flagTo))
	switch to {
	case "", spatialmath.QuaternionType, spatialmath.RotationMatrixType, spatialmath.AngleAxisType, spatialmath.RotationVectorType:
	default:
		return nil, spatialmath.NewUnknownRotationTypeError(to)
	}
	opts := runnerOptions{
		to:      to,
		unique:  c.Bool(flagUnique),
		degrees: c.Bool(flagDegrees),
		logger:  newLogger(c),
	}
	single := c.Bool(flagSingle)
	opts.logger.Debugw("rotation settings", "usage", usage, "single", single, "to", to, "unique", opts.unique)

	switch {
	case usage == spatialmath.PassiveUsage && single:
		return &runner[spatialmath.Passive, float32]{opts}, nil
	case usage == spatialmath.PassiveUsage:
		return &runner[spatialmath.Passive, float64]{opts}, nil
	case single:
		return &runner[spatialmath.Active, float32]{opts}, nil
	default:
		return &runner[spatialmath.Active, float64]{opts}, nil
	}
}

func (r *runner[U, T]) parse(cfg spatialmath.RotationConfig) (spatialmath.Rotation[U, T], error) {
	if r.degrees {
		if err := scaleAngle(&cfg, utils.DegToRad); err != nil {
			return nil, err
		}
	}
	rot, err := spatialmath.ParseRotationConfig[U, T](cfg)
	if err != nil {
		return nil, err
	}
	r.logger.Debugw("parsed rotation", "type", cfg.Type, "value", string(cfg.Value))
	return rot, nil
}

// output renders rot in the requested representation, or in fallback when none was requested.
func (r *runner[U, T]) output(rot spatialmath.Rotation[U, T], fallback spatialmath.RotationType) (*spatialmath.RotationConfig, error) {
	to := r.to
	if to == "" {
		to = fallback
	}
	var out spatialmath.Rotation[U, T]
	switch to {
	case spatialmath.RotationMatrixType:
		m := rot.RotationMatrix()
		if r.unique {
			m = m.Unique()
		}
		out = m
	case spatialmath.AngleAxisType:
		aa := rot.AngleAxis()
		if r.unique {
			aa = aa.Unique()
		}
		out = aa
	case spatialmath.RotationVectorType:
		rv := rot.RotationVector()
		if r.unique {
			rv = rv.Unique()
		}
		out = rv
	default:
		q := rot.Quaternion()
		if r.unique {
			q = q.Unique()
		}
		out = q
	}
	cfg, err := spatialmath.NewRotationConfig[U, T](out)
	if err != nil {
		return nil, err
	}
	if r.degrees {
		if err := scaleAngle(cfg, utils.RadToDeg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func inputType(cfg spatialmath.RotationConfig) spatialmath.RotationType {
	if cfg.Type == "" {
		return spatialmath.QuaternionType
	}
	return cfg.Type
}

func (r *runner[U, T]) convert(cfgs []spatialmath.RotationConfig) ([]*spatialmath.RotationConfig, error) {
	out := make([]*spatialmath.RotationConfig, 0, len(cfgs))
	for _, cfg := range cfgs {
		rot, err := r.parse(cfg)
		if err != nil {
			return nil, err
		}
		converted, err := r.output(rot, inputType(cfg))
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// compose chains the rotations so that the last one is applied first.
func (r *runner[U, T]) compose(cfgs []spatialmath.RotationConfig) (*spatialmath.RotationConfig, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("compose needs at least one rotation")
	}
	acc := spatialmath.IdentityQuaternion[U, T]()
	for _, cfg := range cfgs {
		rot, err := r.parse(cfg)
		if err != nil {
			return nil, err
		}
		acc = acc.Compose(rot)
	}
	return r.output(acc, inputType(cfgs[0]))
}

func (r *runner[U, T]) invert(cfgs []spatialmath.RotationConfig) ([]*spatialmath.RotationConfig, error) {
	out := make([]*spatialmath.RotationConfig, 0, len(cfgs))
	for _, cfg := range cfgs {
		rot, err := r.parse(cfg)
		if err != nil {
			return nil, err
		}
		inverted, err := r.output(rot.Quaternion().Inverse(), inputType(cfg))
		if err != nil {
			return nil, err
		}
		out = append(out, inverted)
	}
	return out, nil
}

func (r *runner[U, T]) rotate(cfg spatialmath.RotationConfig, v r3.Vector, inverse bool) (r3.Vector, error) {
	rot, err := r.parse(cfg)
	if err != nil {
		return r3.Vector{}, err
	}
	if inverse {
		return rot.InverseRotate(v), nil
	}
	return rot.Rotate(v), nil
}

func (r *runner[U, T]) random(count int) ([]*spatialmath.RotationConfig, error) {
	out := make([]*spatialmath.RotationConfig, 0, count)
	for _, sample := range matrix.SampleUnitQuaternions(count) {
		q, err := spatialmath.NewQuaternion[U](T(sample[0]), T(sample[1]), T(sample[2]), T(sample[3]))
		if err != nil {
			return nil, err
		}
		cfg, err := r.output(q, spatialmath.QuaternionType)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

// scaleAngle rewrites the angle of an angle_axis config. Other types are left untouched.
func scaleAngle(cfg *spatialmath.RotationConfig, scale func(float64) float64) error {
	if cfg.Type != spatialmath.AngleAxisType || len(cfg.Value) == 0 {
		return nil
	}
	var value map[string]float64
	if err := json.Unmarshal(cfg.Value, &value); err != nil {
		return errors.Wrap(err, "error parsing angle_axis value")
	}
	if angle, ok := value["angle"]; ok {
		value["angle"] = scale(angle)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	cfg.Value = data
	return nil
}

// readRotationConfigs reads one config per argument, or a stream of configs from the app's
// reader when there are no arguments.
func readRotationConfigs(c *cli.Context) ([]spatialmath.RotationConfig, error) {
	var raw []json.RawMessage
	if c.NArg() > 0 {
		for _, arg := range c.Args().Slice() {
			raw = append(raw, json.RawMessage(arg))
		}
	} else {
		dec := json.NewDecoder(c.App.Reader)
		for {
			var msg json.RawMessage
			err := dec.Decode(&msg)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, errors.Wrap(err, "error reading rotations from input")
			}
			raw = append(raw, msg)
		}
	}
	if len(raw) == 0 {
		return nil, errors.New("no rotation given")
	}

	cfgs := make([]spatialmath.RotationConfig, 0, len(raw))
	for i, msg := range raw {
		var cfg spatialmath.RotationConfig
		if err := json.Unmarshal(msg, &cfg); err != nil {
			return nil, errors.Wrapf(err, "error parsing rotation %d", i)
		}
		if err := cfg.Validate(fmt.Sprintf("rotations.%d", i)); err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func printConfigs(c *cli.Context, cfgs ...*spatialmath.RotationConfig) error {
	enc := json.NewEncoder(c.App.Writer)
	for _, cfg := range cfgs {
		if err := enc.Encode(cfg); err != nil {
			return err
		}
	}
	return nil
}

// ConvertAction converts each given rotation to the representation named by --to.
func ConvertAction(c *cli.Context) error {
	r, err := newRunner(c)
	if err != nil {
		return err
	}
	cfgs, err := readRotationConfigs(c)
	if err != nil {
		return err
	}
	out, err := r.convert(cfgs)
	if err != nil {
		return err
	}
	return printConfigs(c, out...)
}

// ComposeAction composes the given rotations, the last one being applied first.
func ComposeAction(c *cli.Context) error {
	r, err := newRunner(c)
	if err != nil {
		return err
	}
	cfgs, err := readRotationConfigs(c)
	if err != nil {
		return err
	}
	out, err := r.compose(cfgs)
	if err != nil {
		return err
	}
	return printConfigs(c, out)
}

// InvertAction prints the inverse of each given rotation.
func InvertAction(c *cli.Context) error {
	r, err := newRunner(c)
	if err != nil {
		return err
	}
	cfgs, err := readRotationConfigs(c)
	if err != nil {
		return err
	}
	out, err := r.invert(cfgs)
	if err != nil {
		return err
	}
	return printConfigs(c, out...)
}

// RotateAction maps the --vector coordinates through the given rotation.
func RotateAction(c *cli.Context) error {
	components := c.Float64Slice(flagVector)
	if len(components) != 3 {
		return errors.Errorf("--%s needs exactly 3 components, got %d", flagVector, len(components))
	}
	r, err := newRunner(c)
	if err != nil {
		return err
	}
	cfgs, err := readRotationConfigs(c)
	if err != nil {
		return err
	}
	if len(cfgs) != 1 {
		return errors.Errorf("rotate takes one rotation, got %d", len(cfgs))
	}
	v, err := r.rotate(cfgs[0], r3.Vector{X: components[0], Y: components[1], Z: components[2]}, c.Bool(flagInverse))
	if err != nil {
		return err
	}
	return json.NewEncoder(c.App.Writer).Encode(map[string]float64{"x": v.X, "y": v.Y, "z": v.Z})
}

// RandomAction prints uniformly distributed random rotations.
func RandomAction(c *cli.Context) error {
	count := c.Int(flagCount)
	if count < 0 {
		return errors.Errorf("--%s must not be negative", flagCount)
	}
	r, err := newRunner(c)
	if err != nil {
		return err
	}
	out, err := r.random(count)
	if err != nil {
		return err
	}
	return printConfigs(c, out...)
}
