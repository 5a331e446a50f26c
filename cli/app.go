// Package cli contains the rotconv command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/rotations/spatialmath"
)

const (
	// Global flags.
	flagUsage  = "usage"
	flagSingle = "single"
	flagDebug  = "debug"

	// Command flags.
	flagTo      = "to"
	flagUnique  = "unique"
	flagDegrees = "degrees"
	flagVector  = "vector"
	flagInverse = "inverse"
	flagCount   = "count"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagTo,
			Usage: "representation to print: quaternion, rotation_matrix, angle_axis or rotation_vector",
		},
		&cli.BoolFlag{
			Name:  flagUnique,
			Usage: "print the canonical form of the result",
		},
		&cli.BoolFlag{
			Name:  flagDegrees,
			Usage: "read and print angle_axis angles in degrees",
		},
	}
}

// NewApp returns a new app with the rotconv commands, reading rotations from in when no
// arguments are given, Writer set to out, and ErrWriter set to errOut.
func NewApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "rotconv",
		Usage:           "convert, compose and apply 3D rotations",
		HideHelpCommand: true,
		Reader:          in,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagUsage,
				Value: spatialmath.ActiveUsage.String(),
				Usage: "usage convention of the rotations: active or passive",
			},
			&cli.BoolFlag{
				Name:  flagSingle,
				Usage: "compute in single (float32) precision",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "convert rotations to another representation",
				ArgsUsage: "[rotation json...]",
				Flags:     outputFlags(),
				Action:    ConvertAction,
			},
			{
				Name:      "compose",
				Usage:     "compose rotations, the last one is applied first",
				ArgsUsage: "[rotation json...]",
				Flags:     outputFlags(),
				Action:    ComposeAction,
			},
			{
				Name:      "invert",
				Usage:     "invert rotations",
				ArgsUsage: "[rotation json...]",
				Flags:     outputFlags(),
				Action:    InvertAction,
			},
			{
				Name:      "rotate",
				Usage:     "map a vector through a rotation",
				ArgsUsage: "[rotation json]",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{
						Name:     flagVector,
						Usage:    "vector to rotate, given as three --vector values",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  flagInverse,
						Usage: "apply the inverse rotation",
					},
					&cli.BoolFlag{
						Name:  flagDegrees,
						Usage: "read angle_axis angles in degrees",
					},
				},
				Action: RotateAction,
			},
			{
				Name:  "random",
				Usage: "print uniformly distributed random rotations",
				Flags: append(outputFlags(), &cli.IntFlag{
					Name:  flagCount,
					Value: 1,
					Usage: "number of rotations",
				}),
				Action: RandomAction,
			},
		},
	}
}
