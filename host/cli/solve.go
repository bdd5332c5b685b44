package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmania/foam-cutter/kinematics"
)

// ClassifyResult describes the loaded solver.
type ClassifyResult struct {
	Kinematics  string `json:"kinematics"`
	Class       string `json:"class"`
	Joints      int    `json:"joints"`
	Coordinates string `json:"coordinates"`
}

func (r ClassifyResult) String() string {
	return fmt.Sprintf("kinematics %s class %s joints %d coordinates %s", r.Kinematics, r.Class, r.Joints, r.Coordinates)
}

// SolveResult is the outcome of a single forward or inverse call.
type SolveResult struct {
	Pose    [kinematics.NumPoseAxes]float64 `json:"pose"`
	Joints  kinematics.Joints               `json:"joints"`
	Forward uint64                          `json:"forward_flags"`
	Inverse uint64                          `json:"inverse_flags"`

	dir string
}

func (r SolveResult) String() string {
	var s string
	if r.dir == "forward" {
		s = kinematics.PoseFromValues(r.Pose).String()
	} else {
		s = r.Joints.String()
	}
	if r.Forward != 0 || r.Inverse != 0 {
		s += fmt.Sprintf(" flags %#x/%#x", r.Forward, r.Inverse)
	}
	return s
}

type flagOptions struct {
	forward uint64
	inverse uint64
}

func (f *flagOptions) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.forward, "forward-flags", 0, "forward flags passed to the solver")
	cmd.Flags().Uint64Var(&f.inverse, "inverse-flags", 0, "inverse flags passed to the solver")
}

func (f *flagOptions) flags() kinematics.Flags {
	return kinematics.Flags{Forward: kinematics.ForwardFlags(f.forward), Inverse: kinematics.InverseFlags(f.inverse)}
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Show the class and joint count of the configured kinematics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.solver("")
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(ClassifyResult{
				Kinematics:  rootOpts.Config.Kinematics,
				Class:       s.Classify().String(),
				Joints:      s.NumJoints(),
				Coordinates: rootOpts.Config.Coordinates,
			})
		},
	}
}

// NewInverseCommand creates the inverse command.
func NewInverseCommand(rootOpts *RootOptions) *cobra.Command {
	var fo flagOptions
	cmd := &cobra.Command{
		Use:   "inverse AXIS=VALUE...",
		Short: "Compute joints for a pose",
		Long: `Compute joints for a pose. Axes not given are zero.

  foamkins inverse X=10 Y=20 U=10 V=20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pose, err := ParsePose(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse pose", err)
			}
			s, err := rootOpts.solver("")
			if err != nil {
				return err
			}

			flags := fo.flags()
			joints, err := s.Inverse(pose, &flags)
			res := SolveResult{Pose: pose.Values(), Joints: joints, Forward: uint64(flags.Forward), Inverse: uint64(flags.Inverse), dir: "inverse"}
			out := rootOpts.formatter(cmd)
			if err != nil {
				_ = out.Error(err, res)
				return solverExit("inverse", err)
			}
			return out.Success(res)
		},
	}
	fo.register(cmd)
	return cmd
}

// NewForwardCommand creates the forward command.
func NewForwardCommand(rootOpts *RootOptions) *cobra.Command {
	var fo flagOptions
	cmd := &cobra.Command{
		Use:   "forward J0 J1...",
		Short: "Compute the pose for joint positions",
		Long: `Compute the pose for joint positions, one argument per joint.
Put -- before the first negative value.

  foamkins forward -- 10 -2.5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			joints, err := ParseJoints(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse joints", err)
			}
			s, err := rootOpts.solver("")
			if err != nil {
				return err
			}

			flags := fo.flags()
			pose, err := s.Forward(joints, &flags)
			res := SolveResult{Pose: pose.Values(), Joints: joints, Forward: uint64(flags.Forward), Inverse: uint64(flags.Inverse), dir: "forward"}
			out := rootOpts.formatter(cmd)
			if err != nil {
				_ = out.Error(err, res)
				return solverExit("forward", err)
			}
			return out.Success(res)
		},
	}
	fo.register(cmd)
	return cmd
}

// ParsePose reads "X=10" or "X10" words into a pose
func ParsePose(words []string) (kinematics.Pose, error) {
	var pose kinematics.Pose
	seen := map[byte]bool{}
	for _, w := range words {
		if len(w) < 2 {
			return pose, fmt.Errorf("bad axis word %q", w)
		}
		letter := w[0]
		if _, ok := kinematics.AxisIndex(letter); !ok {
			return pose, fmt.Errorf("bad axis word %q: axis must be one of %s", w, kinematics.AxisLetters)
		}
		v, err := strconv.ParseFloat(strings.TrimPrefix(w[1:], "="), 64)
		if err != nil {
			return pose, fmt.Errorf("bad axis word %q: %w", w, err)
		}
		key := letter &^ 0x20 // upper case
		if seen[key] {
			return pose, fmt.Errorf("axis %c given twice", key)
		}
		seen[key] = true
		if pose, err = pose.WithAxis(letter, v); err != nil {
			return pose, err
		}
	}
	return pose, nil
}

// ParseJoints reads one float per argument
func ParseJoints(args []string) (kinematics.Joints, error) {
	joints := make(kinematics.Joints, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
		joints[i] = v
	}
	return joints, nil
}
