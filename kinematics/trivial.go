package kinematics

import (
	"errors"
	"fmt"
)

// Trivial implements trivial kinematics: every joint follows one pose axis
// 1:1. Several joints may follow the same axis (e.g. a gantry driven from
// both sides); forward kinematics then reads the first of them.
type Trivial struct {
	coords string
	axis   []int // pose index for each joint
	first  [NumPoseAxes]int
	limits []JointLimits
}

// NewTrivial creates trivial kinematics for the given coordinates string
func NewTrivial(cfg Config) (*Trivial, error) {
	if len(cfg.Coordinates) == 0 {
		return nil, errors.New("trivial kinematics needs at least one coordinate")
	}
	if len(cfg.Coordinates) > MaxJoints {
		return nil, fmt.Errorf("got %d coordinates, at most %d joints are supported", len(cfg.Coordinates), MaxJoints)
	}
	if len(cfg.Limits) != 0 && len(cfg.Limits) != len(cfg.Coordinates) {
		return nil, fmt.Errorf("got limits for %d joints, coordinates name %d", len(cfg.Limits), len(cfg.Coordinates))
	}

	k := &Trivial{
		coords: cfg.Coordinates,
		axis:   make([]int, len(cfg.Coordinates)),
		limits: cfg.Limits,
	}
	for i := range k.first {
		k.first[i] = -1
	}
	for j := 0; j < len(cfg.Coordinates); j++ {
		idx, ok := AxisIndex(cfg.Coordinates[j])
		if !ok {
			return nil, fmt.Errorf("coordinate %q is not one of %s", cfg.Coordinates[j], AxisLetters)
		}
		k.axis[j] = idx
		if k.first[idx] < 0 {
			k.first[idx] = j
		}
	}
	for j, l := range cfg.Limits {
		if l.Min > l.Max {
			return nil, fmt.Errorf("joint %d: min %g above max %g", j, l.Min, l.Max)
		}
	}

	return k, nil
}

// Classify returns the Identity class
func (k *Trivial) Classify() Class {
	return Identity
}

// NumJoints returns the number of configured coordinates
func (k *Trivial) NumJoints() int {
	return len(k.axis)
}

// Coordinates returns the joint-to-axis mapping
func (k *Trivial) Coordinates() string {
	return k.coords
}

// Forward copies each joint into its pose axis. Flags are left untouched.
func (k *Trivial) Forward(joints Joints, flags *Flags) (Pose, error) {
	if len(joints) != len(k.axis) {
		return Pose{}, NewError(opForward, KindDimensionMismatch, "got %d joints, want %d", len(joints), len(k.axis))
	}
	if err := k.checkLimits(opForward, joints); err != nil {
		return Pose{}, err
	}

	var vals [NumPoseAxes]float64
	for idx, j := range k.first {
		if j >= 0 {
			vals[idx] = joints[j]
		}
	}
	return PoseFromValues(vals), nil
}

// Inverse reads each joint from its pose axis. Flags are left untouched.
func (k *Trivial) Inverse(pose Pose, flags *Flags) (Joints, error) {
	if !pose.IsFinite() {
		return nil, NewError(opInverse, KindInvalidPose, "%s", pose)
	}

	vals := pose.Values()
	joints := make(Joints, len(k.axis))
	for j, idx := range k.axis {
		joints[j] = vals[idx]
	}
	if err := k.checkLimits(opInverse, joints); err != nil {
		return nil, err
	}
	return joints, nil
}

// checkLimits validates that every joint is within its configured limits
func (k *Trivial) checkLimits(op string, joints Joints) error {
	for j, l := range k.limits {
		if !l.Contains(joints[j]) {
			return NewError(op, KindUnreachable, "joint %d (%c) at %.3f outside [%.3f, %.3f]",
				j, AxisLetters[k.axis[j]], joints[j], l.Min, l.Max)
		}
	}
	return nil
}
