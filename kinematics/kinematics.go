// Package kinematics defines the contract between a motion controller and a
// forward/inverse kinematics solver.
//
// A Solver maps joint positions to a machine Pose (Forward) and back
// (Inverse). Calls are synchronous and stateless except for the Flags value,
// which the caller owns and passes to every call. Solvers use the flags to
// record and select among multiple valid solutions, so feeding the previous
// call's flags into the next keeps a trajectory on one solution branch.
//
// Solvers are used by a single caller at a time and must not block.
package kinematics

import (
	"fmt"
	"strings"
)

// Class declares which directions a solver implements
type Class uint8

const (
	// Identity solvers implement both directions as exact mutual inverses
	Identity Class = iota + 1
	ForwardOnly
	InverseOnly
	// Both solvers implement both directions, but the mapping may be
	// one-to-many so a round trip holds only within tolerance
	Both
)

// String returns the class name
func (c Class) String() string {
	switch c {
	case Identity:
		return "identity"
	case ForwardOnly:
		return "forward_only"
	case InverseOnly:
		return "inverse_only"
	case Both:
		return "both"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// HasForward reports whether the class includes forward kinematics
func (c Class) HasForward() bool {
	return c == Identity || c == ForwardOnly || c == Both
}

// HasInverse reports whether the class includes inverse kinematics
func (c Class) HasInverse() bool {
	return c == Identity || c == InverseOnly || c == Both
}

// ParseClass parses a class name as returned by String
func ParseClass(s string) (Class, error) {
	for _, c := range []Class{Identity, ForwardOnly, InverseOnly, Both} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown kinematics class %q", s)
}

// ForwardFlags is solver-private state recorded by forward kinematics
type ForwardFlags uint64

// InverseFlags is solver-private state selecting an inverse solution branch
type InverseFlags uint64

// Flags carries both flag words between calls. Callers must not interpret
// the bits; they only pass back what the solver returned.
type Flags struct {
	Forward ForwardFlags
	Inverse InverseFlags
}

// Solver is the kinematics plugin contract.
//
// Forward reads flags.Forward and may rewrite it, and may set flags.Inverse
// so that a following Inverse reproduces the same configuration. Inverse
// reads flags.Inverse to choose a solution and may rewrite it, and may set
// flags.Forward. On error no result is returned and flags are unchanged.
type Solver interface {
	// Classify returns the solver's capability class. It never changes.
	Classify() Class

	// NumJoints returns the length of every joint vector the solver
	// accepts or produces
	NumJoints() int

	// Forward computes the pose reached by the given joints
	Forward(joints Joints, flags *Flags) (Pose, error)

	// Inverse computes joints reaching the given pose
	Inverse(pose Pose, flags *Flags) (Joints, error)
}

// JointLimits bounds a single joint position
type JointLimits struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies within the limits. A zero value is
// treated as unbounded.
func (l JointLimits) Contains(v float64) bool {
	if l.Min == 0 && l.Max == 0 {
		return true
	}
	return v >= l.Min && v <= l.Max
}

// MaxJoints is the largest joint count a machine may configure
const MaxJoints = 16

// Config is the machine description handed to solver constructors
type Config struct {
	// Coordinates maps each joint to a pose axis letter, e.g. "XYUV"
	Coordinates string
	// Limits holds optional per-joint limits, indexed like the joints
	Limits []JointLimits
}
