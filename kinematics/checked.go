package kinematics

import (
	"errors"
)

const (
	opForward = "forward"
	opInverse = "inverse"
)

// Checked wraps a solver so that every call honours the Solver contract:
// inputs are validated before the solver runs, unsupported directions fail
// with ErrNotSupported, flags are only updated on success, and malformed
// results are turned into SolverInternal errors.
func Checked(s Solver) Solver {
	if c, ok := s.(*checked); ok {
		return c
	}
	return &checked{inner: s, class: s.Classify(), n: s.NumJoints()}
}

type checked struct {
	inner Solver
	class Class
	n     int
}

// Internal codes reported by the checked wrapper
const (
	CodeBadJointCount = -1
	CodeNonFinitePose = -2
	CodeUntypedError  = -3
)

func (c *checked) Classify() Class { return c.class }

func (c *checked) NumJoints() int { return c.n }

// Unwrap returns the wrapped solver
func (c *checked) Unwrap() Solver { return c.inner }

func (c *checked) Forward(joints Joints, flags *Flags) (Pose, error) {
	if !c.class.HasForward() {
		return Pose{}, NewError(opForward, KindNotSupported, "%s solver has no forward kinematics", c.class)
	}
	if len(joints) != c.n {
		return Pose{}, NewError(opForward, KindDimensionMismatch, "got %d joints, want %d", len(joints), c.n)
	}

	var local Flags
	if flags != nil {
		local = *flags
	}
	pose, err := c.inner.Forward(joints, &local)
	if err != nil {
		return Pose{}, typed(opForward, err)
	}
	if !pose.IsFinite() {
		return Pose{}, &Error{Op: opForward, Kind: KindSolverInternal, Code: CodeNonFinitePose, Msg: "solver produced a non-finite pose"}
	}
	if flags != nil {
		*flags = local
	}
	return pose, nil
}

func (c *checked) Inverse(pose Pose, flags *Flags) (Joints, error) {
	if !c.class.HasInverse() {
		return nil, NewError(opInverse, KindNotSupported, "%s solver has no inverse kinematics", c.class)
	}
	if !pose.IsFinite() {
		return nil, NewError(opInverse, KindInvalidPose, "%s", pose)
	}

	var local Flags
	if flags != nil {
		local = *flags
	}
	joints, err := c.inner.Inverse(pose, &local)
	if err != nil {
		return nil, typed(opInverse, err)
	}
	if len(joints) != c.n {
		return nil, &Error{Op: opInverse, Kind: KindSolverInternal, Code: CodeBadJointCount, Msg: "solver returned wrong joint count"}
	}
	if flags != nil {
		*flags = local
	}
	return joints, nil
}

// typed makes sure every error leaving the wrapper is an *Error
func typed(op string, err error) error {
	var kerr *Error
	if errors.As(err, &kerr) {
		return err
	}
	if k := KindOf(err); k != KindUnknown {
		return &Error{Op: op, Kind: k, Err: err}
	}
	return &Error{Op: op, Kind: KindSolverInternal, Code: CodeUntypedError, Err: err}
}
