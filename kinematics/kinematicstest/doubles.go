package kinematicstest

import (
	"math"
	"sync"

	"github.com/billmania/foam-cutter/kinematics"
)

// Recorder wraps a solver and records every pose passed to Inverse and
// every joint vector passed to Forward.
type Recorder struct {
	kinematics.Solver

	mu       sync.Mutex
	Poses    []kinematics.Pose
	Joints   []kinematics.Joints
	InFlags  []kinematics.Flags
	Failures int
}

// NewRecorder wraps s
func NewRecorder(s kinematics.Solver) *Recorder {
	return &Recorder{Solver: s}
}

func (r *Recorder) Forward(joints kinematics.Joints, flags *kinematics.Flags) (kinematics.Pose, error) {
	r.mu.Lock()
	r.Joints = append(r.Joints, joints.Clone())
	r.mu.Unlock()

	pose, err := r.Solver.Forward(joints, flags)
	if err != nil {
		r.fail()
	}
	return pose, err
}

func (r *Recorder) Inverse(pose kinematics.Pose, flags *kinematics.Flags) (kinematics.Joints, error) {
	r.mu.Lock()
	r.Poses = append(r.Poses, pose)
	if flags != nil {
		r.InFlags = append(r.InFlags, *flags)
	}
	r.mu.Unlock()

	joints, err := r.Solver.Inverse(pose, flags)
	if err != nil {
		r.fail()
	}
	return joints, err
}

func (r *Recorder) fail() {
	r.mu.Lock()
	r.Failures++
	r.mu.Unlock()
}

// InverseCalls returns how many times Inverse was called
func (r *Recorder) InverseCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Poses)
}

// Stub is a solver whose behaviour is set per test
type Stub struct {
	Class     kinematics.Class
	Joints    int
	ForwardFn func(kinematics.Joints, *kinematics.Flags) (kinematics.Pose, error)
	InverseFn func(kinematics.Pose, *kinematics.Flags) (kinematics.Joints, error)
}

func (s *Stub) Classify() kinematics.Class { return s.Class }

func (s *Stub) NumJoints() int { return s.Joints }

func (s *Stub) Forward(joints kinematics.Joints, flags *kinematics.Flags) (kinematics.Pose, error) {
	if s.ForwardFn == nil {
		return kinematics.Pose{}, kinematics.NewError("forward", kinematics.KindNotSupported, "stub")
	}
	return s.ForwardFn(joints, flags)
}

func (s *Stub) Inverse(pose kinematics.Pose, flags *kinematics.Flags) (kinematics.Joints, error) {
	if s.InverseFn == nil {
		return nil, kinematics.NewError("inverse", kinematics.KindNotSupported, "stub")
	}
	return s.InverseFn(pose, flags)
}

// Branch bits used by Square
const (
	SquareNegative kinematics.InverseFlags = 1 << 0
	SquareSeen     kinematics.ForwardFlags = 1 << 0
)

// Square is a one-joint solver with two inverse solutions: X = j*j, so
// j = +sqrt(X) or -sqrt(X). Inverse picks the branch from SquareNegative;
// Forward records the branch the joint lies on so a following Inverse
// returns the same joint. Poses with X < 0 or any other axis set are
// unreachable.
type Square struct{}

func (Square) Classify() kinematics.Class { return kinematics.Both }

func (Square) NumJoints() int { return 1 }

func (Square) Forward(joints kinematics.Joints, flags *kinematics.Flags) (kinematics.Pose, error) {
	if len(joints) != 1 {
		return kinematics.Pose{}, kinematics.NewError("forward", kinematics.KindDimensionMismatch, "got %d joints, want 1", len(joints))
	}
	j := joints[0]
	if flags != nil {
		flags.Forward |= SquareSeen
		if j < 0 {
			flags.Inverse |= SquareNegative
		} else {
			flags.Inverse &^= SquareNegative
		}
	}
	return kinematics.Pose{Tran: kinematics.Cartesian{X: j * j}}, nil
}

func (Square) Inverse(pose kinematics.Pose, flags *kinematics.Flags) (kinematics.Joints, error) {
	if !pose.IsFinite() {
		return nil, kinematics.NewError("inverse", kinematics.KindInvalidPose, "%s", pose)
	}
	rest := pose
	rest.Tran.X = 0
	if pose.Tran.X < 0 || rest != (kinematics.Pose{}) {
		return nil, kinematics.NewError("inverse", kinematics.KindUnreachable, "%s", pose)
	}
	j := math.Sqrt(pose.Tran.X)
	if flags != nil && flags.Inverse&SquareNegative != 0 {
		j = -j
	}
	return kinematics.Joints{j}, nil
}
