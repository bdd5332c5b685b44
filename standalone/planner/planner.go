// Package planner is the trajectory controller: it owns one solver and the
// flags threaded through it, and turns straight moves in pose space into
// joint positions.
package planner

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/kinematics"
)

// MaxSegments bounds the number of segments a single move may be split into
const MaxSegments = 1 << 16

// ErrTooManySegments is returned for moves that would exceed MaxSegments
var ErrTooManySegments = errors.New("planner: move needs too many segments")

// Planner splits moves into segments and solves each segment end
type Planner struct {
	solver kinematics.Solver
	maxSeg float64
	log    *zap.Logger

	// Current state
	pos     kinematics.Pose
	joints  kinematics.Joints
	flags   kinematics.Flags
	initial kinematics.Flags
	moves   int
}

// NewPlanner creates a planner. maxSegment is the longest segment, in pose
// units; a non-positive value disables splitting.
func NewPlanner(solver kinematics.Solver, maxSegment float64, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{
		solver: kinematics.Checked(solver),
		maxSeg: maxSegment,
		log:    log,
	}
}

// MoveTo moves in a straight line from the current pose to target and
// returns the joints for each segment end. If any segment fails the move
// is rejected whole: position and flags are left as they were.
func (p *Planner) MoveTo(target kinematics.Pose) ([]kinematics.Joints, error) {
	if !target.IsFinite() {
		return nil, kinematics.NewError("inverse", kinematics.KindInvalidPose, "%s", target)
	}

	dist := p.pos.Distance(target)
	if dist == 0 {
		return nil, nil
	}
	n := 1
	if p.maxSeg > 0 {
		segs := math.Ceil(dist / p.maxSeg)
		if segs > MaxSegments {
			return nil, fmt.Errorf("%w: %.3f long, %g per segment", ErrTooManySegments, dist, p.maxSeg)
		}
		n = max(int(segs), 1)
	}

	flags := p.flags
	out := make([]kinematics.Joints, 0, n)
	for i := 1; i <= n; i++ {
		pt := target
		if i < n {
			pt = p.pos.Lerp(target, float64(i)/float64(n))
		}
		joints, err := p.solver.Inverse(pt, &flags)
		if err != nil {
			p.log.Warn("move rejected",
				zap.Stringer("target", target),
				zap.Int("segment", i),
				zap.Int("segments", n),
				zap.Error(err))
			return nil, fmt.Errorf("segment %d/%d: %w", i, n, err)
		}
		out = append(out, joints)
	}

	p.pos = target
	p.joints = out[len(out)-1]
	p.flags = flags
	p.moves++
	p.log.Debug("move",
		zap.Stringer("target", target),
		zap.Int("segments", n),
		zap.Stringer("joints", p.joints))
	return out, nil
}

// Position returns the current pose
func (p *Planner) Position() kinematics.Pose {
	return p.pos
}

// SetPosition redefines the current pose without moving. The last joint
// positions are forgotten.
func (p *Planner) SetPosition(pos kinematics.Pose) {
	p.pos = pos
	p.joints = nil
}

// Joints returns the joints of the last completed move, or nil
func (p *Planner) Joints() kinematics.Joints {
	return p.joints.Clone()
}

// Flags returns the flags produced by the last successful call
func (p *Planner) Flags() kinematics.Flags {
	return p.flags
}

// SetFlags seeds the flags for the next move and for Reset
func (p *Planner) SetFlags(f kinematics.Flags) {
	p.flags = f
	p.initial = f
}

// Moves returns the number of completed moves
func (p *Planner) Moves() int {
	return p.moves
}

// Solver returns the solver the planner drives
func (p *Planner) Solver() kinematics.Solver {
	return p.solver
}

// Reset returns to the origin with the initial flags
func (p *Planner) Reset() {
	p.pos = kinematics.Pose{}
	p.joints = nil
	p.flags = p.initial
	p.moves = 0
}
