package gcode

import (
	"errors"

	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/kinematics"
)

// ErrProgramEnded is returned for commands after M2 or M30
var ErrProgramEnded = errors.New("gcode: program ended")

// Planner turns pose targets into joint positions
type Planner interface {
	MoveTo(target kinematics.Pose) ([]kinematics.Joints, error)
	Position() kinematics.Pose
	SetPosition(pos kinematics.Pose)
}

// State is the modal state of the interpreter
type State struct {
	AbsoluteMode bool    // G90 vs G91
	FeedRate     float64 // last F word, units per minute
	Ended        bool    // M2/M30 seen
}

// Interpreter executes G-code commands
type Interpreter struct {
	state   State
	planner Planner
	log     *zap.Logger
}

// NewInterpreter creates a new G-code interpreter
func NewInterpreter(planner Planner, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{
		state:   State{AbsoluteMode: true},
		planner: planner,
		log:     log,
	}
}

// Execute runs a parsed command and returns the joint positions it
// produced, if any
func (interp *Interpreter) Execute(cmd *Command) ([]kinematics.Joints, error) {
	if cmd == nil || cmd.Type == 0 {
		return nil, nil
	}
	if interp.state.Ended {
		return nil, ErrProgramEnded
	}

	switch cmd.Type {
	case 'G':
		return interp.executeG(cmd)
	case 'M':
		interp.executeM(cmd)
	default:
		interp.log.Debug("ignored command", zap.Stringer("cmd", cmd))
	}
	return nil, nil
}

// executeG handles G-codes
func (interp *Interpreter) executeG(cmd *Command) ([]kinematics.Joints, error) {
	switch cmd.Number {
	case 0, 1: // linear move
		return interp.doMove(cmd)
	case 90:
		interp.state.AbsoluteMode = true
	case 91:
		interp.state.AbsoluteMode = false
	case 92:
		interp.doSetPosition(cmd)
	default:
		interp.log.Debug("ignored command", zap.Stringer("cmd", cmd))
	}
	return nil, nil
}

// executeM handles M-codes
func (interp *Interpreter) executeM(cmd *Command) {
	switch cmd.Number {
	case 2, 30: // program end
		interp.state.Ended = true
		interp.log.Info("program end", zap.Stringer("cmd", cmd))
	default:
		interp.log.Debug("ignored command", zap.Stringer("cmd", cmd))
	}
}

// doMove executes a linear move (G0/G1)
func (interp *Interpreter) doMove(cmd *Command) ([]kinematics.Joints, error) {
	if cmd.HasParameter('F') {
		interp.state.FeedRate = cmd.GetParameter('F', 0)
	}

	current := interp.planner.Position()
	target := current.Values()
	moved := false
	for i := 0; i < kinematics.NumPoseAxes; i++ {
		letter := kinematics.AxisLetters[i]
		if !cmd.HasParameter(letter) {
			continue
		}
		moved = true
		v := cmd.GetParameter(letter, 0)
		if interp.state.AbsoluteMode {
			target[i] = v
		} else {
			target[i] += v
		}
	}
	if !moved {
		return nil, nil
	}

	return interp.planner.MoveTo(kinematics.PoseFromValues(target))
}

// doSetPosition sets the current position (G92). Without axis words every
// axis is zeroed.
func (interp *Interpreter) doSetPosition(cmd *Command) {
	pos := interp.planner.Position().Values()
	set := false
	for i := 0; i < kinematics.NumPoseAxes; i++ {
		letter := kinematics.AxisLetters[i]
		if cmd.HasParameter(letter) {
			pos[i] = cmd.GetParameter(letter, 0)
			set = true
		}
	}
	if !set {
		pos = [kinematics.NumPoseAxes]float64{}
	}
	interp.planner.SetPosition(kinematics.PoseFromValues(pos))
}

// GetState returns the current modal state
func (interp *Interpreter) GetState() State {
	return interp.state
}

// Reset restores the power-on modal state
func (interp *Interpreter) Reset() {
	interp.state = State{AbsoluteMode: true}
}
