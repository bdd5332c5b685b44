// Package standalone runs G-code through a kinematics solver without a
// host: lines are parsed, interpreted, split into segments and solved.
package standalone

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/standalone/config"
	"github.com/billmania/foam-cutter/standalone/gcode"
	"github.com/billmania/foam-cutter/standalone/planner"
)

// Manager coordinates all standalone mode components
type Manager struct {
	config      *config.MachineConfig
	parser      *gcode.Parser
	interpreter *gcode.Interpreter
	planner     *planner.Planner
	solver      kinematics.Solver
	log         *zap.Logger

	// Serial interface
	inputBuffer  []byte
	outputBuffer []byte

	// Status
	initialized bool
	lines       int
}

// NewManager creates a manager from configuration data
func NewManager(configData []byte, log *zap.Logger) (*Manager, error) {
	cfg, err := config.LoadConfig(configData)
	if err != nil {
		return nil, err
	}
	return NewManagerWithConfig(cfg, log)
}

// NewManagerWithConfig creates a manager with an existing config
func NewManagerWithConfig(cfg *config.MachineConfig, log *zap.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		config:       cfg,
		parser:       gcode.NewParser(),
		log:          log,
		inputBuffer:  make([]byte, 0, 256),
		outputBuffer: make([]byte, 0, 256),
	}, nil
}

// Initialize builds the configured solver and the components around it
func (m *Manager) Initialize() error {
	if m.initialized {
		return errors.New("already initialized")
	}

	solver, err := kinematics.New(m.config.Kinematics, m.config.KinematicsConfig())
	if err != nil {
		return err
	}
	return m.InitializeWith(solver)
}

// InitializeWith uses the given solver instead of the configured one
func (m *Manager) InitializeWith(solver kinematics.Solver) error {
	if m.initialized {
		return errors.New("already initialized")
	}

	m.solver = kinematics.Checked(solver)
	m.planner = planner.NewPlanner(m.solver, m.config.Segment.MaxLength, m.log.Named("planner"))
	m.interpreter = gcode.NewInterpreter(m.planner, m.log.Named("gcode"))
	m.initialized = true

	m.log.Info("standalone ready",
		zap.String("kinematics", m.config.Kinematics),
		zap.Stringer("class", m.solver.Classify()),
		zap.Int("joints", m.solver.NumJoints()))
	return nil
}

// ProcessLine processes a line of G-code and returns the joint positions it
// produced
func (m *Manager) ProcessLine(line string) ([]kinematics.Joints, error) {
	if !m.initialized {
		return nil, errors.New("manager not initialized")
	}
	m.lines++

	cmd, err := m.parser.ParseLine(line)
	if err != nil {
		return nil, err
	}
	return m.interpreter.Execute(cmd)
}

// Run processes every line of r, calling fn with the joints each line
// produced. Processing stops at the first error, which carries the line
// number.
func (m *Manager) Run(r io.Reader, fn func(line int, joints []kinematics.Joints) error) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		joints, err := m.ProcessLine(sc.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if fn != nil {
			if err := fn(n, joints); err != nil {
				return err
			}
		}
		if m.interpreter.GetState().Ended {
			break
		}
	}
	return sc.Err()
}

// ProcessByte processes a single byte of input (for serial streaming).
// Each completed line is answered with "ok" or "error: <reason>".
func (m *Manager) ProcessByte(b byte) {
	if b != '\n' && b != '\r' {
		m.inputBuffer = append(m.inputBuffer, b)
		return
	}

	line := strings.TrimSpace(string(m.inputBuffer))
	m.inputBuffer = m.inputBuffer[:0]
	if line == "" {
		return
	}

	if _, err := m.ProcessLine(line); err != nil {
		m.log.Warn("line failed", zap.String("line", line), zap.Error(err))
		m.SendResponse("error: " + err.Error() + "\n")
		return
	}
	m.SendResponse("ok\n")
}

// SendResponse queues a response to be sent to the host
func (m *Manager) SendResponse(response string) {
	m.outputBuffer = append(m.outputBuffer, response...)
}

// GetOutput returns any pending output and clears the buffer
func (m *Manager) GetOutput() []byte {
	if len(m.outputBuffer) == 0 {
		return nil
	}

	output := make([]byte, len(m.outputBuffer))
	copy(output, m.outputBuffer)
	m.outputBuffer = m.outputBuffer[:0]
	return output
}

// Reset returns the planner and interpreter to their power-on state
func (m *Manager) Reset() {
	if !m.initialized {
		return
	}
	m.planner.Reset()
	m.interpreter.Reset()
	m.inputBuffer = m.inputBuffer[:0]
	m.lines = 0
}

// Solver returns the solver in use, nil before Initialize
func (m *Manager) Solver() kinematics.Solver {
	return m.solver
}

// Config returns the machine configuration
func (m *Manager) Config() *config.MachineConfig {
	return m.config
}

// GetState returns the current machine state
func (m *Manager) GetState() MachineState {
	if !m.initialized {
		return MachineState{}
	}
	st := m.interpreter.GetState()
	return MachineState{
		Position:     m.planner.Position(),
		Joints:       m.planner.Joints(),
		Flags:        m.planner.Flags(),
		AbsoluteMode: st.AbsoluteMode,
		FeedRate:     st.FeedRate,
		Ended:        st.Ended,
		Moves:        m.planner.Moves(),
		Lines:        m.lines,
	}
}
