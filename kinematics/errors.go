package kinematics

import (
	"errors"
	"fmt"
)

// Kind classifies a kinematics failure
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDimensionMismatch
	KindInvalidPose
	KindUnreachable
	KindNotSupported
	KindSolverInternal
)

var (
	// ErrDimensionMismatch indicates a joint vector of the wrong length.
	ErrDimensionMismatch = errors.New("kinematics: joint count mismatch")
	// ErrInvalidPose indicates a pose with a NaN or infinite field.
	ErrInvalidPose = errors.New("kinematics: pose is not finite")
	// ErrUnreachable indicates no physically valid solution exists.
	ErrUnreachable = errors.New("kinematics: unreachable")
	// ErrNotSupported indicates the solver does not implement the direction.
	ErrNotSupported = errors.New("kinematics: direction not supported")
	// ErrSolverInternal indicates a numeric or implementation failure.
	ErrSolverInternal = errors.New("kinematics: solver failure")
)

var kindNames = [...]string{
	KindUnknown:           "unknown",
	KindDimensionMismatch: "dimension_mismatch",
	KindInvalidPose:       "invalid_pose",
	KindUnreachable:       "unreachable",
	KindNotSupported:      "not_supported",
	KindSolverInternal:    "solver_internal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindDimensionMismatch:
		return ErrDimensionMismatch
	case KindInvalidPose:
		return ErrInvalidPose
	case KindUnreachable:
		return ErrUnreachable
	case KindNotSupported:
		return ErrNotSupported
	case KindSolverInternal:
		return ErrSolverInternal
	}
	return nil
}

// Error is the typed failure returned by solvers. It matches the sentinel
// for its Kind under errors.Is.
type Error struct {
	Op   string // "forward" or "inverse"
	Kind Kind
	Code int // solver-defined diagnostic code, SolverInternal only
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Kind == KindSolverInternal && e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the error's kind
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewError builds a typed error with a formatted message
func NewError(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// InternalError reports a solver-specific failure with a diagnostic code
func InternalError(op string, code int, err error) *Error {
	return &Error{Op: op, Kind: KindSolverInternal, Code: code, Err: err}
}

// KindOf returns the kind of a kinematics error, or KindUnknown
func KindOf(err error) Kind {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Kind
	}
	switch {
	case errors.Is(err, ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, ErrInvalidPose):
		return KindInvalidPose
	case errors.Is(err, ErrUnreachable):
		return KindUnreachable
	case errors.Is(err, ErrNotSupported):
		return KindNotSupported
	case errors.Is(err, ErrSolverInternal):
		return KindSolverInternal
	}
	return KindUnknown
}

// CodeOf returns the diagnostic code of a SolverInternal error, or 0
func CodeOf(err error) int {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return 0
}
