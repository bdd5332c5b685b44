// Package harness exercises a kinematics solver across a grid of poses and
// reports what it returned at every point.
//
// The harness has no notion of a correct answer. It records the joints or
// the error for each point; an optional round-trip check compares
// Forward(Inverse(p)) with p for solvers that implement both directions.
package harness

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/rtapi"
)

// Result is the outcome at one grid point
type Result struct {
	Index  int
	Pose   kinematics.Pose
	Joints kinematics.Joints
	Flags  kinematics.Flags // flags after the call
	Err    error

	// Round-trip check, set only when enabled and Err is nil
	Checked      bool
	Deviation    float64
	RoundTripErr error
}

// Failed reports whether the point errored or failed its round trip
func (r Result) Failed() bool {
	return r.Err != nil || r.RoundTripErr != nil
}

// Sink receives results as they are produced
type Sink interface {
	Emit(r Result) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Result) error

func (f SinkFunc) Emit(r Result) error { return f(r) }

type options struct {
	name      string
	tolerance float64
	roundTrip bool
	sinks     []Sink
	log       *zap.Logger
	newID     func() string
	flags     kinematics.Flags
}

// Option configures a sweep
type Option func(*options)

// WithName labels the report with the solver name
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithRoundTrip enables the Forward(Inverse(p)) check with the given
// tolerance. It is skipped for solvers lacking either direction.
func WithRoundTrip(tolerance float64) Option {
	return func(o *options) {
		o.roundTrip = true
		o.tolerance = tolerance
	}
}

// WithSink adds a sink. A sink error stops the sweep.
func WithSink(s Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRunID fixes how run IDs are generated
func WithRunID(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

// WithFlags sets the flags passed to the first Inverse call
func WithFlags(f kinematics.Flags) Option {
	return func(o *options) { o.flags = f }
}

func newRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Sweep calls Inverse once per grid point, feeding each call the flags the
// previous one returned. A cancelled context stops the sweep and returns
// the partial report with the context error.
func Sweep(ctx context.Context, s kinematics.Solver, g Grid, opts ...Option) (*Report, error) {
	o := options{name: "solver", newID: newRunID}
	for _, opt := range opts {
		opt(&o)
	}
	log := rtapi.OrNop(o.log)

	if err := g.Validate(); err != nil {
		return nil, err
	}

	solver := kinematics.Checked(s)
	class := solver.Classify()
	check := o.roundTrip && class.HasForward() && class.HasInverse()
	if o.roundTrip && !check {
		log.Warn("round trip check skipped", zap.String("class", class.String()))
	}

	report := &Report{
		RunID:     o.newID(),
		Solver:    o.name,
		Class:     class,
		NumJoints: solver.NumJoints(),
		Grid:      g,
		RoundTrip: check,
		Tolerance: o.tolerance,
		Results:   make([]Result, 0, g.Size()),
	}
	log.Info("sweep started",
		zap.String("run", report.RunID),
		zap.String("solver", o.name),
		zap.Stringer("class", class),
		zap.Stringer("grid", g),
		zap.Int("points", g.Size()))

	flags := o.flags
	for i := 0; i < g.Size(); i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := Result{Index: i, Pose: g.Pose(i)}
		res.Joints, res.Err = solver.Inverse(res.Pose, &flags)
		res.Flags = flags

		if res.Err != nil {
			log.Debug("inverse failed", zap.Int("index", i), zap.Stringer("pose", res.Pose), zap.Error(res.Err))
		} else if check {
			roundTrip(solver, &res, o.tolerance)
			if res.RoundTripErr != nil {
				log.Debug("round trip failed", zap.Int("index", i), zap.Error(res.RoundTripErr))
			}
		}

		report.Results = append(report.Results, res)
		for _, sink := range o.sinks {
			if err := sink.Emit(res); err != nil {
				return report, fmt.Errorf("sink: %w", err)
			}
		}
	}

	log.Info("sweep finished",
		zap.String("run", report.RunID),
		zap.Int("points", len(report.Results)),
		zap.Int("failed", report.Failures()))
	return report, nil
}

// roundTrip runs Forward on a copy of the flags so the inverse thread is
// not disturbed
func roundTrip(s kinematics.Solver, res *Result, tol float64) {
	res.Checked = true
	flags := res.Flags
	pose, err := s.Forward(res.Joints, &flags)
	if err != nil {
		res.Deviation = math.Inf(1)
		res.RoundTripErr = err
		return
	}

	want, got := res.Pose.Values(), pose.Values()
	for i := range want {
		if d := math.Abs(want[i] - got[i]); d > res.Deviation {
			res.Deviation = d
		}
	}
	if res.Deviation > tol {
		res.RoundTripErr = fmt.Errorf("round trip deviation %.3g exceeds tolerance %.3g", res.Deviation, tol)
	}
}
