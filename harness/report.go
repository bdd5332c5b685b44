package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/billmania/foam-cutter/kinematics"
)

// Report collects the results of one sweep
type Report struct {
	RunID     string
	Solver    string
	Class     kinematics.Class
	NumJoints int
	Grid      Grid
	RoundTrip bool
	Tolerance float64
	Results   []Result
}

// Failures counts failed points
func (r *Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// MaxDeviation returns the largest round-trip deviation seen, or zero when
// nothing was checked
func (r *Report) MaxDeviation() float64 {
	var d float64
	for _, res := range r.Results {
		if res.Checked && res.Deviation > d {
			d = res.Deviation
		}
	}
	return d
}

// WriteText prints one line per point followed by a summary
func (r *Report) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("run %s solver %s class %s joints %d\n", r.RunID, r.Solver, r.Class, r.NumJoints)
	ew.printf("grid %s points %d\n", r.Grid, len(r.Results))

	outer, inner := r.Grid.Outer.Axis, r.Grid.Inner.Axis
	for _, res := range r.Results {
		ov, _ := res.Pose.Axis(outer[0])
		iv, _ := res.Pose.Axis(inner[0])
		ew.printf("%4d %s%.3f %s%.3f", res.Index, outer, ov, inner, iv)
		switch {
		case res.Err != nil:
			ew.printf(" error: %v\n", res.Err)
		case res.RoundTripErr != nil:
			ew.printf(" joints %s roundtrip: %v\n", res.Joints, res.RoundTripErr)
		case res.Checked:
			ew.printf(" joints %s dev %.3g\n", res.Joints, res.Deviation)
		default:
			ew.printf(" joints %s\n", res.Joints)
		}
	}

	ew.printf("%d points, %d failed", len(r.Results), r.Failures())
	if r.RoundTrip {
		ew.printf(", max deviation %.3g", r.MaxDeviation())
	}
	ew.printf("\n")
	return ew.err
}

type jsonResult struct {
	Index     int               `json:"index"`
	Pose      [9]float64        `json:"pose"`
	Joints    kinematics.Joints `json:"joints,omitempty"`
	Forward   uint64            `json:"forward_flags"`
	Inverse   uint64            `json:"inverse_flags"`
	Error     string            `json:"error,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Deviation *float64          `json:"deviation,omitempty"`
	RoundTrip string            `json:"roundtrip_error,omitempty"`
}

type jsonReport struct {
	RunID     string       `json:"run_id"`
	Solver    string       `json:"solver"`
	Class     string       `json:"class"`
	NumJoints int          `json:"joints"`
	Grid      Grid         `json:"grid"`
	Points    int          `json:"points"`
	Failed    int          `json:"failed"`
	Tolerance *float64     `json:"tolerance,omitempty"`
	Results   []jsonResult `json:"results"`
}

// WriteJSON writes the report as an indented JSON document
func (r *Report) WriteJSON(w io.Writer) error {
	doc := jsonReport{
		RunID:     r.RunID,
		Solver:    r.Solver,
		Class:     r.Class.String(),
		NumJoints: r.NumJoints,
		Grid:      r.Grid,
		Points:    len(r.Results),
		Failed:    r.Failures(),
		Results:   make([]jsonResult, 0, len(r.Results)),
	}
	if r.RoundTrip {
		tol := r.Tolerance
		doc.Tolerance = &tol
	}
	for _, res := range r.Results {
		jr := jsonResult{
			Index:   res.Index,
			Pose:    res.Pose.Values(),
			Joints:  res.Joints,
			Forward: uint64(res.Flags.Forward),
			Inverse: uint64(res.Flags.Inverse),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
			jr.Kind = kinematics.KindOf(res.Err).String()
		}
		if res.Checked && !math.IsInf(res.Deviation, 0) {
			dev := res.Deviation
			jr.Deviation = &dev
		}
		if res.RoundTripErr != nil {
			jr.RoundTrip = res.RoundTripErr.Error()
		}
		doc.Results = append(doc.Results, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
