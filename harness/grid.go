package harness

import (
	"errors"
	"fmt"
	"math"

	"github.com/billmania/foam-cutter/kinematics"
)

// AxisRange is an inclusive range swept along one pose axis
type AxisRange struct {
	Axis string  `yaml:"axis" json:"axis"`
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// Count returns the number of values in the range, Max included when it
// lies on a step
func (r AxisRange) Count() int {
	return int(r.points())
}

func (r AxisRange) points() float64 {
	return math.Floor((r.Max-r.Min)/r.Step+1e-9) + 1
}

// Value returns the i-th value. Values are computed from Min rather than
// accumulated so long ranges do not drift.
func (r AxisRange) Value(i int) float64 {
	return r.Min + float64(i)*r.Step
}

func (r AxisRange) String() string {
	return fmt.Sprintf("%s[%g:%g:%g]", r.Axis, r.Min, r.Max, r.Step)
}

func (r AxisRange) validate() error {
	if len(r.Axis) != 1 {
		return fmt.Errorf("axis %q must be a single letter", r.Axis)
	}
	if _, ok := kinematics.AxisIndex(r.Axis[0]); !ok {
		return fmt.Errorf("axis %q is not one of %s", r.Axis, kinematics.AxisLetters)
	}
	for _, v := range []float64{r.Min, r.Max, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("axis %s: range must be finite", r.Axis)
		}
	}
	if r.Step <= 0 {
		return fmt.Errorf("axis %s: step must be positive, got %g", r.Axis, r.Step)
	}
	if r.Max < r.Min {
		return fmt.Errorf("axis %s: max %g below min %g", r.Axis, r.Max, r.Min)
	}
	return nil
}

// Grid is a two-axis sweep. Outer advances slowest; every other pose field
// is zero.
type Grid struct {
	Outer AxisRange `yaml:"outer" json:"outer"`
	Inner AxisRange `yaml:"inner" json:"inner"`
}

// MaxPoints bounds the number of points in one grid
const MaxPoints = 1 << 20

var (
	// ErrSameAxis indicates both grid ranges name the same axis
	ErrSameAxis = errors.New("harness: grid axes must differ")
	// ErrTooManyPoints indicates a grid larger than MaxPoints
	ErrTooManyPoints = errors.New("harness: too many grid points")
)

// DefaultGrid sweeps X and Y from 0 to 100 in steps of 10
func DefaultGrid() Grid {
	return Grid{
		Outer: AxisRange{Axis: "X", Min: 0, Max: 100, Step: 10},
		Inner: AxisRange{Axis: "Y", Min: 0, Max: 100, Step: 10},
	}
}

// Validate checks both ranges
func (g Grid) Validate() error {
	if err := g.Outer.validate(); err != nil {
		return err
	}
	if err := g.Inner.validate(); err != nil {
		return err
	}
	a, _ := kinematics.AxisIndex(g.Outer.Axis[0])
	b, _ := kinematics.AxisIndex(g.Inner.Axis[0])
	if a == b {
		return ErrSameAxis
	}
	if n := g.Outer.points() * g.Inner.points(); !(n <= MaxPoints) {
		return fmt.Errorf("%w: %s has %g, at most %d", ErrTooManyPoints, g, n, MaxPoints)
	}
	return nil
}

// Size returns the number of grid points
func (g Grid) Size() int {
	return g.Outer.Count() * g.Inner.Count()
}

// Pose returns the pose for the i-th point, outer-major
func (g Grid) Pose(i int) kinematics.Pose {
	n := g.Inner.Count()
	p, _ := kinematics.Pose{}.WithAxis(g.Outer.Axis[0], g.Outer.Value(i/n))
	p, _ = p.WithAxis(g.Inner.Axis[0], g.Inner.Value(i%n))
	return p
}

func (g Grid) String() string {
	return g.Outer.String() + " " + g.Inner.String()
}
