package kinematics

import (
	"fmt"
	"math"
	"strings"
)

// NumPoseAxes is the number of scalar fields in a Pose
const NumPoseAxes = 9

// AxisLetters lists the pose axes in positional order
const AxisLetters = "XYZABCUVW"

// Cartesian is the translation part of a pose
type Cartesian struct {
	X float64
	Y float64
	Z float64
}

// Pose is a machine-space position: translation, rotation (A, B, C) and the
// secondary linear axes (U, V, W). The field order is the wire order.
type Pose struct {
	Tran Cartesian
	A    float64
	B    float64
	C    float64
	U    float64
	V    float64
	W    float64
}

// PoseFromValues builds a pose from its positional representation
func PoseFromValues(v [NumPoseAxes]float64) Pose {
	return Pose{
		Tran: Cartesian{X: v[0], Y: v[1], Z: v[2]},
		A:    v[3],
		B:    v[4],
		C:    v[5],
		U:    v[6],
		V:    v[7],
		W:    v[8],
	}
}

// Values returns the pose fields in positional order
func (p Pose) Values() [NumPoseAxes]float64 {
	return [NumPoseAxes]float64{
		p.Tran.X, p.Tran.Y, p.Tran.Z,
		p.A, p.B, p.C,
		p.U, p.V, p.W,
	}
}

// IsFinite reports whether every field is neither NaN nor infinite
func (p Pose) IsFinite() bool {
	for _, v := range p.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AxisIndex returns the positional index of an axis letter (case-insensitive)
func AxisIndex(letter byte) (int, bool) {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	i := strings.IndexByte(AxisLetters, letter)
	return i, i >= 0
}

// Axis returns the value of the named axis
func (p Pose) Axis(letter byte) (float64, error) {
	i, ok := AxisIndex(letter)
	if !ok {
		return 0, fmt.Errorf("unknown axis %q", letter)
	}
	return p.Values()[i], nil
}

// WithAxis returns a copy of p with the named axis set to v
func (p Pose) WithAxis(letter byte, v float64) (Pose, error) {
	i, ok := AxisIndex(letter)
	if !ok {
		return p, fmt.Errorf("unknown axis %q", letter)
	}
	vals := p.Values()
	vals[i] = v
	return PoseFromValues(vals), nil
}

// Distance is the Euclidean distance between two poses over all nine axes
func (p Pose) Distance(o Pose) float64 {
	a, b := p.Values(), o.Values()
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Lerp interpolates between p (t=0) and o (t=1)
func (p Pose) Lerp(o Pose, t float64) Pose {
	a, b := p.Values(), o.Values()
	var out [NumPoseAxes]float64
	for i := range a {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return PoseFromValues(out)
}

func (p Pose) String() string {
	return fmt.Sprintf("X%.3f Y%.3f Z%.3f A%.3f B%.3f C%.3f U%.3f V%.3f W%.3f",
		p.Tran.X, p.Tran.Y, p.Tran.Z, p.A, p.B, p.C, p.U, p.V, p.W)
}

// Joints is a joint-space position, one value per controlled joint
type Joints []float64

// Clone returns an independent copy
func (j Joints) Clone() Joints {
	if j == nil {
		return nil
	}
	out := make(Joints, len(j))
	copy(out, j)
	return out
}

func (j Joints) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range j {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%.3f", v)
	}
	b.WriteByte(']')
	return b.String()
}
