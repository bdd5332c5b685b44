package kinematics_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/kinematics/kinematicstest"
)

func newTrivial(t *testing.T, coords string, limits ...kinematics.JointLimits) *kinematics.Trivial {
	t.Helper()
	k, err := kinematics.NewTrivial(kinematics.Config{Coordinates: coords, Limits: limits})
	require.NoError(t, err)
	return k
}

func TestTrivialZeroPose(t *testing.T) {
	k := newTrivial(t, "XY")

	joints, err := k.Inverse(kinematics.Pose{}, &kinematics.Flags{})
	require.NoError(t, err)
	assert.Equal(t, kinematics.Joints{0.0, 0.0}, joints)
}

func TestTrivialInverse(t *testing.T) {
	tests := []struct {
		coords string
		pose   kinematics.Pose
		want   kinematics.Joints
	}{
		{
			coords: "XY",
			pose:   kinematics.Pose{Tran: kinematics.Cartesian{X: 10, Y: 20, Z: 5}},
			want:   kinematics.Joints{10, 20},
		},
		{
			coords: "XYUV",
			pose:   kinematics.Pose{Tran: kinematics.Cartesian{X: 1, Y: 2}, U: 3, V: 4},
			want:   kinematics.Joints{1, 2, 3, 4},
		},
		{
			coords: "xyz",
			pose:   kinematics.Pose{Tran: kinematics.Cartesian{X: -1, Y: -2, Z: -3}},
			want:   kinematics.Joints{-1, -2, -3},
		},
		{
			coords: "XYYZ",
			pose:   kinematics.Pose{Tran: kinematics.Cartesian{X: 1, Y: 7, Z: 3}},
			want:   kinematics.Joints{1, 7, 7, 3},
		},
		{
			coords: "XYZABCUVW",
			pose:   kinematics.PoseFromValues([9]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}),
			want:   kinematics.Joints{1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.coords, func(t *testing.T) {
			k := newTrivial(t, tt.coords)
			assert.Equal(t, kinematics.Identity, k.Classify())
			assert.Equal(t, len(tt.coords), k.NumJoints())

			joints, err := k.Inverse(tt.pose, &kinematics.Flags{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, joints)
		})
	}
}

func TestTrivialForwardGantry(t *testing.T) {
	k := newTrivial(t, "XYYZ")

	pose, err := k.Forward(kinematics.Joints{1, 2, 99, 3}, &kinematics.Flags{})
	require.NoError(t, err)
	assert.Equal(t, kinematics.Pose{Tran: kinematics.Cartesian{X: 1, Y: 2, Z: 3}}, pose)
}

func TestTrivialLeavesFlags(t *testing.T) {
	k := newTrivial(t, "XY")
	flags := kinematics.Flags{Forward: 0xDEAD, Inverse: 0xBEEF}

	_, err := k.Inverse(kinematics.Pose{Tran: kinematics.Cartesian{X: 5}}, &flags)
	require.NoError(t, err)
	_, err = k.Forward(kinematics.Joints{1, 2}, &flags)
	require.NoError(t, err)

	assert.Equal(t, kinematics.Flags{Forward: 0xDEAD, Inverse: 0xBEEF}, flags)
}

func TestTrivialLimits(t *testing.T) {
	k := newTrivial(t, "XY",
		kinematics.JointLimits{Min: 0, Max: 100},
		kinematics.JointLimits{Min: -50, Max: 50},
	)

	_, err := k.Inverse(kinematics.Pose{Tran: kinematics.Cartesian{X: 100, Y: -50}}, &kinematics.Flags{})
	assert.NoError(t, err, "limits are inclusive")

	joints, err := k.Inverse(kinematics.Pose{Tran: kinematics.Cartesian{X: 150}}, &kinematics.Flags{})
	assert.ErrorIs(t, err, kinematics.ErrUnreachable)
	assert.Nil(t, joints)

	pose, err := k.Forward(kinematics.Joints{0, 51}, &kinematics.Flags{})
	assert.ErrorIs(t, err, kinematics.ErrUnreachable)
	assert.Equal(t, kinematics.Pose{}, pose)
}

func TestNewTrivialErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  kinematics.Config
	}{
		{"empty", kinematics.Config{}},
		{"unknown axis", kinematics.Config{Coordinates: "XQ"}},
		{"limit count", kinematics.Config{Coordinates: "XY", Limits: []kinematics.JointLimits{{Min: 0, Max: 1}}}},
		{"inverted limit", kinematics.Config{Coordinates: "X", Limits: []kinematics.JointLimits{{Min: 5, Max: 1}}}},
		{"too many joints", kinematics.Config{Coordinates: strings.Repeat("XY", 9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kinematics.NewTrivial(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestTrivialMaxJoints(t *testing.T) {
	k := newTrivial(t, strings.Repeat("XY", kinematics.MaxJoints/2))
	assert.Equal(t, kinematics.MaxJoints, k.NumJoints())
}

func TestTrivialConformance(t *testing.T) {
	for _, coords := range []string{"XY", "XYUV", "XYZABCUVW"} {
		t.Run(coords, func(t *testing.T) {
			k := newTrivial(t, coords)
			kinematicstest.Contract(t, k)
			kinematicstest.Contract(t, kinematics.Checked(k))

			var poses []kinematics.Pose
			for x := 0; x <= 100; x += 25 {
				for y := 0; y <= 100; y += 25 {
					p := kinematics.Pose{Tran: kinematics.Cartesian{X: float64(x) + 0.1, Y: float64(y) - 0.3}}
					if len(coords) > 2 {
						p.U, p.V = float64(x)/3, float64(y)/7
					}
					poses = append(poses, p)
				}
			}
			kinematicstest.RoundTrip(t, k, poses, 0)
		})
	}
}
