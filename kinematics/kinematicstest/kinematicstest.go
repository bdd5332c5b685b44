// Package kinematicstest provides conformance checks and test doubles for
// kinematics solvers.
package kinematicstest

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmania/foam-cutter/kinematics"
)

// ExactTolerance is the round-trip tolerance applied to Identity solvers
const ExactTolerance = 1e-12

// ApproxPose compares poses field by field within tol
func ApproxPose(tol float64) cmp.Option {
	return cmpopts.EquateApprox(0, tol)
}

// RoundTrip checks that Forward(Inverse(p)) reproduces every pose within
// tol, threading flags through both calls. Identity solvers are held to
// ExactTolerance whatever tol is given.
func RoundTrip(t testing.TB, s kinematics.Solver, poses []kinematics.Pose, tol float64) {
	t.Helper()

	class := s.Classify()
	require.True(t, class == kinematics.Identity || class == kinematics.Both,
		"round trip needs a bidirectional solver, got %s", class)
	if class == kinematics.Identity {
		tol = ExactTolerance
	}

	var flags kinematics.Flags
	for _, want := range poses {
		joints, err := s.Inverse(want, &flags)
		require.NoError(t, err, "inverse %s", want)
		require.Len(t, joints, s.NumJoints())

		got, err := s.Forward(joints, &flags)
		require.NoError(t, err, "forward %v", joints)

		if diff := cmp.Diff(want, got, ApproxPose(tol)); diff != "" {
			t.Errorf("round trip of %s mismatch (-want +got):\n%s", want, diff)
		}
	}
}

// Contract checks the input validation and capability rules every solver
// must follow, independent of its math.
func Contract(t testing.TB, s kinematics.Solver) {
	t.Helper()

	class := s.Classify()
	assert.Equal(t, class, s.Classify(), "Classify must be stable")

	n := s.NumJoints()
	require.Positive(t, n, "solver must control at least one joint")

	if class.HasForward() {
		for _, bad := range []kinematics.Joints{nil, make(kinematics.Joints, n+1)} {
			flags := kinematics.Flags{Forward: 0xA5, Inverse: 0x5A}
			pose, err := s.Forward(bad, &flags)
			assert.ErrorIs(t, err, kinematics.ErrDimensionMismatch, "forward with %d joints", len(bad))
			assert.Equal(t, kinematics.Pose{}, pose, "no partial pose on error")
			assert.Equal(t, kinematics.Flags{Forward: 0xA5, Inverse: 0x5A}, flags, "flags unchanged on error")
		}
	} else {
		_, err := s.Forward(make(kinematics.Joints, n), &kinematics.Flags{})
		assert.ErrorIs(t, err, kinematics.ErrNotSupported)
	}

	if class.HasInverse() {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			for i := 0; i < kinematics.NumPoseAxes; i++ {
				var vals [kinematics.NumPoseAxes]float64
				vals[i] = v
				flags := kinematics.Flags{Forward: 1, Inverse: 2}
				joints, err := s.Inverse(kinematics.PoseFromValues(vals), &flags)
				assert.ErrorIs(t, err, kinematics.ErrInvalidPose, "field %c = %v", kinematics.AxisLetters[i], v)
				assert.Nil(t, joints, "no partial joints on error")
				assert.Equal(t, kinematics.Flags{Forward: 1, Inverse: 2}, flags, "flags unchanged on error")
			}
		}
	} else {
		for _, p := range []kinematics.Pose{{}, {Tran: kinematics.Cartesian{X: 1, Y: 2}}, kinematics.PoseFromValues([9]float64{math.NaN()})} {
			_, err := s.Inverse(p, &kinematics.Flags{})
			assert.ErrorIs(t, err, kinematics.ErrNotSupported)
		}
	}
}
