package link

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmania/foam-cutter/harness"
	"github.com/billmania/foam-cutter/host/serial"
	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/protocol"
)

func identityXY(t *testing.T) kinematics.Solver {
	t.Helper()
	s, err := kinematics.NewTrivial(kinematics.Config{Coordinates: "XY"})
	require.NoError(t, err)
	return s
}

func TestSendSequence(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	for i := 0; i < 20; i++ {
		require.NoError(t, l.Send(&protocol.Message{Type: protocol.MsgJoints, Index: uint32(i), Joints: kinematics.Joints{float64(i)}}))
	}
	assert.Equal(t, 20, l.Sent())

	fr := protocol.NewFrameReader(&buf)
	for i := 0; i < 20; i++ {
		seq, msg, err := fr.Next()
		require.NoError(t, err)
		assert.Equal(t, uint8(i%16), seq)
		assert.Equal(t, uint32(i), msg.Index)
		assert.Equal(t, kinematics.Joints{float64(i)}, msg.Joints)
	}
	_, _, err := fr.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEmitSweep(t *testing.T) {
	s, err := kinematics.NewTrivial(kinematics.Config{
		Coordinates: "XY",
		Limits:      []kinematics.JointLimits{{Min: 0, Max: 50}, {}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	l := New(&buf, nil)
	report, err := harness.Sweep(context.Background(), s, harness.DefaultGrid(), harness.WithSink(l))
	require.NoError(t, err)
	assert.Equal(t, 2*len(report.Results), l.Sent())

	fr := protocol.NewFrameReader(&buf)
	for _, res := range report.Results {
		_, pose, err := fr.Next()
		require.NoError(t, err)
		assert.Equal(t, protocol.MsgPose, pose.Type)
		assert.Equal(t, res.Pose, pose.Pose)

		_, out, err := fr.Next()
		require.NoError(t, err)
		assert.Equal(t, uint32(res.Index), out.Index)
		if res.Err != nil {
			assert.Equal(t, protocol.MsgError, out.Type)
			assert.Equal(t, kinematics.KindUnreachable, out.ErrKind)
		} else {
			assert.Equal(t, protocol.MsgJoints, out.Type)
			assert.Equal(t, res.Joints, out.Joints)
		}
	}
}

func TestEmitInternalCode(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)
	require.NoError(t, l.Emit(harness.Result{
		Index: 3,
		Err:   kinematics.InternalError("inverse", 42, errors.New("singular")),
	}))

	fr := protocol.NewFrameReader(&buf)
	_, _, err := fr.Next()
	require.NoError(t, err)
	_, msg, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, kinematics.KindSolverInternal, msg.ErrKind)
	assert.Equal(t, int32(42), msg.ErrCode)
}

func TestEmitClampsCode(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)
	for _, code := range []int{math.MaxInt32 + 1, math.MinInt32 - 5} {
		require.NoError(t, l.Emit(harness.Result{
			Err: kinematics.InternalError("inverse", code, errors.New("overflow")),
		}))
	}

	fr := protocol.NewFrameReader(&buf)
	var codes []int32
	for i := 0; i < 4; i++ {
		_, msg, err := fr.Next()
		require.NoError(t, err)
		if msg.Type == protocol.MsgError {
			codes = append(codes, msg.ErrCode)
		}
	}
	assert.Equal(t, []int32{math.MaxInt32, math.MinInt32}, codes)
}

type failWriter struct{ closed bool }

func (f *failWriter) Write([]byte) (int, error) { return 0, errors.New("unplugged") }
func (f *failWriter) Close() error            { f.closed = true; return nil }

func TestWriteErrorAndClose(t *testing.T) {
	w := &failWriter{}
	l := New(w, nil)
	err := l.Send(&protocol.Message{Type: protocol.MsgPose})
	assert.ErrorContains(t, err, "unplugged")
	assert.Zero(t, l.Sent())

	require.NoError(t, l.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, l.Send(&protocol.Message{Type: protocol.MsgPose}), ErrClosed)
	assert.NoError(t, l.Close())
}

func TestDialErrors(t *testing.T) {
	_, err := Dial(nil, nil)
	assert.Error(t, err)

	_, err = Dial(serial.DefaultConfig(""), nil)
	assert.Error(t, err)
}
