package protocol

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmania/foam-cutter/kinematics"
)

func sampleMessages() []*Message {
	return []*Message{
		{
			Type:  MsgPose,
			Index: 17,
			Pose:  kinematics.PoseFromValues([9]float64{10, -20, 0.5, 1, 2, 3, 7, 8, 9}),
			Flags: kinematics.Flags{Forward: 0xFFFFFFFFFFFFFFFF, Inverse: 3},
		},
		{
			Type:   MsgJoints,
			Index:  120,
			Joints: kinematics.Joints{100, 90, -0.125, math.MaxFloat64},
			Flags:  kinematics.Flags{Inverse: 1 << 40},
		},
		{
			Type:   MsgJoints,
			Joints: kinematics.Joints{},
		},
		{
			Type:    MsgError,
			Index:   1 << 31,
			ErrKind: kinematics.KindSolverInternal,
			ErrCode: -3,
		},
	}
}

func TestFrameRoundTrip(t *testing.T) {
	for i, msg := range sampleMessages() {
		frame, err := EncodeFrame(uint8(i), msg)
		require.NoError(t, err)

		assert.Equal(t, len(frame), int(frame[0]), "length byte")
		assert.Equal(t, byte(MessageDest|uint8(i)), frame[1], "sequence byte")
		assert.Equal(t, byte(MessageSync), frame[len(frame)-1])

		seq, got, err := DecodeFrame(frame)
		require.NoError(t, err)
		assert.Equal(t, uint8(i), seq)
		if diff := cmp.Diff(msg, got); diff != "" {
			t.Errorf("message %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestFramePoseFieldOrder(t *testing.T) {
	pose := kinematics.PoseFromValues([9]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	frame, err := EncodeFrame(0, &Message{Type: MsgPose, Pose: pose})
	require.NoError(t, err)

	// header, type, index, then nine positional doubles
	payload := frame[MessageHeader+2:]
	for i := 0; i < kinematics.NumPoseAxes; i++ {
		v, err := getFloat(&payload)
		require.NoError(t, err)
		assert.Equal(t, float64(i+1), v, "field %c", kinematics.AxisLetters[i])
	}
}

func TestEncodeFrameErrors(t *testing.T) {
	_, err := EncodeFrame(0, &Message{Type: MsgJoints, Joints: make(kinematics.Joints, MaxJoints+1)})
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	_, err = EncodeFrame(0, &Message{Type: MsgType(9)})
	assert.Error(t, err)

	frame, err := EncodeFrame(0, &Message{Type: MsgJoints, Joints: make(kinematics.Joints, MaxJoints)})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(frame), MessageMax)
}

func TestDecodeFrameCorrupt(t *testing.T) {
	good, err := EncodeFrame(3, sampleMessages()[0])
	require.NoError(t, err)

	corrupt := func(f func([]byte)) []byte {
		b := append([]byte(nil), good...)
		f(b)
		return b
	}

	cases := map[string][]byte{
		"short":    good[:4],
		"length":   corrupt(func(b []byte) { b[0]++ }),
		"sync":     corrupt(func(b []byte) { b[len(b)-1] = 0 }),
		"crc":      corrupt(func(b []byte) { b[len(b)-2] ^= 0xFF }),
		"payload":  corrupt(func(b []byte) { b[10] ^= 0x01 }),
		"sequence": corrupt(func(b []byte) { b[1] = 0x23 }),
	}
	for name, frame := range cases {
		_, _, err := DecodeFrame(frame)
		assert.ErrorIs(t, err, ErrBadFrame, name)
	}
}

// rawFrame wraps an already encoded payload in a valid header and trailer
func rawFrame(payload []byte) []byte {
	frame := append([]byte{byte(MessageHeader + len(payload) + MessageTrailer), MessageDest}, payload...)
	crc := CRC16(frame)
	return append(frame, byte(crc>>8), byte(crc), MessageSync)
}

func TestDecodeFrameWideFields(t *testing.T) {
	// type 257 would read as MsgPose if narrowed to a byte
	out := NewScratchOutput()
	EncodeVLQUint(out, 0x100|uint32(MsgPose))
	EncodeVLQUint(out, 0)
	out.Output(make([]byte, 9*8+16))
	_, _, err := DecodeFrame(rawFrame(out.Result()))
	assert.ErrorIs(t, err, ErrBadFrame)

	out = NewScratchOutput()
	EncodeVLQUint(out, uint32(MsgError))
	EncodeVLQUint(out, 0)
	EncodeVLQUint(out, 0x100|uint32(kinematics.KindUnreachable))
	EncodeVLQInt(out, 0)
	_, _, err = DecodeFrame(rawFrame(out.Result()))
	assert.ErrorIs(t, err, ErrBadFrame)

	// the same payloads with narrow values decode
	out = NewScratchOutput()
	EncodeVLQUint(out, uint32(MsgError))
	EncodeVLQUint(out, 0)
	EncodeVLQUint(out, uint32(kinematics.KindUnreachable))
	EncodeVLQInt(out, 0)
	_, msg, err := DecodeFrame(rawFrame(out.Result()))
	require.NoError(t, err)
	assert.Equal(t, kinematics.KindUnreachable, msg.ErrKind)
}

func TestFrameReaderStream(t *testing.T) {
	var stream bytes.Buffer
	msgs := sampleMessages()
	for i := 0; i < 40; i++ {
		frame, err := EncodeFrame(uint8(i), msgs[i%len(msgs)])
		require.NoError(t, err)
		stream.Write(frame)
		if i%5 == 0 {
			stream.WriteByte(MessageSync)
		}
	}

	fr := NewFrameReader(&oneByteReader{r: &stream})
	for i := 0; i < 40; i++ {
		seq, msg, err := fr.Next()
		require.NoError(t, err, "frame %d", i)
		assert.Equal(t, uint8(i)&MessageSeqMask, seq)
		assert.Equal(t, msgs[i%len(msgs)].Type, msg.Type)
	}
	_, _, err := fr.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameReaderResync(t *testing.T) {
	first, err := EncodeFrame(1, sampleMessages()[1])
	require.NoError(t, err)
	second, err := EncodeFrame(2, sampleMessages()[3])
	require.NoError(t, err)

	broken := append([]byte(nil), first...)
	broken[len(broken)-2] ^= 0xFF // bad CRC, sync byte intact

	var stream bytes.Buffer
	stream.Write(broken)
	stream.Write(second)
	stream.Write(second[:5])

	fr := NewFrameReader(&stream)
	_, _, err = fr.Next()
	assert.ErrorIs(t, err, ErrBadFrame)

	seq, msg, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(2), seq)
	assert.Equal(t, MsgError, msg.Type)

	_, _, err = fr.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type oneByteReader struct {
	r io.Reader
}

func (o *oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}
