package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/billmania/foam-cutter/kinematics"
)

var (
	// ErrBadFrame indicates a frame with a bad length, CRC or sync byte
	ErrBadFrame = errors.New("protocol: bad frame")
	// ErrMessageTooLarge indicates a message that does not fit in MessageMax
	ErrMessageTooLarge = errors.New("protocol: message too large")
)

// Message is the decoded payload of one frame
type Message struct {
	Type  MsgType
	Index uint32 // position of the sample in its run (grid point index)

	Pose   kinematics.Pose   // MsgPose
	Joints kinematics.Joints // MsgJoints
	Flags  kinematics.Flags  // MsgPose, MsgJoints

	ErrKind kinematics.Kind // MsgError
	ErrCode int32           // MsgError
}

// EncodeFrame builds a complete frame for msg with the given sequence
// number (only the low nibble is used)
func EncodeFrame(seq uint8, msg *Message) ([]byte, error) {
	out := NewScratchOutput()
	out.Output([]byte{0, MessageDest | (seq & MessageSeqMask)})

	if err := encodePayload(out, msg); err != nil {
		return nil, err
	}
	if out.CurPosition()+MessageTrailer > MessageMax || out.Overflowed() {
		return nil, ErrMessageTooLarge
	}

	frame := make([]byte, out.CurPosition(), out.CurPosition()+MessageTrailer)
	copy(frame, out.Result())
	frame[0] = byte(len(frame) + MessageTrailer)
	crc := CRC16(frame)
	frame = append(frame, byte(crc>>8), byte(crc), MessageSync)
	return frame, nil
}

func encodePayload(out *ScratchOutput, msg *Message) error {
	EncodeVLQUint(out, uint32(msg.Type))
	EncodeVLQUint(out, msg.Index)

	switch msg.Type {
	case MsgPose:
		for _, v := range msg.Pose.Values() {
			putFloat(out, v)
		}
		putFlags(out, msg.Flags)
	case MsgJoints:
		if len(msg.Joints) > MaxJoints {
			return fmt.Errorf("%w: %d joints", ErrMessageTooLarge, len(msg.Joints))
		}
		EncodeVLQUint(out, uint32(len(msg.Joints)))
		for _, v := range msg.Joints {
			putFloat(out, v)
		}
		putFlags(out, msg.Flags)
	case MsgError:
		EncodeVLQUint(out, uint32(msg.ErrKind))
		EncodeVLQInt(out, msg.ErrCode)
	default:
		return fmt.Errorf("protocol: unknown message type %d", msg.Type)
	}
	return nil
}

// DecodeFrame decodes exactly one frame
func DecodeFrame(frame []byte) (uint8, *Message, error) {
	if len(frame) < MessageMin || int(frame[0]) != len(frame) {
		return 0, nil, fmt.Errorf("%w: length", ErrBadFrame)
	}
	if frame[len(frame)-1] != MessageSync {
		return 0, nil, fmt.Errorf("%w: sync", ErrBadFrame)
	}
	body := frame[:len(frame)-MessageTrailer]
	crc := uint16(frame[len(frame)-3])<<8 | uint16(frame[len(frame)-2])
	if CRC16(body) != crc {
		return 0, nil, fmt.Errorf("%w: crc", ErrBadFrame)
	}
	seq := frame[1]
	if seq&^MessageSeqMask != MessageDest {
		return 0, nil, fmt.Errorf("%w: sequence 0x%02x", ErrBadFrame, seq)
	}

	payload := body[MessageHeader:]
	msg, err := decodePayload(&payload)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if len(payload) != 0 {
		return 0, nil, fmt.Errorf("%w: %d trailing payload bytes", ErrBadFrame, len(payload))
	}
	return seq & MessageSeqMask, msg, nil
}

func decodePayload(data *[]byte) (*Message, error) {
	typ, err := DecodeVLQUint(data)
	if err != nil {
		return nil, err
	}
	idx, err := DecodeVLQUint(data)
	if err != nil {
		return nil, err
	}
	if typ > math.MaxUint8 {
		return nil, fmt.Errorf("message type %d", typ)
	}
	msg := &Message{Type: MsgType(typ), Index: idx}

	switch msg.Type {
	case MsgPose:
		var vals [kinematics.NumPoseAxes]float64
		for i := range vals {
			if vals[i], err = getFloat(data); err != nil {
				return nil, err
			}
		}
		msg.Pose = kinematics.PoseFromValues(vals)
		msg.Flags, err = getFlags(data)
	case MsgJoints:
		var n uint32
		if n, err = DecodeVLQUint(data); err != nil {
			return nil, err
		}
		if n > MaxJoints {
			return nil, fmt.Errorf("%w: %d joints", ErrBadFrame, n)
		}
		msg.Joints = make(kinematics.Joints, n)
		for i := range msg.Joints {
			if msg.Joints[i], err = getFloat(data); err != nil {
				return nil, err
			}
		}
		msg.Flags, err = getFlags(data)
	case MsgError:
		var kind uint32
		if kind, err = DecodeVLQUint(data); err != nil {
			return nil, err
		}
		if kind > math.MaxUint8 {
			return nil, fmt.Errorf("error kind %d", kind)
		}
		msg.ErrKind = kinematics.Kind(kind)
		msg.ErrCode, err = DecodeVLQInt(data)
	default:
		return nil, fmt.Errorf("%w: message type %d", ErrBadFrame, typ)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func putFloat(out OutputBuffer, v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	out.Output(b[:])
}

func getFloat(data *[]byte) (float64, error) {
	if len(*data) < 8 {
		return 0, ErrBufferTooSmall
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(*data))
	*data = (*data)[8:]
	return v, nil
}

func putFlags(out OutputBuffer, f kinematics.Flags) {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], uint64(f.Forward))
	binary.BigEndian.PutUint64(b[8:], uint64(f.Inverse))
	out.Output(b[:])
}

func getFlags(data *[]byte) (kinematics.Flags, error) {
	if len(*data) < 16 {
		return kinematics.Flags{}, ErrBufferTooSmall
	}
	f := kinematics.Flags{
		Forward: kinematics.ForwardFlags(binary.BigEndian.Uint64((*data)[:8])),
		Inverse: kinematics.InverseFlags(binary.BigEndian.Uint64((*data)[8:16])),
	}
	*data = (*data)[16:]
	return f, nil
}

// FrameReader splits a byte stream into frames
type FrameReader struct {
	r     io.Reader
	fifo  *FifoBuffer
	chunk []byte
	eof   bool
}

// NewFrameReader reads frames from r
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		r:     r,
		fifo:  NewFifoBuffer(2 * MessageMax),
		chunk: make([]byte, MessageMax),
	}
}

// Next returns the next frame. A corrupt frame yields an error wrapping
// ErrBadFrame; the reader skips past the next sync byte so Next can be
// called again. The end of the stream is io.EOF, or io.ErrUnexpectedEOF if
// it cut a frame short.
func (fr *FrameReader) Next() (uint8, *Message, error) {
	for {
		data := fr.fifo.Data()

		// leading sync bytes separate frames
		skip := 0
		for skip < len(data) && data[skip] == MessageSync {
			skip++
		}
		if skip > 0 {
			fr.fifo.Pop(skip)
			data = data[skip:]
		}

		if len(data) > 0 {
			n := int(data[0])
			if n < MessageMin {
				fr.resync(data)
				return 0, nil, fmt.Errorf("%w: length %d", ErrBadFrame, n)
			}
			if len(data) >= n {
				frame := make([]byte, n)
				copy(frame, data[:n])
				seq, msg, err := DecodeFrame(frame)
				if err != nil {
					fr.resync(data)
					return 0, nil, err
				}
				fr.fifo.Pop(n)
				return seq, msg, nil
			}
		}

		if fr.eof {
			if fr.fifo.IsEmpty() {
				return 0, nil, io.EOF
			}
			fr.fifo.Reset()
			return 0, nil, io.ErrUnexpectedEOF
		}
		if err := fr.fill(); err != nil {
			return 0, nil, err
		}
	}
}

func (fr *FrameReader) fill() error {
	want := fr.fifo.Free()
	if want > len(fr.chunk) {
		want = len(fr.chunk)
	}
	n, err := fr.r.Read(fr.chunk[:want])
	fr.fifo.Write(fr.chunk[:n])
	if errors.Is(err, io.EOF) {
		fr.eof = true
		return nil
	}
	return err
}

// resync drops the bad frame start up to and including the next sync byte
func (fr *FrameReader) resync(data []byte) {
	for i := 1; i < len(data); i++ {
		if data[i] == MessageSync {
			fr.fifo.Pop(i + 1)
			return
		}
	}
	fr.fifo.Pop(len(data))
}
