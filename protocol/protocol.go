// Package protocol implements the framed binary encoding used to move
// poses, joint vectors and kinematics errors across a serial link.
//
// A frame is laid out like a Klipper message block:
//
//	[length][sequence][payload ...][crc16 hi][crc16 lo][sync]
//
// length counts the whole frame, sequence carries MessageDest in the high
// nibble and a rolling counter in the low nibble, and the CRC covers the
// header and payload.
package protocol

import "github.com/billmania/foam-cutter/kinematics"

// Protocol constants
const (
	MessageMax     = 255 // length is a single byte
	MessageHeader  = 2
	MessageTrailer = 3
	MessageMin     = MessageHeader + MessageTrailer

	MessageSeqMask = 0x0F
	MessageDest    = 0x10
	MessageSync    = 0x7E

	// MaxJoints bounds the joint count of a MsgJoints payload so any
	// message fits in MessageMax
	MaxJoints = kinematics.MaxJoints
)

// MsgType identifies the payload of a frame
type MsgType uint8

const (
	MsgPose   MsgType = 1
	MsgJoints MsgType = 2
	MsgError  MsgType = 3
)

func (t MsgType) String() string {
	switch t {
	case MsgPose:
		return "pose"
	case MsgJoints:
		return "joints"
	case MsgError:
		return "error"
	}
	return "unknown"
}
