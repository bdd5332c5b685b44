// Package link streams kinematics results to a bench controller as framed
// messages.
package link

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/harness"
	"github.com/billmania/foam-cutter/host/serial"
	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/protocol"
)

// ErrClosed is returned when sending on a closed link
var ErrClosed = errors.New("link: closed")

// Link writes frames to a writer, numbering them with a rolling sequence
type Link struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	seq    uint8
	sent   int
	closed bool
	log    *zap.Logger
}

// New creates a link over w. If w is also an io.Closer, Close closes it.
func New(w io.Writer, log *zap.Logger) *Link {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Link{w: w, log: log}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Dial opens the serial port described by cfg and returns a link over it
func Dial(cfg *serial.Config, log *zap.Logger) (*Link, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open link: %w", err)
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", cfg.Device, err)
	}
	l := New(port, log)
	l.log.Info("link open", zap.String("device", cfg.Device), zap.Int("baud", cfg.Baud))
	return l, nil
}

// Send encodes and writes one message
func (l *Link) Send(msg *protocol.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	frame, err := protocol.EncodeFrame(l.seq, msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	if _, err := l.w.Write(frame); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}

	l.log.Debug("frame sent",
		zap.Uint8("seq", l.seq),
		zap.Stringer("type", msg.Type),
		zap.Uint32("index", msg.Index),
		zap.Int("bytes", len(frame)))
	l.seq = (l.seq + 1) & protocol.MessageSeqMask
	l.sent++
	return nil
}

// Emit sends the pose of a sweep point followed by its joints, or by an
// error message when the solver failed
func (l *Link) Emit(r harness.Result) error {
	idx := uint32(r.Index)
	if err := l.Send(&protocol.Message{Type: protocol.MsgPose, Index: idx, Pose: r.Pose, Flags: r.Flags}); err != nil {
		return err
	}
	if r.Err != nil {
		code := kinematics.CodeOf(r.Err)
		wire := int32(max(min(code, math.MaxInt32), math.MinInt32))
		if int(wire) != code {
			l.log.Warn("error code clamped", zap.Int("code", code), zap.Int32("sent", wire))
		}
		return l.Send(&protocol.Message{
			Type:    protocol.MsgError,
			Index:   idx,
			ErrKind: kinematics.KindOf(r.Err),
			ErrCode: wire,
		})
	}
	return l.Send(&protocol.Message{Type: protocol.MsgJoints, Index: idx, Joints: r.Joints, Flags: r.Flags})
}

// Sent returns the number of frames written
func (l *Link) Sent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sent
}

// Close marks the link closed and closes the underlying writer if it can
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

var _ harness.Sink = (*Link)(nil)
