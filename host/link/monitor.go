package link

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/protocol"
)

// Handler receives each decoded frame
type Handler func(seq uint8, msg *protocol.Message) error

// Monitor decodes the frames a link wrote, from a port or a capture file.
// Corrupt frames are logged and skipped; a break in the sequence numbers is
// counted as a gap.
type Monitor struct {
	fr   *protocol.FrameReader
	log  *zap.Logger
	next int // expected sequence, -1 before the first frame

	frames int
	bad    int
	gaps   int
}

// NewMonitor reads frames from r
func NewMonitor(r io.Reader, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{fr: protocol.NewFrameReader(r), log: log, next: -1}
}

// Run calls fn for every frame until the input ends, ctx is cancelled or fn
// fails. The end of the input is not an error.
func (m *Monitor) Run(ctx context.Context, fn Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		seq, msg, err := m.fr.Next()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, protocol.ErrBadFrame), errors.Is(err, io.ErrUnexpectedEOF):
			m.bad++
			m.next = -1
			m.log.Warn("bad frame", zap.Error(err))
			continue
		case err != nil:
			return fmt.Errorf("monitor: %w", err)
		}

		if m.next >= 0 && int(seq) != m.next {
			m.gaps++
			m.log.Warn("sequence gap", zap.Int("want", m.next), zap.Uint8("got", seq))
		}
		m.next = int(seq+1) & protocol.MessageSeqMask
		m.frames++

		if err := fn(seq, msg); err != nil {
			return err
		}
	}
}

// Frames returns the number of frames decoded
func (m *Monitor) Frames() int { return m.frames }

// Bad returns the number of corrupt frames skipped
func (m *Monitor) Bad() int { return m.bad }

// Gaps returns the number of sequence breaks seen
func (m *Monitor) Gaps() int { return m.gaps }
