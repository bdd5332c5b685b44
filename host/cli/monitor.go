package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/host/link"
	"github.com/billmania/foam-cutter/host/serial"
	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/protocol"
)

// MonitorOptions holds flags for the monitor command.
type MonitorOptions struct {
	Serial string
	Strict bool
}

// MonitorLine is the JSON form of one decoded frame
type MonitorLine struct {
	Seq     uint8                            `json:"seq"`
	Type    string                           `json:"type"`
	Index   uint32                           `json:"index"`
	Pose    *[kinematics.NumPoseAxes]float64 `json:"pose,omitempty"`
	Joints  kinematics.Joints                `json:"joints,omitempty"`
	Kind    string                           `json:"kind,omitempty"`
	Code    int32                            `json:"code,omitempty"`
	Forward uint64                           `json:"forward_flags,omitempty"`
	Inverse uint64                           `json:"inverse_flags,omitempty"`
}

func newMonitorLine(seq uint8, msg *protocol.Message) MonitorLine {
	line := MonitorLine{
		Seq:     seq,
		Type:    msg.Type.String(),
		Index:   msg.Index,
		Forward: uint64(msg.Flags.Forward),
		Inverse: uint64(msg.Flags.Inverse),
	}
	switch msg.Type {
	case protocol.MsgPose:
		v := msg.Pose.Values()
		line.Pose = &v
	case protocol.MsgJoints:
		line.Joints = msg.Joints
	case protocol.MsgError:
		line.Kind = msg.ErrKind.String()
		line.Code = msg.ErrCode
	}
	return line
}

func (l MonitorLine) String() string {
	var s string
	switch {
	case l.Pose != nil:
		s = kinematics.PoseFromValues(*l.Pose).String()
	case l.Kind != "":
		s = fmt.Sprintf("%s code %d", l.Kind, l.Code)
	default:
		s = l.Joints.String()
	}
	if l.Forward != 0 || l.Inverse != 0 {
		s += fmt.Sprintf(" flags %#x/%#x", l.Forward, l.Inverse)
	}
	return fmt.Sprintf("%2d %-6s %4d %s", l.Seq, l.Type, l.Index, s)
}

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MonitorOptions{}

	cmd := &cobra.Command{
		Use:   "monitor [capture]",
		Short: "Decode frames from a serial device or a capture file",
		Long: `Decode the frames sweep --serial writes, one line per frame. Reads a
capture file, or the device given with --serial until it has been quiet
for serial.read_timeout_ms.

  foamkins monitor --serial /dev/ttyUSB0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Serial, "serial", "", "serial device to read frames from")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 on corrupt frames or sequence gaps")

	return cmd
}

func runMonitor(cmd *cobra.Command, rootOpts *RootOptions, opts *MonitorOptions, args []string) error {
	if (len(args) == 1) == (opts.Serial != "") {
		return NewExitError(ExitCommandError, "give either a capture file or --serial")
	}

	var src io.ReadCloser
	name := opts.Serial
	if name != "" {
		cfg := rootOpts.Config.Serial
		cfg.Device = name
		port, err := serial.Open(&cfg)
		if err != nil {
			return WrapExitError(ExitCommandError, "serial", err)
		}
		src = port
	} else {
		name = args[0]
		f, err := os.Open(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "open capture", err)
		}
		src = f
	}
	defer src.Close()

	w := cmd.OutOrStdout()
	var enc *json.Encoder
	if rootOpts.Format == "json" {
		enc = json.NewEncoder(w)
	}

	m := link.NewMonitor(src, rootOpts.Logger.Named("monitor"))
	err := m.Run(cmd.Context(), func(seq uint8, msg *protocol.Message) error {
		line := newMonitorLine(seq, msg)
		if enc != nil {
			return enc.Encode(line)
		}
		_, err := fmt.Fprintln(w, line)
		return err
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "monitor", err)
	}

	rootOpts.Logger.Info("monitor done",
		zap.String("source", name),
		zap.Int("frames", m.Frames()),
		zap.Int("bad", m.Bad()),
		zap.Int("gaps", m.Gaps()))
	if opts.Strict && (m.Bad() > 0 || m.Gaps() > 0) {
		return NewExitError(ExitFailure, fmt.Sprintf("%d bad frames, %d sequence gaps", m.Bad(), m.Gaps()))
	}
	return nil
}
