package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/harness"
	"github.com/billmania/foam-cutter/host/link"
	"github.com/billmania/foam-cutter/protocol"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	Outer      string
	Inner      string
	Kinematics []string
	RoundTrip  float64
	Serial     string
	Strict     bool
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Call inverse kinematics over a grid of poses",
		Long: `Call inverse kinematics once per point of a two-axis grid and report
the joints or the error at every point. Ranges are AXIS:MIN:MAX:STEP and
default to the sweep section of the configuration.

  foamkins sweep --outer X:0:600:50 --inner U:0:600:50 --roundtrip 1e-9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Outer, "outer", "", "outer (slow) range AXIS:MIN:MAX:STEP")
	cmd.Flags().StringVar(&opts.Inner, "inner", "", "inner (fast) range AXIS:MIN:MAX:STEP")
	cmd.Flags().StringSliceVarP(&opts.Kinematics, "kinematics", "k", nil, "kinematics to sweep, concurrently (default from config)")
	cmd.Flags().Float64Var(&opts.RoundTrip, "roundtrip", 0, "check forward(inverse(p)) against p with this tolerance")
	cmd.Flags().StringVar(&opts.Serial, "serial", "", "stream results as frames to this serial device")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 if any point fails")

	return cmd
}

func runSweep(cmd *cobra.Command, rootOpts *RootOptions, opts *SweepOptions) error {
	log := rootOpts.Logger
	grid := rootOpts.Config.Sweep
	if opts.Outer != "" {
		r, err := ParseRange(opts.Outer)
		if err != nil {
			return WrapExitError(ExitCommandError, "outer", err)
		}
		grid.Outer = r
	}
	if opts.Inner != "" {
		r, err := ParseRange(opts.Inner)
		if err != nil {
			return WrapExitError(ExitCommandError, "inner", err)
		}
		grid.Inner = r
	}
	if err := grid.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "grid", err)
	}

	names := opts.Kinematics
	if len(names) == 0 {
		names = []string{rootOpts.Config.Kinematics}
	}
	targets := make([]harness.Target, 0, len(names))
	for _, name := range names {
		s, err := rootOpts.solver(name)
		if err != nil {
			return err
		}
		targets = append(targets, harness.Target{Name: name, Solver: s})
	}

	sweepOpts := []harness.Option{harness.WithLogger(log)}
	if cmd.Flags().Changed("roundtrip") {
		sweepOpts = append(sweepOpts, harness.WithRoundTrip(opts.RoundTrip))
	}
	if opts.Serial != "" {
		for _, tg := range targets {
			if n := tg.Solver.NumJoints(); n > protocol.MaxJoints {
				return NewExitError(ExitCommandError, fmt.Sprintf("%s: %d joints do not fit a frame, at most %d", tg.Name, n, protocol.MaxJoints))
			}
		}
		cfg := rootOpts.Config.Serial
		cfg.Device = opts.Serial
		l, err := link.Dial(&cfg, log.Named("link"))
		if err != nil {
			return WrapExitError(ExitCommandError, "serial", err)
		}
		defer l.Close()
		sweepOpts = append(sweepOpts, harness.WithSink(l))
	}

	reports, err := harness.RunAll(cmd.Context(), targets, grid, sweepOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "sweep", err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range reports {
		if rootOpts.Format == "json" {
			err = r.WriteJSON(out)
		} else {
			err = r.WriteText(out)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "write report", err)
		}
		failed += r.Failures()
	}

	log.Info("sweep done", zap.Int("reports", len(reports)), zap.Int("failed", failed))
	if opts.Strict && failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d points failed", failed))
	}
	return nil
}

// ParseRange reads AXIS:MIN:MAX:STEP
func ParseRange(s string) (harness.AxisRange, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return harness.AxisRange{}, fmt.Errorf("range %q: want AXIS:MIN:MAX:STEP", s)
	}
	r := harness.AxisRange{Axis: strings.ToUpper(parts[0])}
	vals := []*float64{&r.Min, &r.Max, &r.Step}
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return harness.AxisRange{}, fmt.Errorf("range %q: %w", s, err)
		}
		*vals[i] = v
	}
	return r, nil
}
