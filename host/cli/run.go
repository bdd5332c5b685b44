package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/standalone"
)

// RunLine is the JSON form of one joint vector produced by a program.
type RunLine struct {
	Line   int               `json:"line"`
	Joints kinematics.Joints `json:"joints"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.ngc>",
		Short: "Run a G-code program through the kinematics",
		Long: `Run a G-code program through the configured kinematics and print the
joint positions of every segment. Moves are split into segments no longer
than segment.max_length. The first unreachable move stops the program.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd, rootOpts, args[0])
		},
	}
}

func runProgram(cmd *cobra.Command, rootOpts *RootOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open program", err)
	}
	defer f.Close()

	s, err := rootOpts.solver("")
	if err != nil {
		return err
	}
	mgr, err := standalone.NewManagerWithConfig(rootOpts.Config, rootOpts.Logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "standalone", err)
	}
	if err := mgr.InitializeWith(s); err != nil {
		return WrapExitError(ExitCommandError, "standalone", err)
	}

	w := cmd.OutOrStdout()
	var enc *json.Encoder
	if rootOpts.Format == "json" {
		enc = json.NewEncoder(w)
	}

	err = mgr.Run(f, func(line int, joints []kinematics.Joints) error {
		for _, j := range joints {
			if enc != nil {
				if err := enc.Encode(RunLine{Line: line, Joints: j}); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%d %s\n", line, j); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return solverExit(path, err)
	}

	st := mgr.GetState()
	rootOpts.Logger.Sugar().Infof("%s: %d lines, %d moves", path, st.Lines, st.Moves)
	return nil
}
