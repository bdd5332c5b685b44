// Package cli implements the foamkins command line tool.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/rtapi"
	"github.com/billmania/foam-cutter/standalone/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   rtapi.MsgLevel
	Format     string // "json" | "text"

	// Set by PersistentPreRunE
	Config *config.MachineConfig
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for foamkins.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LogLevel: rtapi.MsgWarn}

	cmd := &cobra.Command{
		Use:   "foamkins",
		Short: "Exercise machine kinematics",
		Long: `foamkins loads a kinematics module from a machine configuration and
calls it: single forward or inverse solutions, grid sweeps over two pose
axes, or whole G-code programs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "machine configuration file (YAML)")
	cmd.PersistentFlags().Var(&opts.LogLevel, "log-level", "message level (none|error|warning|info|debug|all)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewInverseCommand(opts))
	cmd.AddCommand(NewForwardCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewMonitorCommand(opts))

	return cmd
}

func (opts *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	cfg := config.DefaultConfig()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.ConfigPath); err != nil {
			return WrapExitError(ExitCommandError, "load config", err)
		}
	}
	opts.Config = cfg

	level := opts.LogLevel
	if !cmd.Flags().Changed("log-level") && opts.ConfigPath != "" {
		level = cfg.MsgLevel()
	}
	opts.Logger = rtapi.NewLogger(level, cmd.ErrOrStderr())
	return nil
}

func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// solver builds the configured solver, or the named one
func (opts *RootOptions) solver(name string) (kinematics.Solver, error) {
	if name == "" {
		name = opts.Config.Kinematics
	}
	s, err := kinematics.New(name, opts.Config.KinematicsConfig())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load kinematics", err)
	}
	opts.Logger.Debug("kinematics loaded",
		zap.String("name", name),
		zap.Stringer("class", s.Classify()),
		zap.Int("joints", s.NumJoints()))
	return s, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
