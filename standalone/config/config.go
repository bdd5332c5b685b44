// Package config loads the machine description used by the standalone
// controller and the foamkins tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/billmania/foam-cutter/harness"
	"github.com/billmania/foam-cutter/host/serial"
	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/rtapi"
)

// MachineConfig is the complete machine configuration
type MachineConfig struct {
	Kinematics  string                   `yaml:"kinematics"`  // solver name, e.g. "identity"
	Coordinates string                   `yaml:"coordinates"` // joint-to-axis letters, e.g. "XYUV"
	Joints      []kinematics.JointLimits `yaml:"joints"`      // optional, one per joint
	Sweep       harness.Grid             `yaml:"sweep"`
	Logging     LoggingConfig            `yaml:"logging"`
	Serial      serial.Config            `yaml:"serial"`
	Segment     SegmentConfig            `yaml:"segment"`
}

// LoggingConfig selects the message level
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SegmentConfig controls how the trajectory controller splits moves
type SegmentConfig struct {
	// MaxLength is the longest straight segment, in pose units. Zero takes
	// the default; a negative value disables splitting.
	MaxLength float64 `yaml:"max_length"`
}

// Defaults
const (
	DefaultKinematics  = "identity"
	DefaultCoordinates = "XY"
	DefaultLogLevel    = "info"
	DefaultSegment     = 1.0
)

// LoadConfig parses a YAML (or JSON) configuration and returns a validated
// MachineConfig. Empty input yields the defaults.
func LoadConfig(data []byte) (*MachineConfig, error) {
	var config MachineConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses a configuration file
func LoadFile(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *MachineConfig) {
	if config.Kinematics == "" {
		config.Kinematics = DefaultKinematics
	}
	if config.Coordinates == "" {
		config.Coordinates = DefaultCoordinates
	}

	grid := harness.DefaultGrid()
	if config.Sweep.Outer == (harness.AxisRange{}) {
		config.Sweep.Outer = grid.Outer
	}
	if config.Sweep.Inner == (harness.AxisRange{}) {
		config.Sweep.Inner = grid.Inner
	}

	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}

	if config.Serial.Baud == 0 {
		config.Serial.Baud = serial.DefaultBaud
	}
	if config.Serial.ReadTimeout == 0 {
		config.Serial.ReadTimeout = serial.DefaultReadTimeout
	}

	if config.Segment.MaxLength == 0 {
		config.Segment.MaxLength = DefaultSegment
	}
}

// DefaultConfig returns a two-axis identity machine
func DefaultConfig() *MachineConfig {
	config := &MachineConfig{}
	applyDefaults(config)
	return config
}

// Validate checks the configuration for consistency
func (c *MachineConfig) Validate() error {
	if len(c.Joints) != 0 && len(c.Joints) != len(c.Coordinates) {
		return fmt.Errorf("joints: got %d limits for %d coordinates", len(c.Joints), len(c.Coordinates))
	}
	if len(c.Coordinates) > kinematics.MaxJoints {
		return fmt.Errorf("coordinates: %d joints, at most %d supported", len(c.Coordinates), kinematics.MaxJoints)
	}
	for i := 0; i < len(c.Coordinates); i++ {
		if _, ok := kinematics.AxisIndex(c.Coordinates[i]); !ok {
			return fmt.Errorf("coordinates: %q is not one of %s", c.Coordinates[i], kinematics.AxisLetters)
		}
	}
	for j, l := range c.Joints {
		if l.Min > l.Max {
			return fmt.Errorf("joints[%d]: min %g above max %g", j, l.Min, l.Max)
		}
	}
	if err := c.Sweep.Validate(); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	if _, err := rtapi.ParseMsgLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Serial.Baud < 0 {
		return fmt.Errorf("serial: invalid baud %d", c.Serial.Baud)
	}
	if math.IsNaN(c.Segment.MaxLength) || math.IsInf(c.Segment.MaxLength, 0) {
		return fmt.Errorf("segment: max_length must be finite, got %g", c.Segment.MaxLength)
	}
	return nil
}

// KinematicsConfig returns the solver configuration
func (c *MachineConfig) KinematicsConfig() kinematics.Config {
	return kinematics.Config{Coordinates: c.Coordinates, Limits: c.Joints}
}

// MsgLevel returns the configured message level, MsgInfo if unparsable
func (c *MachineConfig) MsgLevel() rtapi.MsgLevel {
	l, err := rtapi.ParseMsgLevel(c.Logging.Level)
	if err != nil {
		return rtapi.MsgInfo
	}
	return l
}
