package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmania/foam-cutter/harness"
	"github.com/billmania/foam-cutter/host/serial"
	"github.com/billmania/foam-cutter/kinematics"
	"github.com/billmania/foam-cutter/rtapi"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "identity", cfg.Kinematics)
	assert.Equal(t, "XY", cfg.Coordinates)
	assert.Equal(t, harness.DefaultGrid(), cfg.Sweep)
	assert.Equal(t, rtapi.MsgInfo, cfg.MsgLevel())
	assert.Equal(t, serial.DefaultBaud, cfg.Serial.Baud)
	assert.Equal(t, 1.0, cfg.Segment.MaxLength)
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

const hotWire = `
kinematics: trivkins
coordinates: XYUV
joints:
  - {min: 0, max: 600}
  - {min: 0, max: 400}
  - {min: 0, max: 600}
  - {min: 0, max: 400}
sweep:
  outer: {axis: X, min: 0, max: 600, step: 50}
  inner: {axis: U, min: 0, max: 600, step: 50}
logging:
  level: debug
serial:
  device: /dev/ttyACM0
segment:
  max_length: 0.5
`

func TestLoadConfigYAML(t *testing.T) {
	cfg, err := LoadConfig([]byte(hotWire))
	require.NoError(t, err)

	assert.Equal(t, "trivkins", cfg.Kinematics)
	assert.Equal(t, "XYUV", cfg.Coordinates)
	require.Len(t, cfg.Joints, 4)
	assert.Equal(t, kinematics.JointLimits{Min: 0, Max: 400}, cfg.Joints[3])
	assert.Equal(t, "U", cfg.Sweep.Inner.Axis)
	assert.Equal(t, 169, cfg.Sweep.Size())
	assert.Equal(t, rtapi.MsgDbg, cfg.MsgLevel())
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Device)
	assert.Equal(t, serial.DefaultBaud, cfg.Serial.Baud)
	assert.Equal(t, 0.5, cfg.Segment.MaxLength)

	kc := cfg.KinematicsConfig()
	assert.Equal(t, "XYUV", kc.Coordinates)
	assert.Len(t, kc.Limits, 4)
}

func TestLoadConfigJSON(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"coordinates": "XZ", "segment": {"max_length": 2}}`))
	require.NoError(t, err)
	assert.Equal(t, "XZ", cfg.Coordinates)
	assert.Equal(t, 2.0, cfg.Segment.MaxLength)
	assert.Equal(t, "identity", cfg.Kinematics)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := map[string]string{
		"unknown field":   "kinematic: identity\n",
		"bad coordinate":  "coordinates: XQ\n",
		"limit count":     "coordinates: XY\njoints: [{min: 0, max: 1}]\n",
		"reversed limit":  "coordinates: X\njoints: [{min: 2, max: 1}]\n",
		"bad level":       "logging: {level: shout}\n",
		"same axes":       "sweep: {outer: {axis: X, max: 1, step: 1}, inner: {axis: X, max: 1, step: 1}}\n",
		"nan seg":         "segment: {max_length: .nan}\n",
		"inf seg":         "segment: {max_length: .inf}\n",
		"too many joints": "coordinates: XYXYXYXYXYXYXYXYX\n",
		"syntax":          "kinematics: [\n",
	}
	for name, data := range tests {
		_, err := LoadConfig([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestSegmentDisabled(t *testing.T) {
	cfg, err := LoadConfig([]byte("segment: {max_length: -1}\n"))
	require.NoError(t, err)
	assert.Equal(t, -1.0, cfg.Segment.MaxLength)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "machine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(hotWire), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "XYUV", cfg.Coordinates)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("coordinates: Q\n"), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "bad.yaml")
}
