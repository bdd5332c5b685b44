// Package serial opens the serial port a bench controller listens on.
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Port is an open serial port
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string `yaml:"device"`

	// Baud rate
	Baud int `yaml:"baud"`

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int `yaml:"read_timeout_ms"`
}

// Default port settings
const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 100
)

// DefaultConfig returns the default configuration for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
	}
}

// Validate checks that the configuration names a device and a usable rate
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("serial: no configuration")
	}
	if c.Device == "" {
		return errors.New("serial: no device configured")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("serial: invalid baud %d for %s", c.Baud, c.Device)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("serial: invalid read timeout %dms for %s", c.ReadTimeout, c.Device)
	}
	return nil
}

// Timeout returns the read timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Millisecond
}
