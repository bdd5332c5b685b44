package serial

import (
	"fmt"

	"github.com/tarm/serial"
)

// tarmPort is a port opened through tarm/serial. Read, Write, Close and
// Flush come from the embedded port.
type tarmPort struct {
	*serial.Port
	device string
}

func (p *tarmPort) String() string { return p.device }

// Open validates cfg and opens the device it names. With a read timeout set,
// a read that times out returns io.EOF.
func Open(cfg *Config) (Port, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
	}
	return &tarmPort{Port: port, device: cfg.Device}, nil
}
