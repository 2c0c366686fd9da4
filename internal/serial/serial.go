package serial

import (
	"fmt"
	"io"
	"time"
)

// Driver names accepted by Config.Driver
const (
	DriverBugst = "bugst"
	DriverTarm  = "tarm"
)

const (
	// DefaultBaud is the factory UART speed of the IM920s
	DefaultBaud = 19200

	// DefaultReadTimeout bounds every line read
	DefaultReadTimeout = 1 * time.Second
)

// Port represents an open serial port.
// Implementations:
// - go.bug.st/serial (satisfies the interface directly)
// - github.com/tarm/serial (through tarmPort)
// - in-memory ports in tests
type Port interface {
	io.ReadWriteCloser

	// ResetInputBuffer discards bytes received but not yet read
	ResetInputBuffer() error

	// Drain blocks until every written byte has been transmitted
	Drain() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate (19200 unless the module was reconfigured)
	Baud int

	// Driver selects the serial library ("bugst" or "tarm")
	Driver string

	// ReadTimeout bounds a single line read
	ReadTimeout time.Duration
}

// DefaultConfig returns the factory configuration for an IM920s on device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		Driver:      DriverBugst,
		ReadTimeout: DefaultReadTimeout,
	}
}

// Validate checks the configuration before a port is opened
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("serial device path is required")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate: %d", c.Baud)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", c.ReadTimeout)
	}
	switch c.Driver {
	case DriverBugst, DriverTarm, "":
	default:
		return fmt.Errorf("unknown serial driver %q (use %s or %s)", c.Driver, DriverBugst, DriverTarm)
	}
	return nil
}

// Open opens the serial port described by cfg with the configured driver
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverTarm:
		return openTarm(cfg)
	default:
		return openBugst(cfg)
	}
}

// OpenLine opens the port and wraps it in a LineTransport
func OpenLine(cfg *Config) (*LineTransport, error) {
	port, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewLineTransport(port, cfg.Device, cfg.ReadTimeout), nil
}
