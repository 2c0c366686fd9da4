package serial

import (
	"errors"
	"fmt"
	"io"

	tarm "github.com/tarm/serial"
)

// tarmPort adapts github.com/tarm/serial to Port
type tarmPort struct {
	port *tarm.Port
}

func openTarm(cfg *Config) (Port, error) {
	port, err := tarm.OpenPort(&tarm.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	p := &tarmPort{port: port}
	if err := p.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", cfg.Device, err)
	}
	return p, nil
}

// Read reads from the port. tarm reports an elapsed read timeout as io.EOF
// with no data; that is mapped to (0, nil) like go.bug.st/serial does.
func (p *tarmPort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

func (p *tarmPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *tarmPort) Close() error {
	return p.port.Close()
}

// ResetInputBuffer discards pending input. tarm only exposes a combined
// flush, which also drops untransmitted output.
func (p *tarmPort) ResetInputBuffer() error {
	return p.port.Flush()
}

// Drain is a no-op: tarm writes block until the kernel accepted the bytes.
func (p *tarmPort) Drain() error {
	return nil
}
