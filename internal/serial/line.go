package serial

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/muurk/im920/internal/logging"
)

// ErrReadTimeout is returned when no complete line arrived before the read
// timeout elapsed. Bytes of an incomplete line stay buffered.
var ErrReadTimeout = errors.New("serial: read timeout")

// LineTransport frames a Port into CRLF-terminated lines.
//
// It is not safe for concurrent use; a single owner issues every read and
// write.
type LineTransport struct {
	port    Port
	name    string
	timeout time.Duration

	// pending holds bytes read from the port that do not yet form a line
	pending []byte
	buf     []byte

	now func() time.Time
}

// NewLineTransport wraps port. name is only used for logging and errors.
func NewLineTransport(port Port, name string, timeout time.Duration) *LineTransport {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return &LineTransport{
		port:    port,
		name:    name,
		timeout: timeout,
		buf:     make([]byte, 256),
		now:     time.Now,
	}
}

// Name returns the device name the transport was opened with
func (t *LineTransport) Name() string {
	return t.name
}

// Timeout returns the per-line read timeout
func (t *LineTransport) Timeout() time.Duration {
	return t.timeout
}

// FlushInput discards buffered input, both in this transport and in the
// port's receive buffer.
func (t *LineTransport) FlushInput() error {
	t.pending = t.pending[:0]
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("flush input on %s: %w", t.name, err)
	}
	return nil
}

// Write writes all of p to the port
func (t *LineTransport) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := t.port.Write(p[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("write to %s: %w", t.name, err)
		}
		if n == 0 {
			return written, fmt.Errorf("write to %s: port accepted no bytes", t.name)
		}
	}
	return written, nil
}

// Flush blocks until written data has been transmitted
func (t *LineTransport) Flush() error {
	if err := t.port.Drain(); err != nil {
		return fmt.Errorf("drain %s: %w", t.name, err)
	}
	return nil
}

// ReadLine returns the next line including its terminator. It returns
// ErrReadTimeout if no full line arrived within the read timeout.
func (t *LineTransport) ReadLine() (string, error) {
	deadline := t.now().Add(t.timeout)

	for {
		if i := bytes.IndexByte(t.pending, '\n'); i >= 0 {
			line := string(t.pending[:i+1])
			t.pending = append(t.pending[:0], t.pending[i+1:]...)
			return line, nil
		}

		if !t.now().Before(deadline) {
			if len(t.pending) > 0 {
				logging.LogRawBytes("Incomplete line held after read timeout", t.pending)
			}
			return "", ErrReadTimeout
		}

		n, err := t.port.Read(t.buf)
		if n > 0 {
			t.pending = append(t.pending, t.buf[:n]...)
		}
		if err != nil {
			return "", fmt.Errorf("read from %s: %w", t.name, err)
		}
	}
}

// ReadLines reads lines until the read timeout elapses with no new line or
// max lines were read. A non-positive max means no cap.
func (t *LineTransport) ReadLines(max int) ([]string, error) {
	var lines []string
	for max <= 0 || len(lines) < max {
		line, err := t.ReadLine()
		if errors.Is(err, ErrReadTimeout) {
			break
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Close closes the underlying port
func (t *LineTransport) Close() error {
	if t.port == nil {
		return nil
	}
	return t.port.Close()
}
