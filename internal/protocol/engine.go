package protocol

import (
	"errors"

	"github.com/muurk/im920/internal/logging"
	"github.com/muurk/im920/internal/serial"
)

// DefaultMaxSettingsLines caps the settings dump read by Collect
const DefaultMaxSettingsLines = 16

// Transport is the line channel the engine drives.
// *serial.LineTransport implements it.
type Transport interface {
	FlushInput() error
	Write(p []byte) (int, error)
	Flush() error
	ReadLine() (string, error)
	ReadLines(max int) ([]string, error)
}

// Engine runs one command at a time over a Transport and correlates each
// command with its single reply line. It performs no locking and no retries.
type Engine struct {
	transport Transport
	name      string
}

// NewEngine creates an engine that owns transport. name identifies the port
// in logs.
func NewEngine(transport Transport, name string) *Engine {
	return &Engine{
		transport: transport,
		name:      name,
	}
}

// Name returns the port name used in logs
func (e *Engine) Name() string {
	return e.name
}

// Execute sends verb with args and returns the decoded reply line.
//
// Input buffered before the command is discarded first, so a stale inbound
// message is never taken for the reply.
func (e *Engine) Execute(verb string, args ...string) (string, error) {
	if err := e.send(verb, args); err != nil {
		return "", err
	}

	raw, err := e.transport.ReadLine()
	if err != nil {
		return "", e.readError(verb, err)
	}

	reply := Decode(raw)
	logging.LogReply(e.name, verb, reply)
	return reply, nil
}

// Collect sends verb with args and returns every line received until the
// read timeout elapses or maxLines lines were read. A non-positive maxLines
// uses DefaultMaxSettingsLines.
func (e *Engine) Collect(verb string, maxLines int, args ...string) ([]string, error) {
	if maxLines <= 0 {
		maxLines = DefaultMaxSettingsLines
	}

	if err := e.send(verb, args); err != nil {
		return nil, err
	}

	raw, err := e.transport.ReadLines(maxLines)
	if err != nil {
		return nil, NewTransportError(verb, "failed to read reply lines", err)
	}

	lines := make([]string, 0, len(raw))
	for _, r := range raw {
		line := Decode(r)
		logging.LogRawLine(e.name, verb, line)
		lines = append(lines, line)
	}
	return lines, nil
}

// ReadLine reads the next raw line outside the command cadence and returns
// it decoded. An elapsed read timeout is reported as a Timeout error.
func (e *Engine) ReadLine() (string, error) {
	raw, err := e.transport.ReadLine()
	if err != nil {
		return "", e.readError("", err)
	}
	line := Decode(raw)
	logging.LogRawLine(e.name, "read", line)
	return line, nil
}

func (e *Engine) send(verb string, args []string) error {
	frame, err := Encode(verb, args...)
	if err != nil {
		return err
	}

	if err := e.transport.FlushInput(); err != nil {
		return NewTransportError(verb, "failed to discard buffered input", err)
	}

	if _, err := e.transport.Write(frame); err != nil {
		return NewTransportError(verb, "failed to write command", err)
	}

	if err := e.transport.Flush(); err != nil {
		return NewTransportError(verb, "failed to flush command", err)
	}

	logging.LogCommand(e.name, verb, frame)
	return nil
}

func (e *Engine) readError(verb string, err error) error {
	if errors.Is(err, serial.ErrReadTimeout) {
		return NewTimeoutError(verb, "no reply within read timeout", err)
	}
	return NewTransportError(verb, "failed to read reply", err)
}
