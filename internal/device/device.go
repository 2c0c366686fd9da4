package device

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/im920/internal/logging"
	"github.com/muurk/im920/internal/protocol"
	"github.com/muurk/im920/internal/serial"
)

const (
	// DefaultHandshakeTimeout bounds the slave side of group registration
	// when the caller's context has no deadline
	DefaultHandshakeTimeout = 60 * time.Second
)

// Options tunes a Device
type Options struct {
	// HandshakeTimeout bounds SetGroupNumber on a slave (0 = default)
	HandshakeTimeout time.Duration

	// MaxSettingsLines caps ReadAllSettings (0 = protocol default)
	MaxSettingsLines int
}

// DefaultOptions returns the default device options
func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: DefaultHandshakeTimeout,
		MaxSettingsLines: protocol.DefaultMaxSettingsLines,
	}
}

// Device is a handle on one IM920s module. It owns the engine and caches
// the last-known module state.
//
// A Device is not safe for concurrent use. Applications sharing one module
// between goroutines must funnel calls through a single owner.
type Device struct {
	engine *protocol.Engine
	closer io.Closer
	opts   Options
	state  State
	now    func() time.Time
}

// New creates a Device on top of an engine
func New(engine *protocol.Engine, opts Options) *Device {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.MaxSettingsLines <= 0 {
		opts.MaxSettingsLines = protocol.DefaultMaxSettingsLines
	}
	return &Device{
		engine: engine,
		opts:   opts,
		now:    time.Now,
	}
}

// Open opens the serial port described by cfg and returns a Device on it.
// Close releases the port.
func Open(cfg *serial.Config, opts Options) (*Device, error) {
	lt, err := serial.OpenLine(cfg)
	if err != nil {
		return nil, protocol.NewTransportError("", "failed to open serial port", err)
	}

	d := New(protocol.NewEngine(lt, lt.Name()), opts)
	d.closer = lt
	return d, nil
}

// Close releases the serial port if the Device opened it
func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Engine returns the underlying command engine
func (d *Device) Engine() *protocol.Engine {
	return d.engine
}

// State returns the cached state snapshot
func (d *Device) State() State {
	return d.state
}

// Initialize arms the module for configuration and loads its identity:
// enable writing, text I/O, read group/node/identity, enable ack.
func (d *Device) Initialize() (State, error) {
	if _, err := d.EnableWriting(); err != nil {
		return d.state, fmt.Errorf("enable writing: %w", err)
	}
	if err := d.SetIOMode(IOModeText); err != nil {
		return d.state, fmt.Errorf("set text I/O mode: %w", err)
	}
	if _, err := d.ReadGroupNumber(); err != nil {
		return d.state, err
	}
	if _, err := d.ReadNodeNumber(); err != nil {
		return d.state, err
	}
	if _, err := d.ReadIdentity(); err != nil {
		return d.state, err
	}
	if err := d.SetAckMode(true); err != nil {
		return d.state, fmt.Errorf("enable ack: %w", err)
	}

	logging.Info("Module initialized",
		zap.String("port", d.engine.Name()),
		zap.String("identity", d.state.Identity),
		zap.String("node", d.state.NodeNumber),
		zap.String("group", d.state.GroupNumber),
	)
	return d.state, nil
}

// Refresh re-reads identity, node number, group number and network mode
// and returns the new snapshot.
func (d *Device) Refresh() (State, error) {
	identity, err := d.query(protocol.VerbReadIdentity)
	if err != nil {
		return d.state, err
	}
	node, err := d.readNode()
	if err != nil {
		return d.state, err
	}
	group, err := d.readGroup()
	if err != nil {
		return d.state, err
	}
	mode, err := d.readNetworkMode()
	if err != nil {
		return d.state, err
	}

	next := d.state
	next.Identity = identity
	next.NodeNumber = node
	next.GroupNumber = group
	next.NetworkMode = mode
	next.RefreshedAt = d.now()
	d.state = next
	return next, nil
}

// EnableWriting sends ENWR, which must precede setting changes after power
// up or a reset. It does not touch the cached state.
func (d *Device) EnableWriting() (string, error) {
	return d.command(protocol.VerbEnableWriting)
}

// ReadIdentity reads the factory serial identity
func (d *Device) ReadIdentity() (string, error) {
	identity, err := d.query(protocol.VerbReadIdentity)
	if err != nil {
		return "", err
	}
	d.update(func(s *State) { s.Identity = identity })
	return identity, nil
}

// ReadNodeNumber reads the node number
func (d *Device) ReadNodeNumber() (string, error) {
	node, err := d.readNode()
	if err != nil {
		return "", err
	}
	d.update(func(s *State) { s.NodeNumber = node })
	return node, nil
}

// ReadGroupNumber reads the group number
func (d *Device) ReadGroupNumber() (string, error) {
	group, err := d.readGroup()
	if err != nil {
		return "", err
	}
	d.update(func(s *State) { s.GroupNumber = group })
	return group, nil
}

// ReadNetworkMode reads the network topology
func (d *Device) ReadNetworkMode() (NetworkMode, error) {
	mode, err := d.readNetworkMode()
	if err != nil {
		return NetworkModeUnknown, err
	}
	d.update(func(s *State) { s.NetworkMode = mode })
	return mode, nil
}

// ReadAllSettings requests the settings dump and returns every line
// received before the read timeout, up to Options.MaxSettingsLines.
func (d *Device) ReadAllSettings() ([]string, error) {
	return d.engine.Collect(protocol.VerbReadSettings, d.opts.MaxSettingsLines)
}

// SetNodeNumber sets the node number, then reads it back. The cache holds
// the value read back, not the value requested.
func (d *Device) SetNodeNumber(node string) (string, error) {
	if err := ValidateNodeNumber(node); err != nil {
		return "", err
	}

	reply, err := d.command(protocol.VerbSetNodeNumber, node)
	if err != nil {
		return "", err
	}

	if _, err := d.ReadNodeNumber(); err != nil {
		return reply, fmt.Errorf("read back node number: %w", err)
	}

	logging.Info("Node number set",
		zap.String("port", d.engine.Name()),
		zap.String("node", d.state.NodeNumber),
	)
	return reply, nil
}

// SetIOMode switches between text (ECIO) and hex (DCIO) I/O
func (d *Device) SetIOMode(mode IOMode) error {
	var verb string
	switch mode {
	case IOModeText:
		verb = protocol.VerbEnableCharIO
	case IOModeHex:
		verb = protocol.VerbDisableCharIO
	default:
		return protocol.NewInvalidArgumentError(fmt.Sprintf("unknown I/O mode %v", mode))
	}

	if _, err := d.command(verb); err != nil {
		return err
	}
	d.update(func(s *State) { s.IOMode = mode })
	return nil
}

// SetNetworkMode sets the network topology
func (d *Device) SetNetworkMode(mode NetworkMode) error {
	wire, err := mode.Wire()
	if err != nil {
		return err
	}

	if _, err := d.command(protocol.VerbSetNetworkMode, wire); err != nil {
		return err
	}
	d.update(func(s *State) { s.NetworkMode = mode })
	return nil
}

// SetAckMode enables or disables acknowledged unicast. With ack enabled the
// module firmware confirms delivery and retransmits on its own; the host
// only toggles the capability.
func (d *Device) SetAckMode(enabled bool) error {
	verb := protocol.VerbDisableAck
	if enabled {
		verb = protocol.VerbEnableAck
	}

	if _, err := d.command(verb); err != nil {
		return err
	}
	d.update(func(s *State) { s.AckMode = enabled })
	return nil
}

// ResetSystem soft-resets the module and re-enables writing, which the
// module drops on reset. Returns the ENWR reply.
func (d *Device) ResetSystem() (string, error) {
	if _, err := d.command(protocol.VerbSoftReset); err != nil {
		return "", err
	}
	return d.EnableWriting()
}

// ResetSettings restores factory settings, reloads node and group number
// from the module and re-enables writing. Returns the ENWR reply.
func (d *Device) ResetSettings() (string, error) {
	if _, err := d.command(protocol.VerbFactoryClear); err != nil {
		return "", err
	}

	node, err := d.readNode()
	if err != nil {
		return "", fmt.Errorf("read node number after factory clear: %w", err)
	}
	group, err := d.readGroup()
	if err != nil {
		return "", fmt.Errorf("read group number after factory clear: %w", err)
	}

	// Factory defaults invalidate everything host-side except the identity
	d.state = State{
		Identity:    d.state.Identity,
		NodeNumber:  node,
		GroupNumber: group,
		RefreshedAt: d.now(),
	}

	logging.Info("Factory settings restored",
		zap.String("port", d.engine.Name()),
		zap.String("node", node),
		zap.String("group", group),
	)
	return d.EnableWriting()
}

// command runs a mutating command and turns an NG reply into an error
func (d *Device) command(verb string, args ...string) (string, error) {
	reply, err := d.engine.Execute(verb, args...)
	if err != nil {
		return "", err
	}
	if reply == protocol.ReplyNG {
		logging.Warn("Command rejected",
			zap.String("port", d.engine.Name()),
			zap.String("verb", verb),
		)
		return reply, protocol.NewProtocolError(verb, "module rejected command (NG)", nil)
	}
	return reply, nil
}

// query runs a read command whose reply must be a non-empty value
func (d *Device) query(verb string) (string, error) {
	reply, err := d.engine.Execute(verb)
	if err != nil {
		return "", err
	}
	if reply == "" || reply == protocol.ReplyNG {
		return "", protocol.NewProtocolError(verb, fmt.Sprintf("unexpected reply %q", reply), nil)
	}
	return reply, nil
}

func (d *Device) readNode() (string, error) {
	node, err := d.query(protocol.VerbReadNodeNumber)
	if err != nil {
		return "", err
	}
	if ValidateNodeNumber(node) != nil {
		return "", protocol.NewProtocolError(protocol.VerbReadNodeNumber, fmt.Sprintf("malformed node number %q", node), nil)
	}
	return node, nil
}

func (d *Device) readGroup() (string, error) {
	return d.query(protocol.VerbReadGroupNumber)
}

func (d *Device) readNetworkMode() (NetworkMode, error) {
	reply, err := d.engine.Execute(protocol.VerbReadNetworkMode)
	if err != nil {
		return NetworkModeUnknown, err
	}
	return decodeNetworkMode(reply)
}

// update replaces the cached snapshot with a modified copy
func (d *Device) update(fn func(s *State)) {
	next := d.state
	fn(&next)
	next.RefreshedAt = d.now()
	d.state = next
}
