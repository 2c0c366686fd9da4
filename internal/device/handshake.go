package device

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/im920/internal/logging"
	"github.com/muurk/im920/internal/protocol"
)

// SetGroupNumber runs group registration (STGN).
//
// On the master (node number 0001) the module adopts its own identity as
// group number and the single reply completes the call. On a slave the
// module listens for the master and emits GRNOREGD once it has taken over
// the master's group; every line before that token is discarded.
//
// The slave wait ends when ctx is done. If ctx has no deadline,
// Options.HandshakeTimeout applies. Cancellation is observed between line
// reads, so it can lag by up to one read timeout. The firmware shortens the
// radio range during registration, so slaves must sit within about 50cm of
// the master.
//
// The node number decides the role. It is read from the module when the
// cache does not hold one yet.
func (d *Device) SetGroupNumber(ctx context.Context) (string, error) {
	if d.state.NodeNumber == "" {
		if _, err := d.ReadNodeNumber(); err != nil {
			return "", err
		}
	}
	master := d.state.IsMaster()

	reply, err := d.command(protocol.VerbSetGroupNumber)
	if err != nil {
		// A slave may stay silent until the master answers
		if master || !protocol.IsTimeout(err) {
			return "", err
		}
		logging.Debug("No immediate reply to group registration",
			zap.String("port", d.engine.Name()),
		)
	}

	if !master && reply != protocol.GroupRegisteredToken {
		if err := d.awaitRegistration(ctx); err != nil {
			return "", err
		}
	}

	group, err := d.ReadGroupNumber()
	if err != nil {
		return "", err
	}

	logging.Info("Group registered",
		zap.String("port", d.engine.Name()),
		zap.String("node", d.state.NodeNumber),
		zap.String("group", group),
		zap.Bool("master", d.state.IsMaster()),
	)
	return group, nil
}

// awaitRegistration reads raw lines until the registration token appears
func (d *Device) awaitRegistration(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.HandshakeTimeout)
		defer cancel()
	}

	for {
		if err := ctx.Err(); err != nil {
			return protocol.NewTimeoutError(protocol.VerbSetGroupNumber, "group registration not confirmed", err)
		}

		line, err := d.engine.ReadLine()
		if err != nil {
			if protocol.IsTimeout(err) {
				continue
			}
			return protocol.NewProtocolError(protocol.VerbSetGroupNumber, "transport failed while waiting for registration", err)
		}

		if line == protocol.GroupRegisteredToken {
			return nil
		}

		logging.Debug("Discarding line while waiting for registration",
			zap.String("port", d.engine.Name()),
			zap.String("line", line),
		)
	}
}
