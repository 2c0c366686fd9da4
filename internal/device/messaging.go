package device

import (
	"github.com/muurk/im920/internal/protocol"
)

// SendBroadcast transmits payload to every node in range (TXDA)
func (d *Device) SendBroadcast(payload string) (string, error) {
	return d.command(protocol.VerbBroadcastSend, payload)
}

// SendUnicast transmits payload to one node (TXDU). With ack mode enabled
// the module confirms delivery itself.
func (d *Device) SendUnicast(node, payload string) (string, error) {
	if err := ValidateNodeNumber(node); err != nil {
		return "", err
	}
	return d.command(protocol.VerbUnicastSend, node+","+payload)
}

// ReadMessage reads the next inbound frame. ok is false when nothing
// arrived within the read timeout.
func (d *Device) ReadMessage() (msg protocol.InboundMessage, ok bool, err error) {
	line, err := d.engine.ReadLine()
	if protocol.IsTimeout(err) {
		return protocol.InboundMessage{}, false, nil
	}
	if err != nil {
		return protocol.InboundMessage{}, false, err
	}
	return protocol.DecodeInbound(line)
}
