package protocol

import (
	"strconv"
	"strings"
)

// InboundMessage is a data frame received from another node.
// Wire format: <prefix>,<sender>,<rssiHex>:<payload>
type InboundMessage struct {
	Payload string `json:"payload"`
	Sender  string `json:"sender"`
	RSSI    int    `json:"rssi"`
}

// DecodeInbound decodes one raw inbound line.
//
// An empty line (what a read that timed out without data yields) returns
// ok == false and no error. A line that does not match the frame shape
// returns a protocol error.
func DecodeInbound(raw string) (msg InboundMessage, ok bool, err error) {
	line := Decode(raw)
	if strings.TrimSpace(line) == "" {
		return InboundMessage{}, false, nil
	}

	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return InboundMessage{}, false, NewProtocolError("", "inbound frame must have 3 comma-separated fields, got "+strconv.Itoa(len(fields)), nil)
	}

	rssiHex, payload, found := strings.Cut(fields[2], ":")
	if !found {
		return InboundMessage{}, false, NewProtocolError("", "inbound frame has no ':' between signal strength and payload", nil)
	}

	rssi, err := strconv.ParseInt(rssiHex, 16, 32)
	if err != nil {
		return InboundMessage{}, false, NewProtocolError("", "malformed signal strength "+strconv.Quote(rssiHex), err)
	}

	return InboundMessage{
		Payload: payload,
		Sender:  fields[1],
		RSSI:    int(rssi),
	}, true, nil
}
