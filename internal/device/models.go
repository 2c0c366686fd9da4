package device

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/im920/internal/protocol"
)

// IOMode selects how command arguments and received data are represented
type IOMode int

const (
	// IOModeUnknown means the mode has not been set by this host
	IOModeUnknown IOMode = iota
	// IOModeText exchanges ASCII text (ECIO)
	IOModeText
	// IOModeHex exchanges hexadecimal-encoded bytes (DCIO)
	IOModeHex
)

// String returns the CLI name of the mode
func (m IOMode) String() string {
	switch m {
	case IOModeText:
		return "text"
	case IOModeHex:
		return "hex"
	case IOModeUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("IOMode(%d)", int(m))
	}
}

// ParseIOMode converts "text" or "hex" (case-insensitive) to an IOMode
func ParseIOMode(s string) (IOMode, error) {
	switch strings.ToLower(s) {
	case "text", "str":
		return IOModeText, nil
	case "hex":
		return IOModeHex, nil
	default:
		return IOModeUnknown, protocol.NewInvalidArgumentError(fmt.Sprintf("unknown I/O mode %q (use text or hex)", s))
	}
}

// NetworkMode is the radio network topology
type NetworkMode int

const (
	// NetworkModeUnknown means the mode has not been read yet
	NetworkModeUnknown NetworkMode = iota
	// NetworkModeSimple is point-to-point / broadcast without relaying (wire "1")
	NetworkModeSimple
	// NetworkModeTree relays along a tree rooted at the master (wire "2")
	NetworkModeTree
	// NetworkModeMesh relays through any node (wire "3")
	NetworkModeMesh
)

// String returns the CLI name of the mode
func (m NetworkMode) String() string {
	switch m {
	case NetworkModeSimple:
		return "simple"
	case NetworkModeTree:
		return "tree"
	case NetworkModeMesh:
		return "mesh"
	case NetworkModeUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("NetworkMode(%d)", int(m))
	}
}

// Wire returns the STNM/RDNM encoding of the mode
func (m NetworkMode) Wire() (string, error) {
	switch m {
	case NetworkModeSimple:
		return "1", nil
	case NetworkModeTree:
		return "2", nil
	case NetworkModeMesh:
		return "3", nil
	default:
		return "", protocol.NewInvalidArgumentError(fmt.Sprintf("unknown network mode %v", m))
	}
}

// ParseNetworkMode converts "simple", "tree" or "mesh" to a NetworkMode
func ParseNetworkMode(s string) (NetworkMode, error) {
	switch strings.ToLower(s) {
	case "simple":
		return NetworkModeSimple, nil
	case "tree":
		return NetworkModeTree, nil
	case "mesh":
		return NetworkModeMesh, nil
	default:
		return NetworkModeUnknown, protocol.NewInvalidArgumentError(fmt.Sprintf("unknown network mode %q (use simple, tree or mesh)", s))
	}
}

// decodeNetworkMode maps an RDNM reply to a NetworkMode. Anything other than
// 1, 2 or 3 is a protocol error.
func decodeNetworkMode(reply string) (NetworkMode, error) {
	switch reply {
	case "1":
		return NetworkModeSimple, nil
	case "2":
		return NetworkModeTree, nil
	case "3":
		return NetworkModeMesh, nil
	default:
		return NetworkModeUnknown, protocol.NewProtocolError(protocol.VerbReadNetworkMode, fmt.Sprintf("unrecognized network mode %q", reply), nil)
	}
}

// State is a snapshot of what the host last read from or wrote to the
// module. It is returned by value and never mutated after it is handed out.
type State struct {
	Identity    string      `json:"identity"`
	NodeNumber  string      `json:"node_number"`
	GroupNumber string      `json:"group_number"`
	IOMode      IOMode      `json:"io_mode"`
	NetworkMode NetworkMode `json:"network_mode"`

	// AckMode mirrors the last ENAK/DSAK sent. Delivery confirmation and
	// retransmission (up to 10 attempts) happen inside the module firmware.
	AckMode bool `json:"ack_mode"`

	RefreshedAt time.Time `json:"refreshed_at"`
}

// IsMaster reports whether the cached node number is the master's
func (s State) IsMaster() bool {
	return s.NodeNumber == protocol.MasterNodeNumber
}

// ValidateNodeNumber checks that s is exactly four hexadecimal digits
func ValidateNodeNumber(s string) error {
	if len(s) != 4 {
		return protocol.NewInvalidArgumentError(fmt.Sprintf("node number must be 4 hex digits, got %q", s))
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return protocol.NewInvalidArgumentError(fmt.Sprintf("node number must be 4 hex digits, got %q", s))
		}
	}
	return nil
}

// MarshalText renders the mode by name in JSON and YAML output
func (m IOMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// MarshalText renders the mode by name in JSON and YAML output
func (m NetworkMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
