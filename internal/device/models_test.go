package device

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/muurk/im920/internal/protocol"
)

func TestParseIOMode(t *testing.T) {
	tests := []struct {
		in      string
		want    IOMode
		wantErr bool
	}{
		{"text", IOModeText, false},
		{"TEXT", IOModeText, false},
		{"str", IOModeText, false},
		{"hex", IOModeHex, false},
		{"binary", IOModeUnknown, true},
	}

	for _, tt := range tests {
		got, err := ParseIOMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseIOMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !protocol.IsInvalidArgument(err) {
			t.Errorf("ParseIOMode(%q) error should be invalid argument", tt.in)
		}
		if got != tt.want {
			t.Errorf("ParseIOMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseNetworkMode(t *testing.T) {
	tests := []struct {
		in      string
		want    NetworkMode
		wantErr bool
	}{
		{"simple", NetworkModeSimple, false},
		{"Tree", NetworkModeTree, false},
		{"mesh", NetworkModeMesh, false},
		{"star", NetworkModeUnknown, true},
	}

	for _, tt := range tests {
		got, err := ParseNetworkMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNetworkMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseNetworkMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecodeNetworkMode(t *testing.T) {
	for wire, want := range map[string]NetworkMode{"1": NetworkModeSimple, "2": NetworkModeTree, "3": NetworkModeMesh} {
		got, err := decodeNetworkMode(wire)
		if err != nil || got != want {
			t.Errorf("decodeNetworkMode(%q) = %v, %v", wire, got, err)
		}
	}

	for _, wire := range []string{"", "0", "4", "NG", "simple"} {
		if _, err := decodeNetworkMode(wire); !protocol.IsProtocolError(err) {
			t.Errorf("decodeNetworkMode(%q) error = %v, want protocol error", wire, err)
		}
	}
}

func TestValidateNodeNumber(t *testing.T) {
	valid := []string{"0001", "FFFF", "abcd", "00aB"}
	for _, n := range valid {
		if err := ValidateNodeNumber(n); err != nil {
			t.Errorf("ValidateNodeNumber(%q) error = %v", n, err)
		}
	}

	invalid := []string{"", "001", "00001", "000G", "00 1"}
	for _, n := range invalid {
		if err := ValidateNodeNumber(n); !protocol.IsInvalidArgument(err) {
			t.Errorf("ValidateNodeNumber(%q) error = %v, want invalid argument", n, err)
		}
	}
}

func TestStateJSON(t *testing.T) {
	state := State{
		Identity:    "0000A1B2",
		NodeNumber:  "0001",
		GroupNumber: "0000A1B2",
		IOMode:      IOModeText,
		NetworkMode: NetworkModeTree,
		AckMode:     true,
		RefreshedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	for _, want := range []string{`"io_mode":"text"`, `"network_mode":"tree"`, `"ack_mode":true`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s should contain %s", data, want)
		}
	}
}

func TestStateRoleAndFormatting(t *testing.T) {
	master := State{Identity: "0000A1B2", NodeNumber: "0001", GroupNumber: "0000A1B2", AckMode: true}
	slave := State{NodeNumber: "0002"}

	if master.Role() != "master" || slave.Role() != "slave" {
		t.Errorf("Role() = %s/%s, want master/slave", master.Role(), slave.Role())
	}

	detailed := master.FormatDetailed()
	for _, want := range []string{"Serial ID:    0000A1B2", "(master)", "ENABLED"} {
		if !strings.Contains(detailed, want) {
			t.Errorf("FormatDetailed() missing %q:\n%s", want, detailed)
		}
	}

	compact := slave.FormatCompact()
	if !strings.Contains(compact, "Module: (unknown)") || !strings.Contains(compact, "(slave)") {
		t.Errorf("FormatCompact() = %q", compact)
	}

	if got := master.Summary(); got != "IM920s 0000A1B2 node 0001 group 0000A1B2" {
		t.Errorf("Summary() = %q", got)
	}
}
