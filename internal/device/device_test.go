package device

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/muurk/im920/internal/protocol"
	"github.com/muurk/im920/internal/protocol/protocoltest"
)

var testNow = time.Date(2025, 11, 25, 10, 30, 0, 0, time.UTC)

func newTestDevice(t *testing.T) (*Device, *protocoltest.Module) {
	t.Helper()
	module := protocoltest.NewModule()
	d := New(protocol.NewEngine(module, "test"), DefaultOptions())
	d.now = func() time.Time { return testNow }
	return d, module
}

func TestNewAppliesDefaults(t *testing.T) {
	d := New(protocol.NewEngine(protocoltest.NewModule(), "test"), Options{})

	if d.opts.HandshakeTimeout != DefaultHandshakeTimeout {
		t.Errorf("HandshakeTimeout = %v, want %v", d.opts.HandshakeTimeout, DefaultHandshakeTimeout)
	}
	if d.opts.MaxSettingsLines != protocol.DefaultMaxSettingsLines {
		t.Errorf("MaxSettingsLines = %d, want %d", d.opts.MaxSettingsLines, protocol.DefaultMaxSettingsLines)
	}
}

func TestInitialize(t *testing.T) {
	d, module := newTestDevice(t)
	module.Ack = false
	module.CharIO = false

	state, err := d.Initialize()
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	wantVerbs := []string{"ENWR", "ECIO", "RDGN", "RDNN", "RDID", "ENAK"}
	if got := module.CommandVerbs(); !reflect.DeepEqual(got, wantVerbs) {
		t.Errorf("commands = %v, want %v", got, wantVerbs)
	}

	if state.Identity != module.Identity {
		t.Errorf("Identity = %s, want %s", state.Identity, module.Identity)
	}
	if state.NodeNumber != "0001" {
		t.Errorf("NodeNumber = %s, want 0001", state.NodeNumber)
	}
	if state.IOMode != IOModeText {
		t.Errorf("IOMode = %v, want text", state.IOMode)
	}
	if !state.AckMode || !module.Ack {
		t.Error("ack mode should be enabled on both sides")
	}
}

func TestReadQueriesUpdateCache(t *testing.T) {
	d, module := newTestDevice(t)
	module.NodeNumber = "00AB"
	module.GroupNumber = "12345678"

	if node, err := d.ReadNodeNumber(); err != nil || node != "00AB" {
		t.Fatalf("ReadNodeNumber() = %q, %v", node, err)
	}
	if group, err := d.ReadGroupNumber(); err != nil || group != "12345678" {
		t.Fatalf("ReadGroupNumber() = %q, %v", group, err)
	}
	if id, err := d.ReadIdentity(); err != nil || id != module.Identity {
		t.Fatalf("ReadIdentity() = %q, %v", id, err)
	}

	state := d.State()
	if state.NodeNumber != "00AB" || state.GroupNumber != "12345678" || state.Identity != module.Identity {
		t.Errorf("State() = %+v", state)
	}
	if !state.RefreshedAt.Equal(testNow) {
		t.Errorf("RefreshedAt = %v, want %v", state.RefreshedAt, testNow)
	}
}

func TestReadNodeNumberMalformed(t *testing.T) {
	d, module := newTestDevice(t)
	module.Override(protocol.VerbReadNodeNumber, "hello")

	_, err := d.ReadNodeNumber()
	if !protocol.IsProtocolError(err) {
		t.Fatalf("ReadNodeNumber() error = %v, want protocol error", err)
	}
	if d.State().NodeNumber != "" {
		t.Error("cache should not hold a malformed node number")
	}
}

func TestReadEmptyReplyIsProtocolError(t *testing.T) {
	d, module := newTestDevice(t)
	module.Override(protocol.VerbReadGroupNumber, "")

	if _, err := d.ReadGroupNumber(); !protocol.IsProtocolError(err) {
		t.Errorf("ReadGroupNumber() error = %v, want protocol error", err)
	}
}

func TestSetNodeNumber(t *testing.T) {
	d, module := newTestDevice(t)

	reply, err := d.SetNodeNumber("0002")
	if err != nil {
		t.Fatalf("SetNodeNumber() error = %v", err)
	}
	if reply != "OK" {
		t.Errorf("SetNodeNumber() reply = %q, want OK", reply)
	}

	if got := module.CommandVerbs(); !reflect.DeepEqual(got, []string{"STNN", "RDNN"}) {
		t.Errorf("commands = %v, want [STNN RDNN]", got)
	}

	node, err := d.ReadNodeNumber()
	if err != nil {
		t.Fatalf("ReadNodeNumber() error = %v", err)
	}
	if node != "0002" {
		t.Errorf("ReadNodeNumber() = %s, want 0002", node)
	}
}

func TestSetNodeNumberCachesReadBackValue(t *testing.T) {
	d, module := newTestDevice(t)

	// The module normalizes to upper case; the cache must reflect that
	if _, err := d.SetNodeNumber("00ab"); err != nil {
		t.Fatalf("SetNodeNumber() error = %v", err)
	}
	if d.State().NodeNumber != "00AB" {
		t.Errorf("cached node = %s, want 00AB", d.State().NodeNumber)
	}
	if module.NodeNumber != "00AB" {
		t.Errorf("module node = %s, want 00AB", module.NodeNumber)
	}
}

func TestSetNodeNumberInvalid(t *testing.T) {
	for _, node := range []string{"", "1", "00001", "00G1", "0 01"} {
		d, module := newTestDevice(t)
		_, err := d.SetNodeNumber(node)
		if !protocol.IsInvalidArgument(err) {
			t.Errorf("SetNodeNumber(%q) error = %v, want invalid argument", node, err)
		}
		if len(module.Commands) != 0 {
			t.Errorf("SetNodeNumber(%q) should not reach the module", node)
		}
	}
}

func TestSetNodeNumberRejected(t *testing.T) {
	d, module := newTestDevice(t)
	module.Writable = false

	_, err := d.SetNodeNumber("0002")
	if !protocol.IsProtocolError(err) {
		t.Fatalf("SetNodeNumber() error = %v, want protocol error", err)
	}
}

func TestSetIOMode(t *testing.T) {
	tests := []struct {
		mode     IOMode
		wantVerb string
	}{
		{IOModeText, "ECIO"},
		{IOModeHex, "DCIO"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			d, module := newTestDevice(t)
			if err := d.SetIOMode(tt.mode); err != nil {
				t.Fatalf("SetIOMode() error = %v", err)
			}
			if module.Commands[0] != tt.wantVerb {
				t.Errorf("command = %s, want %s", module.Commands[0], tt.wantVerb)
			}
			if d.State().IOMode != tt.mode {
				t.Errorf("cached mode = %v, want %v", d.State().IOMode, tt.mode)
			}
		})
	}
}

func TestSetIOModeInvalid(t *testing.T) {
	d, module := newTestDevice(t)

	for _, mode := range []IOMode{IOModeUnknown, IOMode(42)} {
		if err := d.SetIOMode(mode); !protocol.IsInvalidArgument(err) {
			t.Errorf("SetIOMode(%v) error = %v, want invalid argument", mode, err)
		}
	}
	if len(module.Commands) != 0 {
		t.Error("invalid modes should not reach the module")
	}
}

func TestNetworkMode(t *testing.T) {
	tests := []struct {
		mode NetworkMode
		wire string
	}{
		{NetworkModeSimple, "1"},
		{NetworkModeTree, "2"},
		{NetworkModeMesh, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			d, module := newTestDevice(t)

			if err := d.SetNetworkMode(tt.mode); err != nil {
				t.Fatalf("SetNetworkMode() error = %v", err)
			}
			if module.Commands[0] != "STNM "+tt.wire {
				t.Errorf("command = %q, want %q", module.Commands[0], "STNM "+tt.wire)
			}

			got, err := d.ReadNetworkMode()
			if err != nil {
				t.Fatalf("ReadNetworkMode() error = %v", err)
			}
			if got != tt.mode {
				t.Errorf("ReadNetworkMode() = %v, want %v", got, tt.mode)
			}
		})
	}
}

func TestReadNetworkModeUnrecognized(t *testing.T) {
	d, module := newTestDevice(t)
	module.Override(protocol.VerbReadNetworkMode, "7")

	_, err := d.ReadNetworkMode()
	if !protocol.IsProtocolError(err) {
		t.Fatalf("ReadNetworkMode() error = %v, want protocol error", err)
	}
}

func TestSetNetworkModeInvalid(t *testing.T) {
	d, module := newTestDevice(t)

	if err := d.SetNetworkMode(NetworkModeUnknown); !protocol.IsInvalidArgument(err) {
		t.Errorf("SetNetworkMode(unknown) error = %v, want invalid argument", err)
	}
	if len(module.Commands) != 0 {
		t.Error("invalid mode should not reach the module")
	}
}

func TestSetAckMode(t *testing.T) {
	d, module := newTestDevice(t)

	if err := d.SetAckMode(true); err != nil {
		t.Fatalf("SetAckMode(true) error = %v", err)
	}
	if !d.State().AckMode || !module.Ack {
		t.Error("ack should be enabled")
	}

	if err := d.SetAckMode(false); err != nil {
		t.Fatalf("SetAckMode(false) error = %v", err)
	}
	if d.State().AckMode || module.Ack {
		t.Error("ack should be disabled")
	}

	if got := module.CommandVerbs(); !reflect.DeepEqual(got, []string{"ENAK", "DSAK"}) {
		t.Errorf("commands = %v", got)
	}
}

func TestEnableWritingIdempotent(t *testing.T) {
	d, _ := newTestDevice(t)
	before := d.State()

	first, err := d.EnableWriting()
	if err != nil {
		t.Fatalf("EnableWriting() error = %v", err)
	}
	second, err := d.EnableWriting()
	if err != nil {
		t.Fatalf("EnableWriting() error = %v", err)
	}

	if first != second {
		t.Errorf("replies differ: %q vs %q", first, second)
	}
	if d.State() != before {
		t.Error("EnableWriting should not change cached state")
	}
}

func TestResetSystem(t *testing.T) {
	d, module := newTestDevice(t)

	reply, err := d.ResetSystem()
	if err != nil {
		t.Fatalf("ResetSystem() error = %v", err)
	}
	if reply != "OK" {
		t.Errorf("ResetSystem() = %q, want OK", reply)
	}
	if got := module.CommandVerbs(); !reflect.DeepEqual(got, []string{"SRST", "ENWR"}) {
		t.Errorf("commands = %v, want [SRST ENWR]", got)
	}
	if !module.Writable {
		t.Error("module should be writable again after reset")
	}
}

func TestResetSettings(t *testing.T) {
	d, module := newTestDevice(t)
	if _, err := d.SetNodeNumber("0002"); err != nil {
		t.Fatalf("SetNodeNumber() error = %v", err)
	}
	if err := d.SetAckMode(true); err != nil {
		t.Fatalf("SetAckMode() error = %v", err)
	}
	module.Commands = nil

	if _, err := d.ResetSettings(); err != nil {
		t.Fatalf("ResetSettings() error = %v", err)
	}

	if got := module.CommandVerbs(); !reflect.DeepEqual(got, []string{"PCLR", "RDNN", "RDGN", "ENWR"}) {
		t.Errorf("commands = %v, want [PCLR RDNN RDGN ENWR]", got)
	}

	state := d.State()
	if state.NodeNumber != "0001" {
		t.Errorf("NodeNumber = %s, want 0001", state.NodeNumber)
	}
	if state.GroupNumber != module.Identity {
		t.Errorf("GroupNumber = %s, want %s", state.GroupNumber, module.Identity)
	}
	if state.AckMode {
		t.Error("factory reset should clear the cached ack mode")
	}
	if !module.Writable {
		t.Error("writing should be re-enabled")
	}
}

func TestRefresh(t *testing.T) {
	d, module := newTestDevice(t)
	module.NodeNumber = "0003"
	module.NetworkMode = "3"

	before := d.State()
	state, err := d.Refresh()
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if state.NodeNumber != "0003" || state.NetworkMode != NetworkModeMesh || state.Identity != module.Identity {
		t.Errorf("Refresh() = %+v", state)
	}
	if before.NodeNumber != "" {
		t.Error("earlier snapshot must not change")
	}
	if d.State() != state {
		t.Error("State() should return the refreshed snapshot")
	}
}

func TestReadAllSettings(t *testing.T) {
	d, module := newTestDevice(t)

	// Stale inbound traffic must not show up in the dump
	module.Inject("00,0002,1A:stale")

	lines, err := d.ReadAllSettings()
	if err != nil {
		t.Fatalf("ReadAllSettings() error = %v", err)
	}
	if !reflect.DeepEqual(lines, module.SettingsLines) {
		t.Errorf("ReadAllSettings() = %q, want %q", lines, module.SettingsLines)
	}
}

func TestReadAllSettingsCap(t *testing.T) {
	module := protocoltest.NewModule()
	d := New(protocol.NewEngine(module, "test"), Options{MaxSettingsLines: 3})

	lines, err := d.ReadAllSettings()
	if err != nil {
		t.Fatalf("ReadAllSettings() error = %v", err)
	}
	if len(lines) != 3 {
		t.Errorf("ReadAllSettings() returned %d lines, want 3", len(lines))
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	d, module := newTestDevice(t)
	boom := errors.New("unplugged")
	module.WriteErr = boom

	_, err := d.ReadIdentity()
	if !protocol.IsTransportError(err) || !errors.Is(err, boom) {
		t.Errorf("ReadIdentity() error = %v, want transport error wrapping cause", err)
	}
}

func TestCloseWithoutPort(t *testing.T) {
	d, _ := newTestDevice(t)
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
