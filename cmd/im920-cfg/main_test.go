package main

import (
	"strings"
	"testing"
	"time"

	"github.com/muurk/im920/internal/config"
	"github.com/muurk/im920/internal/serial"
)

func TestParseOnOff(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"OFF", false, false},
		{"enable", true, false},
		{"true", true, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		got, err := parseOnOff(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOnOff(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseOnOff(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatProfile(t *testing.T) {
	prefs := &config.Preferences{DefaultBaud: serial.DefaultBaud, DefaultDriver: serial.DriverBugst, DefaultProfile: "bench"}
	p := &config.Profile{
		Port:      "/dev/ttyUSB0",
		Driver:    serial.DriverTarm,
		Nickname:  "Bench master",
		LastNode:  "0001",
		LastGroup: "0000A1B2",
		LastSeen:  time.Date(2025, 11, 25, 10, 30, 0, 0, time.UTC),
	}

	out := formatProfile("bench", p, prefs)
	for _, want := range []string{
		"bench (default)",
		"Nickname: Bench master",
		"/dev/ttyUSB0 @ 19200 baud (tarm/serial)",
		"node 0001 group 0000A1B2",
		"2025-11-25 10:30",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("formatProfile() missing %q:\n%s", want, out)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"info", "settings", "set-node", "set-group", "set-io", "set-network", "set-ack",
		"reset", "factory-reset", "send", "broadcast", "listen", "setup", "ports", "profile", "version",
	}

	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestResolveConnectionRequiresPort(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	portName, profileName = "", ""

	if _, _, _, _, err := resolveConnection(infoCmd); err == nil {
		t.Error("resolveConnection() should fail without --port or --profile")
	}
}
