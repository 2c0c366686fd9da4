package serial

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")

	if cfg.Device != "/dev/ttyUSB0" {
		t.Errorf("Device = %s, want /dev/ttyUSB0", cfg.Device)
	}
	if cfg.Baud != 19200 {
		t.Errorf("Baud = %d, want 19200", cfg.Baud)
	}
	if cfg.Driver != DriverBugst {
		t.Errorf("Driver = %s, want %s", cfg.Driver, DriverBugst)
	}
	if cfg.ReadTimeout != time.Second {
		t.Errorf("ReadTimeout = %v, want 1s", cfg.ReadTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"tarm driver", func(c *Config) { c.Driver = DriverTarm }, false},
		{"empty driver", func(c *Config) { c.Driver = "" }, false},
		{"missing device", func(c *Config) { c.Device = "" }, true},
		{"zero baud", func(c *Config) { c.Baud = 0 }, true},
		{"zero timeout", func(c *Config) { c.ReadTimeout = 0 }, true},
		{"unknown driver", func(c *Config) { c.Driver = "usb" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("/dev/ttyUSB0")
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Open(nil) should return an error")
	}
}

func TestOpenInvalidConfig(t *testing.T) {
	cfg := DefaultConfig("")
	if _, err := Open(cfg); err == nil {
		t.Error("Open() with empty device should return an error")
	}
}
