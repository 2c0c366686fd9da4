// Package config provides user configuration management for the IM920 tools.
//
// This package manages a YAML-based configuration file that stores named
// serial profiles for IM920s modules (port, baud rate, driver, timeouts) and
// the identity, node and group numbers last read from each module.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux, macOS: $XDG_CONFIG_HOME/im920/config.yaml or $HOME/.config/im920/config.yaml
//   - Windows: %LOCALAPPDATA%\im920\config.yaml
//
// IM920_CONFIG names a different file. Unknown keys and profiles that could
// not open a port are rejected when the file is loaded.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetProfilePort("bench", "/dev/ttyUSB0", 19200, "bugst")
//	port, err := serial.OpenLine(registry.GetProfile("bench").SerialConfig(registry.Preferences))
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Durations are written as Go duration strings ("1s", "90s").
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File writes are protected by a mutex and go through a temporary file.
package config
