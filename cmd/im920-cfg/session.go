package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/im920/internal/config"
	"github.com/muurk/im920/internal/device"
	"github.com/muurk/im920/internal/logging"
	"github.com/muurk/im920/internal/serial"
	"github.com/muurk/im920/internal/ui"
)

// session is one open module plus the profile it was reached through
type session struct {
	dev      *device.Device
	printer  *ui.Printer
	serial   *serial.Config
	registry *config.Registry
	profile  string
}

// resolveConnection merges the selected profile, the preferences and the
// explicitly set flags into a port configuration. Flags win.
func resolveConnection(cmd *cobra.Command) (*serial.Config, device.Options, *config.Registry, string, error) {
	opts := device.DefaultOptions()

	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, opts, nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}

	name := profileName
	if name == "" && portName == "" && registry.Preferences != nil {
		name = registry.Preferences.DefaultProfile
	}

	var cfg *serial.Config
	if name != "" {
		profile := registry.GetProfile(name)
		if profile == nil {
			return nil, opts, nil, "", fmt.Errorf("profile %q not found (see 'im920-cfg profile list')", name)
		}
		cfg = profile.SerialConfig(registry.Preferences)
		if profile.HandshakeTimeout > 0 {
			opts.HandshakeTimeout = profile.HandshakeTimeout
		}
	} else {
		cfg = (&config.Profile{}).SerialConfig(registry.Preferences)
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Device = portName
	}
	if flags.Changed("baud") {
		cfg.Baud = baudRate
	}
	if flags.Changed("driver") {
		cfg.Driver = driverName
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout = readTimeout
	}

	if cfg.Device == "" {
		return nil, opts, nil, "", fmt.Errorf("no serial port given: use --port or --profile (run 'im920-cfg ports' to list ports)")
	}
	return cfg, opts, registry, name, nil
}

// openSession opens the module selected by the flags
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, opts, registry, name, err := resolveConnection(cmd)
	if err != nil {
		return nil, err
	}

	logging.Debug("Opening module",
		zap.String("port", cfg.Device),
		zap.Int("baud", cfg.Baud),
		zap.String("driver", cfg.Driver),
		zap.String("profile", name),
	)

	dev, err := device.Open(cfg, opts)
	if err != nil {
		return nil, err
	}

	return &session{
		dev:      dev,
		printer:  ui.NewPrinter(cmd.OutOrStdout()),
		serial:   cfg,
		registry: registry,
		profile:  name,
	}, nil
}

// close records what was learned about the module in its profile and
// releases the port
func (s *session) close() {
	if s.profile != "" {
		state := s.dev.State()
		s.registry.UpdateProfileLastSeen(s.profile, state.Identity, state.NodeNumber, state.GroupNumber)
		if err := s.registry.Save(); err != nil {
			logging.Warn("Failed to save profile", zap.String("profile", s.profile), zap.Error(err))
		}
	}

	if err := s.dev.Close(); err != nil {
		logging.Warn("Failed to close port", zap.String("port", s.serial.Device), zap.Error(err))
	}
}

// header prints the command banner unless JSON output was requested
func (s *session) header(title, command string, params map[string]string) {
	if outputFormat == "json" {
		return
	}
	if params == nil {
		params = make(map[string]string)
	}
	params["Port"] = s.serial.Device
	if s.profile != "" {
		params["Profile"] = s.profile
	}
	s.printer.PrintHeader(title, command, params)
}

// done prints a success box, or the details as JSON
func (s *session) done(title string, details map[string]string) error {
	if outputFormat == "json" {
		return s.printer.PrintJSON(details)
	}
	s.printer.PrintSuccess(title, details)
	return nil
}
