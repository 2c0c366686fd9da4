package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/im920/internal/config"
	"github.com/muurk/im920/internal/serial"
	"github.com/muurk/im920/internal/ui"
)

// Profile command flags
var (
	profileNickname  string
	profileHandshake time.Duration
	profileDefault   bool
)

func init() {
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	rootCmd.AddCommand(profileCmd)

	profileAddCmd.Flags().StringVar(&profileNickname, "nickname", "", "User-friendly name")
	profileAddCmd.Flags().DurationVar(&profileHandshake, "handshake-timeout", 0, "Slave registration wait (0 = default)")
	profileAddCmd.Flags().BoolVar(&profileDefault, "default", false, "Use this profile when no --port or --profile is given")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved connection profiles",
	Long: `Profiles keep the serial settings of a module under a name, together
with the serial ID, node and group last read from it.`,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Example: `  im920-cfg profile add bench --port /dev/ttyUSB0 --nickname "Bench master" --default
  im920-cfg profile add field --port COM3 --driver tarm --handshake-timeout 2m`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		flags := cmd.Flags()

		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		existing := registry.GetProfile(name)
		if existing == nil && !flags.Changed("port") {
			return fmt.Errorf("--port is required for a new profile")
		}

		profile := registry.EnsureProfile(name)
		if flags.Changed("port") {
			profile.Port = portName
		}
		if flags.Changed("baud") {
			profile.Baud = baudRate
		}
		if flags.Changed("driver") {
			profile.Driver = driverName
		}
		if flags.Changed("read-timeout") {
			profile.ReadTimeout = readTimeout
		}
		if flags.Changed("handshake-timeout") {
			profile.HandshakeTimeout = profileHandshake
		}
		if flags.Changed("nickname") {
			registry.SetProfileNickname(name, profileNickname)
		}
		if profileDefault {
			registry.Preferences.DefaultProfile = name
		}

		if err := profile.SerialConfig(registry.Preferences).Validate(); err != nil {
			if existing == nil {
				registry.RemoveProfile(name)
			}
			return err
		}

		if err := registry.Save(); err != nil {
			return err
		}

		path, _ := config.GetConfigPath()
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Profile saved", map[string]string{
			"Profile": name,
			"Port":    profile.Port,
			"File":    path,
		})
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		if outputFormat == "json" {
			return p.PrintJSON(registry.Profiles)
		}

		names := registry.ProfileNames()
		if len(names) == 0 {
			p.Println("No profiles saved. Add one with 'im920-cfg profile add <name> --port <port>'.")
			return nil
		}

		for _, name := range names {
			p.Print(formatProfile(name, registry.GetProfile(name), registry.Preferences))
		}
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if !registry.RemoveProfile(args[0]) {
			return fmt.Errorf("profile %q not found", args[0])
		}
		return registry.Save()
	},
}

// formatProfile renders one profile for 'profile list'
func formatProfile(name string, p *config.Profile, prefs *config.Preferences) string {
	cfg := p.SerialConfig(prefs)

	marker := ""
	if prefs != nil && prefs.DefaultProfile == name {
		marker = " (default)"
	}

	out := fmt.Sprintf("%s%s\n", name, marker)
	if p.Nickname != "" {
		out += fmt.Sprintf("  Nickname: %s\n", p.Nickname)
	}
	out += fmt.Sprintf("  Port:     %s @ %d baud (%s)\n", cfg.Device, cfg.Baud, driverLabel(cfg.Driver))
	if p.LastNode != "" || p.LastGroup != "" {
		out += fmt.Sprintf("  Module:   %s node %s group %s\n", orDash(p.LastIdentity), orDash(p.LastNode), orDash(p.LastGroup))
	}
	if !p.LastSeen.IsZero() {
		out += fmt.Sprintf("  Seen:     %s\n", p.LastSeen.Format("2006-01-02 15:04"))
	}
	return out
}

func driverLabel(driver string) string {
	if driver == serial.DriverTarm {
		return "tarm/serial"
	}
	return "go.bug.st/serial"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
