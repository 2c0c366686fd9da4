// Im920-cfg configures IM920s wireless modules over a serial line.
//
// It reads and changes module settings (node number, group, I/O mode,
// network mode, acknowledgment), runs the master/slave group registration,
// and sends or listens for radio messages. Connection settings can be kept
// in named profiles.
//
// Usage:
//
//	im920-cfg [command] [flags]
//
// See 'im920-cfg --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/im920/internal/logging"
	"github.com/muurk/im920/internal/protocol"
	"github.com/muurk/im920/internal/serial"
	"github.com/muurk/im920/internal/ui"
	"github.com/muurk/im920/internal/version"
)

// Connection and output flags shared by every command
var (
	portName     string
	baudRate     int
	driverName   string
	readTimeout  time.Duration
	profileName  string
	logLevel     string
	outputFormat string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logging.Sync()
	if err != nil {
		ui.NewPrinter(os.Stderr).PrintError(protocol.GetShortErrorMessage(err), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "im920-cfg",
	Short: "IM920s Wireless Module Configuration Utility",
	Long: `A utility for configuring IM920s wireless modules over a serial port.

Reads and changes module settings, registers slaves with their master,
and sends or receives radio messages.

Connection settings come from --port/--baud/--driver, or from a named
profile (see 'im920-cfg profile').`,
	Version:       version.Full(),
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Arguments are valid by now; runtime failures get a result box, not usage
		cmd.SilenceUsage = true

		if err := logging.Initialize(logLevel); err != nil {
			return err
		}

		switch outputFormat {
		case "detailed", "compact", "json":
		default:
			return fmt.Errorf("unknown output format %q (use detailed, compact or json)", outputFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&portName, "port", "p", "", "Serial port (e.g., /dev/ttyUSB0, COM3)")
	flags.IntVar(&baudRate, "baud", serial.DefaultBaud, "Baud rate")
	flags.StringVar(&driverName, "driver", serial.DriverBugst, "Serial driver (bugst, tarm)")
	flags.DurationVar(&readTimeout, "read-timeout", serial.DefaultReadTimeout, "Per-line read timeout")
	flags.StringVar(&profileName, "profile", "", "Use connection settings from a saved profile")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)
	flags.StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := ui.NewPrinter(cmd.OutOrStdout())
		if outputFormat == "json" {
			return p.PrintJSON(version.Get())
		}
		info := version.Get()
		p.Printf("im920-cfg %s (%s, %s)\n", version.Full(), info.GoVersion, info.Platform)
		return nil
	},
}
