package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/im920/internal/device"
	"github.com/muurk/im920/internal/serial"
	"github.com/muurk/im920/internal/ui"
)

// Command flags
var (
	groupTimeout  time.Duration
	assumeYes     bool
	listenCount   int
	listenFor     time.Duration
	setupNode     string
	setupNetwork  string
	setupRegister bool
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(setNodeCmd)
	rootCmd.AddCommand(setGroupCmd)
	rootCmd.AddCommand(setIOCmd)
	rootCmd.AddCommand(setNetworkCmd)
	rootCmd.AddCommand(setAckCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(factoryResetCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(broadcastCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(portsCmd)
}

// infoCmd displays the module identity and settings
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show module identity and settings",
	Long: `Read the serial ID, node number, group number and network mode from
the module and display them.`,
	Example: `  im920-cfg info --port /dev/ttyUSB0
  im920-cfg info --profile bench --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		state, err := s.dev.Refresh()
		if err != nil {
			return err
		}

		switch outputFormat {
		case "json":
			return s.printer.PrintJSON(state)
		case "compact":
			s.printer.Print(state.FormatCompact())
		default:
			s.printer.Print(state.FormatDetailed())
		}
		return nil
	},
}

// settingsCmd dumps every parameter line (RPRM)
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Dump all module parameters",
	Long: `Ask the module for its full parameter listing (RPRM) and print the
lines it returns.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		lines, err := s.dev.ReadAllSettings()
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return s.printer.PrintJSON(lines)
		}
		for _, line := range lines {
			s.printer.Println(line)
		}
		return nil
	},
}

// setNodeCmd sets the node number
var setNodeCmd = &cobra.Command{
	Use:   "set-node <node>",
	Short: "Set the node number",
	Long: `Set the module's node number (4 hex digits) and read it back.

Node 0001 makes the module the master of its group.`,
	Example: `  # Make this module the master
  im920-cfg set-node 0001 --port /dev/ttyUSB0

  # Make this module a slave
  im920-cfg set-node 0002 --port /dev/ttyUSB1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := device.ValidateNodeNumber(args[0]); err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		s.header("Set node number", "im920-cfg set-node", map[string]string{"Node": args[0]})

		if _, err := s.dev.EnableWriting(); err != nil {
			return err
		}
		node, err := s.dev.SetNodeNumber(args[0])
		if err != nil {
			return err
		}

		return s.done("Node number set", map[string]string{
			"Node": node,
			"Role": s.dev.State().Role(),
		})
	},
}

// setGroupCmd runs group registration
var setGroupCmd = &cobra.Command{
	Use:   "set-group",
	Short: "Register the module with its group",
	Long: `Run group registration (STGN).

On the master (node 0001) the module takes its own serial ID as group
number. On a slave the module waits for the master and adopts the master's
group; keep the slave within about 50cm of the master while this runs.`,
	Example: `  # Master first
  im920-cfg set-group --port /dev/ttyUSB0

  # Then each slave, giving it up to two minutes
  im920-cfg set-group --port /dev/ttyUSB1 --timeout 2m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if _, err := s.dev.ReadNodeNumber(); err != nil {
			return err
		}
		if _, err := s.dev.EnableWriting(); err != nil {
			return err
		}

		role := s.dev.State().Role()
		s.header("Group registration", "im920-cfg set-group", map[string]string{"Role": role})

		group, err := registerGroup(cmd.Context(), s)
		if err != nil {
			return err
		}

		return s.done("Group registered", map[string]string{
			"Group": group,
			"Role":  role,
		})
	},
}

func init() {
	setGroupCmd.Flags().DurationVar(&groupTimeout, "timeout", device.DefaultHandshakeTimeout, "How long a slave waits for the master")
}

// registerGroup runs SetGroupNumber, behind a spinner on a slave
func registerGroup(ctx context.Context, s *session) (string, error) {
	if groupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, groupTimeout)
		defer cancel()
	}

	if s.dev.State().IsMaster() {
		return s.dev.SetGroupNumber(ctx)
	}

	var group string
	err := ui.RunWithSpinner(ctx, s.printer.Writer(), "Waiting for the master to accept registration", func(ctx context.Context) error {
		var err error
		group, err = s.dev.SetGroupNumber(ctx)
		return err
	})
	return group, err
}

// setIOCmd selects text or hex I/O
var setIOCmd = &cobra.Command{
	Use:       "set-io <text|hex>",
	Short:     "Set the character I/O mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"text", "hex"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := device.ParseIOMode(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.dev.SetIOMode(mode); err != nil {
			return err
		}
		return s.done("I/O mode set", map[string]string{"I/O Mode": mode.String()})
	},
}

// setNetworkCmd selects the network topology
var setNetworkCmd = &cobra.Command{
	Use:       "set-network <simple|tree|mesh>",
	Short:     "Set the network mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"simple", "tree", "mesh"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := device.ParseNetworkMode(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if _, err := s.dev.EnableWriting(); err != nil {
			return err
		}
		if err := s.dev.SetNetworkMode(mode); err != nil {
			return err
		}

		// Read back so a silently ignored STNM is noticed
		actual, err := s.dev.ReadNetworkMode()
		if err != nil {
			return err
		}
		return s.done("Network mode set", map[string]string{"Network Mode": actual.String()})
	},
}

// setAckCmd toggles delivery acknowledgment
var setAckCmd = &cobra.Command{
	Use:   "set-ack <on|off>",
	Short: "Enable or disable delivery acknowledgment",
	Long: `Enable (ENAK) or disable (DSAK) acknowledgment of unicast messages.

With acknowledgment enabled the module retransmits an unconfirmed message
up to 10 times on its own.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseOnOff(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.dev.SetAckMode(enabled); err != nil {
			return err
		}

		state := "disabled"
		if enabled {
			state = "enabled"
		}
		return s.done("Ack mode "+state, map[string]string{"Ack Mode": state})
	},
}

// resetCmd soft-resets the module
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Soft-reset the module",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		reply, err := s.dev.ResetSystem()
		if err != nil {
			return err
		}
		return s.done("Module reset", map[string]string{"Enable Writing": reply})
	},
}

// factoryResetCmd restores factory settings
var factoryResetCmd = &cobra.Command{
	Use:   "factory-reset",
	Short: "Restore factory settings",
	Long: `Clear every stored parameter (PCLR). The node number returns to 0001
and the module leaves its group.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if !assumeYes && !ui.FactoryResetConfirmation(cmd.InOrStdin(), cmd.OutOrStdout()) {
			return nil
		}

		if _, err := s.dev.EnableWriting(); err != nil {
			return err
		}
		if _, err := s.dev.ResetSettings(); err != nil {
			return err
		}

		state := s.dev.State()
		return s.done("Factory settings restored", map[string]string{
			"Node":  state.NodeNumber,
			"Group": state.GroupNumber,
		})
	},
}

func init() {
	factoryResetCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}

// sendCmd sends a unicast message
var sendCmd = &cobra.Command{
	Use:   "send <node> <message...>",
	Short: "Send a message to one node",
	Example: `  im920-cfg send 0002 hello --port /dev/ttyUSB0`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := device.ValidateNodeNumber(args[0]); err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		payload := strings.Join(args[1:], " ")
		reply, err := s.dev.SendUnicast(args[0], payload)
		if err != nil {
			return err
		}
		return s.done("Message sent", map[string]string{"To": args[0], "Reply": reply})
	},
}

// broadcastCmd sends a message to every node in range
var broadcastCmd = &cobra.Command{
	Use:   "broadcast <message...>",
	Short: "Broadcast a message to every node in range",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		reply, err := s.dev.SendBroadcast(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return s.done("Message broadcast", map[string]string{"Reply": reply})
	},
}

// listenCmd prints received messages
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print messages received by the module",
	Long: `Print every message the module receives until interrupted, --count
messages were received, or --duration elapsed.

With --format json each message is printed as one JSON object per line.`,
	Example: `  im920-cfg listen --port /dev/ttyUSB0
  im920-cfg listen --profile bench --count 10 --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		ctx := cmd.Context()
		if listenFor > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, listenFor)
			defer cancel()
		}

		enc := json.NewEncoder(s.printer.Writer())
		received := 0
		for ctx.Err() == nil && (listenCount <= 0 || received < listenCount) {
			msg, ok, err := s.dev.ReadMessage()
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			received++

			if outputFormat == "json" {
				if err := enc.Encode(msg); err != nil {
					return err
				}
				continue
			}
			s.printer.PrintMessage(msg.Sender, msg.RSSI, msg.Payload)
		}

		if received == 0 && listenFor > 0 && outputFormat != "json" {
			s.printer.PrintWarning("No messages received", map[string]string{
				"Port":     s.serial.Device,
				"Listened": listenFor.String(),
			})
		}
		return nil
	},
}

func init() {
	listenCmd.Flags().IntVarP(&listenCount, "count", "n", 0, "Stop after this many messages (0 = no limit)")
	listenCmd.Flags().DurationVar(&listenFor, "duration", 0, "Stop after this long (0 = until interrupted)")
}

// setupCmd prepares a module in one go
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Initialize a module and optionally set node, network and group",
	Long: `Prepare a module for use: enable writing, select text I/O, load its
identity and enable acknowledgment. Optionally set the node number and
network mode and run group registration.`,
	Example: `  # Master
  im920-cfg setup --node 0001 --register --port /dev/ttyUSB0

  # Slave
  im920-cfg setup --node 0002 --network tree --register --port /dev/ttyUSB1`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&setupNode, "node", "", "Node number to set (4 hex digits)")
	setupCmd.Flags().StringVar(&setupNetwork, "network", "", "Network mode to set (simple, tree, mesh)")
	setupCmd.Flags().BoolVar(&setupRegister, "register", false, "Run group registration")
	setupCmd.Flags().DurationVar(&groupTimeout, "timeout", device.DefaultHandshakeTimeout, "How long a slave waits for the master")
}

func runSetup(cmd *cobra.Command, args []string) error {
	if setupNode != "" {
		if err := device.ValidateNodeNumber(setupNode); err != nil {
			return err
		}
	}
	var network device.NetworkMode
	if setupNetwork != "" {
		var err error
		if network, err = device.ParseNetworkMode(setupNetwork); err != nil {
			return err
		}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	s.header("Module setup", "im920-cfg setup", nil)

	progress := ui.NewProgress("", "Initialize module", "Set node number", "Set network mode", "Register group")
	step := func(n int, skip bool, run func() (string, error)) error {
		if skip {
			progress.SkipStep(n, "not requested")
		} else {
			progress.StartStep(n)
			note, err := run()
			if err != nil {
				progress.FailStep(n, "")
				s.printStep(progress, n)
				return err
			}
			progress.CompleteStep(n, note)
		}
		s.printStep(progress, n)
		return nil
	}

	if err := step(1, false, func() (string, error) {
		state, err := s.dev.Initialize()
		return state.Identity, err
	}); err != nil {
		return err
	}

	if err := step(2, setupNode == "", func() (string, error) {
		node, err := s.dev.SetNodeNumber(setupNode)
		return "node " + node, err
	}); err != nil {
		return err
	}

	if err := step(3, setupNetwork == "", func() (string, error) {
		return network.String(), s.dev.SetNetworkMode(network)
	}); err != nil {
		return err
	}

	if err := step(4, !setupRegister, func() (string, error) {
		group, err := registerGroup(cmd.Context(), s)
		return "group " + group, err
	}); err != nil {
		return err
	}

	state := s.dev.State()
	if outputFormat == "json" {
		return s.printer.PrintJSON(state)
	}
	s.printer.Newline()
	s.printer.PrintSuccess("Module ready", map[string]string{
		"Serial ID": state.Identity,
		"Node":      state.NodeNumber,
		"Group":     state.GroupNumber,
		"Role":      state.Role(),
	})
	return nil
}

// printStep prints one finished step line
func (s *session) printStep(p *ui.Progress, n int) {
	if outputFormat == "json" {
		return
	}
	s.printer.Println(p.RenderStep(n))
}

// portsCmd lists serial ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.ListPorts()
		if err != nil {
			return err
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		if outputFormat == "json" {
			return p.PrintJSON(ports)
		}
		if len(ports) == 0 {
			p.Println("No serial ports found.")
			return nil
		}
		for _, port := range ports {
			p.Println(port)
		}
		return nil
	},
}

// parseOnOff accepts on/off as well as the strconv.ParseBool forms
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "enable", "enabled":
		return true, nil
	case "off", "disable", "disabled":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid value %q (use on or off)", s)
	}
	return v, nil
}
