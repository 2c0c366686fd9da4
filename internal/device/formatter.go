package device

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the module state
func (s State) Summary() string {
	return fmt.Sprintf("IM920s %s node %s group %s", s.Identity, s.NodeNumber, s.GroupNumber)
}

// Role returns "master" or "slave" based on the node number
func (s State) Role() string {
	if s.IsMaster() {
		return "master"
	}
	return "slave"
}

// FormatDetailed returns a multi-section description of the module state
func (s State) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Module Identity ===\n")
	b.WriteString(fmt.Sprintf("Serial ID:    %s\n", orUnknown(s.Identity)))
	b.WriteString(fmt.Sprintf("Node Number:  %s (%s)\n", orUnknown(s.NodeNumber), s.Role()))
	b.WriteString(fmt.Sprintf("Group Number: %s\n", orUnknown(s.GroupNumber)))
	b.WriteString("\n")

	b.WriteString("=== Radio Settings ===\n")
	b.WriteString(fmt.Sprintf("Network Mode: %s\n", s.NetworkMode))
	b.WriteString(fmt.Sprintf("I/O Mode:     %s\n", s.IOMode))
	if s.AckMode {
		b.WriteString("Ack Mode:     ENABLED (firmware retransmits unicast up to 10 times)\n")
	} else {
		b.WriteString("Ack Mode:     DISABLED\n")
	}

	if !s.RefreshedAt.IsZero() {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Last refreshed: %s\n", s.RefreshedAt.Format("2006-01-02 15:04:05")))
	}

	return b.String()
}

// FormatCompact returns a two-line description suitable for lists
func (s State) FormatCompact() string {
	return fmt.Sprintf("Module: %s  Node: %s (%s)  Group: %s\nNetwork: %s  I/O: %s  Ack: %v\n",
		orUnknown(s.Identity), orUnknown(s.NodeNumber), s.Role(), orUnknown(s.GroupNumber),
		s.NetworkMode, s.IOMode, s.AckMode)
}

func orUnknown(v string) string {
	if v == "" {
		return "(unknown)"
	}
	return v
}
