// Package protocoltest provides an in-memory IM920s for tests.
//
// Module implements protocol.Transport and answers commands the way the
// radio module does, so engine, device and handshake code can be exercised
// without hardware.
package protocoltest

import (
	"strings"

	"github.com/muurk/im920/internal/serial"
)

// Module is a simulated radio module. Zero values are not usable; create one
// with NewModule.
type Module struct {
	// Device state
	Identity    string
	NodeNumber  string
	GroupNumber string
	NetworkMode string
	CharIO      bool
	Ack         bool
	Writable    bool

	// MasterGroup is the group a slave adopts when registration completes
	MasterGroup string

	// SlaveLines are queued after the OK reply to STGN on a slave. The
	// default is the registration token alone.
	SlaveLines []string

	// SettingsLines are returned by RPRM
	SettingsLines []string

	// StallReads is the number of reads that time out before queued lines
	// are served, as when the module has not answered yet
	StallReads int

	// ReadErr and WriteErr make the corresponding operation fail
	ReadErr  error
	WriteErr error

	// Commands records every decoded command line written
	Commands []string

	// Flushes counts FlushInput calls
	Flushes int

	overrides map[string][]string
	queue     []string
}

// NewModule returns a module in its factory state with writing enabled
func NewModule() *Module {
	return &Module{
		Identity:    "0000A1B2",
		NodeNumber:  "0001",
		GroupNumber: "0000A1B2",
		NetworkMode: "1",
		CharIO:      true,
		Writable:    true,
		MasterGroup: "0000F00D",
		SlaveLines:  []string{"GRNOREGD"},
		SettingsLines: []string{
			"ID:0000A1B2,STNN:0001,STGN:0000A1B2,STCH:01",
			"STPO:3,STRT:2,ECIO:1,ENAK:1",
			"STNM:1,SSTM:0000,SWTM:0000",
			"DSRX:0,STCE:1",
		},
		overrides: make(map[string][]string),
	}
}

// Override makes verb answer with lines instead of its simulated reply.
// Calling it with no lines makes the verb go unanswered.
func (m *Module) Override(verb string, lines ...string) {
	m.overrides[verb] = lines
}

// Inject queues unsolicited lines, as if they arrived over the air
func (m *Module) Inject(lines ...string) {
	m.queue = append(m.queue, lines...)
}

// Pending returns the number of queued lines not yet read
func (m *Module) Pending() int {
	return len(m.queue)
}

// CommandVerbs returns the verb of every recorded command
func (m *Module) CommandVerbs() []string {
	verbs := make([]string, 0, len(m.Commands))
	for _, c := range m.Commands {
		verb, _, _ := strings.Cut(c, " ")
		verbs = append(verbs, verb)
	}
	return verbs
}

// FlushInput drops queued lines
func (m *Module) FlushInput() error {
	m.Flushes++
	m.queue = nil
	return nil
}

// Flush is a no-op
func (m *Module) Flush() error {
	return nil
}

// Write accepts one command frame and queues the module's reply
func (m *Module) Write(p []byte) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}

	line := strings.TrimRight(string(p), "\r\n")
	m.Commands = append(m.Commands, line)

	verb, arg, _ := strings.Cut(line, " ")
	if lines, ok := m.overrides[verb]; ok {
		m.queue = append(m.queue, lines...)
		return len(p), nil
	}

	m.queue = append(m.queue, m.respond(verb, arg)...)
	return len(p), nil
}

// ReadLine pops the next queued line with a CRLF terminator
func (m *Module) ReadLine() (string, error) {
	if m.StallReads > 0 {
		m.StallReads--
		return "", serial.ErrReadTimeout
	}
	if len(m.queue) == 0 {
		if m.ReadErr != nil {
			return "", m.ReadErr
		}
		return "", serial.ErrReadTimeout
	}
	line := m.queue[0]
	m.queue = m.queue[1:]
	return line + "\r\n", nil
}

// ReadLines pops up to max queued lines
func (m *Module) ReadLines(max int) ([]string, error) {
	var lines []string
	for max <= 0 || len(lines) < max {
		line, err := m.ReadLine()
		if err == serial.ErrReadTimeout {
			break
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (m *Module) respond(verb, arg string) []string {
	switch verb {
	case "ENWR":
		m.Writable = true
		return []string{"OK"}
	case "STNN":
		if !m.Writable || !isNodeNumber(arg) {
			return []string{"NG"}
		}
		m.NodeNumber = strings.ToUpper(arg)
		return []string{"OK"}
	case "RDNN":
		return []string{m.NodeNumber}
	case "STGN":
		if !m.Writable {
			return []string{"NG"}
		}
		if m.NodeNumber == "0001" {
			m.GroupNumber = m.Identity
			return []string{"OK"}
		}
		m.GroupNumber = m.MasterGroup
		return append([]string{"OK"}, m.SlaveLines...)
	case "RDGN":
		return []string{m.GroupNumber}
	case "RDID":
		return []string{m.Identity}
	case "SRST":
		m.Writable = false
		return []string{"OK"}
	case "PCLR":
		if !m.Writable {
			return []string{"NG"}
		}
		m.NodeNumber = "0001"
		m.GroupNumber = m.Identity
		m.NetworkMode = "1"
		m.Writable = false
		return []string{"OK"}
	case "ECIO":
		m.CharIO = true
		return []string{"OK"}
	case "DCIO":
		m.CharIO = false
		return []string{"OK"}
	case "TXDA", "TXDU":
		return []string{"OK"}
	case "RPRM":
		return append([]string(nil), m.SettingsLines...)
	case "STNM":
		if !m.Writable || arg < "1" || arg > "3" || len(arg) != 1 {
			return []string{"NG"}
		}
		m.NetworkMode = arg
		return []string{"OK"}
	case "RDNM":
		return []string{m.NetworkMode}
	case "ENAK":
		m.Ack = true
		return []string{"OK"}
	case "DSAK":
		m.Ack = false
		return []string{"OK"}
	default:
		return []string{"NG"}
	}
}

func isNodeNumber(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
