package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Printer writes UI components to a writer. Styled boxes are used on a
// terminal; pipes and files get plain text.
type Printer struct {
	out   io.Writer
	width int
	plain bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
		plain: !IsTerminal(w),
	}
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Plain reports whether styling is disabled
func (p *Printer) Plain() bool {
	return p.plain
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	h := NewHeader(title, command, params).SetWidth(p.width)
	if p.plain {
		p.Println(h.RenderPlain())
		return
	}
	p.Println(h.Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.printResult(NewSuccessResult(title, details))
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details map[string]string) {
	p.printResult(NewWarningResult(title, details))
}

// PrintError prints an error result box with troubleshooting tips derived from err
func (p *Printer) PrintError(title string, err error) {
	p.printResult(NewFailureResult(title, err, nil))
}

// PrintJSON writes v as indented JSON
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintMessage prints one received radio message
func (p *Printer) PrintMessage(sender string, rssi int, payload string) {
	if p.plain {
		p.Printf("%s %d %s\n", sender, rssi, payload)
		return
	}
	meta := MessageMetaStyle.Render(fmt.Sprintf("[%s rssi=%d]", sender, rssi))
	p.Println(meta + " " + MessagePayloadStyle.Render(payload))
}

func (p *Printer) printResult(r *Result) {
	r.SetWidth(p.width)
	if p.plain {
		p.Print(r.RenderPlain())
		return
	}
	p.Println(r.Render())
}
