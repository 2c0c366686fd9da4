package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Operation is a blocking call run behind a spinner. It must return once
// ctx is done.
type Operation func(ctx context.Context) error

// operationDoneMsg tells the spinner program the operation has returned
type operationDoneMsg struct{}

// spinnerModel is a Bubble Tea model that animates until the operation ends
// or the user interrupts it.
type spinnerModel struct {
	spinner     spinner.Model
	label       string
	done        bool
	interrupted bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return spinnerModel{spinner: s, label: label}
}

// Init implements tea.Model
func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case operationDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.interrupted = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m spinnerModel) View() string {
	if m.done || m.interrupted {
		return ""
	}
	return fmt.Sprintf("  %s %s\n", m.spinner.View(), ProgressLabelStyle.UnsetPaddingLeft().Render(m.label))
}

// RunWithSpinner runs op while a spinner labelled label animates on out.
// Pressing ctrl+c cancels the context passed to op. When out is not a
// terminal the label is printed once and op runs without animation.
func RunWithSpinner(ctx context.Context, out io.Writer, label string, op Operation) error {
	if !IsTerminal(out) {
		_, _ = fmt.Fprintln(out, label+"...")
		return op(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSpinnerModel(label), tea.WithOutput(out))

	result := make(chan error, 1)
	go func() {
		err := op(ctx)
		result <- err
		p.Send(operationDoneMsg{})
	}()

	final, err := p.Run()
	if m, ok := final.(spinnerModel); err != nil || (ok && m.interrupted) {
		cancel()
	}
	return <-result
}
