// Package ui provides terminal output components for the im920-cfg CLI.
//
// Components follow a "run once and exit" pattern: they render styled output
// with Lipgloss and never require interaction, except for the spinner shown
// while a blocking module operation runs and the typed confirmation before a
// factory reset.
//
//   - Header: command banner showing operation name and parameters
//   - Progress: step list for multi-step module configuration
//   - Result: success/failure/warning boxes, with troubleshooting tips
//     derived from protocol errors
//   - RunWithSpinner: a Bubble Tea program animating a spinner while an
//     operation such as slave group registration blocks
//
// Printer picks styled or plain rendering depending on whether its writer is
// a terminal, so piped output stays grep-friendly.
//
// Zap logging is silent unless IM920_LOG_LEVEL is set, so curated UI output
// is not interleaved with log lines.
package ui
