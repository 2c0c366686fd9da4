package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates the serial channel itself failed (port closed, I/O error)
	ErrTypeTransport ErrorType = iota
	// ErrTypeTimeout indicates no reply arrived within the read timeout
	ErrTypeTimeout
	// ErrTypeEncoding indicates the caller supplied a command that cannot be framed
	ErrTypeEncoding
	// ErrTypeProtocol indicates a reply or inbound frame with an unexpected shape
	ErrTypeProtocol
	// ErrTypeInvalidArgument indicates an unrecognized enum or malformed value
	ErrTypeInvalidArgument
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeEncoding:
		return "Encoding Error"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeInvalidArgument:
		return "Invalid Argument"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error represents a failure while talking to the radio module
type Error struct {
	Type      ErrorType // Category of error
	Verb      string    // Command verb involved (if any)
	Message   string    // Human-readable error message
	Err       error     // Underlying error (if any)
	Retryable bool      // Whether the caller may retry
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	if e.Verb != "" {
		b.WriteString(" [")
		b.WriteString(e.Verb)
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error. Transport errors are fatal.
func NewTransportError(verb, message string, err error) *Error {
	return &Error{
		Type:    ErrTypeTransport,
		Verb:    verb,
		Message: message,
		Err:     err,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(verb, message string, err error) *Error {
	return &Error{
		Type:      ErrTypeTimeout,
		Verb:      verb,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewEncodingError creates an encoding error
func NewEncodingError(verb, message string) *Error {
	return &Error{
		Type:    ErrTypeEncoding,
		Verb:    verb,
		Message: message,
	}
}

// NewProtocolError creates a protocol error
func NewProtocolError(verb, message string, err error) *Error {
	return &Error{
		Type:    ErrTypeProtocol,
		Verb:    verb,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgumentError creates an invalid argument error
func NewInvalidArgumentError(message string) *Error {
	return &Error{
		Type:    ErrTypeInvalidArgument,
		Message: message,
	}
}

func errorType(err error) (ErrorType, bool) {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Type, true
	}
	return 0, false
}

func isType(err error, want ErrorType) bool {
	t, ok := errorType(err)
	return ok && t == want
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool {
	return isType(err, ErrTypeTransport)
}

// IsTimeout checks if an error is a timeout
func IsTimeout(err error) bool {
	return isType(err, ErrTypeTimeout)
}

// IsEncodingError checks if an error is an encoding error
func IsEncodingError(err error) bool {
	return isType(err, ErrTypeEncoding)
}

// IsProtocolError checks if an error is a protocol error
func IsProtocolError(err error) bool {
	return isType(err, ErrTypeProtocol)
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return isType(err, ErrTypeInvalidArgument)
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Retryable
	}
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var pErr *Error
	if !errors.As(err, &pErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch pErr.Type {
	case ErrTypeTransport:
		return strings.Join([]string{
			"The serial port could not be used.",
			"Troubleshooting:",
			"  • Check that the module is plugged in",
			"  • Verify the port name (run 'im920-cfg ports')",
			"  • Make sure no other program has the port open",
			"  • Check that your user may access the device (dialout group)",
		}, "\n")

	case ErrTypeTimeout:
		return strings.Join([]string{
			"The module did not answer in time.",
			"Troubleshooting:",
			"  • Verify the baud rate (factory default is 19200)",
			"  • Reset the module and try again",
			"  • For group registration, place slaves within 50cm of the master",
		}, "\n")

	case ErrTypeProtocol:
		return strings.Join([]string{
			"The module answered with something unexpected.",
			"Troubleshooting:",
			"  • Make sure the module is in text I/O mode ('im920-cfg set-io text')",
			"  • Enable writing after a reset before changing settings",
			"  • Run with IM920_LOG_LEVEL=debug to see the raw lines",
		}, "\n")

	case ErrTypeEncoding:
		return "The command contains characters that cannot be sent (carriage return or line feed)."

	case ErrTypeInvalidArgument:
		return "The value is not valid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var pErr *Error
	if !errors.As(err, &pErr) {
		return err.Error()
	}

	switch pErr.Type {
	case ErrTypeTransport:
		return "Serial port error - check the connection"
	case ErrTypeTimeout:
		return "Module not responding (timeout)"
	case ErrTypeProtocol:
		return "Unexpected reply from module"
	default:
		return pErr.Message
	}
}
