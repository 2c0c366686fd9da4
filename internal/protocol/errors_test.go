package protocol

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeTransport, "Transport Error"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeEncoding, "Encoding Error"},
		{ErrTypeProtocol, "Protocol Error"},
		{ErrTypeInvalidArgument, "Invalid Argument"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("EOF")
	err := NewTransportError("RDNN", "failed to read reply", cause)

	want := "Transport Error [RDNN]: failed to read reply (caused by: EOF)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("set node number: %w", NewProtocolError("STNN", "device rejected command", nil))

	if !IsProtocolError(err) {
		t.Error("IsProtocolError should see through fmt.Errorf wrapping")
	}
	if IsTimeout(err) || IsTransportError(err) || IsEncodingError(err) || IsInvalidArgument(err) {
		t.Error("only the protocol classifier should match")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewTimeoutError("RDNN", "timeout", nil)) {
		t.Error("timeouts should be retryable")
	}
	if IsRetryable(NewTransportError("RDNN", "gone", nil)) {
		t.Error("transport errors should not be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("unknown errors should not be retryable")
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	hint := GetTroubleshootingHint(NewTimeoutError("STGN", "timeout", nil))
	if !strings.Contains(hint, "50cm") {
		t.Errorf("timeout hint should mention registration distance, got %q", hint)
	}

	if got := GetTroubleshootingHint(errors.New("x")); !strings.Contains(got, "unexpected") {
		t.Errorf("unknown error hint = %q", got)
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	if got := GetShortErrorMessage(NewInvalidArgumentError("unknown I/O mode")); got != "unknown I/O mode" {
		t.Errorf("GetShortErrorMessage() = %q", got)
	}
	if got := GetShortErrorMessage(errors.New("plain")); got != "plain" {
		t.Errorf("GetShortErrorMessage() = %q", got)
	}
}
