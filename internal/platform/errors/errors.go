package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrNoSession         = errors.New("no session")
	ErrNoRecording       = errors.New("no recording to upload")
	ErrNetwork           = errors.New("network failure")
	ErrServer            = errors.New("server error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrDeviceCapability  = errors.New("device capability error")
)

// ServerError is a non-2xx response. Message carries the body's message
// field when the server sent one.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

func (e *ServerError) Unwrap() error { return ErrServer }

// DetailError carries user-facing text for a sentinel kind. It survives
// further wrapping, so callers can add context without leaking the kind
// prefix into alerts.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string { return e.Kind.Error() + ": " + e.Detail }

func (e *DetailError) Unwrap() error { return e.Kind }

func Invalid(format string, args ...any) error {
	return &DetailError{Kind: ErrInvalidInput, Detail: fmt.Sprintf(format, args...)}
}

func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

func Device(format string, args ...any) error {
	return &DetailError{Kind: ErrDeviceCapability, Detail: fmt.Sprintf(format, args...)}
}

// UserMessage renders err as alert text. Server messages are shown verbatim,
// everything else maps to a short description of its kind.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var serverErr *ServerError
	var detailErr *DetailError
	switch {
	case errors.As(err, &serverErr):
		if strings.TrimSpace(serverErr.Message) != "" {
			return serverErr.Message
		}
		return fallback
	case errors.As(err, &detailErr) && detailErr.Detail != "":
		return detailErr.Detail
	case errors.Is(err, ErrInvalidInput):
		return "Invalid input"
	case errors.Is(err, ErrNoRecording):
		return "No recording to upload"
	case errors.Is(err, ErrNoSession):
		return "You are not logged in"
	case errors.Is(err, ErrNetwork):
		return "Network unavailable: " + fallback
	case errors.Is(err, ErrMalformedResponse):
		return "Unexpected response from server"
	case errors.Is(err, ErrDeviceCapability):
		return "Device unavailable"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
