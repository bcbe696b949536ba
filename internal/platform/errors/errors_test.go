package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "airpulse/internal/platform/errors"
)

func TestServerErrorUnwrapsToErrServer(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("login: %w", &apperrors.ServerError{Status: 401, Message: "Invalid credentials"})
	if !errors.Is(err, apperrors.ErrServer) {
		t.Fatalf("expected ErrServer in chain")
	}
	var serverErr *apperrors.ServerError
	if !errors.As(err, &serverErr) || serverErr.Status != 401 {
		t.Fatalf("expected server error with status 401, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"server message verbatim", &apperrors.ServerError{Status: 400, Message: "Email taken"}, "Please try again.", "Email taken"},
		{"server fallback", &apperrors.ServerError{Status: 500}, "Please try again.", "Please try again."},
		{"invalid input", apperrors.Invalid("Password must be at least 6 characters"), "", "Password must be at least 6 characters"},
		{"no recording", fmt.Errorf("upload: %w", apperrors.ErrNoRecording), "", "No recording to upload"},
		{"malformed", apperrors.Malformed("bpm missing"), "", "Unexpected response from server"},
		{"device", apperrors.Device("bluetoothctl not found"), "", "bluetoothctl not found"},
		{"wrapped invalid input", fmt.Errorf("upload rec_1.wav: %w", apperrors.Invalid("open recording /x.wav: no such file")), "Upload failed", "open recording /x.wav: no such file"},
		{"wrapped device", fmt.Errorf("start capture: %w", apperrors.Device("arecord not found")), "", "arecord not found"},
		{"network", fmt.Errorf("get: %w", apperrors.ErrNetwork), "request timed out", "Network unavailable: request timed out"},
		{"unknown with fallback", errors.New("boom"), "Something went wrong.", "Something went wrong."},
		{"unknown without fallback", errors.New("boom"), "", "boom"},
		{"nil", nil, "x", ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := apperrors.UserMessage(tc.err, tc.fallback); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDetailErrorMatchesKind(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("upload rec_1.wav: %w", apperrors.Invalid("file is empty"))
	if !errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrDeviceCapability) {
		t.Fatalf("expected invalid input kind only, got %v", err)
	}
	if err.Error() != "upload rec_1.wav: invalid input: file is empty" {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}
