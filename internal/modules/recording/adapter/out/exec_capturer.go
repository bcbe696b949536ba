package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	recordingout "airpulse/internal/modules/recording/port/out"
	apperrors "airpulse/internal/platform/errors"
)

const pathPlaceholder = "{path}"

// ExecCapturer records by running an external command such as arecord. The
// "{path}" placeholder in any argument is replaced with the output file.
type ExecCapturer struct {
	command     []string
	stopTimeout time.Duration

	mu     sync.Mutex
	cmd    *exec.Cmd
	path   string
	stderr *bytes.Buffer
	done   chan error
}

func NewExecCapturer(command []string) recordingout.Capturer {
	return &ExecCapturer{command: append([]string(nil), command...), stopTimeout: 5 * time.Second}
}

func (c *ExecCapturer) Start(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd != nil {
		return apperrors.Device("recorder is already running")
	}
	if len(c.command) == 0 {
		return apperrors.Device("no recorder command configured")
	}
	bin, err := exec.LookPath(c.command[0])
	if err != nil {
		return apperrors.Device("recorder %q not found", c.command[0])
	}
	args := make([]string, 0, len(c.command)-1)
	for _, arg := range c.command[1:] {
		args = append(args, strings.ReplaceAll(arg, pathPlaceholder, path))
	}

	// Not tied to ctx: the capture outlives the call that started it.
	cmd := exec.Command(bin, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return apperrors.Device("start recorder: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	c.cmd, c.path, c.stderr, c.done = cmd, path, stderr, done
	return nil
}

// Stop interrupts the recorder so it can finalize the file, and kills it if
// it does not exit in time.
func (c *ExecCapturer) Stop(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return "", apperrors.Device("recorder is not running")
	}
	cmd, path, stderr, done := c.cmd, c.path, c.stderr, c.done
	c.cmd, c.path, c.stderr, c.done = nil, "", nil, nil

	var waitErr error
	select {
	case waitErr = <-done:
		if waitErr != nil {
			return "", apperrors.Device("recorder exited early: %v %s", waitErr, strings.TrimSpace(stderr.String()))
		}
	default:
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			_ = cmd.Process.Kill()
		}
		timer := time.NewTimer(c.stopTimeout)
		defer timer.Stop()
		select {
		case waitErr = <-done:
		case <-timer.C:
			_ = cmd.Process.Kill()
			waitErr = <-done
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			<-done
			return "", fmt.Errorf("stop recorder: %w", ctx.Err())
		}
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		var exitErr *exec.ExitError
		if waitErr != nil && !errors.As(waitErr, &exitErr) {
			return "", apperrors.Device("recorder failed: %v", waitErr)
		}
		return "", apperrors.Device("recorder produced no audio at %s %s", path, strings.TrimSpace(stderr.String()))
	}
	return path, nil
}
