package domain

import (
	"strings"
	"time"

	apperrors "airpulse/internal/platform/errors"
)

type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateStopped   State = "stopped"
	StateUploading State = "uploading"
	StateError     State = "error"
)

// Recorder is the capture/upload state machine. The zero value is Idle.
//
//	Idle|Stopped|Error -> Recording -> Stopped -> Uploading -> Idle
//	                                              Uploading -> Error -> Uploading
type Recorder struct {
	state     State
	path      string
	startedAt time.Time
	elapsed   time.Duration
	lastErr   string
}

type Status struct {
	State     State
	Path      string
	Elapsed   time.Duration
	LastError string
}

func (r *Recorder) current() State {
	if r.state == "" {
		return StateIdle
	}
	return r.state
}

func (r *Recorder) CanStart() error {
	switch r.current() {
	case StateIdle, StateStopped, StateError:
		return nil
	default:
		return apperrors.Invalid("cannot start recording while %s", r.current())
	}
}

// Start begins a capture at path. Any previous unsent file is forgotten.
func (r *Recorder) Start(path string, now time.Time) error {
	if err := r.CanStart(); err != nil {
		return err
	}
	r.state = StateRecording
	r.path = path
	r.startedAt = now
	r.elapsed = 0
	r.lastErr = ""
	return nil
}

// Stop freezes elapsed time and keeps the path the capturer reported.
func (r *Recorder) Stop(finalPath string, now time.Time) error {
	if r.current() != StateRecording {
		return apperrors.Invalid("not recording")
	}
	if strings.TrimSpace(finalPath) != "" {
		r.path = finalPath
	}
	r.elapsed = now.Sub(r.startedAt)
	if r.elapsed < 0 {
		r.elapsed = 0
	}
	r.state = StateStopped
	return nil
}

// Abort drops an in-progress capture whose device failed.
func (r *Recorder) Abort(err error) {
	r.state = StateError
	r.path = ""
	r.elapsed = 0
	if err != nil {
		r.lastErr = err.Error()
	}
}

// Attach adopts an existing file as a finished capture.
func (r *Recorder) Attach(path string, duration time.Duration) error {
	if err := r.CanStart(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return apperrors.Invalid("file path is required")
	}
	r.state = StateStopped
	r.path = path
	r.elapsed = duration
	r.lastErr = ""
	return nil
}

func (r *Recorder) BeginUpload(now time.Time) (Upload, error) {
	switch r.current() {
	case StateRecording:
		return Upload{}, apperrors.Invalid("Stop the recording before uploading")
	case StateUploading:
		return Upload{}, apperrors.Invalid("Upload already in progress")
	}
	if strings.TrimSpace(r.path) == "" {
		return Upload{}, apperrors.ErrNoRecording
	}
	r.state = StateUploading
	r.lastErr = ""
	return NewUpload(r.path, r.elapsed, now), nil
}

func (r *Recorder) UploadSucceeded() {
	if r.current() != StateUploading {
		return
	}
	*r = Recorder{state: StateIdle}
}

// UploadFailed keeps the file so the user can retry.
func (r *Recorder) UploadFailed(err error) {
	if r.current() != StateUploading {
		return
	}
	r.state = StateError
	if err != nil {
		r.lastErr = err.Error()
	}
}

func (r *Recorder) Elapsed(now time.Time) time.Duration {
	if r.current() == StateRecording {
		if d := now.Sub(r.startedAt); d > 0 {
			return d
		}
		return 0
	}
	return r.elapsed
}

func (r *Recorder) Snapshot(now time.Time) Status {
	return Status{
		State:     r.current(),
		Path:      r.path,
		Elapsed:   r.Elapsed(now),
		LastError: r.lastErr,
	}
}
