package domain

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	apperrors "airpulse/internal/platform/errors"
)

// Recording is one row of the server-side recordings list. Duration is in
// seconds and zero when the server did not send one.
type Recording struct {
	ID        string
	Title     string
	URL       string
	Duration  float64
	CreatedAt string
	// DecodeErr is set by the gateway when a field could not be decoded.
	DecodeErr error
}

func (r Recording) Validate() error {
	if r.DecodeErr != nil {
		return fmt.Errorf("recording %q: %w", r.ID, r.DecodeErr)
	}
	if strings.TrimSpace(r.ID) == "" {
		return apperrors.Malformed("recording without id")
	}
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Malformed("recording %s without title", r.ID)
	}
	if math.IsNaN(r.Duration) || math.IsInf(r.Duration, 0) || r.Duration < 0 {
		return apperrors.Malformed("recording %s has invalid duration", r.ID)
	}
	return nil
}

// Upload is the multipart payload for one capture.
type Upload struct {
	Path            string
	Name            string
	ContentType     string
	DurationSeconds int
}

type UploadResult struct {
	ID    string
	Title string
}

// DurationSeconds rounds d to whole seconds and never returns less than 1.
func DurationSeconds(d time.Duration) int {
	secs := math.Round(d.Seconds())
	if secs < 1 {
		return 1
	}
	return int(secs)
}

func ContentTypeFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return "audio/wav"
	}
	return "audio/m4a"
}

func UploadName(path string, now time.Time) string {
	ext := "m4a"
	if ContentTypeFor(path) == "audio/wav" {
		ext = "wav"
	}
	return fmt.Sprintf("rec_%d.%s", now.UnixMilli(), ext)
}

func CapturePath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("airpulse_%d.wav", now.UnixMilli()))
}

func NewUpload(path string, elapsed time.Duration, now time.Time) Upload {
	return Upload{
		Path:            path,
		Name:            UploadName(path, now),
		ContentType:     ContentTypeFor(path),
		DurationSeconds: DurationSeconds(elapsed),
	}
}
