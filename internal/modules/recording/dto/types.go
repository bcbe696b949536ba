package dto

import "time"

type StatusOutput struct {
	State          string
	Path           string
	Elapsed        time.Duration
	ElapsedSeconds int
	LastError      string
}

type AttachInput struct {
	Path     string
	Duration time.Duration
}

type UploadOutput struct {
	ID              string
	Title           string
	DurationSeconds int
}

type RecordingOutput struct {
	ID        string
	Title     string
	URL       string
	Duration  float64
	CreatedAt string
}

type CachedListOutput struct {
	Recordings []RecordingOutput
	SyncedAt   time.Time
}

type BulkUploadOutput struct {
	Count int
}
