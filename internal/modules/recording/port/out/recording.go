package out

import (
	"context"
	"time"

	"airpulse/internal/modules/recording/domain"
)

// Capturer drives the audio device. Stop returns the path of the finished
// file, which may differ from the one passed to Start.
type Capturer interface {
	Start(ctx context.Context, path string) error
	Stop(ctx context.Context) (string, error)
}

type Gateway interface {
	Upload(ctx context.Context, upload domain.Upload) (domain.UploadResult, error)
	List(ctx context.Context) ([]domain.Recording, error)
	BulkUpload(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

// Cache holds the last fetched list for offline display.
type Cache interface {
	Replace(ctx context.Context, recordings []domain.Recording, syncedAt time.Time) error
	List(ctx context.Context) ([]domain.Recording, time.Time, error)
}
