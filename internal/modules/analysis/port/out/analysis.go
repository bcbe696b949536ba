package out

import (
	"context"

	"airpulse/internal/modules/analysis/domain"
)

type Gateway interface {
	Fetch(ctx context.Context, recordingID string) (domain.Analysis, error)
}
