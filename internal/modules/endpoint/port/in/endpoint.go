package in

import (
	"context"

	"airpulse/internal/modules/endpoint/dto"
)

// Usecase resolves the API root once per process. It never fails.
type Usecase interface {
	Resolve(ctx context.Context) dto.EndpointOutput
}
