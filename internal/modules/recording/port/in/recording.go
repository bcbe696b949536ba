package in

import (
	"context"

	"airpulse/internal/modules/recording/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StatusOutput, error)
	Stop(ctx context.Context) (dto.StatusOutput, error)
	Attach(ctx context.Context, input dto.AttachInput) (dto.StatusOutput, error)
	Upload(ctx context.Context) (dto.UploadOutput, error)
	Status(ctx context.Context) dto.StatusOutput
	List(ctx context.Context) ([]dto.RecordingOutput, error)
	ListCached(ctx context.Context) (dto.CachedListOutput, error)
	BulkUpload(ctx context.Context) (dto.BulkUploadOutput, error)
	Delete(ctx context.Context, id string) error
}
