package in

import (
	"context"
	"time"

	"airpulse/internal/modules/recording/dto"
	recordingin "airpulse/internal/modules/recording/port/in"
)

type CLIHandler struct {
	usecase recordingin.Usecase
}

func NewCLIHandler(usecase recordingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Attach(ctx context.Context, path string, duration time.Duration) (dto.StatusOutput, error) {
	return h.usecase.Attach(ctx, dto.AttachInput{Path: path, Duration: duration})
}

func (h CLIHandler) Upload(ctx context.Context) (dto.UploadOutput, error) {
	return h.usecase.Upload(ctx)
}

func (h CLIHandler) Status(ctx context.Context) dto.StatusOutput {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) List(ctx context.Context) ([]dto.RecordingOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) ListCached(ctx context.Context) (dto.CachedListOutput, error) {
	return h.usecase.ListCached(ctx)
}

func (h CLIHandler) BulkUpload(ctx context.Context) (dto.BulkUploadOutput, error) {
	return h.usecase.BulkUpload(ctx)
}

func (h CLIHandler) Delete(ctx context.Context, id string) error {
	return h.usecase.Delete(ctx, id)
}
