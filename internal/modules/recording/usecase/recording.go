package usecase

import (
	"context"

	"airpulse/internal/modules/recording/domain"
	"airpulse/internal/modules/recording/dto"
	recordingin "airpulse/internal/modules/recording/port/in"
	"airpulse/internal/modules/recording/service"
)

type Interactor struct {
	svc *service.RecordingService
}

func NewInteractor(svc *service.RecordingService) recordingin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context) (dto.StatusOutput, error) {
	status, err := i.svc.Start(ctx)
	return toStatusOutput(status), err
}

func (i *Interactor) Stop(ctx context.Context) (dto.StatusOutput, error) {
	status, err := i.svc.Stop(ctx)
	return toStatusOutput(status), err
}

func (i *Interactor) Attach(ctx context.Context, input dto.AttachInput) (dto.StatusOutput, error) {
	status, err := i.svc.Attach(ctx, input.Path, input.Duration)
	return toStatusOutput(status), err
}

func (i *Interactor) Upload(ctx context.Context) (dto.UploadOutput, error) {
	result, secs, err := i.svc.Upload(ctx)
	if err != nil {
		return dto.UploadOutput{}, err
	}
	return dto.UploadOutput{ID: result.ID, Title: result.Title, DurationSeconds: secs}, nil
}

func (i *Interactor) Status(context.Context) dto.StatusOutput {
	return toStatusOutput(i.svc.Status())
}

func (i *Interactor) List(ctx context.Context) ([]dto.RecordingOutput, error) {
	rows, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	return toRecordingOutputs(rows), nil
}

func (i *Interactor) ListCached(ctx context.Context) (dto.CachedListOutput, error) {
	rows, syncedAt, err := i.svc.ListCached(ctx)
	if err != nil {
		return dto.CachedListOutput{}, err
	}
	return dto.CachedListOutput{Recordings: toRecordingOutputs(rows), SyncedAt: syncedAt}, nil
}

func (i *Interactor) BulkUpload(ctx context.Context) (dto.BulkUploadOutput, error) {
	count, err := i.svc.BulkUpload(ctx)
	if err != nil {
		return dto.BulkUploadOutput{}, err
	}
	return dto.BulkUploadOutput{Count: count}, nil
}

func (i *Interactor) Delete(ctx context.Context, id string) error {
	return i.svc.Delete(ctx, id)
}

func toStatusOutput(status domain.Status) dto.StatusOutput {
	out := dto.StatusOutput{
		State:     string(status.State),
		Path:      status.Path,
		Elapsed:   status.Elapsed,
		LastError: status.LastError,
	}
	out.ElapsedSeconds = int(status.Elapsed.Seconds())
	return out
}

func toRecordingOutputs(rows []domain.Recording) []dto.RecordingOutput {
	out := make([]dto.RecordingOutput, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.RecordingOutput{
			ID:        row.ID,
			Title:     row.Title,
			URL:       row.URL,
			Duration:  row.Duration,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}
