package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"airpulse/internal/modules/recording/domain"
	recordingout "airpulse/internal/modules/recording/port/out"
	"airpulse/internal/platform/clock"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/logging"
)

type RecordingService struct {
	clock    clock.Clock
	capturer recordingout.Capturer
	gateway  recordingout.Gateway
	cache    recordingout.Cache
	dir      string
	logger   hclog.Logger

	mu       sync.Mutex
	recorder domain.Recorder
}

func NewRecordingService(clock clock.Clock, capturer recordingout.Capturer, gateway recordingout.Gateway, cache recordingout.Cache, dir string, logger hclog.Logger) *RecordingService {
	return &RecordingService{
		clock:    clock,
		capturer: capturer,
		gateway:  gateway,
		cache:    cache,
		dir:      dir,
		logger:   logging.OrDiscard(logger),
	}
}

func (s *RecordingService) Start(ctx context.Context) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.recorder.CanStart(); err != nil {
		return s.recorder.Snapshot(s.clock.Now()), err
	}
	if s.capturer == nil {
		return s.recorder.Snapshot(s.clock.Now()), apperrors.Device("no audio capture device configured")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return s.recorder.Snapshot(s.clock.Now()), fmt.Errorf("create recordings dir: %w", err)
	}
	now := s.clock.Now()
	path := domain.CapturePath(s.dir, now)
	if err := s.capturer.Start(ctx, path); err != nil {
		s.logger.Warn("capture failed to start", "path", path, "error", err)
		return s.recorder.Snapshot(now), err
	}
	if err := s.recorder.Start(path, now); err != nil {
		return s.recorder.Snapshot(now), err
	}
	s.logger.Info("recording started", "path", path)
	return s.recorder.Snapshot(now), nil
}

func (s *RecordingService) Stop(ctx context.Context) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder.Snapshot(s.clock.Now()).State != domain.StateRecording {
		return s.recorder.Snapshot(s.clock.Now()), apperrors.Invalid("not recording")
	}
	final, err := s.capturer.Stop(ctx)
	now := s.clock.Now()
	if err != nil {
		s.recorder.Abort(err)
		s.logger.Warn("capture failed", "error", err)
		return s.recorder.Snapshot(now), err
	}
	if err := s.recorder.Stop(final, now); err != nil {
		return s.recorder.Snapshot(now), err
	}
	status := s.recorder.Snapshot(now)
	s.logger.Info("recording stopped", "path", status.Path, "elapsed", status.Elapsed)
	return status, nil
}

func (s *RecordingService) Attach(_ context.Context, path string, duration time.Duration) (domain.Status, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return s.Status(), apperrors.Invalid("file path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.Status(), apperrors.Invalid("file %s does not exist", path)
		}
		return s.Status(), fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return s.Status(), apperrors.Invalid("%s is a directory", path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.recorder.Attach(path, duration); err != nil {
		return s.recorder.Snapshot(s.clock.Now()), err
	}
	return s.recorder.Snapshot(s.clock.Now()), nil
}

// Upload sends the held file. The lock is released during the network call
// so Status stays responsive.
func (s *RecordingService) Upload(ctx context.Context) (domain.UploadResult, int, error) {
	s.mu.Lock()
	upload, err := s.recorder.BeginUpload(s.clock.Now())
	s.mu.Unlock()
	if err != nil {
		return domain.UploadResult{}, 0, err
	}

	result, err := s.gateway.Upload(ctx, upload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.recorder.UploadFailed(err)
		s.logger.Warn("upload failed", "name", upload.Name, "error", err)
		return domain.UploadResult{}, 0, fmt.Errorf("upload %s: %w", upload.Name, err)
	}
	if strings.TrimSpace(result.Title) == "" {
		result.Title = upload.Name
	}
	s.recorder.UploadSucceeded()
	s.logger.Info("uploaded recording", "title", result.Title, "id", result.ID, "duration", upload.DurationSeconds)
	return result, upload.DurationSeconds, nil
}

func (s *RecordingService) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Snapshot(s.clock.Now())
}

// List fetches the recordings and refreshes the offline projection. Rows
// missing an id or title are dropped.
func (s *RecordingService) List(ctx context.Context) ([]domain.Recording, error) {
	rows, err := s.gateway.List(ctx)
	if err != nil {
		return nil, err
	}
	valid := make([]domain.Recording, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			s.logger.Warn("skipping recording", "error", err)
			continue
		}
		valid = append(valid, row)
	}
	if s.cache != nil {
		if err := s.cache.Replace(ctx, valid, s.clock.Now()); err != nil {
			s.logger.Warn("recordings cache not updated", "error", err)
		}
	}
	return valid, nil
}

func (s *RecordingService) ListCached(ctx context.Context) ([]domain.Recording, time.Time, error) {
	if s.cache == nil {
		return nil, time.Time{}, apperrors.ErrNotFound
	}
	return s.cache.List(ctx)
}

func (s *RecordingService) BulkUpload(ctx context.Context) (int, error) {
	count, err := s.gateway.BulkUpload(ctx)
	if err != nil {
		return 0, fmt.Errorf("bulk upload: %w", err)
	}
	s.logger.Info("bulk upload finished", "count", count)
	return count, nil
}

func (s *RecordingService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Invalid("recording id is required")
	}
	if err := s.gateway.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.logger.Info("deleted recording", "id", id)
	return nil
}
