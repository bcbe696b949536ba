package service

import (
	"context"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"airpulse/internal/modules/analysis/domain"
	analysisout "airpulse/internal/modules/analysis/port/out"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/logging"
)

type AnalysisService struct {
	gateway analysisout.Gateway
	logger  hclog.Logger
}

func NewAnalysisService(gateway analysisout.Gateway, logger hclog.Logger) *AnalysisService {
	return &AnalysisService{gateway: gateway, logger: logging.OrDiscard(logger)}
}

// Fetch makes one attempt. There is no retry and no cache.
func (s *AnalysisService) Fetch(ctx context.Context, recordingID, recordingName string) domain.Screen {
	screen := domain.NewScreen(strings.TrimSpace(recordingID), recordingName)
	if screen.RecordingID == "" {
		return screen.Resolve(domain.Analysis{}, apperrors.Invalid("recording id is required"))
	}
	analysis, err := s.gateway.Fetch(ctx, screen.RecordingID)
	screen = screen.Resolve(analysis, err)
	if screen.Phase == domain.PhaseFailed {
		s.logger.Warn("analysis unavailable", "recording_id", screen.RecordingID, "error", screen.Err)
	} else {
		s.logger.Debug("analysis loaded", "recording_id", screen.RecordingID, "bpm", analysis.BPM, "status", analysis.Status)
	}
	return screen
}
