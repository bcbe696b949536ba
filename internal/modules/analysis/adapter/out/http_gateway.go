package out

import (
	"context"
	"net/url"

	"airpulse/internal/modules/analysis/domain"
	analysisout "airpulse/internal/modules/analysis/port/out"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/httpapi"
)

type HTTPGateway struct {
	client *httpapi.Client
}

func NewHTTPGateway(client *httpapi.Client) analysisout.Gateway {
	return &HTTPGateway{client: client}
}

// Pointers distinguish a missing field from a zero value.
type wireAnalysis struct {
	BPM    *float64  `json:"bpm"`
	ECG    []float64 `json:"ecg"`
	Status *string   `json:"status"`
}

func (g *HTTPGateway) Fetch(ctx context.Context, recordingID string) (domain.Analysis, error) {
	wire := wireAnalysis{}
	if err := g.client.GetJSON(ctx, "/recordings/analyze/"+url.PathEscape(recordingID), &wire); err != nil {
		return domain.Analysis{}, err
	}
	if wire.BPM == nil {
		return domain.Analysis{}, apperrors.Malformed("analysis without bpm")
	}
	if wire.ECG == nil {
		return domain.Analysis{}, apperrors.Malformed("analysis without ecg")
	}
	if wire.Status == nil {
		return domain.Analysis{}, apperrors.Malformed("analysis without status")
	}
	analysis := domain.Analysis{BPM: *wire.BPM, ECG: wire.ECG, Status: *wire.Status}
	if err := analysis.Validate(); err != nil {
		return domain.Analysis{}, err
	}
	return analysis, nil
}
