package domain

import (
	"math"
	"strings"

	apperrors "airpulse/internal/platform/errors"
)

const UnknownRecording = "Unknown Recording"

// Analysis is what the backend computed for one recording. The client only
// displays it.
type Analysis struct {
	BPM    float64
	ECG    []float64
	Status string
}

func (a Analysis) Validate() error {
	if math.IsNaN(a.BPM) || math.IsInf(a.BPM, 0) || a.BPM < 0 {
		return apperrors.Malformed("bpm must be a finite non-negative number")
	}
	for i, v := range a.ECG {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.Malformed("ecg sample %d is not finite", i)
		}
	}
	if strings.TrimSpace(a.Status) == "" {
		return apperrors.Malformed("status is required")
	}
	return nil
}

type Probability struct {
	Condition string
	Percent   int
}

// PlaceholderProbabilities are fixed display values. The backend does not
// compute them.
func PlaceholderProbabilities() []Probability {
	return []Probability{
		{Condition: "Normal", Percent: 82},
		{Condition: "Murmur", Percent: 10},
		{Condition: "Arrhythmia", Percent: 8},
	}
}

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// Screen is the analysis view state for one recording.
type Screen struct {
	RecordingID   string
	RecordingName string
	Phase         Phase
	Analysis      Analysis
	Err           error
}

func NewScreen(id, name string) Screen {
	if strings.TrimSpace(name) == "" {
		name = UnknownRecording
	}
	return Screen{RecordingID: id, RecordingName: name, Phase: PhaseLoading}
}

// Resolve leaves Loading for good: Loaded on a valid result, Failed on
// anything else.
func (s Screen) Resolve(analysis Analysis, err error) Screen {
	if err == nil {
		err = analysis.Validate()
	}
	if err != nil {
		s.Phase = PhaseFailed
		s.Analysis = Analysis{}
		s.Err = err
		return s
	}
	s.Phase = PhaseLoaded
	s.Analysis = analysis
	s.Err = nil
	return s
}
