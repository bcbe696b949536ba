package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"airpulse/internal/modules/analysis/domain"
	"airpulse/internal/modules/analysis/dto"
	"airpulse/internal/modules/analysis/service"
	"airpulse/internal/modules/analysis/usecase"
	apperrors "airpulse/internal/platform/errors"
)

type fakeGateway struct {
	analysis domain.Analysis
	err      error
	calls    int
}

func (f *fakeGateway) Fetch(context.Context, string) (domain.Analysis, error) {
	f.calls++
	return f.analysis, f.err
}

type seqID struct{ n atomic.Int64 }

func (s *seqID) New() string { return fmt.Sprintf("m%d", s.n.Add(1)) }

func TestFetchNeverStaysLoading(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		gw    *fakeGateway
		phase string
	}{
		{"loaded", &fakeGateway{analysis: domain.Analysis{BPM: 70, ECG: []float64{1, 2}, Status: "Normal"}}, "loaded"},
		{"not found", &fakeGateway{err: &apperrors.ServerError{Status: 404}}, "failed"},
		{"malformed", &fakeGateway{err: apperrors.Malformed("bpm missing")}, "failed"},
		{"network", &fakeGateway{err: fmt.Errorf("%w: dial", apperrors.ErrNetwork)}, "failed"},
		{"shape mismatch", &fakeGateway{analysis: domain.Analysis{BPM: 70}}, "failed"},
	}
	for _, tc := range cases {
		uc := usecase.NewInteractor(service.NewAnalysisService(tc.gw, nil), service.NewChatService(&seqID{}, 0))
		out := uc.Fetch(context.Background(), dto.FetchInput{RecordingID: "rec-1", RecordingName: "rec_1.wav"})
		if out.Phase != tc.phase {
			t.Fatalf("%s: expected %s, got %s (%v)", tc.name, tc.phase, out.Phase, out.Err)
		}
		if tc.phase == "failed" && out.Err == nil {
			t.Fatalf("%s: failed screen must carry its error", tc.name)
		}
		if tc.phase == "loaded" && len(out.Analysis.Probabilities) != 3 {
			t.Fatalf("%s: expected placeholder probabilities", tc.name)
		}
		if tc.gw.calls != 1 {
			t.Fatalf("%s: expected exactly one fetch, got %d", tc.name, tc.gw.calls)
		}
	}
}

func TestFetchBlankIDFailsWithoutCall(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	uc := usecase.NewInteractor(service.NewAnalysisService(gw, nil), service.NewChatService(&seqID{}, 0))
	out := uc.Fetch(context.Background(), dto.FetchInput{})
	if out.Phase != "failed" || !errors.Is(out.Err, apperrors.ErrInvalidInput) || gw.calls != 0 {
		t.Fatalf("unexpected result %+v (calls=%d)", out, gw.calls)
	}
}

func TestChatFlow(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewAnalysisService(&fakeGateway{}, nil), service.NewChatService(&seqID{}, 10*time.Millisecond))

	conv := uc.OpenChat(context.Background(), dto.OpenChatInput{RecordingName: "rec_1.wav", BPM: 72, Status: "Normal"})
	if len(conv.Messages) != 1 || conv.Messages[0].Sender != "ai" {
		t.Fatalf("expected greeting, got %+v", conv.Messages)
	}
	if _, ok := uc.Compose(context.Background(), "  "); ok {
		t.Fatalf("blank input must be ignored")
	}
	msg, ok := uc.Compose(context.Background(), "Is my heart ok?")
	if !ok || msg.Sender != "user" {
		t.Fatalf("unexpected user message %+v", msg)
	}
	reply, err := uc.Reply(context.Background(), msg.Text)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.Text != "This is an AI medical assistant response to: Is my heart ok?" || reply.ID == msg.ID {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestChatReplyCancelled(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewAnalysisService(&fakeGateway{}, nil), service.NewChatService(&seqID{}, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := uc.Reply(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
