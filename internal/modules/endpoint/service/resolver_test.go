package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"airpulse/internal/modules/endpoint/domain"
	"airpulse/internal/modules/endpoint/service"
)

var candidates = domain.Candidates{Local: "http://local/api", Hosted: "https://hosted/api"}

type proberFunc func(ctx context.Context, baseURL string) error

func (f proberFunc) Probe(ctx context.Context, baseURL string) error { return f(ctx, baseURL) }

func TestProbeOutcomes(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	cases := []struct {
		name   string
		prober proberFunc
		want   domain.Source
	}{
		{"healthy", func(context.Context, string) error { return nil }, domain.SourceLocal},
		{"error", func(context.Context, string) error { return errors.New("connection refused") }, domain.SourceHosted},
		{"respects ctx", func(ctx context.Context, _ string) error { <-ctx.Done(); return ctx.Err() }, domain.SourceHosted},
		{"ignores ctx", func(context.Context, string) error { <-block; return nil }, domain.SourceHosted},
		{"panics", func(context.Context, string) error { panic("boom") }, domain.SourceHosted},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			timeout := 50 * time.Millisecond
			resolver := service.NewResolver(tc.prober, timeout, nil)
			started := time.Now()
			ep := resolver.Probe(context.Background(), candidates)
			if elapsed := time.Since(started); elapsed > timeout+500*time.Millisecond {
				t.Fatalf("probe did not respect timeout: %s", elapsed)
			}
			if ep.Source != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, ep.Source)
			}
			if ep.BaseURL != candidates.Local && ep.BaseURL != candidates.Hosted {
				t.Fatalf("resolved url must be one of the candidates, got %s", ep.BaseURL)
			}
			if tc.want == domain.SourceHosted && ep.ProbeErr == "" {
				t.Fatalf("expected probe error to be recorded")
			}
		})
	}
}

func TestProbeUsesLocalURL(t *testing.T) {
	t.Parallel()
	var probed string
	resolver := service.NewResolver(proberFunc(func(_ context.Context, baseURL string) error {
		probed = baseURL
		return nil
	}), time.Second, nil)
	resolver.Probe(context.Background(), candidates)
	if probed != candidates.Local {
		t.Fatalf("expected local url to be probed, got %q", probed)
	}
}
