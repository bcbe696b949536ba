package service

import (
	"context"
	"fmt"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"airpulse/internal/modules/endpoint/domain"
	endpointout "airpulse/internal/modules/endpoint/port/out"
	"airpulse/internal/platform/logging"
)

type Resolver struct {
	prober  endpointout.Prober
	timeout time.Duration
	logger  hclog.Logger
}

func NewResolver(prober endpointout.Prober, timeout time.Duration, logger hclog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Resolver{prober: prober, timeout: timeout, logger: logging.OrDiscard(logger)}
}

// Probe picks local when its health check answers 2xx within the timeout and
// hosted otherwise. The probe runs on its own goroutine so a prober that
// ignores ctx cannot hold the caller past the deadline.
func (r *Resolver) Probe(ctx context.Context, candidates domain.Candidates) domain.Endpoint {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("probe panicked: %v", p)
			}
		}()
		done <- r.prober.Probe(ctx, candidates.Local)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("probe %s: %w", candidates.Local, ctx.Err())
	}

	if err == nil {
		ep := candidates.Pick(domain.SourceLocal)
		ep.Probed = true
		r.logger.Info("using local backend", "base_url", ep.BaseURL)
		return ep
	}
	ep := candidates.Pick(domain.SourceHosted)
	ep.Probed = true
	ep.ProbeErr = err.Error()
	r.logger.Info("local backend unavailable, using hosted", "base_url", ep.BaseURL, "probe_error", err)
	return ep
}
