package usecase

import (
	"context"
	"sync"

	"airpulse/internal/modules/endpoint/domain"
	"airpulse/internal/modules/endpoint/dto"
	endpointin "airpulse/internal/modules/endpoint/port/in"
	"airpulse/internal/modules/endpoint/service"
)

type Interactor struct {
	svc        *service.Resolver
	mode       domain.Mode
	candidates domain.Candidates

	once     sync.Once
	resolved domain.Endpoint
}

func NewInteractor(svc *service.Resolver, mode domain.Mode, candidates domain.Candidates) endpointin.Usecase {
	if mode.Validate() != nil {
		mode = domain.ModeAuto
	}
	return &Interactor{svc: svc, mode: mode, candidates: candidates}
}

// Resolve is memoized: the first call decides, later calls return the same
// endpoint even if the local backend comes up afterwards.
func (i *Interactor) Resolve(ctx context.Context) dto.EndpointOutput {
	i.once.Do(func() {
		switch i.mode {
		case domain.ModeLocal:
			i.resolved = i.candidates.Pick(domain.SourceLocal)
		case domain.ModeHosted:
			i.resolved = i.candidates.Pick(domain.SourceHosted)
		default:
			i.resolved = i.svc.Probe(ctx, i.candidates)
		}
	})
	return dto.EndpointOutput{
		BaseURL:    i.resolved.BaseURL,
		Source:     string(i.resolved.Source),
		Probed:     i.resolved.Probed,
		ProbeError: i.resolved.ProbeErr,
	}
}
