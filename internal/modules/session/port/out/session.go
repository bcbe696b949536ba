package out

import (
	"context"

	"airpulse/internal/modules/session/domain"
)

// Store persists the single session record. Load returns
// apperrors.ErrNoSession when nothing is saved.
type Store interface {
	Save(ctx context.Context, session domain.Session) error
	Load(ctx context.Context) (domain.Session, error)
	Clear(ctx context.Context) error
}

type AuthGateway interface {
	Login(ctx context.Context, credentials domain.Credentials) (domain.Session, error)
	Register(ctx context.Context, registration domain.Registration) error
}

type TokenInspector interface {
	Inspect(token string) (domain.Claims, bool)
}
