package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"airpulse/internal/modules/session/domain"
	sessionout "airpulse/internal/modules/session/port/out"
	"airpulse/internal/platform/clock"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/logging"
)

type AuthService struct {
	clock        clock.Clock
	store        sessionout.Store
	gateway      sessionout.AuthGateway
	inspector    sessionout.TokenInspector
	loginTimeout time.Duration
	logger       hclog.Logger
}

func NewAuthService(clock clock.Clock, store sessionout.Store, gateway sessionout.AuthGateway, inspector sessionout.TokenInspector, loginTimeout time.Duration, logger hclog.Logger) *AuthService {
	if loginTimeout <= 0 {
		loginTimeout = 15 * time.Second
	}
	return &AuthService{
		clock:        clock,
		store:        store,
		gateway:      gateway,
		inspector:    inspector,
		loginTimeout: loginTimeout,
		logger:       logging.OrDiscard(logger),
	}
}

// Login authenticates and persists the session. Nothing is written unless
// the server answered 2xx with a token.
func (s *AuthService) Login(ctx context.Context, credentials domain.Credentials) (domain.Session, error) {
	credentials.Email = strings.TrimSpace(credentials.Email)
	if err := credentials.Validate(); err != nil {
		return domain.Session{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.loginTimeout)
	defer cancel()

	session, err := s.gateway.Login(ctx, credentials)
	if err != nil {
		s.logger.Info("login rejected", "email", credentials.Email, "error", err)
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	if err := session.Validate(); err != nil {
		return domain.Session{}, &apperrors.ServerError{Status: 200}
	}
	if err := s.store.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	s.logger.Info("logged in", "email", credentials.Email)
	return session, nil
}

func (s *AuthService) Register(ctx context.Context, registration domain.Registration) error {
	registration.Name = strings.TrimSpace(registration.Name)
	registration.Email = strings.TrimSpace(registration.Email)
	if err := registration.Validate(); err != nil {
		return err
	}
	if err := s.gateway.Register(ctx, registration); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	s.logger.Info("registered", "email", registration.Email, "user_type", registration.UserType)
	return nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("logged out")
	return nil
}

func (s *AuthService) Current(ctx context.Context) (domain.Session, error) {
	return s.store.Load(ctx)
}

// Token is the bearer token for API calls, empty when logged out.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	session, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoSession) {
			return "", nil
		}
		return "", err
	}
	return session.Token, nil
}

func (s *AuthService) Claims(token string) (domain.Claims, bool) {
	if s.inspector == nil {
		return domain.Claims{}, false
	}
	return s.inspector.Inspect(token)
}

func (s *AuthService) Now() time.Time {
	return s.clock.Now()
}
