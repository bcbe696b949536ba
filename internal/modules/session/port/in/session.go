package in

import (
	"context"

	"airpulse/internal/modules/session/dto"
)

type Usecase interface {
	Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error)
	Register(ctx context.Context, input dto.RegisterInput) (dto.RegisterOutput, error)
	Logout(ctx context.Context) error
	Resume(ctx context.Context) (dto.SessionOutput, error)
	Profile(ctx context.Context) (dto.ProfileOutput, error)
	// Token returns "" without error when nobody is logged in.
	Token(ctx context.Context) (string, error)
}
