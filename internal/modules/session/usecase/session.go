package usecase

import (
	"context"

	"airpulse/internal/modules/session/domain"
	sessiondto "airpulse/internal/modules/session/dto"
	sessionin "airpulse/internal/modules/session/port/in"
	"airpulse/internal/modules/session/service"
)

type Interactor struct {
	svc *service.AuthService
}

func NewInteractor(svc *service.AuthService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Login(ctx context.Context, input sessiondto.LoginInput) (sessiondto.SessionOutput, error) {
	session, err := i.svc.Login(ctx, domain.Credentials{Email: input.Email, Password: input.Password})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toSessionOutput(session), nil
}

func (i *Interactor) Register(ctx context.Context, input sessiondto.RegisterInput) (sessiondto.RegisterOutput, error) {
	userType, err := domain.ParseUserType(input.UserType)
	if err != nil {
		return sessiondto.RegisterOutput{}, err
	}
	reg := domain.Registration{
		Name:            input.Name,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		UserType:        userType,
	}
	if err := i.svc.Register(ctx, reg); err != nil {
		return sessiondto.RegisterOutput{}, err
	}
	return sessiondto.RegisterOutput{Email: reg.Email, UserType: string(userType)}, nil
}

func (i *Interactor) Logout(ctx context.Context) error {
	return i.svc.Logout(ctx)
}

func (i *Interactor) Resume(ctx context.Context) (sessiondto.SessionOutput, error) {
	session, err := i.svc.Current(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toSessionOutput(session), nil
}

func (i *Interactor) Profile(ctx context.Context) (sessiondto.ProfileOutput, error) {
	session, err := i.svc.Current(ctx)
	if err != nil {
		return sessiondto.ProfileOutput{}, err
	}
	user := domain.User{}
	if session.User != nil {
		user = *session.User
	}
	out := sessiondto.ProfileOutput{
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.DisplayRole(),
		CreatedAt: user.CreatedAt,
		Avatar:    user.Avatar,
	}
	if claims, ok := i.svc.Claims(session.Token); ok {
		out.HasClaims = true
		out.Subject = claims.Subject
		out.IssuedAt = claims.IssuedAt
		out.ExpiresAt = claims.ExpiresAt
		out.Expired = claims.Expired(i.svc.Now())
	}
	return out, nil
}

func (i *Interactor) Token(ctx context.Context) (string, error) {
	return i.svc.Token(ctx)
}

func toSessionOutput(session domain.Session) sessiondto.SessionOutput {
	out := sessiondto.SessionOutput{Token: session.Token}
	if session.User != nil {
		out.HasUser = true
		out.User = sessiondto.UserOutput{
			Name:      session.User.Name,
			Email:     session.User.Email,
			Role:      session.User.Role,
			CreatedAt: session.User.CreatedAt,
			Avatar:    session.User.Avatar,
		}
	}
	return out
}
