package in

import (
	"context"

	sessiondto "airpulse/internal/modules/session/dto"
	sessionin "airpulse/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, email, password string) (sessiondto.SessionOutput, error) {
	return h.usecase.Login(ctx, sessiondto.LoginInput{Email: email, Password: password})
}

func (h CLIHandler) Register(ctx context.Context, name, email, password, confirm, userType string) (sessiondto.RegisterOutput, error) {
	return h.usecase.Register(ctx, sessiondto.RegisterInput{
		Name:            name,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
		UserType:        userType,
	})
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Profile(ctx context.Context) (sessiondto.ProfileOutput, error) {
	return h.usecase.Profile(ctx)
}

func (h CLIHandler) Token(ctx context.Context) (string, error) {
	return h.usecase.Token(ctx)
}
