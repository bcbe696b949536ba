package out

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"airpulse/internal/modules/session/domain"
	sessionout "airpulse/internal/modules/session/port/out"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/httpapi"
)

type HTTPAuthGateway struct {
	client *httpapi.Client
}

func NewHTTPAuthGateway(client *httpapi.Client) sessionout.AuthGateway {
	return &HTTPAuthGateway{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
	Message string          `json:"message"`
}

func (g *HTTPAuthGateway) Login(ctx context.Context, credentials domain.Credentials) (domain.Session, error) {
	resp := loginResponse{}
	err := g.client.PostJSON(ctx, "/auth/login", loginRequest{Email: credentials.Email, Password: credentials.Password}, &resp)
	if err != nil {
		return domain.Session{}, err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return domain.Session{}, &apperrors.ServerError{Status: http.StatusOK, Message: resp.Message}
	}
	session := domain.Session{Token: resp.Token}
	raw := bytes.TrimSpace(resp.User)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		user := domain.User{}
		if err := json.Unmarshal(raw, &user); err != nil {
			return domain.Session{}, apperrors.Malformed("login user: %v", err)
		}
		session.User = &user
	}
	return session, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

func (g *HTTPAuthGateway) Register(ctx context.Context, registration domain.Registration) error {
	return g.client.PostJSON(ctx, "/auth/register", registerRequest{
		Name:     registration.Name,
		Email:    registration.Email,
		Password: registration.Password,
		UserType: string(registration.UserType),
	}, nil)
}
