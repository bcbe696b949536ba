package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/httpapi"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token(context.Context) (string, error) { return s.token, s.err }

func TestGetJSONSendsBearerAndDecodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"count": 3}`))
	}))
	defer srv.Close()

	client := httpapi.New(srv.URL+"/", httpapi.WithTokenSource(staticToken{token: "tok-1"}))
	var out struct {
		Count int `json:"count"`
	}
	if err := client.GetJSON(context.Background(), "/recordings", &out); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if out.Count != 3 {
		t.Fatalf("expected count 3, got %d", out.Count)
	}
	if client.BaseURL() != srv.URL {
		t.Fatalf("trailing slash should be trimmed, got %s", client.BaseURL())
	}
}

func TestNoSessionTokenSendsAnonymousRequest(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no authorization header")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := httpapi.New(srv.URL, httpapi.WithTokenSource(staticToken{err: apperrors.ErrNoSession}))
	if err := client.GetJSON(context.Background(), "/health", nil); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json-error":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Email already registered"}`))
		case "/text-error":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("upload store unavailable"))
		case "/html-error":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		case "/garbage":
			_, _ = w.Write([]byte("{not json"))
		case "/empty":
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()
	client := httpapi.New(srv.URL)
	var out map[string]any

	var serverErr *apperrors.ServerError
	err := client.GetJSON(context.Background(), "/json-error", &out)
	if !errors.As(err, &serverErr) || serverErr.Status != 400 || serverErr.Message != "Email already registered" {
		t.Fatalf("expected server error with message, got %v", err)
	}
	err = client.GetJSON(context.Background(), "/text-error", &out)
	if !errors.As(err, &serverErr) || serverErr.Message != "upload store unavailable" {
		t.Fatalf("expected plain text message, got %v", err)
	}
	err = client.GetJSON(context.Background(), "/html-error", &out)
	if !errors.As(err, &serverErr) || serverErr.Message != "" {
		t.Fatalf("html bodies must not leak into messages, got %v", err)
	}
	if err := client.GetJSON(context.Background(), "/garbage", &out); !errors.Is(err, apperrors.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
	if err := client.GetJSON(context.Background(), "/empty", &out); !errors.Is(err, apperrors.ErrMalformedResponse) {
		t.Fatalf("expected malformed response for empty body, got %v", err)
	}
}

func TestNetworkFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := httpapi.New(url)
	err := client.GetJSON(context.Background(), "/health", nil)
	if !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("expected network failure, got %v", err)
	}
}
