package bootstrap_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"airpulse/internal/bootstrap"
	"airpulse/internal/devserver"
	"airpulse/internal/platform/config"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/ui/gate"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fileCapturer struct{ path string }

func (f *fileCapturer) Start(_ context.Context, path string) error {
	f.path = path
	return os.WriteFile(path, []byte("RIFF0000WAVE"), 0o644)
}

func (f *fileCapturer) Stop(context.Context) (string, error) { return f.path, nil }

type env struct {
	cfg   config.Config
	clock *stepClock
	opts  []bootstrap.Option
}

func newEnv(t *testing.T, backend string) env {
	t.Helper()
	clk := &stepClock{now: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	srv, err := devserver.New(devserver.Config{Secret: "test-secret", Clock: clk})
	if err != nil {
		t.Fatalf("devserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg, err := config.Load(t.TempDir(), func(key string) (string, bool) {
		switch key {
		case "AIRPULSE_LOCAL_URL":
			return ts.URL + "/api", true
		case "AIRPULSE_HOSTED_URL":
			return "http://127.0.0.1:1/api", true
		case "AIRPULSE_SESSION_BACKEND":
			return backend, true
		}
		return "", false
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Chat.ReplyDelay = 0
	return env{
		cfg:   cfg,
		clock: clk,
		opts:  []bootstrap.Option{bootstrap.WithClock(clk), bootstrap.WithCapturer(&fileCapturer{})},
	}
}

func (e env) app(t *testing.T) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.New(context.Background(), e.cfg, nil, e.opts...)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestAutoModeResolvesLocalDevServer(t *testing.T) {
	t.Parallel()
	e := newEnv(t, config.BackendFile)
	app := e.app(t)
	if app.Endpoint != e.cfg.Endpoint.LocalURL {
		t.Fatalf("expected local endpoint %s, got %s", e.cfg.Endpoint.LocalURL, app.Endpoint)
	}
}

func TestLoginPersistsSessionAcrossRestarts(t *testing.T) {
	t.Parallel()
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		backend := backend
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t, backend)
			ctx := context.Background()
			app := e.app(t)

			if _, err := app.SessionCLI.Register(ctx, "Ada", "ada@example.com", "secret1", "secret1", "Doctor"); err != nil {
				t.Fatalf("register: %v", err)
			}

			_, err := app.SessionCLI.Login(ctx, "ada@example.com", "wrong-password")
			var serverErr *apperrors.ServerError
			if !errors.As(err, &serverErr) || serverErr.Message != "Invalid credentials" {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
			if token, err := app.SessionCLI.Token(ctx); err != nil || token != "" {
				t.Fatalf("failed login must not persist a token, got %q %v", token, err)
			}
			_, err = app.SessionCLI.Resume(ctx)
			g, _ := gate.New().SplashElapsed(err == nil)
			if g.Stage() != gate.StageOnboarding {
				t.Fatalf("expected onboarding without a session, got %s", g.Stage())
			}

			session, err := app.SessionCLI.Login(ctx, "ada@example.com", "secret1")
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if session.Token == "" || session.User.Role != "Doctor" {
				t.Fatalf("unexpected session %+v", session)
			}
			_ = app.Close()

			restarted := e.app(t)
			resumed, err := restarted.SessionCLI.Resume(ctx)
			if err != nil || resumed.Token != session.Token {
				t.Fatalf("expected persisted session, got %+v %v", resumed, err)
			}
			g, _ = gate.New().SplashElapsed(true)
			if g.Stage() != gate.StageMain || g.Tab() != gate.TabHome {
				t.Fatalf("expected main/home after resume, got %s", g.Stage())
			}
			profile, err := restarted.SessionCLI.Profile(ctx)
			if err != nil || profile.Email != "ada@example.com" || !profile.HasClaims {
				t.Fatalf("unexpected profile %+v %v", profile, err)
			}

			if err := restarted.SessionCLI.Logout(ctx); err != nil {
				t.Fatalf("logout: %v", err)
			}
			if _, err := restarted.SessionCLI.Resume(ctx); !errors.Is(err, apperrors.ErrNoSession) {
				t.Fatalf("expected no session after logout, got %v", err)
			}
		})
	}
}

func TestRecordUploadAnalyzeFlow(t *testing.T) {
	t.Parallel()
	e := newEnv(t, config.BackendFile)
	ctx := context.Background()
	app := e.app(t)

	if _, err := app.RecordingCLI.Upload(ctx); !errors.Is(err, apperrors.ErrNoRecording) {
		t.Fatalf("expected no recording before capture, got %v", err)
	}

	if _, err := app.RecordingCLI.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	e.clock.Advance(45 * time.Second)
	stopped, err := app.RecordingCLI.Stop(ctx)
	if err != nil || stopped.ElapsedSeconds != 45 {
		t.Fatalf("stop: %+v %v", stopped, err)
	}
	e.clock.Advance(time.Second)
	uploaded, err := app.RecordingCLI.Upload(ctx)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if uploaded.Title != "rec_1780300846000.wav" || uploaded.DurationSeconds != 45 {
		t.Fatalf("unexpected upload %+v", uploaded)
	}

	rows, err := app.RecordingCLI.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != uploaded.Title || rows[0].Duration != 45 {
		t.Fatalf("unexpected list %+v", rows)
	}
	cached, err := app.RecordingCLI.ListCached(ctx)
	if err != nil || len(cached.Recordings) != 1 {
		t.Fatalf("expected cached listing, got %+v %v", cached, err)
	}

	screen := app.AnalysisCLI.Fetch(ctx, rows[0].ID, rows[0].Title)
	if screen.Phase != "loaded" || screen.Err != nil {
		t.Fatalf("unexpected analysis screen %+v", screen)
	}
	if screen.Analysis.BPM <= 0 || len(screen.Analysis.ECG) == 0 || screen.Analysis.Status == "" {
		t.Fatalf("analysis not populated: %+v", screen.Analysis)
	}

	missing := app.AnalysisCLI.Fetch(ctx, "nope", "")
	if missing.Phase != "failed" || missing.Err == nil {
		t.Fatalf("expected failed screen for unknown id, got %+v", missing)
	}

	if err := app.RecordingCLI.Delete(ctx, rows[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, err = app.RecordingCLI.List(ctx)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected empty list after delete, got %+v %v", rows, err)
	}
}
