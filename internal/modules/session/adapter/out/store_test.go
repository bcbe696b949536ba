package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	sessionadapter "airpulse/internal/modules/session/adapter/out"
	"airpulse/internal/modules/session/domain"
	sessionout "airpulse/internal/modules/session/port/out"
	apperrors "airpulse/internal/platform/errors"
)

func backends(t *testing.T) map[string]sessionout.Store {
	t.Helper()
	dir := t.TempDir()
	sqliteStore, err := sessionadapter.NewSQLiteStore(filepath.Join(dir, "airpulse.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	return map[string]sessionout.Store{
		"file":   sessionadapter.NewFileStore(filepath.Join(dir, "session.json")),
		"sqlite": sqliteStore,
	}
}

func TestStoreRoundTripAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	want := domain.Session{
		Token: "tok-123",
		User:  &domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: "Doctor", CreatedAt: "2026-01-02T03:04:05Z"},
	}
	for name, store := range backends(t) {
		if _, err := store.Load(ctx); !errors.Is(err, apperrors.ErrNoSession) {
			t.Fatalf("%s: expected no session before save, got %v", name, err)
		}
		if err := store.Save(ctx, want); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: round trip mismatch: %+v vs %+v", name, got, want)
		}
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("%s: clear: %v", name, err)
		}
		if _, err := store.Load(ctx); !errors.Is(err, apperrors.ErrNoSession) {
			t.Fatalf("%s: expected no session after clear, got %v", name, err)
		}
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("%s: clearing twice must be a no-op: %v", name, err)
		}
	}
}

func TestStoreTokenOnlySessionDropsStaleUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	for name, store := range backends(t) {
		if err := store.Save(ctx, domain.Session{Token: "a", User: &domain.User{Name: "Old"}}); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		if err := store.Save(ctx, domain.Session{Token: "b"}); err != nil {
			t.Fatalf("%s: save token only: %v", name, err)
		}
		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got.Token != "b" || got.User != nil {
			t.Fatalf("%s: expected token-only session, got %+v", name, got)
		}
		if err := store.Save(ctx, domain.Session{}); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%s: expected empty token to be rejected, got %v", name, err)
		}
	}
}

func TestFileStoreLayout(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store := sessionadapter.NewFileStore(path)
	if err := store.Save(context.Background(), domain.Session{Token: "tok", User: &domain.User{Name: "Ada", Email: "ada@example.com"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	record := map[string]string{}
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("session file must be a flat string map: %v", err)
	}
	if len(record) != 2 || record["token"] != "tok" {
		t.Fatalf("unexpected record: %v", record)
	}
	user := domain.User{}
	if err := json.Unmarshal([]byte(record["user"]), &user); err != nil || user.Email != "ada@example.com" {
		t.Fatalf("user must be JSON-encoded: %q (%v)", record["user"], err)
	}
}
