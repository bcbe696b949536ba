package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	recordingadapter "airpulse/internal/modules/recording/adapter/out"
	"airpulse/internal/modules/recording/domain"
)

func TestSQLiteCacheReplaceKeepsOrder(t *testing.T) {
	t.Parallel()
	cache, err := recordingadapter.NewSQLiteCache(filepath.Join(t.TempDir(), "airpulse.db"))
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	first := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	if err := cache.Replace(ctx, []domain.Recording{{ID: "x", Title: "old"}}, first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	second := first.Add(time.Hour)
	rows := []domain.Recording{
		{ID: "b", Title: "rec_2.wav", Duration: 12, CreatedAt: "2026-06-01T09:00:00Z"},
		{ID: "a", Title: "rec_1.wav", URL: "https://cdn/a.wav"},
	}
	if err := cache.Replace(ctx, rows, second); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, syncedAt, err := cache.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0] != rows[0] || got[1] != rows[1] {
		t.Fatalf("unexpected cached rows: %+v", got)
	}
	if !syncedAt.Equal(second) {
		t.Fatalf("expected synced at %s, got %s", second, syncedAt)
	}
}

func TestSQLiteCacheTellsEmptySyncFromNeverSynced(t *testing.T) {
	t.Parallel()
	cache, err := recordingadapter.NewSQLiteCache(filepath.Join(t.TempDir(), "airpulse.db"))
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	rows, syncedAt, err := cache.List(ctx)
	if err != nil || len(rows) != 0 || !syncedAt.IsZero() {
		t.Fatalf("expected never-synced cache, got %+v %s %v", rows, syncedAt, err)
	}

	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	if err := cache.Replace(ctx, []domain.Recording{{ID: "a", Title: "rec_1.wav"}}, now); err != nil {
		t.Fatalf("replace: %v", err)
	}
	later := now.Add(time.Minute)
	if err := cache.Replace(ctx, nil, later); err != nil {
		t.Fatalf("replace with empty listing: %v", err)
	}
	rows, syncedAt, err = cache.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 || !syncedAt.Equal(later) {
		t.Fatalf("expected empty listing synced at %s, got %+v %s", later, rows, syncedAt)
	}
}
