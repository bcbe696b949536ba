package components_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"airpulse/internal/ui/components"
)

func TestSparklineScalesAndResamples(t *testing.T) {
	t.Parallel()
	if got := components.Sparkline([]float64{0, 1}, 10); got != "▁█" {
		t.Fatalf("expected min and max ticks, got %q", got)
	}
	if got := components.Sparkline([]float64{3, 3, 3}, 10); got != "▁▁▁" {
		t.Fatalf("flat series should render lowest ticks, got %q", got)
	}
	long := make([]float64, 120)
	for i := range long {
		long[i] = float64(i % 7)
	}
	if got := components.Sparkline(long, 40); utf8.RuneCountInString(got) != 40 {
		t.Fatalf("expected 40 cells, got %d", utf8.RuneCountInString(got))
	}
	if components.Sparkline(nil, 10) != "" {
		t.Fatalf("empty series should render nothing")
	}
}

func TestBarClampsPercent(t *testing.T) {
	t.Parallel()
	if got := components.Bar(50, 10); got != strings.Repeat("█", 5)+strings.Repeat("░", 5) {
		t.Fatalf("unexpected half bar %q", got)
	}
	if got := components.Bar(150, 4); got != "████" {
		t.Fatalf("expected full bar, got %q", got)
	}
	if got := components.Bar(-5, 4); got != "░░░░" {
		t.Fatalf("expected empty bar, got %q", got)
	}
}

func TestPaletteMatching(t *testing.T) {
	t.Parallel()
	got := components.Matching("record:", 5)
	if len(got) != 3 || got[0] != "record:start" {
		t.Fatalf("unexpected record matches: %v", got)
	}
	if len(components.Matching("", 5)) != 5 {
		t.Fatalf("empty prefix should be capped at limit")
	}
	if len(components.Matching("nope", 5)) != 0 {
		t.Fatalf("unknown prefix should match nothing")
	}
}
