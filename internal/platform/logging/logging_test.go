package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airpulse/internal/platform/logging"
)

func TestNewParsesLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.New("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
	if !logging.New("bogus", &buf).IsInfo() {
		t.Fatalf("unknown level must fall back to info")
	}
}

func TestNewFileCreatesParentDir(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "airpulse.log")
	logger, closer, err := logging.NewFile(path, "info")
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	logger.Info("recording uploaded", "id", "rec_1.wav")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "rec_1.wav") {
		t.Fatalf("expected log line, got %q", raw)
	}
}

func TestOrDiscard(t *testing.T) {
	t.Parallel()
	if logging.OrDiscard(nil) == nil {
		t.Fatalf("nil logger must become a discard logger")
	}
}
