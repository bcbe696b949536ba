package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"
)

const rootName = "airpulse"

// New returns the root logger writing to w. Unknown levels fall back to info.
func New(level string, w io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   rootName,
		Level:  lvl,
		Output: w,
	})
}

// NewFile appends to path. The TUI owns the terminal, so it logs here.
func NewFile(path, level string) (hclog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(level, f), f, nil
}

func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}

// OrDiscard lets constructors accept a nil logger.
func OrDiscard(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
