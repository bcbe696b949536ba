package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"airpulse/internal/platform/config"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.Load(dir, envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Endpoint.Mode != config.ModeAuto {
		t.Fatalf("expected auto mode, got %s", cfg.Endpoint.Mode)
	}
	if cfg.Endpoint.LocalURL != config.DefaultLocalURL || cfg.Endpoint.HostedURL != config.DefaultHostedURL {
		t.Fatalf("unexpected endpoints: %+v", cfg.Endpoint)
	}
	if cfg.Endpoint.ProbeTimeout != 2*time.Second || cfg.HTTP.LoginTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts: probe=%s login=%s", cfg.Endpoint.ProbeTimeout, cfg.HTTP.LoginTimeout)
	}
	if cfg.UI.SplashDuration != 2*time.Second || cfg.Bluetooth.ScanWindow != 8*time.Second {
		t.Fatalf("unexpected ui/bluetooth defaults: %+v %+v", cfg.UI, cfg.Bluetooth)
	}
	if cfg.DBPath != filepath.Join(dir, "airpulse.db") || cfg.SessionPath != filepath.Join(dir, "session.json") {
		t.Fatalf("unexpected paths: %s %s", cfg.DBPath, cfg.SessionPath)
	}
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	yaml := `endpoint:
  mode: hosted
  local_url: http://127.0.0.1:9000/api
  probe_timeout: 500ms
session:
  backend: sqlite
recorder:
  command: ["sox", "-d", "{path}"]
  dir: audio
chat:
  reply_delay: 10ms
log:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(dir, envMap(map[string]string{
		"AIRPULSE_ENDPOINT_MODE": "local",
		"AIRPULSE_LOGIN_TIMEOUT": "3s",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Endpoint.Mode != config.ModeLocal {
		t.Fatalf("env must override file mode, got %s", cfg.Endpoint.Mode)
	}
	if cfg.Endpoint.LocalURL != "http://127.0.0.1:9000/api" || cfg.Endpoint.ProbeTimeout != 500*time.Millisecond {
		t.Fatalf("file endpoint settings not applied: %+v", cfg.Endpoint)
	}
	if cfg.Session.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend, got %s", cfg.Session.Backend)
	}
	if len(cfg.Recorder.Command) != 3 || cfg.Recorder.Command[0] != "sox" {
		t.Fatalf("unexpected recorder command: %v", cfg.Recorder.Command)
	}
	if cfg.RecordingsDir != filepath.Join(dir, "audio") {
		t.Fatalf("relative recorder dir must resolve under state dir, got %s", cfg.RecordingsDir)
	}
	if cfg.HTTP.LoginTimeout != 3*time.Second || cfg.Chat.ReplyDelay != 10*time.Millisecond || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected overrides: %+v %+v %s", cfg.HTTP, cfg.Chat, cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	if _, err := config.Load("", nil); err == nil {
		t.Fatalf("expected error for empty state dir")
	}
	dir := t.TempDir()
	if _, err := config.Load(dir, envMap(map[string]string{"AIRPULSE_ENDPOINT_MODE": "sometimes"})); err == nil {
		t.Fatalf("expected invalid mode error")
	}
	if _, err := config.Load(dir, envMap(map[string]string{"AIRPULSE_PROBE_TIMEOUT": "soon"})); err == nil {
		t.Fatalf("expected invalid duration error")
	}

	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "config.yaml"), []byte("unknown_key: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(bad, envMap(nil)); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
