package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeAuto   = "auto"
	ModeLocal  = "local"
	ModeHosted = "hosted"

	BackendFile   = "file"
	BackendSQLite = "sqlite"

	DefaultLocalURL  = "http://localhost:5000/api"
	DefaultHostedURL = "https://backend-airpulse.onrender.com/api"
)

type Config struct {
	StateDir      string
	DBPath        string
	SessionPath   string
	LogPath       string
	RecordingsDir string
	LogLevel      string

	Endpoint  EndpointConfig
	HTTP      HTTPConfig
	Session   SessionConfig
	Recorder  RecorderConfig
	Bluetooth BluetoothConfig
	Chat      ChatConfig
	UI        UIConfig
}

type EndpointConfig struct {
	Mode         string
	LocalURL     string
	HostedURL    string
	ProbeTimeout time.Duration
}

type HTTPConfig struct {
	RequestTimeout time.Duration
	LoginTimeout   time.Duration
}

type SessionConfig struct {
	Backend string
}

// RecorderConfig holds the external capture command. The literal "{path}"
// argument is replaced with the output file.
type RecorderConfig struct {
	Command []string
}

type BluetoothConfig struct {
	ScanWindow time.Duration
}

type ChatConfig struct {
	ReplyDelay time.Duration
}

type UIConfig struct {
	SplashDuration time.Duration
}

type fileConfig struct {
	Endpoint struct {
		Mode         string `yaml:"mode"`
		LocalURL     string `yaml:"local_url"`
		HostedURL    string `yaml:"hosted_url"`
		ProbeTimeout string `yaml:"probe_timeout"`
	} `yaml:"endpoint"`
	HTTP struct {
		RequestTimeout string `yaml:"request_timeout"`
		LoginTimeout   string `yaml:"login_timeout"`
	} `yaml:"http"`
	Session struct {
		Backend string `yaml:"backend"`
	} `yaml:"session"`
	Recorder struct {
		Command []string `yaml:"command"`
		Dir     string   `yaml:"dir"`
	} `yaml:"recorder"`
	Bluetooth struct {
		ScanWindow string `yaml:"scan_window"`
	} `yaml:"bluetooth"`
	Chat struct {
		ReplyDelay string `yaml:"reply_delay"`
	} `yaml:"chat"`
	UI struct {
		SplashDuration string `yaml:"splash_duration"`
	} `yaml:"ui"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultStateDir is $XDG_CONFIG_HOME/airpulse or the platform equivalent.
func DefaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".airpulse"
	}
	return filepath.Join(dir, "airpulse")
}

// New loads config for stateDir from defaults, config.yaml, .env files and
// AIRPULSE_* environment variables, in that order.
func New(stateDir string) (Config, error) {
	if stateDir == "" {
		return Config{}, fmt.Errorf("state dir is required")
	}
	if err := loadDotEnv(".env", filepath.Join(stateDir, ".env")); err != nil {
		return Config{}, err
	}
	return Load(stateDir, os.LookupEnv)
}

// Load is New without touching the process environment.
func Load(stateDir string, lookup func(string) (string, bool)) (Config, error) {
	if stateDir == "" {
		return Config{}, fmt.Errorf("state dir is required")
	}
	cfg := defaults(stateDir)
	if err := cfg.applyFile(filepath.Join(stateDir, "config.yaml")); err != nil {
		return Config{}, err
	}
	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults(stateDir string) Config {
	return Config{
		StateDir:      stateDir,
		DBPath:        filepath.Join(stateDir, "airpulse.db"),
		SessionPath:   filepath.Join(stateDir, "session.json"),
		LogPath:       filepath.Join(stateDir, "airpulse.log"),
		RecordingsDir: filepath.Join(stateDir, "recordings"),
		LogLevel:      "info",
		Endpoint: EndpointConfig{
			Mode:         ModeAuto,
			LocalURL:     DefaultLocalURL,
			HostedURL:    DefaultHostedURL,
			ProbeTimeout: 2 * time.Second,
		},
		HTTP: HTTPConfig{
			RequestTimeout: 30 * time.Second,
			LoginTimeout:   15 * time.Second,
		},
		Session:   SessionConfig{Backend: BackendFile},
		Recorder:  RecorderConfig{Command: []string{"arecord", "-q", "-f", "cd", "-t", "wav", "{path}"}},
		Bluetooth: BluetoothConfig{ScanWindow: 8 * time.Second},
		Chat:      ChatConfig{ReplyDelay: time.Second},
		UI:        UIConfig{SplashDuration: 2 * time.Second},
	}
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&c.Endpoint.Mode, fc.Endpoint.Mode)
	setString(&c.Endpoint.LocalURL, fc.Endpoint.LocalURL)
	setString(&c.Endpoint.HostedURL, fc.Endpoint.HostedURL)
	setString(&c.Session.Backend, fc.Session.Backend)
	setString(&c.LogLevel, fc.Log.Level)
	if len(fc.Recorder.Command) > 0 {
		c.Recorder.Command = fc.Recorder.Command
	}
	if fc.Recorder.Dir != "" {
		c.RecordingsDir = c.resolve(fc.Recorder.Dir)
	}

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"endpoint.probe_timeout", fc.Endpoint.ProbeTimeout, &c.Endpoint.ProbeTimeout},
		{"http.request_timeout", fc.HTTP.RequestTimeout, &c.HTTP.RequestTimeout},
		{"http.login_timeout", fc.HTTP.LoginTimeout, &c.HTTP.LoginTimeout},
		{"bluetooth.scan_window", fc.Bluetooth.ScanWindow, &c.Bluetooth.ScanWindow},
		{"chat.reply_delay", fc.Chat.ReplyDelay, &c.Chat.ReplyDelay},
		{"ui.splash_duration", fc.UI.SplashDuration, &c.UI.SplashDuration},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.key, d.value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}
	setString(&c.Endpoint.Mode, get("AIRPULSE_ENDPOINT_MODE"))
	setString(&c.Endpoint.LocalURL, get("AIRPULSE_LOCAL_URL"))
	setString(&c.Endpoint.HostedURL, get("AIRPULSE_HOSTED_URL"))
	setString(&c.Session.Backend, get("AIRPULSE_SESSION_BACKEND"))
	setString(&c.LogLevel, get("AIRPULSE_LOG_LEVEL"))
	if cmd := get("AIRPULSE_RECORDER_COMMAND"); cmd != "" {
		c.Recorder.Command = strings.Fields(cmd)
	}
	if dir := get("AIRPULSE_RECORDINGS_DIR"); dir != "" {
		c.RecordingsDir = c.resolve(dir)
	}
	if err := setDuration(&c.Endpoint.ProbeTimeout, "AIRPULSE_PROBE_TIMEOUT", get("AIRPULSE_PROBE_TIMEOUT")); err != nil {
		return err
	}
	if err := setDuration(&c.HTTP.RequestTimeout, "AIRPULSE_REQUEST_TIMEOUT", get("AIRPULSE_REQUEST_TIMEOUT")); err != nil {
		return err
	}
	return setDuration(&c.HTTP.LoginTimeout, "AIRPULSE_LOGIN_TIMEOUT", get("AIRPULSE_LOGIN_TIMEOUT"))
}

func (c Config) Validate() error {
	switch c.Endpoint.Mode {
	case ModeAuto, ModeLocal, ModeHosted:
	default:
		return fmt.Errorf("endpoint mode must be auto|local|hosted, got %q", c.Endpoint.Mode)
	}
	switch c.Session.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("session backend must be file|sqlite, got %q", c.Session.Backend)
	}
	if strings.TrimSpace(c.Endpoint.LocalURL) == "" || strings.TrimSpace(c.Endpoint.HostedURL) == "" {
		return fmt.Errorf("local and hosted endpoint urls are required")
	}
	if c.Endpoint.ProbeTimeout <= 0 {
		return fmt.Errorf("endpoint probe timeout must be positive")
	}
	if c.HTTP.LoginTimeout <= 0 || c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http timeouts must be positive")
	}
	return nil
}

func (c Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.StateDir, path)
}

func loadDotEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func setString(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

func setDuration(dst *time.Duration, key, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = d
	return nil
}
