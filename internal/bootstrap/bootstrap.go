package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	analysisinadapter "airpulse/internal/modules/analysis/adapter/in"
	analysisoutadapter "airpulse/internal/modules/analysis/adapter/out"
	analysisservice "airpulse/internal/modules/analysis/service"
	analysisusecase "airpulse/internal/modules/analysis/usecase"
	deviceinadapter "airpulse/internal/modules/device/adapter/in"
	deviceoutadapter "airpulse/internal/modules/device/adapter/out"
	deviceout "airpulse/internal/modules/device/port/out"
	deviceservice "airpulse/internal/modules/device/service"
	deviceusecase "airpulse/internal/modules/device/usecase"
	endpointinadapter "airpulse/internal/modules/endpoint/adapter/in"
	endpointoutadapter "airpulse/internal/modules/endpoint/adapter/out"
	endpointdomain "airpulse/internal/modules/endpoint/domain"
	endpointservice "airpulse/internal/modules/endpoint/service"
	endpointusecase "airpulse/internal/modules/endpoint/usecase"
	recordinginadapter "airpulse/internal/modules/recording/adapter/in"
	recordingoutadapter "airpulse/internal/modules/recording/adapter/out"
	recordingout "airpulse/internal/modules/recording/port/out"
	recordingservice "airpulse/internal/modules/recording/service"
	recordingusecase "airpulse/internal/modules/recording/usecase"
	sessioninadapter "airpulse/internal/modules/session/adapter/in"
	sessionoutadapter "airpulse/internal/modules/session/adapter/out"
	sessionout "airpulse/internal/modules/session/port/out"
	sessionservice "airpulse/internal/modules/session/service"
	sessionusecase "airpulse/internal/modules/session/usecase"
	"airpulse/internal/platform/clock"
	"airpulse/internal/platform/config"
	"airpulse/internal/platform/httpapi"
	"airpulse/internal/platform/id"
	"airpulse/internal/platform/logging"
	uiapp "airpulse/internal/ui/app"
)

type App struct {
	Config   config.Config
	Endpoint string

	EndpointCLI  endpointinadapter.CLIHandler
	SessionCLI   sessioninadapter.CLIHandler
	RecordingCLI recordinginadapter.CLIHandler
	AnalysisCLI  analysisinadapter.CLIHandler
	DeviceCLI    deviceinadapter.CLIHandler

	closers []io.Closer
}

type options struct {
	clock    clock.Clock
	ids      id.Generator
	capturer recordingout.Capturer
	radio    deviceout.Radio
}

type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithIDs(g id.Generator) Option {
	return func(o *options) { o.ids = g }
}

// WithCapturer replaces the external recorder command.
func WithCapturer(c recordingout.Capturer) Option {
	return func(o *options) { o.capturer = c }
}

// WithRadio replaces the bluetoothctl radio.
func WithRadio(r deviceout.Radio) Option {
	return func(o *options) { o.radio = r }
}

// New wires every module against cfg. The endpoint is resolved once here and
// passed to each network adapter.
func New(ctx context.Context, cfg config.Config, logger hclog.Logger, opts ...Option) (*App, error) {
	logger = logging.OrDiscard(logger)
	o := options{clock: clock.SystemClock{}, ids: id.UUID{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capturer == nil {
		o.capturer = recordingoutadapter.NewExecCapturer(cfg.Recorder.Command)
	}
	if o.radio == nil {
		o.radio = deviceoutadapter.NewBluetoothctlRadio("")
	}

	app := &App{Config: cfg}

	resolver := endpointservice.NewResolver(
		endpointoutadapter.NewHTTPProber(&http.Client{}),
		cfg.Endpoint.ProbeTimeout,
		logger.Named("endpoint"),
	)
	endpointUC := endpointusecase.NewInteractor(resolver, endpointdomain.Mode(cfg.Endpoint.Mode), endpointdomain.Candidates{
		Local:  cfg.Endpoint.LocalURL,
		Hosted: cfg.Endpoint.HostedURL,
	})
	resolved := endpointUC.Resolve(ctx)
	app.Endpoint = resolved.BaseURL

	httpLogger := logger.Named("http")
	anonClient := httpapi.New(resolved.BaseURL,
		httpapi.WithTimeout(cfg.HTTP.RequestTimeout),
		httpapi.WithLogger(httpLogger),
	)

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	sessionUC := sessionusecase.NewInteractor(sessionservice.NewAuthService(
		o.clock,
		store,
		sessionoutadapter.NewHTTPAuthGateway(anonClient),
		sessionoutadapter.NewJWTInspector(),
		cfg.HTTP.LoginTimeout,
		logger.Named("session"),
	))

	apiClient := httpapi.New(resolved.BaseURL,
		httpapi.WithTimeout(cfg.HTTP.RequestTimeout),
		httpapi.WithTokenSource(sessionUC),
		httpapi.WithLogger(httpLogger),
	)

	cache, err := recordingoutadapter.NewSQLiteCache(cfg.DBPath)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("open recordings cache: %w", err)
	}
	if c, ok := cache.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	recordingUC := recordingusecase.NewInteractor(recordingservice.NewRecordingService(
		o.clock,
		o.capturer,
		recordingoutadapter.NewHTTPGateway(apiClient),
		cache,
		cfg.RecordingsDir,
		logger.Named("recording"),
	))

	analysisUC := analysisusecase.NewInteractor(
		analysisservice.NewAnalysisService(analysisoutadapter.NewHTTPGateway(apiClient), logger.Named("analysis")),
		analysisservice.NewChatService(o.ids, cfg.Chat.ReplyDelay),
	)

	deviceUC := deviceusecase.NewInteractor(deviceservice.NewDeviceService(o.radio, cfg.Bluetooth.ScanWindow, logger.Named("device")))

	app.EndpointCLI = endpointinadapter.NewCLIHandler(endpointUC)
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.RecordingCLI = recordinginadapter.NewCLIHandler(recordingUC)
	app.AnalysisCLI = analysisinadapter.NewCLIHandler(analysisUC)
	app.DeviceCLI = deviceinadapter.NewCLIHandler(deviceUC)

	logger.Debug("bootstrap complete", "endpoint", resolved.BaseURL, "source", resolved.Source, "session_backend", cfg.Session.Backend)
	return app, nil
}

func newSessionStore(cfg config.Config) (sessionout.Store, error) {
	switch cfg.Session.Backend {
	case config.BackendSQLite:
		store, err := sessionoutadapter.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		return store, nil
	default:
		return sessionoutadapter.NewFileStore(cfg.SessionPath), nil
	}
}

// Close releases the SQLite handles.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(uiapp.Ports{
		Session:   app.SessionCLI,
		Recording: app.RecordingCLI,
		Analysis:  app.AnalysisCLI,
		Device:    app.DeviceCLI,
		Endpoint:  app.EndpointCLI,
	}, uiapp.Options{SplashDuration: app.Config.UI.SplashDuration})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
