// Package devserver is an in-memory AirPulse backend for local development
// and tests. It serves the same /api contract as the hosted service, with
// synthetic analysis results.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	hclog "github.com/hashicorp/go-hclog"

	"airpulse/internal/platform/clock"
	"airpulse/internal/platform/id"
	"airpulse/internal/platform/logging"
)

type Config struct {
	// Secret signs session tokens. Required.
	Secret string
	// InboxDir is scanned by bulk-upload. Empty disables bulk import.
	InboxDir string
	TokenTTL time.Duration
	// LoginRate and LoginBurst limit auth requests per client address.
	LoginRate  float64
	LoginBurst int

	Clock  clock.Clock
	IDs    id.Generator
	Logger hclog.Logger
}

type Server struct {
	cfg     Config
	clock   clock.Clock
	ids     id.Generator
	logger  hclog.Logger
	limiter *rateLimiter

	mu         sync.RWMutex
	users      map[string]*user
	recordings []*recording
	byID       map[string]*recording
	imported   map[string]bool
}

func New(cfg Config) (*Server, error) {
	if cfg.Secret == "" {
		return nil, errors.New("devserver secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.LoginRate <= 0 {
		cfg.LoginRate = 5
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = 10
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.SystemClock{}
	}
	if cfg.IDs == nil {
		cfg.IDs = id.UUID{}
	}
	return &Server{
		cfg:      cfg,
		clock:    cfg.Clock,
		ids:      cfg.IDs,
		logger:   logging.OrDiscard(cfg.Logger),
		limiter:  newRateLimiter(cfg.LoginRate, cfg.LoginBurst, cfg.Clock),
		users:    map[string]*user{},
		byID:     map[string]*recording{},
		imported: map[string]bool{},
	}, nil
}

// Handler routes everything under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(s.rateLimit)
	auth.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	auth.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	recs := func(h http.HandlerFunc) http.Handler { return s.optionalAuth(h) }
	api.Handle("/recordings", recs(s.handleListRecordings)).Methods(http.MethodGet)
	api.Handle("/recordings", recs(s.handleUpload)).Methods(http.MethodPost)
	api.Handle("/recordings/bulk-upload", recs(s.handleBulkUpload)).Methods(http.MethodPost)
	api.Handle("/recordings/analyze/{id}", recs(s.handleAnalyze)).Methods(http.MethodGet)
	api.Handle("/recordings/{id}", recs(s.handleDelete)).Methods(http.MethodDelete)

	api.HandleFunc("/files/{id}", s.handleFile).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})
	return r
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devserver listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("devserver: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("devserver shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(started))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
