// Package api provides HTTP handlers and the main API server logic for MovePilot.
//
// It exposes the decision engine over REST: chat turns, workflow definitions
// and submissions, task refresh, and the operational surfaces (health,
// metrics). The API integrates with the chat, flow, catalog, and store
// modules.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/catalog"
	"github.com/MovePilotApp/MovePilot/internal/chat"
	"github.com/MovePilotApp/MovePilot/internal/flow"
	"github.com/MovePilotApp/MovePilot/internal/genai"
	"github.com/MovePilotApp/MovePilot/internal/notify"
	"github.com/MovePilotApp/MovePilot/internal/ratelimit"
	"github.com/MovePilotApp/MovePilot/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default server settings.
const (
	// DefaultAddr is the default listen address for the API server.
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful shutdown once the run context ends.
	DefaultShutdownTimeout = 10 * time.Second

	readHeaderTimeout = 5 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string // address to listen on
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address for the API server.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// Server bundles the engine components behind the HTTP surface.
type Server struct {
	st        store.Store
	chat      *chat.Service
	submitter *flow.Submitter
	catalog   *catalog.Catalog
}

// NewServer assembles a Server from already-constructed components. Run
// builds everything from options; NewServer exists for tests and embedders.
func NewServer(st store.Store, chatSvc *chat.Service, submitter *flow.Submitter, cat *catalog.Catalog) *Server {
	return &Server{st: st, chat: chatSvc, submitter: submitter, catalog: cat}
}

// Handler builds the route table. The exact "/tasks/refresh" pattern wins
// over the "/tasks/" prefix, so refresh never shadows per-user task reads.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/turn", s.chatTurnHandler)
	mux.HandleFunc("/workflows/", s.workflowsHandler)
	mux.HandleFunc("/tasks/refresh", s.tasksRefreshHandler)
	mux.HandleFunc("/tasks/", s.tasksHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run assembles every component from the given option sets and serves HTTP
// until ctx is cancelled. It owns component lifecycle: store teardown, the
// admission window sweeper, and graceful shutdown.
func Run(ctx context.Context, storeOpts []store.Option, genaiOpts []genai.Option, notifyOpts []notify.Option, apiOpts []Option) error {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	slog.Debug("Run: API options applied", "addr", cfg.Addr)

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	st, err := newStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Run: failed to close store", "error", err)
		}
	}()

	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	// Alerts degrade to log-only when Twilio credentials are absent. The
	// variable stays a nil interface in that case; a typed nil would read
	// as configured downstream.
	var alerter chat.Alerter
	if a, err := notify.NewTwilioAlerter(notifyOpts...); err != nil {
		slog.Warn("Run: operator SMS alerts disabled", "error", err)
	} else {
		alerter = a
	}
	webhook := notify.NewWebhookNotifier(notifyOpts...)

	limiter := ratelimit.NewWindowLimiter()
	go limiter.Run(ctx)

	chatSvc := chat.NewService(limiter, client, nil, nil, alerter)
	submitter := flow.NewSubmitter(cat, flow.NewGenerator(st), st, webhook)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewServer(st, chatSvc, submitter, cat).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Run: API server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Run: shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// newStore picks the backend from the options: Postgres when a Postgres DSN
// is set, SQLite when a SQLite DSN is set, otherwise process-local memory.
func newStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	switch {
	case cfg.PostgresDSN != "":
		slog.Debug("Run: using Postgres store")
		return store.NewPostgresStore(storeOpts...)
	case cfg.SQLiteDSN != "":
		slog.Debug("Run: using SQLite store")
		return store.NewSQLiteStore(storeOpts...)
	default:
		slog.Warn("Run: no store DSN configured, tasks and submissions will not survive restarts")
		return store.NewInMemoryStore(), nil
	}
}
