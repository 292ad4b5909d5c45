// Package api serves the HTTP endpoints the web board calls.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Asad272002/TaskWiser-V2/internal/auth"
	"github.com/Asad272002/TaskWiser-V2/internal/metrics"
	"github.com/Asad272002/TaskWiser-V2/internal/store"
)

// LogWriter is the logging surface the server uses.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Options configures the server.
type Options struct {
	Listen         string
	AllowedOrigins []string
	// Tokens enables wallet sign-in; when set, task routes require a
	// bearer token.
	Tokens *auth.Tokens
}

// API routes requests to the nonce issuer and task store.
type API struct {
	router  *mux.Router
	issuer  *auth.Issuer
	tasks   store.TaskStore
	metrics *metrics.Metrics
	logger  LogWriter
	opts    Options
}

// New builds the router.
func New(issuer *auth.Issuer, tasks store.TaskStore, m *metrics.Metrics, logger LogWriter, opts Options) *API {
	a := &API{
		router:  mux.NewRouter(),
		issuer:  issuer,
		tasks:   tasks,
		metrics: m,
		logger:  logger,
		opts:    opts,
	}
	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/api/auth/nonce", a.handleNonce).Methods("POST")
	if a.opts.Tokens != nil {
		a.router.HandleFunc("/api/auth/verify", a.handleVerify).Methods("POST")
	}
	a.router.Handle("/api/tasks/payable", a.requireToken(http.HandlerFunc(a.handlePayableTasks))).Methods("GET")
	a.router.HandleFunc("/api/metrics", a.handleMetrics).Methods("GET")
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")
}

// Handler returns the router wrapped in CORS handling.
func (a *API) Handler() http.Handler {
	origins := a.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	}).Handler(a.router)
}

// Serve listens until ctx is canceled, then shuts down gracefully.
func (a *API) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.opts.Listen,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Debug("API server listening on http://%s", a.opts.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
