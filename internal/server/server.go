// Package server exposes the tutor operations over HTTP so the AI
// provider key stays on the server. Clients authenticate with the
// backend's bearer token.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mateai/mate/internal/llm"
	"github.com/mateai/mate/internal/logger"
	"github.com/mateai/mate/internal/tutor"
)

// HistoryFunc returns the prior-performance source for a request, given
// the caller's bearer token. It may return nil.
type HistoryFunc func(token string) tutor.HistorySource

// Options configure a Server. Provider is required.
type Options struct {
	Provider llm.Provider
	Tutor    tutor.Config
	History  HistoryFunc

	// JWTSecret verifies HS256 bearer tokens. Empty disables auth.
	JWTSecret      string
	AllowedOrigins []string

	// Events and Retention drive the hourly LLM event pruning job.
	Events    Pruner
	Retention time.Duration

	Mode   string
	Logger *logger.Logger
}

// Server is the `mate serve` HTTP service.
type Server struct {
	provider llm.Provider
	tutorCfg tutor.Config
	history  HistoryFunc
	secret   []byte
	log      *logger.Logger

	engine    *gin.Engine
	retention *retentionJob
}

// New builds the gin engine and routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		provider: opts.Provider,
		tutorCfg: opts.Tutor,
		history:  opts.History,
		secret:   []byte(opts.JWTSecret),
		log:      log.With("component", "server"),
	}
	if s.tutorCfg == (tutor.Config{}) {
		s.tutorCfg = tutor.DefaultConfig()
	}
	if len(s.secret) == 0 {
		s.log.Warn("JWT secret not set; /api/ai is unauthenticated")
	}
	if opts.Events != nil && opts.Retention > 0 {
		s.retention = newRetentionJob(opts.Events, opts.Retention, s.log)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log), corsMiddleware(opts.AllowedOrigins))
	r.GET("/healthz", s.handleHealth)

	ai := r.Group("/api/ai", s.requireAuth())
	ai.POST("/exercises", s.handleExercises)
	ai.POST("/hint", s.handleHint)
	ai.POST("/validate", s.handleValidate)
	ai.POST("/report", s.handleReport)
	ai.POST("/explanation", s.handleExplanation)

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.retention != nil {
		if err := s.retention.Start(); err != nil {
			return err
		}
		defer s.retention.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr, "model", s.provider.ModelID())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) tutorFor(c *gin.Context) *tutor.Client {
	var history tutor.HistorySource
	if s.history != nil {
		history = s.history(bearerToken(c))
	}
	return tutor.New(s.provider, s.tutorCfg, history, s.log)
}
