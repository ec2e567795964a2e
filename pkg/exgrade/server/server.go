// Package server exposes grading over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ukaji3/exgrade-go/pkg/exgrade"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/scoring"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/template"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/transcript"
)

// Config configures the server.
type Config struct {
	ListenAddress   string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	Grade           exgrade.Options
	Layout          template.Layout
}

// Server serves the template, grading and interview endpoints.
type Server struct {
	cfg         Config
	router      *gin.Engine
	scorer      scoring.Scorer
	transcripts transcript.Store
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a server. scorer and store must not be nil.
func New(cfg Config, scorer scoring.Scorer, store transcript.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	s := &Server{
		cfg:         cfg,
		router:      router,
		scorer:      scorer,
		transcripts: store,
		logger:      logger,
		now:         time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/v1", s.limitBody)
	v1.GET("/template", s.handleTemplate)
	v1.POST("/grade", s.handleGrade)
	v1.POST("/interviews", s.handleInterview)

	if s.cfg.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("grading server listening", "address", s.cfg.ListenAddress)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down grading server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
