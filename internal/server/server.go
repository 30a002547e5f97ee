// Package server exposes report generation over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/internal/config"
	"github.com/reportkit/go-docfill/internal/logger"
	"github.com/reportkit/go-docfill/internal/service"
	"github.com/reportkit/go-docfill/pkg/docfill"
)

const shutdownTimeout = 30 * time.Second

// Reporter generates reports for the handlers.
type Reporter interface {
	Generate(ctx context.Context, in service.Inputs) (docfill.Report, error)
	GenerateConfigured(ctx context.Context) (docfill.Report, error)
}

// Server is the HTTP front end of the report service.
type Server struct {
	reports Reporter
	cfg     config.HTTPConfig
	logger  *zap.Logger
	router  *gin.Engine
}

// New creates a server and registers its routes.
func New(reports Reporter, cfg config.HTTPConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		reports: reports,
		cfg:     cfg,
		logger:  log,
	}

	router := gin.New()
	router.Use(logger.GinMiddleware(log), logger.Recovery(log))
	router.MaxMultipartMemory = cfg.MaxBodyBytes

	router.GET("/healthz", s.health)
	router.GET("/generate", s.generateConfigured)
	router.POST("/generate", BodyLimit(cfg.MaxBodyBytes), s.generateUpload)
	s.router = router
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", srv.Addr))
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

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server exited gracefully")
	return nil
}

// BodyLimit rejects requests whose body exceeds maxBytes.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortError(c, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "request body exceeds maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
