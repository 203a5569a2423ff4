package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prism-press/prism/internal/config"
	"github.com/prism-press/prism/internal/logger"
)

const shutdownGrace = 10 * time.Second

// Server is the HTTP front of the service.
type Server struct {
	cfg    *config.Config
	log    logger.Logger
	engine *gin.Engine
	http   *http.Server
}

// NewServer builds the gin engine, mounts the handlers, and prepares the
// listener. It does not start serving.
func NewServer(cfg *config.Config, handlers *Handlers, log logger.Logger) *Server {
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	if cfg.MaintenanceMode {
		engine.Use(maintenance())
	}

	handlers.Register(engine)

	return &Server{
		cfg:    cfg,
		log:    logger.Ensure(log),
		engine: engine,
		http: &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: engine,
		},
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server listening", "listen_addr", s.cfg.ListenAddr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.log.InfoObj("http server stopped", "listen_addr", s.cfg.ListenAddr)
	return <-errCh
}

// maintenance rejects every request except the health probe while the
// service is flagged down for maintenance.
func maintenance() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "/healthz" {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": "service is down for maintenance",
		})
	}
}

// requestLogger records one structured line per request.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	log = logger.Ensure(log)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.InfoObj("http request", "http_meta", map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
