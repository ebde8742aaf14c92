package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bisegni/invscan/pkg/config"
	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/engine"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the scanner over HTTP
type Server struct {
	cfg     *config.Config
	catalog *database.Catalog
	scanner *engine.Scanner
	logger  *slog.Logger
	router  *gin.Engine
}

// New builds the router. Files already present in the data and upload
// directories are registered in catalog.
func New(cfg *config.Config, catalog *database.Catalog, scanner *engine.Scanner, logger *slog.Logger) (*Server, error) {
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	for _, dir := range []string{cfg.Data.Dir, cfg.Upload.Dir} {
		n, err := catalog.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		logger.Info("datasets loaded", "dir", dir, "count", n)
	}

	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		scanner: scanner,
		logger:  logger,
	}

	router := gin.New()
	router.MaxMultipartMemory = maxFormMemory
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst))

	router.GET("/healthz", s.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/", APIKeyMiddleware(cfg.API.Key))
	api.GET("/filterResult", s.FilterResult)
	api.POST("/filterResult", s.FilterResult)
	api.GET("/datasets", s.Datasets)

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
