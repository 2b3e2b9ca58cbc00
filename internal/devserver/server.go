// Package devserver is an in-memory implementation of the hypewriter
// project backend, used for local development and as a real HTTP peer in
// client tests.
package devserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/project"
	"github.com/fyrsmithlabs/hypewriter/internal/telemetry"
)

// Server serves the project REST API over a project.Catalog.
type Server struct {
	echo    *echo.Echo
	catalog *project.Catalog
	logger  *logging.Logger
	config  *Config
	metrics *catalogMetrics
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new development backend.
// tel may be nil, in which case the global meter provider is used.
func NewServer(catalog *project.Catalog, logger *logging.Logger, cfg *Config, tel *telemetry.Telemetry) (*Server, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8000,
		}
	}
	logger = logger.Named("devserver")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(newHTTPMetrics(tel.Meter(instrumentationName), logger).middleware())

	s := &Server{
		echo:    e,
		catalog: catalog,
		logger:  logger,
		config:  cfg,
		metrics: newCatalogMetrics(),
	}
	s.metrics.Projects.Set(float64(catalog.Len()))
	s.registerRoutes()

	return s, nil
}

// requestLogger logs every request with its id and stores the id in the
// request context for downstream log lines.
func requestLogger(logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			ctx := logging.WithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			logger.Info(ctx, "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := s.echo.Group("/api")
	api.GET("/projects", s.handleListProjects)
	api.POST("/projects", s.handleCreateProject)
	api.POST("/projects/:id/activate", s.handleActivateProject)
	api.DELETE("/projects/:id", s.handleDeleteProject)
	api.POST("/import/novel", s.handleImportNovel)
}

// Handler exposes the server for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "starting dev server", zap.String("addr", s.Addr()))
	return s.echo.Start(s.Addr())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down dev server")
	return s.echo.Shutdown(ctx)
}
