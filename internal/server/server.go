// Package server exposes the HTTP surface: health, webhook and router
// endpoints plus the stored-analysis API.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps echo with the application routes.
type Server struct {
	echo     *echo.Echo
	pipeline *Pipeline
	logger   *slog.Logger
}

// New creates the HTTP server around the given pipeline.
func New(pipeline *Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	}))

	s := &Server{
		echo:     e,
		pipeline: pipeline,
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/webhook", s.handleWebhook)
	s.echo.POST("/router", s.handleRouter)
	s.echo.GET("/api/analysis/:resultId", s.handleGetResult)
	s.echo.GET("/api/analysis/user/:userId", s.handleUserResults)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Start runs the HTTP listener.
func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.logger.Info("starting http listener", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}
