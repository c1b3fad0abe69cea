// Package api exposes the query service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/GamblerIX/duanju/internal/config"
	"github.com/GamblerIX/duanju/internal/fetch"
	"github.com/GamblerIX/duanju/internal/scheduler"
)

// Server handles HTTP requests for the aggregation API.
type Server struct {
	echo       *echo.Echo
	cfg        *config.Config
	service    *fetch.Service
	dispatcher *fetch.Dispatcher
	scheduler  *scheduler.Scheduler
	logger     zerolog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, service *fetch.Service, dispatcher *fetch.Dispatcher, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:       e,
		cfg:        cfg,
		service:    service,
		dispatcher: dispatcher,
		scheduler:  sched,
		logger:     logger.With().Str("component", "api").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogMethod:  true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Warn().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", s.handleHealth)

	api.GET("/search", s.handleSearch)
	api.GET("/categories", s.handleCategories)
	api.GET("/categoryDramas", s.handleCategoryDramas)
	api.GET("/recommendations", s.handleRecommendations)
	api.GET("/drama/:id/episodes", s.handleEpisodes)
	api.GET("/episode/:id/video", s.handleVideoURL)
	api.GET("/home", s.handleHome)

	api.GET("/providers", s.handleListProviders)
	api.PUT("/providers/active", s.handleSetActiveProvider)

	api.GET("/cache/stats", s.handleCacheStats)
	api.DELETE("/cache", s.handleClearCache)

	api.GET("/tasks", s.handleListTasks)
	api.POST("/tasks/:id/run", s.handleRunTask)
}

// Handler exposes the underlying handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}
