// Package httpapi exposes the tool surface and the digest feed over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsdigest/internal/domain"
	"newsdigest/internal/tools"
)

const bodyLimit = "4M"

// ToolCaller runs registered tools.
type ToolCaller interface {
	List() []tools.Tool
	Call(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// DigestFeed is the downstream read side served to publishers.
type DigestFeed interface {
	LatestDaily(ctx context.Context, missionID string) (domain.DailyDigest, error)
	DailyByDate(ctx context.Context, missionID, date string) (domain.DailyDigest, error)
	LatestWeekly(ctx context.Context, missionID string, standardOnly bool) (domain.WeeklyDigest, error)
	MarkDailyPosted(ctx context.Context, id int64) error
	MarkWeeklyPosted(ctx context.Context, id int64) error
}

// Deps wires the server.
type Deps struct {
	Tools  ToolCaller
	Feed   DigestFeed
	Logger *slog.Logger
}

// Server is the echo-based HTTP front of the engine.
type Server struct {
	echo   *echo.Echo
	tools  ToolCaller
	feed   DigestFeed
	logger *slog.Logger
}

// New builds the router with middleware and every route registered.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, tools: deps.Tools, feed: deps.Feed, logger: logger}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/healthz" || path == "/metrics"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.InfoContext(c.Request().Context(), "http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.GET("/tools", s.listTools)
	s.echo.POST("/tools/:name", s.callTool)

	missions := s.echo.Group("/missions/:mission/digests")
	missions.GET("/daily/latest", s.latestDaily)
	missions.GET("/daily/:date", s.dailyByDate)
	missions.GET("/weekly/latest", s.latestWeekly)

	digests := s.echo.Group("/digests")
	digests.POST("/daily/:id/posted", s.markDailyPosted)
	digests.POST("/weekly/:id/posted", s.markWeeklyPosted)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
