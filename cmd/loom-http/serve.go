package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/LoomSoftware/http-component/internal/config"
	"github.com/LoomSoftware/http-component/internal/handler"
	"github.com/LoomSoftware/http-component/internal/metrics"
	"github.com/LoomSoftware/http-component/internal/middleware"
	"github.com/LoomSoftware/http-component/internal/service"
)

// ServeCmd runs the inspect server until interrupted.
type ServeCmd struct{}

// Run executes the command.
func (s *ServeCmd) Run(flags *config.Flags) error {
	app := fx.New(
		fx.Provide(
			func() *config.Flags { return flags },
			func() handler.Version { return handler.Version(version) },
			func() clock.Clock { return clock.New() },
			config.Load,
			stdoutLogger,
			metrics.New,
			newEcho,
			service.NewInspectService,
			handler.NewInspectHandler,
			handler.NewHealthHandler,
		),
		fx.Invoke(handler.RegisterRoutes, handler.RegisterMetrics, warnConfigPermissions, startServer),
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func newEcho(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, clk clock.Clock) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = handler.JSONSerializer{}

	// Inbound timeouts to mitigate slow-client attacks.
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 120 * time.Second
	e.Server.ReadHeaderTimeout = 10 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	if cfg.Metrics.Enabled {
		e.Use(middleware.MetricsMiddleware(m, clk))
	}
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dB", cfg.Server.BodyMaxBytes)))
	e.Use(middleware.SecurityHeaders())

	if cfg.Server.RateLimit.Enabled {
		e.Use(middleware.RateLimiter(cfg.Server.RateLimit))
		logger.Info("rate limiter enabled", "rps", cfg.Server.RateLimit.RequestsPerSecond)
	}

	return e
}

func warnConfigPermissions(cfg *config.Config, logger *slog.Logger) {
	cfg.WarnPermissions(logger)
}

func startServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			addr := cfg.Server.Addr()
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("bind %s: %w", addr, err)
			}
			logger.Info("starting server", "addr", addr, "config", cfg.FilePath())
			go func() {
				if err := e.Server.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return e.Shutdown(ctx)
		},
	})
}
