// Package middleware provides Echo middleware for logging, metrics, rate
// limiting and response hardening.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LoomSoftware/http-component/internal/web"
)

// RequestLogger returns an Echo middleware that logs each request with slog.
// The logged url is the one the client addressed, rebuilt from the Host
// header and request target.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "access_log")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			logger.Info("request",
				"method", req.Method,
				"url", web.URI(web.EnvironmentFromRequest(req)).String(),
				"proto", req.Proto,
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
				"bytes_in", req.ContentLength,
				"bytes_out", res.Size,
			)

			return err
		}
	}
}
