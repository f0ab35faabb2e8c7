package middleware

import (
	"errors"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"

	"github.com/LoomSoftware/http-component/internal/metrics"
)

// MetricsMiddleware returns an Echo middleware that records Prometheus metrics
// for each inbound request. Latency is measured with clk.
func MetricsMiddleware(m *metrics.Metrics, clk clock.Clock) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := clk.Now()

			err := next(c)

			// A returned *echo.HTTPError has not been written yet; the central
			// error handler writes it after us.
			statusCode := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					statusCode = he.Code
				}
			}

			status := strconv.Itoa(statusCode)
			method := metrics.NormalizeMethod(c.Request().Method)
			path := metrics.NormalizePath(c.Request().URL.Path)

			m.RequestsTotal.WithLabelValues(method, status, path).Inc()
			m.RequestDuration.WithLabelValues(method, status, path).Observe(clk.Since(start).Seconds())

			return err
		}
	}
}
