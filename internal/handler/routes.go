package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LoomSoftware/http-component/internal/config"
	"github.com/LoomSoftware/http-component/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, inspect *InspectHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/status", health.Status)

	e.Any("/inspect", inspect.Handle)
	e.Any("/inspect/*", inspect.Handle)
}

// RegisterMetrics exposes the registry of m at cfg.Metrics.Path when metrics
// are enabled.
func RegisterMetrics(e *echo.Echo, cfg *config.Config, m *metrics.Metrics) {
	if !cfg.Metrics.Enabled {
		return
	}
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
	e.GET(cfg.Metrics.Path, echo.WrapHandler(h))
}
