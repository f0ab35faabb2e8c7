package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LoomSoftware/http-component/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status reports the build version and the effective client settings.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":            "ok",
		"version":           string(h.version),
		"config_file":       h.cfg.FilePath(),
		"timeout_seconds":   h.cfg.Client.TimeoutSeconds,
		"max_redirects":     h.cfg.Client.MaxRedirects,
		"body_memory_limit": h.cfg.Client.BodyMemoryLimit,
		"metrics_enabled":   h.cfg.Metrics.Enabled,
	})
}
