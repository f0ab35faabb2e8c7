// Package handler implements the HTTP handlers of the inspect server.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LoomSoftware/http-component/internal/service"
	"github.com/LoomSoftware/http-component/internal/stream"
	"github.com/LoomSoftware/http-component/internal/uri"
)

// InspectHandler answers any request under /inspect with a report of how the
// request was understood.
type InspectHandler struct {
	service *service.InspectService
	logger  *slog.Logger
}

// NewInspectHandler creates an InspectHandler.
func NewInspectHandler(svc *service.InspectService, logger *slog.Logger) *InspectHandler {
	return &InspectHandler{
		service: svc,
		logger:  logger.With("component", "inspect_handler"),
	}
}

// Handle writes the inspection report of the current request as JSON.
func (h *InspectHandler) Handle(c echo.Context) error {
	report, err := h.service.Inspect(c.Request())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *InspectHandler) mapError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	h.logger.Error("inspect error",
		"err", err,
		"path", c.Request().URL.Path,
	)

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": "request body too large",
		})
	}

	if errors.Is(err, uri.ErrMalformed) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "request uri could not be resolved",
		})
	}

	var ioErr *stream.IOError
	if errors.As(err, &ioErr) {
		return c.JSON(http.StatusInsufficientStorage, map[string]string{
			"error": "request body could not be buffered",
		})
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "request could not be inspected",
	})
}
