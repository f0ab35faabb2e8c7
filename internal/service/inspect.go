// Package service turns inbound server requests into inspection reports.
package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/LoomSoftware/http-component/internal/config"
	"github.com/LoomSoftware/http-component/internal/header"
	"github.com/LoomSoftware/http-component/internal/message"
	"github.com/LoomSoftware/http-component/internal/web"
)

const redacted = "[REDACTED]"

// sensitiveHeaders have their values replaced in reports.
var sensitiveHeaders = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"x-api-key",
}

// Report describes a request as this library sees it.
type Report struct {
	Method          string              `json:"method"`
	URI             string              `json:"uri"`
	Authority       string              `json:"authority"`
	RequestTarget   string              `json:"request_target"`
	ProtocolVersion string              `json:"protocol_version"`
	Headers         []string            `json:"headers"`
	Query           map[string][]string `json:"query"`
	Data            map[string]any      `json:"data"`
	BodySize        int64               `json:"body_size"`
}

// InspectService builds Reports for inbound requests.
type InspectService struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewInspectService creates an InspectService.
func NewInspectService(cfg *config.Config, logger *slog.Logger) *InspectService {
	return &InspectService{
		cfg:    cfg,
		logger: logger.With("component", "inspect_service"),
	}
}

// Inspect converts r into a message.Request and reports on it. The request
// body is buffered, decoded, and released before Inspect returns.
func (s *InspectService) Inspect(r *http.Request) (*Report, error) {
	req, err := web.NewRequest(r, s.cfg.Client.BodyMemoryLimit)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	defer func() { _ = req.Body().Close() }()

	report, err := Describe(req)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}

	s.logger.Debug("inspected request",
		"method", report.Method,
		"uri", report.URI,
		"headers", len(report.Headers),
		"body_size", report.BodySize,
	)
	return report, nil
}

// Describe reports on req with sensitive header values redacted.
func Describe(req *message.Request) (*Report, error) {
	data, err := req.Data()
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	size, err := req.Body().Size()
	if err != nil {
		return nil, fmt.Errorf("body size: %w", err)
	}

	return &Report{
		Method:          req.Method(),
		URI:             req.URI().String(),
		Authority:       req.URI().Authority(),
		RequestTarget:   req.RequestTarget(),
		ProtocolVersion: req.ProtocolVersion(),
		Headers:         redact(req.HeaderStore()).Flat(),
		Query:           req.QueryParams(),
		Data:            data,
		BodySize:        size,
	}, nil
}

func redact(h header.Store) header.Store {
	for _, name := range sensitiveHeaders {
		if values := h.Get(name); len(values) > 0 {
			masked := make([]string, len(values))
			for i := range masked {
				masked[i] = redacted
			}
			h = h.With(name, masked...)
		}
	}
	return h
}
