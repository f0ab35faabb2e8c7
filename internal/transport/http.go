package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/LoomSoftware/http-component/internal/config"
	"github.com/LoomSoftware/http-component/internal/metrics"
)

// HTTP executes exchanges over net/http. Every exchange uses a fresh connection.
type HTTP struct {
	httpClient   *http.Client
	userAgent    string
	maxRedirects int
	logger       *slog.Logger
	metrics      *metrics.Metrics
	clock        clock.Clock
}

// NewHTTP creates an HTTP transport with the timeouts and redirect cap from cfg.
// The metrics parameter is optional; pass nil to disable transport metrics recording.
func NewHTTP(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *HTTP {
	return NewHTTPWithClock(cfg, logger, m, clock.New())
}

// NewHTTPWithClock is NewHTTP with an explicit clock for latency measurement.
func NewHTTPWithClock(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, clk clock.Clock) *HTTP {
	rt := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DisableKeepAlives: true,
		DialContext: (&net.Dialer{
			Timeout: time.Duration(cfg.Client.DialTimeoutSeconds) * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &HTTP{
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   time.Duration(cfg.Client.TimeoutSeconds) * time.Second,
		},
		userAgent:    cfg.Client.UserAgent,
		maxRedirects: cfg.Client.MaxRedirects,
		logger:       logger.With("component", "transport"),
		metrics:      m,
		clock:        clk,
	}
}

// Execute sends the request described by opts and returns the raw response.
func (t *HTTP) Execute(ctx context.Context, opts Options) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, bytes.NewReader(opts.Body))
	if err != nil {
		return nil, &Error{Op: "build", URL: opts.URL, Message: err.Error(), Err: err}
	}
	applyHeaderLines(req, opts.Header)
	if req.Header.Get("User-Agent") == "" && t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	hc := *t.httpClient
	hc.CheckRedirect = t.checkRedirect(opts.FollowRedirects)

	t.logger.Debug("transport request",
		"method", opts.Method,
		"url", opts.URL,
		"headers", len(opts.Header),
		"body_bytes", len(opts.Body),
	)

	start := t.clock.Now()
	resp, err := hc.Do(req)
	duration := t.clock.Since(start).Seconds()

	method := metrics.NormalizeMethod(opts.Method)
	if t.metrics != nil {
		t.metrics.TransportDuration.WithLabelValues(method).Observe(duration)
	}

	if err != nil {
		if t.metrics != nil {
			t.metrics.TransportErrors.WithLabelValues(method).Inc()
		}
		return nil, &Error{Op: "execute", URL: opts.URL, Message: diagnostic(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if t.metrics != nil {
			t.metrics.TransportErrors.WithLabelValues(method).Inc()
		}
		return nil, &Error{Op: "read body", URL: opts.URL, Message: err.Error(), Err: err}
	}

	var raw bytes.Buffer
	if opts.IncludeHeader {
		writeHeaderBlock(&raw, resp)
	}
	headerSize := raw.Len()
	raw.Write(body)

	if t.metrics != nil {
		t.metrics.TransportResponses.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
		t.metrics.TransportBytes.Add(float64(raw.Len()))
	}

	return &Result{
		StatusCode: resp.StatusCode,
		HeaderSize: headerSize,
		Raw:        raw.Bytes(),
	}, nil
}

func (t *HTTP) checkRedirect(follow bool) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if !follow {
			return http.ErrUseLastResponse
		}
		if len(via) >= t.maxRedirects {
			return fmt.Errorf("stopped after %d redirects", t.maxRedirects)
		}
		return nil
	}
}

// applyHeaderLines copies flat "Name: value" lines onto req. A Host line sets
// req.Host since net/http ignores Header["Host"] on outbound requests.
func applyHeaderLines(req *http.Request, lines []string) {
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, "host") {
			req.Host = value
			continue
		}
		req.Header.Add(name, value)
	}
}

// writeHeaderBlock renders the status line, header lines and the blank line that
// ends the block, the way they arrived on the wire. Only the final response is
// rendered; header blocks of intermediate redirect hops are dropped.
func writeHeaderBlock(w *bytes.Buffer, resp *http.Response) {
	fmt.Fprintf(w, "%s %s\r\n", resp.Proto, resp.Status)
	_ = resp.Header.Write(w)
	w.WriteString("\r\n")
}

// diagnostic strips the method/URL prefix net/http puts on request errors.
func diagnostic(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}
