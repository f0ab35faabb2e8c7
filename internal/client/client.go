// Package client executes message.Request values through a transport and turns
// the raw reply into a message.Response.
package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LoomSoftware/http-component/internal/header"
	"github.com/LoomSoftware/http-component/internal/message"
	"github.com/LoomSoftware/http-component/internal/stream"
	"github.com/LoomSoftware/http-component/internal/transport"
	"github.com/LoomSoftware/http-component/internal/uri"
)

// Client sends requests synchronously. It never retries.
type Client struct {
	transport   transport.Transport
	logger      *slog.Logger
	memoryLimit int64
}

// New creates a Client on top of t.
func New(t transport.Transport, logger *slog.Logger) *Client {
	return &Client{
		transport:   t,
		logger:      logger.With("component", "http_client"),
		memoryLimit: stream.DefaultMemoryLimit,
	}
}

// WithBodyMemoryLimit returns a copy of c whose response bodies spill to disk
// past limit bytes. A non-positive limit keeps the default.
func (c *Client) WithBodyMemoryLimit(limit int64) *Client {
	cp := *c
	if limit > 0 {
		cp.memoryLimit = limit
	}
	return &cp
}

// SendRequest executes req and returns the complete Response, or an error and no
// Response. Transport failures are always reported as *transport.Error.
func (c *Client) SendRequest(ctx context.Context, req *message.Request) (*message.Response, error) {
	body, err := req.Body().Contents()
	if err != nil {
		return nil, err
	}

	opts := transport.Options{
		Method:          req.Method(),
		URL:             req.URI().String(),
		Header:          req.FlatHeaders(),
		Body:            body,
		FollowRedirects: true,
		IncludeHeader:   true,
	}

	c.logger.Debug("send request",
		"method", opts.Method,
		"url", opts.URL,
	)

	res, err := c.transport.Execute(ctx, opts)
	if err != nil {
		return nil, asTransportError(err, opts.URL)
	}
	if res == nil {
		return nil, &transport.Error{Op: "execute", URL: opts.URL, Message: "transport returned no result"}
	}

	headerSize := min(max(res.HeaderSize, 0), len(res.Raw))
	block, payload := res.Raw[:headerSize], res.Raw[headerSize:]

	resp := message.NewResponse(res.StatusCode, "", header.Store{}, nil)
	resp = ParseHeaders(resp, string(block))

	bodyStream, err := stream.FromBytesLimit(payload, c.memoryLimit)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("received response",
		"url", opts.URL,
		"status", res.StatusCode,
		"body_bytes", len(payload),
	)

	return resp.WithBody(bodyStream), nil
}

func asTransportError(err error, url string) error {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return err
	}
	return &transport.Error{Op: "execute", URL: url, Message: err.Error(), Err: err}
}

// Get sends a GET to endpoint; see Do.
func (c *Client) Get(ctx context.Context, endpoint string, headers header.Store, body string) (*message.Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, headers, body)
}

// Post sends a POST to endpoint; see Do.
func (c *Client) Post(ctx context.Context, endpoint string, headers header.Store, body string) (*message.Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, headers, body)
}

// Put sends a PUT to endpoint; see Do.
func (c *Client) Put(ctx context.Context, endpoint string, headers header.Store, body string) (*message.Response, error) {
	return c.Do(ctx, http.MethodPut, endpoint, headers, body)
}

// Patch sends a PATCH to endpoint; see Do.
func (c *Client) Patch(ctx context.Context, endpoint string, headers header.Store, body string) (*message.Response, error) {
	return c.Do(ctx, http.MethodPatch, endpoint, headers, body)
}

// Delete sends a DELETE to endpoint; see Do.
func (c *Client) Delete(ctx context.Context, endpoint string, headers header.Store, body string) (*message.Response, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, headers, body)
}

// Do builds a Request from a bare or fully-qualified endpoint and sends it.
// An endpoint without a resolvable scheme and host fails with *uri.MalformedError
// before anything is sent.
func (c *Client) Do(ctx context.Context, method, endpoint string, headers header.Store, body string) (*message.Response, error) {
	u, err := uri.ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	bodyStream, err := stream.FromString(body)
	if err != nil {
		return nil, err
	}
	defer bodyStream.Close()

	return c.SendRequest(ctx, message.NewRequest(method, u, headers, bodyStream))
}
