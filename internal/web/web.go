// Package web derives the URI and message.Request of an inbound server request.
package web

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/LoomSoftware/http-component/internal/header"
	"github.com/LoomSoftware/http-component/internal/message"
	"github.com/LoomSoftware/http-component/internal/stream"
	"github.com/LoomSoftware/http-component/internal/uri"
)

// Environment is what the server knows about the request it is handling.
type Environment struct {
	Secure     bool
	Host       string // Host header, may carry a port
	RequestURI string // path and query as sent by the client
	ServerPort string // local port, used when Host has none
}

// URI rebuilds the URI the client asked for.
func URI(env Environment) uri.URI {
	scheme := "http"
	if env.Secure {
		scheme = "https"
	}

	u := uri.Parse(scheme + "://" + env.Host + env.RequestURI)
	if u.RawPort() == "" && env.ServerPort != "" {
		if port, err := strconv.Atoi(env.ServerPort); err == nil {
			u = u.WithPort(port)
		}
	}
	return u
}

// EnvironmentFromRequest reads the environment from a net/http server request.
// A TLS connection or "X-Forwarded-Proto: https" marks it secure.
func EnvironmentFromRequest(r *http.Request) Environment {
	env := Environment{
		Secure:     r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https"),
		Host:       r.Host,
		RequestURI: r.RequestURI,
	}
	if env.RequestURI == "" {
		env.RequestURI = r.URL.RequestURI()
	}
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if _, port, err := net.SplitHostPort(addr.String()); err == nil {
			env.ServerPort = port
		}
	}
	return env
}

// NewRequest converts r into a message.Request. The body is copied into a temp
// stream that spills to disk past memoryLimit bytes; the caller owns it.
func NewRequest(r *http.Request, memoryLimit int64) (*message.Request, error) {
	headers := header.FromHTTP(r.Header)
	if r.Host != "" {
		headers = headers.With("host", r.Host)
	}

	body := stream.NewTempLimit(memoryLimit)
	if r.Body != nil {
		if _, err := io.Copy(body, r.Body); err != nil {
			_ = body.Close()
			return nil, fmt.Errorf("read request body: %w", err)
		}
		if err := body.Rewind(); err != nil {
			_ = body.Close()
			return nil, err
		}
	}

	req := message.NewRequest(r.Method, URI(EnvironmentFromRequest(r)), headers, body)
	return req.WithProtocolVersion(fmt.Sprintf("%d.%d", r.ProtoMajor, r.ProtoMinor)), nil
}
