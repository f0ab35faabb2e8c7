// Package transport puts a fully-formed request on the wire and hands back the
// raw response bytes. The client package owns all parsing.
package transport

import (
	"context"
	"fmt"
)

// Options describes one exchange.
type Options struct {
	Method string
	URL    string
	// Header holds flat "Name: value" lines, one per value, in send order.
	Header []string
	Body   []byte

	FollowRedirects bool
	// IncludeHeader prefixes Raw with the response header block.
	IncludeHeader bool
}

// Result is the raw outcome of an exchange. Raw[:HeaderSize] is the header block
// (status line, header lines and the terminating blank line); the rest is the body.
type Result struct {
	StatusCode int
	HeaderSize int
	Raw        []byte
}

// Transport executes a single request/response exchange.
type Transport interface {
	Execute(ctx context.Context, opts Options) (*Result, error)
}

// Func adapts an ordinary function to the Transport interface.
type Func func(ctx context.Context, opts Options) (*Result, error)

func (f Func) Execute(ctx context.Context, opts Options) (*Result, error) {
	return f(ctx, opts)
}

// Error reports a failed exchange. Message carries the transport's diagnostic.
type Error struct {
	Op      string
	URL     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("transport: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("transport: %s %s: %s", e.Op, e.URL, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
