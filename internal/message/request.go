package message

import (
	"net/url"
	"strings"

	"github.com/LoomSoftware/http-component/internal/header"
	"github.com/LoomSoftware/http-component/internal/stream"
	"github.com/LoomSoftware/http-component/internal/uri"
)

// Request is an immutable outgoing or inbound HTTP request.
type Request struct {
	message
	method string
	uri    uri.URI
}

// NewRequest builds a Request. A nil body is replaced by an empty temp stream.
func NewRequest(method string, u uri.URI, headers header.Store, body *stream.Stream) *Request {
	return &Request{
		message: newMessage(headers, body),
		method:  method,
		uri:     u,
	}
}

func (r *Request) clone() *Request {
	return &Request{
		message: r.message.clone(),
		method:  r.method,
		uri:     r.uri,
	}
}

func (r *Request) Method() string { return r.method }

func (r *Request) WithMethod(method string) *Request {
	c := r.clone()
	c.method = method
	return c
}

func (r *Request) URI() uri.URI { return r.uri }

// WithURI replaces the URI. Unless preserveHost is set, the new URI's host is
// forced to the current Host header line, even when that is empty, so the URI
// and the Host header cannot disagree.
func (r *Request) WithURI(u uri.URI, preserveHost bool) *Request {
	c := r.clone()
	c.uri = u
	if !preserveHost {
		c.uri = c.uri.WithHost(r.HeaderLine("host"))
	}
	return c
}

// RequestTarget returns path[?query], "/?query" when only a query is set and
// "/" when both are empty.
func (r *Request) RequestTarget() string {
	path, query := r.uri.Path(), r.uri.Query()
	switch {
	case path != "" && query != "":
		return path + "?" + query
	case path != "":
		return path
	case query != "":
		return "/?" + query
	default:
		return "/"
	}
}

// WithRequestTarget splits target on the first "?" and replaces the URI's path
// and query.
func (r *Request) WithRequestTarget(target string) *Request {
	path, query, _ := strings.Cut(target, "?")
	c := r.clone()
	c.uri = c.uri.WithPath(path).WithQuery(query)
	return c
}

func (r *Request) WithProtocolVersion(version string) *Request {
	c := r.clone()
	c.protocol = version
	return c
}

// WithHeader replaces every value of name.
func (r *Request) WithHeader(name string, values ...string) *Request {
	c := r.clone()
	c.headers = r.headers.With(name, values...)
	return c
}

// WithAddedHeader appends values to name.
func (r *Request) WithAddedHeader(name string, values ...string) *Request {
	c := r.clone()
	c.headers = r.headers.WithAdded(name, values...)
	return c
}

func (r *Request) WithoutHeader(name string) *Request {
	c := r.clone()
	c.headers = r.headers.Without(name)
	return c
}

func (r *Request) WithBody(body *stream.Stream) *Request {
	c := r.clone()
	c.body = body
	return c
}

// Data decodes the body according to Content-Type; see DecodeBody.
func (r *Request) Data() (map[string]any, error) {
	return DecodeBody(r.HeaderLine("content-type"), r.body)
}

// Get returns a single decoded body field, or nil.
func (r *Request) Get(key string) (any, error) {
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	return data[key], nil
}

// QueryParams parses the URI query. A malformed query yields the pairs that
// could be parsed.
func (r *Request) QueryParams() url.Values {
	values, _ := url.ParseQuery(r.uri.Query())
	return values
}

// QueryParam returns the value of name in the URI query, or def. When name is
// repeated the last occurrence wins, matching form decoding.
func (r *Request) QueryParam(name, def string) string {
	values := r.QueryParams()[name]
	if len(values) == 0 {
		return def
	}
	return values[len(values)-1]
}
