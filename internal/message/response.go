package message

import (
	"github.com/LoomSoftware/http-component/internal/header"
	"github.com/LoomSoftware/http-component/internal/stream"
)

// Response is an immutable HTTP response.
type Response struct {
	message
	statusCode   int
	reasonPhrase string
}

// NewResponse builds a Response. A nil body is replaced by an empty temp stream.
func NewResponse(statusCode int, reasonPhrase string, headers header.Store, body *stream.Stream) *Response {
	return &Response{
		message:      newMessage(headers, body),
		statusCode:   statusCode,
		reasonPhrase: reasonPhrase,
	}
}

func (r *Response) clone() *Response {
	return &Response{
		message:      r.message.clone(),
		statusCode:   r.statusCode,
		reasonPhrase: r.reasonPhrase,
	}
}

func (r *Response) StatusCode() int { return r.statusCode }

func (r *Response) ReasonPhrase() string { return r.reasonPhrase }

// WithStatus sets the status code and reason phrase together.
func (r *Response) WithStatus(code int, reasonPhrase string) *Response {
	c := r.clone()
	c.statusCode = code
	c.reasonPhrase = reasonPhrase
	return c
}

func (r *Response) WithProtocolVersion(version string) *Response {
	c := r.clone()
	c.protocol = version
	return c
}

// WithHeader replaces every value of name.
func (r *Response) WithHeader(name string, values ...string) *Response {
	c := r.clone()
	c.headers = r.headers.With(name, values...)
	return c
}

// WithAddedHeader appends values to name.
func (r *Response) WithAddedHeader(name string, values ...string) *Response {
	c := r.clone()
	c.headers = r.headers.WithAdded(name, values...)
	return c
}

func (r *Response) WithoutHeader(name string) *Response {
	c := r.clone()
	c.headers = r.headers.Without(name)
	return c
}

func (r *Response) WithBody(body *stream.Stream) *Response {
	c := r.clone()
	c.body = body
	return c
}

// Data decodes the body according to Content-Type; see DecodeBody.
func (r *Response) Data() (map[string]any, error) {
	return DecodeBody(r.HeaderLine("content-type"), r.body)
}

func (r *Response) IsSuccessful() bool  { return r.statusCode >= 200 && r.statusCode < 300 }
func (r *Response) IsRedirect() bool    { return r.statusCode >= 300 && r.statusCode < 400 }
func (r *Response) IsClientError() bool { return r.statusCode >= 400 && r.statusCode < 500 }
func (r *Response) IsServerError() bool { return r.statusCode >= 500 && r.statusCode < 600 }
