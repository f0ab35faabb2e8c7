// Package message implements immutable HTTP request and response values.
//
// Every With* method returns a new value built from an explicit copy of the
// receiver; the receiver's headers are never modified. The body stream is the
// one resource a message holds by reference.
package message

import (
	"github.com/LoomSoftware/http-component/internal/header"
	"github.com/LoomSoftware/http-component/internal/stream"
)

// DefaultProtocolVersion is used by NewRequest and NewResponse.
const DefaultProtocolVersion = "1.1"

// message holds the parts shared by Request and Response.
type message struct {
	protocol string
	headers  header.Store
	body     *stream.Stream
}

func newMessage(headers header.Store, body *stream.Stream) message {
	if body == nil {
		body = stream.NewTemp()
	}
	return message{
		protocol: DefaultProtocolVersion,
		headers:  headers.Clone(),
		body:     body,
	}
}

func (m message) clone() message {
	return message{
		protocol: m.protocol,
		headers:  m.headers.Clone(),
		body:     m.body,
	}
}

// ProtocolVersion returns the HTTP version, e.g. "1.1".
func (m *message) ProtocolVersion() string { return m.protocol }

// Headers returns a copy of all headers keyed by lowercased name.
func (m *message) Headers() map[string][]string { return m.headers.All() }

// HeaderStore returns the underlying header store.
func (m *message) HeaderStore() header.Store { return m.headers.Clone() }

// Header returns the values for name, ignoring case.
func (m *message) Header(name string) []string { return m.headers.Get(name) }

// HeaderLine returns the values for name joined with ", ".
func (m *message) HeaderLine(name string) string { return m.headers.Line(name) }

// HasHeader reports whether name is present, ignoring case.
func (m *message) HasHeader(name string) bool { return m.headers.Has(name) }

// FlatHeaders renders one "name: value" string per header value, with the name
// in its stored lowercase form.
func (m *message) FlatHeaders() []string { return m.headers.Flat() }

// Body returns the body stream.
func (m *message) Body() *stream.Stream { return m.body }
