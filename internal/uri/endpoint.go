package uri

import (
	"errors"
	"fmt"
)

// ErrMalformed matches every *MalformedError.
var ErrMalformed = errors.New("malformed uri")

// MalformedError reports an endpoint that does not resolve to a scheme and host.
type MalformedError struct {
	Input  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed uri %q: %s", e.Input, e.Reason)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

// ParseEndpoint parses an endpoint the way Parse does and additionally requires
// that a scheme and a host were resolved.
func ParseEndpoint(endpoint string) (URI, error) {
	u := Parse(endpoint)
	if u.Scheme() == "" {
		return URI{}, &MalformedError{Input: endpoint, Reason: "missing scheme"}
	}
	if u.Host() == "" {
		return URI{}, &MalformedError{Input: endpoint, Reason: "missing host"}
	}
	return u, nil
}
