package client

import (
	"slices"
	"strings"

	"github.com/LoomSoftware/http-component/internal/message"
)

// ParseHeaders adds every "Name: value" line of a raw header block to resp.
//
// Lines without a colon (the status line among them) and lines with an empty
// name or value are ignored. A value already stored verbatim under the same
// name is not added again, so a duplicated line is kept once.
func ParseHeaders(resp *message.Response, block string) *message.Response {
	for _, line := range strings.Split(strings.TrimSpace(block), "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		if slices.Contains(resp.Header(name), value) {
			continue
		}
		resp = resp.WithAddedHeader(name, value)
	}
	return resp
}
