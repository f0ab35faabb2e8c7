package message

import (
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/LoomSoftware/http-component/internal/stream"
)

// Content types understood by DecodeBody.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// DecodeBody decodes body as a JSON object when contentType is exactly
// application/json, as URL-encoded form data when it is exactly
// application/x-www-form-urlencoded, and returns an empty map otherwise.
//
// The body is read in full on every call and left rewound. A body that does not
// decode to an object also yields an empty map; only stream errors are returned.
func DecodeBody(contentType string, body *stream.Stream) (map[string]any, error) {
	if contentType != ContentTypeJSON && contentType != ContentTypeForm {
		return map[string]any{}, nil
	}

	raw, err := body.Contents()
	if err != nil {
		return nil, err
	}

	if contentType == ContentTypeJSON {
		return decodeJSON(raw), nil
	}
	return decodeForm(string(raw)), nil
}

func decodeJSON(raw []byte) map[string]any {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return map[string]any{}
	}
	return data
}

// decodeForm keeps the last value of a repeated key; keys ending in "[]" collect
// every value into a []string under the bare name.
func decodeForm(raw string) map[string]any {
	data := map[string]any{}
	values, _ := url.ParseQuery(raw)
	for key, vals := range values {
		if name, ok := strings.CutSuffix(key, "[]"); ok {
			data[name] = vals
			continue
		}
		data[key] = vals[len(vals)-1]
	}
	return data
}
