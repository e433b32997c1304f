package fetcher

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSON decodes a single JSON document from a reader. T may be a
// struct or a slice; kommuneinfo returns a bare array.
func DecodeJSON[T any](r io.Reader) (*T, error) {
	var doc T
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "json: decode document")
	}
	return &doc, nil
}
