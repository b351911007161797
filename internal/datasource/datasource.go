// Package datasource abstracts where the CSV bytes come from: a local file or
// an http(s) URL.
package datasource

import (
	"context"
	"io"

	"csvload/internal/datasource/file"
	"csvload/internal/datasource/httpds"
)

// Source opens the input for reading. The caller closes the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)

	// Location is the path or URL the source reads from, for logs.
	Location() string
}

// Resolve returns an HTTP source for http(s) URLs and a local file source for
// anything else.
func Resolve(location string) Source {
	if httpds.IsURL(location) {
		return httpds.NewSource(location)
	}
	return file.NewLocal(location)
}
