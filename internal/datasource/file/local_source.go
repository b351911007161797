// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"io"
	"os"

	"csvload/internal/loaderr"
)

// Local opens a file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

func (l *Local) Location() string { return l.path }

// Open returns the context error untouched when ctx is already done, without
// touching the filesystem. A missing or unreadable file is an IO error that
// still matches os.ErrNotExist and friends through errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, loaderr.IOf("open csv", err)
	}
	return f, nil
}
