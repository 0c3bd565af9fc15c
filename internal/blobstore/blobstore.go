// Package blobstore abstracts the object store holding file contents.
package blobstore

import (
	"context"
	"io"
)

// Store is the narrow contract the file service relies on. Keys are opaque
// ids minted by the caller.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
