// Package storage is the local cache for encrypted blobs the CLI works
// with. Only ciphertext passes through here; keys never do.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: blob not found")

// BlobStore stores opaque sealed blobs by object ID.
type BlobStore interface {
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}
