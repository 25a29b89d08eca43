package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const blobExt = ".enc"

// FileBlobStore keeps sealed blobs as flat files under a cache directory.
// Blobs arrive already encrypted; permissions are still kept tight so a
// shared machine does not leak ciphertext sizes and access patterns.
type FileBlobStore struct {
	dir string
}

var _ BlobStore = (*FileBlobStore)(nil)

func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create cache dir: %w", err)
	}
	return &FileBlobStore{dir: dir}, nil
}

func (f *FileBlobStore) path(id string) (string, error) {
	// IDs are server-issued UUIDs, but never trust them as path fragments.
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", fmt.Errorf("storage: invalid blob id %q", id)
	}
	return filepath.Join(f.dir, id+blobExt), nil
}

// Put writes via a temp file and rename so a crash mid-write never leaves
// a truncated blob behind.
func (f *FileBlobStore) Put(_ context.Context, id string, data []byte) error {
	p, err := f.path(id)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, "."+id+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f *FileBlobStore) Get(_ context.Context, id string) ([]byte, error) {
	p, err := f.path(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return b, err
}

func (f *FileBlobStore) Delete(_ context.Context, id string) error {
	p, err := f.path(id)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns the IDs of every cached blob, in directory order.
func (f *FileBlobStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, blobExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, blobExt))
	}
	return ids, nil
}
