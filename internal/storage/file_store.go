package storage

import (
	"context"
	"os"
	"path/filepath"
)

// FileBlobStore keeps blobs in a local directory, one file per content id.
// Used for development and tests; nothing in it is durable or replicated.
type FileBlobStore struct{ dir string }

func NewFileBlobStore(dir string) *FileBlobStore {
	_ = os.MkdirAll(dir, 0o700)
	return &FileBlobStore{dir: dir}
}

func (f *FileBlobStore) Put(_ context.Context, data []byte) (string, error) {
	id := ContentID(data)
	if err := os.WriteFile(f.path(id), data, 0o600); err != nil {
		return "", err
	}
	return id, nil
}

func (f *FileBlobStore) Get(_ context.Context, id string) ([]byte, error) {
	b, err := os.ReadFile(f.path(id))
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	return b, err
}

func (f *FileBlobStore) Exists(_ context.Context, id string) (bool, error) {
	_, err := os.Stat(f.path(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (f *FileBlobStore) path(id string) string {
	return filepath.Join(f.dir, id+".blob")
}
