// Package storage defines the content-addressed blob store the ciphertext
// round-trip runs against, with local and self-hosted backends. The Walrus
// network client in internal/walrus implements the same interface.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

var (
	// ErrBlobNotFound reports a successful negative lookup.
	ErrBlobNotFound = errors.New("storage: blob not found")
	// ErrStorageUnavailable reports that the backend could not be reached
	// at all, as distinct from a blob that is definitively absent.
	ErrStorageUnavailable = errors.New("storage: backend unavailable")
)

// BlobStore stores opaque ciphertext bytes addressed by content. Put is
// idempotent: the same bytes always map to the same id, and re-uploading is
// not an error. No implementation caches locally; every call is a real
// round-trip to the backend.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// ContentID derives the canonical blob id for a byte payload. Backends that
// compute ids themselves (Walrus) ignore this; the local backends use it so
// ids stay stable across implementations.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
