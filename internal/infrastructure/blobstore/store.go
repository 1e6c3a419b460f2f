package blobstore

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrKeyNotFound is returned by Get when no blob exists under the key.
var ErrKeyNotFound = errors.New("blobstore: key not found")

// Store is a flat key/value blob store. Keys use forward slashes as
// namespace separators, e.g. "games/2026-03-14".
type Store interface {
	// Put writes the blob under key, replacing any previous value.
	Put(ctx context.Context, key string, body []byte) error
	// Get returns the blob stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}
