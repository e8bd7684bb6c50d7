package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = errors.New("storage: key not found")

// BlobStore is the persistence boundary of the engine: a durable key/value
// store of opaque byte slices. The discovery snapshot, user preferences and
// usage stats each live under one key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Well-known keys. Kept in one place so tests and callers agree.
const (
	KeyResourceSnapshot = "discovery/resources"
	KeyUserPreferences  = "prefs/user"
	KeyUsageStats       = "prefs/usage"
)
