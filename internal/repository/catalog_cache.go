package repository

import (
	"context"
	"time"
)

// CatalogCache is the read cache in front of product listing, detail and
// search queries. It is strictly an optimization: callers must treat every
// error as a cache miss and fall back to the document store.
type CatalogCache interface {
	// Get returns ErrNotFound on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Version returns the current catalog version tag embedded in search
	// keys. BumpVersion increments it, orphaning every search entry built
	// against the previous version.
	Version(ctx context.Context) (int64, error)
	BumpVersion(ctx context.Context) error
}
