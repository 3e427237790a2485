// Package cache stores computed clouds and rendered artifacts.
//
// Two stages are cached: the layout (items + layout options → cloud JSON)
// and the artifact (cloud + render options → SVG/PNG/PDF bytes). Keys are
// derived from content hashes by a [Keyer], so identical inputs hit the same
// entry no matter which process computed them.
//
// Backends:
//   - [FileCache]: entries as files under a directory, for the CLI
//   - [RedisCache]: a shared Redis, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found. An expired or
	// unreadable entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}
