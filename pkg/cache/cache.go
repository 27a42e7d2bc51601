// Package cache provides the byte-level cache used to memoize layouts.
//
// A [Cache] stores opaque byte slices under string keys with an optional
// TTL. Keys are produced by a [Keyer] from a content hash of the layout
// inputs, so identical inputs map to the same entry and any change to the
// fragments, stored positions, hints, or configuration maps to a new one.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [MemoryCache]: in-process map, for the HTTP server and tests
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-level key/value cache.
type Cache interface {
	// Get returns the value for key. The bool reports a hit; a miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs.
const (
	// TTLLayout is how long a computed layout stays cached. Layouts are
	// pure functions of their inputs, so the TTL only bounds storage.
	TTLLayout = 7 * 24 * time.Hour
)

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts holds every setting besides the hashed inputs that changes
// a layout.
type LayoutKeyOpts struct {
	GridUnit         float64 `json:"grid_unit"`
	ContainerWidth   float64 `json:"container_width"`
	MaxContentLength int     `json:"max_content_length"`
	MaxNoteLength    int     `json:"max_note_length"`
	Rows             int     `json:"rows"`
	Cols             int     `json:"cols"`
	Decider          string  `json:"decider"`
	Seed             uint64  `json:"seed"`

	// Relevance is the hash of the relevance scores, empty when none are set.
	Relevance string `json:"relevance,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key for a layout of the inputs hashed to
	// inputHash under opts.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey hashes inputHash together with opts.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}
