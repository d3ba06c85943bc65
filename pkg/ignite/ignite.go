// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory offset index with an append-only log structure
// on disk to achieve high throughput: writes are always a single append,
// and reads are a map lookup followed by one seek. It is designed for
// applications requiring fast read and write operations, such as caching,
// session management, and local persistence, aiming to provide a simple,
// efficient, and reliable storage layer for Go applications.
package ignite

import (
	"context"

	"github.com/ignitekv/ignite/internal/engine"
	"github.com/ignitekv/ignite/pkg/logger"
	"github.com/ignitekv/ignite/pkg/options"
)

// Instance is the primary entry point for interacting with the Ignite
// store. It wraps the underlying engine and the configuration options this
// particular database instance was opened with.
//
// An Instance is not safe for concurrent mutating use by multiple
// goroutines; callers that need concurrent access must serialize their own
// calls (see the engine package's concurrency notes).
type Instance struct {
	engine  *engine.Engine   // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
}

// NewInstance creates and initializes a new Ignite DB instance, opening (or
// creating) its data directory and performing the startup index scan.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &resolved})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &resolved}, nil
}

// Set stores a key-value pair in the database. If the key already exists,
// its value is updated. The write is a single append to the active
// segment; a previous version of the key, if any, is superseded but not
// removed until compaction or merge runs.
func (i *Instance) Set(ctx context.Context, key, value string) error {
	return i.engine.Set(key, value)
}

// Get retrieves the current value for key. ok is false if the key has
// never been set or was deleted by a prior Delete.
func (i *Instance) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	return i.engine.Get(key)
}

// Delete marks key as deleted by appending a tombstone record. The
// underlying bytes for any prior value are only reclaimed once Compact or
// Merge runs.
func (i *Instance) Delete(ctx context.Context, key string) error {
	return i.engine.Delete(key)
}

// Drop removes every record in the database and resets it to a fresh,
// empty state usable immediately for further operations.
func (i *Instance) Drop(ctx context.Context) error {
	return i.engine.Drop()
}

// Compact rewrites segment in place, dropping records that are superseded
// or tombstoned within that segment only. A nil segment compacts every
// sealed segment (the active segment is excluded — it is still being
// written to and must be named explicitly if it needs compacting).
func (i *Instance) Compact(ctx context.Context, segment *uint64) error {
	if segment == nil {
		return i.engine.Compact(ctx, nil)
	}
	return i.engine.Compact(ctx, []uint64{*segment})
}

// Merge rewrites every segment into a minimal, size-bounded set containing
// one record per live key. It compacts every sealed segment first, then
// repacks all surviving records into freshly numbered segments.
func (i *Instance) Merge(ctx context.Context) error {
	return i.engine.Merge(ctx)
}

// Close releases the instance's storage and index resources.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
