// Package index provides the in-memory offset index for the storage engine:
// a mapping from segment path to key to the byte offset of that key's most
// recent record within that segment. It embodies the Bitcask principle of
// keeping every live key in memory while the values themselves stay on
// disk — lookups are a map access followed by a single seek, never a scan.
//
// Index has no knowledge of the TLV wire format or segment files; it is a
// pure in-memory structure that the engine populates during its startup
// scan and keeps current on every set, delete, compact, and merge.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/ignitekv/ignite/pkg/errors"
)

var (
	// ErrIndexClosed is returned by every Index method once Close has run.
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates an Index ready for immediate use. The returned Index starts
// empty; populating it from on-disk segments is the caller's
// responsibility (the engine does this once at construction).
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:     config.Logger,
		dataDir: config.DataDir,
		entries: make(map[string]segmentEntries, 8),
	}, nil
}

// Set records the byte offset of key's most recent record within segment.
// A prior pointer for the same key in a different segment is left
// untouched — get resolves ordering by scanning segments newest-first, not
// by this map holding a single global entry per key.
func (idx *Index) Set(segment, key string, offset int64) error {
	if idx.closed.Load() {
		return ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	seg, ok := idx.entries[segment]
	if !ok {
		seg = make(segmentEntries, 64)
		idx.entries[segment] = seg
	}
	seg[key] = &RecordPointer{Offset: offset, Key: key}
	return nil
}

// Lookup returns the pointer recorded for key within segment, if any.
func (idx *Index) Lookup(segment, key string) (*RecordPointer, bool, error) {
	if idx.closed.Load() {
		return nil, false, ErrIndexClosed
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seg, ok := idx.entries[segment]
	if !ok {
		return nil, false, nil
	}
	ptr, ok := seg[key]
	return ptr, ok, nil
}

// ClearSegment drops every entry recorded for segment. Compact calls this
// before writing a segment's surviving records back into that same
// segment, since the old offsets are about to become invalid.
func (idx *Index) ClearSegment(segment string) error {
	if idx.closed.Load() {
		return ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.entries, segment)
	return nil
}

// Replace discards the entire index and installs entries in its place.
// Merge uses this to swap in the index built while scanning the old
// segments into their replacement set.
func (idx *Index) Replace(entries map[string]map[string]*RecordPointer) error {
	if idx.closed.Load() {
		return ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	fresh := make(map[string]segmentEntries, len(entries))
	for segment, keys := range entries {
		seg := make(segmentEntries, len(keys))
		for k, v := range keys {
			seg[k] = v
		}
		fresh[segment] = seg
	}

	clear(idx.entries)
	idx.entries = fresh
	return nil
}

// Clear removes every entry from every segment. drop calls this alongside
// removing the segment files themselves.
func (idx *Index) Clear() error {
	if idx.closed.Load() {
		return ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.entries)
	return nil
}

// Close gracefully shuts down the Index, releasing its map and ensuring
// that the index cannot be used after closure.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("Closing index system")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.entries)
	idx.entries = nil

	idx.log.Infow("Index system closed successfully")
	return nil
}
