// Package engine provides the core database engine for the Ignite
// key-value store: the public get/set/delete/drop/compact/merge
// operations, the in-memory offset index that makes get fast, and the
// rollover/compaction/merge bookkeeping that keeps the segment directory
// bounded.
//
// The engine is the orchestrator. It consults the index, delegates
// reads and appends to the storage package, and calls the codec package
// to turn keys and values into TLV bytes and back. It holds no background
// goroutines — every operation here runs to completion when called.
package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"unicode/utf8"

	"github.com/ignitekv/ignite/internal/codec"
	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/storage"
	ierrors "github.com/ignitekv/ignite/pkg/errors"
	"github.com/ignitekv/ignite/pkg/options"
	"github.com/ignitekv/ignite/pkg/seginfo"
	"go.uber.org/zap"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = errors.New("operation failed: cannot access closed engine")
)

// Engine is the main database engine that coordinates the offset index
// and the segment store. It is not safe for concurrent use by multiple
// goroutines issuing mutating operations — callers are expected to
// serialize access to a single instance.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool
	index   *index.Index
	storage *storage.Storage
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens (or creates) the database at the directory named in
// config.Options, then performs the mandatory cold-start scan: every
// existing segment is read in ascending order and the offset index is
// populated with the latest-per-segment offset of each key encountered.
// This is what makes get correct immediately after a process restart,
// without requiring a fallback scan on every miss.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, ierrors.NewValidationError(
			nil, ierrors.ErrorCodeInvalidInput, "Engine configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	store, err := storage.New(ctx, &storage.Config{Logger: config.Logger, Options: config.Options})
	if err != nil {
		return nil, err
	}

	idx, err := index.New(ctx, &index.Config{DataDir: config.Options.DataDir, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	e := &Engine{options: config.Options, log: config.Logger, index: idx, storage: store}

	if err := e.rebuildIndex(); err != nil {
		return nil, err
	}

	return e, nil
}

// rebuildIndex scans every segment in ascending order and records the
// offset of each record encountered, last write wins. Construction time is
// O(total bytes on disk), which is acceptable at the scale this engine is
// designed for.
func (e *Engine) rebuildIndex() error {
	return e.storage.ScanAll(func(segment uint64, offset int64, rec codec.Record) error {
		return e.index.Set(e.storage.SegmentPath(segment), string(rec.Key), offset)
	})
}

// Get returns the current value for key, or ok=false if the key doesn't
// exist or has been deleted. Segments are consulted newest-first so the
// first index hit is always the answer — no older segment needs to be
// examined once one is found.
func (e *Engine) Get(key string) (value string, ok bool, err error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}

	segments, err := e.storage.Segments()
	if err != nil {
		return "", false, err
	}

	for i := len(segments) - 1; i >= 0; i-- {
		segIndex := segments[i]
		segPath := e.storage.SegmentPath(segIndex)

		ptr, found, err := e.index.Lookup(segPath, key)
		if err != nil {
			return "", false, err
		}
		if !found {
			continue
		}

		rec, err := e.storage.ReadAt(segIndex, ptr.Offset)
		if err != nil {
			return "", false, err
		}

		if string(rec.Key) != key {
			return "", false, ierrors.NewStalePointerError(key, seginfo.SegmentName(segIndex), string(rec.Key))
		}

		if rec.IsTombstone() {
			return "", false, nil
		}

		if !utf8.Valid(rec.Value) {
			return "", false, ierrors.NewCorruptDBError("value is not valid utf-8", seginfo.SegmentName(segIndex), int(ptr.Offset))
		}

		return string(rec.Value), true, nil
	}

	return "", false, nil
}

// Close releases the engine's storage and index resources. Once closed,
// every operation returns ErrEngineClosed.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	if err := e.index.Close(); err != nil {
		e.log.Errorw("Failed to close index cleanly", "error", err)
	}

	return e.storage.Close()
}
