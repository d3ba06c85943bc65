package engine

import (
	stdErrors "errors"

	"github.com/ignitekv/ignite/internal/codec"
	ierrors "github.com/ignitekv/ignite/pkg/errors"
)

// Set writes a Put record for key/value, rolling the active segment over
// first if appending it would make the segment strictly larger than
// MAX_SEGMENT_SIZE. The previous index entry for key, if any, in an older
// segment is left in place — get finds the new one first because it scans
// segments newest-to-oldest.
func (e *Engine) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.appendRecord(codec.NewPut([]byte(key), []byte(value)))
}

// Delete writes a Tombstone record for key, following the identical
// append-with-rollover procedure as Set.
func (e *Engine) Delete(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.appendRecord(codec.NewTombstone([]byte(key)))
}

// Drop removes every segment file and clears the index, then recreates an
// empty data0.db so the engine is immediately usable again as a fresh
// database.
func (e *Engine) Drop() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if err := e.storage.Drop(); err != nil {
		return err
	}
	return e.index.Clear()
}

// appendRecord serializes rec, rolls the active segment over if needed,
// appends, and records the resulting offset in the index. It is the
// append path shared by Set and Delete.
func (e *Engine) appendRecord(rec codec.Record) error {
	data, err := codec.Serialize(rec)
	if err != nil {
		var oversize *codec.OversizeFieldError
		if stdErrors.As(err, &oversize) {
			return ierrors.NewOversizeFieldError(oversize.Field, oversize.Length)
		}
		return err
	}

	if e.storage.WouldOverflow(len(data)) {
		if _, err := e.storage.Roll(); err != nil {
			return err
		}
	}

	segment, offset, err := e.storage.Append(data)
	if err != nil {
		return err
	}

	return e.index.Set(e.storage.SegmentPath(segment), string(rec.Key), offset)
}
