package engine

import (
	"context"

	"github.com/ignitekv/ignite/internal/codec"
	"github.com/ignitekv/ignite/internal/index"
)

// Merge rewrites every segment into a minimal, size-bounded set containing
// one record per live key. It first compacts every sealed segment to
// collapse per-segment duplicates, then streams every remaining record in
// ascending (oldest-to-newest) order through a packing pass: a working
// batch accumulates records until the next one would push its packed size
// to or past MAX_SEGMENT_SIZE, at which point the batch flushes to a fresh
// output segment and a new batch begins. Because the scan visits records in
// write order, the last occurrence of any key wins — the newest write
// always survives.
func (e *Engine) Merge(ctx context.Context) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if err := e.Compact(ctx, nil); err != nil {
		return err
	}

	maxSize := int64(e.storage.MaxSegmentSize())

	var (
		outIndex     uint64
		pendingOrder []string
		pendingMap   = make(map[string]codec.Record)
		pendingSize  int64
	)
	newEntries := make(map[string]map[string]*index.RecordPointer)

	flush := func() error {
		if len(pendingOrder) == 0 {
			return nil
		}

		tw, err := e.storage.CreateTempSegment(outIndex)
		if err != nil {
			return err
		}

		entries := make(map[string]*index.RecordPointer, len(pendingOrder))
		for _, key := range pendingOrder {
			data, err := codec.Serialize(pendingMap[key])
			if err != nil {
				tw.Close()
				return err
			}

			offset, err := tw.Append(data)
			if err != nil {
				tw.Close()
				return err
			}
			entries[key] = &index.RecordPointer{Offset: offset, Key: key}
		}

		if err := tw.Close(); err != nil {
			return err
		}

		newEntries[e.storage.SegmentPath(outIndex)] = entries
		outIndex++
		pendingOrder = nil
		pendingMap = make(map[string]codec.Record)
		pendingSize = 0
		return nil
	}

	err := e.storage.ScanAll(func(segment uint64, offset int64, rec codec.Record) error {
		key := string(rec.Key)

		projected := pendingSize
		if existing, ok := pendingMap[key]; ok {
			projected -= int64(existing.SerializedSize())
		}
		projected += int64(rec.SerializedSize())

		if projected >= maxSize && len(pendingMap) > 0 {
			if err := flush(); err != nil {
				return err
			}
			projected = int64(rec.SerializedSize())
		}

		if _, ok := pendingMap[key]; !ok {
			pendingOrder = append(pendingOrder, key)
		}
		pendingMap[key] = rec
		pendingSize = projected
		return nil
	})
	if err != nil {
		return err
	}

	if err := flush(); err != nil {
		return err
	}

	if err := e.storage.FinalizeMerge(outIndex); err != nil {
		return err
	}

	return e.index.Replace(newEntries)
}
