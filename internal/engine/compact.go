package engine

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ignitekv/ignite/internal/codec"
)

// Compact rewrites the segments named in indices in place, dropping
// records that are superseded or tombstoned within each segment. A nil
// indices compacts every sealed segment (compact_all): scanning runs
// concurrently across segments since each touches disjoint files and
// disjoint index slots, while the rewrite phase runs serially after every
// scan has completed.
func (e *Engine) Compact(ctx context.Context, indices []uint64) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if indices == nil {
		sealed, err := e.sealedSegments()
		if err != nil {
			return err
		}
		indices = sealed
	}

	if len(indices) == 0 {
		return nil
	}

	results := make([]compactionScan, len(indices))
	g, _ := errgroup.WithContext(ctx)

	for i, idx := range indices {
		i, idx := i, idx
		g.Go(func() error {
			scan, err := e.scanForCompaction(idx)
			if err != nil {
				return err
			}
			results[i] = scan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		if err := e.reissue(r); err != nil {
			return err
		}
	}
	return nil
}

// sealedSegments returns every segment index below the active one — the
// set compact_all operates on. The active segment is still being written
// to and must be compacted explicitly via Compact(ctx, []uint64{active}).
func (e *Engine) sealedSegments() ([]uint64, error) {
	all, err := e.storage.Segments()
	if err != nil {
		return nil, err
	}

	active := e.storage.ActiveIndex()
	sealed := make([]uint64, 0, len(all))
	for _, idx := range all {
		if idx != active {
			sealed = append(sealed, idx)
		}
	}
	return sealed, nil
}

// compactionScan holds the result of scanning one segment for surviving
// records: live key/value pairs and tombstones whose key has no later put
// within that segment.
type compactionScan struct {
	index      uint64
	values     map[string][]byte
	tombstones mapset.Set[string]
}

// scanForCompaction reads the segment once, building the set of surviving
// puts and tombstones: a put overwrites any pending tombstone for its key,
// and a tombstone removes any pending put for its key.
func (e *Engine) scanForCompaction(index uint64) (compactionScan, error) {
	scan := compactionScan{
		index:      index,
		values:     make(map[string][]byte),
		tombstones: mapset.NewSet[string](),
	}

	err := e.storage.ScanSegment(index, func(offset int64, rec codec.Record) error {
		key := string(rec.Key)
		if rec.IsPut() {
			scan.values[key] = rec.Value
			scan.tombstones.Remove(key)
			return nil
		}
		delete(scan.values, key)
		scan.tombstones.Add(key)
		return nil
	})
	if err != nil {
		return compactionScan{}, err
	}
	return scan, nil
}

// reissue empties segment scan.index and writes its surviving records back
// into that same segment. Survivors must stay in their original segment
// position: appending them to the active segment would place old records
// after newer writes for the same keys and corrupt the newest-first lookup
// order. The compacted contents are strictly a subset of what the segment
// held before, so they always fit without rolling over.
func (e *Engine) reissue(scan compactionScan) error {
	segPath := e.storage.SegmentPath(scan.index)

	if err := e.storage.RecreateSegment(scan.index); err != nil {
		return err
	}
	if err := e.index.ClearSegment(segPath); err != nil {
		return err
	}

	for key, value := range scan.values {
		if err := e.rewriteRecord(scan.index, codec.NewPut([]byte(key), value)); err != nil {
			return err
		}
	}
	for _, key := range scan.tombstones.ToSlice() {
		if err := e.rewriteRecord(scan.index, codec.NewTombstone([]byte(key))); err != nil {
			return err
		}
	}
	return nil
}

// rewriteRecord serializes rec, appends it to the named segment, and
// records the offset in that segment's index slot.
func (e *Engine) rewriteRecord(segment uint64, rec codec.Record) error {
	data, err := codec.Serialize(rec)
	if err != nil {
		return err
	}

	offset, err := e.storage.AppendTo(segment, data)
	if err != nil {
		return err
	}

	return e.index.Set(e.storage.SegmentPath(segment), string(rec.Key), offset)
}
