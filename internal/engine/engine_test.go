package engine_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ignitekv/ignite/internal/engine"
	"github.com/ignitekv/ignite/pkg/logger"
	"github.com/ignitekv/ignite/pkg/options"
	"github.com/ignitekv/ignite/pkg/seginfo"
)

func newEngine(t *testing.T, maxSegmentSize uint64) *engine.Engine {
	t.Helper()
	e, _ := newEngineWithDir(t, maxSegmentSize)
	return e
}

// newEngineWithDir also returns the segment directory, for tests that need
// to inspect segment files directly (segment count, segment size) rather
// than through the engine's own key-value surface.
func newEngineWithDir(t *testing.T, maxSegmentSize uint64) (*engine.Engine, string) {
	t.Helper()

	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	if maxSegmentSize > 0 {
		opts.SegmentOptions.Size = maxSegmentSize
	}
	segDir := filepath.Join(opts.DataDir, opts.SegmentOptions.Directory)

	e, err := engine.New(context.Background(), &engine.Config{Options: &opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, segDir
}

// segmentCount returns the number of data{i}.db files currently present in
// segDir.
func segmentCount(t *testing.T, segDir string) int {
	t.Helper()
	indices, err := seginfo.ListSegmentIndices(segDir)
	if err != nil {
		t.Fatalf("ListSegmentIndices: %v", err)
	}
	return len(indices)
}

// activeSegmentSize returns the size, in bytes, of the highest-indexed
// data{i}.db file in segDir.
func activeSegmentSize(t *testing.T, segDir string) int64 {
	t.Helper()
	indices, err := seginfo.ListSegmentIndices(segDir)
	if err != nil {
		t.Fatalf("ListSegmentIndices: %v", err)
	}
	if len(indices) == 0 {
		t.Fatalf("activeSegmentSize: no segments found in %s", segDir)
	}
	active := indices[len(indices)-1]
	info, err := os.Stat(seginfo.SegmentPath(segDir, active))
	if err != nil {
		t.Fatalf("Stat(active segment): %v", err)
	}
	return info.Size()
}

func mustGet(t *testing.T, e *engine.Engine, key string) (string, bool) {
	t.Helper()
	v, ok, err := e.Get(key)
	if err != nil {
		t.Fatalf("Get(%q): %v", key, err)
	}
	return v, ok
}

func TestSetThenGet(t *testing.T) {
	e := newEngine(t, 0)

	if _, ok := mustGet(t, e, "key"); ok {
		t.Fatalf("Get before Set: ok = true, want false")
	}
	if err := e.Set("key", "value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := mustGet(t, e, "key"); !ok || v != "value" {
		t.Fatalf("Get after Set = (%q, %v), want (value, true)", v, ok)
	}
}

// A later Set for the same key supersedes the earlier value.
func TestLastWriteWins(t *testing.T) {
	e := newEngine(t, 0)

	e.Set("key", "value")
	e.Set("key", "updated value")

	if v, ok := mustGet(t, e, "key"); !ok || v != "updated value" {
		t.Fatalf("Get = (%q, %v), want (updated value, true)", v, ok)
	}
}

// Delete hides a key from Get without needing compaction to run first.
func TestDeleteHides(t *testing.T) {
	e := newEngine(t, 0)

	e.Set("key", "value")
	if err := e.Delete("key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := mustGet(t, e, "key"); ok {
		t.Fatalf("Get after Delete: ok = true, want false")
	}
}

// A Set after a Delete for the same key resurrects it.
func TestResurrection(t *testing.T) {
	e := newEngine(t, 0)

	e.Set("key", "v1")
	e.Delete("key")
	e.Set("key", "v2")

	if v, ok := mustGet(t, e, "key"); !ok || v != "v2" {
		t.Fatalf("Get = (%q, %v), want (v2, true)", v, ok)
	}
}

// Keys written before and after many roll-overs remain readable.
func TestRollOverAcrossManySegments(t *testing.T) {
	e := newEngine(t, 255)

	if err := e.Set("first_key", "first_value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	for i := 0; i < 100; i++ {
		if err := e.Set(fmt.Sprintf("%d", i), fmt.Sprintf("%d", i*2)); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	if err := e.Set("last_key", "last_value"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if v, ok := mustGet(t, e, "first_key"); !ok || v != "first_value" {
		t.Fatalf("Get(first_key) = (%q, %v), want (first_value, true)", v, ok)
	}
	if v, ok := mustGet(t, e, "last_key"); !ok || v != "last_value" {
		t.Fatalf("Get(last_key) = (%q, %v), want (last_value, true)", v, ok)
	}
	for i := 0; i < 100; i++ {
		want := fmt.Sprintf("%d", i*2)
		if v, ok := mustGet(t, e, fmt.Sprintf("%d", i)); !ok || v != want {
			t.Fatalf("Get(%d) = (%q, %v), want (%s, true)", i, v, ok, want)
		}
	}
}

// Merge preserves the live key/value map while shrinking segment count.
func TestMergePreservesMapAndShrinks(t *testing.T) {
	e, segDir := newEngineWithDir(t, 255)

	e.Set("first_key", "first_value")
	for i := 0; i < 100; i++ {
		e.Set(fmt.Sprintf("%d", i), fmt.Sprintf("%d", i*2))
	}
	e.Set("last_key", "last_value")

	before := segmentCount(t, segDir)

	if err := e.Merge(context.Background()); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	after := segmentCount(t, segDir)
	if after >= before {
		t.Fatalf("segment count after merge = %d, want < %d", after, before)
	}

	if v, ok := mustGet(t, e, "first_key"); !ok || v != "first_value" {
		t.Fatalf("Get(first_key) after merge = (%q, %v), want (first_value, true)", v, ok)
	}
	if v, ok := mustGet(t, e, "last_key"); !ok || v != "last_value" {
		t.Fatalf("Get(last_key) after merge = (%q, %v), want (last_value, true)", v, ok)
	}
	for i := 0; i < 100; i++ {
		want := fmt.Sprintf("%d", i*2)
		if v, ok := mustGet(t, e, fmt.Sprintf("%d", i)); !ok || v != want {
			t.Fatalf("Get(%d) after merge = (%q, %v), want (%s, true)", i, v, ok, want)
		}
	}
}

// Compaction shrinks a segment containing duplicates and tombstones while
// preserving the live key/value map.
func TestCompactShrinksAndPreservesMap(t *testing.T) {
	e, segDir := newEngineWithDir(t, 0)

	e.Set("deleted", "")
	e.Set("present", "value")
	e.Delete("deleted")

	sizeBefore := activeSegmentSize(t, segDir)

	if err := e.Compact(context.Background(), nil); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	// The active segment was never compacted (compact_all skips it), so
	// compact it explicitly by index to exercise the shrink invariant.
	if err := e.Compact(context.Background(), []uint64{0}); err != nil {
		t.Fatalf("Compact(0): %v", err)
	}

	sizeAfter := activeSegmentSize(t, segDir)
	if sizeAfter >= sizeBefore {
		t.Fatalf("size after compact = %d, want < %d", sizeAfter, sizeBefore)
	}

	if v, ok := mustGet(t, e, "present"); !ok || v != "value" {
		t.Fatalf("Get(present) = (%q, %v), want (value, true)", v, ok)
	}
	if _, ok := mustGet(t, e, "deleted"); ok {
		t.Fatalf("Get(deleted) ok = true, want false")
	}
}

func TestCompactionPreservesMapAcrossSegments(t *testing.T) {
	e := newEngine(t, 255)

	e.Set("a", "1")
	for i := 0; i < 50; i++ {
		e.Set(fmt.Sprintf("filler-%d", i), "x")
	}
	e.Set("a", "2")

	if err := e.Compact(context.Background(), nil); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	if v, ok := mustGet(t, e, "a"); !ok || v != "2" {
		t.Fatalf("Get(a) after compact = (%q, %v), want (2, true)", v, ok)
	}
}

func TestDropClearsDatabase(t *testing.T) {
	e := newEngine(t, 0)

	e.Set("a", "1")
	e.Set("b", "2")

	if err := e.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	if _, ok := mustGet(t, e, "a"); ok {
		t.Fatalf("Get(a) after Drop: ok = true, want false")
	}

	// Must be usable again immediately.
	if err := e.Set("c", "3"); err != nil {
		t.Fatalf("Set after Drop: %v", err)
	}
	if v, ok := mustGet(t, e, "c"); !ok || v != "3" {
		t.Fatalf("Get(c) = (%q, %v), want (3, true)", v, ok)
	}
}

func TestColdStartRebuildsIndex(t *testing.T) {
	dir := t.TempDir()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	opts.SegmentOptions.Size = 255

	e1, err := engine.New(context.Background(), &engine.Config{Options: &opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	e1.Set("a", "1")
	e1.Set("b", "2")
	e1.Delete("a")
	if err := e1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2, err := engine.New(context.Background(), &engine.Config{Options: &opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("engine.New (restart): %v", err)
	}
	defer e2.Close()

	if _, ok, err := e2.Get("a"); err != nil || ok {
		t.Fatalf("Get(a) after restart = ok=%v err=%v, want ok=false", ok, err)
	}
	if v, ok, err := e2.Get("b"); err != nil || !ok || v != "2" {
		t.Fatalf("Get(b) after restart = (%q, %v, %v), want (2, true, nil)", v, ok, err)
	}
}
