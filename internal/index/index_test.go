package index_test

import (
	"context"
	"testing"

	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/pkg/logger"
)

func newIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.New(context.Background(), &index.Config{DataDir: t.TempDir(), Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return idx
}

func TestSetAndLookup(t *testing.T) {
	idx := newIndex(t)

	if err := idx.Set("seg0", "a", 10); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ptr, ok, err := idx.Lookup("seg0", "a")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("Lookup(seg0, a) ok = false, want true")
	}
	if ptr.Offset != 10 || ptr.Key != "a" {
		t.Errorf("ptr = %+v, want Offset=10 Key=a", ptr)
	}

	if _, ok, _ := idx.Lookup("seg0", "missing"); ok {
		t.Errorf("Lookup(seg0, missing) ok = true, want false")
	}
	if _, ok, _ := idx.Lookup("seg1", "a"); ok {
		t.Errorf("Lookup(seg1, a) ok = true, want false (never set)")
	}
}

func TestSetOverwritesWithinSegment(t *testing.T) {
	idx := newIndex(t)

	if err := idx.Set("seg0", "a", 10); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := idx.Set("seg0", "a", 40); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ptr, ok, err := idx.Lookup("seg0", "a")
	if err != nil || !ok {
		t.Fatalf("Lookup: ptr=%v ok=%v err=%v", ptr, ok, err)
	}
	if ptr.Offset != 40 {
		t.Errorf("Offset = %d, want 40 (latest write wins)", ptr.Offset)
	}
}

func TestSamekeyDifferentSegmentsCoexist(t *testing.T) {
	idx := newIndex(t)

	if err := idx.Set("seg0", "a", 10); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := idx.Set("seg1", "a", 5); err != nil {
		t.Fatalf("Set: %v", err)
	}

	p0, ok0, _ := idx.Lookup("seg0", "a")
	p1, ok1, _ := idx.Lookup("seg1", "a")
	if !ok0 || !ok1 {
		t.Fatalf("expected entries in both segments: ok0=%v ok1=%v", ok0, ok1)
	}
	if p0.Offset != 10 || p1.Offset != 5 {
		t.Errorf("p0=%+v p1=%+v, want offsets 10 and 5", p0, p1)
	}
}

func TestClearSegment(t *testing.T) {
	idx := newIndex(t)
	idx.Set("seg0", "a", 10)
	idx.Set("seg1", "a", 5)

	if err := idx.ClearSegment("seg0"); err != nil {
		t.Fatalf("ClearSegment: %v", err)
	}

	if _, ok, _ := idx.Lookup("seg0", "a"); ok {
		t.Errorf("Lookup(seg0, a) ok = true after ClearSegment, want false")
	}
	if _, ok, _ := idx.Lookup("seg1", "a"); !ok {
		t.Errorf("Lookup(seg1, a) ok = false, want true (untouched)")
	}
}

func TestReplace(t *testing.T) {
	idx := newIndex(t)
	idx.Set("old", "a", 1)

	fresh := map[string]map[string]*index.RecordPointer{
		"new": {"b": {Offset: 99, Key: "b"}},
	}
	if err := idx.Replace(fresh); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if _, ok, _ := idx.Lookup("old", "a"); ok {
		t.Errorf("old entry survived Replace")
	}
	ptr, ok, _ := idx.Lookup("new", "b")
	if !ok || ptr.Offset != 99 {
		t.Errorf("Lookup(new, b) = %+v, ok=%v, want Offset=99", ptr, ok)
	}
}

func TestClear(t *testing.T) {
	idx := newIndex(t)
	idx.Set("seg0", "a", 1)
	idx.Set("seg1", "b", 2)

	if err := idx.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := idx.Lookup("seg0", "a"); ok {
		t.Errorf("entry survived Clear")
	}
}

func TestCloseRejectsFurtherUse(t *testing.T) {
	idx := newIndex(t)

	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := idx.Set("seg0", "a", 1); err != index.ErrIndexClosed {
		t.Errorf("Set after Close = %v, want ErrIndexClosed", err)
	}
	if err := idx.Close(); err != index.ErrIndexClosed {
		t.Errorf("second Close = %v, want ErrIndexClosed", err)
	}
}
