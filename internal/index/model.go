package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// RecordPointer contains the absolute minimum metadata required to locate and
// retrieve a record from disk storage without parsing anything: Where a full
// read still has to open the segment and decode the TLV record at Offset,
// this is what lets the engine skip straight to that byte instead of
// scanning the file.
type RecordPointer struct {
	// Offset is the byte position within the segment file where the TLV
	// record begins. Combined with the segment the pointer is stored under,
	// this gives get a direct seek target instead of a scan.
	Offset int64

	// Key stores the record's key alongside the pointer. It duplicates the
	// map key the pointer is stored under, so a pointer handed out by
	// Lookup carries its key without a disk read.
	Key string
}

// segmentEntries maps a key to its most recent RecordPointer within one
// segment.
type segmentEntries map[string]*RecordPointer

// Index is the in-memory offset index: segment_path -> key -> byte_offset,
// per the engine's recency-ordered lookup rule. A key may have one live
// pointer per segment; get resolves the correct value by consulting
// segments from newest to oldest and stopping at the first hit.
//
// The index is a cache, never a source of truth: a cold process restart
// starts with an empty one, and the engine is responsible for populating it
// by scanning segments at construction (see the engine package). Index
// itself has no knowledge of files or segment contents — it only stores and
// retrieves offsets under a segment/key pair.
type Index struct {
	dataDir string                    // Filesystem path where segment files are stored.
	log     *zap.SugaredLogger        // Structured logging.
	entries map[string]segmentEntries // segment path -> key -> pointer.
	mu      sync.RWMutex              // Protects entries.
	closed  atomic.Bool               // True once Close has run.
}

// Config encapsulates the configuration parameters required to initialize an Index.
type Config struct {
	DataDir string             // Filesystem directory containing segment files.
	Logger  *zap.SugaredLogger // Structured logging for Index operations.
}
