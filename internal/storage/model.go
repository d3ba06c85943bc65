package storage

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/ignitekv/ignite/pkg/options"
	"go.uber.org/zap"
)

// Storage owns the segment directory: the set of data{i}.db files, the
// currently open active segment, and the primitives the engine builds
// get/set/delete/compact/merge on top of. It has no notion of keys — it
// deals in segment indices, byte offsets, and raw TLV bytes.
//
// The active segment's file handle is kept open across calls (append-only,
// O_APPEND) so normal writes don't pay an open/close per call; sealed
// segments are opened on demand for reads, scans, and compaction and
// closed again immediately after.
type Storage struct {
	segmentDir string // Directory holding data{i}.db / tempdata{i}.db files.

	mu            sync.Mutex         // Guards activeIndex, activeSegment, and size.
	activeIndex   uint64             // Index of the segment currently accepting appends.
	activeSegment *os.File           // Open handle to data{activeIndex}.db.
	size          int64              // Current size, in bytes, of the active segment.
	options       *options.Options   // Configuration controlling segment sizing and placement.
	log           *zap.SugaredLogger // Structured logger for operational visibility.
	closed        atomic.Bool        // True once Close has run.
}

// Config encapsulates the configuration parameters required to initialize a Storage instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}
