// Package storage owns the on-disk segment directory for the key-value
// engine: discovering the active segment at startup, appending records to
// it, rolling over to a fresh segment once the size cap is projected to be
// exceeded, and providing the read/scan primitives the engine and its
// compaction/merge logic are built on.
//
// Segments are named data{i}.db for a contiguous, non-negative integer i
// (see the seginfo package); the highest-indexed file is always the
// active segment. There is no background activity here — every operation
// is driven by an explicit engine call.
package storage

import (
	"context"
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/ignitekv/ignite/pkg/errors"
	"github.com/ignitekv/ignite/pkg/filesys"
	"github.com/ignitekv/ignite/pkg/seginfo"
)

var (
	// ErrStorageClosed is returned by every Storage method once Close has run.
	ErrStorageClosed = stdErrors.New("operation failed: cannot access closed storage")
)

// New prepares the segment directory for use: creates it if missing,
// performs the startup scan to find (or create) the active segment, and
// opens it for appending.
func New(ctx context.Context, config *Config) (*Storage, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Storage configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	config.Logger.Infow(
		"Initializing storage system",
		"dataDir", config.Options.DataDir,
		"maxSegmentSize", config.Options.SegmentOptions.Size,
		"segmentDir", config.Options.SegmentOptions.Directory,
	)

	segmentDir := filepath.Join(config.Options.DataDir, config.Options.SegmentOptions.Directory)

	if stat, err := os.Stat(segmentDir); err == nil && !stat.IsDir() {
		return nil, errors.NewBadPathError(segmentDir)
	}

	if err := filesys.CreateDir(segmentDir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, segmentDir)
	}

	s := &Storage{log: config.Logger, options: config.Options, segmentDir: segmentDir}

	activeIndex, found, err := seginfo.DiscoverActiveIndex(segmentDir)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to discover active segment").
			WithPath(segmentDir)
	}
	if !found {
		config.Logger.Infow("No existing segments found, starting fresh", "segment", seginfo.SegmentName(0))
		activeIndex = 0
	}

	file, size, err := s.openActive(activeIndex)
	if err != nil {
		return nil, err
	}

	s.activeIndex = activeIndex
	s.activeSegment = file
	s.size = size

	config.Logger.Infow(
		"Storage system initialized successfully",
		"activeIndex", activeIndex,
		"segmentSize", size,
	)
	return s, nil
}

// openActive opens (creating if necessary) data{index}.db for append and
// returns its current size.
func (s *Storage) openActive(index uint64) (*os.File, int64, error) {
	path := seginfo.SegmentPath(s.segmentDir, index)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, 0, errors.ClassifyFileOpenError(err, path, seginfo.SegmentName(index))
	}

	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to seek to end of segment file").
			WithFileName(seginfo.SegmentName(index)).
			WithPath(path)
	}

	return file, size, nil
}

// SegmentDir returns the directory holding the segment files.
func (s *Storage) SegmentDir() string {
	return s.segmentDir
}

// SegmentPath returns the path of data{index}.db within the segment directory.
func (s *Storage) SegmentPath(index uint64) string {
	return seginfo.SegmentPath(s.segmentDir, index)
}

// ActiveIndex returns the index of the segment currently accepting appends.
func (s *Storage) ActiveIndex() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeIndex
}

// MaxSegmentSize returns the configured size cap a sealed segment must not
// be projected to exceed.
func (s *Storage) MaxSegmentSize() uint64 {
	return s.options.SegmentOptions.Size
}

// WouldOverflow reports whether appending n more bytes to the active
// segment would make it strictly larger than MaxSegmentSize.
func (s *Storage) WouldOverflow(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size+int64(n) > int64(s.options.SegmentOptions.Size)
}

// Roll seals the current active segment and opens a fresh one at the next
// index, making it the new append target. It returns the new active
// index.
func (s *Storage) Roll() (uint64, error) {
	if s.closed.Load() {
		return 0, ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.activeSegment.Close(); err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close sealed segment").
			WithFileName(seginfo.SegmentName(s.activeIndex)).
			WithPath(seginfo.SegmentPath(s.segmentDir, s.activeIndex))
	}

	next := s.activeIndex + 1
	file, size, err := s.openActive(next)
	if err != nil {
		return 0, err
	}

	s.log.Infow("Rolled over to new active segment", "previousIndex", s.activeIndex, "newIndex", next)

	s.activeIndex = next
	s.activeSegment = file
	s.size = size
	return next, nil
}

// Append writes data to the active segment and returns the byte offset at
// which it was written — the file's size immediately before the write, per
// the engine's append-offset contract.
func (s *Storage) Append(data []byte) (segment uint64, offset int64, err error) {
	if s.closed.Load() {
		return 0, 0, ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	offset = s.size

	n, werr := s.activeSegment.Write(data)
	if werr != nil {
		return 0, 0, errors.NewStorageError(werr, errors.ErrorCodeIO, "Failed to append to active segment").
			WithFileName(seginfo.SegmentName(s.activeIndex)).
			WithPath(seginfo.SegmentPath(s.segmentDir, s.activeIndex)).
			WithOffset(int(offset))
	}

	s.size += int64(n)
	return s.activeIndex, offset, nil
}

// AppendTo writes data to the end of segment index and returns the byte
// offset it was written at. Compaction's re-issue phase uses this to write
// a segment's surviving records back into that same segment, keeping them
// in their original position relative to newer segments. Appending to the
// active segment goes through the held handle so size accounting stays
// correct; a sealed segment is opened on demand and closed again.
func (s *Storage) AppendTo(index uint64, data []byte) (int64, error) {
	if s.closed.Load() {
		return 0, ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index == s.activeIndex {
		offset := s.size
		n, err := s.activeSegment.Write(data)
		if err != nil {
			return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to append to active segment").
				WithFileName(seginfo.SegmentName(index)).
				WithPath(seginfo.SegmentPath(s.segmentDir, index)).
				WithOffset(int(offset))
		}
		s.size += int64(n)
		return offset, nil
	}

	path := seginfo.SegmentPath(s.segmentDir, index)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, errors.ClassifyFileOpenError(err, path, seginfo.SegmentName(index))
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to stat segment before append").
			WithFileName(seginfo.SegmentName(index)).
			WithPath(path)
	}
	offset := stat.Size()

	if _, err := file.Write(data); err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to append to sealed segment").
			WithFileName(seginfo.SegmentName(index)).
			WithPath(path).
			WithOffset(int(offset))
	}
	return offset, nil
}

// Close closes the active segment's file handle.
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStorageClosed
	}

	s.log.Infow("Closing storage system")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.activeSegment.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close active segment").
			WithFileName(seginfo.SegmentName(s.activeIndex))
	}

	s.log.Infow("Storage system closed successfully")
	return nil
}
