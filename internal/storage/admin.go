package storage

import (
	"os"
	"path/filepath"

	"github.com/ignitekv/ignite/pkg/errors"
	"github.com/ignitekv/ignite/pkg/filesys"
	"github.com/ignitekv/ignite/pkg/seginfo"
)

// Segments returns the indices of every data{i}.db file currently present,
// sorted ascending.
func (s *Storage) Segments() ([]uint64, error) {
	indices, err := seginfo.ListSegmentIndices(s.segmentDir)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to list segments").
			WithPath(s.segmentDir)
	}
	return indices, nil
}

// RecreateSegment deletes data{index}.db and recreates it empty. Compact
// uses this between scanning a segment's surviving records and writing
// them back into that segment with AppendTo. If index is the active segment,
// the held file handle is closed and reopened against the fresh file.
func (s *Storage) RecreateSegment(index uint64) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := seginfo.SegmentPath(s.segmentDir, index)

	if index == s.activeIndex {
		if err := s.activeSegment.Close(); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close segment before recreation").
				WithFileName(seginfo.SegmentName(index)).WithPath(path)
		}
		if err := filesys.DeleteFile(path); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to delete segment").
				WithFileName(seginfo.SegmentName(index)).WithPath(path)
		}

		file, size, err := s.openActive(index)
		if err != nil {
			return err
		}
		s.activeSegment = file
		s.size = size
		return nil
	}

	if err := filesys.DeleteFile(path); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to delete segment").
			WithFileName(seginfo.SegmentName(index)).WithPath(path)
	}
	return createEmptyFile(path)
}

func createEmptyFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to create empty segment").
			WithPath(path)
	}
	return file.Close()
}

// TempWriter accumulates appended bytes into a tempdata{i}.db file, the
// staging area merge writes packed output segments to before they're
// renamed into place.
type TempWriter struct {
	file  *os.File
	size  int64
	index uint64
}

// CreateTempSegment opens tempdata{index}.db for writing, truncating any
// previous contents.
func (s *Storage) CreateTempSegment(index uint64) (*TempWriter, error) {
	path := seginfo.TempSegmentPath(s.segmentDir, index)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to create temp segment").
			WithFileName(seginfo.TempSegmentName(index)).WithPath(path)
	}
	return &TempWriter{file: file, index: index}, nil
}

// Append writes data to the temp segment and returns the offset it was
// written at.
func (tw *TempWriter) Append(data []byte) (int64, error) {
	offset := tw.size

	n, err := tw.file.Write(data)
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to append to temp segment").
			WithFileName(seginfo.TempSegmentName(tw.index)).WithOffset(int(offset))
	}

	tw.size += int64(n)
	return offset, nil
}

// Close closes the temp segment's file handle.
func (tw *TempWriter) Close() error {
	if err := tw.file.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close temp segment").
			WithFileName(seginfo.TempSegmentName(tw.index))
	}
	return nil
}

// Drop removes every data{i}.db and tempdata{i}.db file, then recreates an
// empty data0.db and resets the active segment to it — the post-condition
// that leaves the engine usable again immediately after a drop.
func (s *Storage) Drop() error {
	return s.reset(true)
}

// reset closes the active segment, clears the segment set, and recreates
// an empty data0.db as the new active segment. includeTemp controls
// whether tempdata{i}.db files are cleared too: Drop wipes them (a full
// wipe should leave nothing behind), while FinalizeMerge's pre-rename
// reset must not — those are the very files merge is about to promote.
func (s *Storage) reset(includeTemp bool) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.activeSegment.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close active segment before drop")
	}

	if err := s.removeSegmentFiles(includeTemp); err != nil {
		return err
	}

	file, size, err := s.openActive(0)
	if err != nil {
		return err
	}

	s.activeIndex = 0
	s.activeSegment = file
	s.size = size
	return nil
}

func (s *Storage) removeSegmentFiles(includeTemp bool) error {
	dataFiles, err := filesys.ReadDir(filepath.Join(s.segmentDir, "data*.db"))
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to list segment files").
			WithPath(s.segmentDir)
	}

	toDelete := dataFiles
	if includeTemp {
		tempFiles, err := filesys.ReadDir(filepath.Join(s.segmentDir, "tempdata*.db"))
		if err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to list temp segment files").
				WithPath(s.segmentDir)
		}
		toDelete = append(toDelete, tempFiles...)
	}

	for _, f := range toDelete {
		if err := filesys.DeleteFile(f); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to delete segment file").WithPath(f)
		}
	}
	return nil
}

// FinalizeMerge completes a merge: it clears the old data{i}.db set
// (leaving tempdata{0..count-1}.db — merge's freshly packed output —
// untouched), then, if count is nonzero, renames those temp segments into
// place as data{0..count-1}.db and reopens the active segment against the
// last of them. count == 0 means merge produced no output segments (the
// database held no live keys); the data0.db recreated by the reset already
// leaves that case in the correct state.
func (s *Storage) FinalizeMerge(count uint64) error {
	if err := s.reset(false); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.activeSegment.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close segment before merge promotion")
	}

	for i := uint64(0); i < count; i++ {
		tempPath := seginfo.TempSegmentPath(s.segmentDir, i)
		dataPath := seginfo.SegmentPath(s.segmentDir, i)
		if err := os.Rename(tempPath, dataPath); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to promote merged segment").
				WithFileName(seginfo.TempSegmentName(i)).WithPath(tempPath)
		}
	}

	finalIndex := count - 1
	file, size, err := s.openActive(finalIndex)
	if err != nil {
		return err
	}

	s.activeIndex = finalIndex
	s.activeSegment = file
	s.size = size
	return nil
}
