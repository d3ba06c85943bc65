// Package seginfo provides the segment filename convention and discovery
// logic for the storage engine's append-only log.
//
// Segments are named data{i}.db for a non-negative, contiguous integer i
// starting at 0. The file at the highest index is the active segment;
// merge writes its output to tempdata{i}.db files, renamed into place once
// the merge completes.
//
// Example filenames:
//
//	data0.db
//	data1.db
//	tempdata0.db
package seginfo

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ignitekv/ignite/pkg/filesys"
)

const (
	segmentPrefix = "data"
	tempPrefix    = "tempdata"
	extension     = ".db"
)

// SegmentName returns the filename for the sealed or active segment at the
// given index: data{i}.db.
func SegmentName(index uint64) string {
	return fmt.Sprintf("%s%d%s", segmentPrefix, index, extension)
}

// TempSegmentName returns the filename merge writes its output to before
// renaming it into place: tempdata{i}.db.
func TempSegmentName(index uint64) string {
	return fmt.Sprintf("%s%d%s", tempPrefix, index, extension)
}

// SegmentPath joins dir with the segment filename for index.
func SegmentPath(dir string, index uint64) string {
	return filepath.Join(dir, SegmentName(index))
}

// TempSegmentPath joins dir with the temporary segment filename for index.
func TempSegmentPath(dir string, index uint64) string {
	return filepath.Join(dir, TempSegmentName(index))
}

// ParseIndex extracts the numeric index from a segment or temp-segment
// filename (e.g. "data12.db" -> 12, "tempdata3.db" -> 3). It returns an
// error if filename doesn't match either naming convention.
func ParseIndex(filename string) (uint64, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, extension)

	switch {
	case strings.HasPrefix(base, tempPrefix):
		base = strings.TrimPrefix(base, tempPrefix)
	case strings.HasPrefix(base, segmentPrefix):
		base = strings.TrimPrefix(base, segmentPrefix)
	default:
		return 0, fmt.Errorf("seginfo: %q does not match data{i}.db or tempdata{i}.db", filename)
	}

	index, err := strconv.ParseUint(base, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seginfo: %q has a non-numeric index: %w", filename, err)
	}
	return index, nil
}

// DiscoverActiveIndex performs the engine's startup scan: an ascending
// probe from 0 for the largest i such that data{i}.db exists and
// data{i+1}.db does not. found is false when no data{i}.db exists at all,
// in which case the caller must create an empty data0.db and use active
// index 0.
func DiscoverActiveIndex(dir string) (activeIndex uint64, found bool, err error) {
	zeroExists, err := filesys.Exists(SegmentPath(dir, 0))
	if err != nil {
		return 0, false, err
	}
	if !zeroExists {
		return 0, false, nil
	}

	i := uint64(0)
	for {
		nextExists, err := filesys.Exists(SegmentPath(dir, i+1))
		if err != nil {
			return 0, false, err
		}
		if !nextExists {
			return i, true, nil
		}
		i++
	}
}

// ListSegmentIndices globs dir for data{i}.db files and returns their
// indices sorted ascending. It tolerates files that don't parse by
// ignoring them, since only the contiguous data{i}.db files matter to the
// engine.
func ListSegmentIndices(dir string) ([]uint64, error) {
	matches, err := filesys.ReadDir(filepath.Join(dir, segmentPrefix+"*"+extension))
	if err != nil {
		return nil, err
	}

	indices := make([]uint64, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		if strings.HasPrefix(base, tempPrefix) {
			continue
		}
		idx, err := ParseIndex(m)
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}

	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && indices[j-1] > indices[j]; j-- {
			indices[j-1], indices[j] = indices[j], indices[j-1]
		}
	}
	return indices, nil
}
