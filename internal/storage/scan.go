package storage

import (
	"bufio"
	stdErrors "errors"
	"io"
	"os"

	"github.com/ignitekv/ignite/internal/codec"
	"github.com/ignitekv/ignite/pkg/errors"
	"github.com/ignitekv/ignite/pkg/seginfo"
)

// RecordHandler is called once per record a scan visits, with the byte
// offset at which that record begins within its segment. Returning an
// error stops the scan and propagates the error to the scan's caller.
type RecordHandler func(offset int64, rec codec.Record) error

// ReadAt opens segment index, seeks to offset, and deserializes exactly
// one record there.
func (s *Storage) ReadAt(index uint64, offset int64) (codec.Record, error) {
	if s.closed.Load() {
		return codec.Record{}, ErrStorageClosed
	}

	path := seginfo.SegmentPath(s.segmentDir, index)
	file, err := os.Open(path)
	if err != nil {
		return codec.Record{}, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to open segment for read").
			WithFileName(seginfo.SegmentName(index)).
			WithPath(path).
			WithOffset(int(offset))
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return codec.Record{}, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to seek to record offset").
			WithFileName(seginfo.SegmentName(index)).
			WithPath(path).
			WithOffset(int(offset))
	}

	rec, err := codec.Deserialize(bufio.NewReader(file))
	if err != nil {
		return codec.Record{}, s.classifyCodecError(err, index, offset)
	}
	return rec, nil
}

// ScanSegment visits every record in segment index, in file order, calling
// handler with each record's starting offset. A clean end-of-file after a
// whole number of records ends the scan without error; a partial record at
// the tail is a CorruptDB condition.
func (s *Storage) ScanSegment(index uint64, handler RecordHandler) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	path := seginfo.SegmentPath(s.segmentDir, index)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to open segment for scan").
			WithFileName(seginfo.SegmentName(index)).
			WithPath(path)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var offset int64

	for {
		rec, err := codec.Deserialize(reader)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return s.classifyCodecError(err, index, offset)
		}

		if herr := handler(offset, rec); herr != nil {
			return herr
		}
		offset += int64(rec.SerializedSize())
	}
}

// ScanAll visits every record across every existing segment, in ascending
// segment order and file order within each segment.
func (s *Storage) ScanAll(handler func(segment uint64, offset int64, rec codec.Record) error) error {
	indices, err := s.Segments()
	if err != nil {
		return err
	}

	for _, idx := range indices {
		idx := idx
		if err := s.ScanSegment(idx, func(offset int64, rec codec.Record) error {
			return handler(idx, offset, rec)
		}); err != nil {
			return err
		}
	}
	return nil
}

// classifyCodecError turns a codec-level parse error into a StorageError
// carrying the segment/offset context the codec itself doesn't know.
func (s *Storage) classifyCodecError(err error, index uint64, offset int64) error {
	reason := "corrupt record"
	switch {
	case stdErrors.Is(err, codec.ErrKeyAfterKey):
		reason = "KEY after KEY"
	case stdErrors.Is(err, codec.ErrValueWithoutKey):
		reason = "VALUE without KEY"
	case stdErrors.Is(err, codec.ErrUnknownTag):
		reason = "unknown tag"
	case stdErrors.Is(err, codec.ErrTombstoneAfterKey):
		reason = "TOMBSTONE after KEY"
	case stdErrors.Is(err, codec.ErrTruncated):
		reason = "truncated record"
	}
	return errors.NewCorruptDBError(reason, seginfo.SegmentName(index), int(offset))
}
