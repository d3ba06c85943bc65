package codec

import (
	"bufio"
	"errors"
	"io"
)

// ErrKeyAfterKey is returned by Deserialize when a KEY field follows
// another unconsumed KEY field.
var ErrKeyAfterKey = errors.New("codec: KEY after KEY")

// ErrValueWithoutKey is returned by Deserialize when a VALUE field appears
// with no pending KEY field to pair it with.
var ErrValueWithoutKey = errors.New("codec: VALUE without KEY")

// ErrUnknownTag is returned by Deserialize when a field's tag byte isn't
// one of TagKey, TagValue, or TagTombstone.
var ErrUnknownTag = errors.New("codec: unknown tag")

// ErrTombstoneAfterKey is returned by Deserialize when a TOMBSTONE field
// follows an unconsumed KEY field. The lenient reading (silently discard
// the pending key) can mask real corruption, so this stream shape is
// rejected rather than tolerated.
var ErrTombstoneAfterKey = errors.New("codec: TOMBSTONE after KEY")

// ErrTruncated is returned by Deserialize when the source ends in the
// middle of a field — a partial tag/length header or a payload shorter
// than its declared length. This is distinct from a clean end-of-stream,
// which Deserialize reports as io.EOF.
var ErrTruncated = errors.New("codec: truncated record")

// OversizeFieldError reports that a key or value given to Serialize
// exceeds MaxFieldSize. Field is "key" or "value"; Length is the size that
// was rejected.
type OversizeFieldError struct {
	Field  string
	Length int
}

func (e *OversizeFieldError) Error() string {
	return "codec: " + e.Field + " exceeds maximum size of 255 bytes"
}

// Serialize encodes r per the wire format: a Put is a KEY field followed
// by a VALUE field; a Tombstone is a single TOMBSTONE field. It returns an
// *OversizeFieldError and writes nothing if r.Key or r.Value (for a Put)
// exceeds MaxFieldSize.
func Serialize(r Record) ([]byte, error) {
	if len(r.Key) > MaxFieldSize {
		return nil, &OversizeFieldError{Field: "key", Length: len(r.Key)}
	}
	if r.IsPut() && len(r.Value) > MaxFieldSize {
		return nil, &OversizeFieldError{Field: "value", Length: len(r.Value)}
	}

	buf := make([]byte, 0, r.SerializedSize())
	if r.IsTombstone() {
		buf = appendField(buf, TagTombstone, r.Key)
		return buf, nil
	}

	buf = appendField(buf, TagKey, r.Key)
	buf = appendField(buf, TagValue, r.Value)
	return buf, nil
}

func appendField(buf []byte, tag Tag, payload []byte) []byte {
	buf = append(buf, byte(tag), byte(len(payload)))
	buf = append(buf, payload...)
	return buf
}

// Deserialize reads exactly one record from r, which must be positioned
// at a record boundary. It returns io.EOF (and a zero Record) if r is
// exhausted at that boundary — the normal, non-error end of a scan.
//
// A KEY field following another unconsumed KEY field is ErrKeyAfterKey. A
// VALUE field with no pending KEY is ErrValueWithoutKey. An unrecognized
// tag byte is ErrUnknownTag. A field cut short by end-of-stream after the
// first byte has been consumed is ErrTruncated — the stream ended
// mid-record, which a clean boundary never does.
//
// A TOMBSTONE field following an unconsumed KEY field is ErrTombstoneAfterKey:
// the lenient reading (silently discarding the pending key) can mask real
// corruption, so it is rejected rather than tolerated.
func Deserialize(r io.Reader) (Record, error) {
	br := asByteReader(r)

	var pendingKey []byte
	havePendingKey := false

	for {
		tagByte, err := readByte(br)
		if err != nil {
			if err == io.EOF && !havePendingKey {
				return Record{}, io.EOF
			}
			return Record{}, ErrTruncated
		}

		length, err := readByte(br)
		if err != nil {
			return Record{}, ErrTruncated
		}

		payload, err := readN(br, int(length))
		if err != nil {
			return Record{}, ErrTruncated
		}

		switch Tag(tagByte) {
		case TagKey:
			if havePendingKey {
				return Record{}, ErrKeyAfterKey
			}
			pendingKey = payload
			havePendingKey = true

		case TagValue:
			if !havePendingKey {
				return Record{}, ErrValueWithoutKey
			}
			return NewPut(pendingKey, payload), nil

		case TagTombstone:
			if havePendingKey {
				return Record{}, ErrTombstoneAfterKey
			}
			return NewTombstone(payload), nil

		default:
			return Record{}, ErrUnknownTag
		}
	}
}

// asByteReader wraps r in a bufio.Reader unless it already satisfies
// io.ByteReader, so readByte never allocates a one-byte buffer per call.
func asByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

func readByte(br io.ByteReader) (byte, error) {
	return br.ReadByte()
}

// readN reads exactly n bytes from br, treating io.EOF before n bytes are
// read as ErrTruncated — a length-prefixed payload may never end short.
func readN(br io.ByteReader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := br.ReadByte()
		if err != nil {
			return nil, ErrTruncated
		}
		buf[i] = b
	}
	return buf, nil
}
