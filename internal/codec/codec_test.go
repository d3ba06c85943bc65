package codec_test

import (
	"bytes"
	stdErrors "errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ignitekv/ignite/internal/codec"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	tests := map[string]codec.Record{
		"put":                codec.NewPut([]byte("key"), []byte("value")),
		"put empty value":    codec.NewPut([]byte("key"), []byte{}),
		"tombstone":          codec.NewTombstone([]byte("key")),
		"max size key/value": codec.NewPut(bytes.Repeat([]byte("k"), 255), bytes.Repeat([]byte("v"), 255)),
	}

	for name, rec := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := codec.Serialize(rec)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}

			got, err := codec.Deserialize(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}

			if diff := cmp.Diff(normalize(rec), normalize(got)); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// normalize treats a nil and empty-but-non-nil Value the same way, since
// Serialize/Deserialize doesn't promise to preserve nil-ness of a
// zero-length field.
func normalize(r codec.Record) codec.Record {
	if r.Value == nil {
		r.Value = []byte{}
	}
	return r
}

func TestSerializeOversizeField(t *testing.T) {
	tests := map[string]struct {
		rec   codec.Record
		field string
	}{
		"oversize key":   {codec.NewPut(bytes.Repeat([]byte("k"), 256), []byte("v")), "key"},
		"oversize value": {codec.NewPut([]byte("k"), bytes.Repeat([]byte("v"), 256)), "value"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Serialize(tc.rec)
			var oversize *codec.OversizeFieldError
			if !stdErrors.As(err, &oversize) {
				t.Fatalf("expected *OversizeFieldError, got %v", err)
			}
			if oversize.Field != tc.field {
				t.Errorf("Field = %q, want %q", oversize.Field, tc.field)
			}
		})
	}
}

func TestDeserializeEndOfStream(t *testing.T) {
	_, err := codec.Deserialize(bytes.NewReader(nil))
	if err != io.EOF {
		t.Fatalf("Deserialize(empty) = %v, want io.EOF", err)
	}
}

func TestDeserializeCorruption(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		wantErr error
	}{
		"key after key": {
			data:    append(field(codec.TagKey, "a"), field(codec.TagKey, "b")...),
			wantErr: codec.ErrKeyAfterKey,
		},
		"value without key": {
			data:    field(codec.TagValue, "v"),
			wantErr: codec.ErrValueWithoutKey,
		},
		"unknown tag": {
			data:    field(codec.Tag(9), "x"),
			wantErr: codec.ErrUnknownTag,
		},
		"tombstone after key": {
			data:    append(field(codec.TagKey, "stale"), field(codec.TagTombstone, "real")...),
			wantErr: codec.ErrTombstoneAfterKey,
		},
		"truncated payload": {
			data:    []byte{byte(codec.TagKey), 5, 'a', 'b'},
			wantErr: codec.ErrTruncated,
		},
		"truncated header": {
			data:    []byte{byte(codec.TagKey)},
			wantErr: codec.ErrTruncated,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Deserialize(bytes.NewReader(tc.data))
			if err != tc.wantErr {
				t.Fatalf("Deserialize(%v) = %v, want %v", tc.data, err, tc.wantErr)
			}
		})
	}
}

func TestSerializedSize(t *testing.T) {
	put := codec.NewPut([]byte("ab"), []byte("cde"))
	if got, want := put.SerializedSize(), 4+2+3; got != want {
		t.Errorf("SerializedSize(put) = %d, want %d", got, want)
	}

	tomb := codec.NewTombstone([]byte("ab"))
	if got, want := tomb.SerializedSize(), 2+2; got != want {
		t.Errorf("SerializedSize(tombstone) = %d, want %d", got, want)
	}

	data, err := codec.Serialize(put)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got, want := len(data), put.SerializedSize(); got != want {
		t.Errorf("len(Serialize(put)) = %d, want SerializedSize() = %d", got, want)
	}
}

func field(tag codec.Tag, payload string) []byte {
	return append([]byte{byte(tag), byte(len(payload))}, payload...)
}
