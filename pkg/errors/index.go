package errors

// IndexError reports a violation of the offset index's one invariant
// (spec §3): a pointer recorded for a key in a segment must, when read
// back through that segment, resolve to a record whose key matches. This
// type exists so callers can distinguish "the index itself has drifted
// from the segment it points into" from a plain I/O failure or a
// wire-format violation the codec would already raise as CorruptDB.
type IndexError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// key is the key the index was asked to resolve.
	key string

	// segment names the segment file the pointer pointed into.
	segment string

	// operation records which index-backed operation hit the mismatch.
	operation string
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *IndexError instead of *baseError.

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithKey records which key was being resolved when the error occurred.
func (ie *IndexError) WithKey(key string) *IndexError {
	ie.key = key
	return ie
}

// WithSegment records which segment file the pointer pointed into.
func (ie *IndexError) WithSegment(segment string) *IndexError {
	ie.segment = segment
	return ie
}

// WithOperation records which index-backed operation hit the mismatch.
func (ie *IndexError) WithOperation(operation string) *IndexError {
	ie.operation = operation
	return ie
}

// Key returns the key that was being resolved when the error occurred.
func (ie *IndexError) Key() string {
	return ie.key
}

// Segment returns the segment file the pointer pointed into.
func (ie *IndexError) Segment() string {
	return ie.segment
}

// Operation returns the name of the operation that was being performed.
func (ie *IndexError) Operation() string {
	return ie.operation
}

// NewStalePointerError creates the index's dedicated error for its one
// invariant violation: a pointer recorded for key in segment resolved, via
// ReadAt, to a record whose key is gotKey instead. This means the index
// and the segment's actual contents have diverged — a bookkeeping bug
// rather than a malformed record, which the codec would already have
// rejected as CorruptDB on its own.
func NewStalePointerError(key, segment, gotKey string) *IndexError {
	return NewIndexError(nil, ErrorCodeIndexCorrupted, "index pointer resolved to a record with a different key").
		WithKey(key).
		WithSegment(segment).
		WithOperation("Get").
		WithDetail("recordKey", gotKey)
}
