package errors

// StorageError is a specialized error type for storage-related operations.
// It embeds baseError to inherit all the standard error functionality, then adds
// storage-specific fields that help pinpoint exactly where problems occurred.
type StorageError struct {
	*baseError
	offset   int    // Byte offset within the segment where the problem happened.
	fileName string // Name of the file that caused the issue.
	path     string // Path of the file that caused the issue.
}

// NewStorageError creates a new storage-specific error.
func NewStorageError(err error, code ErrorCode, msg string) *StorageError {
	return &StorageError{baseError: NewBaseError(err, code, msg)}
}

// WithDetail adds contextual information while maintaining the StorageError
// type, so calls can keep chaining into WithPath/WithFileName/WithOffset
// afterward instead of falling back to the embedded baseError's return type.
func (se *StorageError) WithDetail(key string, value any) *StorageError {
	se.baseError.WithDetail(key, value)
	return se
}

// NewBadPathError creates the engine's dedicated error for a data directory
// that exists but is not a directory.
func NewBadPathError(path string) *StorageError {
	return NewStorageError(nil, ErrorCodeBadPath, "data directory path exists and is not a directory").
		WithPath(path)
}

// NewCorruptDBError creates the engine's dedicated error for a TLV stream
// that violates a codec invariant: an unknown tag, a KEY field following an
// unconsumed KEY field, a VALUE field with no pending KEY, a record
// truncated mid-field, or a value that fails UTF-8 decoding.
func NewCorruptDBError(reason, fileName string, offset int) *StorageError {
	return NewStorageError(nil, ErrorCodeCorruptDB, reason).
		WithFileName(fileName).
		WithOffset(offset)
}

// WithOffset records the byte position where the error occurred.
func (se *StorageError) WithOffset(offset int) *StorageError {
	se.offset = offset
	return se
}

// WithFileName captures which file was being processed when the error occurred.
func (se *StorageError) WithFileName(fileName string) *StorageError {
	se.fileName = fileName
	return se
}

// WithPath captures which path was being processed when the error occurred.
func (se *StorageError) WithPath(path string) *StorageError {
	se.path = path
	return se
}

// Offset returns the byte offset within the segment where the error happened.
// Combined with FileName, this gives you the exact location of the problem.
func (se *StorageError) Offset() int {
	return se.offset
}

// FileName returns the name of the file that was being processed.
func (se *StorageError) FileName() string {
	return se.fileName
}

// Path returns the path of the file that was being processed.
func (se *StorageError) Path() string {
	return se.path
}
