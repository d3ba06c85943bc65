package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. This includes file system operations like reading or
	// writing segment files, network operations when communicating with remote
	// systems, and device I/O when accessing storage hardware.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints. This maps
	// to HTTP 400-series errors and indicates problems with the request itself
	// rather than system failures.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories. These are the equivalent of HTTP 500 errors and
	// indicate bugs, assertion failures, or other programming errors that
	// shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes that occur in persistent storage systems. These codes
// represent problems that are specific to the storage layer of your key-value
// store, particularly focusing on segment file management and data persistence.
const (
	// ErrorCodePermissionDenied indicates insufficient permissions to access a resource.
	// This is distinct from generic IO errors because it has a specific resolution path:
	// the user needs to adjust file/directory permissions or run with elevated privileges.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	// This requires specific handling like cleanup operations or alerting administrators.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	// This requires administrative intervention to remount the filesystem with write permissions.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"

	// ErrorCodeBadPath indicates the configured data directory exists but is
	// not a directory (e.g. a regular file sitting at that path).
	ErrorCodeBadPath ErrorCode = "BAD_PATH"

	// ErrorCodeCorruptDB indicates the on-disk TLV stream violates the codec's
	// wire-format invariants: an unknown tag, a KEY field following another
	// unconsumed KEY field, a VALUE field with no pending KEY, a record
	// truncated mid-field, or a value that fails UTF-8 decoding on read.
	ErrorCodeCorruptDB ErrorCode = "CORRUPT_DB"
)

// Field-validation error codes cover the record codec's own input
// constraints, independent of the generic ErrorCodeInvalidInput used for
// configuration-time validation.
const (
	// ErrorCodeOversizeField indicates a key or value longer than 255 bytes
	// was passed to the codec. Raised before any I/O occurs.
	ErrorCodeOversizeField ErrorCode = "OVERSIZE_FIELD"
)

// Index-specific error codes.
const (
	// ErrorCodeIndexCorrupted indicates the offset index has drifted from
	// the segment contents it points into: a recorded pointer resolved to
	// a record whose key doesn't match.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"
)
