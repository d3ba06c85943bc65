package options

const (
	// DefaultDataDir specifies the default base directory where Ignite will
	// store its segment files if no other directory is specified during
	// initialization.
	DefaultDataDir = "/var/lib/ignitedb"

	// MaxSegmentSize is the engine's single named constant for
	// MAX_SEGMENT_SIZE: the fixed cap on a sealed segment's size, in bytes.
	// It is intentionally tiny — 255 bytes — so that exercising rollover,
	// compaction, and merge doesn't require writing megabytes of test
	// fixtures. Options.SegmentOptions.Size defaults to it; WithSegmentSize
	// exists for callers who want a larger cap, not because this default is
	// expected to change.
	MaxSegmentSize uint64 = 255

	// DefaultSegmentDirectory is the default subdirectory, relative to
	// DataDir, where segment files are stored.
	DefaultSegmentDirectory = "segments"
)

// Holds the default configuration settings for an Ignite instance.
var defaultOptions = Options{
	DataDir: DefaultDataDir,
	SegmentOptions: &segmentOptions{
		Size:      MaxSegmentSize,
		Directory: DefaultSegmentDirectory,
	},
}

// NewDefaultOptions returns a fresh copy of the default configuration. Each
// call allocates its own SegmentOptions so callers can't mutate the shared
// defaults through an Options value returned by a previous call.
func NewDefaultOptions() Options {
	opts := defaultOptions
	segCopy := *defaultOptions.SegmentOptions
	opts.SegmentOptions = &segCopy
	return opts
}
