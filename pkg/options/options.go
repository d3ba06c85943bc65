// Package options provides data structures and functions for configuring
// the Ignite database. It defines the parameters that control where segment
// files live and how large a sealed segment is allowed to grow before the
// engine rolls over to a new one.
package options

import "strings"

// Defines configurable parameters for segment files.
type segmentOptions struct {
	// Size is the maximum size, in bytes, a segment can grow to before the
	// engine rolls over to a new active segment. See MaxSegmentSize for the
	// default.
	Size uint64 `json:"maxSegmentSize"`

	// Directory is the subdirectory, relative to DataDir, where segment
	// files (data{i}.db, tempdata{i}.db) are stored.
	Directory string `json:"directory"`
}

// Defines the configuration parameters for an Ignite instance.
type Options struct {
	// DataDir is the base path under which the segment directory lives.
	DataDir string `json:"dataDir"`

	// SegmentOptions configures segment sizing and placement.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies an Ignite instance's
// configuration.
type OptionFunc func(*Options)

// Sets the primary data directory for Ignite.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the directory specifically for storing segment files.
func WithSegmentDirectory(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}

// Sets the maximum size of individual segment files. A zero size is
// ignored and leaves the current size in place.
func WithSegmentSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.SegmentOptions.Size = size
		}
	}
}
