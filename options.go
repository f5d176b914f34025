package mp3meta

import "github.com/sirupsen/logrus"

// Option configures behavior when opening files.
//
//	file, err := mp3meta.Open("song.mp3",
//	    mp3meta.WithLoad(mp3meta.LoadID3v2),
//	    mp3meta.WithLogger(logger),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening files.
type openOptions struct {
	load          LoadFlags
	readOnly      bool
	strictOffsets bool
	logger        logrus.FieldLogger
}

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{
		load:   LoadAll,
		logger: logrus.StandardLogger(),
	}
}

// WithLoad selects the tag formats read by Open. Formats left out are
// treated as absent, and a later Save with the matching save flag removes
// them from disk.
//
// The default is LoadAll.
//
//	// Read only the leading tag.
//	file, err := mp3meta.Open("song.mp3", mp3meta.WithLoad(mp3meta.LoadID3v2))
func WithLoad(flags LoadFlags) Option {
	return func(o *openOptions) {
		o.load = flags
	}
}

// WithReadOnly marks the File as read-only. Save then fails with
// *ReadOnlyTargetError without touching the file.
func WithReadOnly() Option {
	return func(o *openOptions) {
		o.readOnly = true
	}
}

// WithStrictOffsets makes Open fail with *OffsetMismatchError when the
// leading tag's declared size does not lead to the first audio frame.
//
// By default the mismatch is tolerated: the audio start found by
// rescanning the file is used and File.Discrepancy records both values.
func WithStrictOffsets() Option {
	return func(o *openOptions) {
		o.strictOffsets = true
	}
}

// WithLogger sets the logger used by Open and by Save on the returned File.
// The default is logrus.StandardLogger().
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *openOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
