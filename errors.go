package mp3meta

import (
	"github.com/simonhull/mp3meta/internal/types"
)

// OutOfBoundsError is returned when a read would pass the end of the file.
type OutOfBoundsError = types.OutOfBoundsError

// CorruptedFileError is returned when file structure is invalid.
type CorruptedFileError = types.CorruptedFileError

// TagNotFoundError reports a tag format absent where it was probed. Open
// recovers it internally; it reaches callers only from lower-level probes.
type TagNotFoundError = types.TagNotFoundError

// NoAudioFoundError is returned by Open when the file holds no MPEG frames.
type NoAudioFoundError = types.NoAudioFoundError

// ReadOnlyTargetError is returned by Save when the file cannot be written.
type ReadOnlyTargetError = types.ReadOnlyTargetError

// CannotWriteError wraps the failure that aborted a save step.
type CannotWriteError = types.CannotWriteError

// OffsetMismatchError is returned by Open with WithStrictOffsets when the
// leading tag's declared size disagrees with the audio start.
type OffsetMismatchError = types.OffsetMismatchError

// Warning is a non-fatal issue found while parsing.
type Warning = types.Warning
