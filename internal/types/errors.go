package types

import "fmt"

// OutOfBoundsError is returned when attempting to read beyond file bounds.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// CorruptedFileError is returned when file structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// TagNotFoundError reports that a tag format was not recognised at the region
// where it was expected.
//
// It is the normal outcome of probing a format that is not present, and is
// recovered inside Open by trying the next format.
type TagNotFoundError struct {
	Kind   Kind
	Reason string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("no %s tag: %s", e.Kind, e.Reason)
}

// NoAudioFoundError is returned when no run of valid MPEG frame headers exists
// between Start and the end of the file.
type NoAudioFoundError struct {
	Path  string
	Start int64
}

func (e *NoAudioFoundError) Error() string {
	return fmt.Sprintf("%s: no MPEG audio frames found after offset %d", e.Path, e.Start)
}

// ReadOnlyTargetError is returned when a save is requested on a file that
// cannot be written.
type ReadOnlyTargetError struct {
	Path string
	Err  error
}

func (e *ReadOnlyTargetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: read-only target: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: read-only target", e.Path)
}

func (e *ReadOnlyTargetError) Unwrap() error {
	return e.Err
}

// CannotWriteError wraps any failure that aborted a save.
//
// Steps completed before the failure are not rolled back.
type CannotWriteError struct {
	Path string
	Step string // "current", "ape", "legacy", "lyrics3", "backup", "validate"
	Err  error
}

func (e *CannotWriteError) Error() string {
	return fmt.Sprintf("%s: cannot write %s: %v", e.Path, e.Step, e.Err)
}

func (e *CannotWriteError) Unwrap() error {
	return e.Err
}

// OffsetMismatchError is returned by strict opens when the declared leading
// tag size does not match the located start of audio.
type OffsetMismatchError struct {
	Path      string
	Declared  int64
	Rescanned int64
}

func (e *OffsetMismatchError) Error() string {
	return fmt.Sprintf("%s: leading tag ends at %d but audio starts at %d",
		e.Path, e.Declared, e.Rescanned)
}

// Warning represents a non-fatal issue encountered during parsing.
//
// Warnings indicate problems that don't prevent metadata extraction but
// may indicate corrupted or unusual data. Examples include:
//   - A frame overrunning its tag
//   - Invalid encoding in a text frame
//   - Disagreement between a declared tag size and the audio start
//
// Warnings are collected in File.Warnings during parsing.
type Warning struct {
	// Stage where the warning occurred
	Stage string // "audio", "id3v2", "id3v1", "ape", "lyrics3"

	// Warning message
	Message string

	// File offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
