package mp3meta

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "offset beyond file size",
			err:      &OutOfBoundsError{Path: "test.mp3", Offset: 1000, Length: 4, Size: 500, What: "MPEG frame header"},
			contains: []string{"test.mp3", "offset 1000 out of bounds", "file size: 500", "MPEG frame header"},
		},
		{
			name:     "read would exceed file size",
			err:      &OutOfBoundsError{Path: "a.mp3", Offset: 100, Length: 50, Size: 120, What: "APE footer"},
			contains: []string{"a.mp3", "read of 50 bytes", "offset 100", "exceed file size 120", "APE footer"},
		},
		{
			name:     "tag not found",
			err:      &TagNotFoundError{Kind: KindID3v23, Reason: "missing ID3 magic"},
			contains: []string{"ID3v2.3", "missing ID3 magic"},
		},
		{
			name:     "no audio",
			err:      &NoAudioFoundError{Path: "silence.mp3", Start: 2048},
			contains: []string{"silence.mp3", "no MPEG audio frames", "2048"},
		},
		{
			name:     "read-only",
			err:      &ReadOnlyTargetError{Path: "ro.mp3"},
			contains: []string{"ro.mp3", "read-only"},
		},
		{
			name:     "cannot write",
			err:      &CannotWriteError{Path: "w.mp3", Step: "ape", Err: errors.New("disk full")},
			contains: []string{"w.mp3", "ape", "disk full"},
		},
		{
			name:     "offset mismatch",
			err:      &OffsetMismatchError{Path: "m.mp3", Declared: 4096, Rescanned: 4000},
			contains: []string{"m.mp3", "4096", "4000"},
		},
		{
			name:     "corrupted",
			err:      &CorruptedFileError{Path: "broken.mp3", Offset: 256, Reason: "bad frame"},
			contains: []string{"broken.mp3", "offset 256", "bad frame", "corrupted file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(msg, substr) {
					t.Errorf("error message %q should contain %q", msg, substr)
				}
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := &CannotWriteError{Path: "w.mp3", Step: "current", Err: fs.ErrPermission}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("CannotWriteError does not unwrap to its cause")
	}

	ro := &ReadOnlyTargetError{Path: "ro.mp3", Err: fs.ErrNotExist}
	if !errors.Is(ro, fs.ErrNotExist) {
		t.Error("ReadOnlyTargetError does not unwrap to its cause")
	}
}

func TestWarning_String(t *testing.T) {
	w := Warning{Stage: "audio", Message: "offsets disagree", Offset: 512}
	if got := w.String(); got != "audio (at offset 512): offsets disagree" {
		t.Errorf("String() = %q", got)
	}
	w.Offset = 0
	if got := w.String(); got != "audio: offsets disagree" {
		t.Errorf("String() = %q", got)
	}
}
