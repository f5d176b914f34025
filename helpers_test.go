package mp3meta

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/simonhull/mp3meta/internal/id3v2"
)

// MPEG-1 Layer III, 128 kbps, 44.1 kHz, joint stereo, no padding: 417 bytes.
var frameHeader = []byte{0xFF, 0xFB, 0x90, 0x64}

const frameSize = 417

// audioFrames builds n back-to-back frames. Each frame body carries its
// index so moved or clobbered frames show up in comparisons.
func audioFrames(n int) []byte {
	var out []byte
	for i := range n {
		frame := make([]byte, frameSize)
		copy(frame, frameHeader)
		for j := len(frameHeader); j < frameSize; j++ {
			frame[j] = byte(i + j%7)
		}
		out = append(out, frame...)
	}
	return out
}

// leadingTag encodes an ID3v2 tag of version v with the given fields.
func leadingTag(t *testing.T, v id3v2.Version, fields map[FieldKey]string) []byte {
	t.Helper()
	tag := id3v2.NewTag(v)
	for _, key := range []FieldKey{FieldTitle, FieldArtist, FieldAlbum, FieldYear, FieldComment} {
		if value, ok := fields[key]; ok {
			if err := tag.Set(key, value); err != nil {
				t.Fatalf("Set(%s) error: %v", key, err)
			}
		}
	}
	data, err := id3v2.Encode(tag)
	if err != nil {
		t.Fatalf("id3v2.Encode() error: %v", err)
	}
	return data
}

// writeFile writes the concatenated parts to a new file in a temp dir.
func writeFile(t *testing.T, parts ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mp3")
	if err := os.WriteFile(path, bytes.Join(parts, nil), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// quietLogger discards log output.
func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mustOpen(t *testing.T, path string, opts ...Option) *File {
	t.Helper()
	file, err := Open(path, append([]Option{WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return file
}
