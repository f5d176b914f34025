package binary

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/simonhull/mp3meta/internal/types"
)

// mockReader implements io.ReaderAt for testing.
type mockReader struct {
	data []byte
}

func (m *mockReader) ReadAt(p []byte, off int64) (n int, err error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func newTestReader(data []byte) *SafeReader {
	return NewSafeReader(&mockReader{data: data}, int64(len(data)), "test.mp3")
}

func TestSafeReader_ReadAt_Success(t *testing.T) {
	sr := newTestReader([]byte{0x01, 0x02, 0x03, 0x04})

	buf := make([]byte, 2)
	if err := sr.ReadAt(buf, 2, "test read"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf[0] != 0x03 || buf[1] != 0x04 {
		t.Errorf("expected [0x03, 0x04], got [0x%02x, 0x%02x]", buf[0], buf[1])
	}
}

func TestSafeReader_ReadAt_OutOfBounds(t *testing.T) {
	sr := newTestReader([]byte{0x01, 0x02, 0x03, 0x04})

	tests := []struct {
		name string
		off  int64
		n    int
	}{
		{"offset past end", 10, 2},
		{"negative offset", -1, 2},
		{"read crosses end", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sr.ReadAt(make([]byte, tt.n), tt.off, "ID3v1 trailer")
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var oob *types.OutOfBoundsError
			if !errors.As(err, &oob) {
				t.Fatalf("expected *OutOfBoundsError, got %T", err)
			}
			if !strings.Contains(err.Error(), "test.mp3") {
				t.Errorf("error should contain filename: %v", err)
			}
			if !strings.Contains(err.Error(), "ID3v1 trailer") {
				t.Errorf("error should contain context: %v", err)
			}
		})
	}
}

func TestSafeReader_Bytes(t *testing.T) {
	sr := newTestReader([]byte("TAGxyz"))

	got, err := sr.Bytes(0, 3, "magic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "TAG" {
		t.Errorf("Bytes = %q, want %q", got, "TAG")
	}

	empty, err := sr.Bytes(6, 0, "nothing")
	if err != nil || len(empty) != 0 {
		t.Errorf("zero-length read = %v, %v; want empty, nil", empty, err)
	}
}

func TestReadBE(t *testing.T) {
	sr := newTestReader([]byte{0xFF, 0xFB, 0x90, 0x64, 0x01, 0x02, 0x03, 0x04})

	u8, err := ReadBE[uint8](sr, 0, "sync byte")
	if err != nil || u8 != 0xFF {
		t.Errorf("ReadBE[uint8] = 0x%02x, %v; want 0xFF", u8, err)
	}

	u16, err := ReadBE[uint16](sr, 0, "sync word")
	if err != nil || u16 != 0xFFFB {
		t.Errorf("ReadBE[uint16] = 0x%04x, %v; want 0xFFFB", u16, err)
	}

	u32, err := ReadBE[uint32](sr, 0, "frame header")
	if err != nil || u32 != 0xFFFB9064 {
		t.Errorf("ReadBE[uint32] = 0x%08x, %v; want 0xFFFB9064", u32, err)
	}

	u64, err := ReadBE[uint64](sr, 0, "eight bytes")
	if err != nil || u64 != 0xFFFB906401020304 {
		t.Errorf("ReadBE[uint64] = 0x%016x, %v", u64, err)
	}

	if _, err := ReadBE[uint32](sr, 6, "past end"); err == nil {
		t.Error("expected error reading past end")
	}
}

func BenchmarkReadBE_Uint32(b *testing.B) {
	sr := newTestReader([]byte{0xFF, 0xFB, 0x90, 0x64})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ReadBE[uint32](sr, 0, "frame header")
	}
}
