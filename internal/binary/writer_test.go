package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestSafeWriter_BigEndian(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	Write[uint8](sw, 0x01)
	Write[uint16](sw, 0x0203)
	Write[uint32](sw, 0x04050607)
	Write[uint64](sw, 0x08090A0B0C0D0E0F)

	if err := sw.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F,
	}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
	if sw.Offset() != 15 {
		t.Errorf("Offset() = %d, want 15", sw.Offset())
	}
}

func TestSafeWriter_WriteLE(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	if err := WriteLE[uint32](sw, 2000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []byte{0xD0, 0x07, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestSafeWriter_WriteString(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	sw.WriteString("APETAGEX")
	sw.WriteBytes([]byte{0x00})

	if buf.String() != "APETAGEX\x00" {
		t.Errorf("got %q", buf.String())
	}
	if sw.Offset() != 9 {
		t.Errorf("Offset() = %d, want 9", sw.Offset())
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errors.New("device full")
	}
	w.n--
	return len(p), nil
}

func TestSafeWriter_StickyError(t *testing.T) {
	sw := NewSafeWriter(&failingWriter{n: 1})

	if err := sw.WriteString("ID3"); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := Write[uint32](sw, 1); err == nil {
		t.Fatal("expected second write to fail")
	}
	if err := sw.WriteString("more"); err == nil {
		t.Fatal("expected later writes to report the first error")
	}
	if sw.Err() == nil || sw.Err().Error() != "device full" {
		t.Errorf("Err() = %v, want device full", sw.Err())
	}
	if sw.Offset() != 3 {
		t.Errorf("Offset() = %d, want 3", sw.Offset())
	}
}
