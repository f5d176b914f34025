package binary

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestReadLE(t *testing.T) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint16(513))
	binary.Write(buf, binary.LittleEndian, uint32(67305985))
	binary.Write(buf, binary.LittleEndian, uint64(578437695752307201))

	data := buf.Bytes()
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.mp3")

	if v, err := ReadLE[uint16](sr, 0, "uint16"); err != nil || v != 513 {
		t.Errorf("ReadLE[uint16] = %d, %v; want 513", v, err)
	}
	if v, err := ReadLE[uint32](sr, 2, "uint32"); err != nil || v != 67305985 {
		t.Errorf("ReadLE[uint32] = %d, %v; want 67305985", v, err)
	}
	if v, err := ReadLE[uint64](sr, 6, "uint64"); err != nil || v != 578437695752307201 {
		t.Errorf("ReadLE[uint64] = %d, %v; want 578437695752307201", v, err)
	}
}

func TestEndianness_APEFooterNextToFrameHeader(t *testing.T) {
	// APE tag size (little-endian) followed by an MPEG frame header (big-endian).
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(1234))
	binary.Write(buf, binary.BigEndian, uint32(0xFFFB9064))

	data := buf.Bytes()
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.mp3")

	t.Run("APE size (LE)", func(t *testing.T) {
		size, err := ReadLE[uint32](sr, 0, "APE tag size")
		if err != nil {
			t.Fatalf("ReadLE failed: %v", err)
		}
		if size != 1234 {
			t.Errorf("APE size = %d, want 1234", size)
		}
	})

	t.Run("frame header (BE)", func(t *testing.T) {
		header, err := ReadBE[uint32](sr, 4, "frame header")
		if err != nil {
			t.Fatalf("ReadBE failed: %v", err)
		}
		if header != 0xFFFB9064 {
			t.Errorf("frame header = 0x%08x, want 0xFFFB9064", header)
		}
	})

	t.Run("explicit endianness", func(t *testing.T) {
		le, err := ReadEndian[uint32](sr, 0, "size", LittleEndian)
		if err != nil || le != 1234 {
			t.Errorf("ReadEndian(LittleEndian) = %d, %v", le, err)
		}
		be, err := ReadEndian[uint32](sr, 0, "size", BigEndian)
		if err != nil || be != 0xD2040000 {
			t.Errorf("ReadEndian(BigEndian) = 0x%08x, %v", be, err)
		}
	})
}

func BenchmarkReadLE_Uint32(b *testing.B) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ReadLE[uint32](sr, 0, "bench")
	}
}
