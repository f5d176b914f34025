package id3v2

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"testing"

	binutil "github.com/simonhull/mp3meta/internal/binary"
	"github.com/simonhull/mp3meta/internal/types"
)

// rawFrame builds a frame header and body as it appears on disk.
func rawFrame(v Version, id string, data []byte, status, format byte) []byte {
	var out []byte
	out = append(out, id...)
	switch v {
	case V22:
		n := len(data)
		out = append(out, byte(n>>16), byte(n>>8), byte(n))
	case V23:
		out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
		out = append(out, status, format)
	default:
		var sz [4]byte
		putSynchsafe(sz[:], uint32(len(data)))
		out = append(out, sz[:]...)
		out = append(out, status, format)
	}
	return append(out, data...)
}

// rawTag prefixes body with a tag header.
func rawTag(v Version, flags byte, body []byte) []byte {
	out := []byte{'I', 'D', '3', byte(v), 0, flags, 0, 0, 0, 0}
	putSynchsafe(out[6:], uint32(len(body)))
	return append(out, body...)
}

// addUnsync inserts a zero after every 0xFF.
func addUnsync(b []byte) []byte {
	var out []byte
	for _, c := range b {
		out = append(out, c)
		if c == 0xFF {
			out = append(out, 0)
		}
	}
	return out
}

func latin1Text(s string) []byte {
	return append([]byte{0}, s...)
}

func TestDeclaredSize(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int64
	}{
		{"v2.3 tag", append(rawTag(V23, 0, make([]byte, 100)), 0xFF, 0xFB), 110},
		{"v2.4 footer", rawTag(V24, flagFooter, make([]byte, 20)), 40},
		{"v2.3 ignores footer bit", rawTag(V23, flagFooter, make([]byte, 20)), 30},
		{"no tag", []byte("not an id3 header at all"), 0},
		{"too short", []byte("ID3"), 0},
		{"bad size", []byte{'I', 'D', '3', 3, 0, 0, 0x80, 0, 0, 0}, 0},
		{"unknown major", []byte{'I', 'D', '3', 5, 0, 0, 0, 0, 0, 1}, 0},
		{"large synchsafe", []byte{'I', 'D', '3', 4, 0, 0, 0x01, 0x7F, 0x7F, 0x7F}, 10 + (1<<21 | 0x7F<<14 | 0x7F<<7 | 0x7F)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := binutil.NewSafeReader(bytes.NewReader(tt.data), int64(len(tt.data)), "test.mp3")
			if got := DeclaredSize(sr); got != tt.want {
				t.Errorf("DeclaredSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecode_Versions(t *testing.T) {
	tests := []struct {
		name string
		v    Version
		buf  []byte
	}{
		{
			name: "v2.2",
			v:    V22,
			buf: rawTag(V22, 0, concat(
				rawFrame(V22, "TT2", latin1Text("Title"), 0, 0),
				rawFrame(V22, "TP1", latin1Text("Artist"), 0, 0),
			)),
		},
		{
			name: "v2.3",
			v:    V23,
			buf: rawTag(V23, 0, concat(
				rawFrame(V23, "TIT2", latin1Text("Title"), 0, 0),
				rawFrame(V23, "TPE1", latin1Text("Artist"), 0, 0),
			)),
		},
		{
			name: "v2.4",
			v:    V24,
			buf: rawTag(V24, 0, concat(
				rawFrame(V24, "TIT2", append([]byte{3}, "Title"...), 0, 0),
				rawFrame(V24, "TPE1", append([]byte{3}, "Artist"...), 0, 0),
			)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Decoder{Path: "test.mp3"}
			tag, err := d.Decode(tt.buf, tt.v)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if tag.Version != tt.v {
				t.Errorf("Version = %v, want %v", tag.Version, tt.v)
			}
			if got := tag.First(types.FieldTitle); got != "Title" {
				t.Errorf("title = %q, want Title", got)
			}
			if got := tag.First(types.FieldArtist); got != "Artist" {
				t.Errorf("artist = %q, want Artist", got)
			}
			if len(d.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", d.Warnings)
			}
		})
	}
}

func TestDecode_NotFound(t *testing.T) {
	v23 := rawTag(V23, 0, rawFrame(V23, "TIT2", latin1Text("x"), 0, 0))

	tests := []struct {
		name string
		buf  []byte
		v    Version
	}{
		{"wrong version", v23, V24},
		{"no magic", append([]byte("XYZ"), v23[3:]...), V23},
		{"too short", []byte("ID3\x03"), V23},
		{"bad revision", append([]byte{'I', 'D', '3', 3, 0xFF}, v23[5:]...), V23},
		{"non synchsafe size", []byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0x80, 0}, V23},
		{"compressed v2.2", rawTag(V22, flagCompression, nil), V22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Decoder{}).Decode(tt.buf, tt.v)
			var notFound *types.TagNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected *TagNotFoundError, got %T: %v", err, err)
			}
			if notFound.Kind != tt.v.Kind() {
				t.Errorf("Kind = %v, want %v", notFound.Kind, tt.v.Kind())
			}
		})
	}
}

func TestDecode_TagUnsync23(t *testing.T) {
	payload := []byte{0, 0xFF, 0xFE, 'h', 'i', 0, 0} // latin1 bytes including 0xFF
	body := rawFrame(V23, "TIT2", payload, 0, 0)

	tag, err := (&Decoder{}).Decode(rawTag(V23, flagUnsync, addUnsync(body)), V23)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(tag.Frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(tag.Frames))
	}
	if !bytes.Equal(tag.Frames[0].Data, payload) {
		t.Errorf("Data = %x, want %x", tag.Frames[0].Data, payload)
	}
}

func TestDecode_CompressedFrame23(t *testing.T) {
	payload := latin1Text("compressed title")

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	zw.Write(payload)
	zw.Close()

	data := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	data = append(data, z.Bytes()...)
	buf := rawTag(V23, 0, rawFrame(V23, "TIT2", data, 0x20, 0x80))

	tag, err := (&Decoder{}).Decode(buf, V23)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got := tag.First(types.FieldTitle); got != "compressed title" {
		t.Errorf("title = %q", got)
	}
	if tag.Frames[0].Flags != FlagReadOnly {
		t.Errorf("Flags = %v, want FlagReadOnly", tag.Frames[0].Flags)
	}
}

func TestDecode_FrameUnsyncAndDataLength24(t *testing.T) {
	payload := []byte{'a', 0xFF, 0xE0, 'b'}

	var dli [4]byte
	putSynchsafe(dli[:], uint32(len(payload)))
	data := append(dli[:], addUnsync(payload)...)
	buf := rawTag(V24, 0, rawFrame(V24, "PRIV", data, 0x40, 0x02|0x01))

	tag, err := (&Decoder{}).Decode(buf, V24)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(tag.Frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(tag.Frames))
	}
	f := tag.Frames[0]
	if !bytes.Equal(f.Data, payload) {
		t.Errorf("Data = %x, want %x", f.Data, payload)
	}
	if f.Flags != FlagTagAlterDiscard {
		t.Errorf("Flags = %v, want FlagTagAlterDiscard", f.Flags)
	}
}

func TestDecode_ExtendedHeader(t *testing.T) {
	frames := rawFrame(V23, "TIT2", latin1Text("after ext"), 0, 0)
	ext23 := []byte{0, 0, 0, 6, 0, 0, 0, 0, 0, 0}
	ext24 := []byte{0, 0, 0, 6, 1, 0}

	tests := []struct {
		name string
		v    Version
		body []byte
	}{
		{"v2.3", V23, concat(ext23, frames)},
		{"v2.4", V24, concat(ext24, rawFrame(V24, "TIT2", latin1Text("after ext"), 0, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := (&Decoder{}).Decode(rawTag(tt.v, flagExtended, tt.body), tt.v)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got := tag.First(types.FieldTitle); got != "after ext" {
				t.Errorf("title = %q", got)
			}
		})
	}
}

func TestDecode_Damage(t *testing.T) {
	good := rawFrame(V23, "TIT2", latin1Text("kept"), 0, 0)

	tests := []struct {
		name     string
		buf      []byte
		frames   int
		warnings int
	}{
		{
			name:   "padding stops parsing",
			buf:    rawTag(V23, 0, concat(good, make([]byte, 64))),
			frames: 1,
		},
		{
			name:     "invalid frame id",
			buf:      rawTag(V23, 0, concat(good, rawFrame(V23, "ti!2", latin1Text("x"), 0, 0))),
			frames:   1,
			warnings: 1,
		},
		{
			name: "frame overruns tag",
			buf: rawTag(V23, 0, concat(good,
				[]byte{'T', 'A', 'L', 'B', 0, 0, 1, 0, 0, 0, 0, 'x'})),
			frames:   1,
			warnings: 1,
		},
		{
			name: "declared size beyond region",
			buf: func() []byte {
				b := rawTag(V23, 0, concat(good, make([]byte, 100)))
				return b[:10+len(good)]
			}(),
			frames:   1,
			warnings: 1,
		},
		{
			name:     "encrypted frame skipped",
			buf:      rawTag(V23, 0, concat(rawFrame(V23, "TALB", latin1Text("x"), 0, 0x40), good)),
			frames:   1,
			warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Decoder{Path: "test.mp3"}
			tag, err := d.Decode(tt.buf, V23)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if len(tag.Frames) != tt.frames {
				t.Errorf("got %d frames, want %d", len(tag.Frames), tt.frames)
			}
			if len(d.Warnings) != tt.warnings {
				t.Errorf("got %d warnings (%v), want %d", len(d.Warnings), d.Warnings, tt.warnings)
			}
			for _, w := range d.Warnings {
				if w.Stage != "id3v2" {
					t.Errorf("warning stage = %q, want id3v2", w.Stage)
				}
			}
		})
	}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
