package id3v2

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binutil "github.com/simonhull/mp3meta/internal/binary"
	"github.com/simonhull/mp3meta/internal/types"
)

const (
	// HeaderSize is the length of the tag header, and of the v2.4 footer.
	HeaderSize = 10
	// MaxSize is the largest tag body a synchsafe size can describe.
	MaxSize = 1<<28 - 1
)

// Tag header flags.
const (
	flagUnsync      = 0x80
	flagExtended    = 0x40
	flagCompression = 0x40 // ID3v2.2 only
	flagFooter      = 0x10 // ID3v2.4 only
)

var (
	errEncrypted = errors.New("encrypted frame")
	errTruncated = errors.New("frame data shorter than its flags require")
)

// DeclaredSize returns the number of bytes the leading tag claims to occupy,
// header and footer included, or 0 if the file does not start with a
// plausible ID3v2 header.
func DeclaredSize(sr *binutil.SafeReader) int64 {
	var hdr [HeaderSize]byte
	if err := sr.ReadAt(hdr[:], 0, "ID3v2 header"); err != nil {
		return 0
	}
	if string(hdr[:3]) != "ID3" || hdr[3] < byte(V22) || hdr[3] > byte(V24) || hdr[4] == 0xFF {
		return 0
	}
	size, ok := synchsafe(hdr[6:10])
	if !ok {
		return 0
	}

	total := int64(HeaderSize) + int64(size)
	if hdr[3] == byte(V24) && hdr[5]&flagFooter != 0 {
		total += HeaderSize
	}
	return total
}

// Decoder decodes leading tags and collects non-fatal problems.
type Decoder struct {
	Path     string
	Warnings []types.Warning
}

func (d *Decoder) warn(offset int64, format string, args ...any) {
	d.Warnings = append(d.Warnings, types.Warning{
		Stage:   "id3v2",
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	})
}

func notFound(v Version, format string, args ...any) error {
	return &types.TagNotFoundError{Kind: v.Kind(), Reason: fmt.Sprintf(format, args...)}
}

// Decode parses buf, the whole leading region of the file, as a tag of
// version v.
//
// A *types.TagNotFoundError is returned when the header is not a v tag.
// Damage past the header never fails the decode: frame parsing stops at
// padding, an invalid frame ID, or a frame overrunning the region, and a
// warning is recorded.
func (d *Decoder) Decode(buf []byte, v Version) (*Tag, error) {
	if len(buf) < HeaderSize {
		return nil, notFound(v, "leading region is %d bytes", len(buf))
	}
	if string(buf[:3]) != "ID3" {
		return nil, notFound(v, "missing ID3 magic")
	}
	if buf[3] != byte(v) {
		return nil, notFound(v, "major version is %d", buf[3])
	}
	if buf[4] == 0xFF {
		return nil, notFound(v, "invalid revision byte")
	}
	size, ok := synchsafe(buf[6:10])
	if !ok {
		return nil, notFound(v, "size is not synchsafe")
	}
	flags := buf[5]
	if v == V22 && flags&flagCompression != 0 {
		return nil, notFound(v, "compressed ID3v2.2 tags are not supported")
	}

	end := HeaderSize + int(size)
	if end > len(buf) {
		d.warn(0, "tag declares %d bytes but only %d precede the audio", end, len(buf))
		end = len(buf)
	}
	body := buf[HeaderSize:end]

	unsync := flags&flagUnsync != 0
	if unsync && v != V24 {
		body = removeUnsync(body)
	}
	if flags&flagExtended != 0 && v != V22 {
		skip, err := extendedHeaderSize(body, v)
		if err != nil {
			d.warn(HeaderSize, "%v", err)
			skip = len(body)
		}
		body = body[skip:]
	}

	t := &Tag{Version: v, Revision: buf[4]}
	d.readFrames(t, body, unsync)
	return t, nil
}

func extendedHeaderSize(body []byte, v Version) (int, error) {
	if len(body) < 4 {
		return 0, errors.New("truncated extended header")
	}

	var n int
	if v == V24 {
		size, ok := synchsafe(body[:4])
		if !ok {
			return 0, errors.New("extended header size is not synchsafe")
		}
		n = int(size)
	} else {
		n = int(binary.BigEndian.Uint32(body[:4])) + 4
	}
	if n < 4 || n > len(body) {
		return 0, fmt.Errorf("extended header of %d bytes overruns the tag", n)
	}
	return n, nil
}

func (d *Decoder) readFrames(t *Tag, body []byte, tagUnsync bool) {
	v := t.Version
	hdrLen := 10
	if v == V22 {
		hdrLen = 6
	}

	sr := binutil.NewSafeReader(bytes.NewReader(body), int64(len(body)), d.Path)
	for pos := 0; pos+hdrLen <= len(body); {
		if body[pos] == 0 {
			break // padding
		}
		at := int64(HeaderSize + pos)

		id := string(body[pos : pos+v.idLen()])
		if !validFrameID(id) {
			d.warn(at, "invalid frame ID %q, ignoring the rest of the tag", id)
			return
		}

		var size int
		var status, format byte
		switch v {
		case V22:
			size = int(body[pos+3])<<16 | int(body[pos+4])<<8 | int(body[pos+5])
		case V23:
			n, err := binutil.ReadBE[uint32](sr, int64(pos+4), "ID3v2.3 frame size")
			if err != nil {
				d.warn(at, "frame %s: %v", id, err)
				return
			}
			size = int(n)
			status, format = body[pos+8], body[pos+9]
		default:
			s, ok := synchsafe(body[pos+4 : pos+8])
			if !ok {
				d.warn(at, "frame %s size is not synchsafe, ignoring the rest of the tag", id)
				return
			}
			size = int(s)
			status, format = body[pos+8], body[pos+9]
		}
		pos += hdrLen

		if size > len(body)-pos {
			d.warn(at, "frame %s declares %d bytes but only %d remain", id, size, len(body)-pos)
			return
		}
		raw := body[pos : pos+size]
		pos += size

		if size == 0 {
			d.warn(at, "empty frame %s skipped", id)
			continue
		}

		f, err := decodeFrame(v, id, status, format, raw, tagUnsync)
		if err != nil {
			d.warn(at, "frame %s skipped: %v", id, err)
			continue
		}
		t.Frames = append(t.Frames, f)
	}
}

// decodeFrame undoes the per-frame format flags and copies the data.
func decodeFrame(v Version, id string, status, format byte, data []byte, tagUnsync bool) (*Frame, error) {
	f := &Frame{ID: id}

	switch v {
	case V23:
		if status&0x80 != 0 {
			f.Flags |= FlagTagAlterDiscard
		}
		if status&0x40 != 0 {
			f.Flags |= FlagFileAlterDiscard
		}
		if status&0x20 != 0 {
			f.Flags |= FlagReadOnly
		}

		compressed := format&0x80 != 0
		if format&0x40 != 0 {
			return nil, errEncrypted
		}
		extra := 0
		if compressed {
			extra += 4 // decompressed size
		}
		if format&0x20 != 0 {
			extra++ // group identifier
		}
		if len(data) < extra {
			return nil, errTruncated
		}
		data = data[extra:]
		if compressed {
			out, err := inflate(data)
			if err != nil {
				return nil, err
			}
			data = out
		}

	case V24:
		if status&0x40 != 0 {
			f.Flags |= FlagTagAlterDiscard
		}
		if status&0x20 != 0 {
			f.Flags |= FlagFileAlterDiscard
		}
		if status&0x10 != 0 {
			f.Flags |= FlagReadOnly
		}

		if format&0x04 != 0 {
			return nil, errEncrypted
		}
		extra := 0
		if format&0x40 != 0 {
			extra++ // group identifier
		}
		if format&0x01 != 0 {
			extra += 4 // data length indicator
		}
		if len(data) < extra {
			return nil, errTruncated
		}
		data = data[extra:]
		if tagUnsync || format&0x02 != 0 {
			data = removeUnsync(data)
		}
		if format&0x08 != 0 {
			out, err := inflate(data)
			if err != nil {
				return nil, err
			}
			data = out
		}
	}

	f.Data = bytes.Clone(data)
	return f, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, MaxSize))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

// removeUnsync reverses unsynchronisation: every 0xFF 0x00 becomes 0xFF.
func removeUnsync(b []byte) []byte {
	if bytes.IndexByte(b, 0xFF) < 0 {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}

func validFrameID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return len(id) > 0
}

// synchsafe decodes a 28-bit integer stored 7 bits per byte. ok is false if
// any byte has its high bit set.
func synchsafe(b []byte) (uint32, bool) {
	if len(b) < 4 || b[0]|b[1]|b[2]|b[3] >= 0x80 {
		return 0, false
	}
	return uint32(b[0])<<21 | uint32(b[1])<<14 | uint32(b[2])<<7 | uint32(b[3]), true
}

func putSynchsafe(b []byte, n uint32) {
	b[0] = byte(n>>21) & 0x7F
	b[1] = byte(n>>14) & 0x7F
	b[2] = byte(n>>7) & 0x7F
	b[3] = byte(n) & 0x7F
}
