package id3v2

import (
	"bytes"
	"fmt"

	binutil "github.com/simonhull/mp3meta/internal/binary"
)

// Encode serializes t: a header followed by the frames in order, with no
// padding, no unsynchronisation and no extended header.
func Encode(t *Tag) ([]byte, error) {
	if t.Version < V22 || t.Version > V24 {
		return nil, fmt.Errorf("cannot encode ID3v2 major version %d", byte(t.Version))
	}

	var body bytes.Buffer
	w := binutil.NewSafeWriter(&body)
	for _, f := range t.Frames {
		if err := writeFrame(w, t.Version, f); err != nil {
			return nil, err
		}
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	if body.Len() > MaxSize {
		return nil, fmt.Errorf("%s tag of %d bytes exceeds the %d byte limit", t.Version, body.Len(), MaxSize)
	}

	out := make([]byte, HeaderSize, HeaderSize+body.Len())
	copy(out, "ID3")
	out[3] = byte(t.Version)
	out[4] = 0
	out[5] = 0
	putSynchsafe(out[6:10], uint32(body.Len()))
	return append(out, body.Bytes()...), nil
}

func writeFrame(w *binutil.SafeWriter, v Version, f *Frame) error {
	if len(f.ID) != v.idLen() || !validFrameID(f.ID) {
		return fmt.Errorf("frame ID %q is not valid in %s", f.ID, v)
	}
	size := len(f.Data)

	w.WriteString(f.ID)
	switch v {
	case V22:
		if size >= 1<<24 {
			return fmt.Errorf("frame %s of %d bytes is too large for %s", f.ID, size, v)
		}
		w.WriteBytes([]byte{byte(size >> 16), byte(size >> 8), byte(size)})

	case V23:
		binutil.Write(w, uint32(size))
		var status byte
		if f.Flags&FlagTagAlterDiscard != 0 {
			status |= 0x80
		}
		if f.Flags&FlagFileAlterDiscard != 0 {
			status |= 0x40
		}
		if f.Flags&FlagReadOnly != 0 {
			status |= 0x20
		}
		w.WriteBytes([]byte{status, 0})

	case V24:
		if size > MaxSize {
			return fmt.Errorf("frame %s of %d bytes is too large for %s", f.ID, size, v)
		}
		var sz [4]byte
		putSynchsafe(sz[:], uint32(size))
		w.WriteBytes(sz[:])
		var status byte
		if f.Flags&FlagTagAlterDiscard != 0 {
			status |= 0x40
		}
		if f.Flags&FlagFileAlterDiscard != 0 {
			status |= 0x20
		}
		if f.Flags&FlagReadOnly != 0 {
			status |= 0x10
		}
		w.WriteBytes([]byte{status, 0})
	}

	return w.WriteBytes(f.Data)
}
