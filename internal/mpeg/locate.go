package mpeg

import (
	binutil "github.com/simonhull/mp3meta/internal/binary"
	"github.com/simonhull/mp3meta/internal/types"
)

// MinRun is the number of consecutive, mutually consistent frames required
// before a sync pattern is trusted as the start of audio.
const MinRun = 3

// scanWindow is how much of the file is read at a time while hunting for a
// sync pattern.
const scanWindow = 64 << 10

// Frame is a located frame header and its file offset.
type Frame struct {
	Offset int64
	Header Header
}

// Locate returns the first frame at or after start that begins a run of
// MinRun consistent frames.
//
// Each frame of the run must start exactly where the previous one ends and
// share its version, layer and sample rate. A shorter run is accepted only if
// its last frame ends exactly at end of file. If no run exists a
// *types.NoAudioFoundError is returned.
func Locate(sr *binutil.SafeReader, start int64) (Frame, error) {
	size := sr.Size()
	if start < 0 {
		start = 0
	}

	buf := make([]byte, scanWindow)
	for base := start; base+HeaderSize <= size; {
		n := min(int64(len(buf)), size-base)
		window := buf[:n]
		if err := sr.ReadAt(window, base, "audio scan window"); err != nil {
			return Frame{}, err
		}

		for i := 0; i+1 < len(window); i++ {
			if window[i] != 0xFF || window[i+1]&0xE0 != 0xE0 {
				continue
			}
			off := base + int64(i)
			if h, ok := runAt(sr, off); ok {
				return Frame{Offset: off, Header: h}, nil
			}
		}

		if base+n >= size {
			break
		}
		// Overlap by one byte so a sync split across windows is still seen.
		base += n - 1
	}

	return Frame{}, &types.NoAudioFoundError{Path: sr.Path(), Start: start}
}

// runAt reports whether a run of consistent frames starts at off.
func runAt(sr *binutil.SafeReader, off int64) (Header, bool) {
	first, err := headerAt(sr, off)
	if err != nil {
		return Header{}, false
	}

	next := off + int64(first.FrameLength())
	for count := 1; count < MinRun; count++ {
		if next == sr.Size() {
			return first, true
		}
		h, err := headerAt(sr, next)
		if err != nil || !h.consistentWith(first) {
			return Header{}, false
		}
		next += int64(h.FrameLength())
	}
	return first, true
}

func headerAt(sr *binutil.SafeReader, off int64) (Header, error) {
	raw, err := binutil.ReadBE[uint32](sr, off, "MPEG frame header")
	if err != nil {
		return Header{}, err
	}
	return decodeHeader(raw)
}
