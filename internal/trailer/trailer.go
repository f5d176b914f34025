// Package trailer finds the tag blocks appended after the audio payload.
//
// The canonical layout is audio, APE, Lyrics3, ID3v1, but files written by
// other tools may swap the APE and Lyrics3 blocks. Scanning starts at end of
// file and accepts either order.
package trailer

import (
	"bytes"
	"strconv"

	"github.com/simonhull/mp3meta/internal/ape"
	binutil "github.com/simonhull/mp3meta/internal/binary"
	"github.com/simonhull/mp3meta/internal/id3v1"
	"github.com/simonhull/mp3meta/internal/lyrics3"
)

// Span is a byte range of the file.
type Span struct {
	Offset int64
	Length int64
}

// End returns the offset just past the span.
func (s Span) End() int64 { return s.Offset + s.Length }

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.Length == 0 }

// Layout records where each trailing block sits. Absent blocks have empty
// spans.
type Layout struct {
	Size    int64
	ID3v1   Span
	APE     Span
	Lyrics3 Span
}

// Start returns the offset of the first trailing block, or Size if there is
// none.
func (l Layout) Start() int64 {
	start := l.Size
	for _, s := range []Span{l.ID3v1, l.APE, l.Lyrics3} {
		if !s.Empty() && s.Offset < start {
			start = s.Offset
		}
	}
	return start
}

// Scan walks back from end of file. floor is the lowest offset a block may
// start at, normally the start of the audio payload.
func Scan(sr *binutil.SafeReader, floor int64) Layout {
	l := Layout{Size: sr.Size()}
	boundary := l.Size

	if boundary-id3v1.Size >= floor {
		var marker [3]byte
		if err := sr.ReadAt(marker[:], boundary-id3v1.Size, "ID3v1 marker"); err == nil && id3v1.IsTag(marker[:]) {
			l.ID3v1 = Span{Offset: boundary - id3v1.Size, Length: id3v1.Size}
			boundary = l.ID3v1.Offset
		}
	}

	for {
		if l.APE.Empty() {
			if s, ok := apeSpan(sr, boundary, floor); ok {
				l.APE = s
				boundary = s.Offset
				continue
			}
		}
		if l.Lyrics3.Empty() {
			if s, ok := lyrics3Span(sr, boundary, floor); ok {
				l.Lyrics3 = s
				boundary = s.Offset
				continue
			}
		}
		return l
	}
}

// apeSpan looks for an APE footer ending at boundary.
func apeSpan(sr *binutil.SafeReader, boundary, floor int64) (Span, bool) {
	at := boundary - ape.HeaderSize
	if at < floor {
		return Span{}, false
	}
	footer, ok := ape.ReadFooter(sr, at)
	if !ok || footer.Flags&ape.FlagIsHeader != 0 {
		return Span{}, false
	}

	s := Span{Offset: boundary - footer.TagLength(), Length: footer.TagLength()}
	if s.Offset < floor {
		return Span{}, false
	}
	if footer.Flags&ape.FlagHasHeader != 0 {
		magic, err := sr.Bytes(s.Offset, len(ape.Preamble), "APE header")
		if err != nil || string(magic) != ape.Preamble {
			return Span{}, false
		}
	}
	return s, true
}

// lyrics3Span looks for a Lyrics3 v2 or v1 terminator ending at boundary.
func lyrics3Span(sr *binutil.SafeReader, boundary, floor int64) (Span, bool) {
	at := boundary - int64(len(lyrics3.EndV2))
	if at < floor {
		return Span{}, false
	}
	end, err := sr.Bytes(at, len(lyrics3.EndV2), "Lyrics3 terminator")
	if err != nil {
		return Span{}, false
	}

	switch string(end) {
	case lyrics3.EndV2:
		sizeAt := at - lyrics3.SizeDigits
		if sizeAt < floor {
			return Span{}, false
		}
		digits, err := sr.Bytes(sizeAt, lyrics3.SizeDigits, "Lyrics3 size")
		if err != nil {
			return Span{}, false
		}
		size, err := strconv.Atoi(string(digits))
		if err != nil {
			return Span{}, false
		}
		s := Span{Offset: sizeAt - int64(size)}
		s.Length = boundary - s.Offset
		if s.Offset < floor || !hasBegin(sr, s.Offset) {
			return Span{}, false
		}
		return s, true

	case lyrics3.EndV1:
		// v1 has no size; search back for LYRICSBEGIN within the maximum
		// block length.
		window := int64(len(lyrics3.Begin) + lyrics3.MaxV1)
		from := max(floor, at-window)
		buf, err := sr.Bytes(from, int(at-from), "Lyrics3 v1 block")
		if err != nil {
			return Span{}, false
		}
		i := bytes.LastIndex(buf, []byte(lyrics3.Begin))
		if i < 0 {
			return Span{}, false
		}
		off := from + int64(i)
		return Span{Offset: off, Length: boundary - off}, true
	}
	return Span{}, false
}

func hasBegin(sr *binutil.SafeReader, off int64) bool {
	magic, err := sr.Bytes(off, len(lyrics3.Begin), "Lyrics3 header")
	return err == nil && string(magic) == lyrics3.Begin
}
