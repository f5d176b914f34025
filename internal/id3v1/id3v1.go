// Package id3v1 reads and writes the 128-byte ID3v1 and ID3v1.1 trailer.
package id3v1

import (
	"bytes"
	"iter"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/mp3meta/internal/types"
)

// Size is the length of the tag block.
const Size = 128

// NoGenre is the genre byte of a tag without a genre.
const NoGenre byte = 0xFF

// Version distinguishes ID3v1 from ID3v1.1.
type Version int

const (
	V1 Version = iota
	V11
)

// Comment field widths.
const (
	commentLen = 30
	// ID3v1.1 gives the last two comment bytes to a NUL and the track.
	commentLen11 = 28
)

// Tag is an ID3v1 or ID3v1.1 tag. Text fields hold decoded strings; they
// are truncated to their field width on encode.
type Tag struct {
	Version Version
	Title   string
	Artist  string
	Album   string
	Year    string
	Comment string
	Track   byte // ID3v1.1 only
	Genre   byte
}

// IsTag reports whether b starts with the TAG marker.
func IsTag(b []byte) bool {
	return len(b) >= 3 && b[0] == 'T' && b[1] == 'A' && b[2] == 'G'
}

func notFound(v Version, reason string) error {
	return &types.TagNotFoundError{Kind: v.Kind(), Reason: reason}
}

// ParseV11 decodes b as an ID3v1.1 tag, which requires a zero byte before a
// non-zero track byte at the end of the comment field.
func ParseV11(b []byte) (*Tag, error) {
	if len(b) != Size || !IsTag(b) {
		return nil, notFound(V11, "missing TAG marker")
	}
	if b[125] != 0 || b[126] == 0 {
		return nil, notFound(V11, "no track number")
	}

	t := parseCommon(b)
	t.Version = V11
	t.Comment = readString(b[97 : 97+commentLen11])
	t.Track = b[126]
	return t, nil
}

// ParseV1 decodes b as a plain ID3v1 tag.
func ParseV1(b []byte) (*Tag, error) {
	if len(b) != Size || !IsTag(b) {
		return nil, notFound(V1, "missing TAG marker")
	}

	t := parseCommon(b)
	t.Version = V1
	t.Comment = readString(b[97 : 97+commentLen])
	return t, nil
}

// Parse tries ParseV11 and then ParseV1.
func Parse(b []byte) (*Tag, error) {
	if t, err := ParseV11(b); err == nil {
		return t, nil
	}
	return ParseV1(b)
}

func parseCommon(b []byte) *Tag {
	return &Tag{
		Title:  readString(b[3:33]),
		Artist: readString(b[33:63]),
		Album:  readString(b[63:93]),
		Year:   readString(b[93:97]),
		Genre:  b[127],
	}
}

// readString decodes a fixed-width Latin-1 field up to its first NUL,
// trimming trailing spaces.
func readString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	b = bytes.TrimRight(b, " ")
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(out)
}

// Encode serializes t into a 128-byte block.
func Encode(t *Tag) [Size]byte {
	var b [Size]byte
	copy(b[:3], "TAG")
	writeString(b[3:33], t.Title)
	writeString(b[33:63], t.Artist)
	writeString(b[63:93], t.Album)
	writeString(b[93:97], t.Year)
	if t.Version == V11 {
		writeString(b[97:97+commentLen11], t.Comment)
		b[126] = t.Track
	} else {
		writeString(b[97:97+commentLen], t.Comment)
	}
	b[127] = t.Genre
	return b
}

// writeString encodes s as Latin-1 into dst, truncated to fit and
// NUL-padded.
func writeString(dst []byte, s string) {
	out, err := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		out = []byte(s)
	}
	copy(dst, out)
}

// Kind implements types.Tag.
func (t *Tag) Kind() types.Kind {
	return t.Version.Kind()
}

// Kind returns the tag kind for the version.
func (v Version) Kind() types.Kind {
	if v == V11 {
		return types.KindID3v11
	}
	return types.KindID3v1
}

func (v Version) String() string {
	return v.Kind().String()
}

// Value returns the field stored for key, or "" if the field is empty or
// the format has no slot for it.
func (t *Tag) Value(key types.FieldKey) string {
	switch key {
	case types.FieldTitle:
		return t.Title
	case types.FieldArtist:
		return t.Artist
	case types.FieldAlbum:
		return t.Album
	case types.FieldYear:
		return t.Year
	case types.FieldComment:
		return t.Comment
	case types.FieldGenre:
		name, _ := GenreName(int(t.Genre))
		return name
	case types.FieldTrack:
		if t.Version == V11 && t.Track > 0 {
			return strconv.Itoa(int(t.Track))
		}
	}
	return ""
}

// Fields implements types.Tag.
func (t *Tag) Fields() iter.Seq2[types.FieldKey, []string] {
	return func(yield func(types.FieldKey, []string) bool) {
		for _, key := range types.FieldKeys {
			if v := t.Value(key); v != "" {
				if !yield(key, []string{v}) {
					return
				}
			}
		}
	}
}

type rawField struct {
	name  string
	value string
}

// RawFields implements types.Tag, naming fields after their slot in the
// block. The genre is yielded as its numeric code.
func (t *Tag) RawFields() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		fields := []rawField{
			{"title", t.Title},
			{"artist", t.Artist},
			{"album", t.Album},
			{"year", t.Year},
			{"comment", t.Comment},
		}
		if t.Version == V11 && t.Track > 0 {
			fields = append(fields, rawField{"track", strconv.Itoa(int(t.Track))})
		}
		if t.Genre != NoGenre {
			fields = append(fields, rawField{"genre", strconv.Itoa(int(t.Genre))})
		}

		for _, f := range fields {
			if f.value == "" {
				continue
			}
			if !yield(f.name, []string{f.value}) {
				return
			}
		}
	}
}
