// Package lyrics3 reads and writes Lyrics3 v1 and v2 blocks.
//
// Both versions start with LYRICSBEGIN. A v1 block holds plain lyrics and
// ends with LYRICSEND; a v2 block holds size-prefixed fields followed by a
// six-digit block size and LYRICS200.
package lyrics3

import (
	"bytes"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/mp3meta/internal/types"
)

const (
	Begin = "LYRICSBEGIN"
	EndV1 = "LYRICSEND"
	EndV2 = "LYRICS200"

	// MaxV1 is the largest lyrics payload a v1 block may carry.
	MaxV1 = 5100
	// SizeDigits is the width of the v2 block size that precedes EndV2.
	SizeDigits = 6

	fieldSizeDigits = 5
	maxField        = 99999
	maxBlock        = 999999
)

// Field IDs defined for v2 blocks.
const (
	FieldIndications = "IND"
	FieldLyrics      = "LYR"
	FieldInfo        = "INF"
	FieldAuthor      = "AUT"
	FieldAlbum       = "EAL"
	FieldArtist      = "EAR"
	FieldTitle       = "ETT"
	FieldImage       = "IMG"
)

// Version is the block version.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

// Field is one v2 field. A v1 block is represented as a single LYR field.
type Field struct {
	ID    string
	Value string
}

// Tag is a decoded Lyrics3 block. Field order is preserved.
type Tag struct {
	Version Version
	Entries []Field
}

func notFound(format string, args ...any) error {
	return &types.TagNotFoundError{Kind: types.KindLyrics3, Reason: fmt.Sprintf(format, args...)}
}

// Decode parses a whole block, from LYRICSBEGIN through its terminator.
func Decode(block []byte) (*Tag, error) {
	if !bytes.HasPrefix(block, []byte(Begin)) {
		return nil, notFound("missing %s", Begin)
	}

	switch {
	case bytes.HasSuffix(block, []byte(EndV2)):
		return decodeV2(block)
	case bytes.HasSuffix(block, []byte(EndV1)):
		body := block[len(Begin) : len(block)-len(EndV1)]
		if len(body) > MaxV1 {
			return nil, notFound("v1 lyrics of %d bytes exceed %d", len(body), MaxV1)
		}
		return &Tag{Version: V1, Entries: []Field{{ID: FieldLyrics, Value: latin1(body)}}}, nil
	default:
		return nil, notFound("missing %s or %s", EndV1, EndV2)
	}
}

func decodeV2(block []byte) (*Tag, error) {
	trailer := len(block) - len(EndV2) - SizeDigits
	if trailer < len(Begin) {
		return nil, notFound("v2 block of %d bytes is too short", len(block))
	}
	size, err := strconv.Atoi(string(block[trailer : trailer+SizeDigits]))
	if err != nil || size != trailer {
		return nil, notFound("v2 size field %q does not match block", block[trailer:trailer+SizeDigits])
	}

	t := &Tag{Version: V2}
	body := block[len(Begin):trailer]
	for len(body) > 0 {
		if len(body) < 3+fieldSizeDigits {
			return nil, notFound("truncated field header")
		}
		id := string(body[:3])
		n, err := strconv.Atoi(string(body[3 : 3+fieldSizeDigits]))
		if err != nil || n < 0 || n > len(body)-3-fieldSizeDigits {
			return nil, notFound("field %s has an invalid size", id)
		}
		data := body[3+fieldSizeDigits : 3+fieldSizeDigits+n]
		t.Entries = append(t.Entries, Field{ID: id, Value: latin1(data)})
		body = body[3+fieldSizeDigits+n:]
	}
	return t, nil
}

// Encode serializes t in its own version.
func Encode(t *Tag) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString(Begin)

	if t.Version == V1 {
		lyrics := toLatin1(t.Get(FieldLyrics))
		if len(lyrics) > MaxV1 {
			return nil, fmt.Errorf("lyrics3 v1: %d bytes of lyrics exceed %d", len(lyrics), MaxV1)
		}
		if bytes.Contains(lyrics, []byte(EndV1)) {
			return nil, fmt.Errorf("lyrics3 v1: lyrics contain %s", EndV1)
		}
		out.Write(lyrics)
		out.WriteString(EndV1)
		return out.Bytes(), nil
	}

	for _, f := range t.fieldsForWrite() {
		if len(f.ID) != 3 {
			return nil, fmt.Errorf("lyrics3 v2: field ID %q must be 3 characters", f.ID)
		}
		data := toLatin1(f.Value)
		if len(data) > maxField {
			return nil, fmt.Errorf("lyrics3 v2: field %s of %d bytes exceeds %d", f.ID, len(data), maxField)
		}
		fmt.Fprintf(&out, "%s%0*d", f.ID, fieldSizeDigits, len(data))
		out.Write(data)
	}

	size := out.Len()
	if size > maxBlock {
		return nil, fmt.Errorf("lyrics3 v2: block of %d bytes exceeds %d", size, maxBlock)
	}
	fmt.Fprintf(&out, "%0*d%s", SizeDigits, size, EndV2)
	return out.Bytes(), nil
}

// fieldsForWrite puts an IND field first when the tag has none, as readers
// expect it.
func (t *Tag) fieldsForWrite() []Field {
	if t.Get(FieldIndications) != "" || len(t.Entries) == 0 {
		return t.Entries
	}
	ind := "0"
	if t.Get(FieldLyrics) != "" {
		ind = "1"
	}
	// Second flag: lyrics carry timestamps.
	if strings.Contains(t.Get(FieldLyrics), "[") {
		ind += "1"
	} else {
		ind += "0"
	}
	return append([]Field{{ID: FieldIndications, Value: ind}}, t.Entries...)
}

func latin1(b []byte) string {
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(out)
}

func toLatin1(s string) []byte {
	out, err := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

// NewTag returns an empty v2 tag.
func NewTag() *Tag {
	return &Tag{Version: V2}
}

// Get returns the first value of the field with the given ID.
func (t *Tag) Get(id string) string {
	for _, f := range t.Entries {
		if f.ID == id {
			return f.Value
		}
	}
	return ""
}

// Set replaces the value of the field with the given ID, or appends it. An
// empty value deletes the field.
func (t *Tag) Set(id, value string) {
	if value == "" {
		t.Delete(id)
		return
	}
	for i, f := range t.Entries {
		if f.ID == id {
			t.Entries[i].Value = value
			return
		}
	}
	t.Entries = append(t.Entries, Field{ID: id, Value: value})
}

// Delete removes every field with the given ID.
func (t *Tag) Delete(id string) {
	out := t.Entries[:0]
	for _, f := range t.Entries {
		if f.ID != id {
			out = append(out, f)
		}
	}
	t.Entries = out
}

// Kind implements types.Tag.
func (t *Tag) Kind() types.Kind {
	return types.KindLyrics3
}

var keyFields = []struct {
	key types.FieldKey
	id  string
}{
	{types.FieldTitle, FieldTitle},
	{types.FieldArtist, FieldArtist},
	{types.FieldAlbum, FieldAlbum},
	{types.FieldComment, FieldInfo},
}

// Fields implements types.Tag. Only the extended title, artist and album
// fields and the information field have normalized keys.
func (t *Tag) Fields() iter.Seq2[types.FieldKey, []string] {
	return func(yield func(types.FieldKey, []string) bool) {
		for _, kf := range keyFields {
			if v := t.Get(kf.id); v != "" {
				if !yield(kf.key, []string{v}) {
					return
				}
			}
		}
	}
}

// RawFields implements types.Tag.
func (t *Tag) RawFields() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, f := range t.Entries {
			if f.Value == "" {
				continue
			}
			if !yield(f.ID, []string{f.Value}) {
				return
			}
		}
	}
}
