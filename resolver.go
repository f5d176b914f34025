package mp3meta

import (
	"fmt"
	"iter"

	"github.com/simonhull/mp3meta/internal/id3v1"
	"github.com/simonhull/mp3meta/internal/id3v2"
)

// Tag returns the authoritative tag: the leading ID3v2 tag when present,
// else the ID3v1 trailer, else nil.
func (f *File) Tag() Tag {
	switch {
	case f.current != nil:
		return f.current
	case f.legacy != nil:
		return f.legacy
	default:
		return nil
	}
}

// CurrentTag returns the leading tag as read or set, in its own version.
// Changes made through it show up in Fields and are written by Save.
func (f *File) CurrentTag() *ID3v2Tag {
	return f.current
}

// NormalizedTag returns a copy of the leading tag converted to ID3v2.4,
// or nil. It is rebuilt on every call, so it reflects edits made through
// CurrentTag; changes to the copy are not saved.
func (f *File) NormalizedTag() *ID3v2Tag {
	if f.current == nil {
		return nil
	}
	return id3v2.Convert(f.current, id3v2.V24)
}

// LegacyTag returns the ID3v1 trailer, or nil.
func (f *File) LegacyTag() *ID3v1Tag {
	return f.legacy
}

// APETag returns the APE trailer block, or nil.
func (f *File) APETag() *APETag {
	return f.ape
}

// Lyrics3Tag returns the Lyrics3 trailer block, or nil.
func (f *File) Lyrics3Tag() *Lyrics3Tag {
	return f.lyrics
}

// SetCurrentTag replaces the leading tag.
//
// An *ID3v2Tag is stored as given. An *ID3v1Tag is converted to a new
// ID3v2.4 tag; the legacy trailer itself is left alone. nil removes the
// leading tag. Any other tag type is an error.
func (f *File) SetCurrentTag(t Tag) error {
	switch tag := t.(type) {
	case nil:
		f.clearCurrent()
	case *id3v2.Tag:
		if tag == nil {
			f.clearCurrent()
			return nil
		}
		f.current = tag
	case *id3v1.Tag:
		if tag == nil {
			f.clearCurrent()
			return nil
		}
		f.current = id3v2.FromLegacy(tag)
	default:
		return fmt.Errorf("cannot use %s tag as the leading tag", t.Kind())
	}
	return nil
}

func (f *File) clearCurrent() {
	f.current = nil
}

// SetLegacyTag replaces the ID3v1 trailer. nil removes it.
func (f *File) SetLegacyTag(t *ID3v1Tag) {
	f.legacy = t
}

// SetAPETag replaces the APE trailer block. nil removes it.
func (f *File) SetAPETag(t *APETag) {
	f.ape = t
}

// SetLyrics3Tag replaces the Lyrics3 trailer block. nil removes it.
func (f *File) SetLyrics3Tag(t *Lyrics3Tag) {
	f.lyrics = t
}

// Fields enumerates the normalized fields of the authoritative tag. A
// leading tag is read through its ID3v2.4 projection.
func (f *File) Fields() iter.Seq2[FieldKey, []string] {
	switch {
	case f.current != nil:
		return f.NormalizedTag().Fields()
	case f.legacy != nil:
		return f.legacy.Fields()
	default:
		return func(func(FieldKey, []string) bool) {}
	}
}

// RawFields enumerates the authoritative tag's own keys and values in
// on-disk order.
func (f *File) RawFields() iter.Seq2[string, []string] {
	if t := f.Tag(); t != nil {
		return t.RawFields()
	}
	return func(func(string, []string) bool) {}
}

// Value returns the first value of key in the authoritative tag, or "".
func (f *File) Value(key FieldKey) string {
	for k, values := range f.Fields() {
		if k == key && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
