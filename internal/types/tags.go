package types

import "iter"

// Kind identifies a concrete tag format.
type Kind int

const (
	// KindUnknown is the zero value.
	KindUnknown Kind = iota
	// KindID3v22 is an ID3v2.2 leading tag.
	KindID3v22
	// KindID3v23 is an ID3v2.3 leading tag.
	KindID3v23
	// KindID3v24 is an ID3v2.4 leading tag.
	KindID3v24
	// KindID3v1 is the plain 128-byte trailer.
	KindID3v1
	// KindID3v11 is the 128-byte trailer carrying a track number.
	KindID3v11
	// KindAPE is an APEv1 or APEv2 trailer block.
	KindAPE
	// KindLyrics3 is a Lyrics3 v1 or v2 trailer block.
	KindLyrics3
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindID3v22:  "ID3v2.2",
	KindID3v23:  "ID3v2.3",
	KindID3v24:  "ID3v2.4",
	KindID3v1:   "ID3v1",
	KindID3v11:  "ID3v1.1",
	KindAPE:     "APE",
	KindLyrics3: "Lyrics3",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// FieldKey names a metadata field independently of any tag format.
type FieldKey string

// Normalized field keys shared by every tag format.
const (
	FieldTitle       FieldKey = "title"
	FieldArtist      FieldKey = "artist"
	FieldAlbum       FieldKey = "album"
	FieldAlbumArtist FieldKey = "albumartist"
	FieldComposer    FieldKey = "composer"
	FieldYear        FieldKey = "year"
	FieldComment     FieldKey = "comment"
	FieldGenre       FieldKey = "genre"
	FieldTrack       FieldKey = "track"
	FieldDisc        FieldKey = "disc"
	FieldEncoder     FieldKey = "encoder"
)

// FieldKeys lists the normalized keys in enumeration order.
var FieldKeys = []FieldKey{
	FieldTitle,
	FieldArtist,
	FieldAlbum,
	FieldAlbumArtist,
	FieldComposer,
	FieldYear,
	FieldComment,
	FieldGenre,
	FieldTrack,
	FieldDisc,
	FieldEncoder,
}

// Tag is the read-only view every tag format exposes.
//
// Fields enumerates normalized keys; RawFields enumerates the format's own
// keys (frame IDs, APE item keys, Lyrics3 field IDs) in on-disk order.
// Keys without values are skipped. The yielded slices must not be modified.
type Tag interface {
	Kind() Kind
	Fields() iter.Seq2[FieldKey, []string]
	RawFields() iter.Seq2[string, []string]
}
