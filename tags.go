package mp3meta

import (
	"github.com/simonhull/mp3meta/internal/ape"
	"github.com/simonhull/mp3meta/internal/id3v1"
	"github.com/simonhull/mp3meta/internal/id3v2"
	"github.com/simonhull/mp3meta/internal/lyrics3"
	"github.com/simonhull/mp3meta/internal/types"
)

// Tag is the read-only view shared by every tag format.
type Tag = types.Tag

// Kind identifies a concrete tag format.
type Kind = types.Kind

// FieldKey names a metadata field independently of any tag format.
type FieldKey = types.FieldKey

// Tag formats.
const (
	KindUnknown = types.KindUnknown
	KindID3v22  = types.KindID3v22
	KindID3v23  = types.KindID3v23
	KindID3v24  = types.KindID3v24
	KindID3v1   = types.KindID3v1
	KindID3v11  = types.KindID3v11
	KindAPE     = types.KindAPE
	KindLyrics3 = types.KindLyrics3
)

// Normalized field keys.
const (
	FieldTitle       = types.FieldTitle
	FieldArtist      = types.FieldArtist
	FieldAlbum       = types.FieldAlbum
	FieldAlbumArtist = types.FieldAlbumArtist
	FieldComposer    = types.FieldComposer
	FieldYear        = types.FieldYear
	FieldComment     = types.FieldComment
	FieldGenre       = types.FieldGenre
	FieldTrack       = types.FieldTrack
	FieldDisc        = types.FieldDisc
	FieldEncoder     = types.FieldEncoder
)

// ID3v2Tag is the leading tag, in version 2.2, 2.3 or 2.4.
type ID3v2Tag = id3v2.Tag

// ID3v2Version is the major version of a leading tag.
type ID3v2Version = id3v2.Version

// Leading tag versions.
const (
	ID3v22 = id3v2.V22
	ID3v23 = id3v2.V23
	ID3v24 = id3v2.V24
)

// NewID3v2Tag returns an empty leading tag of version v.
func NewID3v2Tag(v ID3v2Version) *ID3v2Tag {
	return id3v2.NewTag(v)
}

// ID3v1Tag is the 128-byte legacy trailer.
type ID3v1Tag = id3v1.Tag

// APETag is an APE trailer block.
type APETag = ape.Tag

// NewAPETag returns an empty APEv2 tag.
func NewAPETag() *APETag {
	return ape.NewTag()
}

// Lyrics3Tag is a Lyrics3 trailer block.
type Lyrics3Tag = lyrics3.Tag

// NewLyrics3Tag returns an empty Lyrics3 v2 block.
func NewLyrics3Tag() *Lyrics3Tag {
	return lyrics3.NewTag()
}

// LoadFlags selects the tag formats read by Open.
type LoadFlags uint

const (
	LoadID3v1   LoadFlags = 2
	LoadID3v2   LoadFlags = 4
	LoadLyrics3 LoadFlags = 8
	LoadAPEv2   LoadFlags = 16

	LoadAll = LoadID3v1 | LoadID3v2 | LoadLyrics3 | LoadAPEv2
)
