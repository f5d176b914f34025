package mp3meta

import (
	"github.com/simonhull/mp3meta/internal/id3v2"
)

// Picture is an image attached to the leading tag.
type Picture = id3v2.Picture

// PictureType is the purpose of an attached picture.
type PictureType = id3v2.PictureType

// Common picture types.
const (
	PictureOther      = id3v2.PictureOther
	PictureIcon       = id3v2.PictureIcon
	PictureFrontCover = id3v2.PictureFrontCover
	PictureBackCover  = id3v2.PictureBackCover
	PictureArtist     = id3v2.PictureArtist
)

// Pictures returns the images attached to the leading tag. Legacy and
// trailer tags cannot carry pictures.
//
//	for _, p := range file.Pictures() {
//		if p.Type == mp3meta.PictureFrontCover {
//			os.WriteFile("cover", p.Data, 0644)
//		}
//	}
func (f *File) Pictures() []Picture {
	if f.current == nil {
		return nil
	}
	return f.current.Pictures()
}
