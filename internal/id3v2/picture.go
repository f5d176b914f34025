package id3v2

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	errPictureTooShort = errors.New("picture frame too short")
	errPictureNoMIME   = errors.New("picture MIME type not null-terminated")
	errPictureNoData   = errors.New("picture frame has no image data")
)

// PictureType is the APIC picture type byte.
type PictureType byte

const (
	PictureOther      PictureType = 0x00
	PictureIcon       PictureType = 0x01
	PictureFrontCover PictureType = 0x03
	PictureBackCover  PictureType = 0x04
	PictureArtist     PictureType = 0x08
)

func (t PictureType) String() string {
	switch t {
	case PictureOther:
		return "Other"
	case PictureIcon:
		return "Icon"
	case PictureFrontCover:
		return "Front Cover"
	case PictureBackCover:
		return "Back Cover"
	case PictureArtist:
		return "Artist"
	default:
		return fmt.Sprintf("Type %d", byte(t))
	}
}

// Picture is an attached picture (APIC, or PIC in v2.2).
type Picture struct {
	Type        PictureType
	MIMEType    string
	Description string
	Data        []byte
}

func pictureID(v Version) string {
	if v == V22 {
		return "PIC"
	}
	return "APIC"
}

// Pictures returns the attached pictures in frame order. Frames that cannot
// be parsed are skipped.
func (t *Tag) Pictures() []Picture {
	var out []Picture
	for _, f := range t.FramesByID(pictureID(t.Version)) {
		data := f.Data
		if t.Version == V22 {
			data = picToAPIC(data)
		}
		if p, err := parsePicture(data); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// AddPicture appends a picture frame.
func (t *Tag) AddPicture(p Picture) {
	enc := preferredEncoding(t.Version, p.Description)
	mime := p.MIMEType
	if mime == "" {
		mime = detectMIMEType(p.Data)
	}

	data := []byte{byte(enc)}
	data = append(data, mime...)
	data = append(data, 0, byte(p.Type))
	data = append(data, encodeString(p.Description, enc)...)
	data = append(data, enc.terminator()...)
	data = append(data, p.Data...)
	if t.Version == V22 {
		data = apicToPIC(data)
	}
	t.AddFrame(&Frame{ID: pictureID(t.Version), Data: data})
}

// parsePicture decodes [enc][mime\0][type][desc][data].
func parsePicture(data []byte) (Picture, error) {
	if len(data) < 4 {
		return Picture{}, errPictureTooShort
	}
	enc := Encoding(data[0])
	mime, rest, ok := bytes.Cut(data[1:], []byte{0})
	if !ok || len(rest) == 0 {
		return Picture{}, errPictureNoMIME
	}

	p := Picture{Type: PictureType(rest[0])}
	desc, image, ok := splitTerminated(rest[1:], enc)
	if ok {
		p.Description = decodeString(desc, enc)
	} else {
		// Some writers omit the description terminator.
		image = rest[1:]
	}
	if len(image) == 0 {
		return Picture{}, errPictureNoData
	}
	p.Data = image

	p.MIMEType = string(mime)
	if detected := detectMIMEType(image); detected != "" {
		p.MIMEType = detected
	}
	return p, nil
}

// detectMIMEType detects an image MIME type from magic bytes.
func detectMIMEType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "image/bmp"
	}
	return ""
}
