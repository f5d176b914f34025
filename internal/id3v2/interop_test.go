package id3v2

import (
	"bytes"
	"testing"

	bogem "github.com/bogem/id3v2/v2"

	"github.com/simonhull/mp3meta/internal/types"
)

// Tags written by another implementation decode to the same fields.
func TestDecode_BogemFixtures(t *testing.T) {
	tests := []struct {
		name     string
		version  byte
		encoding bogem.Encoding
	}{
		{"v2.3 latin1", 3, bogem.EncodingISO},
		{"v2.3 utf16", 3, bogem.EncodingUTF16},
		{"v2.4 utf8", 4, bogem.EncodingUTF8},
		{"v2.4 utf16be", 4, bogem.EncodingUTF16BE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := bogem.NewEmptyTag()
			src.SetVersion(tt.version)
			src.SetDefaultEncoding(tt.encoding)
			src.SetTitle("Fixture Title")
			src.SetArtist("Fixture Artist")
			src.SetAlbum("Fixture Album")
			src.SetGenre("Rock")
			src.AddCommentFrame(bogem.CommentFrame{
				Encoding:    tt.encoding,
				Language:    "eng",
				Description: "",
				Text:        "fixture comment",
			})

			var buf bytes.Buffer
			if _, err := src.WriteTo(&buf); err != nil {
				t.Fatalf("WriteTo() error: %v", err)
			}

			d := &Decoder{}
			got, err := d.Decode(buf.Bytes(), Version(tt.version))
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			want := map[types.FieldKey]string{
				types.FieldTitle:   "Fixture Title",
				types.FieldArtist:  "Fixture Artist",
				types.FieldAlbum:   "Fixture Album",
				types.FieldGenre:   "Rock",
				types.FieldComment: "fixture comment",
			}
			for key, value := range want {
				if v := got.First(key); v != value {
					t.Errorf("%s = %q, want %q", key, v, value)
				}
			}
			if len(d.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", d.Warnings)
			}
		})
	}
}

// Tags this package writes are readable by another implementation.
func TestEncode_ReadByBogem(t *testing.T) {
	for _, v := range []Version{V23, V24} {
		t.Run(v.String(), func(t *testing.T) {
			tag := NewTag(v)
			tag.Set(types.FieldTitle, "Ünïcode Title 東京")
			tag.Set(types.FieldArtist, "Artist")
			tag.Set(types.FieldComment, "written here")

			data, err := Encode(tag)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}

			got, err := bogem.ParseReader(bytes.NewReader(data), bogem.Options{Parse: true})
			if err != nil {
				t.Fatalf("ParseReader() error: %v", err)
			}
			if got.Version() != byte(v) {
				t.Errorf("Version() = %d, want %d", got.Version(), v)
			}
			if got.Title() != "Ünïcode Title 東京" {
				t.Errorf("Title() = %q", got.Title())
			}
			if got.Artist() != "Artist" {
				t.Errorf("Artist() = %q", got.Artist())
			}

			comments := got.GetFrames(got.CommonID("Comments"))
			if len(comments) != 1 {
				t.Fatalf("got %d comment frames, want 1", len(comments))
			}
			if cf, ok := comments[0].(bogem.CommentFrame); !ok || cf.Text != "written here" {
				t.Errorf("comment = %+v", comments[0])
			}
		})
	}
}
