// Package id3v2 reads, writes and converts ID3v2.2, ID3v2.3 and ID3v2.4 tags.
//
// A Tag is a version plus an ordered list of frames. Frames are stored with
// unsynchronisation, compression and the other format flags already undone,
// so encoding a decoded tag is deterministic.
package id3v2

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/simonhull/mp3meta/internal/id3v1"
	"github.com/simonhull/mp3meta/internal/types"
)

// Version is the major version of an ID3v2 tag.
type Version byte

const (
	V22 Version = 2
	V23 Version = 3
	V24 Version = 4
)

// Versions lists the supported versions in the order they are probed.
var Versions = []Version{V24, V23, V22}

func (v Version) String() string {
	return fmt.Sprintf("ID3v2.%d", byte(v))
}

// Kind returns the tag kind for the version.
func (v Version) Kind() types.Kind {
	switch v {
	case V22:
		return types.KindID3v22
	case V23:
		return types.KindID3v23
	case V24:
		return types.KindID3v24
	default:
		return types.KindUnknown
	}
}

func (v Version) idLen() int {
	if v == V22 {
		return 3
	}
	return 4
}

// FrameFlags holds the status flags of a frame.
//
// Format flags (compression, encryption, unsynchronisation, grouping, data
// length) describe the on-disk encoding only and are not kept.
type FrameFlags uint8

const (
	FlagTagAlterDiscard FrameFlags = 1 << iota
	FlagFileAlterDiscard
	FlagReadOnly
)

// Frame is a single ID3v2 frame.
type Frame struct {
	ID    string
	Flags FrameFlags
	Data  []byte
}

// Tag is a decoded ID3v2 tag.
type Tag struct {
	Version  Version
	Revision byte
	Frames   []*Frame
}

// NewTag returns an empty tag of version v.
func NewTag(v Version) *Tag {
	return &Tag{Version: v}
}

// Kind implements types.Tag.
func (t *Tag) Kind() types.Kind {
	return t.Version.Kind()
}

// Clone returns a deep copy of t.
func (t *Tag) Clone() *Tag {
	out := &Tag{Version: t.Version, Revision: t.Revision, Frames: make([]*Frame, len(t.Frames))}
	for i, f := range t.Frames {
		out.Frames[i] = &Frame{ID: f.ID, Flags: f.Flags, Data: bytes.Clone(f.Data)}
	}
	return out
}

// FramesByID returns the frames with the given ID in tag order.
func (t *Tag) FramesByID(id string) []*Frame {
	var out []*Frame
	for _, f := range t.Frames {
		if f.ID == id {
			out = append(out, f)
		}
	}
	return out
}

// AddFrame appends f to the tag.
func (t *Tag) AddFrame(f *Frame) {
	t.Frames = append(t.Frames, f)
}

// DeleteFrames removes every frame with the given ID and returns how many
// were removed.
func (t *Tag) DeleteFrames(id string) int {
	before := len(t.Frames)
	t.Frames = slices.DeleteFunc(t.Frames, func(f *Frame) bool { return f.ID == id })
	return before - len(t.Frames)
}

// keyFrames maps normalized keys to frame IDs, indexed by version.
var keyFrames = map[types.FieldKey][3]string{
	types.FieldTitle:       {"TT2", "TIT2", "TIT2"},
	types.FieldArtist:      {"TP1", "TPE1", "TPE1"},
	types.FieldAlbum:       {"TAL", "TALB", "TALB"},
	types.FieldAlbumArtist: {"TP2", "TPE2", "TPE2"},
	types.FieldComposer:    {"TCM", "TCOM", "TCOM"},
	types.FieldYear:        {"TYE", "TYER", "TDRC"},
	types.FieldComment:     {"COM", "COMM", "COMM"},
	types.FieldGenre:       {"TCO", "TCON", "TCON"},
	types.FieldTrack:       {"TRK", "TRCK", "TRCK"},
	types.FieldDisc:        {"TPA", "TPOS", "TPOS"},
	types.FieldEncoder:     {"TEN", "TENC", "TENC"},
}

// FrameID returns the frame ID that carries key in version v, or "" if the
// key is not known.
func FrameID(key types.FieldKey, v Version) string {
	ids, ok := keyFrames[key]
	if !ok || v < V22 || v > V24 {
		return ""
	}
	return ids[v-V22]
}

// Values returns every value stored for key, in tag order. Genre references
// such as "(17)" are resolved to names.
func (t *Tag) Values(key types.FieldKey) []string {
	id := FrameID(key, t.Version)
	if id == "" {
		return nil
	}

	var out []string
	for _, f := range t.FramesByID(id) {
		out = append(out, t.frameValues(f)...)
	}
	if key == types.FieldGenre {
		for i, g := range out {
			out[i] = resolveGenre(g)
		}
	}
	return out
}

// First returns the first value for key, or "".
func (t *Tag) First(key types.FieldKey) string {
	if v := t.Values(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Set replaces all frames for key with one frame per value. Setting no
// values deletes the key.
func (t *Tag) Set(key types.FieldKey, values ...string) error {
	id := FrameID(key, t.Version)
	if id == "" {
		return fmt.Errorf("%s: unsupported field %q", t.Version, key)
	}

	// Keep the position of the first existing frame so rewrites stay stable.
	pos := slices.IndexFunc(t.Frames, func(f *Frame) bool { return f.ID == id })
	t.DeleteFrames(id)
	if pos < 0 || pos > len(t.Frames) {
		pos = len(t.Frames)
	}

	frames := make([]*Frame, 0, len(values))
	for _, v := range values {
		frames = append(frames, t.newFrame(key, id, v))
	}
	t.Frames = slices.Insert(t.Frames, pos, frames...)
	return nil
}

// Add appends a further frame for key.
func (t *Tag) Add(key types.FieldKey, value string) error {
	id := FrameID(key, t.Version)
	if id == "" {
		return fmt.Errorf("%s: unsupported field %q", t.Version, key)
	}
	t.AddFrame(t.newFrame(key, id, value))
	return nil
}

// Delete removes every frame for key.
func (t *Tag) Delete(key types.FieldKey) {
	if id := FrameID(key, t.Version); id != "" {
		t.DeleteFrames(id)
	}
}

func (t *Tag) newFrame(key types.FieldKey, id, value string) *Frame {
	if key == types.FieldComment {
		return &Frame{ID: id, Data: commentData(t.Version, "eng", "", value)}
	}
	return &Frame{ID: id, Data: textData(t.Version, value)}
}

// Fields implements types.Tag. Keys are yielded in types.FieldKeys order.
func (t *Tag) Fields() iter.Seq2[types.FieldKey, []string] {
	return func(yield func(types.FieldKey, []string) bool) {
		for _, key := range types.FieldKeys {
			values := t.Values(key)
			if len(values) == 0 {
				continue
			}
			if !yield(key, values) {
				return
			}
		}
	}
}

// RawFields implements types.Tag. Each frame that carries text is yielded
// under its own ID in tag order; binary frames are skipped.
func (t *Tag) RawFields() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, f := range t.Frames {
			values := t.frameValues(f)
			if len(values) == 0 {
				continue
			}
			if !yield(f.ID, values) {
				return
			}
		}
	}
}

// frameValues decodes the text carried by f.
func (t *Tag) frameValues(f *Frame) []string {
	if len(f.Data) == 0 {
		return nil
	}

	switch {
	case isUserText(f.ID):
		_, value, ok := userText(f)
		if !ok || value == "" {
			return nil
		}
		return []string{value}
	case isText(f.ID):
		return t.splitText(f.Data)
	case isComment(f.ID):
		c, ok := parseComment(f.Data)
		if !ok || c.Text == "" {
			return nil
		}
		return []string{c.Text}
	case isURL(f.ID):
		s := decodeString(f.Data, EncodingISO88591)
		if s == "" {
			return nil
		}
		return []string{s}
	}
	return nil
}

// splitText decodes the body of a text frame. ID3v2.4 separates multiple
// values with terminators; earlier versions end the string at the first one.
func (t *Tag) splitText(data []byte) []string {
	enc := Encoding(data[0])
	rest := data[1:]

	var out []string
	for len(rest) > 0 {
		head, tail, ok := splitTerminated(rest, enc)
		if s := decodeString(head, enc); s != "" {
			out = append(out, s)
		}
		if !ok || t.Version != V24 {
			break
		}
		rest = tail
	}
	return out
}

func isText(id string) bool {
	return strings.HasPrefix(id, "T") && !isUserText(id)
}

func isUserText(id string) bool {
	return id == "TXXX" || id == "TXX" || id == "WXXX" || id == "WXX"
}

func isComment(id string) bool {
	return id == "COMM" || id == "COM" || id == "USLT" || id == "ULT"
}

func isURL(id string) bool {
	return strings.HasPrefix(id, "W") && !isUserText(id)
}

// textData builds the body of a text frame.
func textData(v Version, values ...string) []byte {
	enc := preferredEncoding(v, values...)
	out := []byte{byte(enc)}
	for i, s := range values {
		if i > 0 {
			out = append(out, enc.terminator()...)
		}
		out = append(out, encodeString(s, enc)...)
	}
	return out
}

// Comment is the decoded body of a COMM or USLT frame.
type Comment struct {
	Language    string
	Description string
	Text        string
}

func parseComment(data []byte) (Comment, bool) {
	if len(data) < 4 {
		return Comment{}, false
	}
	enc := Encoding(data[0])
	desc, text, ok := splitTerminated(data[4:], enc)
	if !ok {
		// Some writers omit the description entirely.
		return Comment{Language: string(data[1:4]), Text: decodeString(data[4:], enc)}, true
	}
	return Comment{
		Language:    string(data[1:4]),
		Description: decodeString(desc, enc),
		Text:        decodeString(text, enc),
	}, true
}

// commentData builds the body of a COMM or USLT frame.
func commentData(v Version, lang, desc, text string) []byte {
	enc := preferredEncoding(v, desc, text)
	lang = (lang + "XXX")[:3]
	out := []byte{byte(enc)}
	out = append(out, lang...)
	out = append(out, encodeString(desc, enc)...)
	out = append(out, enc.terminator()...)
	out = append(out, encodeString(text, enc)...)
	return out
}

// userText decodes a TXXX or WXXX frame. WXXX values are always Latin-1.
func userText(f *Frame) (desc, value string, ok bool) {
	if len(f.Data) < 1 {
		return "", "", false
	}
	enc := Encoding(f.Data[0])
	d, v, found := splitTerminated(f.Data[1:], enc)
	if !found {
		return "", "", false
	}
	if strings.HasPrefix(f.ID, "W") {
		return decodeString(d, enc), decodeString(v, EncodingISO88591), true
	}
	return decodeString(d, enc), decodeString(v, enc), true
}

// resolveGenre turns "(17)", "(17)Rock" and "17" into a genre name.
func resolveGenre(s string) string {
	if strings.HasPrefix(s, "(") {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			return s
		}
		if refined := s[end+1:]; refined != "" {
			return refined
		}
		s = s[1:end]
	}
	if n, err := strconv.Atoi(s); err == nil {
		if name, ok := id3v1.GenreName(n); ok {
			return name
		}
	}
	return s
}
