// Package ape reads and writes APE tags as found at the end of MP3 files.
//
// APEv1 and APEv2 tags are read; tags are always written as APEv2 with both
// a header and a footer. All integers are little-endian.
package ape

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
	"strings"

	binutil "github.com/simonhull/mp3meta/internal/binary"
	"github.com/simonhull/mp3meta/internal/types"
)

// Preamble starts both the header and the footer.
const Preamble = "APETAGEX"

// HeaderSize is the size of the header and of the footer.
const HeaderSize = 32

// Versions as stored in the header and footer.
const (
	V1 = 1000
	V2 = 2000
)

// Header and footer flags.
const (
	FlagReadOnly  = 1 << 0
	FlagHasHeader = 1 << 31
	FlagNoFooter  = 1 << 30
	FlagIsHeader  = 1 << 29
)

// ItemType is the value type stored in bits 1-2 of an item's flags.
type ItemType uint32

const (
	TypeText ItemType = iota
	TypeBinary
	TypeLocator
)

// Item is a single key/value pair.
type Item struct {
	Key      string
	Type     ItemType
	ReadOnly bool
	Value    []byte
}

// Values splits a text item into its NUL-separated values.
func (it *Item) Values() []string {
	if it.Type == TypeBinary || len(it.Value) == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(string(it.Value), "\x00"), "\x00")
}

// Footer is a decoded header or footer.
type Footer struct {
	Version int
	Size    uint32 // items plus footer, header excluded
	Items   uint32
	Flags   uint32
}

// ReadFooter decodes the header or footer at off.
func ReadFooter(sr *binutil.SafeReader, off int64) (Footer, bool) {
	magic, err := sr.Bytes(off, len(Preamble), "APE preamble")
	if err != nil || string(magic) != Preamble {
		return Footer{}, false
	}

	var words [4]uint32
	for i := range words {
		words[i], err = binutil.ReadLE[uint32](sr, off+8+int64(4*i), "APE footer")
		if err != nil {
			return Footer{}, false
		}
	}
	f := Footer{Version: int(words[0]), Size: words[1], Items: words[2], Flags: words[3]}
	if f.Version == V1 {
		// APEv1 has no header and no meaningful flags.
		f.Flags = 0
	}
	if f.Size < HeaderSize {
		return Footer{}, false
	}
	return f, true
}

// TagLength returns the full on-disk length of the tag the footer closes.
func (f Footer) TagLength() int64 {
	n := int64(f.Size)
	if f.Flags&FlagHasHeader != 0 {
		n += HeaderSize
	}
	return n
}

// Tag is a decoded APE tag. Item order is preserved.
type Tag struct {
	Version  int
	ReadOnly bool
	Items    []*Item
}

func notFound(format string, args ...any) error {
	return &types.TagNotFoundError{Kind: types.KindAPE, Reason: fmt.Sprintf(format, args...)}
}

// Decode parses b, the bytes of a whole tag ending with its footer. A
// leading header is optional.
func Decode(b []byte) (*Tag, error) {
	if len(b) < HeaderSize {
		return nil, notFound("%d bytes is too short for a footer", len(b))
	}
	sr := binutil.NewSafeReader(bytes.NewReader(b), int64(len(b)), "APE tag")
	end := int64(len(b) - HeaderSize)
	footer, ok := ReadFooter(sr, end)
	if !ok {
		return nil, notFound("missing footer")
	}
	if footer.Flags&FlagIsHeader != 0 {
		return nil, notFound("footer is flagged as a header")
	}
	if int64(footer.Size) > int64(len(b)) {
		return nil, notFound("footer declares %d bytes but only %d are present", footer.Size, len(b))
	}

	off := int64(len(b)) - int64(footer.Size)
	t := &Tag{Version: footer.Version, ReadOnly: footer.Flags&FlagReadOnly != 0}
	for i := uint32(0); i < footer.Items; i++ {
		item, next, err := decodeItem(sr, off, end)
		if err != nil {
			return nil, notFound("item %d: %v", i, err)
		}
		t.Items = append(t.Items, item)
		off = next
	}
	return t, nil
}

// decodeItem reads the item at off, which must end by end, and returns the
// offset of the next item.
func decodeItem(sr *binutil.SafeReader, off, end int64) (*Item, int64, error) {
	if end-off < 8 {
		return nil, 0, fmt.Errorf("truncated item header")
	}
	size, err := binutil.ReadLE[uint32](sr, off, "APE item size")
	if err != nil {
		return nil, 0, err
	}
	flags, err := binutil.ReadLE[uint32](sr, off+4, "APE item flags")
	if err != nil {
		return nil, 0, err
	}

	keyArea, err := sr.Bytes(off+8, int(min(end-off-8, maxKeyLen+1)), "APE item key")
	if err != nil {
		return nil, 0, err
	}
	n := bytes.IndexByte(keyArea, 0)
	if n < 0 {
		return nil, 0, fmt.Errorf("unterminated key")
	}
	key := string(keyArea[:n])
	if err := validKey(key); err != nil {
		return nil, 0, err
	}

	start := off + 8 + int64(n) + 1
	if int64(size) > end-start {
		return nil, 0, fmt.Errorf("value of %q overruns the tag", key)
	}
	value, err := sr.Bytes(start, int(size), "APE item value")
	if err != nil {
		return nil, 0, err
	}
	return &Item{
		Key:      key,
		Type:     ItemType(flags>>1) & 3,
		ReadOnly: flags&FlagReadOnly != 0,
		Value:    value,
	}, start + int64(size), nil
}

const maxKeyLen = 255

var reservedKeys = []string{"ID3", "TAG", "OggS", "MP+"}

func validKey(key string) error {
	if len(key) < 2 || len(key) > maxKeyLen {
		return fmt.Errorf("key %q must be 2 to 255 characters", key)
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x20 || key[i] > 0x7E {
			return fmt.Errorf("key %q contains byte 0x%02x", key, key[i])
		}
	}
	for _, r := range reservedKeys {
		if strings.EqualFold(key, r) {
			return fmt.Errorf("key %q is reserved", key)
		}
	}
	return nil
}

// Encode serializes t as an APEv2 tag with a header and a footer.
func Encode(t *Tag) ([]byte, error) {
	var items bytes.Buffer
	w := binutil.NewSafeWriter(&items)
	for _, it := range t.Items {
		if err := validKey(it.Key); err != nil {
			return nil, err
		}
		flags := uint32(it.Type&3) << 1
		if it.ReadOnly {
			flags |= FlagReadOnly
		}
		binutil.WriteLE(w, uint32(len(it.Value)))
		binutil.WriteLE(w, flags)
		w.WriteString(it.Key)
		w.WriteBytes([]byte{0})
		w.WriteBytes(it.Value)
	}
	if err := w.Err(); err != nil {
		return nil, err
	}

	size := uint32(w.Offset() + HeaderSize)
	var tagFlags uint32 = FlagHasHeader
	if t.ReadOnly {
		tagFlags |= FlagReadOnly
	}

	var out bytes.Buffer
	ow := binutil.NewSafeWriter(&out)
	writeFooter(ow, size, uint32(len(t.Items)), tagFlags|FlagIsHeader)
	ow.WriteBytes(items.Bytes())
	writeFooter(ow, size, uint32(len(t.Items)), tagFlags)
	if err := ow.Err(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeFooter(w *binutil.SafeWriter, size, count, flags uint32) {
	w.WriteString(Preamble)
	binutil.WriteLE(w, uint32(V2))
	binutil.WriteLE(w, size)
	binutil.WriteLE(w, count)
	binutil.WriteLE(w, flags)
	binutil.WriteLE(w, uint64(0))
}

// NewTag returns an empty APEv2 tag.
func NewTag() *Tag {
	return &Tag{Version: V2}
}

// Kind implements types.Tag.
func (t *Tag) Kind() types.Kind {
	return types.KindAPE
}

// Item returns the item with the given key, compared case-insensitively.
func (t *Tag) Item(key string) *Item {
	for _, it := range t.Items {
		if strings.EqualFold(it.Key, key) {
			return it
		}
	}
	return nil
}

// SetItem replaces the item with the same key, or appends it.
func (t *Tag) SetItem(item *Item) {
	for i, it := range t.Items {
		if strings.EqualFold(it.Key, item.Key) {
			t.Items[i] = item
			return
		}
	}
	t.Items = append(t.Items, item)
}

// DeleteItem removes the item with the given key.
func (t *Tag) DeleteItem(key string) {
	t.Items = slices.DeleteFunc(t.Items, func(it *Item) bool { return strings.EqualFold(it.Key, key) })
}

var keyItems = map[types.FieldKey]string{
	types.FieldTitle:       "Title",
	types.FieldArtist:      "Artist",
	types.FieldAlbum:       "Album",
	types.FieldAlbumArtist: "Album Artist",
	types.FieldComposer:    "Composer",
	types.FieldGenre:       "Genre",
	types.FieldTrack:       "Track",
	types.FieldDisc:        "Disc",
	types.FieldComment:     "Comment",
	types.FieldYear:        "Year",
}

// Values returns the values stored for a normalized key.
func (t *Tag) Values(key types.FieldKey) []string {
	name, ok := keyItems[key]
	if !ok {
		return nil
	}
	if it := t.Item(name); it != nil {
		return it.Values()
	}
	return nil
}

// Set stores values under a normalized key as a single text item. Setting
// no values deletes the item.
func (t *Tag) Set(key types.FieldKey, values ...string) error {
	name, ok := keyItems[key]
	if !ok {
		return fmt.Errorf("APE: unsupported field %q", key)
	}
	if len(values) == 0 {
		t.DeleteItem(name)
		return nil
	}
	t.SetItem(&Item{Key: name, Type: TypeText, Value: []byte(strings.Join(values, "\x00"))})
	return nil
}

// Fields implements types.Tag.
func (t *Tag) Fields() iter.Seq2[types.FieldKey, []string] {
	return func(yield func(types.FieldKey, []string) bool) {
		for _, key := range types.FieldKeys {
			if v := t.Values(key); len(v) > 0 {
				if !yield(key, v) {
					return
				}
			}
		}
	}
}

// RawFields implements types.Tag. Binary items are skipped.
func (t *Tag) RawFields() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, it := range t.Items {
			if v := it.Values(); len(v) > 0 {
				if !yield(it.Key, v) {
					return
				}
			}
		}
	}
}
