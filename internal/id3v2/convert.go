package id3v2

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/simonhull/mp3meta/internal/id3v1"
	"github.com/simonhull/mp3meta/internal/types"
)

// v22to23 maps ID3v2.2 frame IDs to their ID3v2.3 equivalents.
var v22to23 = map[string]string{
	"BUF": "RBUF", "CNT": "PCNT", "COM": "COMM", "CRA": "AENC", "ETC": "ETCO",
	"EQU": "EQUA", "GEO": "GEOB", "IPL": "IPLS", "LNK": "LINK", "MCI": "MCDI",
	"MLL": "MLLT", "PIC": "APIC", "POP": "POPM", "REV": "RVRB", "RVA": "RVAD",
	"SLT": "SYLT", "STC": "SYTC", "TAL": "TALB", "TBP": "TBPM", "TCM": "TCOM",
	"TCO": "TCON", "TCR": "TCOP", "TDA": "TDAT", "TDY": "TDLY", "TEN": "TENC",
	"TFT": "TFLT", "TIM": "TIME", "TKE": "TKEY", "TLA": "TLAN", "TLE": "TLEN",
	"TMT": "TMED", "TOA": "TOPE", "TOF": "TOFN", "TOL": "TOLY", "TOR": "TORY",
	"TOT": "TOAL", "TP1": "TPE1", "TP2": "TPE2", "TP3": "TPE3", "TP4": "TPE4",
	"TPA": "TPOS", "TPB": "TPUB", "TRC": "TSRC", "TRD": "TRDA", "TRK": "TRCK",
	"TSI": "TSIZ", "TSS": "TSSE", "TT1": "TIT1", "TT2": "TIT2", "TT3": "TIT3",
	"TXT": "TEXT", "TXX": "TXXX", "TYE": "TYER", "UFI": "UFID", "ULT": "USLT",
	"WAF": "WOAF", "WAR": "WOAR", "WAS": "WOAS", "WCM": "WCOM", "WCP": "WCOP",
	"WPB": "WPUB", "WXX": "WXXX",
}

var v23to22 = func() map[string]string {
	m := make(map[string]string, len(v22to23))
	for k, v := range v22to23 {
		m[v] = k
	}
	return m
}()

// Frames that exist in ID3v2.3 but were dropped from ID3v2.4 without a
// direct replacement.
var dropped23 = map[string]bool{"EQUA": true, "RVAD": true, "TRDA": true, "TSIZ": true}

// Frames introduced by ID3v2.4 that ID3v2.3 cannot carry.
var only24 = map[string]bool{
	"ASPI": true, "EQU2": true, "RVA2": true, "SEEK": true, "SIGN": true,
	"TDEN": true, "TDRL": true, "TDTG": true, "TMCL": true, "TMOO": true,
	"TPRO": true, "TSST": true,
}

// Convert returns a copy of t as a tag of version v. Frames that have no
// equivalent in the target version are dropped, and text is re-encoded when
// the target cannot carry the source encoding.
func Convert(t *Tag, v Version) *Tag {
	out := t.Clone()
	for out.Version < v {
		switch out.Version {
		case V22:
			out = upgrade22(out)
		default:
			out = upgrade23(out)
		}
	}
	for out.Version > v {
		switch out.Version {
		case V24:
			out = downgrade24(out)
		default:
			out = downgrade23(out)
		}
	}
	return out
}

func upgrade22(t *Tag) *Tag {
	out := NewTag(V23)
	for _, f := range t.Frames {
		id, ok := v22to23[f.ID]
		if !ok {
			continue
		}
		data := f.Data
		if id == "APIC" {
			data = picToAPIC(data)
		}
		out.AddFrame(&Frame{ID: id, Flags: f.Flags, Data: data})
	}
	return out
}

func downgrade23(t *Tag) *Tag {
	out := NewTag(V22)
	for _, f := range t.Frames {
		id, ok := v23to22[f.ID]
		if !ok {
			continue
		}
		data := f.Data
		if id == "PIC" {
			data = apicToPIC(data)
		}
		out.AddFrame(&Frame{ID: id, Flags: f.Flags, Data: data})
	}
	return out
}

func upgrade23(t *Tag) *Tag {
	out := NewTag(V24)
	var year, date, clock string
	datePos := -1

	for _, f := range t.Frames {
		switch {
		case f.ID == "TYER" || f.ID == "TDAT" || f.ID == "TIME":
			value := firstText(t, f)
			switch f.ID {
			case "TYER":
				year = value
			case "TDAT":
				date = value
			default:
				clock = value
			}
			if datePos < 0 {
				datePos = len(out.Frames)
				out.AddFrame(nil) // placeholder for TDRC
			}
		case f.ID == "TORY":
			out.AddFrame(&Frame{ID: "TDOR", Flags: f.Flags, Data: textData(V24, firstText(t, f))})
		case f.ID == "IPLS":
			out.AddFrame(&Frame{ID: "TIPL", Flags: f.Flags, Data: f.Data})
		case dropped23[f.ID]:
		default:
			out.AddFrame(&Frame{ID: f.ID, Flags: f.Flags, Data: f.Data})
		}
	}

	if datePos >= 0 {
		if stamp := joinTimestamp(year, date, clock); stamp != "" {
			out.Frames[datePos] = &Frame{ID: "TDRC", Data: textData(V24, stamp)}
		} else {
			out.Frames = append(out.Frames[:datePos], out.Frames[datePos+1:]...)
		}
	}
	return out
}

func downgrade24(t *Tag) *Tag {
	out := NewTag(V23)
	for _, f := range t.Frames {
		switch {
		case f.ID == "TDRC":
			year, date, clock := splitTimestamp(firstText(t, f))
			if year != "" {
				out.AddFrame(&Frame{ID: "TYER", Flags: f.Flags, Data: textData(V23, year)})
			}
			if date != "" {
				out.AddFrame(&Frame{ID: "TDAT", Flags: f.Flags, Data: textData(V23, date)})
			}
			if clock != "" {
				out.AddFrame(&Frame{ID: "TIME", Flags: f.Flags, Data: textData(V23, clock)})
			}
		case f.ID == "TDOR":
			if year, _, _ := splitTimestamp(firstText(t, f)); year != "" {
				out.AddFrame(&Frame{ID: "TORY", Flags: f.Flags, Data: textData(V23, year)})
			}
		case only24[f.ID]:
		default:
			id := f.ID
			if id == "TIPL" {
				id = "IPLS"
			}
			data, ok := reencode(t, f)
			if !ok {
				continue
			}
			out.AddFrame(&Frame{ID: id, Flags: f.Flags, Data: data})
		}
	}
	return out
}

// reencode rewrites frames whose encoding ID3v2.3 cannot carry. ok is false
// for frames that use such an encoding in a layout this package does not
// know.
func reencode(t *Tag, f *Frame) ([]byte, bool) {
	if len(f.Data) == 0 || !hasEncodingByte(f.ID) || Encoding(f.Data[0]).validFor(V23) {
		return f.Data, true
	}

	switch {
	case isUserText(f.ID):
		desc, value, ok := userText(f)
		if !ok {
			return nil, false
		}
		enc := preferredEncoding(V23, desc, value)
		data := append([]byte{byte(enc)}, encodeString(desc, enc)...)
		data = append(data, enc.terminator()...)
		if strings.HasPrefix(f.ID, "W") {
			return append(data, encodeString(value, EncodingISO88591)...), true
		}
		return append(data, encodeString(value, enc)...), true
	case isText(f.ID):
		return textData(V23, strings.Join(t.splitText(f.Data), "/")), true
	case isComment(f.ID):
		c, ok := parseComment(f.Data)
		if !ok {
			return nil, false
		}
		return commentData(V23, c.Language, c.Description, c.Text), true
	case f.ID == "APIC":
		return reencodeAPIC(f.Data)
	}
	return nil, false
}

// hasEncodingByte reports whether the frame body starts with a text encoding.
func hasEncodingByte(id string) bool {
	switch id {
	case "APIC", "GEOB", "SYLT", "USER", "OWNE", "COMR", "IPLS", "TIPL":
		return true
	}
	return isText(id) || isUserText(id) || isComment(id)
}

func firstText(t *Tag, f *Frame) string {
	if v := t.frameValues(f); len(v) > 0 {
		return v[0]
	}
	return ""
}

// joinTimestamp builds an ID3v2.4 timestamp from TYER (YYYY), TDAT (DDMM)
// and TIME (HHMM).
func joinTimestamp(year, date, clock string) string {
	if len(year) != 4 {
		return year
	}
	stamp := year
	if len(date) == 4 {
		stamp += "-" + date[2:4] + "-" + date[0:2]
		if len(clock) == 4 {
			stamp += "T" + clock[0:2] + ":" + clock[2:4]
		}
	}
	return stamp
}

// splitTimestamp is the inverse of joinTimestamp.
func splitTimestamp(stamp string) (year, date, clock string) {
	if len(stamp) < 4 {
		return stamp, "", ""
	}
	year = stamp[:4]
	if len(stamp) >= 10 && stamp[4] == '-' && stamp[7] == '-' {
		date = stamp[8:10] + stamp[5:7]
		if len(stamp) >= 16 && stamp[10] == 'T' && stamp[13] == ':' {
			clock = stamp[11:13] + stamp[14:16]
		}
	}
	return year, date, clock
}

var picFormats = map[string]string{
	"JPG": "image/jpeg",
	"PNG": "image/png",
	"GIF": "image/gif",
	"BMP": "image/bmp",
}

// picToAPIC converts [enc][fmt(3)][type][desc][data] to
// [enc][mime\0][type][desc][data].
func picToAPIC(data []byte) []byte {
	if len(data) < 5 {
		return data
	}
	format := strings.ToUpper(string(data[1:4]))
	mime, ok := picFormats[format]
	if !ok {
		mime = "image/" + strings.ToLower(strings.TrimSpace(format))
	}
	out := []byte{data[0]}
	out = append(out, mime...)
	out = append(out, 0)
	return append(out, data[4:]...)
}

func apicToPIC(data []byte) []byte {
	if len(data) < 2 {
		return data
	}
	mime, rest, ok := bytes.Cut(data[1:], []byte{0})
	if !ok {
		return data
	}
	format := "JPG"
	for k, v := range picFormats {
		if v == strings.ToLower(string(mime)) {
			format = k
		}
	}
	out := []byte{data[0]}
	out = append(out, format...)
	return append(out, rest...)
}

func reencodeAPIC(data []byte) ([]byte, bool) {
	enc := Encoding(data[0])
	mime, rest, ok := bytes.Cut(data[1:], []byte{0})
	if !ok || len(rest) < 1 {
		return nil, false
	}
	picType := rest[0]
	desc, image, ok := splitTerminated(rest[1:], enc)
	if !ok {
		return nil, false
	}
	s := decodeString(desc, enc)
	target := preferredEncoding(V23, s)

	out := []byte{byte(target)}
	out = append(out, mime...)
	out = append(out, 0, picType)
	out = append(out, encodeString(s, target)...)
	out = append(out, target.terminator()...)
	return append(out, image...), true
}

// FromLegacy builds an ID3v2.4 tag carrying the fields of a legacy tag.
// Empty legacy fields produce no frames; the track number is only carried
// from ID3v1.1 tags.
func FromLegacy(l *id3v1.Tag) *Tag {
	t := NewTag(V24)
	if l == nil {
		return t
	}

	set := func(key types.FieldKey, value string) {
		if value != "" {
			t.Set(key, value)
		}
	}
	set(types.FieldTitle, l.Title)
	set(types.FieldArtist, l.Artist)
	set(types.FieldAlbum, l.Album)
	set(types.FieldYear, l.Year)
	set(types.FieldComment, l.Comment)
	if name, ok := id3v1.GenreName(int(l.Genre)); ok {
		set(types.FieldGenre, name)
	}
	if l.Version == id3v1.V11 && l.Track > 0 {
		set(types.FieldTrack, strconv.Itoa(int(l.Track)))
	}
	return t
}

// ToLegacy projects t onto the fields a legacy tag can carry. The result is
// ID3v1.1 when t has a track number between 1 and 255.
func ToLegacy(t *Tag) *id3v1.Tag {
	l := &id3v1.Tag{
		Version: id3v1.V1,
		Title:   t.First(types.FieldTitle),
		Artist:  t.First(types.FieldArtist),
		Album:   t.First(types.FieldAlbum),
		Comment: t.First(types.FieldComment),
		Genre:   id3v1.NoGenre,
	}
	if year, _, _ := splitTimestamp(t.First(types.FieldYear)); year != "" {
		l.Year = year
	}
	if code, ok := id3v1.GenreCode(t.First(types.FieldGenre)); ok {
		l.Genre = code
	}
	if n := leadingInt(t.First(types.FieldTrack)); n > 0 && n <= 255 {
		l.Version = id3v1.V11
		l.Track = byte(n)
	}
	return l
}

// leadingInt parses the number in "N" or "N/M".
func leadingInt(s string) int {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
