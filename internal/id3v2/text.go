package id3v2

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the text encoding byte that prefixes text-bearing frames.
type Encoding byte

const (
	EncodingISO88591 Encoding = 0
	EncodingUTF16    Encoding = 1 // with BOM
	EncodingUTF16BE  Encoding = 2 // ID3v2.4 only
	EncodingUTF8     Encoding = 3 // ID3v2.4 only
)

var (
	utf16BOM = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	// Written with a little-endian BOM, as most taggers do.
	utf16LEBOM = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	utf16BE    = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
)

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case EncodingUTF16:
		return utf16BOM
	case EncodingUTF16BE:
		return utf16BE
	case EncodingUTF8:
		return encoding.Nop
	default:
		return charmap.ISO8859_1
	}
}

// validFor reports whether the encoding can appear in a tag of version v.
func (e Encoding) validFor(v Version) bool {
	switch e {
	case EncodingISO88591, EncodingUTF16:
		return true
	case EncodingUTF16BE, EncodingUTF8:
		return v == V24
	default:
		return false
	}
}

// terminator returns the string terminator for the encoding.
func (e Encoding) terminator() []byte {
	if e == EncodingUTF16 || e == EncodingUTF16BE {
		return []byte{0, 0}
	}
	return []byte{0}
}

// decodeString decodes b, dropping byte order marks and trailing terminators.
func decodeString(b []byte, enc Encoding) string {
	if len(b) == 0 {
		return ""
	}
	if enc == EncodingUTF16 || enc == EncodingUTF16BE {
		if len(b)%2 != 0 {
			b = b[:len(b)-1]
		}
	}

	out, err := enc.codec().NewDecoder().Bytes(b)
	if err != nil {
		// Undecodable input is kept byte for byte as Latin-1.
		out, _ = charmap.ISO8859_1.NewDecoder().Bytes(b)
	}
	s := strings.ReplaceAll(string(out), "\uFEFF", "")
	return strings.TrimRight(s, "\x00")
}

// encodeString encodes s without a terminator. Runes that the encoding
// cannot represent are replaced.
func encodeString(s string, enc Encoding) []byte {
	codec := enc.codec()
	if enc == EncodingUTF16 {
		codec = utf16LEBOM
	}
	out, err := encoding.ReplaceUnsupported(codec.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

// splitTerminated splits b at the first terminator for enc. ok is false when
// there is none, in which case head is all of b.
func splitTerminated(b []byte, enc Encoding) (head, rest []byte, ok bool) {
	term := enc.terminator()
	if len(term) == 1 {
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return b, nil, false
		}
		return b[:i], b[i+1:], true
	}

	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return b[:i], b[i+2:], true
		}
	}
	return b, nil, false
}

// isLatin1 reports whether every rune of s is representable in ISO-8859-1.
func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

// preferredEncoding picks the encoding a writer uses for s in version v.
func preferredEncoding(v Version, values ...string) Encoding {
	if v == V24 {
		return EncodingUTF8
	}
	for _, s := range values {
		if !isLatin1(s) {
			return EncodingUTF16
		}
	}
	return EncodingISO88591
}
