package id3

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Text encodings
const (
	encLatin1  = 0
	encUTF16   = 1 // with BOM
	encUTF16BE = 2 // v2.4 only
	encUTF8    = 3 // v2.4 only
)

var (
	utf16BOM = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	utf16BE  = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	// Writers emit little-endian with a BOM, as most taggers do.
	utf16LEWithBOM = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
)

// decoderFor returns the decoder for an ID3 text encoding byte.
func decoderFor(enc byte) encoding.Encoding {
	switch enc {
	case encUTF16:
		return utf16BOM
	case encUTF16BE:
		return utf16BE
	case encUTF8:
		return unicode.UTF8
	default:
		return charmap.ISO8859_1
	}
}

// decodeText decodes a text frame body (after the encoding byte).
//
// Embedded terminators are kept as NUL characters so callers see exactly
// what the frame holds; trailing terminators are dropped. For UTF-16 every
// string may carry its own BOM, so strings are decoded one at a time.
func decodeText(data []byte, enc byte) string {
	wide := enc == encUTF16 || enc == encUTF16BE
	segments := splitTerminated(data, wide)

	dec := decoderFor(enc)
	parts := make([]string, len(segments))
	for i, seg := range segments {
		if wide && len(seg)%2 != 0 {
			seg = seg[:len(seg)-1]
		}
		s, err := dec.NewDecoder().Bytes(seg)
		if err != nil {
			s = seg
		}
		parts[i] = string(s)
	}

	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "\x00")
}

// splitTerminated splits data on NUL terminators. Wide terminators are two
// zero bytes on an even offset.
func splitTerminated(data []byte, wide bool) [][]byte {
	var out [][]byte
	start := 0
	if !wide {
		for i, b := range data {
			if b == 0 {
				out = append(out, data[start:i])
				start = i + 1
			}
		}
	} else {
		for i := 0; i+1 < len(data); i += 2 {
			if data[i] == 0 && data[i+1] == 0 {
				out = append(out, data[start:i])
				start = i + 2
			}
		}
	}
	return append(out, data[start:])
}

// encodeText returns a text frame body (encoding byte included) for s.
//
// v2.4 tags get UTF-8. Older versions get Latin-1 when every rune fits,
// UTF-16 with a BOM otherwise.
func encodeText(s string, version byte) ([]byte, error) {
	if version == 4 {
		return append([]byte{encUTF8}, s...), nil
	}

	if latin, err := charmap.ISO8859_1.NewEncoder().String(s); err == nil {
		return append([]byte{encLatin1}, latin...), nil
	}

	wide, err := utf16LEWithBOM.NewEncoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("encode UTF-16 text: %w", err)
	}
	return append([]byte{encUTF16}, wide...), nil
}

// frameText returns the decoded text of a text frame, stripping per-frame
// extras. ok is false when the frame cannot be read (compressed or encrypted).
func frameText(f Frame, version byte) (text string, ok bool) {
	data := f.Data
	switch version {
	case 3:
		if f.Flags&(v23Compressed|v23Encrypted) != 0 {
			return "", false
		}
		if f.Flags&v23Grouping != 0 && len(data) > 0 {
			data = data[1:]
		}
	case 4:
		if f.Flags&(v24Compressed|v24Encrypted) != 0 {
			return "", false
		}
		if f.Flags&v24Grouping != 0 && len(data) > 0 {
			data = data[1:]
		}
		if f.Flags&v24DataLengthInd != 0 && len(data) >= 4 {
			data = data[4:]
		}
		if f.Flags&v24Unsync != 0 {
			data = deunsync(data)
		}
	}

	if len(data) < 1 {
		return "", true
	}
	return decodeText(data[1:], data[0]), true
}
