package asf

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// Content Description fields, in storage order.
const (
	fieldTitle = iota
	fieldAuthor
	fieldCopyright
	fieldDescription
	fieldRating
	fieldCount
)

// description holds the raw UTF-16LE fields of a Content Description
// Object, terminators included.
type description struct {
	fields [fieldCount][]byte
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// parseDescription decodes a Content Description Object body.
func parseDescription(body []byte) (*description, error) {
	if len(body) < 2*fieldCount {
		return nil, fmt.Errorf("content description of %d bytes is truncated", len(body))
	}
	d := &description{}
	p := body[2*fieldCount:]
	for i := range fieldCount {
		n := int(binary.Decode[uint16](body[2*i:], binary.LittleEndian))
		if n > len(p) {
			return nil, fmt.Errorf("content description field %d overruns the object", i)
		}
		d.fields[i] = p[:n]
		p = p[n:]
	}
	return d, nil
}

// value decodes field i. One trailing NUL is the terminator; any other NUL
// is part of the value. Empty fields are absent.
func (d *description) value(i int) types.TagValue {
	if len(d.fields[i]) == 0 {
		return types.TagValue{}
	}
	s, err := utf16le.NewDecoder().Bytes(d.fields[i])
	if err != nil {
		return types.TagValue{}
	}
	text := strings.TrimSuffix(string(s), "\x00")
	if text == "" {
		return types.TagValue{}
	}
	return types.Text(text)
}

// set stores v in field i. Absent values leave the field alone.
func (d *description) set(i int, v types.TagValue) error {
	if v.IsZero() {
		return nil
	}
	b, err := utf16le.NewEncoder().Bytes([]byte(strings.Join(v.Values(), "/") + "\x00"))
	if err != nil {
		return err
	}
	if len(b) > 0xFFFF {
		return fmt.Errorf("field of %d bytes exceeds the 64 KiB limit", len(b))
	}
	d.fields[i] = b
	return nil
}

// encode serializes the object body.
func (d *description) encode() []byte {
	var out []byte
	for _, f := range d.fields {
		out = append(out, binary.Encode(uint16(len(f)), binary.LittleEndian)...)
	}
	for _, f := range d.fields {
		out = append(out, f...)
	}
	return out
}
