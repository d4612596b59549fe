package m4a

import (
	"bytes"
	"fmt"

	"github.com/simonhull/tagfix/internal/binary"
)

// Item keys. In MP4, © is stored as byte 0xA9.
const (
	keyTitle  = "\xA9nam"
	keyArtist = "\xA9ART"
)

// containers lists the atoms whose payload is a sequence of child atoms on
// the path to the tags and to the chunk offset tables.
var containers = map[string]bool{
	"moov": true, // Movie container
	"trak": true, // Track container
	"mdia": true, // Media container
	"minf": true, // Media information
	"stbl": true, // Sample table
	"udta": true, // User data
	"meta": true, // Metadata container
	"ilst": true, // iTunes metadata list
}

// box is an in-memory atom. Containers hold children; every other box keeps
// its payload verbatim.
type box struct {
	typ      string
	extended bool
	prefix   []byte // version/flags of a full-box container (meta)
	payload  []byte
	children []*box
	parent   *box
}

// parseBox decodes the atom at the start of data. Items directly inside
// ilst are treated as containers of data atoms.
func parseBox(data []byte, parent *box) (*box, int, error) {
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("truncated atom header")
	}
	size := uint64(binary.Decode[uint32](data, binary.BigEndian))
	b := &box{typ: string(data[4:8]), parent: parent}
	hdr := 8
	switch size {
	case 0:
		size = uint64(len(data))
	case 1:
		if len(data) < 16 {
			return nil, 0, fmt.Errorf("truncated extended atom header")
		}
		size = binary.Decode[uint64](data[8:], binary.BigEndian)
		b.extended = true
		hdr = 16
	}
	if size < uint64(hdr) || size > uint64(len(data)) {
		return nil, 0, fmt.Errorf("atom '%s' has invalid size %d", b.typ, size)
	}

	body := data[hdr:size]
	isItem := parent != nil && parent.typ == "ilst"
	if !containers[b.typ] && !isItem {
		b.payload = bytes.Clone(body)
		return b, int(size), nil
	}

	if b.typ == "meta" && isFullBox(body) {
		b.prefix = bytes.Clone(body[:4])
		body = body[4:]
	}
	for len(body) >= 8 {
		child, n, err := parseBox(body, b)
		if err != nil {
			return nil, 0, err
		}
		b.children = append(b.children, child)
		body = body[n:]
	}
	if len(body) != 0 {
		// Trailing bytes too short for an atom (some writers pad with zeros)
		b.children = append(b.children, &box{typ: "", payload: bytes.Clone(body), parent: b})
	}
	return b, int(size), nil
}

// isFullBox reports whether a meta atom body starts with version/flags
// (ISO style) rather than directly with its hdlr child (QuickTime style).
func isFullBox(body []byte) bool {
	if len(body) >= 8 && string(body[4:8]) == "hdlr" {
		return false
	}
	return len(body) >= 4
}

// size returns the encoded size of the box.
func (b *box) size() uint64 {
	if b.typ == "" {
		return uint64(len(b.payload))
	}
	n := uint64(8)
	if b.extended {
		n = 16
	}
	n += uint64(len(b.prefix))
	if b.children == nil {
		return n + uint64(len(b.payload))
	}
	for _, c := range b.children {
		n += c.size()
	}
	return n
}

// encode appends the serialized box to out.
func (b *box) encode(out []byte) ([]byte, error) {
	if b.typ == "" {
		return append(out, b.payload...), nil
	}
	size := b.size()
	if b.extended {
		out = append(out, 0, 0, 0, 1)
		out = append(out, b.typ...)
		out = append(out, binary.Encode(size, binary.BigEndian)...)
	} else {
		if size > 0xFFFFFFFF {
			return nil, fmt.Errorf("atom '%s' of %d bytes needs a 64-bit size", b.typ, size)
		}
		out = append(out, binary.Encode(uint32(size), binary.BigEndian)...)
		out = append(out, b.typ...)
	}
	out = append(out, b.prefix...)
	if b.children == nil {
		return append(out, b.payload...), nil
	}
	var err error
	for _, c := range b.children {
		if out, err = c.encode(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// child returns the first direct child of the given type.
func (b *box) child(typ string) *box {
	for _, c := range b.children {
		if c.typ == typ {
			return c
		}
	}
	return nil
}

// path follows a chain of child types and returns the last box, or nil.
func (b *box) path(types ...string) *box {
	cur := b
	for _, t := range types {
		if cur = cur.child(t); cur == nil {
			return nil
		}
	}
	return cur
}

// ensure returns the child of the given type, appending newBox() when absent.
func (b *box) ensure(typ string, newBox func() *box) *box {
	if c := b.child(typ); c != nil {
		return c
	}
	c := newBox()
	c.parent = b
	b.children = append(b.children, c)
	return c
}

// walk calls f for b and every descendant.
func (b *box) walk(f func(*box)) {
	f(b)
	for _, c := range b.children {
		c.walk(f)
	}
}
