// Package vorbis reads and writes Vorbis comment blocks.
//
// Vorbis comments are used by both FLAC and Ogg Vorbis/Opus. The layout is
// identical: a little-endian length-prefixed vendor string followed by a
// count of little-endian length-prefixed UTF-8 "KEY=VALUE" strings.
package vorbis

import (
	"fmt"
	"strings"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// Field keys for the tags this module rewrites.
const (
	KeyTitle  = "TITLE"
	KeyArtist = "ARTIST"
)

// maxComments bounds the declared comment count before any allocation.
const maxComments = 1 << 20

// Comments is a decoded comment block. Entries keep their original order and
// spelling so untouched comments are written back byte-for-byte.
type Comments struct {
	Vendor  string
	Entries []string
}

// Decode parses a comment block from the start of data and returns it along
// with the number of bytes consumed.
func Decode(data []byte) (*Comments, int, error) {
	off := 0
	next := func(what string) (string, error) {
		if len(data)-off < 4 {
			return "", fmt.Errorf("truncated %s length at offset %d", what, off)
		}
		n := int(binary.Decode[uint32](data[off:], binary.LittleEndian))
		off += 4
		if n < 0 || n > len(data)-off {
			return "", fmt.Errorf("%s length %d exceeds remaining %d bytes", what, n, len(data)-off)
		}
		s := string(data[off : off+n])
		off += n
		return s, nil
	}

	vendor, err := next("vendor")
	if err != nil {
		return nil, 0, err
	}

	if len(data)-off < 4 {
		return nil, 0, fmt.Errorf("truncated comment count at offset %d", off)
	}
	count := binary.Decode[uint32](data[off:], binary.LittleEndian)
	off += 4
	if count > maxComments {
		return nil, 0, fmt.Errorf("comment count %d exceeds limit", count)
	}

	c := &Comments{Vendor: vendor, Entries: make([]string, 0, min(count, 64))}
	for i := range count {
		entry, err := next(fmt.Sprintf("comment %d", i))
		if err != nil {
			return nil, 0, err
		}
		c.Entries = append(c.Entries, entry)
	}
	return c, off, nil
}

// Encode serializes the block. The Ogg Vorbis framing bit is not included.
func (c *Comments) Encode() []byte {
	size := 8 + len(c.Vendor)
	for _, e := range c.Entries {
		size += 4 + len(e)
	}
	out := make([]byte, 0, size)
	out = append(out, binary.Encode(uint32(len(c.Vendor)), binary.LittleEndian)...)
	out = append(out, c.Vendor...)
	out = append(out, binary.Encode(uint32(len(c.Entries)), binary.LittleEndian)...)
	for _, e := range c.Entries {
		out = append(out, binary.Encode(uint32(len(e)), binary.LittleEndian)...)
		out = append(out, e...)
	}
	return out
}

// splitEntry splits "KEY=VALUE". Entries without '=' are reported as not ok.
func splitEntry(entry string) (key, value string, ok bool) {
	return strings.Cut(entry, "=")
}

// Values returns every value stored under key, compared case-insensitively.
func (c *Comments) Values(key string) []string {
	var out []string
	for _, e := range c.Entries {
		if k, v, ok := splitEntry(e); ok && strings.EqualFold(k, key) {
			out = append(out, v)
		}
	}
	return out
}

// TagValue returns the values under key as a TagValue: Text for a single
// comment, List when the key repeats.
func (c *Comments) TagValue(key string) types.TagValue {
	values := c.Values(key)
	switch len(values) {
	case 0:
		return types.TagValue{}
	case 1:
		return types.Text(values[0])
	default:
		return types.List(values...)
	}
}

// Replace swaps every comment under key for values. The new comments take
// the position of the first existing one (appended when the key was absent)
// and keep its key spelling.
func (c *Comments) Replace(key string, values []string) {
	spelling := key
	insertAt := -1
	kept := c.Entries[:0:0]
	for _, e := range c.Entries {
		if k, _, ok := splitEntry(e); ok && strings.EqualFold(k, key) {
			if insertAt < 0 {
				insertAt = len(kept)
				spelling = k
			}
			continue
		}
		kept = append(kept, e)
	}
	if insertAt < 0 {
		insertAt = len(kept)
	}

	fresh := make([]string, len(values))
	for i, v := range values {
		fresh[i] = spelling + "=" + v
	}

	out := make([]string, 0, len(kept)+len(fresh))
	out = append(out, kept[:insertAt]...)
	out = append(out, fresh...)
	out = append(out, kept[insertAt:]...)
	c.Entries = out
}

// ReadTags fills tags from the TITLE and ARTIST comments.
func (c *Comments) ReadTags(tags *types.Tags) {
	tags.Title = c.TagValue(KeyTitle)
	tags.Artist = c.TagValue(KeyArtist)
}

// ApplyTags writes tags back into the block. Fields that are absent in tags
// are left as they are.
func (c *Comments) ApplyTags(tags *types.Tags) {
	if !tags.Title.IsZero() {
		c.Replace(KeyTitle, tags.Title.Values())
	}
	if !tags.Artist.IsZero() {
		c.Replace(KeyArtist, tags.Artist.Values())
	}
}
