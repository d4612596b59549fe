package id3

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/tagfix/internal/types"
)

// V1Size is the size of an ID3v1 tag.
const V1Size = 128

// ID3v1 field layout
const (
	v1TitleOffset  = 3
	v1ArtistOffset = 33
	v1FieldLen     = 30
)

// IsV1 reports whether b is an ID3v1 tag.
func IsV1(b []byte) bool {
	return len(b) == V1Size && string(b[0:3]) == "TAG"
}

// ReadV1 returns the title and artist of an ID3v1 tag.
func ReadV1(b []byte) types.Tags {
	return types.Tags{
		Title:  v1Field(b[v1TitleOffset : v1TitleOffset+v1FieldLen]),
		Artist: v1Field(b[v1ArtistOffset : v1ArtistOffset+v1FieldLen]),
	}
}

// v1Field decodes a NUL or space padded Latin-1 field.
func v1Field(b []byte) types.TagValue {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	b = bytes.TrimRight(b, " ")
	if len(b) == 0 {
		return types.TagValue{}
	}

	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = charmap.ISO8859_1.DecodeByte(c)
	}
	return types.Text(string(runes))
}

// UpdateV1 returns a copy of the ID3v1 tag b with title and artist replaced.
// Values are truncated to 30 bytes; runes outside Latin-1 become '?'.
func UpdateV1(b []byte, tags *types.Tags) []byte {
	out := bytes.Clone(b)
	if !tags.Title.IsZero() {
		putV1Field(out[v1TitleOffset:v1TitleOffset+v1FieldLen], tags.Title.First())
	}
	if !tags.Artist.IsZero() {
		putV1Field(out[v1ArtistOffset:v1ArtistOffset+v1FieldLen], tags.Artist.First())
	}
	return out
}

func putV1Field(dst []byte, s string) {
	clear(dst)
	i := 0
	for _, r := range s {
		if i == len(dst) {
			return
		}
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = '?'
		}
		dst[i] = c
		i++
	}
}
