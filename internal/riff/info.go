package riff

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// INFO entry IDs
const (
	infoTitle  = "INAM"
	infoArtist = "IART"
)

// infoEntry is one subchunk of a LIST/INFO chunk.
type infoEntry struct {
	ID   string
	Data []byte
}

// info is a decoded LIST/INFO chunk body, list type excluded.
type info struct {
	entries []infoEntry
}

// isInfoList reports whether a LIST chunk body is of type INFO.
func isInfoList(body []byte) bool {
	return len(body) >= 4 && string(body[0:4]) == "INFO"
}

// parseInfo decodes the subchunks of a LIST/INFO body.
func parseInfo(body []byte) (*info, error) {
	if !isInfoList(body) {
		return nil, fmt.Errorf("not an INFO list")
	}
	in := &info{}
	p := body[4:]
	for len(p) >= 8 {
		id := string(p[0:4])
		size := int(binary.Decode[uint32](p[4:], binary.LittleEndian))
		if size > len(p)-8 {
			return in, fmt.Errorf("INFO entry %q of %d bytes overruns the list", id, size)
		}
		in.entries = append(in.entries, infoEntry{ID: id, Data: bytes.Clone(p[8 : 8+size])})
		p = p[min(8+size+size&1, len(p)):]
	}
	return in, nil
}

// value returns the entry text. INFO strings are NUL terminated; only the
// terminator is removed, interior NULs are part of the value.
func (in *info) value(id string) types.TagValue {
	for _, e := range in.entries {
		if e.ID != id {
			continue
		}
		b := bytes.TrimRight(e.Data, "\x00")
		if utf8.Valid(b) {
			return types.Text(string(b))
		}
		s, err := charmap.Windows1252.NewDecoder().Bytes(b)
		if err != nil {
			return types.Text(string(b))
		}
		return types.Text(string(s))
	}
	return types.TagValue{}
}

// set replaces the first entry id (dropping duplicates) or appends one.
// Absent values leave the list alone.
func (in *info) set(id string, v types.TagValue) {
	if v.IsZero() {
		return
	}
	data := append([]byte(strings.Join(v.Values(), "/")), 0)

	replaced := false
	entries := in.entries[:0:0]
	for _, e := range in.entries {
		if e.ID != id {
			entries = append(entries, e)
			continue
		}
		if !replaced {
			entries = append(entries, infoEntry{ID: id, Data: data})
			replaced = true
		}
	}
	if !replaced {
		entries = append(entries, infoEntry{ID: id, Data: data})
	}
	in.entries = entries
}

// encode returns the LIST chunk body, list type included.
func (in *info) encode() []byte {
	out := []byte("INFO")
	for _, e := range in.entries {
		out = append(out, e.ID...)
		out = append(out, binary.Encode(uint32(len(e.Data)), binary.LittleEndian)...)
		out = append(out, e.Data...)
		if len(e.Data)&1 == 1 {
			out = append(out, 0)
		}
	}
	return out
}
