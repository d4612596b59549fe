package id3

import (
	"bytes"
	"fmt"
	"strings"

	binutil "github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// DefaultPadding is appended when a rewritten tag no longer fits in the
// space the original occupied.
const DefaultPadding = 1024

// maxTagSize is the largest body a synchsafe size can describe.
const maxTagSize = 1<<28 - 1

// frameIDs returns the title and artist frame IDs for a tag version.
func frameIDs(version byte) (title, artist string) {
	if version == 2 {
		return "TT2", "TP1"
	}
	return "TIT2", "TPE1"
}

// Tags returns the title and artist held by the tag. ID3 stores one text
// string per frame; several values appear joined by NUL, exactly as stored.
func (t *Tag) Tags() types.Tags {
	titleID, artistID := frameIDs(t.Version)
	return types.Tags{
		Title:  t.text(titleID),
		Artist: t.text(artistID),
	}
}

func (t *Tag) text(id string) types.TagValue {
	for _, f := range t.Frames {
		if f.ID != id {
			continue
		}
		s, ok := frameText(f, t.Version)
		if !ok {
			t.warn(fmt.Sprintf("frame %s is compressed or encrypted, skipped", id), 0)
			return types.TagValue{}
		}
		return types.Text(s)
	}
	return types.TagValue{}
}

// Apply replaces the title and artist frames with the values in tags.
// Absent values leave the existing frames alone. The new frame takes the
// position of the first existing one; duplicates are dropped.
func (t *Tag) Apply(tags *types.Tags) error {
	titleID, artistID := frameIDs(t.Version)
	if err := t.setText(titleID, tags.Title); err != nil {
		return err
	}
	return t.setText(artistID, tags.Artist)
}

func (t *Tag) setText(id string, v types.TagValue) error {
	if v.IsZero() {
		return nil
	}

	sep := "/"
	if t.Version == 4 {
		sep = "\x00"
	}
	data, err := encodeText(strings.Join(v.Values(), sep), t.Version)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	frame := Frame{ID: id, Data: data}

	replaced := false
	frames := t.Frames[:0:0]
	for _, f := range t.Frames {
		if f.ID != id {
			frames = append(frames, f)
			continue
		}
		if !replaced {
			frames = append(frames, frame)
			replaced = true
		}
	}
	if !replaced {
		frames = append(frames, frame)
	}
	t.Frames = frames
	return nil
}

// Render serializes the tag. The extended header and footer are not
// written and header flags are cleared. When the frames fit in the size the
// tag was read with, the remainder is padding; otherwise DefaultPadding
// bytes of padding are added.
func (t *Tag) Render() ([]byte, error) {
	var body bytes.Buffer
	for _, f := range t.Frames {
		hdr, err := t.frameHeader(f)
		if err != nil {
			return nil, err
		}
		body.Write(hdr)
		body.Write(f.Data)
	}

	size := int64(body.Len())
	switch {
	case size <= int64(t.Size):
		size = int64(t.Size)
	default:
		size += DefaultPadding
	}
	if size > maxTagSize {
		return nil, fmt.Errorf("ID3v2 tag of %d bytes exceeds size limit", size)
	}

	out := make([]byte, 0, HeaderSize+size)
	out = append(out, 'I', 'D', '3', t.Version, t.Revision, 0)
	out = append(out, encodeSynchsafe(uint32(size))...)
	out = append(out, body.Bytes()...)
	out = append(out, make([]byte, size-int64(body.Len()))...)
	return out, nil
}

func (t *Tag) frameHeader(f Frame) ([]byte, error) {
	n := len(f.Data)
	switch t.Version {
	case 2:
		if len(f.ID) != 3 || n > 1<<24-1 {
			return nil, fmt.Errorf("frame %s cannot be stored in ID3v2.2", f.ID)
		}
		return []byte{f.ID[0], f.ID[1], f.ID[2], byte(n >> 16), byte(n >> 8), byte(n)}, nil
	case 3:
		hdr := append([]byte(f.ID), binutil.Encode(uint32(n), binutil.BigEndian)...)
		return append(hdr, binutil.Encode(f.Flags, binutil.BigEndian)...), nil
	default:
		if n > maxTagSize {
			return nil, fmt.Errorf("frame %s of %d bytes exceeds size limit", f.ID, n)
		}
		hdr := append([]byte(f.ID), encodeSynchsafe(uint32(n))...)
		return append(hdr, binutil.Encode(f.Flags, binutil.BigEndian)...), nil
	}
}
