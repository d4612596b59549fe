// Package id3 reads and rewrites the title and artist frames of ID3v2 tags,
// and the matching fields of a trailing ID3v1 tag.
//
// ID3v2.2, 2.3 and 2.4 are understood. Frames other than the title and
// artist frames are carried through a rewrite untouched.
package id3

import (
	"bytes"
	"fmt"

	binutil "github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// HeaderSize is the size of the ID3v2 header (and footer).
const HeaderSize = 10

// Header flags
const (
	flagUnsync   = 0x80
	flagExtended = 0x40 // v2.2: compression
	flagFooter   = 0x10
)

// Frame flags (second flag byte)
const (
	v23Compressed = 0x0080
	v23Encrypted  = 0x0040
	v23Grouping   = 0x0020

	v24Grouping      = 0x0040
	v24Compressed    = 0x0008
	v24Encrypted     = 0x0004
	v24Unsync        = 0x0002
	v24DataLengthInd = 0x0001
)

// Header is a decoded ID3v2 tag header.
type Header struct {
	Version  byte   // Major version (2, 3 or 4)
	Revision byte   // Minor version
	Flags    byte   // Header flags
	Size     uint32 // Tag size excluding header and footer, decoded from synchsafe
}

// TotalSize returns the number of bytes the tag occupies on disk.
func (h Header) TotalSize() int64 {
	n := int64(HeaderSize) + int64(h.Size)
	if h.Version == 4 && h.Flags&flagFooter != 0 {
		n += HeaderSize
	}
	return n
}

// ReadHeader decodes the 10-byte header at the start of b.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize || string(b[0:3]) != "ID3" {
		return Header{}, fmt.Errorf("missing ID3v2 header")
	}
	h := Header{
		Version:  b[3],
		Revision: b[4],
		Flags:    b[5],
		Size:     decodeSynchsafe(b[6:10]),
	}
	if h.Version < 2 || h.Version > 4 {
		return Header{}, fmt.Errorf("unsupported ID3v2 version: 2.%d", h.Version)
	}
	return h, nil
}

// Frame is a single ID3v2 frame. Data is the frame body as stored, after
// any whole-tag unsynchronisation has been reversed.
type Frame struct {
	ID    string
	Flags uint16
	Data  []byte
}

// Tag is a decoded ID3v2 tag.
type Tag struct {
	Version  byte
	Revision byte
	Frames   []Frame

	// Size is the body size declared in the original header. Render pads
	// up to it so audio data keeps its offset.
	Size uint32

	// Incomplete is set when frame parsing stopped before the padding or
	// the end of the tag. Frames holds only what was read, so rendering
	// the tag would drop the rest.
	Incomplete bool

	Warnings []types.Warning
}

// NewTag returns an empty ID3v2.4 tag.
func NewTag() *Tag {
	return &Tag{Version: 4}
}

// Parse decodes a complete tag, header included. Frames that cannot be read
// end frame parsing with a warning rather than an error, and mark the tag
// Incomplete.
func Parse(data []byte) (*Tag, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	t := &Tag{Version: h.Version, Revision: h.Revision, Size: h.Size}

	end := min(int64(HeaderSize)+int64(h.Size), int64(len(data)))
	if end < int64(HeaderSize)+int64(h.Size) {
		t.warn("tag extends past end of data", int64(len(data)))
	}
	body := data[HeaderSize:end]

	if h.Version == 2 && h.Flags&flagExtended != 0 {
		t.stop("compressed ID3v2.2 tag not supported", 5)
		return t, nil
	}

	// Whole-tag unsynchronisation (v2.2/v2.3). v2.4 marks it per frame.
	if h.Version < 4 && h.Flags&flagUnsync != 0 {
		body = deunsync(body)
	}

	if h.Flags&flagExtended != 0 && h.Version >= 3 {
		skip, err := extendedHeaderSize(body, h.Version)
		if err != nil {
			t.stop(err.Error(), HeaderSize)
			return t, nil
		}
		body = body[skip:]
		t.warn("extended header is not kept on rewrite", HeaderSize)
	}
	if h.Version == 4 && h.Flags&flagFooter != 0 {
		t.warn("footer is not kept on rewrite", int64(HeaderSize)+int64(h.Size))
	}

	t.parseFrames(body)
	return t, nil
}

// extendedHeaderSize returns the number of body bytes taken by the extended header.
func extendedHeaderSize(body []byte, version byte) (int, error) {
	if len(body) < 4 {
		return 0, fmt.Errorf("truncated extended header")
	}
	var n int
	if version == 4 {
		// v2.4: synchsafe size including the size field itself
		n = int(decodeSynchsafe(body[0:4]))
	} else {
		// v2.3: size excludes the size field
		n = int(binutil.Decode[uint32](body, binutil.BigEndian)) + 4
	}
	if n < 4 || n > len(body) {
		return 0, fmt.Errorf("invalid extended header size %d", n)
	}
	return n, nil
}

// frameHeaderSize returns the frame header length for the tag version.
func frameHeaderSize(version byte) int {
	if version == 2 {
		return 6
	}
	return 10
}

func (t *Tag) parseFrames(body []byte) {
	hs := frameHeaderSize(t.Version)
	offset := 0
	for offset+hs <= len(body) {
		hdr := body[offset : offset+hs]

		// Padding (null bytes indicate end of frames)
		if hdr[0] == 0 {
			return
		}

		var id string
		var size int
		var flags uint16
		switch t.Version {
		case 2:
			id = string(hdr[0:3])
			size = int(hdr[3])<<16 | int(hdr[4])<<8 | int(hdr[5])
		case 3:
			id = string(hdr[0:4])
			size = int(binutil.Decode[uint32](hdr[4:8], binutil.BigEndian))
			flags = binutil.Decode[uint16](hdr[8:10], binutil.BigEndian)
		default:
			id = string(hdr[0:4])
			size = t.v24FrameSize(body, offset)
			flags = binutil.Decode[uint16](hdr[8:10], binutil.BigEndian)
		}

		if !validFrameID(id) {
			t.stop(fmt.Sprintf("invalid frame ID %q", id), int64(HeaderSize+offset))
			return
		}
		if size > len(body)-offset-hs {
			t.stop(fmt.Sprintf("frame %s size %d exceeds tag", id, size), int64(HeaderSize+offset))
			return
		}

		data := bytes.Clone(body[offset+hs : offset+hs+size])
		t.Frames = append(t.Frames, Frame{ID: id, Flags: flags, Data: data})
		offset += hs + size
	}
}

// v24FrameSize returns the size of the v2.4 frame at offset. Some writers
// (iTunes among them) store plain big-endian sizes instead of synchsafe
// ones; the big-endian reading is used when only it lands on the next
// frame, the padding or the end of the tag.
func (t *Tag) v24FrameSize(body []byte, offset int) int {
	raw := body[offset+4 : offset+8]
	synchsafe := int(decodeSynchsafe(raw))
	plain := int(binutil.Decode[uint32](raw, binutil.BigEndian))
	if plain == synchsafe {
		return synchsafe
	}

	next := offset + frameHeaderSize(4)
	validSynchsafe := (raw[0]|raw[1]|raw[2]|raw[3])&0x80 == 0 && frameBoundary(body, next+synchsafe)
	if !validSynchsafe && frameBoundary(body, next+plain) {
		t.warn("frame size is not synchsafe, read as big-endian", int64(HeaderSize+offset))
		return plain
	}
	return synchsafe
}

// frameBoundary reports whether pos in a v2.4 body is the end of the body,
// the start of the padding, or the header of a frame that fits.
func frameBoundary(body []byte, pos int) bool {
	const hs = 10
	switch {
	case pos == len(body):
		return true
	case pos < 0 || pos > len(body):
		return false
	case body[pos] == 0:
		return true
	case pos+hs > len(body):
		return false
	}
	if !validFrameID(string(body[pos : pos+4])) {
		return false
	}
	remaining := len(body) - pos - hs
	raw := body[pos+4 : pos+8]
	return int(decodeSynchsafe(raw)) <= remaining ||
		int(binutil.Decode[uint32](raw, binutil.BigEndian)) <= remaining
}

// stop records why frame parsing ended early and marks the tag incomplete.
func (t *Tag) stop(message string, offset int64) {
	t.Incomplete = true
	t.warn(message, offset)
}

func (t *Tag) warn(message string, offset int64) {
	t.Warnings = append(t.Warnings, types.Warning{Stage: "metadata", Message: message, Offset: offset})
}

// validFrameID reports whether id consists of uppercase letters and digits.
func validFrameID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// decodeSynchsafe decodes a synchsafe integer (7 bits per byte)
// ID3v2 uses 7-bit encoding where bit 7 is always 0
func decodeSynchsafe(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

// encodeSynchsafe is the inverse of decodeSynchsafe. v must be below 2^28.
func encodeSynchsafe(v uint32) []byte {
	return []byte{
		byte(v>>21) & 0x7F,
		byte(v>>14) & 0x7F,
		byte(v>>7) & 0x7F,
		byte(v) & 0x7F,
	}
}

// deunsync reverses unsynchronisation: every 0xFF 0x00 becomes 0xFF.
func deunsync(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}
