// Package riff reads and rewrites the title and artist of WAV files.
//
// Two places are consulted: an ID3v2 tag stored in an "id3 " chunk, and the
// INAM/IART entries of a LIST/INFO chunk. The ID3 tag wins when both hold a
// field.
package riff

import (
	"fmt"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// riffHeaderSize covers "RIFF", the form size and the "WAVE" form type.
const riffHeaderSize = 12

// chunk is a top-level chunk inside the RIFF form.
type chunk struct {
	ID     string
	Offset int64 // offset of the chunk header
	Size   uint32
}

// DataOffset returns the offset of the chunk body.
func (c chunk) DataOffset() int64 {
	return c.Offset + 8
}

// Next returns the offset of the following chunk. Bodies of odd size are
// followed by a pad byte.
func (c chunk) Next() int64 {
	return c.DataOffset() + int64(c.Size) + int64(c.Size&1)
}

func (c chunk) isID3() bool {
	return c.ID == "id3 " || c.ID == "ID3 "
}

// form is the chunk layout of a WAV file.
type form struct {
	chunks []chunk
	end    int64 // end of the last chunk, never past the file
}

// readForm checks the RIFF/WAVE header and lists the chunks it declares.
func readForm(sr *binary.SafeReader) (*form, error) {
	hdr, err := sr.Bytes(0, riffHeaderSize, "RIFF header")
	if err != nil {
		return nil, &types.UnsupportedFormatError{Path: sr.Path(), Reason: "file too small for RIFF header"}
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return nil, &types.UnsupportedFormatError{Path: sr.Path(), Reason: "not a RIFF/WAVE file"}
	}

	// Some writers leave the form size stale; stop at whichever end comes first
	end := min(8+int64(binary.Decode[uint32](hdr[4:], binary.LittleEndian)), sr.Size())

	f := &form{end: riffHeaderSize}
	offset := int64(riffHeaderSize)
	for offset+8 <= end {
		id, err := sr.Bytes(offset, 4, "chunk ID")
		if err != nil {
			return nil, err
		}
		size, err := binary.ReadLE[uint32](sr, offset+4, "chunk size")
		if err != nil {
			return nil, err
		}
		c := chunk{ID: string(id), Offset: offset, Size: size}
		if c.DataOffset()+int64(size) > sr.Size() {
			return nil, &types.CorruptedFileError{
				Path:   sr.Path(),
				Offset: offset,
				Reason: fmt.Sprintf("chunk '%s' of %d bytes overruns the file", c.ID, size),
			}
		}
		f.chunks = append(f.chunks, c)
		offset = min(c.Next(), sr.Size())
		f.end = offset
	}
	return f, nil
}
