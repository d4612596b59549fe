package mp3

import (
	"fmt"

	binutil "github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/id3"
	"github.com/simonhull/tagfix/internal/types"
)

// layout locates the tags around an MPEG or ADTS stream:
//
//	[ID3v2 tag][audio frames][ID3v1 tag]
//
// Either tag may be missing.
type layout struct {
	v2      *id3.Tag
	v2Size  int64  // bytes taken by the ID3v2 tag, footer included
	v1      []byte // raw ID3v1 tag, nil when absent
	audioAt int64
	audioN  int64
}

// readLayout finds and decodes the tags of the file behind sr.
func readLayout(sr *binutil.SafeReader) (*layout, error) {
	l := &layout{}
	size := sr.Size()

	if size >= id3.HeaderSize {
		hdr, err := sr.Bytes(0, id3.HeaderSize, "ID3v2 header")
		if err != nil {
			return nil, err
		}
		if string(hdr[0:3]) == "ID3" {
			h, err := id3.ReadHeader(hdr)
			if err != nil {
				return nil, &types.UnsupportedFormatError{Path: sr.Path(), Reason: err.Error()}
			}
			if h.TotalSize() > size {
				return nil, &types.CorruptedFileError{
					Path:   sr.Path(),
					Offset: 0,
					Reason: fmt.Sprintf("ID3v2 tag of %d bytes exceeds file size %d", h.TotalSize(), size),
				}
			}
			data, err := sr.Bytes(0, h.TotalSize(), "ID3v2 tag")
			if err != nil {
				return nil, err
			}
			if l.v2, err = id3.Parse(data); err != nil {
				return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: 0, Reason: err.Error()}
			}
			l.v2Size = h.TotalSize()
		}
	}

	end := size
	if size-l.v2Size >= id3.V1Size {
		tail, err := sr.Bytes(size-id3.V1Size, id3.V1Size, "ID3v1 tag")
		if err != nil {
			return nil, err
		}
		if id3.IsV1(tail) {
			l.v1 = tail
			end -= id3.V1Size
		}
	}

	l.audioAt = l.v2Size
	l.audioN = end - l.v2Size
	return l, nil
}

// tags returns Title and Artist, preferring ID3v2 and falling back to
// ID3v1 per field.
func (l *layout) tags() types.Tags {
	var tags types.Tags
	if l.v2 != nil {
		tags = l.v2.Tags()
	}
	if l.v1 != nil {
		v1 := id3.ReadV1(l.v1)
		if tags.Title.IsZero() {
			tags.Title = v1.Title
		}
		if tags.Artist.IsZero() {
			tags.Artist = v1.Artist
		}
	}
	return tags
}
