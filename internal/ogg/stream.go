package ogg

import (
	"bytes"
	"fmt"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
	"github.com/simonhull/tagfix/internal/vorbis"
)

// codec describes how a codec stores its comment header.
type codec struct {
	format types.Format
	// headers is the number of header packets before audio data.
	headers int
	// commentPrefix starts the comment header packet.
	commentPrefix []byte
	// framingBit is appended after the comments (Vorbis only).
	framingBit bool
}

var (
	vorbisCodec = codec{
		format:        types.FormatOgg,
		headers:       3,
		commentPrefix: []byte("\x03vorbis"),
		framingBit:    true,
	}
	opusCodec = codec{
		format:        types.FormatOpus,
		headers:       2,
		commentPrefix: []byte("OpusTags"),
	}
)

// detectCodec determines whether this is Vorbis or Opus
// by examining the magic marker in the first packet.
func detectCodec(firstPacket []byte) (codec, bool) {
	switch {
	case bytes.HasPrefix(firstPacket, []byte("OpusHead")):
		return opusCodec, true
	case bytes.HasPrefix(firstPacket, []byte("\x01vorbis")):
		return vorbisCodec, true
	}
	return codec{}, false
}

// stream holds the header packets of the first logical bitstream.
type stream struct {
	codec   codec
	serial  uint32
	packets [][]byte

	// pages is the number of pages the header packets span and end is the
	// offset just past the last of them.
	pages int
	end   int64

	// shared is set when audio data begins on the page that finishes the
	// last header packet.
	shared bool
}

// readStream reads pages from the start of the file until every header
// packet of the codec has been assembled.
func readStream(sr *binary.SafeReader) (*stream, error) {
	s := &stream{}
	var packet []byte
	offset := int64(0)

	for {
		page, next, err := readPage(sr, offset)
		if err != nil {
			return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: offset, Reason: err.Error()}
		}

		if s.pages == 0 {
			if page.HeaderType&flagBOS == 0 {
				return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: offset, Reason: "first Ogg page is not a stream start"}
			}
			s.serial = page.SerialNumber
		} else if page.SerialNumber != s.serial {
			return nil, &types.UnsupportedFormatError{Path: sr.Path(), Reason: "multiplexed Ogg streams are not supported"}
		}
		s.pages++

		data := page.Data
		for i, seg := range page.Segments {
			packet = append(packet, data[:seg]...)
			data = data[seg:]
			if seg == 255 {
				continue
			}

			s.packets = append(s.packets, packet)
			packet = nil

			if len(s.packets) == 1 {
				c, ok := detectCodec(s.packets[0])
				if !ok {
					return nil, &types.UnsupportedFormatError{Path: sr.Path(), Reason: "unknown Ogg codec"}
				}
				s.codec = c
			}
			if len(s.packets) == s.codec.headers {
				s.end = next
				s.shared = i != len(page.Segments)-1
				return s, nil
			}
		}
		offset = next
	}
}

// comments decodes the comment header packet.
func (s *stream) comments() (*vorbis.Comments, []byte, error) {
	packet := s.packets[1]
	prefix := s.codec.commentPrefix
	if !bytes.HasPrefix(packet, prefix) {
		return nil, nil, fmt.Errorf("comment header missing %q marker", prefix)
	}
	c, n, err := vorbis.Decode(packet[len(prefix):])
	if err != nil {
		return nil, nil, err
	}
	return c, packet[len(prefix)+n:], nil
}

// commentPacket builds a comment header packet. trailer is whatever followed
// the comments in the original packet.
func (s *stream) commentPacket(c *vorbis.Comments, trailer []byte) []byte {
	out := append([]byte{}, s.codec.commentPrefix...)
	out = append(out, c.Encode()...)
	if len(trailer) == 0 && s.codec.framingBit {
		trailer = []byte{0x01}
	}
	return append(out, trailer...)
}
