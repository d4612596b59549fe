// Package ogg reads and rewrites the comment header of Ogg Vorbis and Ogg
// Opus streams.
package ogg

import (
	"fmt"

	"github.com/simonhull/tagfix/internal/binary"
)

// Header type flags
const (
	flagContinued = 0x01
	flagBOS       = 0x02
	flagEOS       = 0x04
)

// pageHeaderSize is the fixed part of a page header, before the segment table.
const pageHeaderSize = 27

// maxSegments is the largest segment table a page can carry.
const maxSegments = 255

// noGranule marks a page on which no packet ends.
const noGranule = ^uint64(0)

// Page represents an Ogg page.
//
// An Ogg page is the fundamental unit of the Ogg container format.
// Each page contains a header and payload data.
type Page struct {
	HeaderType      byte   // Bit flags: 0x01=continued, 0x02=BOS, 0x04=EOS
	GranulePosition uint64 // Codec-defined position, noGranule when unset
	SerialNumber    uint32 // Logical bitstream identifier
	SequenceNumber  uint32 // Page sequence number
	Segments        []byte // Lacing values
	Data            []byte // Page payload (one or more packets)
}

// readPage reads an Ogg page at the given offset.
//
// Returns the page, next offset, and any error encountered.
func readPage(sr *binary.SafeReader, offset int64) (*Page, int64, error) {
	hdr, err := sr.Bytes(offset, pageHeaderSize, "Ogg page header")
	if err != nil {
		return nil, 0, err
	}
	if string(hdr[0:4]) != "OggS" {
		return nil, 0, fmt.Errorf("invalid Ogg page at offset %d", offset)
	}
	if hdr[4] != 0 {
		return nil, 0, fmt.Errorf("unsupported Ogg version: %d", hdr[4])
	}

	segments, err := sr.Bytes(offset+pageHeaderSize, int64(hdr[26]), "segment table")
	if err != nil {
		return nil, 0, err
	}

	dataSize := 0
	for _, seg := range segments {
		dataSize += int(seg)
	}

	dataOffset := offset + pageHeaderSize + int64(len(segments))
	data, err := sr.Bytes(dataOffset, int64(dataSize), "page data")
	if err != nil {
		return nil, 0, err
	}

	page := &Page{
		HeaderType:      hdr[5],
		GranulePosition: binary.Decode[uint64](hdr[6:14], binary.LittleEndian),
		SerialNumber:    binary.Decode[uint32](hdr[14:18], binary.LittleEndian),
		SequenceNumber:  binary.Decode[uint32](hdr[18:22], binary.LittleEndian),
		Segments:        segments,
		Data:            data,
	}
	return page, dataOffset + int64(dataSize), nil
}

// Encode serializes the page with a freshly computed checksum.
func (p *Page) Encode() []byte {
	out := make([]byte, 0, pageHeaderSize+len(p.Segments)+len(p.Data))
	out = append(out, 'O', 'g', 'g', 'S', 0, p.HeaderType)
	out = append(out, binary.Encode(p.GranulePosition, binary.LittleEndian)...)
	out = append(out, binary.Encode(p.SerialNumber, binary.LittleEndian)...)
	out = append(out, binary.Encode(p.SequenceNumber, binary.LittleEndian)...)
	out = append(out, 0, 0, 0, 0) // checksum placeholder
	out = append(out, byte(len(p.Segments)))
	out = append(out, p.Segments...)
	out = append(out, p.Data...)

	copy(out[22:26], binary.Encode(checksum(out), binary.LittleEndian))
	return out
}

// packetEnds reports whether the last segment on the page finishes a packet.
func (p *Page) packetEnds() bool {
	return len(p.Segments) > 0 && p.Segments[len(p.Segments)-1] < 255
}

// lacing returns the segment table entries for a packet of n bytes.
func lacing(n int) []byte {
	out := make([]byte, 0, n/255+1)
	for n >= 255 {
		out = append(out, 255)
		n -= 255
	}
	return append(out, byte(n))
}

// paginate lays packets out on pages starting at sequence number seq. The
// first packet gets a page of its own; the rest share pages as space allows.
func paginate(packets [][]byte, serial, seq uint32) []*Page {
	var pages []*Page
	cur := &Page{SerialNumber: serial, SequenceNumber: seq, GranulePosition: noGranule}

	flush := func(continued bool) {
		pages = append(pages, cur)
		seq++
		cur = &Page{SerialNumber: serial, SequenceNumber: seq, GranulePosition: noGranule}
		if continued {
			cur.HeaderType = flagContinued
		}
	}

	for i, packet := range packets {
		data := packet
		segs := lacing(len(packet))
		for j, seg := range segs {
			if len(cur.Segments) == maxSegments {
				flush(!cur.packetEnds())
			}
			cur.Segments = append(cur.Segments, seg)
			cur.Data = append(cur.Data, data[:seg]...)
			data = data[seg:]
			if j == len(segs)-1 {
				cur.GranulePosition = 0 // header packets carry granule 0
			}
		}
		if i == 0 || i == len(packets)-1 {
			flush(false)
		}
	}

	if len(pages) > 0 {
		pages[0].HeaderType |= flagBOS
	}
	return pages
}
