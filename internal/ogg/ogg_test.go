package ogg

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
	"github.com/simonhull/tagfix/internal/vorbis"
)

const testSerial = 0x1234

func vorbisIDPacket() []byte {
	p := []byte("\x01vorbis")
	p = append(p, 0, 0, 0, 0) // version
	p = append(p, 2)          // channels
	p = append(p, binary.Encode(uint32(44100), binary.LittleEndian)...)
	p = append(p, make([]byte, 12)...) // bitrates
	p = append(p, 0xB8, 0x01)          // block sizes, framing
	return p
}

func commentsPacket(prefix string, framing bool, entries ...string) []byte {
	c := &vorbis.Comments{Vendor: "Xiph.Org libVorbis I 20200704", Entries: entries}
	p := append([]byte(prefix), c.Encode()...)
	if framing {
		p = append(p, 0x01)
	}
	return p
}

// audioPages returns pages of fake audio packets starting at sequence seq.
func audioPages(seq uint32, n int) []*Page {
	var pages []*Page
	for i := range n {
		payload := bytes.Repeat([]byte{byte(i + 1)}, 100)
		p := &Page{
			SerialNumber:    testSerial,
			SequenceNumber:  seq + uint32(i),
			GranulePosition: uint64(1024 * (i + 1)),
			Segments:        []byte{100},
			Data:            payload,
		}
		if i == n-1 {
			p.HeaderType = flagEOS
		}
		pages = append(pages, p)
	}
	return pages
}

func encodePages(pages ...*Page) []byte {
	var buf bytes.Buffer
	for _, p := range pages {
		buf.Write(p.Encode())
	}
	return buf.Bytes()
}

func buildVorbis(entries ...string) []byte {
	headers := paginate([][]byte{
		vorbisIDPacket(),
		commentsPacket("\x03vorbis", true, entries...),
		[]byte("\x05vorbis setup data"),
	}, testSerial, 0)
	pages := append(headers, audioPages(uint32(len(headers)), 3)...)
	return encodePages(pages...)
}

func buildOpus(entries ...string) []byte {
	head := append([]byte("OpusHead"), 1, 2, 0x38, 0x01, 0x80, 0xBB, 0, 0, 0, 0, 0)
	headers := paginate([][]byte{head, commentsPacket("OpusTags", false, entries...)}, testSerial, 0)
	return encodePages(append(headers, audioPages(uint32(len(headers)), 2)...)...)
}

func parse(t *testing.T, data []byte) *types.File {
	t.Helper()
	file, err := (&parser{}).Parse(bytes.NewReader(data), int64(len(data)), "test.ogg")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return file
}

func write(t *testing.T, data []byte, tags types.Tags) []byte {
	t.Helper()
	file := &types.File{Path: "test.ogg", Tags: tags}
	var out bytes.Buffer
	if err := (&writer{}).Write(&out, file, bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return out.Bytes()
}

// allPages decodes every page in data and checks each one re-encodes to
// the same bytes, which verifies the stored checksums.
func allPages(t *testing.T, data []byte) []*Page {
	t.Helper()
	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.ogg")
	var pages []*Page
	for offset := int64(0); offset < int64(len(data)); {
		p, next, err := readPage(sr, offset)
		if err != nil {
			t.Fatalf("readPage(%d) error = %v", offset, err)
		}
		if !bytes.Equal(p.Encode(), data[offset:next]) {
			t.Errorf("page %d at offset %d has a bad checksum", p.SequenceNumber, offset)
		}
		pages = append(pages, p)
		offset = next
	}
	return pages
}

func TestChecksum_KnownValue(t *testing.T) {
	// CRC-32/POSIX check value before its final inversion
	if got := checksum([]byte("123456789")) ^ 0xFFFFFFFF; got != 0x765E7680 {
		t.Errorf("checksum = %#x, want 0x765e7680", got)
	}
}

func TestParse_Vorbis(t *testing.T) {
	file := parse(t, buildVorbis("TITLE=Song", "ARTIST=Queen\x00Bowie"))

	if file.Format != types.FormatOgg {
		t.Errorf("Format = %v", file.Format)
	}
	if file.Tags.Title.First() != "Song" || file.Tags.Artist.First() != "Queen\x00Bowie" {
		t.Errorf("tags = %+v", file.Tags)
	}
}

func TestParse_Opus(t *testing.T) {
	file := parse(t, buildOpus("title=Hello", "ARTIST=A", "ARTIST=B"))

	if file.Format != types.FormatOpus {
		t.Errorf("Format = %v", file.Format)
	}
	if file.Tags.Title.First() != "Hello" {
		t.Errorf("Title = %q", file.Tags.Title.First())
	}
	if !file.Tags.Artist.Equal(types.List("A", "B")) {
		t.Errorf("Artist = %v", file.Tags.Artist)
	}
}

func TestParse_UnknownCodec(t *testing.T) {
	data := encodePages(paginate([][]byte{[]byte("\x80theora"), []byte("x")}, 1, 0)...)

	_, err := (&parser{}).Parse(bytes.NewReader(data), int64(len(data)), "video.ogg")

	var unsupported *types.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestParse_Multiplexed(t *testing.T) {
	first := paginate([][]byte{vorbisIDPacket()}, testSerial, 0)
	other := paginate([][]byte{[]byte("\x80theora")}, 99, 0)
	data := encodePages(append(first, other...)...)

	_, err := (&parser{}).Parse(bytes.NewReader(data), int64(len(data)), "mux.ogg")

	var unsupported *types.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestWrite_SamePageCount(t *testing.T) {
	data := buildVorbis("TITLE=a\\b", "ARTIST=Queen\x00Bowie", "ALBUM=X")
	before := allPages(t, data)

	out := write(t, data, types.Tags{Title: types.Text("a, b"), Artist: types.Text("Queen, Bowie")})

	after := allPages(t, out)
	if len(after) != len(before) {
		t.Fatalf("page count = %d, want %d", len(after), len(before))
	}
	for i := len(after) - 3; i < len(after); i++ {
		if !bytes.Equal(after[i].Data, before[i].Data) || after[i].GranulePosition != before[i].GranulePosition {
			t.Errorf("audio page %d changed", i)
		}
	}

	file := parse(t, out)
	if file.Tags.Title.First() != "a, b" || file.Tags.Artist.First() != "Queen, Bowie" {
		t.Errorf("tags = %+v", file.Tags)
	}
}

func TestWrite_RenumbersWhenHeaderGrows(t *testing.T) {
	data := buildVorbis("TITLE=short")
	before := allPages(t, data)

	long := strings.Repeat("x", 70000)
	out := write(t, data, types.Tags{Title: types.Text(long)})

	after := allPages(t, out)
	if len(after) <= len(before) {
		t.Fatalf("expected more pages, got %d (was %d)", len(after), len(before))
	}
	for i, p := range after {
		if p.SequenceNumber != uint32(i) {
			t.Errorf("page %d has sequence number %d", i, p.SequenceNumber)
		}
	}
	if after[0].HeaderType&flagBOS == 0 {
		t.Error("first page lost BOS flag")
	}
	if after[len(after)-1].HeaderType&flagEOS == 0 {
		t.Error("last page lost EOS flag")
	}

	if got := parse(t, out).Tags.Title.First(); got != long {
		t.Errorf("Title has %d bytes, want %d", len(got), len(long))
	}
}

func TestWrite_Opus(t *testing.T) {
	data := buildOpus("ARTIST=A\\B")

	out := write(t, data, types.Tags{Artist: types.Text("A, B")})

	file := parse(t, out)
	if file.Tags.Artist.First() != "A, B" {
		t.Errorf("Artist = %q", file.Tags.Artist.First())
	}
	allPages(t, out)
}

func TestWrite_SharedPageUnsupported(t *testing.T) {
	// Setup header and first audio packet on the same page
	first := paginate([][]byte{vorbisIDPacket()}, testSerial, 0)
	rest := paginate([][]byte{{0}, commentsPacket("\x03vorbis", true, "TITLE=a"), []byte("\x05vorbis"), []byte("audio")}, testSerial, 1)[1:]
	data := encodePages(append(first, rest...)...)

	file := &types.File{Path: "shared.ogg", Tags: types.Tags{Title: types.Text("b")}}
	err := (&writer{}).Write(&bytes.Buffer{}, file, bytes.NewReader(data), int64(len(data)))

	var writeErr *types.UnsupportedWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected UnsupportedWriteError, got %v", err)
	}
}

func TestPaginate_LargePacketSpansPages(t *testing.T) {
	big := bytes.Repeat([]byte{0xAB}, 255*300)
	pages := paginate([][]byte{big}, 7, 0)

	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].GranulePosition != noGranule {
		t.Error("page without a packet end should have no granule")
	}
	if pages[1].HeaderType&flagContinued == 0 {
		t.Error("second page should be marked continued")
	}
	if pages[1].GranulePosition != 0 {
		t.Errorf("granule = %d, want 0", pages[1].GranulePosition)
	}
}
