package m4a

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// atom builds an atom from its type and payload parts.
func atom(typ string, parts ...[]byte) []byte {
	body := bytes.Join(parts, nil)
	out := binary.Encode(uint32(8+len(body)), binary.BigEndian)
	out = append(out, typ...)
	return append(out, body...)
}

// dataAtom builds a UTF-8 data atom.
func dataAtom(value string) []byte {
	return atom("data", []byte{0, 0, 0, dataTypeUTF8, 0, 0, 0, 0}, []byte(value))
}

func stco(offsets ...uint32) []byte {
	body := []byte{0, 0, 0, 0}
	body = append(body, binary.Encode(uint32(len(offsets)), binary.BigEndian)...)
	for _, o := range offsets {
		body = append(body, binary.Encode(o, binary.BigEndian)...)
	}
	return atom("stco", body)
}

var ftyp = atom("ftyp", []byte("M4A \x00\x00\x02\x00M4A mp42isom"))

// buildMoov assembles a movie atom with the given ilst items and chunk offsets.
func buildMoov(items [][]byte, offsets ...uint32) []byte {
	trak := atom("trak", atom("mdia", atom("minf", atom("stbl", stco(offsets...)))))
	meta := atom("meta", []byte{0, 0, 0, 0}, atom("hdlr", handlerPayload()), atom("ilst", items...))
	return atom("moov", atom("mvhd", make([]byte, 100)), trak, atom("udta", meta))
}

// buildM4A lays out ftyp, moov, an optional free atom and mdat. Chunk
// offsets point at the start of the mdat payload.
func buildM4A(items [][]byte, freeSize int) ([]byte, []byte) {
	audio := bytes.Repeat([]byte{0xAA, 0xBB}, 64)

	// Offsets depend on moov size, which does not depend on their values
	moovLen := len(buildMoov(items, 0))
	mdatPayload := uint32(len(ftyp) + moovLen + freeSize + 8)
	moov := buildMoov(items, mdatPayload, mdatPayload+64)

	parts := [][]byte{ftyp, moov}
	if freeSize > 0 {
		parts = append(parts, atom("free", make([]byte, freeSize-8)))
	}
	parts = append(parts, atom("mdat", audio))
	return bytes.Join(parts, nil), audio
}

func parseM4A(t *testing.T, data []byte) *types.File {
	t.Helper()
	file, err := (&parser{format: types.FormatM4A}).Parse(bytes.NewReader(data), int64(len(data)), "test.m4a")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return file
}

func writeM4A(t *testing.T, data []byte, tags types.Tags) []byte {
	t.Helper()
	file := &types.File{Path: "test.m4a", Format: types.FormatM4A, Tags: tags}
	var out bytes.Buffer
	if err := (&writer{}).Write(&out, file, bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return out.Bytes()
}

// chunkOffsets returns the stco entries of data.
func chunkOffsets(t *testing.T, data []byte) []uint32 {
	t.Helper()
	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.m4a")
	a, err := findAtom(sr, 0, int64(len(data)), "moov")
	if err != nil {
		t.Fatal(err)
	}
	moov, err := loadMoov(sr, a)
	if err != nil {
		t.Fatal(err)
	}
	table := moov.path("trak", "mdia", "minf", "stbl", "stco")
	if table == nil {
		t.Fatal("stco not found")
	}
	var out []uint32
	n := int(binary.Decode[uint32](table.payload[4:], binary.BigEndian))
	for i := range n {
		out = append(out, binary.Decode[uint32](table.payload[8+4*i:], binary.BigEndian))
	}
	return out
}

func TestParse_TitleArtist(t *testing.T) {
	data, _ := buildM4A([][]byte{
		atom(keyTitle, dataAtom("Under Pressure")),
		atom(keyArtist, dataAtom("Queen\x00David Bowie")),
		atom("\xA9alb", dataAtom("Hot Space")),
	}, 0)

	file := parseM4A(t, data)

	if file.Tags.Title.First() != "Under Pressure" {
		t.Errorf("Title = %q", file.Tags.Title.First())
	}
	if file.Tags.Artist.First() != "Queen\x00David Bowie" {
		t.Errorf("Artist = %q, NULs must be kept", file.Tags.Artist.First())
	}
}

func TestParse_MultipleDataAtoms(t *testing.T) {
	data, _ := buildM4A([][]byte{atom(keyArtist, dataAtom("A"), dataAtom("B"))}, 0)

	file := parseM4A(t, data)

	if !file.Tags.Artist.Equal(types.List("A", "B")) {
		t.Errorf("Artist = %v", file.Tags.Artist)
	}
}

func TestParse_NoMetadata(t *testing.T) {
	data := bytes.Join([][]byte{ftyp, atom("moov", atom("mvhd", make([]byte, 100))), atom("mdat", []byte{1})}, nil)

	file := parseM4A(t, data)

	if !file.Tags.Title.IsZero() || len(file.Warnings) == 0 {
		t.Errorf("tags = %+v, warnings = %v", file.Tags, file.Warnings)
	}
}

func TestParse_NoMoov(t *testing.T) {
	data := bytes.Join([][]byte{ftyp, atom("mdat", []byte{1})}, nil)

	_, err := (&parser{format: types.FormatM4A}).Parse(bytes.NewReader(data), int64(len(data)), "bad.m4a")

	var corruptErr *types.CorruptedFileError
	if !errors.As(err, &corruptErr) {
		t.Fatalf("expected CorruptedFileError, got %v", err)
	}
}

func TestWrite_ShiftsChunkOffsets(t *testing.T) {
	data, audio := buildM4A([][]byte{atom(keyArtist, dataAtom("Queen\x00Bowie"))}, 0)
	before := chunkOffsets(t, data)

	out := writeM4A(t, data, types.Tags{Artist: types.Text("Queen, Bowie")})

	if len(out) != len(data)+1 {
		t.Fatalf("output length = %d, want %d", len(out), len(data)+1)
	}
	after := chunkOffsets(t, out)
	for i := range before {
		if after[i] != before[i]+1 {
			t.Errorf("chunk offset %d = %d, want %d", i, after[i], before[i]+1)
		}
	}
	if !bytes.Equal(out[after[0]:int(after[0])+len(audio)], audio) {
		t.Error("chunk offset does not point at the media data")
	}

	if got := parseM4A(t, out).Tags.Artist.First(); got != "Queen, Bowie" {
		t.Errorf("Artist = %q", got)
	}
}

func TestWrite_AbsorbsInFreeAtom(t *testing.T) {
	data, audio := buildM4A([][]byte{atom(keyTitle, dataAtom("a\\b"))}, 64)
	before := chunkOffsets(t, data)

	out := writeM4A(t, data, types.Tags{Title: types.Text("a, b")})

	if len(out) != len(data) {
		t.Errorf("output length = %d, want %d", len(out), len(data))
	}
	if !bytes.HasSuffix(out, atom("mdat", audio)) {
		t.Error("media data moved")
	}
	after := chunkOffsets(t, out)
	if after[0] != before[0] {
		t.Errorf("chunk offset changed from %d to %d", before[0], after[0])
	}
	if got := parseM4A(t, out).Tags.Title.First(); got != "a, b" {
		t.Errorf("Title = %q", got)
	}
}

func TestWrite_PreservesListShape(t *testing.T) {
	data, _ := buildM4A([][]byte{atom(keyArtist, dataAtom("A\\B"), dataAtom("C"))}, 0)

	out := writeM4A(t, data, types.Tags{Artist: types.List("A, B", "C")})

	if got := parseM4A(t, out).Tags.Artist; !got.Equal(types.List("A, B", "C")) {
		t.Errorf("Artist = %v", got)
	}
}

func TestWrite_CreatesMetadataPath(t *testing.T) {
	moov := atom("moov", atom("mvhd", make([]byte, 100)))
	data := bytes.Join([][]byte{ftyp, atom("mdat", []byte{1, 2, 3}), moov}, nil)

	out := writeM4A(t, data, types.Tags{Title: types.Text("New")})

	if got := parseM4A(t, out).Tags.Title.First(); got != "New" {
		t.Errorf("Title = %q", got)
	}
	if !bytes.HasPrefix(out, bytes.Join([][]byte{ftyp, atom("mdat", []byte{1, 2, 3})}, nil)) {
		t.Error("atoms before moov changed")
	}
}

func TestWrite_FragmentedUnsupported(t *testing.T) {
	data, _ := buildM4A([][]byte{atom(keyTitle, dataAtom("x"))}, 0)
	data = append(data, atom("moof", make([]byte, 16))...)

	file := &types.File{Path: "frag.m4a", Format: types.FormatM4A, Tags: types.Tags{Title: types.Text(strings.Repeat("y", 10))}}
	err := (&writer{}).Write(&bytes.Buffer{}, file, bytes.NewReader(data), int64(len(data)))

	var writeErr *types.UnsupportedWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected UnsupportedWriteError, got %v", err)
	}
}

func TestBox_RoundTrip(t *testing.T) {
	moov := buildMoov([][]byte{atom(keyTitle, dataAtom("x"))}, 100, 200)

	b, n, err := parseBox(moov, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(moov) {
		t.Errorf("consumed %d bytes, want %d", n, len(moov))
	}
	out, err := b.encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, moov) {
		t.Error("untouched movie atom should encode to the same bytes")
	}
}

func TestReadAtomHeader(t *testing.T) {
	data := atom("moov", []byte{1, 2, 3, 4})
	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.m4a")

	a, err := readAtomHeader(sr, 0, int64(len(data)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Size != 12 || a.Type != "moov" || a.DataSize() != 4 || a.DataOffset() != 8 {
		t.Errorf("atom = %+v", a)
	}

	// Size larger than the data
	copy(data, binary.Encode(uint32(100), binary.BigEndian))
	if _, err := readAtomHeader(sr, 0, int64(len(data))); err == nil {
		t.Error("expected error for overrunning atom")
	}
}
