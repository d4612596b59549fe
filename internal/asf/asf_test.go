package asf

import (
	"bytes"
	"errors"
	"testing"
	"unicode/utf16"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// utf16z encodes s as NUL-terminated UTF-16LE.
func utf16z(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s + "\x00")) {
		out = append(out, binary.Encode(u, binary.LittleEndian)...)
	}
	return out
}

// descriptionBody builds a Content Description Object body.
func descriptionBody(fields ...string) []byte {
	var lengths, data []byte
	for i := range fieldCount {
		var f []byte
		if i < len(fields) && fields[i] != "" {
			f = utf16z(fields[i])
		}
		lengths = append(lengths, binary.Encode(uint16(len(f)), binary.LittleEndian)...)
		data = append(data, f...)
	}
	return append(lengths, data...)
}

func filePropertiesBody() []byte {
	// file ID, file size and the rest of the fixed fields
	return make([]byte, 80)
}

// payload stands in for the Data Object and anything after it.
var payload = append(append(make([]byte, 0, 74), []byte{
	0x36, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
}...), bytes.Repeat([]byte{0x5A}, 58)...)

// buildASF assembles a file from header children and the payload, with a
// correct file size in the File Properties Object when present.
func buildASF(objects ...object) []byte {
	h := &header{objects: objects}
	enc := h.encode()
	size := uint64(len(enc) + len(payload))
	if j := h.find(filePropertiesGUID); j >= 0 {
		copy(h.objects[j].Body[16:], binary.Encode(size, binary.LittleEndian))
		enc = h.encode()
	}
	return append(enc, payload...)
}

func parseASF(t *testing.T, data []byte) *types.File {
	t.Helper()
	file, err := (&parser{}).Parse(bytes.NewReader(data), int64(len(data)), "test.wma")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return file
}

func writeASF(t *testing.T, data []byte, tags types.Tags) []byte {
	t.Helper()
	file := &types.File{Path: "test.wma", Format: types.FormatWMA, Tags: tags}
	var out bytes.Buffer
	if err := (&writer{}).Write(&out, file, bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return out.Bytes()
}

// recordedFileSize reads the File Properties file size of data.
func recordedFileSize(t *testing.T, data []byte) uint64 {
	t.Helper()
	h, err := readHeader(binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.wma"))
	if err != nil {
		t.Fatal(err)
	}
	j := h.find(filePropertiesGUID)
	if j < 0 {
		t.Fatal("file properties object missing")
	}
	return binary.Decode[uint64](h.objects[j].Body[16:], binary.LittleEndian)
}

func TestParse_ContentDescription(t *testing.T) {
	data := buildASF(
		object{ID: filePropertiesGUID, Body: filePropertiesBody()},
		object{ID: contentDescriptionGUID, Body: descriptionBody("Title\\Part", "A\x00B", "(c)")},
	)

	file := parseASF(t, data)

	if file.Tags.Title.First() != `Title\Part` {
		t.Errorf("Title = %q", file.Tags.Title.First())
	}
	if file.Tags.Artist.First() != "A\x00B" {
		t.Errorf("Artist = %q, interior NUL must be kept", file.Tags.Artist.First())
	}
}

func TestParse_NoDescription(t *testing.T) {
	file := parseASF(t, buildASF(object{ID: filePropertiesGUID, Body: filePropertiesBody()}))

	if !file.Tags.Title.IsZero() || !file.Tags.Artist.IsZero() {
		t.Errorf("tags = %+v, want absent", file.Tags)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Run("not asf", func(t *testing.T) {
		data := make([]byte, 64)
		_, err := (&parser{}).Parse(bytes.NewReader(data), int64(len(data)), "x.wma")
		var unsupported *types.UnsupportedFormatError
		if !errors.As(err, &unsupported) {
			t.Fatalf("expected UnsupportedFormatError, got %v", err)
		}
	})

	t.Run("child overruns header", func(t *testing.T) {
		data := buildASF(object{ID: contentDescriptionGUID, Body: descriptionBody("x")})
		copy(data[headerObjectSize+16:], binary.Encode(uint64(1<<20), binary.LittleEndian))
		_, err := (&parser{}).Parse(bytes.NewReader(data), int64(len(data)), "x.wma")
		var corrupt *types.CorruptedFileError
		if !errors.As(err, &corrupt) {
			t.Fatalf("expected CorruptedFileError, got %v", err)
		}
	})
}

func TestWrite_UpdatesDescription(t *testing.T) {
	data := buildASF(
		object{ID: filePropertiesGUID, Body: filePropertiesBody()},
		object{ID: contentDescriptionGUID, Body: descriptionBody("a\\b", "Queen\x00Bowie", "(c)")},
	)

	out := writeASF(t, data, types.Tags{Title: types.Text("a, b"), Artist: types.Text("Queen, Bowie")})

	file := parseASF(t, out)
	if file.Tags.Title.First() != "a, b" || file.Tags.Artist.First() != "Queen, Bowie" {
		t.Errorf("tags = %+v", file.Tags)
	}
	if got := recordedFileSize(t, out); got != uint64(len(out)) {
		t.Errorf("recorded file size = %d, want %d", got, len(out))
	}
	if !bytes.HasSuffix(out, payload) {
		t.Error("data object changed")
	}
	if !bytes.Contains(out, utf16z("(c)")) {
		t.Error("copyright field should be kept")
	}
}

func TestWrite_AddsDescription(t *testing.T) {
	data := buildASF(object{ID: filePropertiesGUID, Body: filePropertiesBody()})

	out := writeASF(t, data, types.Tags{Artist: types.Text("New")})

	file := parseASF(t, out)
	if file.Tags.Artist.First() != "New" || !file.Tags.Title.IsZero() {
		t.Errorf("tags = %+v", file.Tags)
	}
	if got := recordedFileSize(t, out); got != uint64(len(out)) {
		t.Errorf("recorded file size = %d, want %d", got, len(out))
	}
	if count := binary.Decode[uint32](out[24:], binary.LittleEndian); count != 2 {
		t.Errorf("header object count = %d, want 2", count)
	}
}

func TestDescription_FieldTooLong(t *testing.T) {
	d := &description{}
	long := string(bytes.Repeat([]byte("x"), 40000))

	if err := d.set(fieldTitle, types.Text(long)); err == nil {
		t.Error("expected error for a field over 64 KiB")
	}
}
