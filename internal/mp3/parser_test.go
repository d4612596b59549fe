package mp3

import (
	"bytes"
	"errors"
	"testing"

	"github.com/simonhull/tagfix/internal/id3"
	"github.com/simonhull/tagfix/internal/types"
)

// audioFrames returns a few bytes that look like MPEG layer III frames.
func audioFrames() []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x64})
	return bytes.Repeat(frame, 3)
}

// v2Tag renders an ID3v2.4 tag holding tags, with padding bytes to spare.
func v2Tag(t *testing.T, tags types.Tags, padding uint32) []byte {
	t.Helper()
	tag := id3.NewTag()
	if err := tag.Apply(&tags); err != nil {
		t.Fatal(err)
	}
	out, err := tag.Render()
	if err != nil {
		t.Fatal(err)
	}
	if padding == 0 {
		return out
	}
	// Reparse with a declared size that leaves room, then render again
	parsed, err := id3.Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	parsed.Size = uint32(len(out)-id3.HeaderSize-id3.DefaultPadding) + padding
	out, err = parsed.Render()
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// v1Tag builds an ID3v1 tag.
func v1Tag(title, artist string) []byte {
	b := make([]byte, id3.V1Size)
	copy(b, "TAG")
	copy(b[3:], title)
	copy(b[33:], artist)
	return b
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func parseMP3(t *testing.T, data []byte, format types.Format) *types.File {
	t.Helper()
	p := &parser{format: format}
	file, err := p.Parse(bytes.NewReader(data), int64(len(data)), "test.mp3")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return file
}

func TestParse_ID3v2(t *testing.T) {
	data := join(
		v2Tag(t, types.Tags{Title: types.Text("Under Pressure"), Artist: types.Text("Queen\x00David Bowie")}, 0),
		audioFrames(),
	)

	file := parseMP3(t, data, types.FormatMP3)

	if file.Format != types.FormatMP3 {
		t.Errorf("Format = %v", file.Format)
	}
	if file.Tags.Title.First() != "Under Pressure" {
		t.Errorf("Title = %q", file.Tags.Title.First())
	}
	if file.Tags.Artist.First() != "Queen\x00David Bowie" {
		t.Errorf("Artist = %q", file.Tags.Artist.First())
	}
}

func TestParse_V1Fallback(t *testing.T) {
	data := join(
		v2Tag(t, types.Tags{Title: types.Text("From v2")}, 0),
		audioFrames(),
		v1Tag("From v1", `AC\DC`),
	)

	file := parseMP3(t, data, types.FormatAAC)

	if file.Format != types.FormatAAC {
		t.Errorf("Format = %v", file.Format)
	}
	if file.Tags.Title.First() != "From v2" {
		t.Errorf("Title = %q, want ID3v2 value", file.Tags.Title.First())
	}
	if file.Tags.Artist.First() != `AC\DC` {
		t.Errorf("Artist = %q, want ID3v1 fallback", file.Tags.Artist.First())
	}
}

func TestParse_NoTags(t *testing.T) {
	file := parseMP3(t, audioFrames(), types.FormatMP3)

	if !file.Tags.Title.IsZero() || !file.Tags.Artist.IsZero() {
		t.Errorf("expected absent tags, got %+v", file.Tags)
	}
	if len(file.Warnings) == 0 {
		t.Error("expected a warning about the missing tag")
	}
}

func TestParse_TruncatedTag(t *testing.T) {
	data := v2Tag(t, types.Tags{Title: types.Text("x")}, 0)
	data = data[:20]

	p := &parser{format: types.FormatMP3}
	_, err := p.Parse(bytes.NewReader(data), int64(len(data)), "cut.mp3")

	var corruptErr *types.CorruptedFileError
	if !errors.As(err, &corruptErr) {
		t.Fatalf("expected CorruptedFileError, got %v", err)
	}
}

func TestParse_BadVersion(t *testing.T) {
	data := join([]byte{'I', 'D', '3', 7, 0, 0, 0, 0, 0, 0}, audioFrames())

	p := &parser{format: types.FormatMP3}
	_, err := p.Parse(bytes.NewReader(data), int64(len(data)), "odd.mp3")

	var unsupported *types.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}
