package riff

import (
	"fmt"
	"io"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/id3"
	"github.com/simonhull/tagfix/internal/registry"
	"github.com/simonhull/tagfix/internal/types"
)

// parser implements the registry.FormatParser interface for WAV files
type parser struct{}

// Parse parses a WAV file and extracts Title and Artist
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.File, error) {
	sr := binary.NewSafeReader(r, size, path)

	f, err := readForm(sr)
	if err != nil {
		return nil, err
	}

	file := &types.File{
		Path:   path,
		Format: types.FormatWAV,
		Size:   size,
	}

	var fromID3, fromInfo types.Tags
	foundID3, foundInfo := false, false
	for _, c := range f.chunks {
		switch {
		case c.isID3() && !foundID3:
			tag, err := readID3(sr, c)
			if err != nil {
				file.Warn("metadata", fmt.Sprintf("failed to parse ID3 chunk: %v", err), c.Offset)
				continue
			}
			file.Warnings = append(file.Warnings, tag.Warnings...)
			fromID3 = tag.Tags()
			foundID3 = true
		case c.ID == "LIST" && !foundInfo:
			body, err := sr.Bytes(c.DataOffset(), int64(c.Size), "LIST chunk")
			if err != nil {
				return nil, err
			}
			if !isInfoList(body) {
				continue
			}
			in, err := parseInfo(body)
			if err != nil {
				file.Warn("metadata", err.Error(), c.Offset)
			}
			fromInfo = types.Tags{Title: in.value(infoTitle), Artist: in.value(infoArtist)}
			foundInfo = true
		}
	}

	file.Tags = fromID3
	if file.Tags.Title.IsZero() {
		file.Tags.Title = fromInfo.Title
	}
	if file.Tags.Artist.IsZero() {
		file.Tags.Artist = fromInfo.Artist
	}
	return file, nil
}

// readID3 decodes the ID3v2 tag held by chunk c.
func readID3(sr *binary.SafeReader, c chunk) (*id3.Tag, error) {
	data, err := sr.Bytes(c.DataOffset(), int64(c.Size), "ID3 chunk")
	if err != nil {
		return nil, err
	}
	return id3.Parse(data)
}

// init registers the WAV parser and writer
func init() {
	registry.Register(types.FormatWAV, &parser{})
	registry.RegisterWriter(types.FormatWAV, &writer{})
}
