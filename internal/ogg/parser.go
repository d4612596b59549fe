package ogg

import (
	"fmt"
	"io"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/registry"
	"github.com/simonhull/tagfix/internal/types"
)

// parser implements the registry.FormatParser interface for Ogg Vorbis and
// Ogg Opus files.
type parser struct{}

// Parse reads the comment header and extracts Title and Artist.
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.File, error) {
	sr := binary.NewSafeReader(r, size, path)

	s, err := readStream(sr)
	if err != nil {
		return nil, err
	}

	file := &types.File{
		Path:   path,
		Format: s.codec.format,
		Size:   size,
	}

	c, _, err := s.comments()
	if err != nil {
		// Non-fatal - add warning
		file.Warn("metadata", fmt.Sprintf("failed to parse comment header: %v", err), 0)
		return file, nil
	}
	c.ReadTags(&file.Tags)

	return file, nil
}

// init registers the Ogg parser and writer for both Vorbis and Opus formats.
func init() {
	for _, format := range []types.Format{types.FormatOgg, types.FormatOpus} {
		registry.Register(format, &parser{})
		registry.RegisterWriter(format, &writer{})
	}
}
