// Package mp3 reads and rewrites the ID3 tags of MPEG audio files and
// ID3-tagged ADTS AAC streams.
package mp3

import (
	"io"

	binutil "github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/registry"
	"github.com/simonhull/tagfix/internal/types"
)

// parser implements the registry.FormatParser interface
type parser struct {
	format types.Format
}

// Parse parses a single MP3 or AAC file and extracts Title and Artist
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.File, error) {
	sr := binutil.NewSafeReader(r, size, path)

	l, err := readLayout(sr)
	if err != nil {
		return nil, err
	}

	file := &types.File{
		Path:   path,
		Format: p.format,
		Size:   size,
		Tags:   l.tags(),
	}
	if l.v2 != nil {
		file.Warnings = append(file.Warnings, l.v2.Warnings...)
	}
	if l.v2 == nil && l.v1 == nil {
		file.Warn("metadata", "no ID3 tag found", 0)
	}

	return file, nil
}

// init registers the parser and writer for both stream types
func init() {
	for _, format := range []types.Format{types.FormatMP3, types.FormatAAC} {
		registry.Register(format, &parser{format: format})
		registry.RegisterWriter(format, &writer{})
	}
}
