// Package flac reads and rewrites the VORBIS_COMMENT block of FLAC files.
package flac

import (
	"fmt"
	"io"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/registry"
	"github.com/simonhull/tagfix/internal/types"
	"github.com/simonhull/tagfix/internal/vorbis"
)

// parser implements the registry.FormatParser interface for FLAC files
type parser struct{}

// Parse parses a FLAC file and extracts Title and Artist
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.File, error) {
	sr := binary.NewSafeReader(r, size, path)

	blocks, _, err := scanBlocks(sr)
	if err != nil {
		return nil, err
	}

	file := &types.File{
		Path:   path,
		Format: types.FormatFLAC,
		Size:   size,
	}

	for _, b := range blocks {
		if b.Type != blockTypeVorbisComment {
			continue
		}

		comments, err := readComments(sr, b)
		if err != nil {
			file.Warn("metadata", fmt.Sprintf("failed to parse Vorbis comments: %v", err), b.Offset)
			continue
		}
		comments.ReadTags(&file.Tags)
		break
	}

	return file, nil
}

// readComments decodes the VORBIS_COMMENT block b.
func readComments(sr *binary.SafeReader, b block) (*vorbis.Comments, error) {
	data, err := sr.Bytes(b.Offset, b.Length, "VORBIS_COMMENT block")
	if err != nil {
		return nil, err
	}
	comments, _, err := vorbis.Decode(data)
	return comments, err
}

// init registers the FLAC parser and writer
func init() {
	registry.Register(types.FormatFLAC, &parser{})
	registry.RegisterWriter(types.FormatFLAC, &writer{})
}
