package m4a

import (
	"fmt"
	"io"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/registry"
	"github.com/simonhull/tagfix/internal/types"
)

// parser implements the registry.FormatParser interface
type parser struct {
	format types.Format
}

// Parse parses an M4A/M4B file and extracts Title and Artist
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.File, error) {
	sr := binary.NewSafeReader(r, size, path)

	file := &types.File{
		Path:   path,
		Format: p.format,
		Size:   size,
	}

	moovAtom, err := findAtom(sr, 0, size, "moov")
	if err != nil {
		return nil, &types.CorruptedFileError{Path: path, Reason: fmt.Sprintf("no movie atom: %v", err)}
	}

	moov, err := loadMoov(sr, moovAtom)
	if err != nil {
		return nil, err
	}

	ilst := moov.path("udta", "meta", "ilst")
	if ilst == nil {
		file.Warn("metadata", "no iTunes metadata list", moovAtom.Offset)
		return file, nil
	}
	file.Tags = readTags(ilst)

	return file, nil
}

// loadMoov reads the movie atom into memory.
func loadMoov(sr *binary.SafeReader, atom *Atom) (*box, error) {
	data, err := sr.Bytes(atom.Offset, int64(atom.Size), "moov atom")
	if err != nil {
		return nil, err
	}
	moov, _, err := parseBox(data, nil)
	if err != nil {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: atom.Offset, Reason: err.Error()}
	}
	return moov, nil
}

// init registers the M4A/M4B parser and writer
func init() {
	for _, format := range []types.Format{types.FormatM4A, types.FormatM4B} {
		registry.Register(format, &parser{format: format})
		registry.RegisterWriter(format, &writer{})
	}
}
