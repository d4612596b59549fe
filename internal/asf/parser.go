package asf

import (
	"fmt"
	"io"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/registry"
	"github.com/simonhull/tagfix/internal/types"
)

// parser implements the registry.FormatParser interface for ASF files
type parser struct{}

// Parse parses an ASF file and extracts Title and Author
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.File, error) {
	sr := binary.NewSafeReader(r, size, path)

	h, err := readHeader(sr)
	if err != nil {
		return nil, err
	}

	file := &types.File{
		Path:   path,
		Format: types.FormatWMA,
		Size:   size,
	}

	i := h.find(contentDescriptionGUID)
	if i < 0 {
		return file, nil
	}
	d, err := parseDescription(h.objects[i].Body)
	if err != nil {
		file.Warn("metadata", fmt.Sprintf("failed to parse content description: %v", err), headerObjectSize)
		return file, nil
	}
	file.Tags.Title = d.value(fieldTitle)
	file.Tags.Artist = d.value(fieldAuthor)

	return file, nil
}

// init registers the ASF parser and writer
func init() {
	registry.Register(types.FormatWMA, &parser{})
	registry.RegisterWriter(types.FormatWMA, &writer{})
}
