package mp3

import (
	"fmt"
	"io"

	binutil "github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/id3"
	"github.com/simonhull/tagfix/internal/types"
)

// writer implements the registry.FormatWriter interface.
//
// The ID3v2 tag is rewritten (an ID3v2.4 tag is created when the file has
// none) and an existing ID3v1 tag is updated in place. Audio frames are
// copied unchanged.
//
// The rewritten tag has no extended header and no ID3v2.4 footer, so a file
// that had a footer shrinks by 10 bytes. A tag whose frames could not all be
// read is refused with UnsupportedWriteError rather than rewritten without
// them.
type writer struct{}

// Write copies original to w with file.Tags applied.
func (wr *writer) Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error {
	sr := binutil.NewSafeReader(original, originalSize, file.Path)

	l, err := readLayout(sr)
	if err != nil {
		return err
	}

	tag := l.v2
	if tag != nil && tag.Incomplete {
		return &types.UnsupportedWriteError{Reason: "ID3v2 tag could not be read completely", Format: file.Format}
	}
	if tag == nil {
		tag = id3.NewTag()
	}
	if err := tag.Apply(&file.Tags); err != nil {
		return err
	}
	rendered, err := tag.Render()
	if err != nil {
		return &types.UnsupportedWriteError{Reason: err.Error(), Format: file.Format}
	}

	sw := binutil.NewSafeWriter(w)
	if err := sw.WriteBytes(rendered); err != nil {
		return err
	}
	if err := sw.CopyFrom(original, l.audioAt, l.audioN); err != nil {
		return fmt.Errorf("copy audio frames: %w", err)
	}
	if l.v1 != nil {
		if err := sw.WriteBytes(id3.UpdateV1(l.v1, &file.Tags)); err != nil {
			return err
		}
	}
	return nil
}
