package ogg

import (
	"fmt"
	"io"
	"slices"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// writer implements the registry.FormatWriter interface.
//
// The header packets are laid out on fresh pages. When that changes the
// number of header pages, every later page of the stream is renumbered and
// its checksum recomputed; otherwise the rest of the file is copied as is.
type writer struct{}

// Write copies original to w with the comment header rebuilt from file.Tags.
func (wr *writer) Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error {
	sr := binary.NewSafeReader(original, originalSize, file.Path)

	s, err := readStream(sr)
	if err != nil {
		return err
	}
	if s.shared {
		return &types.UnsupportedWriteError{
			Reason: "audio data shares a page with the last header packet",
			Format: s.codec.format,
		}
	}

	c, trailer, err := s.comments()
	if err != nil {
		return &types.CorruptedFileError{Path: file.Path, Reason: fmt.Sprintf("unreadable comment header: %v", err)}
	}
	c.ApplyTags(&file.Tags)

	packets := slices.Clone(s.packets)
	packets[1] = s.commentPacket(c, trailer)
	pages := paginate(packets, s.serial, 0)

	sw := binary.NewSafeWriter(w)
	for _, p := range pages {
		if err := sw.WriteBytes(p.Encode()); err != nil {
			return err
		}
	}

	shift := uint32(len(pages) - s.pages)
	if shift == 0 {
		if err := sw.CopyFrom(original, s.end, originalSize-s.end); err != nil {
			return fmt.Errorf("copy audio pages: %w", err)
		}
		return nil
	}

	offset := s.end
	for offset < originalSize {
		page, next, err := readPage(sr, offset)
		if err != nil {
			// Trailing bytes that are not a page are carried over verbatim
			if err := sw.CopyFrom(original, offset, originalSize-offset); err != nil {
				return fmt.Errorf("copy trailing data: %w", err)
			}
			return nil
		}
		if page.SerialNumber == s.serial {
			page.SequenceNumber += shift
		}
		if err := sw.WriteBytes(page.Encode()); err != nil {
			return err
		}
		offset = next
	}
	return nil
}
