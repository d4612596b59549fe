package flac

import (
	"fmt"
	"io"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
	"github.com/simonhull/tagfix/internal/vorbis"
)

// defaultVendor is used when a file has no comment block to inherit one from.
const defaultVendor = "tagfix"

// writer implements the registry.FormatWriter interface for FLAC files.
//
// Only the VORBIS_COMMENT block changes. When a PADDING block exists its
// length is adjusted so the audio frames stay at the same offset.
type writer struct{}

// Write copies original to w with the comment block rebuilt from file.Tags.
func (wr *writer) Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error {
	sr := binary.NewSafeReader(original, originalSize, file.Path)

	blocks, audioStart, err := scanBlocks(sr)
	if err != nil {
		return err
	}

	commentIdx := -1
	comments := &vorbis.Comments{Vendor: defaultVendor}
	for i, b := range blocks {
		if b.Type == blockTypeVorbisComment {
			commentIdx = i
			if comments, err = readComments(sr, b); err != nil {
				return &types.CorruptedFileError{
					Path:   file.Path,
					Offset: b.Offset,
					Reason: fmt.Sprintf("unreadable Vorbis comments: %v", err),
				}
			}
			break
		}
	}
	comments.ApplyTags(&file.Tags)

	data := comments.Encode()
	if len(data) > maxBlockLength {
		return &types.UnsupportedWriteError{
			Reason: fmt.Sprintf("comment block of %d bytes exceeds FLAC block limit", len(data)),
			Format: types.FormatFLAC,
		}
	}

	// Bytes the new comment block adds to the metadata section.
	growth := int64(len(data)) + 4
	if commentIdx >= 0 {
		growth -= blocks[commentIdx].Length + 4
	}

	paddingIdx := -1
	for i, b := range blocks {
		if b.Type == blockTypePadding && b.Length-growth >= 0 {
			paddingIdx = i
			break
		}
	}

	// src blocks are copied from the original, data blocks are emitted as
	// given and anything else is padding.
	type outBlock struct {
		typ    uint8
		src    *block
		data   []byte
		zeroes int64
	}
	var out []outBlock
	for i := range blocks {
		b := &blocks[i]
		switch {
		case i == commentIdx:
			out = append(out, outBlock{typ: blockTypeVorbisComment, data: data})
		case i == paddingIdx:
			out = append(out, outBlock{typ: blockTypePadding, zeroes: b.Length - growth})
		default:
			out = append(out, outBlock{typ: b.Type, src: b})
		}
		if commentIdx < 0 && i == 0 {
			// New comment block goes straight after STREAMINFO
			out = append(out, outBlock{typ: blockTypeVorbisComment, data: data})
		}
	}

	sw := binary.NewSafeWriter(w)
	if err := sw.WriteString("fLaC"); err != nil {
		return err
	}

	for i, ob := range out {
		last := i == len(out)-1
		switch {
		case ob.src != nil:
			if err := sw.WriteBytes(header(ob.typ, int(ob.src.Length), last)); err != nil {
				return err
			}
			if err := sw.CopyFrom(original, ob.src.Offset, ob.src.Length); err != nil {
				return fmt.Errorf("copy metadata block: %w", err)
			}
		case ob.data != nil:
			if err := sw.WriteBytes(header(ob.typ, len(ob.data), last)); err != nil {
				return err
			}
			if err := sw.WriteBytes(ob.data); err != nil {
				return err
			}
		default:
			if err := sw.WriteBytes(header(ob.typ, int(ob.zeroes), last)); err != nil {
				return err
			}
			if err := sw.WriteZeros(ob.zeroes); err != nil {
				return err
			}
		}
	}

	if err := sw.CopyFrom(original, audioStart, originalSize-audioStart); err != nil {
		return fmt.Errorf("copy audio frames: %w", err)
	}
	return nil
}
