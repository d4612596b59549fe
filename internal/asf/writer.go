package asf

import (
	"fmt"
	"io"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// writer implements the registry.FormatWriter interface.
//
// The Header Object is rebuilt with an updated (or new) Content Description
// Object, and the file size recorded in the File Properties Object is
// adjusted. Everything after the Header Object is copied unchanged.
type writer struct{}

// Write copies original to w with file.Tags applied.
func (wr *writer) Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error {
	sr := binary.NewSafeReader(original, originalSize, file.Path)

	h, err := readHeader(sr)
	if err != nil {
		return err
	}

	d := &description{}
	i := h.find(contentDescriptionGUID)
	if i >= 0 {
		if d, err = parseDescription(h.objects[i].Body); err != nil {
			return &types.CorruptedFileError{Path: file.Path, Offset: headerObjectSize, Reason: err.Error()}
		}
	}
	if err := d.set(fieldTitle, file.Tags.Title); err != nil {
		return &types.UnsupportedWriteError{Reason: err.Error(), Format: file.Format}
	}
	if err := d.set(fieldAuthor, file.Tags.Artist); err != nil {
		return &types.UnsupportedWriteError{Reason: err.Error(), Format: file.Format}
	}
	if i >= 0 {
		h.objects[i].Body = d.encode()
	} else {
		h.objects = append(h.objects, object{ID: contentDescriptionGUID, Body: d.encode()})
	}

	encoded := h.encode()
	newSize := originalSize - int64(h.size) + int64(len(encoded))

	if j := h.find(filePropertiesGUID); j >= 0 {
		off := filePropertiesSizeOffset - objectHeaderSize
		if len(h.objects[j].Body) >= off+8 {
			copy(h.objects[j].Body[off:], binary.Encode(uint64(newSize), binary.LittleEndian))
			encoded = h.encode()
		}
	}

	sw := binary.NewSafeWriter(w)
	if err := sw.WriteBytes(encoded); err != nil {
		return err
	}
	if err := sw.CopyFrom(original, int64(h.size), originalSize-int64(h.size)); err != nil {
		return fmt.Errorf("copy data object: %w", err)
	}
	return nil
}
