package m4a

import (
	"fmt"
	"io"
	"math"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// writer implements the registry.FormatWriter interface.
//
// The movie atom is rebuilt in memory. A change in its size is absorbed by a
// free atom that directly follows it when one is large enough; otherwise
// media data after the movie atom moves and every chunk offset pointing past
// it is adjusted.
type writer struct{}

// Write copies original to w with file.Tags applied.
func (wr *writer) Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error {
	sr := binary.NewSafeReader(original, originalSize, file.Path)

	top, err := readAtoms(sr, 0, originalSize)
	if err != nil {
		return err
	}
	idx := -1
	fragmented := false
	for i, a := range top {
		switch a.Type {
		case "moov":
			if idx < 0 {
				idx = i
			}
		case "moof":
			fragmented = true
		}
	}
	if idx < 0 {
		return &types.CorruptedFileError{Path: file.Path, Reason: "no movie atom"}
	}
	moovAtom := top[idx]

	moov, err := loadMoov(sr, moovAtom)
	if err != nil {
		return err
	}
	ilst := ilstFor(moov)
	setItem(ilst, keyTitle, file.Tags.Title)
	setItem(ilst, keyArtist, file.Tags.Artist)

	delta := int64(moov.size()) - int64(moovAtom.Size)

	// A following free atom can absorb the change
	var free *Atom
	if idx+1 < len(top) {
		next := top[idx+1]
		if (next.Type == "free" || next.Type == "skip") && !next.Extended && int64(next.Size)-delta >= 8 {
			free = next
		}
	}

	if delta != 0 && free == nil {
		if fragmented {
			return &types.UnsupportedWriteError{Reason: "fragmented MP4 files cannot be resized", Format: file.Format}
		}
		if err := shiftChunkOffsets(moov, moovAtom.End(), delta); err != nil {
			return &types.UnsupportedWriteError{Reason: err.Error(), Format: file.Format}
		}
	}

	encoded, err := moov.encode(nil)
	if err != nil {
		return &types.UnsupportedWriteError{Reason: err.Error(), Format: file.Format}
	}

	sw := binary.NewSafeWriter(w)
	if err := sw.CopyFrom(original, 0, moovAtom.Offset); err != nil {
		return fmt.Errorf("copy leading atoms: %w", err)
	}
	if err := sw.WriteBytes(encoded); err != nil {
		return err
	}

	rest := moovAtom.End()
	if free != nil && delta != 0 {
		freeSize := int64(free.Size) - delta
		if err := binary.Write(sw, uint32(freeSize)); err != nil {
			return err
		}
		if err := sw.WriteString(free.Type); err != nil {
			return err
		}
		if err := sw.WriteZeros(freeSize - 8); err != nil {
			return err
		}
		rest = free.End()
	}

	if err := sw.CopyFrom(original, rest, originalSize-rest); err != nil {
		return fmt.Errorf("copy media data: %w", err)
	}
	return nil
}

// shiftChunkOffsets adds delta to every stco/co64 entry at or past boundary.
func shiftChunkOffsets(moov *box, boundary, delta int64) error {
	var err error
	moov.walk(func(b *box) {
		if err != nil {
			return
		}
		switch b.typ {
		case "stco":
			err = shiftTable(b.payload, 4, boundary, delta)
		case "co64":
			err = shiftTable(b.payload, 8, boundary, delta)
		}
	})
	return err
}

// shiftTable adjusts a chunk offset table body in place. width is 4 for
// stco and 8 for co64.
func shiftTable(p []byte, width int, boundary, delta int64) error {
	if len(p) < 8 {
		return fmt.Errorf("truncated chunk offset table")
	}
	count := int(binary.Decode[uint32](p[4:], binary.BigEndian))
	if count > (len(p)-8)/width {
		return fmt.Errorf("chunk offset table declares %d entries", count)
	}
	for i := range count {
		at := p[8+i*width:]
		if width == 4 {
			v := int64(binary.Decode[uint32](at, binary.BigEndian))
			if v < boundary {
				continue
			}
			v += delta
			if v < 0 || v > math.MaxUint32 {
				return fmt.Errorf("chunk offset %d does not fit in stco", v)
			}
			copy(at, binary.Encode(uint32(v), binary.BigEndian))
		} else {
			v := int64(binary.Decode[uint64](at, binary.BigEndian))
			if v < boundary {
				continue
			}
			copy(at, binary.Encode(uint64(v+delta), binary.BigEndian))
		}
	}
	return nil
}
