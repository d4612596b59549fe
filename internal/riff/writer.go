package riff

import (
	"fmt"
	"io"
	"math"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// writer implements the registry.FormatWriter interface.
//
// Every ID3 chunk and LIST/INFO chunk gets the new values. When the file has
// neither, a LIST/INFO chunk is appended after the last chunk. Other chunks
// are copied unchanged and the form size is recomputed.
type writer struct{}

// Write copies original to w with file.Tags applied.
func (wr *writer) Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error {
	sr := binary.NewSafeReader(original, originalSize, file.Path)

	f, err := readForm(sr)
	if err != nil {
		return err
	}

	// Replacement bodies by chunk index
	bodies := make(map[int][]byte)
	tagged := false
	for i, c := range f.chunks {
		switch {
		case c.isID3():
			tag, err := readID3(sr, c)
			if err != nil {
				return &types.CorruptedFileError{Path: file.Path, Offset: c.Offset, Reason: err.Error()}
			}
			if tag.Incomplete {
				return &types.UnsupportedWriteError{Reason: "ID3v2 tag could not be read completely", Format: file.Format}
			}
			if err := tag.Apply(&file.Tags); err != nil {
				return err
			}
			if bodies[i], err = tag.Render(); err != nil {
				return &types.UnsupportedWriteError{Reason: err.Error(), Format: file.Format}
			}
			tagged = true
		case c.ID == "LIST":
			body, err := sr.Bytes(c.DataOffset(), int64(c.Size), "LIST chunk")
			if err != nil {
				return err
			}
			if !isInfoList(body) {
				continue
			}
			in, err := parseInfo(body)
			if err != nil {
				return &types.CorruptedFileError{Path: file.Path, Offset: c.Offset, Reason: err.Error()}
			}
			in.set(infoTitle, file.Tags.Title)
			in.set(infoArtist, file.Tags.Artist)
			bodies[i] = in.encode()
			tagged = true
		}
	}

	var appended []byte
	if !tagged && (!file.Tags.Title.IsZero() || !file.Tags.Artist.IsZero()) {
		in := &info{}
		in.set(infoTitle, file.Tags.Title)
		in.set(infoArtist, file.Tags.Artist)
		appended = in.encode()
	}

	// Form size: "WAVE" plus every chunk with its header and pad byte
	formSize := int64(4)
	for i, c := range f.chunks {
		n := int64(c.Size)
		if body, ok := bodies[i]; ok {
			n = int64(len(body))
		}
		formSize += 8 + n + n&1
	}
	if appended != nil {
		n := int64(len(appended))
		formSize += 8 + n + n&1
	}
	if formSize > math.MaxUint32 {
		return &types.UnsupportedWriteError{Reason: "RIFF form exceeds 4 GiB", Format: file.Format}
	}

	sw := binary.NewSafeWriter(w)
	if err := sw.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.WriteLE(sw, uint32(formSize)); err != nil {
		return err
	}
	if err := sw.WriteString("WAVE"); err != nil {
		return err
	}

	for i, c := range f.chunks {
		if body, ok := bodies[i]; ok {
			if err := writeChunk(sw, c.ID, body); err != nil {
				return err
			}
			continue
		}
		if err := sw.WriteString(c.ID); err != nil {
			return err
		}
		if err := binary.WriteLE(sw, c.Size); err != nil {
			return err
		}
		if err := sw.CopyFrom(original, c.DataOffset(), int64(c.Size)); err != nil {
			return fmt.Errorf("copy chunk '%s': %w", c.ID, err)
		}
		if c.Size&1 == 1 {
			if err := sw.WriteZeros(1); err != nil {
				return err
			}
		}
	}
	if appended != nil {
		if err := writeChunk(sw, "LIST", appended); err != nil {
			return err
		}
	}

	// Bytes after the form are kept as they are
	if f.end < originalSize {
		if err := sw.CopyFrom(original, f.end, originalSize-f.end); err != nil {
			return fmt.Errorf("copy trailing data: %w", err)
		}
	}
	return nil
}

// writeChunk writes a chunk header, its body and the pad byte when needed.
func writeChunk(sw *binary.SafeWriter, id string, body []byte) error {
	if err := sw.WriteString(id); err != nil {
		return err
	}
	if err := binary.WriteLE(sw, uint32(len(body))); err != nil {
		return err
	}
	if err := sw.WriteBytes(body); err != nil {
		return err
	}
	if len(body)&1 == 1 {
		return sw.WriteZeros(1)
	}
	return nil
}
