package flac

import (
	"fmt"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// Metadata block types
const (
	blockTypeStreamInfo    = 0
	blockTypePadding       = 1
	blockTypeVorbisComment = 4
)

// maxBlockLength is the largest length a 24-bit block header can express.
const maxBlockLength = 1<<24 - 1

// block describes one metadata block. Offset points at the block data,
// four bytes past its header.
type block struct {
	Type   uint8
	Offset int64
	Length int64
	Last   bool
}

// scanBlocks walks the metadata block chain and returns the blocks along
// with the offset where audio frames begin.
func scanBlocks(sr *binary.SafeReader) ([]block, int64, error) {
	magic, err := sr.Bytes(0, 4, "FLAC magic bytes")
	if err != nil {
		return nil, 0, fmt.Errorf("read FLAC magic: %w", err)
	}
	if string(magic) != "fLaC" {
		return nil, 0, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: 0,
			Reason: "invalid FLAC magic bytes",
		}
	}

	var blocks []block
	offset := int64(4) // After "fLaC"
	for {
		header, err := binary.Read[uint32](sr, offset, "metadata block header")
		if err != nil {
			return nil, 0, &types.CorruptedFileError{
				Path:   sr.Path(),
				Offset: offset,
				Reason: "truncated metadata block header",
			}
		}

		b := block{
			Last:   header>>31 == 1,
			Type:   uint8((header >> 24) & 0x7F),
			Length: int64(header & 0x00FFFFFF),
			Offset: offset + 4,
		}
		if b.Offset+b.Length > sr.Size() {
			return nil, 0, &types.CorruptedFileError{
				Path:   sr.Path(),
				Offset: offset,
				Reason: fmt.Sprintf("metadata block of %d bytes extends past end of file", b.Length),
			}
		}
		if len(blocks) == 0 && b.Type != blockTypeStreamInfo {
			return nil, 0, &types.CorruptedFileError{
				Path:   sr.Path(),
				Offset: offset,
				Reason: "first metadata block is not STREAMINFO",
			}
		}

		blocks = append(blocks, b)
		offset = b.Offset + b.Length

		if b.Last {
			return blocks, offset, nil
		}
	}
}

// header encodes a metadata block header.
func header(blockType uint8, length int, last bool) []byte {
	h := uint32(blockType&0x7F)<<24 | uint32(length)&0x00FFFFFF
	if last {
		h |= 1 << 31
	}
	return binary.Encode(h, binary.BigEndian)
}
