// Package m4a reads and rewrites the iTunes-style title and artist items of
// MP4 audio files (M4A and M4B).
package m4a

import (
	"fmt"

	"github.com/simonhull/tagfix/internal/binary"
	"github.com/simonhull/tagfix/internal/types"
)

// Atom represents an MP4/M4A/M4B atom (box)
type Atom struct {
	Size     uint64 // Total size including header
	Type     string // 4-character type code
	Offset   int64  // Position in file
	Extended bool   // Whether this uses 64-bit extended size
}

// HeaderSize returns the size of the atom header.
func (a *Atom) HeaderSize() int64 {
	if a.Extended {
		return 16
	}
	return 8
}

// DataSize returns the size of the atom's data (excluding header)
func (a *Atom) DataSize() uint64 {
	if a.Size < uint64(a.HeaderSize()) {
		return 0
	}
	return a.Size - uint64(a.HeaderSize())
}

// DataOffset returns the file offset where the atom's data starts
func (a *Atom) DataOffset() int64 {
	return a.Offset + a.HeaderSize()
}

// End returns the offset just past the atom.
func (a *Atom) End() int64 {
	return a.Offset + int64(a.Size)
}

// readAtomHeader reads an atom header at the given offset. end bounds the
// enclosing range; a size of zero means the atom runs to end.
func readAtomHeader(sr *binary.SafeReader, offset, end int64) (*Atom, error) {
	size32, err := binary.Read[uint32](sr, offset, "atom size")
	if err != nil {
		return nil, err
	}

	typeBytes, err := sr.Bytes(offset+4, 4, "atom type")
	if err != nil {
		return nil, err
	}

	atom := &Atom{
		Type:   string(typeBytes),
		Offset: offset,
	}

	switch size32 {
	case 0:
		atom.Size = uint64(end - offset)
	case 1:
		// Extended size (64-bit size follows)
		size64, err := binary.Read[uint64](sr, offset+8, "extended atom size")
		if err != nil {
			return nil, err
		}
		atom.Size = size64
		atom.Extended = true
	default:
		atom.Size = uint64(size32)
	}

	if atom.Size < uint64(atom.HeaderSize()) {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("invalid atom size %d (minimum is %d)", atom.Size, atom.HeaderSize()),
		}
	}
	if atom.Size > uint64(end-offset) {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("atom '%s' of %d bytes overruns its container", atom.Type, atom.Size),
		}
	}

	return atom, nil
}

// readAtoms returns the atoms laid end to end in [start, end).
func readAtoms(sr *binary.SafeReader, start, end int64) ([]*Atom, error) {
	var atoms []*Atom
	for offset := start; offset+8 <= end; {
		atom, err := readAtomHeader(sr, offset, end)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atom)
		offset = atom.End()
	}
	return atoms, nil
}

// findAtom searches for an atom of the given type within a range
// Returns the first matching atom or an error if not found
func findAtom(sr *binary.SafeReader, start, end int64, atomType string) (*Atom, error) {
	atoms, err := readAtoms(sr, start, end)
	if err != nil {
		return nil, err
	}
	for _, atom := range atoms {
		if atom.Type == atomType {
			return atom, nil
		}
	}
	return nil, fmt.Errorf("atom '%s' not found", atomType)
}
