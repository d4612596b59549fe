// Command tag-dump prints the raw Title and Artist values of audio files,
// quoted so NUL bytes and backslashes are visible, together with what
// tagfix would turn them into. For MP4 files it also prints the atom tree.
//
// Usage:
//
//	tag-dump <file>...
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/simonhull/tagfix"
	"github.com/simonhull/tagfix/internal/binary"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tag-dump <file>...")
		os.Exit(1)
	}

	code := 0
	for _, path := range os.Args[1:] {
		if err := dump(os.Stdout, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			code = 1
		}
	}
	os.Exit(code)
}

func dump(w io.Writer, path string) error {
	file, err := tagfix.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  format: %s (%d bytes)\n", file.Format, file.Size)
	for name, value := range file.Tags.Fields() {
		dumpField(w, name, value)
	}
	for _, warning := range file.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}

	if file.Format == tagfix.FormatM4A || file.Format == tagfix.FormatM4B {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		fmt.Fprintln(w, "  atoms:")
		dumpAtoms(w, binary.NewSafeReader(f, file.Size, path), 0, file.Size, 2)
	}
	return nil
}

func dumpField(w io.Writer, name string, value tagfix.TagValue) {
	if value.IsZero() {
		fmt.Fprintf(w, "  %s: <absent>\n", name)
		return
	}
	shape := "text"
	if value.IsList() {
		shape = "list"
	}
	fmt.Fprintf(w, "  %s (%s):\n", name, shape)
	for s := range value.All() {
		fmt.Fprintf(w, "    %q\n", s)
		if tagfix.HasFormattingIssue(s) {
			fmt.Fprintf(w, "      -> %q\n", tagfix.FixString(s))
		}
	}
}

// dumpAtoms prints the atoms between offset and end, recursing into
// container atoms.
func dumpAtoms(w io.Writer, sr *binary.SafeReader, offset, end int64, depth int) {
	indent := strings.Repeat("  ", depth)

	for offset+8 <= end {
		size32, err := binary.Read[uint32](sr, offset, "atom size")
		if err != nil {
			return
		}
		name, err := sr.Bytes(offset+4, 4, "atom type")
		if err != nil {
			return
		}
		atomType := string(name)

		size := int64(size32)
		headerSize := int64(8)
		switch size32 {
		case 0:
			size = end - offset
		case 1:
			ext, err := binary.Read[uint64](sr, offset+8, "extended atom size")
			if err != nil {
				return
			}
			size = int64(ext)
			headerSize = 16
		}
		if size < headerSize || offset+size > end {
			fmt.Fprintf(w, "%s%q (size: %d, offset: %d) truncated\n", indent, atomType, size, offset)
			return
		}

		fmt.Fprintf(w, "%s%s (size: %d, offset: %d)\n", indent, atomType, size, offset)

		if isContainer(atomType) {
			dataOffset := offset + headerSize
			// meta is a full atom: version and flags precede its children
			if atomType == "meta" {
				dataOffset += 4
			}
			dumpAtoms(w, sr, dataOffset, offset+size, depth+1)
		}

		offset += size
	}
}

func isContainer(atomType string) bool {
	switch atomType {
	case "moov", "trak", "mdia", "minf", "stbl", "udta", "meta", "ilst", "edts",
		"\xa9nam", "\xa9ART":
		return true
	}
	return false
}
