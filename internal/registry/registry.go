// Package registry maps container formats to the codecs that read and
// rewrite their Title/Artist tags.
package registry

import (
	"io"
	"slices"

	"github.com/simonhull/tagfix/internal/types"
)

// FormatParser is the interface all format parsers implement.
type FormatParser interface {
	// Parse extracts the Title and Artist tags from an audio file.
	// Returns a partially initialized File (Path, Format, Size set by caller).
	Parse(r io.ReaderAt, size int64, path string) (*types.File, error)
}

// FormatWriter is the interface format writers implement.
type FormatWriter interface {
	// Write writes a copy of original to w with file.Tags applied.
	// Everything except the tag storage is carried over unchanged.
	Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error
}

// parsers maps formats to their parsers.
var parsers = make(map[types.Format]FormatParser)

// writers maps formats to their writers.
var writers = make(map[types.Format]FormatWriter)

// Register registers a parser for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, parser FormatParser) {
	parsers[format] = parser
}

// Get returns the parser for a given format.
// Returns nil if no parser is registered for the format.
func Get(format types.Format) FormatParser {
	return parsers[format]
}

// RegisterWriter registers a writer for a format.
// This is called by format packages during initialization (init functions).
func RegisterWriter(format types.Format, writer FormatWriter) {
	writers[format] = writer
}

// GetWriter returns the writer for a given format.
// Returns nil if no writer is registered for the format.
func GetWriter(format types.Format) FormatWriter {
	return writers[format]
}

// Formats returns the formats that have both a parser and a writer, in
// declaration order.
func Formats() []types.Format {
	var out []types.Format
	for f := range parsers {
		if writers[f] != nil {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}
