package tagfix

import (
	"io"

	"github.com/simonhull/tagfix/internal/registry"
	"github.com/simonhull/tagfix/internal/types"
)

// Format is an alias to types.Format.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown = types.FormatUnknown
	FormatFLAC    = types.FormatFLAC
	FormatMP3     = types.FormatMP3
	FormatM4A     = types.FormatM4A
	FormatM4B     = types.FormatM4B
	FormatOgg     = types.FormatOgg
	FormatOpus    = types.FormatOpus
	FormatWAV     = types.FormatWAV
	FormatWMA     = types.FormatWMA
	FormatAAC     = types.FormatAAC
)

// DetectFormat is a wrapper around types.DetectFormat.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}

// SupportedFormats returns the formats that can be both read and written.
func SupportedFormats() []Format {
	return registry.Formats()
}
