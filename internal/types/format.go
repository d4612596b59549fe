package types

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/simonhull/tagfix/internal/binary"
)

// Format represents the detected audio container format
//
//go:generate stringer -type=Format -linecomment
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota // Unknown
	// FormatFLAC represents FLAC audio files.
	FormatFLAC // FLAC
	// FormatMP3 represents MP3 audio files.
	FormatMP3 // MP3
	// FormatM4A represents M4A audio files.
	FormatM4A // M4A
	// FormatM4B represents M4B audiobook files.
	FormatM4B // M4B
	// FormatOgg represents Ogg Vorbis audio files.
	FormatOgg // Ogg Vorbis
	// FormatOpus represents Opus audio files.
	FormatOpus // Opus
	// FormatWAV represents WAV audio files.
	FormatWAV // WAV
	// FormatWMA represents ASF/WMA audio files.
	FormatWMA // WMA
	// FormatAAC represents raw ADTS AAC streams.
	FormatAAC // AAC
)

var formatNames = map[Format]string{
	FormatUnknown: "Unknown",
	FormatFLAC:    "FLAC",
	FormatMP3:     "MP3",
	FormatM4A:     "M4A",
	FormatM4B:     "M4B",
	FormatOgg:     "Ogg Vorbis",
	FormatOpus:    "Opus",
	FormatWAV:     "WAV",
	FormatWMA:     "WMA",
	FormatAAC:     "AAC",
}

// String returns the display name of the format.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "Unknown"
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatFLAC:
		return []string{".flac"}
	case FormatMP3:
		return []string{".mp3"}
	case FormatM4A:
		return []string{".m4a", ".mp4", ".m4p"}
	case FormatM4B:
		return []string{".m4b"}
	case FormatOgg:
		return []string{".ogg", ".oga"}
	case FormatOpus:
		return []string{".opus"}
	case FormatWAV:
		return []string{".wav"}
	case FormatWMA:
		return []string{".wma", ".asf"}
	case FormatAAC:
		return []string{".aac"}
	case FormatUnknown:
		return nil
	default:
		return nil
	}
}

// asfHeaderGUID is the on-disk form of 75B22630-668E-11CF-A6D9-00AA0062CE6C.
var asfHeaderGUID = []byte{
	0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
	0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
}

// DetectFormat determines the audio file format by examining magic bytes.
//
// Supported formats: FLAC, MP3, AAC, M4A, M4B, Ogg Vorbis, Opus, WAV, WMA
//
// Detection is based on file signatures at the beginning of the file. The
// path is only consulted to tell an ID3-prefixed AAC stream from an MP3 one,
// since both start with the same tag.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) { //nolint:gocyclo // Format detection requires checking multiple magic byte patterns
	// File must be at least 4 bytes for any meaningful detection
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	sr := binary.NewSafeReader(r, size, path)

	magic := make([]byte, 4)
	if err := sr.ReadAt(magic, 0, "file magic bytes"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	if string(magic) == "fLaC" {
		return FormatFLAC, nil
	}

	// ID3v2 tag: MP3 unless the file is named as an AAC stream
	if string(magic[:3]) == "ID3" {
		if strings.EqualFold(filepath.Ext(path), ".aac") {
			return FormatAAC, nil
		}
		return FormatMP3, nil
	}

	// ADTS sync word (12 bits set, layer bits zero)
	if magic[0] == 0xFF && magic[1]&0xF6 == 0xF0 {
		return FormatAAC, nil
	}

	// MPEG audio frame sync (11 bits set)
	if magic[0] == 0xFF && (magic[1]&0xE0) == 0xE0 {
		return FormatMP3, nil
	}

	// Ogg (OggS) - could be Vorbis or Opus
	if string(magic) == "OggS" { //nolint:nestif // Nested structure is clearer than extracting to separate function
		// First packet starts after the 27 byte header and the segment table.
		if size >= 36 {
			segCount := make([]byte, 1)
			if err := sr.ReadAt(segCount, 26, "segment count"); err == nil {
				packetOffset := int64(27 + int(segCount[0]))
				if packetOffset+8 <= size {
					codecMagic := make([]byte, 8)
					if err := sr.ReadAt(codecMagic, packetOffset, "codec magic"); err == nil {
						if string(codecMagic) == "OpusHead" {
							return FormatOpus, nil
						}
					}
				}
			}
		}
		return FormatOgg, nil
	}

	// RIFF/WAV (RIFF....WAVE)
	if string(magic) == "RIFF" && size >= 12 {
		waveTag := make([]byte, 4)
		if err := sr.ReadAt(waveTag, 8, "WAVE tag"); err == nil {
			if string(waveTag) == "WAVE" {
				return FormatWAV, nil
			}
		}
	}

	// ASF header object
	if size >= 30 {
		guid := make([]byte, 16)
		if err := sr.ReadAt(guid, 0, "ASF header GUID"); err == nil && bytes.Equal(guid, asfHeaderGUID) {
			return FormatWMA, nil
		}
	}

	// MP4 family: ftyp atom
	if size < 12 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "unsupported file format",
		}
	}

	atomSize, err := binary.Read[uint32](sr, 0, "ftyp atom size")
	if err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	atomType := make([]byte, 4)
	if err := sr.ReadAt(atomType, 4, "ftyp atom type"); err != nil || string(atomType) != "ftyp" {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "unsupported file format",
		}
	}

	// ftyp atom must be at least 16 bytes (size + type + brand + version)
	if atomSize < 16 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "ftyp atom too small",
		}
	}

	brand := make([]byte, 4)
	if err := sr.ReadAt(brand, 8, "major brand"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read major brand",
		}
	}

	switch string(brand) {
	case "M4B ":
		return FormatM4B, nil
	case "M4A ", "mp42", "isom", "mp41", "dash":
		return FormatM4A, nil
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unsupported file brand",
	}
}
