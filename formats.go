package tagfix

// Container codecs register themselves with the format registry.
import (
	_ "github.com/simonhull/tagfix/internal/asf"  // WMA
	_ "github.com/simonhull/tagfix/internal/flac" // FLAC
	_ "github.com/simonhull/tagfix/internal/m4a"  // M4A/M4B
	_ "github.com/simonhull/tagfix/internal/mp3"  // MP3/AAC
	_ "github.com/simonhull/tagfix/internal/ogg"  // Ogg Vorbis/Opus
	_ "github.com/simonhull/tagfix/internal/riff" // WAV
)
