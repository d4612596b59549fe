// Package tagfix repairs the separators in the Title and Artist tags of
// audio files.
//
// Some taggers store several artists (or title parts) joined by a NUL byte,
// a doubled backslash or a single backslash. Players then show "A\x00B" or
// "A\B" instead of "A, B". tagfix reads the two tags from the common audio
// containers, detects such separators and rewrites them as ", ".
//
// # Quick Start
//
// Fixing one file:
//
//	file, err := tagfix.Open("song.flac")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer file.Close()
//
//	if tagfix.HasIssue(file.Tags.Artist) {
//		file.Tags.Artist = tagfix.FixValue(file.Tags.Artist)
//		if err := file.Save(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Supported Formats
//
//   - MP3 and AAC: ID3v2.2, 2.3 and 2.4 (TIT2/TPE1), ID3v1 fallback
//   - FLAC: Vorbis comments (TITLE/ARTIST)
//   - Ogg Vorbis and Opus: comment header (TITLE/ARTIST)
//   - M4A/M4B: iTunes metadata atoms (©nam/©ART)
//   - WAV: ID3 chunk and LIST/INFO (INAM/IART)
//   - WMA: Content Description Object (Title/Author)
//
// # Tag Values
//
// A tag is read as a TagValue: either a single string or, for containers
// that store several values under one key, an ordered list. FixValue keeps
// that shape, so a list of two artists is written back as two values.
// A zero TagValue means the tag is absent.
//
// # Architecture
//
//	[File]              - Entry point with Open()
//	  ├─ [Tags]         - Title and Artist
//	  └─ Save/SaveAs    - Atomic rewrite through the format writer
//
// Each container has a parser and a writer registered by format. The
// separator rules live in one place and never depend on the container.
//
// # Saving
//
// Save writes the whole file to a temporary file next to the original,
// syncs it, and renames it over the original. A failed save leaves the
// original untouched:
//
//	err := file.Save(tagfix.WithPreserveModTime(), tagfix.WithValidation())
//
// # Concurrent Reads
//
//	files, err := tagfix.OpenMany(ctx, paths...)
//
// Files are opened in parallel, bounded by the number of CPUs.
package tagfix
