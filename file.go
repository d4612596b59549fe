package tagfix

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/tagfix/internal/registry"
	"github.com/simonhull/tagfix/internal/types"
)

// File represents an opened audio file with its Title and Artist tags.
//
// Modify Tags and call Save to write them back. Always call Close when
// done to release the file handle:
//
//	file, err := tagfix.Open("song.mp3")
//	if err != nil {
//		return err
//	}
//	defer file.Close()
type File struct {
	types.File

	// Source of the original bytes, used by Save
	reader io.ReaderAt
	closer io.Closer
}

// Open opens an audio file and reads its Title and Artist tags.
//
// Supported formats: MP3, AAC, FLAC, Ogg Vorbis, Opus, M4A, M4B, WAV, WMA
//
// A file that is not a recognised container gives an UnsupportedFormatError;
// a recognised but malformed one gives a CorruptedFileError. Non-fatal
// problems are reported in File.Warnings.
//
// Options can be provided to customize parsing behavior:
//
//	file, err := tagfix.Open("song.flac", tagfix.WithStrictParsing())
func Open(path string, opts ...Option) (*File, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	file, err := openReader(f, stat.Size(), path, options)
	if err != nil {
		f.Close()
		return nil, err
	}
	file.closer = f

	return file, nil
}

// openReader parses from an io.ReaderAt (internal, for testing)
func openReader(r io.ReaderAt, size int64, path string, options *openOptions) (*File, error) {
	format, err := types.DetectFormat(r, size, path)
	if err != nil {
		return nil, err
	}

	parser := registry.Get(format)
	if parser == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no parser available for format %s", format),
		}
	}

	parsed, err := parser.Parse(r, size, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	file := &File{File: *parsed, reader: r}
	file.Path = path
	file.Format = format
	file.Size = size

	if options.strictParsing && len(file.Warnings) > 0 {
		return nil, fmt.Errorf("strict parsing failed: %s", file.Warnings[0])
	}
	if options.ignoreWarnings {
		file.Warnings = nil
	}

	return file, nil
}

// Close releases resources held by the file.
//
// After Close is called, the File should not be used.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	f.reader = nil
	return err
}

// OpenContext opens a file with context support for cancellation.
//
// The context is checked before the file is opened; parsing a single file
// is not interrupted.
func OpenContext(ctx context.Context, path string, opts ...Option) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

// OpenMany opens multiple audio files concurrently.
//
// Files are parsed in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input paths.
//
// If any file fails to open, all successfully opened files are closed
// and an error is returned.
//
// Example:
//
//	files, err := tagfix.OpenMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer func() {
//		for _, f := range files {
//			f.Close()
//		}
//	}()
func OpenMany(ctx context.Context, paths ...string) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*File, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			file, err := OpenContext(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, file := range results {
			if file != nil {
				file.Close()
			}
		}
		return nil, err
	}

	return results, nil
}
