package tagfix

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/simonhull/tagfix/internal/registry"
)

// Save writes the current tags back to the original file.
//
// This is an atomic operation: writes to a temporary file first, then renames
// to the original path. If any step fails, the original file remains unchanged.
//
//	err := file.Save(tagfix.WithPreserveModTime())
//
// Returns UnsupportedWriteError if no writer is registered for the format
// or the container cannot hold the new tags.
func (f *File) Save(opts ...SaveOption) error {
	return f.SaveAs(f.Path, opts...)
}

// SaveAs writes the file with the current tags to a new location.
//
// The temporary file is created in the output directory so the final rename
// stays on one filesystem. When outputPath is the path the file was opened
// from, the handle is reopened on the new contents afterwards.
func (f *File) SaveAs(outputPath string, opts ...SaveOption) error { //nolint:gocyclo // Atomic file operations require sequential steps
	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	writer := registry.GetWriter(f.Format)
	if writer == nil {
		return &UnsupportedWriteError{
			Format: f.Format,
			Reason: "no writer registered",
		}
	}

	if f.reader == nil {
		return fmt.Errorf("file not open: reader is nil")
	}

	var origInfo os.FileInfo
	if info, err := os.Stat(f.Path); err == nil {
		origInfo = info
	}

	tempFile, err := os.CreateTemp(filepath.Dir(outputPath), ".tagfix-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()    //nolint:errcheck // Best effort cleanup
			_ = os.Remove(tempPath) //nolint:errcheck // Best effort cleanup
		}
	}()

	if err := writer.Write(tempFile, &f.File, f.reader, f.Size); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if origInfo != nil {
		if err := tempFile.Chmod(origInfo.Mode().Perm()); err != nil {
			return fmt.Errorf("chmod temp file: %w", err)
		}
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// The open handle keeps Windows from replacing the file
	inPlace := filepath.Clean(outputPath) == filepath.Clean(f.Path)
	if inPlace && f.closer != nil {
		_ = f.Close() //nolint:errcheck // Read-only handle
	}

	if err := os.Rename(tempPath, outputPath); err != nil {
		if inPlace {
			_ = f.reopen(f.Path) //nolint:errcheck // Original is unchanged, keep it readable
		}
		return fmt.Errorf("rename temp to output: %w", err)
	}
	success = true

	if options.preserveModTime && origInfo != nil {
		_ = os.Chtimes(outputPath, origInfo.ModTime(), origInfo.ModTime()) //nolint:errcheck // Non-fatal: file was written successfully
	}

	if inPlace {
		if err := f.reopen(outputPath); err != nil {
			return fmt.Errorf("reopen: %w", err)
		}
	}

	if options.validate {
		if err := f.validateWrittenFile(outputPath); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	return nil
}

// reopen points the file at the current contents of path.
func (f *File) reopen(path string) error {
	h, err := os.Open(path)
	if err != nil {
		return err
	}
	stat, err := h.Stat()
	if err != nil {
		h.Close()
		return err
	}
	f.reader = h
	f.closer = h
	f.Size = stat.Size()
	return nil
}

// validateWrittenFile re-opens the file and compares Title and Artist.
// Absent values were not written and are not compared.
func (f *File) validateWrittenFile(path string) error {
	written, err := Open(path)
	if err != nil {
		return fmt.Errorf("re-open: %w", err)
	}
	defer written.Close() //nolint:errcheck // Best effort close

	for name, want := range f.Tags.Fields() {
		if want.IsZero() {
			continue
		}
		if got := written.Tags.Get(name); !got.Equal(want) {
			return fmt.Errorf("%s mismatch: got %q, want %q", name, got, want)
		}
	}
	return nil
}
