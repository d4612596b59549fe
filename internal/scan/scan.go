// Package scan lists the audio files of a directory.
package scan

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Options selects which files are listed.
type Options struct {
	// Extensions to include, lower case with a leading dot.
	Extensions []string
	// Exclude holds glob patterns matched against the file name.
	Exclude []string
}

// Entry is one audio file found by Dir.
type Entry struct {
	Path string
	Name string
	Size int64
}

// Dir returns the regular files directly inside dir whose extension is in
// opts.Extensions, compared without regard to case, sorted by name.
// Subdirectories (including the backup directory) are not entered.
func Dir(fsys afero.Fs, dir string, opts Options) ([]Entry, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		name := info.Name()
		if !slices.Contains(opts.Extensions, strings.ToLower(filepath.Ext(name))) {
			continue
		}
		excluded, err := isExcluded(name, opts.Exclude)
		if err != nil {
			return nil, err
		}
		if excluded {
			continue
		}
		entries = append(entries, Entry{
			Path: filepath.Join(dir, name),
			Name: name,
			Size: info.Size(),
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries, nil
}

func isExcluded(name string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// Paths returns the paths of entries.
func Paths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}
