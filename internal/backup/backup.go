// Package backup copies files into a backup directory before they are
// modified.
package backup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
)

// Suffix is appended to the file name of every backup.
const Suffix = ".backup"

// Store writes backups into one directory.
type Store struct {
	dir string
}

// New creates dir when needed and returns a Store writing into it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backup directory.
func (s *Store) Dir() string {
	return s.dir
}

// PathFor returns where the backup of path is written: <dir>/<name>.backup.
func (s *Store) PathFor(path string) string {
	return filepath.Join(s.dir, filepath.Base(path)+Suffix)
}

// Backup copies path byte for byte to PathFor(path), keeping its
// modification time. An existing backup of the same name is overwritten.
func (s *Store) Backup(path string) (string, error) {
	dst := s.PathFor(path)
	err := copy.Copy(path, dst, copy.Options{
		PreserveTimes: true,
		Sync:          true,
	})
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", filepath.Base(path), err)
	}
	return dst, nil
}
