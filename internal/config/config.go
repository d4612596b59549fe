// Package config holds the settings of a fix run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mattn/go-isatty"

	"github.com/simonhull/tagfix/internal/logging"
)

// DefaultBackupDirName is the directory, inside the processed directory,
// that receives backups.
const DefaultBackupDirName = "backup"

// DefaultExtensions are the file extensions processed, compared without
// regard to case.
var DefaultExtensions = []string{".mp3", ".flac", ".m4a", ".wav", ".ogg", ".wma", ".aac"}

// Config is the configuration of one run.
type Config struct {
	// Dir is the directory whose files are processed (not recursively).
	Dir string
	// DryRun reports what would change without backing up or writing.
	DryRun bool
	// Pause waits for Enter before exiting.
	Pause bool
	// Verbose enables debug logging.
	Verbose bool
	// NoColor disables styled output.
	NoColor bool
	// BackupDirName is the name of the backup directory inside Dir.
	BackupDirName string
	// Extensions lists the file extensions to process.
	Extensions []string
	// Exclude lists glob patterns of file names to leave alone.
	Exclude []string
}

// Default returns the configuration used when no flag is given: the
// directory holding the executable, pausing only when stdin is a terminal.
func Default() *Config {
	return &Config{
		Dir:           ExecutableDir(),
		Pause:         stdinIsTerminal(),
		BackupDirName: DefaultBackupDirName,
		Extensions:    append([]string(nil), DefaultExtensions...),
	}
}

// ExecutableDir returns the directory of the running executable, falling
// back to the working directory.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Validate checks the configuration and normalizes extensions to lower
// case with a leading dot.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return errors.New("directory is required")
	}
	info, err := os.Stat(c.Dir)
	if err != nil {
		return fmt.Errorf("directory %s: %w", c.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.Dir)
	}

	if c.BackupDirName == "" || c.BackupDirName == "." || c.BackupDirName == ".." ||
		strings.ContainsAny(c.BackupDirName, `/\`) {
		return fmt.Errorf("invalid backup directory name %q", c.BackupDirName)
	}

	if len(c.Extensions) == 0 {
		return errors.New("at least one extension is required")
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext == "." {
			return fmt.Errorf("invalid extension %q", c.Extensions[i])
		}
		c.Extensions[i] = ext
	}

	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// BackupDir returns the absolute path of the backup directory.
func (c *Config) BackupDir() string {
	return filepath.Join(c.Dir, c.BackupDirName)
}

// LogLevel returns the log level selected by Verbose.
func (c *Config) LogLevel() logging.Level {
	if c.Verbose {
		return logging.DebugLevel
	}
	return logging.InfoLevel
}
