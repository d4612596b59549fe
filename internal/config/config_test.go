package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/tagfix/internal/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.Dir)
	assert.Equal(t, DefaultBackupDirName, cfg.BackupDirName)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.False(t, cfg.DryRun)

	// Callers may change the list without touching the defaults
	cfg.Extensions[0] = ".xyz"
	assert.Equal(t, ".mp3", DefaultExtensions[0])
}

func TestValidate_NormalizesExtensions(t *testing.T) {
	cfg := Default()
	cfg.Dir = t.TempDir()
	cfg.Extensions = []string{"MP3", ".Flac", " .ogg "}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{".mp3", ".flac", ".ogg"}, cfg.Extensions)
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty dir", func(c *Config) { c.Dir = "" }},
		{"missing dir", func(c *Config) { c.Dir = filepath.Join(dir, "missing") }},
		{"dir is a file", func(c *Config) { c.Dir = file }},
		{"empty backup name", func(c *Config) { c.BackupDirName = "" }},
		{"backup name with separator", func(c *Config) { c.BackupDirName = "a/b" }},
		{"parent backup name", func(c *Config) { c.BackupDirName = ".." }},
		{"no extensions", func(c *Config) { c.Extensions = nil }},
		{"bare dot extension", func(c *Config) { c.Extensions = []string{"."} }},
		{"bad exclude", func(c *Config) { c.Exclude = []string{"[abc"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Dir = dir
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBackupDir(t *testing.T) {
	cfg := &Config{Dir: filepath.FromSlash("/music"), BackupDirName: "backup"}

	assert.Equal(t, filepath.Join("/music", "backup"), cfg.BackupDir())
}

func TestLogLevel(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, logging.InfoLevel, cfg.LogLevel())

	cfg.Verbose = true
	assert.Equal(t, logging.DebugLevel, cfg.LogLevel())
}
