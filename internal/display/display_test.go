package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simonhull/tagfix"
	"github.com/simonhull/tagfix/internal/fixer"
)

func TestValue(t *testing.T) {
	assert.Equal(t, "Unknown", Value(tagfix.TagValue{}))
	assert.Equal(t, "", Value(tagfix.Text("")))
	assert.Equal(t, `A\x00B`, Value(tagfix.Text("A\x00B")))
	assert.Equal(t, `A\B`, Value(tagfix.Text(`A\B`)))
	assert.Equal(t, `["A" "B\x09"]`, Value(tagfix.List("A", "B\t")))
}

func TestResult_Modified(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Result("song.mp3", fixer.Result{
		Format: tagfix.FormatMP3,
		Status: fixer.Modified,
		Title:  tagfix.Text("Song"),
		Artist: tagfix.Text("A, B"),
		Changes: []fixer.Change{
			{Field: tagfix.FieldArtist, Old: tagfix.Text("A\x00B"), New: tagfix.Text("A, B")},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "🎵 Song: Song")
	assert.Contains(t, out, "🎤 Artist: A, B")
	assert.Contains(t, out, `✓ Artist: 'A\x00B' → 'A, B'`)
	assert.NotContains(t, out, "dry run")
}

func TestResult_Unchanged(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Result("a.flac", fixer.Result{Format: tagfix.FormatFLAC, Status: fixer.Unchanged})

	assert.Contains(t, buf.String(), "🎵 Song: Unknown")
	assert.Contains(t, buf.String(), "- No changes needed")
}

func TestResult_SkippedAndFailed(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Result("x.mp3", fixer.Result{Status: fixer.Skipped, Err: errors.New("unsupported format")})
	p.Result("y.mp3", fixer.Result{Status: fixer.Failed, Err: errors.New("permission denied")})

	out := buf.String()
	assert.Contains(t, out, "✗ Could not read file: x.mp3")
	assert.Contains(t, out, "✗ Error processing y.mp3: permission denied")
	assert.NotContains(t, out, "Song:")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Summary(fixer.Stats{Processed: 4, Modified: 2, Unchanged: 1, Failed: 1}, "/music/backup", false)

	out := buf.String()
	assert.Contains(t, out, strings.Repeat("=", 50))
	assert.Contains(t, out, "Files processed: 4")
	assert.Contains(t, out, "Files modified: 2")
	assert.Contains(t, out, "Files failed: 1")
	assert.Contains(t, out, "Backups saved in: /music/backup")
	assert.NotContains(t, out, "skipped")
}

func TestSummary_DryRun(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Summary(fixer.Stats{Processed: 1, Modified: 1}, "/music/backup", true)

	assert.Contains(t, buf.String(), "Files that would be modified: 1")
	assert.NotContains(t, buf.String(), "Backups saved in")
}

func TestPause(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Pause(strings.NewReader("\n"))

	assert.Equal(t, "Press Enter to exit...", buf.String())
}

func TestBanner_NoColorIsPlain(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Banner("/music", true)

	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Processing audio files in: /music")
	assert.Contains(t, buf.String(), "Dry run")
}
