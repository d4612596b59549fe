// Package fixer applies the separator fix to one file at a time.
package fixer

import (
	"context"
	"fmt"

	"github.com/simonhull/tagfix"
	"github.com/simonhull/tagfix/internal/logging"
)

// Status is the outcome of processing one file.
type Status int

const (
	// Unchanged means no field needed fixing.
	Unchanged Status = iota
	// Modified means at least one field was fixed (and saved unless dry run).
	Modified
	// Skipped means the file could not be read as audio.
	Skipped
	// Failed means an I/O, backup or write error stopped processing.
	Failed
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Modified:
		return "modified"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Change records one rewritten field.
type Change struct {
	Field string
	Old   tagfix.TagValue
	New   tagfix.TagValue
}

// Result describes what happened to one file.
type Result struct {
	Path   string
	Format tagfix.Format
	Status Status

	// Title and Artist as they are after processing. Zero when absent.
	Title  tagfix.TagValue
	Artist tagfix.TagValue

	Changes []Change
	Backup  string // backup path, empty when none was made
	DryRun  bool
	Err     error
}

// Backupper copies a file aside before it is modified.
type Backupper interface {
	Backup(path string) (string, error)
}

// Fixer processes files with a backup store and a logger.
type Fixer struct {
	backup Backupper
	log    logging.Logger
	dryRun bool
	save   []tagfix.SaveOption
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithDryRun reports changes without backing up or writing.
func WithDryRun(dryRun bool) Option {
	return func(f *Fixer) {
		f.dryRun = dryRun
	}
}

// WithSaveOptions passes options to every save.
func WithSaveOptions(opts ...tagfix.SaveOption) Option {
	return func(f *Fixer) {
		f.save = append(f.save, opts...)
	}
}

// New returns a Fixer. log may be nil.
func New(backup Backupper, log logging.Logger, opts ...Option) *Fixer {
	if log == nil {
		log = logging.Nop()
	}
	f := &Fixer{backup: backup, log: log}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Process reads path, fixes defective Title and Artist values and writes
// them back. The file is backed up at most once, before the first change.
// Files that are not readable audio are Skipped; any other error Fails the
// file.
func (f *Fixer) Process(path string) Result {
	res := Result{Path: path, DryRun: f.dryRun}

	file, err := tagfix.Open(path)
	if err != nil {
		res.Err = err
		res.Status = Failed
		if tagfix.IsUnreadable(err) {
			res.Status = Skipped
		}
		f.log.Warn("cannot read file", "file", path, "status", res.Status, "err", err)
		return res
	}
	defer file.Close()

	res.Format = file.Format
	for _, w := range file.Warnings {
		f.log.Debug("parse warning", "file", path, "warning", w.String())
	}

	backedUp := false
	for field, value := range file.Tags.Fields() {
		if !tagfix.HasIssue(value) {
			continue
		}
		if !f.dryRun && !backedUp {
			if res.Backup, err = f.backup.Backup(path); err != nil {
				res.Err = err
				res.Status = Failed
				f.log.Error("backup failed", "file", path, "err", err)
				return f.withTags(res, file)
			}
			backedUp = true
		}
		fixed := tagfix.FixValue(value)
		res.Changes = append(res.Changes, Change{Field: field, Old: value, New: fixed})
		file.Tags.Set(field, fixed)
		f.log.Debug("fixed field", "file", path, "field", field, "old", fmt.Sprintf("%q", value), "new", fmt.Sprintf("%q", fixed))
	}

	if len(res.Changes) == 0 {
		res.Status = Unchanged
		return f.withTags(res, file)
	}

	if !f.dryRun {
		if err := file.Save(f.save...); err != nil {
			res.Err = err
			res.Status = Failed
			f.log.Error("save failed", "file", path, "err", err)
			return f.withTags(res, file)
		}
	}
	res.Status = Modified
	return f.withTags(res, file)
}

func (f *Fixer) withTags(res Result, file *tagfix.File) Result {
	res.Title = file.Tags.Title
	res.Artist = file.Tags.Artist
	return res
}

// Run processes paths in order, calling report after each file. It stops
// between files when ctx is cancelled and returns ctx.Err().
func (f *Fixer) Run(ctx context.Context, paths []string, report func(Result)) (Stats, error) {
	var stats Stats
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		res := f.Process(path)
		stats.Add(res)
		if report != nil {
			report(res)
		}
	}
	return stats, nil
}
