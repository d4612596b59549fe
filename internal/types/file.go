// Package types provides the core data structures shared by the tag codecs.
//
// This package defines File, Tags, TagValue and Format, which represent an
// audio file's Title/Artist metadata across all supported containers.
package types

// File represents an audio file whose Title and Artist tags have been read.
//
// Codecs fill Tags and Warnings; Path, Format and Size are set by the caller
// that detected the format.
type File struct {
	Path     string
	Warnings []Warning
	Tags     Tags
	Format   Format
	Size     int64
}

// Warn records a non-fatal problem found while parsing.
func (f *File) Warn(stage, message string, offset int64) {
	f.Warnings = append(f.Warnings, Warning{
		Stage:   stage,
		Message: message,
		Offset:  offset,
	})
}
