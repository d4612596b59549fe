package tagfix

import (
	"github.com/simonhull/tagfix/internal/separator"
	"github.com/simonhull/tagfix/internal/types"
)

// Tags is an alias to types.Tags.
type Tags = types.Tags

// TagValue is an alias to types.TagValue.
type TagValue = types.TagValue

// Field names accepted by Tags.Get and Tags.Set.
const (
	FieldTitle  = types.FieldTitle
	FieldArtist = types.FieldArtist
)

// Text returns a single-string TagValue.
func Text(s string) TagValue { return types.Text(s) }

// List returns a multi-value TagValue.
func List(values ...string) TagValue { return types.List(values...) }

// HasFormattingIssue reports whether s contains a malformed separator: a
// NUL byte, a doubled backslash, or a backslash between two letters or
// digits.
func HasFormattingIssue(s string) bool {
	return separator.HasFormattingIssue(s)
}

// HasIssue reports whether any value of v has a malformed separator.
// Absent values never do.
func HasIssue(v TagValue) bool {
	return separator.HasIssue(v)
}

// FixString rewrites the malformed separators of s as ", ".
func FixString(s string) string {
	return separator.FixString(s)
}

// FixValue applies FixString to every value of v, keeping its shape.
func FixValue(v TagValue) TagValue {
	return separator.Fix(v)
}
