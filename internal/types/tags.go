package types

import (
	"iter"
	"slices"
	"strings"
)

// Tags holds the two fields this module reads and rewrites.
//
// A zero TagValue means the container has no such tag, which is different
// from a read failure (reported as an error by the codec).
type Tags struct {
	Title  TagValue
	Artist TagValue
}

// Field names used in reports and by Tags.Get/Tags.Set.
const (
	FieldTitle  = "Title"
	FieldArtist = "Artist"
)

// Fields returns an iterator over the fields in processing order (Title, then Artist).
func (t *Tags) Fields() iter.Seq2[string, TagValue] {
	return func(yield func(string, TagValue) bool) {
		if !yield(FieldTitle, t.Title) {
			return
		}
		yield(FieldArtist, t.Artist)
	}
}

// Get returns the value of the named field.
func (t *Tags) Get(field string) TagValue {
	switch field {
	case FieldTitle:
		return t.Title
	case FieldArtist:
		return t.Artist
	}
	return TagValue{}
}

// Set replaces the value of the named field. Unknown names are ignored.
func (t *Tags) Set(field string, v TagValue) {
	switch field {
	case FieldTitle:
		t.Title = v
	case FieldArtist:
		t.Artist = v
	}
}

// TagValue is either a single text string or an ordered sequence of strings.
//
// Some containers store several values under one key (repeated Vorbis
// comments, several MP4 data atoms). TagValue remembers which shape it was
// read in so it can be written back in the same shape. Values are immutable;
// every transformation returns a new TagValue.
type TagValue struct {
	values []string
	list   bool
}

// Text returns a single-string TagValue.
func Text(s string) TagValue {
	return TagValue{values: []string{s}}
}

// List returns a sequence TagValue. An empty list is the zero (absent) value.
func List(values ...string) TagValue {
	if len(values) == 0 {
		return TagValue{}
	}
	return TagValue{values: slices.Clone(values), list: true}
}

// IsZero reports whether the tag is absent.
func (v TagValue) IsZero() bool {
	return len(v.values) == 0
}

// IsList reports whether the value was read as a sequence.
func (v TagValue) IsList() bool {
	return v.list
}

// Len returns the number of strings held.
func (v TagValue) Len() int {
	return len(v.values)
}

// Values returns a copy of the strings held.
func (v TagValue) Values() []string {
	return slices.Clone(v.values)
}

// All returns an iterator over the strings held.
func (v TagValue) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range v.values {
			if !yield(s) {
				return
			}
		}
	}
}

// First returns the first string, or "" when the tag is absent.
func (v TagValue) First() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

// Map returns a new TagValue of the same shape with f applied to every element.
func (v TagValue) Map(f func(string) string) TagValue {
	if v.IsZero() {
		return v
	}
	out := make([]string, len(v.values))
	for i, s := range v.values {
		out[i] = f(s)
	}
	return TagValue{values: out, list: v.list}
}

// Equal reports whether both values have the same shape and contents.
func (v TagValue) Equal(other TagValue) bool {
	return v.list == other.list && slices.Equal(v.values, other.values)
}

// String renders the value for display. Sequences are shown as
// ["a" "b"] so element boundaries stay visible.
func (v TagValue) String() string {
	if !v.list {
		return v.First()
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range v.values {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('"')
		b.WriteString(s)
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return b.String()
}
