// Package separator detects and repairs malformed multi-value separators in
// tag text.
//
// Taggers disagree on how to store several artists or titles in one field.
// Some write raw NUL bytes (ID3v2.4 lists flattened by other tools), some
// write a literal double backslash, and some a single backslash between two
// names. All of these are rewritten to the canonical ", " separator.
package separator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/simonhull/tagfix/internal/types"
)

// ws is the Unicode White_Space set plus the information separators
// U+001C to U+001F, which taggers and str.isspace treat as blanks. RE2's \s
// is ASCII only.
const ws = `[\t\n\v\f\r\x1c-\x1f \x{85}\p{Z}]`

var (
	// alnum, backslash, optional whitespace, alnum
	backslashSep = regexp.MustCompile(`([A-Za-z0-9])\\` + ws + `*([A-Za-z0-9])`)
	emptyField   = regexp.MustCompile(`,` + ws + `*,`)
	commaSpace   = regexp.MustCompile(`,` + ws + `+`)
	spaceRun     = regexp.MustCompile(ws + `+`)
)

// Canonical is the separator every malformed one is rewritten to.
const Canonical = ", "

// HasFormattingIssue reports whether s contains a NUL byte, a literal double
// backslash, or a backslash separating two alphanumerics.
func HasFormattingIssue(s string) bool {
	return strings.ContainsRune(s, 0) ||
		strings.Contains(s, `\\`) ||
		backslashSep.MatchString(s)
}

// HasIssue reports whether any element of v has a formatting issue.
// An absent value never does.
func HasIssue(v types.TagValue) bool {
	for s := range v.All() {
		if HasFormattingIssue(s) {
			return true
		}
	}
	return false
}

// Fix normalizes every element of v and returns a value of the same shape.
func Fix(v types.TagValue) types.TagValue {
	return v.Map(FixString)
}

// FixString rewrites malformed separators in s to ", " and tidies the
// whitespace around them.
//
// The backslash and double-comma rewrites run until nothing matches, so
// chains such as `a\b\c` or ",,," are fully handled and
// FixString(FixString(s)) == FixString(s).
func FixString(s string) string {
	s = strings.ReplaceAll(s, "\x00", Canonical)
	s = strings.ReplaceAll(s, `\\`, Canonical)
	s = replaceUntilStable(backslashSep, s, "${1}"+Canonical+"${2}")
	s = replaceUntilStable(emptyField, s, ",")
	s = commaSpace.ReplaceAllString(s, Canonical)
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimFunc(s, isSpace)
}

// isSpace reports whether r belongs to ws.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// replaceUntilStable applies re until the string stops changing. Matches
// consume their flanking characters, so a single pass can leave adjacent
// occurrences behind.
func replaceUntilStable(re *regexp.Regexp, s, repl string) string {
	for re.MatchString(s) {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			break
		}
		s = next
	}
	return s
}
