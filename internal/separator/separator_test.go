package separator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/tagfix/internal/types"
)

func TestHasFormattingIssue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"nul", "Queen\x00Bowie", true},
		{"double backslash", `Artist1\\Artist2`, true},
		{"backslash between letters", `AC\DC`, true},
		{"backslash then space", `Bob\ Alice`, true},
		{"backslash then tab", "Bob\\\tAlice", true},
		{"backslash then file separator", "a\\\x1cb", true},
		{"digits", `1\2`, true},
		{"clean", "Madonna", false},
		{"empty", "", false},
		{"comma separated", "Queen, David Bowie", false},
		{"drive letter", `C:\Users`, false},
		{"trailing backslash", `Queen\`, false},
		{"backslash before punctuation", `Queen\!`, false},
		{"non-ascii flank", `Björk\Ólafur`, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasFormattingIssue(tc.in))
		})
	}
}

func TestFixString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nul separator", "Queen\x00Bowie", "Queen, Bowie"},
		{"double backslash", `Artist1\\Artist2`, "Artist1, Artist2"},
		{"backslash and space", `Bob\ Alice`, "Bob, Alice"},
		{"clean", "Madonna", "Madonna"},
		{"double nul", "A\x00\x00B", "A, B"},
		{"lone nul", "\x00", ","},
		{"empty", "", ""},
		{"drive letter untouched", `C:\Users`, `C:\Users`},
		{"chained backslashes", `a\b\c`, "a, b, c"},
		{"chained commas", "a,,,b", "a,b"},
		{"trailing nul", "Queen\x00", "Queen,"},
		{"whitespace collapse", "  Queen   and\tBowie  ", "Queen and Bowie"},
		{"comma spacing", "Queen,   Bowie", "Queen, Bowie"},
		{"unicode space", "Queen\u00a0\u00a0Bowie", "Queen Bowie"},
		{"mixed defects", "A\x00B\\\\C\\D", "A, B, C, D"},
		{"nul then space", "Queen\x00 Bowie", "Queen, Bowie"},
		{"information separator trimmed", "\x1cB\x1f", "B"},
		{"information separators collapse", "Queen\x1d\x1eBowie", "Queen Bowie"},
		{"backslash then record separator", "a\\\x1eb", "a, b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FixString(tc.in))
		})
	}
}

func TestFixString_Idempotent(t *testing.T) {
	inputs := []string{
		"Queen\x00Bowie",
		`Artist1\\Artist2`,
		`a\b\c\d`,
		`a\\\b`,
		"A\x00\x00\x00B",
		",,,",
		" , , ",
		"x\x00 \x00y",
		`C:\Users\me`,
		"\x00",
		"",
		"plain text",
	}

	for _, in := range inputs {
		once := FixString(in)
		assert.Equal(t, once, FixString(once), "input %q", in)
	}
}

func TestFixString_CleanInputUnchanged(t *testing.T) {
	inputs := []string{"Madonna", "Simon & Garfunkel", "AC/DC", "Earth, Wind & Fire", `C:\Users`}

	for _, in := range inputs {
		require.False(t, HasFormattingIssue(in), "input %q", in)
		assert.Equal(t, in, FixString(in))
	}
}

func TestFixString_NoNewCommasWithoutIssue(t *testing.T) {
	inputs := []string{"Queen  Bowie", "  padded  ", "tab\tseparated", `end\`}

	for _, in := range inputs {
		require.False(t, HasFormattingIssue(in))
		assert.Equal(t, strings.Count(in, ","), strings.Count(FixString(in), ","), "input %q", in)
	}
}

func TestFix_PreservesShape(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		got := Fix(types.Text("Queen\x00Bowie"))
		assert.False(t, got.IsList())
		assert.Equal(t, "Queen, Bowie", got.First())
	})

	t.Run("list", func(t *testing.T) {
		got := Fix(types.List("A\x00B", "Clean", `C\D`))
		require.True(t, got.IsList())
		assert.Equal(t, []string{"A, B", "Clean", "C, D"}, got.Values())
	})

	t.Run("absent", func(t *testing.T) {
		assert.True(t, Fix(types.TagValue{}).IsZero())
	})
}

func TestHasIssue(t *testing.T) {
	assert.False(t, HasIssue(types.TagValue{}))
	assert.False(t, HasIssue(types.List("Queen", "Bowie")))
	assert.True(t, HasIssue(types.List("Queen", "A\x00B")))
	assert.True(t, HasIssue(types.Text(`A\\B`)))
}

func FuzzFixString(f *testing.F) {
	f.Add("Queen\x00Bowie")
	f.Add(`a\b\c`)
	f.Add(",, ,")
	f.Fuzz(func(t *testing.T, s string) {
		once := FixString(s)
		if twice := FixString(once); twice != once {
			t.Errorf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
		if HasFormattingIssue(once) {
			t.Errorf("output still has an issue: %q -> %q", s, once)
		}
	})
}
