// Package display renders the progress and summary of a fix run.
package display

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/simonhull/tagfix"
	"github.com/simonhull/tagfix/internal/fixer"
)

// ruleWidth is the width of the "=====" separator lines.
const ruleWidth = 50

// Printer writes human readable output.
type Printer struct {
	w io.Writer

	heading lipgloss.Style
	rule    lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	dim     lipgloss.Style
}

// New returns a Printer writing to w. Styles are dropped when color is
// false or w is not a terminal.
func New(w io.Writer, color bool) *Printer {
	p := &Printer{w: w}
	if !color {
		plain := lipgloss.NewStyle()
		p.heading, p.rule, p.ok, p.warn, p.fail, p.dim = plain, plain, plain, plain, plain, plain
		return p
	}
	r := lipgloss.NewRenderer(w)
	p.heading = r.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	p.rule = r.NewStyle().Foreground(lipgloss.Color("8"))
	p.ok = r.NewStyle().Foreground(lipgloss.Color("10"))
	p.warn = r.NewStyle().Foreground(lipgloss.Color("11"))
	p.fail = r.NewStyle().Foreground(lipgloss.Color("9"))
	p.dim = r.NewStyle().Faint(true)
	return p
}

func (p *Printer) println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Rule prints a separator line.
func (p *Printer) Rule() {
	p.println(p.rule.Render(strings.Repeat("=", ruleWidth)))
}

// Banner prints the tool header and the directory being processed.
func (p *Printer) Banner(dir string, dryRun bool) {
	p.println(p.heading.Render("Audio Tag Fixer"))
	p.Rule()
	p.println("This tool fixes separator issues in Title and Artist tags:")
	p.println(`• Replaces null bytes (\x00) with ', '`)
	p.println(`• Replaces double backslashes (\\) with ', '`)
	p.println(`• Replaces single backslashes (\) with ', '`)
	p.println()
	if dryRun {
		p.println(p.warn.Render("Dry run: no file will be backed up or modified."))
	}
	p.println("Processing audio files in:", dir)
	p.println()
}

// NoFiles reports an empty directory.
func (p *Printer) NoFiles() {
	p.println("No audio files found in the current directory.")
}

// Found reports how many files will be processed.
func (p *Printer) Found(n int) {
	p.println(fmt.Sprintf("Found %d audio file(s)", n))
	p.println()
}

// Start prints the name of the file about to be processed.
func (p *Printer) Start(name string) {
	p.println("Processing:", name)
}

// Result prints the outcome of one file.
func (p *Printer) Result(name string, r fixer.Result) {
	switch r.Status {
	case fixer.Skipped:
		p.println(" ", p.fail.Render("✗ Could not read file: "+name), p.dim.Render(errText(r.Err)))
		p.println()
		return
	case fixer.Failed:
		if r.Format == tagfix.FormatUnknown {
			p.println(" ", p.fail.Render(fmt.Sprintf("✗ Error processing %s: %s", name, errText(r.Err))))
			p.println()
			return
		}
	}

	p.println("  🎵 Song:", Value(r.Title))
	p.println("  🎤 Artist:", Value(r.Artist))

	switch {
	case r.Status == fixer.Failed:
		p.println(" ", p.fail.Render(fmt.Sprintf("✗ Error processing %s: %s", name, errText(r.Err))))
	case len(r.Changes) > 0:
		for _, c := range r.Changes {
			line := fmt.Sprintf("✓ %s: '%s' → '%s'", c.Field, Value(c.Old), Value(c.New))
			if r.DryRun {
				line += " (dry run)"
			}
			p.println(" ", p.ok.Render(line))
		}
	default:
		p.println(" ", p.dim.Render("- No changes needed"))
	}
	p.println()
}

// Summary prints the totals of a run.
func (p *Printer) Summary(s fixer.Stats, backupDir string, dryRun bool) {
	p.Rule()
	p.println(p.heading.Render("Processing complete!"))
	p.println(fmt.Sprintf("Files processed: %d", s.Processed))
	if dryRun {
		p.println(fmt.Sprintf("Files that would be modified: %d", s.Modified))
	} else {
		p.println(fmt.Sprintf("Files modified: %d", s.Modified))
	}
	if s.Skipped > 0 {
		p.println(p.warn.Render(fmt.Sprintf("Files skipped: %d", s.Skipped)))
	}
	if s.Failed > 0 {
		p.println(p.fail.Render(fmt.Sprintf("Files failed: %d", s.Failed)))
	}
	if !dryRun {
		p.println("Backups saved in:", backupDir)
	}
	p.Rule()
}

// Aborted reports a run stopped by a signal.
func (p *Printer) Aborted() {
	p.println(p.warn.Render("Interrupted: remaining files were not processed."))
}

// Pause prints the exit prompt and waits for a line on r.
func (p *Printer) Pause(r io.Reader) {
	fmt.Fprint(p.w, "Press Enter to exit...")
	_, _ = bufio.NewReader(r).ReadString('\n') //nolint:errcheck // EOF also ends the wait
}

// Value renders a tag value for display: "Unknown" when absent, control
// characters (such as NUL) escaped so they stay visible.
func Value(v tagfix.TagValue) string {
	if v.IsZero() {
		return "Unknown"
	}
	if !v.IsList() {
		return Visible(v.First())
	}
	return v.Map(Visible).String()
}

// Visible escapes ASCII control characters as \xNN.
func Visible(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, `\x%02x`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
