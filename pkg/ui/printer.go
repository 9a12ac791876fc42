package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/wfpack/pkg/types"
)

// Printer writes install progress to stdout. It implements types.Reporter.
//
// Text and terminal output share one line format, terminal output adds
// color. JSON output stays silent until Done and then writes the whole
// result as one document.
type Printer struct {
	out    io.Writer
	format Format
	styles Styles
	dryRun bool
}

var _ types.Reporter = (*Printer)(nil)

// NewPrinter creates a Printer. FormatAuto is resolved against out.
func NewPrinter(out io.Writer, format Format) *Printer {
	p := &Printer{
		out:    out,
		format: Resolve(format, out),
	}
	if p.format == FormatTerminal {
		p.styles = DefaultStyles()
	}
	return p
}

// Format returns the concrete output format
func (p *Printer) Format() Format {
	return p.format
}

func (p *Printer) line(style, label, text string) {
	if p.format == FormatJSON {
		return
	}
	if p.styles != nil {
		label = p.styles.Render(style, label)
	}
	if text == "" {
		_, _ = fmt.Fprintln(p.out, label)
		return
	}
	_, _ = fmt.Fprintf(p.out, "%s %s\n", label, text)
}

func (p *Printer) path(path string) string {
	if p.styles != nil {
		return p.styles.Render("Path", path)
	}
	return path
}

// Resolved prints where the payload is and where it goes
func (p *Printer) Resolved(ctx types.InstallContext) {
	p.dryRun = ctx.DryRun
	if ctx.Mode.IsTerminal() {
		return
	}
	p.line("Header", "Framework:", p.path(ctx.FrameworkDir))
	detail := string(ctx.Mode)
	if ctx.Reason != "" {
		detail += ", " + ctx.Reason
	}
	p.line("Header", "Project:", fmt.Sprintf("%s (%s)", p.path(ctx.ProjectRoot), detail))
	if ctx.DryRun {
		p.line("Warning", "Dry run:", "nothing will be written or deleted")
	}
}

// AtProjectRoot explains the no-op run
func (p *Printer) AtProjectRoot(ctx types.InstallContext) {
	p.line("Header", "Running from project root:", "nothing to install")
	p.line("Safety", "SAFETY:", "not started from a framework directory, no files will be copied or deleted ("+ctx.Reason+")")
}

// Installing announces one manifest entry
func (p *Printer) Installing(entry types.ManifestEntry) {
	label := "Installing"
	if p.dryRun {
		label = "Would install"
	}
	p.line("Action", label, p.path(entry.Destination()))
}

// Skipped reports a destination kept as it was
func (p *Printer) Skipped(dest, reason string) {
	p.line("Muted", "Skipped", fmt.Sprintf("%s (%s)", p.path(dest), reason))
}

// Cleaning announces the start of cleanup
func (p *Printer) Cleaning(dir string) {
	p.line("Action", "Cleaning", p.path(dir))
}

// Removed reports a deleted path
func (p *Printer) Removed(path string) {
	label := "Removed"
	if p.dryRun {
		label = "Would remove"
	}
	p.line("Action", label, p.path(path))
}

// Refused reports a safety veto
func (p *Printer) Refused(v types.Verdict) {
	p.line("Safety", "SAFETY:", fmt.Sprintf("refused %s: %s [%s]", v.Path, v.Reason, v.Rule))
}

// Warn reports a non-fatal problem
func (p *Printer) Warn(msg string) {
	p.line("Warning", "Warning:", msg)
}

// Done prints the summary, or the full result for JSON output
func (p *Printer) Done(result *types.InstallResult) {
	if p.format == FormatJSON {
		_ = RenderJSON(p.out, result)
		return
	}
	if result == nil || result.Context.Mode.IsTerminal() {
		return
	}

	var parts []string
	if c := result.Copy; c != nil {
		verb := "written"
		if result.Context.DryRun {
			verb = "to write"
		}
		parts = append(parts, fmt.Sprintf("%d files %s", len(c.Written), verb))
		if len(c.Skipped) > 0 {
			parts = append(parts, fmt.Sprintf("%d kept", len(c.Skipped)))
		}
		if len(c.Missing) > 0 {
			parts = append(parts, fmt.Sprintf("%d optional missing", len(c.Missing)))
		}
	}
	if c := result.Cleanup; c != nil {
		parts = append(parts, fmt.Sprintf("%d paths removed", len(c.Removed)))
	}
	p.line("Success", "Done:", strings.Join(parts, ", "))

	if result.Cleanup.Incomplete() {
		p.line("Warning", "Cleanup incomplete:", "the framework directory or its parents were left in place")
	}
}

// RenderJSON writes v as indented JSON
func RenderJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
