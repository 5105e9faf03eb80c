// Package report renders analysis results for the terminal
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/samijaber1/bloomwatch/internal/analysis"
	"github.com/samijaber1/bloomwatch/internal/rotation"
)

// Namer resolves ability ids to display names
type Namer interface {
	Name(id int) string
}

// Options controls what a report includes
type Options struct {
	// Names resolves ability names in the cast listing; nil prints ids.
	Names Namer
	// Casts adds the classified cast listing.
	Casts bool
	// MaxPatterns caps the pattern table; 0 shows every pattern.
	MaxPatterns int
}

// Writer renders results to one output
type Writer struct {
	out     io.Writer
	opts    Options
	styles  styles
	printer *message.Printer
}

// NewWriter creates a report writer. Styling follows the capabilities of out.
func NewWriter(out io.Writer, opts Options) *Writer {
	return &Writer{
		out:     out,
		opts:    opts,
		styles:  newStyles(lipgloss.NewRenderer(out)),
		printer: message.NewPrinter(language.English),
	}
}

// Render writes the full report of one run
func (w *Writer) Render(r *analysis.Result) error {
	var b strings.Builder

	b.WriteString(w.header(r))
	b.WriteString("\n")
	b.WriteString(w.styles.panel.Render(w.overview(r)))
	b.WriteString("\n\n")
	b.WriteString(w.sections(r.Sections))
	b.WriteString("\n")
	b.WriteString(w.patterns(r.Summary))

	if w.opts.Casts && len(r.Casts) > 0 {
		b.WriteString("\n")
		b.WriteString(w.casts(r.Casts))
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n")
		for _, note := range r.Notes {
			b.WriteString(w.styles.warn.Render("! " + note))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w.out, b.String())
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (w *Writer) header(r *analysis.Result) string {
	title := fmt.Sprintf("%s · %s · %s", r.ReportCode, r.Fight.Name, r.Participant)
	if r.Phase > 0 {
		title += fmt.Sprintf(" · phase %d", r.Phase)
	}
	outcome := "wipe"
	if r.Fight.Kill {
		outcome = "kill"
	}
	return w.styles.title.Render(title) + " " +
		w.styles.dim.Render(fmt.Sprintf("(%s, %s)", outcome, clock(float64(r.Window.Duration())/1000))) + "\n"
}

func (w *Writer) overview(r *analysis.Result) string {
	s := w.styles
	p := w.printer

	rows := [][2]string{
		{"Uptime", s.uptimeStyle(r.Uptime.Percent).Render(fmt.Sprintf("%.1f%%", r.Uptime.Percent)) +
			s.dim.Render(p.Sprintf(" (%d ms of %d ms)", r.Uptime.UptimeMs, r.Uptime.WindowMs))},
		{"Timeout", s.value.Render(fmt.Sprintf("%.2fs", r.Policy.RotationTimeoutSeconds)) +
			s.dim.Render(fmt.Sprintf(" GCD %.2fs, %s", r.Policy.GlobalCooldownSeconds, r.Policy.Source))},
		{"Tanks", s.value.Render(tankNames(r)) + s.dim.Render(" ("+r.TankMode+")")},
		{"HPS", s.value.Render(p.Sprintf("LB %.1f  Rejuv %.1f  RG %.1f", r.HPS.Lifebloom, r.HPS.Rejuvenation, r.HPS.Regrowth)) +
			s.dim.Render(p.Sprintf(" of %.1f", r.HPS.Total))},
		{"Rotations", s.value.Render(fmt.Sprintf("%d of %d sections", len(r.Rotations), len(r.Sections)))},
		{"On tank", w.rotatingOnTank(r.Summary)},
	}

	if r.Haste != nil {
		rows = append(rows, [2]string{"Haste", s.value.Render(fmt.Sprintf("%d rating", r.Haste.Total)) +
			s.dim.Render(fmt.Sprintf(" (%d items, %d gems)", r.Haste.Items, r.Haste.Gems))})
	}
	if r.Boundary != nil && r.Boundary.Detected {
		rows = append(rows, [2]string{"Phase split", s.value.Render(clock(r.Boundary.SplitSeconds))})
	}
	if flags := buffFlags(r.Buffs); flags != "" {
		rows = append(rows, [2]string{"Buffs", s.value.Render(flags)})
	}
	if r.Composition.Total > 0 {
		rows = append(rows, [2]string{"Healers", s.value.Render(fmt.Sprintf("%d", r.Composition.Total))})
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = styledPad(s.label.Render(row[0]+":"), 13) + row[1]
	}
	return strings.Join(lines, "\n")
}

func (w *Writer) rotatingOnTank(sum rotation.Summary) string {
	text := fmt.Sprintf("%.1f%% of rotations opened on a tank", sum.TankRotationPercent)
	if sum.RotatingOnTank {
		return w.styles.ok.Render(text)
	}
	return w.styles.warn.Render(text)
}

func (w *Writer) sections(sections []rotation.Section) string {
	s := w.styles
	var b strings.Builder

	b.WriteString(s.header.Render("Sections") + "\n")
	b.WriteString(s.dim.Render(fmt.Sprintf("%-14s %-9s %9s %9s  %-14s %s", "LABEL", "KIND", "START", "END", "CASTS", "CLOSED BY")) + "\n")
	for _, sec := range sections {
		fmt.Fprintf(&b, "%-14s %-9s %9s %9s  %s %s\n",
			sec.Label,
			sec.Kind,
			clock(sec.Start),
			clock(sec.End),
			styledPad(s.value.Render(sec.Counts.Notation()), 14),
			s.dim.Render(string(sec.Closure)))
	}
	if len(sections) == 0 {
		b.WriteString(s.dim.Render("no sections") + "\n")
	}
	return b.String()
}

func (w *Writer) patterns(sum rotation.Summary) string {
	s := w.styles
	var b strings.Builder

	b.WriteString(s.header.Render("Patterns") + "\n")
	patterns := sum.Patterns
	if w.opts.MaxPatterns > 0 && len(patterns) > w.opts.MaxPatterns {
		patterns = patterns[:w.opts.MaxPatterns]
	}
	for i, p := range patterns {
		fmt.Fprintf(&b, "%3d. %s %s\n",
			i+1,
			styledPad(s.value.Render(p.Notation), 14),
			s.dim.Render(w.printer.Sprintf("%d× (%.1f%%)", p.Count, p.Percent)))
	}
	if len(patterns) == 0 {
		b.WriteString(s.dim.Render("no identified rotations") + "\n")
	}
	return b.String()
}

func (w *Writer) casts(casts []rotation.Cast) string {
	s := w.styles
	var b strings.Builder

	b.WriteString(s.header.Render("Casts") + "\n")
	for _, c := range casts {
		name := fmt.Sprintf("ability %d", c.AbilityID)
		if w.opts.Names != nil {
			name = w.opts.Names.Name(c.AbilityID)
		}
		line := fmt.Sprintf("%9s  %-3s %s", clock(c.Time), c.Category.Abbr(), name)
		if c.Note != "" {
			line += s.dim.Render(" (" + c.Note + ")")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func tankNames(r *analysis.Result) string {
	if len(r.Tanks) == 0 {
		return "none"
	}
	names := make([]string, len(r.Tanks))
	for i, t := range r.Tanks {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func buffFlags(f analysis.BuffFlags) string {
	var parts []string
	if f.Bloodlust {
		parts = append(parts, "bloodlust")
	}
	if f.NaturesGrace {
		parts = append(parts, "nature's grace")
	}
	if f.VampiricTouch {
		parts = append(parts, "vampiric touch")
	}
	if f.InnervateCount > 0 {
		parts = append(parts, fmt.Sprintf("innervate ×%d", f.InnervateCount))
	}
	return strings.Join(parts, ", ")
}

// clock formats seconds as m:ss.s
func clock(seconds float64) string {
	if seconds < 0 {
		return "-" + clock(-seconds)
	}
	m := int(seconds) / 60
	return fmt.Sprintf("%d:%04.1f", m, seconds-float64(m*60))
}

// styledPad pads a styled string to the given visual width using spaces
func styledPad(styled string, width int) string {
	visW := lipgloss.Width(styled)
	if visW >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-visW)
}
