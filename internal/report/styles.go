package report

import "github.com/charmbracelet/lipgloss"

var (
	colorRed     = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")
)

// styles are bound to one renderer so output to a pipe or buffer stays plain
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	dim    lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	crit   lipgloss.Style
	panel  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(colorCyan),
		header: r.NewStyle().Bold(true).Foreground(colorMagenta),
		label:  r.NewStyle().Foreground(colorGray),
		value:  r.NewStyle().Foreground(colorWhite),
		dim:    r.NewStyle().Foreground(colorGray),
		ok:     r.NewStyle().Foreground(colorGreen),
		warn:   r.NewStyle().Foreground(colorYellow).Bold(true),
		crit:   r.NewStyle().Foreground(colorRed).Bold(true),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1),
	}
}

// uptimeStyle grades tracked buff uptime
func (s styles) uptimeStyle(pct float64) lipgloss.Style {
	switch {
	case pct < 50:
		return s.crit
	case pct < 80:
		return s.warn
	default:
		return s.ok
	}
}
