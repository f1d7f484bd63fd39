package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/unbound-force/paranoid/internal/taxonomy"
)

// Styles defines the visual theme for terminal report output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for section headers (e.g. "=== ./geom ===").
	Header lipgloss.Style

	// SubHeader is used for secondary information lines.
	SubHeader lipgloss.Style

	// Passed, Untested and Failed color-code verdicts.
	Passed   lipgloss.Style
	Untested lipgloss.Style
	Failed   lipgloss.Style

	// TableHeader styles the header row of tables.
	TableHeader lipgloss.Style

	// TableCell styles regular table cells.
	TableCell lipgloss.Style

	// Border is used for table borders.
	Border lipgloss.Style

	// Muted is used for de-emphasized text.
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		Passed:   lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		Untested: lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
		Failed:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// VerdictStyle returns the style for a verdict.
func (s Styles) VerdictStyle(v taxonomy.Verdict) lipgloss.Style {
	switch v {
	case taxonomy.Passed:
		return s.Passed
	case taxonomy.Untested:
		return s.Untested
	case taxonomy.Failed:
		return s.Failed
	default:
		return s.Muted
	}
}
