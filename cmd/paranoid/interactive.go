package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/paranoid/internal/taxonomy"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	TogglePass key.Binding
	Quit       key.Binding
	Help       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.TogglePass, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.TogglePass, k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	TogglePass: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "toggle passed")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tuiHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	tuiBorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	passedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	untestedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// verifyModel is the Bubble Tea model for browsing a verify report.
type verifyModel struct {
	report     taxonomy.Report
	viewport   viewport.Model
	help       help.Model
	keys       keyMap
	ready      bool
	showPassed bool
	content    string
}

func newVerifyModel(rpt taxonomy.Report) verifyModel {
	return verifyModel{
		report:     rpt,
		help:       help.New(),
		keys:       defaultKeyMap,
		showPassed: true,
		content:    renderVerifyContent(rpt, true),
	}
}

func verdictStyle(v taxonomy.Verdict) lipgloss.Style {
	switch v {
	case taxonomy.Failed:
		return failedStyle
	case taxonomy.Untested:
		return untestedStyle
	default:
		return passedStyle
	}
}

func renderVerifyContent(rpt taxonomy.Report, showPassed bool) string {
	var sb strings.Builder
	sum := rpt.Summary

	sb.WriteString(titleStyle.Render(
		fmt.Sprintf("Paranoid Verify: %d function(s), %d passed, %d untested, %d failed",
			sum.Functions, sum.Passed, sum.Untested, sum.Failed)))
	sb.WriteString("\n\n")

	hidden := 0
	for _, r := range rpt.Results {
		if r.Verdict == taxonomy.Passed && !showPassed {
			hidden++
			continue
		}
		sb.WriteString(verdictStyle(r.Verdict).Render(
			fmt.Sprintf("[%s]", strings.ToUpper(string(r.Verdict)))))
		sb.WriteString(" ")
		sb.WriteString(tuiHeaderStyle.Render(r.Target.QualifiedName()))
		sb.WriteString("\n")
		if r.Target.Location != "" {
			sb.WriteString(statusStyle.Render("    " + r.Target.Location))
			sb.WriteString("\n")
		}

		cc := "-"
		if r.Complexity > 0 {
			cc = strconv.Itoa(r.Complexity)
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tuiBorderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tuiHeaderStyle
				}
				return lipgloss.NewStyle()
			}).
			Headers("CASES", "RUN", "SKIP", "T/O", "CC", "MS").
			Row(strconv.Itoa(r.Cases), strconv.Itoa(r.Executed), strconv.Itoa(r.Skipped),
				strconv.Itoa(r.TimedOut), cc, strconv.FormatInt(r.DurationMS, 10))
		sb.WriteString(t.String())
		sb.WriteString("\n")

		if f := r.Failure; f != nil {
			sb.WriteString(failedStyle.Render(fmt.Sprintf("    %s", f.Kind)))
			sb.WriteString("\n")
			for _, line := range strings.Split(f.Message, "\n") {
				sb.WriteString("    " + line + "\n")
			}
		}
		for _, w := range r.Warnings {
			sb.WriteString(untestedStyle.Render("    warning: " + w))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if hidden > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("%d passing function(s) hidden.", hidden)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m verifyModel) Init() tea.Cmd {
	return nil
}

func (m verifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 2

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.TogglePass):
			m.showPassed = !m.showPassed
			m.content = renderVerifyContent(m.report, m.showPassed)
			if m.ready {
				m.viewport.SetContent(m.content)
				m.viewport.GotoTop()
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m verifyModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.viewport.View() + "\n" + footer
}

// runInteractiveVerify launches the Bubble Tea TUI for browsing a
// verify report.
func runInteractiveVerify(rpt taxonomy.Report) error {
	p := tea.NewProgram(newVerifyModel(rpt), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
