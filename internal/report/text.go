package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/paranoid/internal/taxonomy"
)

// TextOptions controls the text report.
type TextOptions struct {
	// ShowPassed adds a row for every passing function. Failed and
	// untested functions always get one.
	ShowPassed bool
}

// WriteText writes a report as human-readable styled text to the
// writer. Output uses lipgloss for color and formatting when the
// output is a TTY; degrades gracefully for pipes and CI.
func WriteText(w io.Writer, rpt taxonomy.Report, opts TextOptions) error {
	s := DefaultStyles()

	title := rpt.Metadata.Target
	if title == "" {
		title = "paranoid verify"
	}
	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", title)))

	var rows [][]string
	var verdicts []taxonomy.Verdict
	for _, r := range rpt.Results {
		if r.Verdict == taxonomy.Passed && !opts.ShowPassed {
			continue
		}
		rows = append(rows, resultRow(r))
		verdicts = append(verdicts, r.Verdict)
	}

	if len(rows) > 0 {
		// Budget: 80 cols total, 4 for the indent the header implies.
		t := table.New().
			Width(76).
			Border(lipgloss.NormalBorder()).
			BorderStyle(s.Border).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return s.TableHeader
				}
				if col == 0 && row >= 0 && row < len(verdicts) {
					return s.VerdictStyle(verdicts[row])
				}
				return s.TableCell
			}).
			Headers("VERDICT", "FUNCTION", "RUN", "SKIP", "T/O", "CC").
			Rows(rows...)
		fmt.Fprintln(w, t)
	} else if len(rpt.Results) > 0 {
		fmt.Fprintln(w, s.Muted.Render("    All functions passed."))
	}

	writeFailures(w, rpt.Results, s)
	writeWarnings(w, rpt, s)

	sum := rpt.Summary
	fmt.Fprintf(w, "\n%s\n", s.Header.Render(fmt.Sprintf(
		"%d function(s) verified: %d passed, %d untested, %d failed (%d cases)",
		sum.Functions, sum.Passed, sum.Untested, sum.Failed, sum.Executed)))
	if len(sum.UntestedNames) > 0 {
		fmt.Fprintln(w, s.Untested.Render(
			"WARNING: The following functions were untested: "+strings.Join(sum.UntestedNames, ", ")))
	}
	return nil
}

func resultRow(r taxonomy.FunctionResult) []string {
	const maxName = 36
	name := r.Target.Function
	if len(name) > maxName {
		name = "..." + name[len(name)-maxName+3:]
	}
	cc := "-"
	if r.Complexity > 0 {
		cc = strconv.Itoa(r.Complexity)
	}
	return []string{
		strings.ToUpper(string(r.Verdict)),
		name,
		strconv.Itoa(r.Executed),
		strconv.Itoa(r.Skipped),
		strconv.Itoa(r.TimedOut),
		cc,
	}
}

func writeFailures(w io.Writer, results []taxonomy.FunctionResult, s Styles) {
	first := true
	for _, r := range results {
		if r.Failure == nil {
			continue
		}
		if first {
			fmt.Fprintln(w)
			fmt.Fprintln(w, s.Failed.Render("Failures:"))
			first = false
		}
		fmt.Fprintf(w, "  %s (%s)\n", r.Target.Function, r.Failure.Kind)
		if r.Target.Location != "" {
			fmt.Fprintln(w, s.SubHeader.Render("    "+shortenPath(r.Target.Location)))
		}
		for _, line := range strings.Split(r.Failure.Message, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		if len(r.Failure.Args) > 0 {
			names := make([]string, 0, len(r.Failure.Args))
			for k := range r.Failure.Args {
				names = append(names, k)
			}
			sort.Strings(names)
			parts := make([]string, len(names))
			for i, k := range names {
				parts[i] = k + "=" + r.Failure.Args[k]
			}
			fmt.Fprintln(w, s.Muted.Render("    args: "+strings.Join(parts, ", ")))
		}
	}
}

func writeWarnings(w io.Writer, rpt taxonomy.Report, s Styles) {
	var lines []string
	for _, r := range rpt.Results {
		for _, msg := range r.Warnings {
			lines = append(lines, fmt.Sprintf("%s: %s", r.Target.Function, msg))
		}
	}
	lines = append(lines, rpt.Metadata.Warnings...)
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Untested.Render("Warnings:"))
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", l)
	}
}

// shortenPath keeps the last two path elements of a location.
func shortenPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
