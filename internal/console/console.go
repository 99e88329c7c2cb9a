// Package console prints card generation progress and batch summaries.
package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"codeberg.org/snonux/ankismart/internal/card"
)

var (
	cyan   = lipgloss.Color("#88C0D0")
	dim    = lipgloss.Color("#D8DEE9")
	red    = lipgloss.Color("#BF616A")
	green  = lipgloss.Color("#A3BE8C")
	yellow = lipgloss.Color("#EBCB8B")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(cyan)
	stepStyle    = lipgloss.NewStyle().Foreground(cyan)
	wordStyle    = lipgloss.NewStyle().Foreground(yellow)
	dimStyle     = lipgloss.NewStyle().Foreground(dim)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(green)
)

// Printer writes styled progress lines. It implements card.Progress.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Start prints the header for a word
func (p *Printer) Start(word string) {
	fmt.Fprintf(p.out, "\n%s %s %s\n",
		titleStyle.Render("═══ Generating card for:"), wordStyle.Render(word), titleStyle.Render("═══"))
}

// Item prints the position within a batch
func (p *Printer) Item(index, total int) {
	fmt.Fprintf(p.out, "\n%s\n", dimStyle.Render(fmt.Sprintf("───── [%d/%d] ─────", index, total)))
}

// Step prints one progress line
func (p *Printer) Step(state card.State, message string) {
	fmt.Fprintf(p.out, "  %s %s\n", stepStyle.Render(state.String()+":"), message)
}

// Warn prints a non-fatal problem
func (p *Printer) Warn(state card.State, message string) {
	fmt.Fprintf(p.out, "  %s %s\n", warnStyle.Render("⚠ "+state.String()+":"), message)
}

// Finish prints the outcome for a word
func (p *Printer) Finish(word string, res card.Result, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(p.out, "%s %s\n", errorStyle.Render("✗ Error generating card for "+strconv.Quote(word)+":"), err)
	case res.Updated:
		fmt.Fprintf(p.out, "%s Card ID: %s\n", successStyle.Render("✓ Updated!"), wordStyle.Render(strconv.FormatInt(res.NoteID, 10)))
	default:
		fmt.Fprintf(p.out, "%s Card ID: %s\n", successStyle.Render("✓ Created!"), wordStyle.Render(strconv.FormatInt(res.NoteID, 10)))
	}
}

// Summary prints a per-word table followed by the created, updated and
// failed counts
func (p *Printer) Summary(entries []card.BatchEntry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.Failed():
			rows = append(rows, []string{e.Word, errorStyle.Render("failed"), "-", e.Err.Error()})
		case e.Updated:
			rows = append(rows, []string{e.Word, warnStyle.Render("updated"), strconv.FormatInt(e.NoteID, 10), ""})
		default:
			rows = append(rows, []string{e.Word, successStyle.Render("created"), strconv.FormatInt(e.NoteID, 10), ""})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(stepStyle).
		Headers("Word", "Result", "Note ID", "Error").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(cyan)
			}
			if col == 3 {
				return s.MaxWidth(60)
			}
			return s
		})

	s := card.Summarize(entries)
	fmt.Fprintf(p.out, "\n%s\n%s\n", titleStyle.Render("═══ Batch Summary ═══"), t.Render())
	fmt.Fprintf(p.out, "%s %d\n", successStyle.Render("✓ Created:"), s.Created)
	fmt.Fprintf(p.out, "%s %d\n", warnStyle.Render("↻ Updated:"), s.Updated)
	fmt.Fprintf(p.out, "%s %d\n", errorStyle.Render("✗ Failed:"), s.Failed)
}

// Info prints a plain informational line
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Error prints an error line
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.out, "%s %v\n", errorStyle.Render("✗ Error:"), err)
}
