// Package report renders run summaries for people and for machines.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"github.com/beetlebugorg/s57extract/internal/pipeline"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	boldColor    = color.New(color.Bold)
)

// Styles used by the summary box.
var Styles = struct {
	Bold       lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold: lipgloss.NewStyle().Bold(true),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1),
}

// PrintSummary writes the end-of-run report: the counts in a box, then one
// line per failed cell with its reason.
func PrintSummary(w io.Writer, s *pipeline.Summary) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", boldColor.Sprint("Run"), s.RunID)
	fmt.Fprintf(&b, "%s %s\n", boldColor.Sprint("Mode"), s.Mode)
	fmt.Fprintf(&b, "%s  %s\n\n", boldColor.Sprint("Output"), s.Output)
	fmt.Fprintf(&b, "%s %d   %s %d   %s %d\n",
		successColor.Sprint("written"), s.Written,
		warningColor.Sprint("skipped"), s.Skipped,
		errorColor.Sprint("failed"), s.Failed,
	)
	fmt.Fprintf(&b, "%d cells in %.1fs", s.Total(), s.Duration.Seconds())

	box := Styles.SuccessBox
	if s.Failed > 0 {
		box = Styles.ErrorBox
	}
	fmt.Fprintln(w, box.Render(b.String()))

	failures := s.Failures()
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(w, Styles.Bold.Render("FAILED CELLS"))
	for _, c := range failures {
		fmt.Fprintf(w, "  %s %s: %s\n", errorColor.Sprint("✗"), c.Path, c.Reason)
	}
}

// WriteSummaryJSON writes the summary to path as indented JSON, creating
// parent directories as needed.
func WriteSummaryJSON(path string, s *pipeline.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(w io.Writer, format string, args ...interface{}) {
	errorColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}
