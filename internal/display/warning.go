// Package display formats user-facing output for the flattener CLI:
// warnings, include trees and resolution reports.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/flattener/internal/fileutil"
	"github.com/harrison/flattener/internal/models"
	"github.com/mattn/go-isatty"
)

// colorEnabled reports whether out is a terminal that should receive ANSI colors.
func colorEnabled(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok || f == nil || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// paint wraps s in the given attributes when enabled.
func paint(enabled bool, s string, attrs ...color.Attribute) string {
	if !enabled {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning to out, in yellow when out is a terminal.
func (w Warning) Display(out io.Writer) {
	w.render(out, colorEnabled(out))
}

func (w Warning) render(out io.Writer, useColor bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	fmt.Fprint(out, paint(useColor, b.String(), color.FgYellow))
}

// WarnShadowedHeaders creates one warning per include target that an earlier
// search directory hides from later ones.
func WarnShadowedHeaders(shadows []fileutil.Shadow) []Warning {
	warnings := make([]Warning, 0, len(shadows))
	for _, s := range shadows {
		warnings = append(warnings, Warning{
			Title:      fmt.Sprintf("%q is provided by more than one search directory", s.Target),
			Message:    fmt.Sprintf("Includes resolve to %s", s.Winner),
			Files:      s.Shadowed,
			Suggestion: "Reorder the search directories if another copy is intended",
		})
	}
	return warnings
}

// WarnPartialOutput creates a warning for output left behind by a failed run.
// It returns false when the policy leaves nothing partial on disk.
func WarnPartialOutput(outputPath string, policy models.FailurePolicy, lines int) (Warning, bool) {
	if policy != models.FailureKeep && policy != "" {
		return Warning{}, false
	}
	return Warning{
		Title:      "Output is incomplete",
		Message:    fmt.Sprintf("The run failed after writing %d line(s); the file holds a partial flattening", lines),
		Files:      []string{outputPath},
		Suggestion: "Fix the reported include, or run with --on-failure atomic to leave the previous output untouched",
	}, true
}
