package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/flattener/internal/models"
)

// IncludeTree prints the include records of a run as an indented tree rooted
// at the root file, in the order the includes were expanded.
func IncludeTree(out io.Writer, result *models.FlattenResult) {
	if result == nil {
		return
	}
	useColor := colorEnabled(out)

	fmt.Fprintln(out, paint(useColor, result.RootPath, color.Bold))
	for _, rec := range result.Includes {
		pad := strings.Repeat("  ", rec.Depth)
		fmt.Fprintf(out, "%s%s -> %s %s\n",
			pad,
			rec.Directive,
			paint(useColor, rec.Resolved, color.FgCyan),
			paint(useColor, fmt.Sprintf("(%s:%d)", rec.From, rec.Line), color.FgHiBlack))
	}
}

// Resolution prints the outcome of resolving one include directive: the
// winning file first, then candidates that also exist but lose.
func Resolution(out io.Writer, d models.IncludeDirective, matches []string) {
	useColor := colorEnabled(out)

	if len(matches) == 0 {
		fmt.Fprintf(out, "%s: %s\n", d, paint(useColor, "not found", color.FgRed))
		return
	}

	fmt.Fprintf(out, "%s -> %s\n", d, paint(useColor, matches[0], color.FgGreen))
	for _, m := range matches[1:] {
		fmt.Fprintf(out, "    shadowed: %s\n", m)
	}
}

// Candidates prints every location tried for a directive, numbered in search order.
func Candidates(out io.Writer, candidates []string) {
	for i, c := range candidates {
		fmt.Fprintf(out, "  %d. %s\n", i+1, c)
	}
}
