package models

import "time"

// IncludeRecord describes one resolved include, in the order it was expanded.
type IncludeRecord struct {
	Directive IncludeDirective // Directive as written
	From      string           // Path of the file containing the directive
	Line      int              // 1-based line of the directive within From
	Resolved  string           // Path the directive resolved to
	Depth     int              // Nesting depth of Resolved (root file is 0)
}

// FlattenResult is the aggregate outcome of a flattening run.
type FlattenResult struct {
	RootPath      string          // Root file that was flattened
	OutputPath    string          // Output artifact path (empty for dry runs)
	FilesExpanded int             // Files scanned, root included
	LinesWritten  int             // Pass-through lines written to the output
	MaxDepth      int             // Deepest include nesting reached
	Duration      time.Duration   // Wall time of the run
	Includes      []IncludeRecord // Resolved includes in depth-first order
}

// IncludeCount returns the number of include directives that were expanded.
func (r *FlattenResult) IncludeCount() int {
	if r == nil {
		return 0
	}
	return len(r.Includes)
}
