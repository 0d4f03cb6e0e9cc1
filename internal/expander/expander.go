// Package expander flattens a tree of text files by recursively replacing
// include directives with the expanded content of the files they name.
//
// Expansion is depth-first: an included file is written to the output in
// full, at the position of its directive, before the next line of the
// including file is read. Every frame of the recursion appends to one shared
// Sink. The first unresolved include aborts the whole run.
package expander

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/flattener/internal/directive"
	"github.com/harrison/flattener/internal/models"
	"github.com/harrison/flattener/internal/resolver"
)

// Logger receives progress events from an Expander.
type Logger interface {
	LogFileEnter(path string, depth int)
	LogIncludeResolved(rec models.IncludeRecord)
	LogFailure(err error)
	LogSummary(result models.FlattenResult)
}

type nopLogger struct{}

func (nopLogger) LogFileEnter(string, int)                {}
func (nopLogger) LogIncludeResolved(models.IncludeRecord) {}
func (nopLogger) LogFailure(error)                        {}
func (nopLogger) LogSummary(models.FlattenResult)         {}

// Expander expands one root file and everything it includes. An Expander
// holds the include stack of a single run and must not be shared between
// concurrent runs.
type Expander struct {
	resolver    *resolver.Resolver
	logger      Logger
	diagnostics io.Writer
	allowCycles bool
	maxDepth    int

	stack  []string        // paths of the files currently being expanded
	active map[string]bool // canonical form of stack entries
	result *models.FlattenResult
}

// New creates an Expander from opts. A nil logger discards events and a nil
// diagnostics writer means os.Stderr.
func New(opts Options) *Expander {
	lg := opts.Logger
	if lg == nil {
		lg = nopLogger{}
	}
	diag := opts.Diagnostics
	if diag == nil {
		diag = os.Stderr
	}
	return &Expander{
		resolver:    resolver.New(opts.SearchPaths),
		logger:      lg,
		diagnostics: diag,
		allowCycles: opts.AllowCycles,
		maxDepth:    opts.MaxDepth,
		active:      make(map[string]bool),
		result:      &models.FlattenResult{},
	}
}

// Result returns the statistics gathered so far.
func (e *Expander) Result() *models.FlattenResult {
	return e.result
}

// Expand reads r, the content of the file at path, and writes its flattened
// form to out. Pass-through lines are copied with their terminator replaced
// by a single '\n'; directive lines are replaced by the expansion of the file
// they resolve to.
func (e *Expander) Expand(ctx context.Context, r io.Reader, path string, out *Sink) error {
	return e.expand(ctx, r, path, out, 0)
}

func (e *Expander) expand(ctx context.Context, r io.Reader, path string, out *Sink, depth int) error {
	e.push(path)
	defer e.pop()

	e.result.FilesExpanded++
	if depth > e.result.MaxDepth {
		e.result.MaxDepth = depth
	}
	e.logger.LogFileEnter(path, depth)

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		if raw == "" {
			return nil
		}
		lineNo++
		line := trimLineEnding(raw)

		if d, ok := directive.Classify(line); ok {
			if err := e.include(ctx, d, path, lineNo, out, depth); err != nil {
				return err
			}
		} else if err := out.WriteLine(line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		if readErr != nil {
			return nil
		}
	}
}

// include resolves d, found at line lineNo of path, and expands the result
// before returning.
func (e *Expander) include(ctx context.Context, d models.IncludeDirective, path string, lineNo int, out *Sink, depth int) error {
	res, err := e.resolver.Resolve(d, filepath.Dir(path))
	if err != nil {
		uerr := &UnresolvedIncludeError{Directive: d, File: path, Line: lineNo, Err: err}
		fmt.Fprintln(e.diagnostics, uerr.Diagnostic())
		return uerr
	}
	defer res.File.Close()

	if !e.allowCycles && e.active[canonical(res.Path)] {
		chain := append(append([]string{}, e.stack...), res.Path)
		return &CyclicIncludeError{Chain: chain, File: path, Line: lineNo}
	}
	if e.maxDepth > 0 && depth+1 > e.maxDepth {
		return &DepthLimitError{Limit: e.maxDepth, File: path, Line: lineNo}
	}

	rec := models.IncludeRecord{
		Directive: d,
		From:      path,
		Line:      lineNo,
		Resolved:  res.Path,
		Depth:     depth + 1,
	}
	e.result.Includes = append(e.result.Includes, rec)
	e.logger.LogIncludeResolved(rec)

	return e.expand(ctx, res.File, res.Path, out, depth+1)
}

func (e *Expander) push(path string) {
	e.stack = append(e.stack, path)
	e.active[canonical(path)] = true
}

func (e *Expander) pop() {
	last := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	delete(e.active, canonical(last))
}

// trimLineEnding strips one trailing "\n" or "\r\n".
func trimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// canonical maps different spellings of the same file to one key.
func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
