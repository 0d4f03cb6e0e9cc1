package expander

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/flattener/internal/models"
)

// ErrOutputLocked is wrapped by OutputOpenError when another run holds the
// output lock.
var ErrOutputLocked = errors.New("output is locked by another run")

// RootOpenError reports that the root file could not be opened. No output is
// created when this happens.
type RootOpenError struct {
	Path string
	Err  error
}

// Error implements the error interface for RootOpenError.
func (e *RootOpenError) Error() string {
	return fmt.Sprintf("cannot open root file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *RootOpenError) Unwrap() error {
	return e.Err
}

// OutputOpenError reports that the output could not be opened for writing.
// No expansion happens when this is returned.
type OutputOpenError struct {
	Path string
	Err  error
}

// Error implements the error interface for OutputOpenError.
func (e *OutputOpenError) Error() string {
	return fmt.Sprintf("cannot open output file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *OutputOpenError) Unwrap() error {
	return e.Err
}

// UnresolvedIncludeError reports a directive whose target could not be found
// under the applicable search policy. It aborts the whole run.
type UnresolvedIncludeError struct {
	Directive models.IncludeDirective // Directive as written
	File      string                  // File being scanned when resolution failed
	Line      int                     // 1-based line within File
	Err       error                   // Underlying *resolver.NotFoundError
}

// Diagnostic returns the human-readable message written to the diagnostic
// stream.
func (e *UnresolvedIncludeError) Diagnostic() string {
	return fmt.Sprintf("unknown include file %s at file %s at line %d", e.Directive.Target, e.File, e.Line)
}

// Error implements the error interface for UnresolvedIncludeError.
func (e *UnresolvedIncludeError) Error() string {
	return e.Diagnostic()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *UnresolvedIncludeError) Unwrap() error {
	return e.Err
}

// CyclicIncludeError reports an include of a file that is already being
// expanded further up the include stack.
type CyclicIncludeError struct {
	Chain []string // Include stack from the root to the repeated file
	File  string   // File containing the offending directive
	Line  int      // 1-based line within File
}

// Error implements the error interface for CyclicIncludeError.
func (e *CyclicIncludeError) Error() string {
	return fmt.Sprintf("include cycle at file %s at line %d: %s", e.File, e.Line, strings.Join(e.Chain, " -> "))
}

// DepthLimitError reports that include nesting exceeded the configured limit.
type DepthLimitError struct {
	Limit int
	File  string
	Line  int
}

// Error implements the error interface for DepthLimitError.
func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("include depth limit %d exceeded at file %s at line %d", e.Limit, e.File, e.Line)
}

// IsUnresolved reports whether err is or wraps an UnresolvedIncludeError.
func IsUnresolved(err error) bool {
	var target *UnresolvedIncludeError
	return errors.As(err, &target)
}

// IsCyclic reports whether err is or wraps a CyclicIncludeError.
func IsCyclic(err error) bool {
	var target *CyclicIncludeError
	return errors.As(err, &target)
}
