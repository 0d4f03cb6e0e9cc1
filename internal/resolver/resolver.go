// Package resolver locates the file an include directive refers to.
//
// Quoted includes are tried against the including file's directory first and
// then against each search directory in order. Angled includes are tried
// against the search directories only. The first candidate that opens as a
// readable regular file wins.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/flattener/internal/models"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("include not found")

// NotFoundError reports that no candidate path for a directive could be opened.
type NotFoundError struct {
	Directive  models.IncludeDirective // Directive that failed to resolve
	Candidates []string                // Paths that were tried, in order
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown include file %s (tried %d location(s))", e.Directive.Target, len(e.Candidates))
}

// Is lets errors.Is match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Resolved is an opened include file and the path it was opened from.
type Resolved struct {
	Path string
	File *os.File
}

// Resolver applies the include search policy against a fixed, ordered list of
// search directories. It is safe for concurrent use; the list is never modified.
type Resolver struct {
	searchPaths []string
}

// New creates a Resolver. The slice is copied so later changes by the caller
// do not affect resolution.
func New(searchPaths []string) *Resolver {
	paths := make([]string, len(searchPaths))
	copy(paths, searchPaths)
	return &Resolver{searchPaths: paths}
}

// SearchPaths returns a copy of the search directories in order.
func (r *Resolver) SearchPaths() []string {
	paths := make([]string, len(r.searchPaths))
	copy(paths, r.searchPaths)
	return paths
}

// Candidates returns the paths Resolve would try for d, in order, when the
// including file lives in currentDir.
func (r *Resolver) Candidates(d models.IncludeDirective, currentDir string) []string {
	var candidates []string
	add := func(dir string) {
		p := joinTarget(dir, d.Target)
		// An absolute target yields the same path for every directory.
		if n := len(candidates); n > 0 && candidates[n-1] == p {
			return
		}
		candidates = append(candidates, p)
	}

	if d.Kind == models.KindQuoted {
		add(currentDir)
	}
	for _, dir := range r.searchPaths {
		add(dir)
	}
	return candidates
}

// Resolve opens the first candidate for d that is a readable regular file.
// The caller owns the returned file and must close it. When nothing opens,
// the error is a *NotFoundError.
func (r *Resolver) Resolve(d models.IncludeDirective, currentDir string) (*Resolved, error) {
	candidates := r.Candidates(d, currentDir)
	for _, p := range candidates {
		f, err := OpenRegular(p)
		if err != nil {
			continue
		}
		return &Resolved{Path: p, File: f}, nil
	}
	return nil, &NotFoundError{Directive: d, Candidates: candidates}
}

// Matches returns every candidate for d that exists as a regular file, in
// policy order. The first entry is the one Resolve would pick; the rest are
// shadowed by it.
func (r *Resolver) Matches(d models.IncludeDirective, currentDir string) []string {
	var matches []string
	for _, p := range r.Candidates(d, currentDir) {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		matches = append(matches, p)
	}
	return matches
}

// ParseTarget interprets a command-line include target. `"x"` and `<x>` select
// the quoted and angled forms; a bare target uses defaultKind.
func ParseTarget(s string, defaultKind models.IncludeKind) models.IncludeDirective {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"':
			return models.IncludeDirective{Kind: models.KindQuoted, Target: s[1 : len(s)-1]}
		case s[0] == '<' && s[len(s)-1] == '>':
			return models.IncludeDirective{Kind: models.KindAngled, Target: s[1 : len(s)-1]}
		}
	}
	return models.IncludeDirective{Kind: defaultKind, Target: s}
}

func joinTarget(dir, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(dir, target)
}

// OpenRegular opens p for reading and rejects directories and other
// non-regular files, which os.Open would otherwise accept.
func OpenRegular(p string) (*os.File, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%s is not a regular file", p)
	}
	return f, nil
}
