// Package fileutil inventories the files reachable through include search directories.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Pattern is a regex pattern matched against the file name without extension
	Pattern string
	// Extensions limits the scan to these extensions (e.g. ".h", "hpp"); empty means all files
	Extensions []string
	// Recursive enables recursive directory scanning
	Recursive bool
	// ExcludeDirs is a list of directory names to skip (e.g. ".git", "build")
	ExcludeDirs []string
	// IncludeHidden also walks directories whose name starts with "."
	IncludeHidden bool
	// MaxDepth limits recursion depth (0 = unlimited, 1 = top directory only)
	MaxDepth int
}

// Entry is one scanned file.
type Entry struct {
	// Path is the absolute path of the file
	Path string
	// Rel is the slash-separated path relative to the scanned directory,
	// which is the target an include directive would name
	Rel string
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Dir is the scanned directory as given
	Dir string
	// Entries is sorted by Rel
	Entries []Entry
	// Errors contains non-fatal errors encountered during scanning
	Errors []error
}

// Files returns the absolute paths of all entries.
func (r *ScanResult) Files() []string {
	files := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		files[i] = e.Path
	}
	return files
}

// ScanDirectory scans a directory for files matching the provided options
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var patternRegex *regexp.Regexp
	if opts.Pattern != "" {
		patternRegex, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	extMap := make(map[string]bool)
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	excludeMap := make(map[string]bool)
	for _, name := range opts.ExcludeDirs {
		excludeMap[name] = true
	}

	result := &ScanResult{Dir: dir}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == dir {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to relativize %s: %w", path, relErr))
			return nil
		}

		if d.IsDir() {
			if excludeMap[d.Name()] || (!opts.IncludeHidden && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			if !opts.Recursive {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 && strings.Count(rel, string(filepath.Separator))+1 >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			// Links count when they point at a regular file.
			if d.Type()&os.ModeSymlink == 0 {
				return nil
			}
			if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
				return nil
			}
		}

		name := d.Name()
		if len(extMap) > 0 && !extMap[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		if patternRegex != nil && !patternRegex.MatchString(strings.TrimSuffix(name, filepath.Ext(name))) {
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}

		result.Entries = append(result.Entries, Entry{Path: absPath, Rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		return result.Entries[i].Rel < result.Entries[j].Rel
	})

	return result, nil
}

// Shadow describes an include target reachable from more than one search directory.
type Shadow struct {
	// Target is the relative path an include directive would name
	Target string
	// Winner is the file the first directory provides
	Winner string
	// Shadowed are the files later directories provide, in search order
	Shadowed []string
}

// FindShadowed scans every directory in order and reports targets that more
// than one directory provides. Earlier directories win, as they do during
// resolution. Scan results are returned alongside so callers can report
// per-directory errors.
func FindShadowed(dirs []string, opts ScanOptions) ([]Shadow, []*ScanResult, error) {
	results := make([]*ScanResult, 0, len(dirs))
	byTarget := make(map[string]*Shadow)
	var order []string

	for _, dir := range dirs {
		res, err := ScanDirectory(dir, opts)
		if err != nil {
			return nil, results, fmt.Errorf("scan %s: %w", dir, err)
		}
		results = append(results, res)

		for _, e := range res.Entries {
			s, ok := byTarget[e.Rel]
			if !ok {
				byTarget[e.Rel] = &Shadow{Target: e.Rel, Winner: e.Path}
				order = append(order, e.Rel)
				continue
			}
			// The same directory listed twice is not shadowing.
			if s.Winner == e.Path || contains(s.Shadowed, e.Path) {
				continue
			}
			s.Shadowed = append(s.Shadowed, e.Path)
		}
	}

	var shadows []Shadow
	for _, target := range order {
		if s := byTarget[target]; len(s.Shadowed) > 0 {
			shadows = append(shadows, *s)
		}
	}
	sort.Slice(shadows, func(i, j int) bool { return shadows[i].Target < shadows[j].Target })

	return shadows, results, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
