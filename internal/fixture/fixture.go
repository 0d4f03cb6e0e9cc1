// Package fixture builds on-disk source trees for tests and loads
// data-driven flattening cases described in YAML.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"gopkg.in/yaml.v3"
)

// Case is one flattening scenario: a tree layout, the search directories to
// use and what the run is expected to produce.
type Case struct {
	Name        string            `yaml:"name"`
	Files       map[string]string `yaml:"files"`        // slash-separated path -> content
	Root        string            `yaml:"root"`         // root file, relative to the tree
	SearchPaths []string          `yaml:"search_paths"` // relative to the tree
	Expected    string            `yaml:"expected"`     // expected output content
	Error       string            `yaml:"error"`        // substring of the expected error, empty for success
	Diagnostic  string            `yaml:"diagnostic"`   // substring expected on the diagnostic stream
	OnFailure   string            `yaml:"on_failure"`   // failure policy override
	NoCycles    bool              `yaml:"no_cycle_check"`
	MaxDepth    int               `yaml:"max_depth"`
}

// Build writes files under root, creating parent directories as needed.
// Keys are slash-separated paths relative to root. Files are written in
// sorted order so failures are reproducible.
func Build(root string, files map[string]string) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(p, []byte(files[name]), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// TempTree builds files in a fresh temporary directory owned by tb and
// returns that directory.
func TempTree(tb testing.TB, files map[string]string) string {
	tb.Helper()
	root := tb.TempDir()
	if err := Build(root, files); err != nil {
		tb.Fatalf("failed to build fixture tree: %v", err)
	}
	return root
}

// LoadCases reads a YAML list of cases from path.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases file: %w", err)
	}

	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse cases file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(cases))
	for i, c := range cases {
		if c.Name == "" {
			return nil, fmt.Errorf("case %d in %s has no name", i, path)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate case name %q in %s", c.Name, path)
		}
		seen[c.Name] = true
		if c.Root == "" {
			return nil, fmt.Errorf("case %q has no root", c.Name)
		}
	}
	return cases, nil
}

// Paths joins the case's root and search directories onto dir.
func (c Case) Paths(dir string) (root string, searchPaths []string) {
	root = filepath.Join(dir, filepath.FromSlash(c.Root))
	for _, sp := range c.SearchPaths {
		searchPaths = append(searchPaths, filepath.Join(dir, filepath.FromSlash(sp)))
	}
	return root, searchPaths
}
