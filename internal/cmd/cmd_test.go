package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/harrison/flattener/internal/fixture"
)

// sampleTree is a small source tree with one quoted, one angled and one
// search-path-relative include.
var sampleTree = map[string]string{
	"src/a.cpp":           "// a\n#include \"dir/b.h\"\n#include <std1.h>\nint main() {}\n",
	"src/dir/b.h":         "// b\n#include \"lib/std2.h\"\n",
	"include1/std1.h":     "// std1 from include1\n",
	"include2/std1.h":     "// std1 from include2\n",
	"include2/lib/std2.h": "// std2\n",
	"broken/root.cpp":     "// before\n#   include<dummy.txt>\n// after\n",
	"cycle/self.h":        "#include \"self.h\"\n",
	"empty/.keep":         "",
	"notadir":             "file",
}

const sampleExpected = "// a\n// b\n// std2\n// std1 from include1\nint main() {}\n"

// setupTree builds sampleTree, isolates config discovery and returns the tree root.
func setupTree(t *testing.T) string {
	t.Helper()
	dir := fixture.TempTree(t, sampleTree)
	t.Setenv("FLATTENER_HOME", filepath.Join(dir, ".flattener-home"))
	return dir
}

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	rootCmd := NewRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
