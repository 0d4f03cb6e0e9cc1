package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/flattener/internal/filelock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	if cmd.Use != "run <root-file>" {
		t.Errorf("unexpected Use %q", cmd.Use)
	}
	for _, name := range []string{
		"output", "include-dir", "config", "no-config-paths", "on-failure", "max-depth",
		"no-cycle-check", "no-lock", "lock-timeout", "dry-run", "verbose", "log-level",
		"log-dir", "no-log-file",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not registered", name)
		}
	}
	if f := cmd.Flags().ShorthandLookup("I"); f == nil || f.Name != "include-dir" {
		t.Error("-I should be the include-dir shorthand")
	}
}

func TestRunCommand_Basic(t *testing.T) {
	dir := setupTree(t)
	out := filepath.Join(dir, "a.in")
	logDir := filepath.Join(dir, "logs")

	stdout, stderr, err := executeCommand(t, "run", filepath.Join(dir, "src", "a.cpp"),
		"-o", out,
		"-I", filepath.Join(dir, "include1"),
		"-I", filepath.Join(dir, "include2"),
		"--log-dir", logDir)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sampleExpected, string(data))

	assert.Contains(t, stdout, "Flattened")
	assert.Contains(t, stdout, "4 files, 3 includes, 5 lines")
	assert.Empty(t, stderr)

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries, "a run log should be written")

	_, err = os.Stat(out + ".lock")
	assert.True(t, os.IsNotExist(err), "lock file should be released")
}

func TestRunCommand_ErrorCases(t *testing.T) {
	dir := setupTree(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no args",
			args:    []string{"run"},
			wantErr: "accepts 1 arg(s)",
		},
		{
			name:    "missing output",
			args:    []string{"run", filepath.Join(dir, "src", "a.cpp")},
			wantErr: "an output file is required",
		},
		{
			name:    "missing root",
			args:    []string{"run", filepath.Join(dir, "nope.cpp"), "-o", filepath.Join(dir, "x.in"), "--no-log-file"},
			wantErr: "cannot open root file",
		},
		{
			name:    "invalid failure policy",
			args:    []string{"run", filepath.Join(dir, "src", "a.cpp"), "-o", filepath.Join(dir, "x.in"), "--on-failure", "retry"},
			wantErr: "invalid configuration",
		},
		{
			name:    "negative depth",
			args:    []string{"run", filepath.Join(dir, "src", "a.cpp"), "-o", filepath.Join(dir, "x.in"), "--max-depth", "-2"},
			wantErr: "max_depth must be >= 0",
		},
		{
			name:    "bad log level",
			args:    []string{"run", filepath.Join(dir, "src", "a.cpp"), "-o", filepath.Join(dir, "x.in"), "--log-level", "loud"},
			wantErr: "invalid log_level",
		},
		{
			name:    "malformed config file",
			args:    []string{"run", filepath.Join(dir, "src", "a.cpp"), "-o", filepath.Join(dir, "x.in"), "--config", filepath.Join(dir, "notadir")},
			wantErr: "failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunCommand_UnresolvedKeepsPartialOutput(t *testing.T) {
	dir := setupTree(t)
	out := filepath.Join(dir, "broken.in")
	root := filepath.Join(dir, "broken", "root.cpp")

	stdout, stderr, err := executeCommand(t, "run", root, "-o", out, "--no-log-file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flatten failed")
	assert.Contains(t, err.Error(), "unknown include file dummy.txt")

	assert.Equal(t, "unknown include file dummy.txt at file "+root+" at line 2\n", stderr)
	assert.Contains(t, stdout, "Output is incomplete")

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "// before\n", string(data))
}

func TestRunCommand_FailurePolicies(t *testing.T) {
	tests := []struct {
		policy     string
		wantExists bool
	}{
		{policy: "remove", wantExists: false},
		{policy: "atomic", wantExists: false},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			dir := setupTree(t)
			out := filepath.Join(dir, "broken.in")

			stdout, _, err := executeCommand(t, "run", filepath.Join(dir, "broken", "root.cpp"),
				"-o", out, "--on-failure", tt.policy, "--no-log-file")
			require.Error(t, err)
			assert.NotContains(t, stdout, "Output is incomplete")

			_, statErr := os.Stat(out)
			assert.Equal(t, tt.wantExists, statErr == nil)
		})
	}
}

func TestRunCommand_AtomicKeepsPreviousOutput(t *testing.T) {
	dir := setupTree(t)
	out := filepath.Join(dir, "broken.in")
	require.NoError(t, os.WriteFile(out, []byte("previous\n"), 0644))

	_, _, err := executeCommand(t, "run", filepath.Join(dir, "broken", "root.cpp"),
		"-o", out, "--on-failure", "atomic", "--no-log-file")
	require.Error(t, err)

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "previous\n", string(data))
}

func TestRunCommand_DryRunOutput(t *testing.T) {
	dir := setupTree(t)
	logDir := filepath.Join(dir, "logs")

	stdout, _, err := executeCommand(t, "run", filepath.Join(dir, "src", "a.cpp"), "--dry-run",
		"-I", filepath.Join(dir, "include1"),
		"-I", filepath.Join(dir, "include2"),
		"--log-dir", logDir)
	require.NoError(t, err)

	assert.Contains(t, stdout, `#include "dir/b.h" -> `+filepath.Join(dir, "src", "dir", "b.h"))
	assert.Contains(t, stdout, `    #include "lib/std2.h" -> `+filepath.Join(dir, "include2", "lib", "std2.h"))
	assert.Contains(t, stdout, `#include <std1.h> -> `+filepath.Join(dir, "include1", "std1.h"))
	assert.Contains(t, stdout, "(dry run)")

	_, statErr := os.Stat(logDir)
	assert.True(t, os.IsNotExist(statErr), "dry run writes no run log")
}

func TestRunCommand_CycleDetection(t *testing.T) {
	dir := setupTree(t)
	root := filepath.Join(dir, "cycle", "self.h")

	_, _, err := executeCommand(t, "run", root, "-o", filepath.Join(dir, "c.in"), "--no-log-file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")

	_, _, err = executeCommand(t, "run", root, "-o", filepath.Join(dir, "c.in"), "--no-log-file",
		"--no-cycle-check", "--max-depth", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include depth limit 5 exceeded")
}

func TestRunCommand_ConfigSearchPaths(t *testing.T) {
	dir := setupTree(t)
	cfgPath := filepath.Join(dir, "flattener.yaml")
	cfg := "search_paths:\n  - " + filepath.Join(dir, "include2") + "\nlock_output: false\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	out := filepath.Join(dir, "a.in")

	// Config paths come first, so include2 wins std1.h.
	_, _, err := executeCommand(t, "run", filepath.Join(dir, "src", "a.cpp"), "-o", out,
		"--config", cfgPath, "-I", filepath.Join(dir, "include1"), "--no-log-file")
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "// std1 from include2")

	// --no-config-paths drops include2, so lib/std2.h is no longer found.
	_, stderr, err := executeCommand(t, "run", filepath.Join(dir, "src", "a.cpp"), "-o", out,
		"--config", cfgPath, "-I", filepath.Join(dir, "include1"), "--no-config-paths", "--no-log-file")
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown include file lib/std2.h")
}

func TestRunCommand_HomeConfig(t *testing.T) {
	dir := setupTree(t)
	home := filepath.Join(dir, ".flattener-home")
	require.NoError(t, os.MkdirAll(home, 0755))
	cfg := "search_paths:\n  - " + filepath.Join(dir, "include1") + "\n  - " + filepath.Join(dir, "include2") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(cfg), 0644))
	out := filepath.Join(dir, "a.in")

	_, _, err := executeCommand(t, "run", filepath.Join(dir, "src", "a.cpp"), "-o", out, "--no-log-file")
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sampleExpected, string(data))
}

func TestRunCommand_OutputLocked(t *testing.T) {
	dir := setupTree(t)
	out := filepath.Join(dir, "a.in")

	lock := filelock.NewFileLock(out + ".lock")
	require.NoError(t, lock.Lock())
	defer lock.Unlock()

	_, _, err := executeCommand(t, "run", filepath.Join(dir, "src", "a.cpp"), "-o", out,
		"-I", filepath.Join(dir, "include1"), "-I", filepath.Join(dir, "include2"),
		"--no-log-file", "--lock-timeout", "30ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "being written by another run")

	// Without the lock the run proceeds.
	_, _, err = executeCommand(t, "run", filepath.Join(dir, "src", "a.cpp"), "-o", out,
		"-I", filepath.Join(dir, "include1"), "-I", filepath.Join(dir, "include2"),
		"--no-log-file", "--no-lock")
	require.NoError(t, err)
}

func TestRunCommand_VerboseOutput(t *testing.T) {
	dir := setupTree(t)

	stdout, _, err := executeCommand(t, "run", filepath.Join(dir, "src", "a.cpp"), "-o", filepath.Join(dir, "a.in"),
		"-I", filepath.Join(dir, "include1"), "-I", filepath.Join(dir, "include2"),
		"--no-log-file", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, stdout, "[DEBUG] expanding "+filepath.Join(dir, "src", "a.cpp"))
	assert.True(t, strings.Contains(stdout, "[DEBUG]     expanding "+filepath.Join(dir, "include2", "lib", "std2.h")),
		"nested files are indented by depth: %s", stdout)
}
