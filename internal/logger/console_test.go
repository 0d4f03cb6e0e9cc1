package logger

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/flattener/internal/models"
)

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		if logger == nil {
			t.Fatal("expected non-nil logger")
		}
		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("color output should be disabled for a buffer")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		if logger == nil {
			t.Fatal("expected non-nil logger even with nil writer")
		}
		// Must not panic.
		logger.LogInfo("discarded")
		logger.LogSummary(models.FlattenResult{})
	})
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(nil) {
		t.Error("nil writer is not a terminal")
	}
	if isTerminal(&bytes.Buffer{}) {
		t.Error("buffer is not a terminal")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Error("regular file is not a terminal")
	}
}

func TestLogFileEnter(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "debug")

	logger.LogFileEnter("a.cpp", 0)
	logger.LogFileEnter("dir1/b.h", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[DEBUG] expanding a.cpp") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "[DEBUG]     expanding dir1/b.h") {
		t.Errorf("nested file should be indented: %q", lines[1])
	}

	quiet := &bytes.Buffer{}
	NewConsoleLogger(quiet, "info").LogFileEnter("a.cpp", 0)
	if quiet.Len() != 0 {
		t.Errorf("file enter should be filtered at info level, got %q", quiet.String())
	}
}

func TestLogIncludeResolved(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "trace")

	logger.LogIncludeResolved(models.IncludeRecord{
		Directive: models.IncludeDirective{Kind: models.KindAngled, Target: "std1.h"},
		From:      "dir1/subdir/c.h",
		Line:      2,
		Resolved:  "include1/std1.h",
		Depth:     3,
	})

	want := "[TRACE] dir1/subdir/c.h:2: #include <std1.h> -> include1/std1.h"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected %q in %q", want, buf.String())
	}
}

func TestLogFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "error")

	logger.LogFailure(nil)
	if buf.Len() != 0 {
		t.Errorf("nil error should log nothing, got %q", buf.String())
	}

	logger.LogFailure(errors.New("unknown include file dummy.txt at file a.cpp at line 8"))
	if !strings.Contains(buf.String(), "[ERROR] unknown include file dummy.txt") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestLogSummary(t *testing.T) {
	tests := []struct {
		name     string
		result   models.FlattenResult
		expected []string
	}{
		{
			name: "written output",
			result: models.FlattenResult{
				RootPath:      "a.cpp",
				OutputPath:    "a.in",
				FilesExpanded: 6,
				LinesWritten:  13,
				MaxDepth:      3,
				Duration:      1500 * time.Millisecond,
				Includes:      make([]models.IncludeRecord, 5),
			},
			expected: []string{"Flattened a.cpp -> a.in", "6 files", "5 includes", "13 lines", "depth 3", "(1s)"},
		},
		{
			name:     "dry run",
			result:   models.FlattenResult{RootPath: "a.cpp", FilesExpanded: 1},
			expected: []string{"a.cpp -> (dry run)", "1 files", "0 includes", "(0ms)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			NewConsoleLogger(buf, "info").LogSummary(tt.result)
			for _, want := range tt.expected {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected %q in %q", want, buf.String())
				}
			}
		})
	}

	quiet := &bytes.Buffer{}
	NewConsoleLogger(quiet, "warn").LogSummary(tests[0].result)
	if quiet.Len() != 0 {
		t.Errorf("summary should be filtered at warn level, got %q", quiet.String())
	}
}

func TestTimestampPrefix(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogInfo("hello")

	out := buf.String()
	if len(out) < 10 || out[0] != '[' || out[9] != ']' {
		t.Errorf("expected [HH:MM:SS] prefix, got %q", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

// TestConcurrentLogging verifies whole lines are written under concurrent use.
func TestConcurrentLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogInfo("concurrent message")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "[INFO] concurrent message") {
			t.Errorf("interleaved line: %q", line)
		}
	}
}

func TestNoOpLogger(t *testing.T) {
	n := NewNoOpLogger()
	n.LogFileEnter("a", 0)
	n.LogIncludeResolved(models.IncludeRecord{})
	n.LogFailure(errors.New("x"))
	n.LogSummary(models.FlattenResult{})
}
