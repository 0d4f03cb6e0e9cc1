// Package logger provides logging implementations for flattening runs.
//
// The loggers report which files are expanded, how each include resolved and
// a summary of the run. They never write into the output artifact.
// Implementations are thread-safe and support console and file destinations.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/flattener/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if f != os.Stdout && f != os.Stderr {
		return false
	}
	// color.NoColor honours NO_COLOR and TERM=dumb.
	return !color.NoColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if IsValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level names one of the supported log levels.
func IsValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, colorLevel(level), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func colorLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogFileEnter logs that a file is about to be scanned, at DEBUG level.
// Format: "[HH:MM:SS] [DEBUG] <indent>expanding <path>"
func (cl *ConsoleLogger) LogFileEnter(path string, depth int) {
	cl.LogDebug(fmt.Sprintf("%sexpanding %s", indent(depth), path))
}

// LogIncludeResolved logs where an include directive resolved to, at TRACE level.
// Format: "[HH:MM:SS] [TRACE] <from>:<line>: <directive> -> <resolved>"
func (cl *ConsoleLogger) LogIncludeResolved(rec models.IncludeRecord) {
	cl.LogTrace(fmt.Sprintf("%s:%d: %s -> %s", rec.From, rec.Line, rec.Directive, rec.Resolved))
}

// LogFailure logs the error that ended a run at ERROR level.
func (cl *ConsoleLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	cl.LogError(err.Error())
}

// LogSummary logs the run statistics at INFO level.
// Format: "[HH:MM:SS] Flattened <root> -> <output>: N files, N includes, N lines, depth N (Xs)"
func (cl *ConsoleLogger) LogSummary(result models.FlattenResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	target := result.OutputPath
	if target == "" {
		target = "(dry run)"
	}
	stats := fmt.Sprintf("%d files, %d includes, %d lines, depth %d (%s)",
		result.FilesExpanded, result.IncludeCount(), result.LinesWritten, result.MaxDepth, formatDuration(result.Duration))

	if cl.colorOutput {
		header := color.New(color.Bold).Sprint("Flattened")
		done := color.New(color.FgGreen).Sprint(stats)
		fmt.Fprintf(cl.writer, "[%s] %s %s -> %s: %s\n", timestamp(), header, result.RootPath, target, done)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] Flattened %s -> %s: %s\n", timestamp(), result.RootPath, target, stats)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// formatDuration converts a time.Duration to a human-readable string.
// Sub-second runs are reported in milliseconds.
// Examples: "12ms", "5s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder < time.Second {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, remainder/time.Second)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogFileEnter is a no-op implementation.
func (n *NoOpLogger) LogFileEnter(path string, depth int) {}

// LogIncludeResolved is a no-op implementation.
func (n *NoOpLogger) LogIncludeResolved(rec models.IncludeRecord) {}

// LogFailure is a no-op implementation.
func (n *NoOpLogger) LogFailure(err error) {}

// LogSummary is a no-op implementation.
func (n *NoOpLogger) LogSummary(result models.FlattenResult) {}
