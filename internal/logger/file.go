package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/flattener/internal/models"
)

// FileLogger logs flattening runs to files in a log directory.
// Each run gets a timestamped run-YYYYMMDD-HHMMSS.log file and a latest.log
// symlink pointing at it. Every run is tagged with a random run ID.
// It is thread-safe and implements the expander.Logger interface.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	runID    string
	logLevel string
	mu       sync.Mutex
}

// NewFileLoggerWithDir creates a new FileLogger in logDir with level "info".
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a new FileLogger with a custom log directory and log level.
// It creates the log directory if it doesn't exist, opens a timestamped
// run log file, and creates/updates the latest.log symlink.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	now := time.Now()
	runID := uuid.New().String()
	// The run ID prefix keeps two runs started in the same second apart.
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s-%s.log", now.Format("20060102-150405"), runID[:8]))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		runID:    runID,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== Flattener Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Run ID: %s\n", runID))
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", now.Format(time.RFC3339)))

	return logger, nil
}

// RunID returns the identifier written in the run log header.
func (fl *FileLogger) RunID() string {
	return fl.runID
}

// RunFile returns the path of this run's log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message))
}

// LogFileEnter records that a file is being scanned, at DEBUG level.
func (fl *FileLogger) LogFileEnter(path string, depth int) {
	fl.LogDebug(fmt.Sprintf("%sexpanding %s", indent(depth), path))
}

// LogIncludeResolved records where an include resolved, at DEBUG level.
// The file log keeps resolutions one level less verbose than the console
// so a debug run log is enough to reconstruct the include tree.
func (fl *FileLogger) LogIncludeResolved(rec models.IncludeRecord) {
	fl.LogDebug(fmt.Sprintf("%s:%d: %s -> %s", rec.From, rec.Line, rec.Directive, rec.Resolved))
}

// LogFailure records the error that ended a run.
func (fl *FileLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	fl.LogError(err.Error())
	fl.writeSummaryFooter("FAILED")
}

// LogSummary records the run statistics at INFO level.
func (fl *FileLogger) LogSummary(result models.FlattenResult) {
	if !fl.shouldLog("info") {
		return
	}

	ts := time.Now().Format("15:04:05")
	output := result.OutputPath
	if output == "" {
		output = "(dry run)"
	}

	message := fmt.Sprintf(
		"\n[%s] === FLATTEN SUMMARY ===\n"+
			"[%s] Root:           %s\n"+
			"[%s] Output:         %s\n"+
			"[%s] Files expanded: %d\n"+
			"[%s] Includes:       %d\n"+
			"[%s] Lines written:  %d\n"+
			"[%s] Max depth:      %d\n"+
			"[%s] Total time:     %.3fs\n",
		ts,
		ts, result.RootPath,
		ts, output,
		ts, result.FilesExpanded,
		ts, result.IncludeCount(),
		ts, result.LinesWritten,
		ts, result.MaxDepth,
		ts, result.Duration.Seconds(),
	)
	fl.writeRunLog(message)
	fl.writeSummaryFooter("SUCCESS")
}

func (fl *FileLogger) writeSummaryFooter(status string) {
	fl.writeRunLog(fmt.Sprintf("[%s] Status: %s\n[%s] Completed at: %s\n",
		time.Now().Format("15:04:05"), status, time.Now().Format("15:04:05"), time.Now().Format(time.RFC3339)))
}

// Close flushes and closes the run log file.
// It should be called when the logger is no longer needed.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}
