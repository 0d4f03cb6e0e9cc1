package expander

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harrison/flattener/internal/filelock"
	"github.com/harrison/flattener/internal/models"
	"github.com/harrison/flattener/internal/resolver"
)

// Options configures a flattening run.
type Options struct {
	SearchPaths []string             // Ordered search directories, fixed for the run
	OnFailure   models.FailurePolicy // What to do with the output on failure (default keep)
	AllowCycles bool                 // Disable the include-cycle check
	MaxDepth    int                  // Maximum include nesting, 0 for unlimited
	LockOutput  bool                 // Hold an advisory lock on <output>.lock during the run
	LockTimeout time.Duration        // How long to wait for a held lock, 0 to fail at once
	Logger      Logger               // Progress events; nil discards them
	Diagnostics io.Writer            // Unresolved-include messages; nil means os.Stderr
}

// outputFile is what Run writes through: a plain file or an atomic temp file.
type outputFile interface {
	io.Writer
	Close() error
}

// Run flattens rootPath into outputPath.
//
// The result is nil when the root or the output cannot be opened. When
// expansion itself fails, the partial statistics are returned with the error.
//
// The root file is opened before anything else; if that fails no output is
// created. The output is then opened (created or truncated, or a temp file
// under the atomic policy) and the root is expanded into it. When expansion
// fails the output is handled according to opts.OnFailure.
func Run(ctx context.Context, rootPath, outputPath string, opts Options) (*models.FlattenResult, error) {
	start := time.Now()
	e := New(opts)

	policy := opts.OnFailure
	if policy == "" {
		policy = models.FailureKeep
	}

	root, err := resolver.OpenRegular(rootPath)
	if err != nil {
		return e.fail(&RootOpenError{Path: rootPath, Err: err})
	}
	defer root.Close()

	if opts.LockOutput {
		lock, err := acquireLock(outputPath+".lock", opts.LockTimeout)
		if err != nil {
			return e.fail(&OutputOpenError{Path: outputPath, Err: err})
		}
		defer lock.Release()
	}

	var out outputFile
	var atomic *filelock.AtomicFile
	if policy == models.FailureAtomic {
		atomic, err = filelock.CreateAtomic(outputPath)
		out = atomic
	} else {
		out, err = os.Create(outputPath)
	}
	if err != nil {
		return e.fail(&OutputOpenError{Path: outputPath, Err: err})
	}

	sink := NewSink(out)
	expandErr := e.Expand(ctx, root, rootPath, sink)
	// Flush even on failure so the keep policy leaves everything written
	// before the failing line.
	if err := sink.Flush(); err != nil && expandErr == nil {
		expandErr = fmt.Errorf("failed to write output: %w", err)
	}

	result := e.Result()
	result.RootPath = rootPath
	result.OutputPath = outputPath
	result.LinesWritten = sink.Lines()
	result.Duration = time.Since(start)

	if expandErr != nil {
		if cleanupErr := discard(out, atomic, outputPath, policy); cleanupErr != nil {
			expandErr = errors.Join(expandErr, cleanupErr)
		}
		e.logger.LogFailure(expandErr)
		return result, expandErr
	}

	if atomic != nil {
		err = atomic.Commit()
	} else {
		err = out.Close()
	}
	if err != nil {
		return e.fail(fmt.Errorf("failed to finalize output %s: %w", outputPath, err))
	}

	e.logger.LogSummary(*result)
	return result, nil
}

// DryRun expands rootPath into a discarding sink. It reports the same
// statistics and failures as Run without creating any output.
func DryRun(ctx context.Context, rootPath string, opts Options) (*models.FlattenResult, error) {
	start := time.Now()
	e := New(opts)

	root, err := resolver.OpenRegular(rootPath)
	if err != nil {
		return e.fail(&RootOpenError{Path: rootPath, Err: err})
	}
	defer root.Close()

	sink := NewSink(io.Discard)
	expandErr := e.Expand(ctx, root, rootPath, sink)

	result := e.Result()
	result.RootPath = rootPath
	result.LinesWritten = sink.Lines()
	result.Duration = time.Since(start)
	if expandErr != nil {
		e.logger.LogFailure(expandErr)
		return result, expandErr
	}
	e.logger.LogSummary(*result)
	return result, nil
}

// Flatten runs with default options and reports only success or failure.
// Unresolved includes are reported on os.Stderr.
func Flatten(rootPath, outputPath string, searchPaths []string) bool {
	_, err := Run(context.Background(), rootPath, outputPath, Options{SearchPaths: searchPaths})
	return err == nil
}

func acquireLock(path string, timeout time.Duration) (*filelock.FileLock, error) {
	lock := filelock.NewFileLock(path)
	if timeout > 0 {
		if err := lock.LockWithTimeout(timeout); err != nil {
			if errors.Is(err, filelock.ErrLockTimeout) {
				return nil, fmt.Errorf("%w: %v", ErrOutputLocked, err)
			}
			return nil, err
		}
		return lock, nil
	}

	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrOutputLocked
	}
	return lock, nil
}

func (e *Expander) fail(err error) (*models.FlattenResult, error) {
	e.logger.LogFailure(err)
	return nil, err
}

// discard applies the failure policy to an output that was opened.
func discard(out outputFile, atomic *filelock.AtomicFile, path string, policy models.FailurePolicy) error {
	switch {
	case atomic != nil:
		return atomic.Abort()
	case policy == models.FailureRemove:
		out.Close()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove partial output %s: %w", path, err)
		}
		return nil
	default:
		return out.Close()
	}
}
