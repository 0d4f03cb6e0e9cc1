// Package filelock guards output artifacts: an advisory lock keeps two runs
// from writing the same output at once, and AtomicFile lets a run replace an
// output only after it has been written completely.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned by LockWithTimeout when the lock stays held.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// lockRetryInterval is how often LockWithTimeout polls a held lock.
const lockRetryInterval = 25 * time.Millisecond

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held by another process.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// LockWithTimeout polls for the lock until it is acquired or timeout elapses.
func (fl *FileLock) LockWithTimeout(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		acquired, err := fl.TryLock()
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s after %s", ErrLockTimeout, fl.path, timeout)
		}
		time.Sleep(lockRetryInterval)
	}
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// Release unlocks and deletes the lock file so no stray .lock file is left
// next to the output.
func (fl *FileLock) Release() error {
	if err := fl.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(fl.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", fl.path, err)
	}
	return nil
}

// AtomicFile is a temp file in the target's directory that replaces the
// target on Commit. Until then the target is untouched; Abort discards the
// temp file.
type AtomicFile struct {
	*os.File
	target string
	done   bool
}

// CreateAtomic creates the temp file for target. The temp file lives in the
// same directory so the final rename stays on one filesystem.
func CreateAtomic(target string) (*AtomicFile, error) {
	dir := filepath.Dir(target)
	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return &AtomicFile{File: tempFile, target: target}, nil
}

// Target returns the path the file will be renamed to on Commit.
func (a *AtomicFile) Target() string {
	return a.target
}

// Commit syncs, closes and renames the temp file over the target.
func (a *AtomicFile) Commit() error {
	if a.done {
		return fmt.Errorf("atomic file for %s already finished", a.target)
	}
	a.done = true
	tempPath := a.Name()

	if err := a.Sync(); err != nil {
		a.File.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := a.File.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, a.target); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", a.target, err)
	}
	return nil
}

// Abort closes and removes the temp file. It is a no-op after Commit.
func (a *AtomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	a.File.Close()
	if err := os.Remove(a.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}
	return nil
}

// Close aborts the file unless it was committed, so a deferred Close never
// leaves a temp file behind.
func (a *AtomicFile) Close() error {
	return a.Abort()
}
