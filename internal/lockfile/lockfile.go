// Package lockfile serializes cache writers: only one import may rebuild the
// sqlite cache at a time.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// LockFile is an exclusive PID lock backed by a file.
type LockFile struct {
	path string
	file *os.File
}

// Acquire creates and locks a lockfile at the given path. It fails when
// another live process holds the lock; stale locks from dead processes are
// removed.
func Acquire(path string) (*LockFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, handleExistingLock(path)
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write pid to lock file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}
	return &LockFile{path: path, file: f}, nil
}

func handleExistingLock(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lock file exists but cannot be read: %s\nRemove it manually if no other instance is running: rm %s", path, path)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("lock file contains invalid PID: %s\nRemove it manually if corrupted: rm %s", path, path)
	}
	if processExists(pid) {
		return fmt.Errorf("another import is already running (PID %d)\nWait for it to finish or remove a stale lock: %s", pid, path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("stale lock file (PID %d not running) cannot be removed: %w\nRemove manually: rm %s", pid, err, path)
	}
	return fmt.Errorf("stale lock detected and removed, please retry")
}

func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix FindProcess always succeeds; signal 0 probes liveness. Signal
	// wraps ESRCH in os.ErrProcessDone, so match on that rather than the
	// raw errno.
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		return false
	}
	// Alive but owned by someone else.
	return true
}

// Release unlocks and removes the lock file.
func (l *LockFile) Release() error {
	if l.file != nil {
		_ = l.file.Close()
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

// Path returns the lock file location.
func (l *LockFile) Path() string { return l.path }
