package fsx

import (
	"fmt"
	"os"
	"time"
)

const (
	fileLockTimeout    = 30 * time.Second
	fileLockRetry      = 10 * time.Millisecond
	fileLockStaleAfter = 2 * time.Minute
)

// WithFileLock runs fn while holding an exclusive cross-process lock file at
// lockPath. Contending processes spin with a short sleep until the lock frees,
// a stale lock (abandoned by a crashed process) is recovered, or the timeout
// elapses.
func WithFileLock(lockPath string, fn func() error) error {
	start := time.Now()
	for {
		// #nosec G304 -- lock path is derived from a caller-provided directory and basename.
		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_ = lockFile.Close()
			defer func() {
				_ = os.Remove(lockPath)
			}()
			return fn()
		}
		if !isLockContention(err, lockPath) {
			return fmt.Errorf("acquire file lock: %w", err)
		}
		if shouldRecoverStaleLock(lockPath, time.Now().UTC()) {
			_ = os.Remove(lockPath)
			continue
		}
		if time.Since(start) >= fileLockTimeout {
			return fmt.Errorf("file lock timeout")
		}
		time.Sleep(fileLockRetry)
	}
}

func isLockContention(acquireErr error, lockPath string) bool {
	if os.IsExist(acquireErr) {
		return true
	}
	if !os.IsPermission(acquireErr) {
		return false
	}
	_, statErr := os.Stat(lockPath)
	return statErr == nil
}

func shouldRecoverStaleLock(lockPath string, now time.Time) bool {
	// #nosec G304 -- lock path is derived from a caller-provided directory and basename.
	info, err := os.Stat(lockPath)
	if err != nil {
		return false
	}
	return now.Sub(info.ModTime().UTC()) > fileLockStaleAfter
}
