package fsx

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWithFileLockRunsAndReleases(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), ".sample.lock")

	ran := false
	if err := WithFileLock(lockPath, func() error {
		ran = true
		if _, err := os.Stat(lockPath); err != nil {
			t.Fatalf("lock file missing while held: %v", err)
		}
		return nil
	}); err != nil {
		t.Fatalf("WithFileLock: %v", err)
	}
	if !ran {
		t.Fatal("expected locked function to run")
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed after release, stat err=%v", err)
	}
}

func TestWithFileLockSerializesWriters(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), ".sample.lock")

	const writers = 8
	var inCritical int
	var observedMax int
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- WithFileLock(lockPath, func() error {
				mu.Lock()
				inCritical++
				if inCritical > observedMax {
					observedMax = inCritical
				}
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)

				mu.Lock()
				inCritical--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("locked writer: %v", err)
		}
	}
	if observedMax != 1 {
		t.Fatalf("expected at most one writer in critical section, observed %d", observedMax)
	}
}

func TestWithFileLockRecoversStaleLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), ".sample.lock")
	if err := os.WriteFile(lockPath, nil, 0o600); err != nil {
		t.Fatalf("seed stale lock: %v", err)
	}
	staleTime := time.Now().Add(-fileLockStaleAfter - time.Minute)
	if err := os.Chtimes(lockPath, staleTime, staleTime); err != nil {
		t.Fatalf("backdate stale lock: %v", err)
	}

	ran := false
	if err := WithFileLock(lockPath, func() error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("WithFileLock stale recovery: %v", err)
	}
	if !ran {
		t.Fatal("expected stale lock to be recovered")
	}
}

func TestShouldRecoverStaleLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), ".sample.lock")
	if err := os.WriteFile(lockPath, nil, 0o600); err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	now := time.Now().UTC()
	if shouldRecoverStaleLock(lockPath, now) {
		t.Fatal("fresh lock should not be considered stale")
	}
	if !shouldRecoverStaleLock(lockPath, now.Add(fileLockStaleAfter+time.Second)) {
		t.Fatal("expected lock older than the stale window to be recoverable")
	}
	if shouldRecoverStaleLock(filepath.Join(t.TempDir(), "absent.lock"), now) {
		t.Fatal("missing lock file should not report stale")
	}
}
