package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/droneq/droneq/internal/config"
)

var (
	instanceLock   *flock.Flock
	instanceLockMu sync.Mutex
)

func lockPath() string {
	return filepath.Join(config.GetRuntimeDir(), "droneq.lock")
}

// AcquireLock takes the single-instance lock. It reports false when another
// droneq process already holds it.
func AcquireLock() (bool, error) {
	instanceLockMu.Lock()
	defer instanceLockMu.Unlock()

	if instanceLock != nil {
		return true, nil
	}
	if err := os.MkdirAll(filepath.Dir(lockPath()), 0o755); err != nil {
		return false, fmt.Errorf("failed to create runtime dir: %w", err)
	}

	l := flock.New(lockPath())
	locked, err := l.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return false, nil
	}
	instanceLock = l
	return true, nil
}

// ReleaseLock drops the single-instance lock if held.
func ReleaseLock() error {
	instanceLockMu.Lock()
	defer instanceLockMu.Unlock()

	if instanceLock == nil {
		return nil
	}
	err := instanceLock.Unlock()
	instanceLock = nil
	return err
}
