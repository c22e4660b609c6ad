package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"debtwatch/src/util"
)

// ScanLock is the JSON payload of the advisory lock file. Only one
// writer (scan or resolve) may hold it per state directory; read-only
// commands never take it.
type ScanLock struct {
	Holder    string    `json:"holder"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
	Version   string    `json:"version"`
}

const lockFileName = "scan.lock"

// AcquireLock claims the advisory lock in the state directory. A lock
// held by a live process on this host is respected; a stale lock is
// overwritten.
func AcquireLock(stateDir, holder, version string) (lockPath string, err error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return "", fmt.Errorf("creating state dir: %w", err)
	}
	lockPath = filepath.Join(stateDir, lockFileName)

	if data, err := os.ReadFile(lockPath); err == nil {
		var existing ScanLock
		if json.Unmarshal(data, &existing) == nil {
			if isProcessAlive(existing.PID, existing.Hostname) {
				return "", fmt.Errorf("another %s is already running (PID %d on %s, started %s)",
					existing.Holder, existing.PID, existing.Hostname, existing.StartedAt.Format(time.RFC3339))
			}
			util.Warn("Overwriting stale lock from PID %d", existing.PID)
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("getting hostname: %w", err)
	}

	lock := ScanLock{
		Holder:    holder,
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now(),
		Version:   version,
	}
	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding lock: %w", err)
	}
	if err := os.WriteFile(lockPath, data, 0644); err != nil {
		return "", fmt.Errorf("creating lock: %w", err)
	}
	return lockPath, nil
}

// ReleaseLock removes the lock file. Safe to call with an empty path
// or after the file is already gone; use with defer.
func ReleaseLock(lockPath string) error {
	if lockPath == "" {
		return nil
	}
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock: %w", err)
	}
	return nil
}

// isProcessAlive checks whether the lock owner still exists. Locks
// from other hosts cannot be probed and are assumed alive.
func isProcessAlive(pid int, hostname string) bool {
	currentHost, err := os.Hostname()
	if err != nil {
		return true
	}
	if !strings.EqualFold(hostname, currentHost) {
		return true
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 probes existence without touching the process
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means it exists but belongs to someone else
	if err == syscall.EPERM {
		return true
	}
	return false
}
