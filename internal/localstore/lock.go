package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobboard/internal/errors"
)

const (
	dirLockName      = ".jobboard.lock"
	dirLockOwnerFile = "owner.json"
)

// ErrLocked is returned when another process holds the store directory lock.
var ErrLocked = errors.New("store directory is locked")

type DirLock struct {
	lockDir string
}

type dirLockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

// AcquireDirLock takes an exclusive, cross-process lock on dir by creating a
// lock directory inside it. A lock whose owner record is older than staleAfter
// is broken; staleAfter <= 0 never breaks a lock.
func AcquireDirLock(dir string, staleAfter time.Duration) (DirLock, error) {
	target := strings.TrimSpace(dir)
	if target == "" {
		return DirLock{}, errors.New("store directory is required")
	}
	if err := Mkdir(target); err != nil {
		return DirLock{}, err
	}

	lockDir := filepath.Join(target, dirLockName)
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if !os.IsExist(err) {
			return DirLock{}, errors.Wrapf(err, "acquire lock for %s", target)
		}
		owner, ok := readLockOwner(lockDir)
		if ok && staleAfter > 0 && lockIsStale(owner, staleAfter) {
			_ = os.Remove(filepath.Join(lockDir, dirLockOwnerFile))
			_ = os.Remove(lockDir)
			return AcquireDirLock(target, 0)
		}
		if ok {
			return DirLock{}, errors.Mark(errors.Newf(
				"store directory is locked: %s (pid=%d created_at=%s host=%s)",
				target, owner.PID, owner.CreatedAt, owner.Hostname,
			), ErrLocked)
		}
		return DirLock{}, errors.Mark(errors.Newf("store directory is locked: %s", target), ErrLocked)
	}

	owner := dirLockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	data, err := json.Marshal(owner)
	if err != nil {
		_ = os.Remove(lockDir)
		return DirLock{}, errors.Wrap(err, "encode lock owner")
	}
	if err := WriteBytes(filepath.Join(lockDir, dirLockOwnerFile), data); err != nil {
		_ = os.Remove(lockDir)
		return DirLock{}, errors.Wrapf(err, "write lock owner for %s", target)
	}

	return DirLock{lockDir: lockDir}, nil
}

func (l DirLock) Release() error {
	if strings.TrimSpace(l.lockDir) == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, dirLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "release lock %s", l.lockDir)
	}
	return nil
}

func readLockOwner(lockDir string) (dirLockOwner, bool) {
	var owner dirLockOwner
	data, err := os.ReadFile(filepath.Join(lockDir, dirLockOwnerFile))
	if err != nil {
		return owner, false
	}
	if err := json.Unmarshal(data, &owner); err != nil {
		return owner, false
	}
	return owner, owner.PID > 0 && owner.CreatedAt != ""
}

func lockIsStale(owner dirLockOwner, staleAfter time.Duration) bool {
	created, err := time.Parse(time.RFC3339, owner.CreatedAt)
	if err != nil {
		return false
	}
	return time.Since(created) > staleAfter
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
