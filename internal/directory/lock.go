package directory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LockFileName is written inside the active database directory while the
// database process runs.
const LockFileName = "dbdesk.lock"

// LockPath returns the lock file location for dir.
func LockPath(dir string) string {
	return filepath.Join(dir, LockFileName)
}

// WriteLock records pid as the owner of dir.
func WriteLock(dir string, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	return os.WriteFile(LockPath(dir), []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

// RemoveLock deletes the lock file; a missing file is not an error.
func RemoveLock(dir string) error {
	err := os.Remove(LockPath(dir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LockedBy reads the lock file of dir. A missing lock yields (0, false, nil);
// a stale lock yields its pid with alive=false.
func LockedBy(dir string) (int, bool, error) {
	data, err := os.ReadFile(LockPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	pid, err := strconv.Atoi(line)
	if err != nil {
		return 0, false, fmt.Errorf("invalid pid in %s: %w", LockPath(dir), err)
	}
	return pid, pidAlive(pid), nil
}
