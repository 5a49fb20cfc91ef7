//go:build !windows

package files

import "os"

func replaceFile(tmp, dst string) error {
	return os.Rename(tmp, dst)
}

// syncDir flushes the directory entry so a replaced file survives a crash.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

func isReparsePoint(string) (bool, error) {
	return false, nil
}
