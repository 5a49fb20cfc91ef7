package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LinkError reports the first symlink or reparse point found on a path.
type LinkError struct {
	Path    string
	Link    string
	Reparse bool
}

func (e *LinkError) Error() string {
	kind := "symlink"
	if e.Reparse {
		kind = "reparse point"
	}
	return fmt.Sprintf("%s goes through a %s at %s", e.Path, kind, e.Link)
}

// RejectSymlinkPath fails when any existing component of path is a symlink
// or a reparse point. Components that do not exist yet are accepted, so a
// database folder or log file may be created later.
func RejectSymlinkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", path, err)
	}

	for _, p := range lineage(abs) {
		info, err := os.Lstat(p)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("inspect %s: %w", p, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return &LinkError{Path: abs, Link: p}
		}
		reparse, err := isReparsePoint(p)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", p, err)
		}
		if reparse {
			return &LinkError{Path: abs, Link: p, Reparse: true}
		}
	}
	return nil
}

// lineage lists abs and its ancestors, outermost first, without the root.
func lineage(abs string) []string {
	var chain []string
	for p := abs; filepath.Dir(p) != p; p = filepath.Dir(p) {
		chain = append(chain, p)
	}
	slices.Reverse(chain)
	return chain
}
