// Package directory validates candidate database directories and owns the
// current directory value.
package directory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/oukeidos/dbdesk/internal/apperrors"
	"github.com/oukeidos/dbdesk/internal/files"
)

// Rule checks one suitability condition. The returned error text is shown
// to the user as the reason.
type Rule func(path string) error

// Validator runs rules in order and stops at the first failure.
type Validator struct {
	rules []Rule
}

// NewValidator returns a validator using rules, or DefaultRules when none
// are given.
func NewValidator(rules ...Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: rules}
}

// DefaultRules are the checks applied unless the caller picks its own.
func DefaultRules() []Rule {
	return []Rule{NotBlank, IsDirOrCreatable, Writable, NotInUse}
}

// Validate returns the cleaned absolute path, or an unsuitable-directory
// error carrying the reason.
func (v *Validator) Validate(path string) (string, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return "", apperrors.UnsuitableDirectory(path, err.Error(), err)
	}
	for _, rule := range v.rules {
		if err := rule(resolved); err != nil {
			return "", apperrors.UnsuitableDirectory(resolved, err.Error(), err)
		}
	}
	return resolved, nil
}

// Resolve expands a leading "~" and returns a clean absolute path.
func Resolve(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") || strings.HasPrefix(trimmed, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, trimmed[1:])
	}
	return filepath.Abs(trimmed)
}

func NotBlank(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}
	return nil
}

// IsDirOrCreatable accepts an existing directory, or creates a missing one.
func IsDirOrCreatable(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("it is a file, not a folder")
		}
		return nil
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(path, 0o750); err != nil {
			return fmt.Errorf("folder cannot be created: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("folder cannot be accessed: %w", err)
	}
}

// Writable creates and removes a scratch file inside path.
func Writable(path string) error {
	scratch := filepath.Join(path, ".dbdesk-scratch-"+uuid.NewString())
	f, err := os.OpenFile(scratch, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("folder is not writable: %w", err)
	}
	closeErr := f.Close()
	removeErr := os.Remove(scratch)
	if closeErr != nil {
		return fmt.Errorf("folder is not writable: %w", closeErr)
	}
	if removeErr != nil {
		return fmt.Errorf("scratch file cannot be removed: %w", removeErr)
	}
	return nil
}

// NotInUse rejects a folder whose lock file names a live process.
func NotInUse(path string) error {
	pid, alive, err := LockedBy(path)
	if err != nil {
		return fmt.Errorf("lock file is unreadable: %w", err)
	}
	if alive {
		return fmt.Errorf("folder is in use by another database process (pid %d)", pid)
	}
	return nil
}

// NoSymlinks rejects paths with a symlink or reparse point in any component.
func NoSymlinks(path string) error {
	err := files.RejectSymlinkPath(path)
	var link *files.LinkError
	if errors.As(err, &link) {
		return fmt.Errorf("folder must not be reached through a link (%s)", link.Link)
	}
	return err
}
