// Package prefs persists small per-user values between runs of the CLI.
// Preferences are stored in <user config dir>/dbdesk/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/oukeidos/dbdesk/internal/files"
)

// Prefs holds user preferences.
type Prefs struct {
	LastLocation string `toml:"last_location"`
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "~/.config/dbdesk/prefs.toml"
	}
	return filepath.Join(dir, "dbdesk", "prefs.toml")
}

// Load reads preferences from the given path. Missing or unreadable files
// yield empty preferences.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Prefs{}, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Prefs{}, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return Prefs{}, nil
	}

	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return Prefs{}, nil
	}
	p.LastLocation = strings.TrimSpace(p.LastLocation)
	return p, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o750); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := files.AtomicWrite(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// FileStore adapts a prefs file to directory.LocationStore.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func (s *FileStore) LoadLastLocation(fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := Load(s.Path)
	if p.LastLocation == "" {
		return fallback
	}
	return p.LastLocation
}

func (s *FileStore) SaveLastLocation(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := Load(s.Path)
	p.LastLocation = path
	return Save(s.Path, p)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultPath())
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
