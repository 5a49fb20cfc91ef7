package directory

import (
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/oukeidos/dbdesk/internal/apperrors"
	"github.com/oukeidos/dbdesk/internal/logger"
)

// LocationStore persists the last accepted database directory.
type LocationStore interface {
	LoadLastLocation(fallback string) string
	SaveLastLocation(path string) error
}

// Prompter shows a blocking message the user must acknowledge.
type Prompter interface {
	Acknowledge(title, message string)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(title, message string)

func (f PrompterFunc) Acknowledge(title, message string) { f(title, message) }

// Model holds the current database directory. The current value is never
// empty and only ever holds the fallback or a validated path.
type Model struct {
	mu        sync.Mutex
	current   string
	fallback  string
	validator *Validator
	store     LocationStore
	onChange  []func(string)
}

// NewModel starts at fallback, or DefaultFallback when fallback is blank.
func NewModel(fallback string, v *Validator, store LocationStore) *Model {
	resolved, err := Resolve(fallback)
	if err != nil {
		resolved = DefaultFallback()
	}
	if v == nil {
		v = NewValidator()
	}
	return &Model{
		current:   resolved,
		fallback:  resolved,
		validator: v,
		store:     store,
	}
}

// DefaultFallback is used when no fallback is configured.
func DefaultFallback() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "dbdesk", "default.db")
	}
	return filepath.Join(home, "Documents", "dbdesk", "default.db")
}

// OnChange registers fn to run after the current directory changes.
func (m *Model) OnChange(fn func(string)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

func (m *Model) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Model) Fallback() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fallback
}

// Set validates path and makes it current. On failure the previous value is
// kept and the unsuitable-directory error returned.
func (m *Model) Set(path string) (string, error) {
	accepted, err := m.validator.Validate(path)
	if err != nil {
		logger.Warn("Rejected database directory", "path", path, "error", err)
		return "", err
	}
	m.replace(accepted)
	if m.store != nil {
		if err := m.store.SaveLastLocation(accepted); err != nil {
			logger.Warn("Failed to persist last database directory", "path", accepted, "error", err)
		}
	}
	return accepted, nil
}

// ResetToFallback makes the fallback current without persisting it.
func (m *Model) ResetToFallback() {
	m.replace(m.Fallback())
}

func (m *Model) replace(path string) {
	m.mu.Lock()
	changed := m.current != path
	m.current = path
	hooks := slices.Clone(m.onChange)
	m.mu.Unlock()

	if !changed {
		return
	}
	logger.Info("Database directory set", "path", path)
	for _, fn := range hooks {
		fn(path)
	}
}

// Recover loads the last used location and tries to make it current. An
// unsuitable value is reported through p once and the fallback is used.
// The unsuitable error is returned for logging; the model is always usable.
func Recover(m *Model, store LocationStore, p Prompter) error {
	last := m.Fallback()
	if store != nil {
		last = store.LoadLastLocation(m.Fallback())
	}
	if _, err := m.Set(last); err != nil {
		if p != nil {
			p.Acknowledge("Invalid folder selected", "Please choose a different folder.\n"+apperrors.PublicMessage(err))
		}
		m.ResetToFallback()
		return err
	}
	return nil
}
