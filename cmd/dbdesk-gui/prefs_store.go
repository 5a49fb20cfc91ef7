package main

import (
	"strings"

	"github.com/oukeidos/dbdesk/internal/logger"
)

const lastLocationKey = "LastLocation"

// stringPrefs is the part of fyne.Preferences used for the last location.
type stringPrefs interface {
	StringWithFallback(key, fallback string) string
	SetString(key, value string)
}

// prefsLocationStore keeps the last used folder in the app preferences.
type prefsLocationStore struct {
	prefs stringPrefs
}

func newPrefsLocationStore(p stringPrefs) *prefsLocationStore {
	return &prefsLocationStore{prefs: p}
}

func (s *prefsLocationStore) LoadLastLocation(fallback string) string {
	v := strings.TrimSpace(s.prefs.StringWithFallback(lastLocationKey, fallback))
	if v == "" {
		return fallback
	}
	return v
}

func (s *prefsLocationStore) SaveLastLocation(path string) error {
	s.prefs.SetString(lastLocationKey, path)
	logger.Debug("Saved last location", "path", path)
	return nil
}
