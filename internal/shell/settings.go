package shell

import (
	"context"
	"sync"

	"github.com/oukeidos/dbdesk/internal/auth"
	"github.com/oukeidos/dbdesk/internal/cleanup"
	"github.com/oukeidos/dbdesk/internal/config"
	"github.com/oukeidos/dbdesk/internal/dbprocess"
	"github.com/oukeidos/dbdesk/internal/directory"
	"github.com/oukeidos/dbdesk/internal/logger"
)

// Settings is the live configuration shared by the runner and the UI.
// Reloads take effect on the next database start.
type Settings struct {
	mu  sync.RWMutex
	cfg config.Config
}

func NewSettings(cfg config.Config) *Settings {
	return &Settings{cfg: cfg}
}

func (s *Settings) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Settings) Database() config.Database {
	return s.Config().Database
}

func (s *Settings) Update(cfg config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Watch reloads the settings whenever the file at path changes. A malformed
// file keeps the previous settings. The watcher is released by cleanup.RunAll.
func (s *Settings) Watch(ctx context.Context, path string) error {
	stop, err := config.Watch(ctx, path, func(cfg config.Config, err error) {
		if err != nil {
			logger.Warn("Ignoring invalid configuration change", "path", path, "error", err)
			return
		}
		s.Update(cfg)
		logger.Info("Configuration reloaded", "path", path)
	})
	if err != nil {
		return err
	}
	cleanup.Register("config watcher", stop)
	return nil
}

// Rules returns the directory rules for the given settings.
func Rules(db config.Database) []directory.Rule {
	if !db.RejectSymlinks {
		return directory.DefaultRules()
	}
	// Checked first so a linked folder is never created.
	return append([]directory.Rule{directory.NoSymlinks}, directory.DefaultRules()...)
}

// NewRunner wires a process runner to the live settings and the directory
// model. The password is read from the keychain on every start.
func NewRunner(s *Settings, m *directory.Model) *dbprocess.Runner {
	return dbprocess.New(dbprocess.Options{
		Settings:  s.Database,
		Directory: m.Current,
		Password: func() string {
			pw, _ := auth.GetPassword(true)
			return pw
		},
	})
}
