// Package shell composes the lifecycle core with its host: live settings,
// the directory rules, the process runner and the ordered shutdown.
package shell

import (
	"context"
	"sync"

	"github.com/oukeidos/dbdesk/internal/cleanup"
	"github.com/oukeidos/dbdesk/internal/logger"
)

// Stopper is the part of the lifecycle controller the shell needs.
type Stopper interface {
	Shutdown(ctx context.Context)
}

// Shell owns application exit.
type Shell struct {
	Controller Stopper
	// Exit terminates the process, normally os.Exit or app.Quit.
	Exit func(code int)
	// Cleanup releases auxiliary resources. Defaults to cleanup.RunAll.
	Cleanup func() error

	once sync.Once
}

// Shutdown stops the database if needed, releases auxiliary windows and
// watchers, then exits with code 0. Only the first call has any effect.
func (s *Shell) Shutdown(ctx context.Context) {
	s.once.Do(func() {
		logger.Info("Shutting down")
		if s.Controller != nil {
			s.Controller.Shutdown(ctx)
		}
		release := s.Cleanup
		if release == nil {
			release = cleanup.RunAll
		}
		if err := release(); err != nil {
			logger.Warn("Cleanup failed", "error", err)
		}
		if s.Exit != nil {
			s.Exit(0)
		}
	})
}
