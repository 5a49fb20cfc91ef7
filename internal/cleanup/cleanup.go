// Package cleanup collects release hooks for resources that outlive a single
// call: log writers, the config watcher and auxiliary windows. The shell runs
// them once on exit.
package cleanup

import (
	"errors"
	"fmt"
	"sync"

	"github.com/oukeidos/dbdesk/internal/logger"
)

type hook struct {
	name string
	fn   func() error
}

var (
	mu    sync.Mutex
	hooks []hook
)

// Register adds a named release hook. Hooks run in reverse registration order.
func Register(name string, fn func() error) {
	if fn == nil {
		return
	}
	mu.Lock()
	hooks = append(hooks, hook{name: name, fn: fn})
	mu.Unlock()
}

// Pending returns the number of hooks not yet run.
func Pending() int {
	mu.Lock()
	defer mu.Unlock()
	return len(hooks)
}

// RunAll runs and forgets every registered hook. A failing hook does not stop
// the others; all failures are joined into the returned error.
func RunAll() error {
	mu.Lock()
	local := hooks
	hooks = nil
	mu.Unlock()

	var errs []error
	for i := len(local) - 1; i >= 0; i-- {
		h := local[i]
		if err := h.fn(); err != nil {
			logger.Warn("Release failed", "resource", h.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		logger.Debug("Released", "resource", h.name)
	}
	return errors.Join(errs...)
}
