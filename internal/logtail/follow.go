package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oukeidos/dbdesk/internal/logger"
)

const followDebounce = 100 * time.Millisecond

// Follow calls onChange after the file at path is written, created, renamed
// or removed. Bursts of writes are coalesced. The parent directory is
// created if needed so a log that does not exist yet can be followed.
// The returned stop function is idempotent.
func Follow(path string, onChange func()) (func() error, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		timer := time.NewTimer(followDebounce)
		timer.Stop()
		defer timer.Stop()
		for {
			select {
			case <-quit:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != resolved || event.Op == fsnotify.Chmod {
					continue
				}
				timer.Reset(followDebounce)
			case <-timer.C:
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Log watcher error", "error", err)
			}
		}
	}()

	var once sync.Once
	var closeErr error
	return func() error {
		once.Do(func() {
			close(quit)
			closeErr = watcher.Close()
			<-done
		})
		return closeErr
	}, nil
}
