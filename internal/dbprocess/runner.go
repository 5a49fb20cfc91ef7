// Package dbprocess launches and stops the local database process.
package dbprocess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oukeidos/dbdesk/internal/apperrors"
	"github.com/oukeidos/dbdesk/internal/config"
	"github.com/oukeidos/dbdesk/internal/directory"
	"github.com/oukeidos/dbdesk/internal/logger"
)

const (
	// DirPlaceholder in an argument is replaced with the database directory.
	DirPlaceholder = "{dir}"
	// DataDirEnv always carries the database directory to the child.
	DataDirEnv = "DBDESK_DATA_DIR"
	// LogFileName is the rotated output file inside the configured log dir.
	LogFileName = "database.log"

	killWait = 2 * time.Second
)

// ErrAlreadyRunning is returned by Start while a process is alive.
var ErrAlreadyRunning = errors.New("database process already running")

// Options supplies the runner with values that may change between starts.
type Options struct {
	Settings  func() config.Database
	Directory func() string
	// Password returns the stored database password, or "".
	Password func() string
}

// Runner owns at most one database process.
type Runner struct {
	opts Options

	mu      sync.Mutex
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
	out     io.WriteCloser
	dataDir string
	stopTO  time.Duration
	// stopDone is non-nil while a Stop is in progress.
	stopDone chan struct{}
}

func New(opts Options) *Runner {
	return &Runner{opts: opts}
}

// LogPath returns the database output log for the given settings.
func LogPath(db config.Database) string {
	return filepath.Join(db.LogDir, LogFileName)
}

// Running reports whether the managed process is alive.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aliveLocked()
}

func (r *Runner) aliveLocked() bool {
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Start launches the database and waits for the start grace period.
// The process must stay alive for the whole period.
func (r *Runner) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.aliveLocked() {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	db := r.opts.Settings()
	dir := r.opts.Directory()
	if strings.TrimSpace(db.Command) == "" {
		r.mu.Unlock()
		return errors.New("no database command configured")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("create database folder: %w", err)
	}

	out := logger.NewFileSink(LogPath(db), db.LogMaxSizeMB, db.LogMaxBackups)
	cmd := buildCommand(db, dir, r.password())
	cmd.Stdout = out
	cmd.Stderr = out
	configureSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		r.mu.Unlock()
		_ = out.Close()
		return fmt.Errorf("launch %s: %w", db.Command, err)
	}

	done := make(chan struct{})
	r.cmd = cmd
	r.done = done
	r.waitErr = nil
	r.out = out
	r.dataDir = dir
	r.stopTO = db.StopTimeout
	go func() {
		err := cmd.Wait()
		r.mu.Lock()
		r.waitErr = err
		r.mu.Unlock()
		close(done)
	}()
	pid := cmd.Process.Pid
	r.mu.Unlock()

	logger.Info("Database process launched", "pid", pid, "command", db.Command, "dir", dir)
	if err := directory.WriteLock(dir, pid); err != nil {
		logger.Warn("Failed to write lock file", "dir", dir, "error", err)
	}

	if err := r.enforceStartGrace(ctx, done, db.StartGrace); err != nil {
		r.Stop(context.WithoutCancel(ctx))
		return err
	}
	return nil
}

// enforceStartGrace waits until d ensuring the process stays up.
func (r *Runner) enforceStartGrace(ctx context.Context, done <-chan struct{}, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-done:
		r.mu.Lock()
		werr := r.waitErr
		r.mu.Unlock()
		if werr != nil {
			return fmt.Errorf("process exited before start duration %s: %w", d, werr)
		}
		return fmt.Errorf("process exited before start duration %s", d)
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stop terminates the process group, escalating to a kill after the stop
// timeout. Failures are logged; the runner is always left without a process.
func (r *Runner) Stop(ctx context.Context) {
	r.mu.Lock()
	if inflight := r.stopDone; inflight != nil {
		r.mu.Unlock()
		<-inflight
		return
	}
	cmd, done, out, dir, timeout := r.cmd, r.done, r.out, r.dataDir, r.stopTO
	if cmd == nil || cmd.Process == nil {
		r.mu.Unlock()
		return
	}
	stopDone := make(chan struct{})
	r.cmd, r.out, r.stopDone = nil, nil, stopDone
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.stopDone = nil
		r.mu.Unlock()
		close(stopDone)
	}()
	if timeout <= 0 {
		timeout = r.opts.Settings().StopTimeout
	}
	pid := cmd.Process.Pid

	if err := terminate(cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn("Failed to signal database process", "pid", pid, "error", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("Stop context ended, killing database process", "pid", pid)
		r.kill(cmd, done)
	case <-timer.C:
		logger.Warn("Database process did not exit in time, killing", "pid", pid, "timeout", timeout)
		r.kill(cmd, done)
	}

	if err := directory.RemoveLock(dir); err != nil {
		logger.Warn("Failed to remove lock file", "error", apperrors.StopFailure(err))
	}
	if out != nil {
		if err := out.Close(); err != nil {
			logger.Debug("Failed to close database log", "error", err)
		}
	}
	logger.Info("Database process stopped", "pid", pid)
}

func (r *Runner) kill(cmd *exec.Cmd, done <-chan struct{}) {
	if err := kill(cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Error("Failed to kill database process", "error", apperrors.StopFailure(err))
	}
	select {
	case <-done:
	case <-time.After(killWait):
		logger.Error("Database process still running after kill", "pid", cmd.Process.Pid)
	}
}

func (r *Runner) password() string {
	if r.opts.Password == nil {
		return ""
	}
	return r.opts.Password()
}

func buildCommand(db config.Database, dir, password string) *exec.Cmd {
	args := make([]string, len(db.Args))
	for i, a := range db.Args {
		args[i] = strings.ReplaceAll(a, DirPlaceholder, dir)
	}
	cmd := exec.Command(db.Command, args...)
	cmd.Dir = dir
	cmd.Env = buildEnv(os.Environ(), db, dir, password)
	return cmd
}

// buildEnv appends configured variables in key order so the result is stable.
func buildEnv(base []string, db config.Database, dir, password string) []string {
	env := append([]string(nil), base...)
	keys := make([]string, 0, len(db.Env))
	for k := range db.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+db.Env[k])
	}
	env = append(env, DataDirEnv+"="+dir)
	if password != "" && db.PasswordEnv != "" {
		env = append(env, db.PasswordEnv+"="+password)
	}
	return env
}
