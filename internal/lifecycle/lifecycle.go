// Package lifecycle holds the state machine that owns the database status.
//
// The Controller is the only writer of the status. Every committed transition
// is fanned out synchronously to a fixed set of observers before the request
// returns. The only deferred work is the completion of a stop, which is
// queued on the interaction thread through a Scheduler so that STOPPING is
// rendered before the stop action runs.
package lifecycle

import (
	"context"
	"errors"
	"sync"

	"github.com/oukeidos/dbdesk/internal/apperrors"
	"github.com/oukeidos/dbdesk/internal/logger"
	"github.com/oukeidos/dbdesk/internal/status"
)

// ErrTransitionRejected is returned when a request does not match the
// current status. Callers treat it as a no-op.
var ErrTransitionRejected = errors.New("transition not permitted in current status")

// ErrShuttingDown is returned by a start that finished after Shutdown began.
var ErrShuttingDown = errors.New("controller is shutting down")

// Actions is the external database action provider.
type Actions interface {
	Start(ctx context.Context) error
	// Stop is best-effort and always ends with the database stopped.
	Stop(ctx context.Context)
}

// Observer renders one presentation surface from a status.
type Observer interface {
	StatusChanged(s status.Status)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s status.Status)

func (f ObserverFunc) StatusChanged(s status.Status) { f(s) }

// Scheduler queues fn to run later on the interaction thread.
type Scheduler interface {
	Defer(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Defer(fn func()) { f(fn) }

// Reporter surfaces errors to the user.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// Controller owns the database status and is the only component that
// changes it. At most one start runs at a time, and once Shutdown begins no
// further requests are accepted.
type Controller struct {
	actions   Actions
	scheduler Scheduler
	reporter  Reporter
	observers []Observer

	mu        sync.Mutex
	current   status.Status
	notifier  bool
	startDone chan struct{}
	halted    bool
}

// New creates a controller in STOPPED and renders that status on every
// observer before returning.
func New(actions Actions, scheduler Scheduler, reporter Reporter, observers ...Observer) *Controller {
	c := &Controller{
		actions:   actions,
		scheduler: scheduler,
		reporter:  reporter,
		observers: append([]Observer(nil), observers...),
		current:   status.Stopped,
	}
	c.notify(status.Stopped)
	return c
}

// Current returns the authoritative status.
func (c *Controller) Current() status.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Starting reports whether a start action is in flight.
func (c *Controller) Starting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startDone != nil
}

// RequestStart runs the start action when the database is stopped.
// A failed start leaves the status at STOPPED and is reported. A start that
// completes after Shutdown began is stopped again and never committed.
func (c *Controller) RequestStart(ctx context.Context) error {
	c.mu.Lock()
	if c.notifier || c.halted || c.startDone != nil || c.current != status.Stopped {
		c.mu.Unlock()
		logger.Debug("Start request ignored", "status", c.Current())
		return ErrTransitionRejected
	}
	done := make(chan struct{})
	c.startDone = done
	c.mu.Unlock()

	logger.Info("Starting database")
	err := c.actions.Start(ctx)

	c.mu.Lock()
	c.startDone = nil
	halted := c.halted
	committed := err == nil && !halted
	if committed {
		c.current = status.Started
	}
	c.mu.Unlock()

	switch {
	case err != nil:
		close(done)
		err = apperrors.StartFailure(err)
		logger.Error("Database start failed", "error", err)
		if c.reporter != nil && !halted {
			c.reporter.Report(err)
		}
		return err
	case halted:
		logger.Info("Shutdown requested during start, stopping database")
		c.actions.Stop(context.WithoutCancel(ctx))
		close(done)
		return ErrShuttingDown
	}
	close(done)
	logger.Info("Database status changed", "from", status.Stopped, "to", status.Started)
	c.notify(status.Started)
	return nil
}

// RequestStop moves to STOPPING immediately and queues the stop action.
func (c *Controller) RequestStop(ctx context.Context) error {
	if !c.permitted(status.Started) {
		logger.Debug("Stop request ignored", "status", c.Current())
		return ErrTransitionRejected
	}
	c.commit(status.Stopping)

	stopCtx := context.WithoutCancel(ctx)
	c.scheduler.Defer(func() {
		// Shutdown may have completed the stop already.
		if c.Current() != status.Stopping {
			return
		}
		c.actions.Stop(stopCtx)
		c.advance(status.Stopping, status.Stopped)
	})
	return nil
}

// Shutdown stops the database synchronously unless it is already stopped.
// A start in flight is waited for first. Later requests are rejected.
func (c *Controller) Shutdown(ctx context.Context) {
	c.mu.Lock()
	c.halted = true
	pending := c.startDone
	c.mu.Unlock()
	if pending != nil {
		logger.Debug("Shutdown waiting for start to finish")
		<-pending
	}

	switch c.Current() {
	case status.Stopped:
		return
	case status.Started:
		c.advance(status.Started, status.Stopping)
	}
	c.actions.Stop(context.WithoutCancel(ctx))
	c.advance(status.Stopping, status.Stopped)
}

// permitted reports whether a request is allowed from the given status.
// Requests issued from inside a notification round are refused.
func (c *Controller) permitted(from status.Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.notifier && !c.halted && c.startDone == nil && c.current == from
}

// advance commits to only if the status is still from. Completion paths
// that may race use it so the second one is silent.
func (c *Controller) advance(from, to status.Status) {
	c.mu.Lock()
	if c.current != from {
		c.mu.Unlock()
		return
	}
	c.current = to
	c.mu.Unlock()

	logger.Info("Database status changed", "from", from, "to", to)
	c.notify(to)
}

func (c *Controller) commit(to status.Status) {
	c.mu.Lock()
	from := c.current
	if !status.CanTransition(from, to) {
		c.mu.Unlock()
		logger.Warn("Invalid status transition dropped", "from", from, "to", to)
		return
	}
	c.current = to
	c.mu.Unlock()

	logger.Info("Database status changed", "from", from, "to", to)
	c.notify(to)
}

func (c *Controller) notify(s status.Status) {
	c.mu.Lock()
	c.notifier = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.notifier = false
		c.mu.Unlock()
	}()

	for _, o := range c.observers {
		o.StatusChanged(s)
	}
}
