// Package eventloop runs posted functions one at a time on a single goroutine.
// It stands in for a GUI event queue when the lifecycle core runs headless.
package eventloop

import (
	"context"
	"errors"
	"sync"

	"github.com/oukeidos/dbdesk/internal/logger"
)

// ErrClosed is returned by Call when the loop has stopped.
var ErrClosed = errors.New("event loop closed")

type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	running bool
}

func New() *Loop {
	l := &Loop{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Post queues fn and returns immediately. Posting to a closed loop drops fn.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		logger.Debug("Dropping task posted after event loop closed")
		return
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
}

// Defer satisfies lifecycle.Scheduler.
func (l *Loop) Defer(fn func()) { l.Post(fn) }

// Call posts fn and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, func() {
		defer close(done)
		fn()
	})
	l.cond.Signal()
	l.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is done or Close is called. Tasks queued
// before shutdown still run.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, l.Close)
	defer stop()

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 && l.closed {
			l.running = false
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		runGuarded(fn)
	}
}

// Close stops accepting tasks. Run returns once the queue is empty.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
}

func runGuarded(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic in event loop task", "panic", r)
		}
	}()
	fn()
}
