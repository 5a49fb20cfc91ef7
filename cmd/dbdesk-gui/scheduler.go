package main

import (
	"fyne.io/fyne/v2"

	"github.com/oukeidos/dbdesk/internal/lifecycle"
	"github.com/oukeidos/dbdesk/internal/status"
)

// fyneScheduler dequeues a continuation on the UI goroutine, after the
// renders of the round that queued it, then runs it on a worker so a slow
// stop does not freeze the window.
type fyneScheduler struct {
	app *dbdeskApp
}

func (s fyneScheduler) Defer(fn func()) {
	fyne.Do(func() {
		s.app.safeGo("lifecycle.deferred", fn)
	})
}

// onUI wraps observers so that every render happens on the UI goroutine and
// is finished before the controller's notification call returns.
func onUI(a *dbdeskApp, observers []lifecycle.Observer) []lifecycle.Observer {
	wrapped := make([]lifecycle.Observer, len(observers))
	for i, o := range observers {
		wrapped[i] = lifecycle.ObserverFunc(func(s status.Status) {
			a.render("observer.render", func() { o.StatusChanged(s) })
		})
	}
	return wrapped
}

// render waits for fn on the UI goroutine while the app loop runs. The
// controller is only driven from workers, so the wait cannot block the loop
// on itself. Before the loop starts and after it stops, fn runs inline.
func (a *dbdeskApp) render(scope string, fn func()) {
	if a.uiLive.Load() {
		a.safeDoAndWait(scope, fn)
		return
	}
	withPanicGuard(scope, a.panicked(scope), fn)
}
