package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/oukeidos/dbdesk/internal/logger"
)

func withPanicGuard(scope string, onPanic func(any), fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic", "scope", scope, "panic", fmt.Sprint(r))
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}

// panicNotice is shown once, after the first recovered panic.
func panicNotice(scope string) string {
	return "An internal error occurred (" + scope + "). " +
		"The database was left as it was; Stop and Exit still work. " +
		"If this repeats, restart dbdesk."
}

func (a *dbdeskApp) safeGo(scope string, fn func()) {
	go withPanicGuard(scope, a.panicked(scope), fn)
}

// safeDo queues fn on the UI goroutine.
func (a *dbdeskApp) safeDo(scope string, fn func()) {
	fyne.Do(func() {
		withPanicGuard(scope, a.panicked(scope), fn)
	})
}

// safeDoAndWait runs fn on the UI goroutine and returns once it finished.
// Never call it from the UI goroutine.
func (a *dbdeskApp) safeDoAndWait(scope string, fn func()) {
	fyne.DoAndWait(func() {
		withPanicGuard(scope, a.panicked(scope), fn)
	})
}

func (a *dbdeskApp) panicked(scope string) func(any) {
	return func(any) { a.notifyPanic(scope) }
}

func (a *dbdeskApp) notifyPanic(scope string) {
	a.panicNoticeOnce.Do(func() {
		a.panicScope.Store(scope)
		if a.window == nil {
			return
		}
		a.safeDo("panic.notice", func() {
			dialog.ShowInformation("Unexpected Error", panicNotice(scope), a.window)
		})
	})
}
