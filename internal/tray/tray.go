// Package tray routes system-tray commands into the application.
package tray

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"

	"github.com/oukeidos/dbdesk/internal/logger"
)

// Command is an inbound tray menu action.
type Command int

const (
	Open Command = iota
	Exit
)

func (c Command) String() string {
	switch c {
	case Open:
		return "OPEN"
	case Exit:
		return "EXIT"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ParseCommand accepts the command names case-insensitively.
func ParseCommand(name string) (Command, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "OPEN":
		return Open, nil
	case "EXIT", "QUIT":
		return Exit, nil
	default:
		return 0, fmt.Errorf("unknown tray command %q", name)
	}
}

// WindowHost is the main window as seen by the tray. fyne.Window satisfies it.
type WindowHost interface {
	Show()
	RequestFocus()
}

// Bridge dispatches tray commands.
type Bridge struct {
	Window   WindowHost
	Shutdown func()
}

// Handle runs the action for cmd on the caller's goroutine.
func (b *Bridge) Handle(cmd Command) {
	logger.Debug("Tray command", "command", cmd)
	switch cmd {
	case Open:
		if b.Window == nil {
			return
		}
		b.Window.Show()
		b.Window.RequestFocus()
	case Exit:
		if b.Shutdown != nil {
			b.Shutdown()
		}
	}
}

// Menu builds the tray menu for b. The exit item is flagged as the quit item
// so the platform does not append its own.
func Menu(title string, b *Bridge) *fyne.Menu {
	open := fyne.NewMenuItem("Open", func() { b.Handle(Open) })
	exit := fyne.NewMenuItem("Exit", func() { b.Handle(Exit) })
	exit.IsQuit = true
	return fyne.NewMenu(title, open, fyne.NewMenuItemSeparator(), exit)
}
