package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/systray"

	"github.com/oukeidos/dbdesk/internal/status"
)

// trayHost is the fyne system tray seen as an observer.TraySurface.
type trayHost struct {
	desk desktop.App
}

func (t trayHost) SetIcon(icon fyne.Resource) {
	t.desk.SetSystemTrayIcon(icon)
}

func (t trayHost) SetTooltip(text string) {
	// The tray may not be up yet on the first render.
	withPanicGuard("tray.tooltip", nil, func() {
		systray.SetTooltip(text)
	})
}

func trayIcons() map[status.Status]fyne.Resource {
	return map[status.Status]fyne.Resource{
		status.Stopped:  theme.MediaStopIcon(),
		status.Started:  theme.MediaPlayIcon(),
		status.Stopping: theme.ViewRefreshIcon(),
	}
}
