package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/dbdesk/internal/dbprocess"
	"github.com/oukeidos/dbdesk/internal/logger"
	"github.com/oukeidos/dbdesk/internal/logtail"
)

// altClickArea wraps content and reports primary clicks made with Alt held.
type altClickArea struct {
	widget.BaseWidget
	content    fyne.CanvasObject
	onAltClick func()
}

func newAltClickArea(content fyne.CanvasObject, onAltClick func()) *altClickArea {
	c := &altClickArea{content: content, onAltClick: onAltClick}
	c.ExtendBaseWidget(c)
	return c
}

func (c *altClickArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.content)
}

func (c *altClickArea) MouseDown(ev *desktop.MouseEvent) {
	if isAltClick(ev) && c.onAltClick != nil {
		c.onAltClick()
	}
}

func (c *altClickArea) MouseUp(_ *desktop.MouseEvent) {}

func isAltClick(ev *desktop.MouseEvent) bool {
	return ev != nil && ev.Button == desktop.MouseButtonPrimary && ev.Modifier&fyne.KeyModifierAlt != 0
}

// showConsole opens the debug console: a live tail of the database log.
func (a *dbdeskApp) showConsole() {
	if a.consoleWin != nil {
		a.consoleWin.Show()
		a.consoleWin.RequestFocus()
		return
	}

	path := dbprocess.LogPath(a.settings.Database())
	w := a.app.NewWindow("Debug Console")
	a.consoleWin = w

	grid := widget.NewTextGrid()
	scroll := container.NewScroll(grid)
	reload := func() {
		text, err := logtail.Text(path, logtail.DefaultLines)
		if err != nil {
			text = err.Error()
		}
		grid.SetText(text)
		scroll.ScrollToBottom()
	}
	reload()

	stop, err := logtail.Follow(path, func() {
		a.safeDo("console.reload", reload)
	})
	if err != nil {
		logger.Warn("Console will not refresh", "path", path, "error", err)
	}
	w.SetOnClosed(func() {
		if stop != nil {
			_ = stop()
		}
		a.consoleWin = nil
	})

	w.SetContent(container.NewBorder(widget.NewLabel(path), nil, nil, nil, scroll))
	w.Resize(fyne.NewSize(760, 440))
	w.Show()
}
