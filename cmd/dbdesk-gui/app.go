package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/dbdesk/internal/apperrors"
	"github.com/oukeidos/dbdesk/internal/cleanup"
	"github.com/oukeidos/dbdesk/internal/config"
	"github.com/oukeidos/dbdesk/internal/directory"
	"github.com/oukeidos/dbdesk/internal/lifecycle"
	"github.com/oukeidos/dbdesk/internal/logger"
	"github.com/oukeidos/dbdesk/internal/observer"
	"github.com/oukeidos/dbdesk/internal/shell"
	"github.com/oukeidos/dbdesk/internal/status"
	"github.com/oukeidos/dbdesk/internal/tray"
	"github.com/oukeidos/dbdesk/internal/version"
)

type dbdeskApp struct {
	app     fyne.App
	window  fyne.Window
	cfgPath string

	settings *shell.Settings
	model    *directory.Model
	ctrl     *lifecycle.Controller
	shell    *shell.Shell
	tray     *observer.TrayUpdater
	hasTray  bool

	// UI Components
	dirEntry   *widget.Entry
	browseBtn  *widget.Button
	startBtn   *widget.Button
	stopBtn    *widget.Button
	optionsBtn *widget.Button
	browseLink *widget.Hyperlink
	displays   map[status.Status]observer.Display
	statusCard *fyne.Container

	// Runtime data
	uiLive          atomic.Bool
	consoleWin      fyne.Window
	optionsWin      fyne.Window
	panicNoticeOnce sync.Once
	panicScope      atomic.Value
}

func newDbdeskApp(fyneApp fyne.App, w fyne.Window, cfg config.Config, cfgPath string) *dbdeskApp {
	a := &dbdeskApp{
		app:      fyneApp,
		window:   w,
		cfgPath:  cfgPath,
		settings: shell.NewSettings(cfg),
	}

	store := newPrefsLocationStore(fyneApp.Preferences())
	fallback := cfg.Database.DefaultDirectory
	if fallback == "" {
		fallback = directory.DefaultFallback()
	}
	a.model = directory.NewModel(fallback, directory.NewValidator(shell.Rules(cfg.Database)...), store)

	a.setupUI()

	observers := []lifecycle.Observer{
		&observer.Enablement{Start: a.startBtn, Stop: a.stopBtn, Browse: a.browseBtn},
		observer.NewPanelSelector(a.displays, a.statusCard.Refresh),
		lifecycle.ObserverFunc(a.updateBrowseLink),
	}
	if desk, ok := fyneApp.(desktop.App); ok {
		a.hasTray = true
		a.tray = &observer.TrayUpdater{
			Surface:   trayHost{desk: desk},
			Icons:     trayIcons(),
			Directory: a.model.Current,
			AppName:   "dbdesk",
		}
		observers = append(observers, a.tray)
	}

	a.ctrl = lifecycle.New(
		shell.NewRunner(a.settings, a.model),
		fyneScheduler{app: a},
		lifecycle.ReporterFunc(a.reportError),
		onUI(a, observers)...,
	)
	a.shell = &shell.Shell{
		Controller: a.ctrl,
		Exit:       func(int) { fyne.Do(a.app.Quit) },
	}
	lc := fyneApp.Lifecycle()
	lc.SetOnStarted(func() { a.uiLive.Store(true) })
	lc.SetOnStopped(func() { a.uiLive.Store(false) })
	if a.hasTray {
		desk := fyneApp.(desktop.App)
		desk.SetSystemTrayMenu(tray.Menu("dbdesk", &tray.Bridge{
			Window:   w,
			Shutdown: a.shutdown,
		}))
	}

	a.model.OnChange(func(path string) {
		a.safeDo("directory.changed", func() {
			a.dirEntry.SetText(path)
			if a.tray != nil {
				a.tray.Surface.SetTooltip(a.tray.Tooltip(a.ctrl.Current()))
			}
		})
	})
	if err := directory.Recover(a.model, store, directory.PrompterFunc(a.acknowledge)); err != nil {
		logger.Warn("Last used folder rejected, using default", "error", err)
	}
	a.dirEntry.SetText(a.model.Current())

	if err := a.settings.Watch(context.Background(), cfgPath); err != nil {
		logger.Warn("Config reload disabled", "error", err)
	}
	cleanup.Register("auxiliary windows", a.closeAuxWindows)
	return a
}

func (a *dbdeskApp) setupUI() {
	logo := canvas.NewImageFromResource(theme.StorageIcon())
	logo.FillMode = canvas.ImageFillContain
	logo.SetMinSize(fyne.NewSize(48, 48))
	title := widget.NewLabelWithStyle("dbdesk", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	header := container.NewHBox(logo, container.NewVBox(title, widget.NewLabel(version.Label())))

	a.dirEntry = widget.NewEntry()
	a.dirEntry.Disable()
	a.browseBtn = widget.NewButtonWithIcon("Choose…", theme.FolderOpenIcon(), a.showFolderPicker)
	dirRow := container.NewBorder(nil, nil, widget.NewLabel("Database folder:"), a.browseBtn, a.dirEntry)

	// Pre-build all views once
	a.browseLink = widget.NewHyperlink("", nil)
	stopping := widget.NewProgressBarInfinite()
	views := map[status.Status]fyne.CanvasObject{
		status.Stopped: container.NewVBox(
			widget.NewLabelWithStyle("Database is stopped", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("Choose a folder and press Start.", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		),
		status.Started: container.NewVBox(
			widget.NewLabelWithStyle("Database is running", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
			container.NewCenter(a.browseLink),
		),
		status.Stopping: container.NewVBox(
			widget.NewLabelWithStyle("Database is stopping…", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
			stopping,
		),
	}
	a.statusCard = container.NewStack()
	a.displays = make(map[status.Status]observer.Display, len(views))
	for _, s := range status.All() {
		a.statusCard.Add(views[s])
		a.displays[s] = views[s]
	}
	panel := newAltClickArea(widget.NewCard("Status", "", a.statusCard), a.showConsole)

	a.optionsBtn = widget.NewButtonWithIcon("Options…", theme.SettingsIcon(), a.showOptionsWindow)
	a.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), a.stopDatabase)
	a.startBtn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), a.startDatabase)
	a.startBtn.Importance = widget.HighImportance
	actions := container.NewHBox(a.optionsBtn, layout.NewSpacer(), a.stopBtn, a.startBtn)

	a.window.SetContent(container.NewPadded(container.NewVBox(
		header,
		dirRow,
		panel,
		actions,
	)))
}

// installCloseBehaviour hides the window to the tray when there is one.
func (a *dbdeskApp) installCloseBehaviour() {
	a.window.SetCloseIntercept(func() {
		if a.hasTray {
			a.window.Hide()
			return
		}
		a.shutdown()
	})
}

// The controller is driven from workers only; renders wait on the UI
// goroutine, see render.
func (a *dbdeskApp) startDatabase() {
	a.safeGo("db.start", func() {
		_ = a.ctrl.RequestStart(context.Background())
	})
}

func (a *dbdeskApp) stopDatabase() {
	a.safeGo("db.stop", func() {
		_ = a.ctrl.RequestStop(context.Background())
	})
}

func (a *dbdeskApp) shutdown() {
	a.safeGo("shell.shutdown", func() {
		a.shell.Shutdown(context.Background())
	})
}

func (a *dbdeskApp) updateBrowseLink(s status.Status) {
	if s != status.Started {
		return
	}
	raw := a.settings.Database().BrowseURL
	if raw == "" || a.browseLink.SetURLFromString(raw) != nil {
		a.browseLink.Hide()
		return
	}
	a.browseLink.SetText("Open " + raw)
	a.browseLink.Show()
}

func (a *dbdeskApp) showFolderPicker() {
	if a.ctrl.Starting() || a.ctrl.Current() != status.Stopped {
		return
	}
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if uri == nil || a.ctrl.Starting() {
			return
		}
		if _, err := a.model.Set(uri.Path()); err != nil {
			dialog.ShowError(errors.New(apperrors.PublicMessage(err)), a.window)
		}
	}, a.window)
	if lister, err := storage.ListerForURI(storage.NewFileURI(a.model.Current())); err == nil {
		fd.SetLocation(lister)
	}
	fd.Resize(fyne.NewSize(720, 480))
	fd.Show()
}

func (a *dbdeskApp) reportError(err error) {
	if apperrors.Recoverable(err) {
		logger.Warn("Database action reported a recoverable error", "error", err)
		return
	}
	a.safeDo("db.report", func() {
		dialog.ShowError(errors.New(apperrors.PublicMessage(err)), a.window)
	})
}

func (a *dbdeskApp) acknowledge(title, message string) {
	a.safeDo("directory.prompt", func() {
		dialog.ShowInformation(title, message, a.window)
	})
}

func (a *dbdeskApp) closeAuxWindows() error {
	if a.consoleWin != nil {
		a.consoleWin.Close()
	}
	if a.optionsWin != nil {
		a.optionsWin.Close()
	}
	return nil
}
