package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/dbdesk/internal/auth"
	"github.com/oukeidos/dbdesk/internal/config"
	"github.com/oukeidos/dbdesk/internal/logger"
)

const maxStopTimeoutGUI = 10 * time.Minute

var (
	savePassword   = auth.SavePassword
	deletePassword = auth.DeletePassword
	hasPassword    = auth.HasPassword
	saveConfig     = config.Save
)

// optionsForm holds the raw text of the Options window.
type optionsForm struct {
	Command     string
	Args        string
	BrowseURL   string
	StopTimeout string
}

func formFromConfig(db config.Database) optionsForm {
	return optionsForm{
		Command:     db.Command,
		Args:        strings.Join(db.Args, "\n"),
		BrowseURL:   db.BrowseURL,
		StopTimeout: db.StopTimeout.String(),
	}
}

// applyOptions validates f and returns cfg with the edited fields replaced.
// Arguments are one per line; blank lines are dropped.
func applyOptions(cfg config.Config, f optionsForm) (config.Config, error) {
	command := strings.TrimSpace(f.Command)
	if command == "" {
		return cfg, fmt.Errorf("database command is required")
	}

	var args []string
	for _, line := range strings.Split(f.Args, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			args = append(args, line)
		}
	}

	browse := strings.TrimSpace(f.BrowseURL)
	if browse != "" {
		u, err := url.Parse(browse)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return cfg, fmt.Errorf("browse URL must be an http or https address")
		}
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(f.StopTimeout))
	if err != nil || timeout <= 0 {
		return cfg, fmt.Errorf("stop timeout must be a positive duration such as 30s")
	}
	if timeout > maxStopTimeoutGUI {
		logger.Warn("Stop timeout clamped", "requested", timeout, "effective", maxStopTimeoutGUI)
		timeout = maxStopTimeoutGUI
	}

	cfg.Database.Command = command
	cfg.Database.Args = args
	cfg.Database.BrowseURL = browse
	cfg.Database.StopTimeout = timeout
	return cfg, nil
}

func (a *dbdeskApp) showOptionsWindow() {
	if a.optionsWin != nil {
		a.optionsWin.RequestFocus()
		return
	}

	w := a.app.NewWindow("Options")
	a.optionsWin = w
	w.SetOnClosed(func() {
		a.optionsWin = nil
	})

	form := formFromConfig(a.settings.Database())
	commandEntry := widget.NewEntry()
	commandEntry.SetText(form.Command)
	argsEntry := widget.NewMultiLineEntry()
	argsEntry.SetText(form.Args)
	argsEntry.SetMinRowsVisible(3)
	browseEntry := widget.NewEntry()
	browseEntry.SetText(form.BrowseURL)
	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(form.StopTimeout)

	passwordEntry := widget.NewPasswordEntry()
	passwordEntry.SetPlaceHolder("Enter new password")
	passwordStatus := widget.NewLabel("")
	refreshPasswordStatus := func() {
		if hasPassword() {
			passwordStatus.SetText("Stored in keychain")
		} else {
			passwordStatus.SetText("Not set")
		}
	}
	refreshPasswordStatus()

	save := widget.NewButton("Save", func() {
		cfg, err := applyOptions(a.settings.Config(), optionsForm{
			Command:     commandEntry.Text,
			Args:        argsEntry.Text,
			BrowseURL:   browseEntry.Text,
			StopTimeout: timeoutEntry.Text,
		})
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if pw := strings.TrimSpace(passwordEntry.Text); pw != "" {
			if err := savePassword(pw); err != nil {
				dialog.ShowError(fmt.Errorf("save password: %w", err), w)
				return
			}
			passwordEntry.SetText("")
			refreshPasswordStatus()
		}
		if err := saveConfig(a.cfgPath, cfg); err != nil {
			dialog.ShowError(err, w)
			return
		}
		a.settings.Update(cfg)
		logger.Info("Options saved", "path", a.cfgPath)
		dialog.ShowInformation("Saved", "Changes apply the next time the database starts.", w)
	})
	save.Importance = widget.HighImportance

	removePassword := widget.NewButton("Remove Stored Password", func() {
		dialog.ShowConfirm("Remove Password", "Delete the database password from the keychain?", func(ok bool) {
			if !ok {
				return
			}
			if err := deletePassword(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			refreshPasswordStatus()
		}, w)
	})

	w.SetContent(container.NewPadded(container.NewVBox(
		widget.NewLabelWithStyle("Database", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Command", commandEntry),
			widget.NewFormItem("Arguments", argsEntry),
			widget.NewFormItem("Browse URL", browseEntry),
			widget.NewFormItem("Stop timeout", timeoutEntry),
		),
		widget.NewLabelWithStyle("Password", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Password", container.NewVBox(passwordEntry, passwordStatus)),
		),
		container.NewHBox(removePassword, save),
	)))
	w.Resize(fyne.NewSize(520, 420))
	w.Show()
}
