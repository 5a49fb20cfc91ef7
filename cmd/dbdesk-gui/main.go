package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"

	"github.com/oukeidos/dbdesk/internal/cleanup"
	"github.com/oukeidos/dbdesk/internal/config"
	"github.com/oukeidos/dbdesk/internal/logger"
)

func main() {
	// Initialize logger for debug/error tracing
	logger.Init(logger.LevelInfo, nil)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered GUI panic", "scope", "main", "panic", fmt.Sprint(r))
			os.Exit(1)
		}
	}()

	cfgPath := config.DefaultPath()
	cfg, cfgErr := config.Load(cfgPath)
	initLogging(cfg.Log)
	if cfgErr != nil {
		logger.Warn("Using default configuration", "path", cfgPath, "error", cfgErr)
	}

	myApp := app.NewWithID("com.dbdesk.app")
	myApp.SetIcon(theme.StorageIcon())

	w := myApp.NewWindow("dbdesk")
	w.SetIcon(theme.StorageIcon())
	w.SetMaster()
	w.Resize(fyne.NewSize(560, 360))
	w.CenterOnScreen()

	da := newDbdeskApp(myApp, w, cfg, cfgPath)
	da.installCloseBehaviour()

	w.ShowAndRun()

	// The app can also end through the OS quit action.
	da.ctrl.Shutdown(context.Background())
	if err := cleanup.RunAll(); err != nil {
		logger.Warn("Cleanup failed", "error", err)
	}
}

func initLogging(l config.Log) {
	var logFileW io.Writer
	if l.File != "" {
		sink := logger.NewFileSink(l.File, 0, 0)
		cleanup.Register("log file", sink.Close)
		logFileW = sink
	}
	logger.Init(logger.ParseLevel(l.Level), logFileW)
}
