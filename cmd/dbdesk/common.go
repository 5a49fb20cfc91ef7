package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oukeidos/dbdesk/internal/auth"
	"github.com/oukeidos/dbdesk/internal/cleanup"
	"github.com/oukeidos/dbdesk/internal/config"
	"github.com/oukeidos/dbdesk/internal/directory"
	"github.com/oukeidos/dbdesk/internal/files"
	"github.com/oukeidos/dbdesk/internal/logger"
	"github.com/oukeidos/dbdesk/internal/prefs"
	"github.com/oukeidos/dbdesk/internal/prompt"
	"github.com/oukeidos/dbdesk/internal/shell"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	isTerminal     = term.IsTerminal
	hasPassword    = auth.HasPassword
	savePassword   = auth.SavePassword
	deletePassword = auth.DeletePassword
	promptPassword = auth.PromptForPassword
	notifyContext  = signalContext
)

type globalOptions struct {
	configPath  string
	prefsPath   string
	logFilePath string
	debug       bool

	cfg config.Config
}

// initLogging loads the configuration and sets up the logger from it.
// Flags override the [log] table.
func initLogging(opts *globalOptions) error {
	cfg, cfgErr := config.Load(opts.configPath)
	opts.cfg = cfg

	level := logger.ParseLevel(cfg.Log.Level)
	if opts.debug {
		level = logger.LevelDebug
	}
	logPath := opts.logFilePath
	if logPath == "" {
		logPath = cfg.Log.File
	}
	var logFileW io.Writer
	if logPath != "" {
		if err := files.RejectSymlinkPath(logPath); err != nil {
			return err
		}
		sink := logger.NewFileSink(logPath, 0, 0)
		cleanup.Register("log file", sink.Close)
		logFileW = sink
	}
	logger.Init(level, logFileW)

	if cfgErr != nil {
		logger.Warn("Using default configuration", "path", opts.resolvedConfigPath(), "error", cfgErr)
	}
	return nil
}

func (o *globalOptions) resolvedConfigPath() string {
	if strings.TrimSpace(o.configPath) != "" {
		return o.configPath
	}
	return config.DefaultPath()
}

func (o *globalOptions) store() *prefs.FileStore {
	return &prefs.FileStore{Path: o.prefsPath}
}

func (o *globalOptions) fallbackDirectory() string {
	if d := strings.TrimSpace(o.cfg.Database.DefaultDirectory); d != "" {
		return d
	}
	return directory.DefaultFallback()
}

func (o *globalOptions) validator() *directory.Validator {
	return directory.NewValidator(shell.Rules(o.cfg.Database)...)
}

// stdinConfirmer reads answers from cmd's input and treats it as interactive
// only when the process stdin is a terminal.
func stdinConfirmer(cmd *cobra.Command, out io.Writer) prompt.Confirmer {
	return prompt.Confirmer{
		In:  cmd.InOrStdin(),
		Out: out,
		IsInteractive: func() bool {
			return isTerminal(int(os.Stdin.Fd()))
		},
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Stop requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
