package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oukeidos/dbdesk/internal/dbprocess"
	"github.com/oukeidos/dbdesk/internal/directory"
	"github.com/oukeidos/dbdesk/internal/eventloop"
	"github.com/oukeidos/dbdesk/internal/lifecycle"
	"github.com/oukeidos/dbdesk/internal/logger"
	"github.com/oukeidos/dbdesk/internal/observer"
	"github.com/oukeidos/dbdesk/internal/shell"
	"github.com/oukeidos/dbdesk/internal/status"
	"github.com/spf13/cobra"
)

const processCheckInterval = time.Second

type runOptions struct {
	noWatch bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run [folder]",
		Short: "Start the database and stop it on Ctrl+C",
		Long: "Start the database in the given folder, or in the last used folder.\n" +
			"The database keeps running until Ctrl+C or SIGTERM, then it is stopped cleanly.",
		Example: "  dbdesk run\n" +
			"  dbdesk run ~/Documents/dbdesk/graph.db --no-watch",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatabase(cmd, g, &opts, args)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Do not reload config.toml when it changes")
	return cmd
}

func runDatabase(cmd *cobra.Command, g *globalOptions, opts *runOptions, args []string) error {
	out := cmd.OutOrStdout()

	model, err := openDirectory(cmd, g, args)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext()
	defer stop()

	settings := shell.NewSettings(g.cfg)
	if !opts.noWatch {
		if err := settings.Watch(ctx, g.resolvedConfigPath()); err != nil {
			logger.Warn("Config reload disabled", "error", err)
		}
	}

	loop := eventloop.New()
	runner := shell.NewRunner(settings, model)
	printer := lifecycle.ObserverFunc(func(s status.Status) {
		fmt.Fprintf(out, "Database %s (%s)\n", s, model.Current())
	})
	rec := &observer.Recorder{}
	ctrl := lifecycle.New(runner, loop, nil, printer, rec)
	sh := &shell.Shell{Controller: ctrl, Exit: func(int) { loop.Close() }}

	var startErr error
	loop.Post(func() {
		if err := ctrl.RequestStart(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				startErr = err
			}
			sh.Shutdown(context.Background())
			return
		}
		fmt.Fprintf(out, "Logs: %s\n", dbprocess.LogPath(settings.Database()))
		if url := settings.Database().BrowseURL; url != "" {
			fmt.Fprintf(out, "Browse: %s\n", url)
		}
		go watchProcess(ctx, ctrl, runner, stop)
	})
	context.AfterFunc(ctx, func() {
		loop.Post(func() {
			_ = ctrl.RequestStop(context.Background())
			// Queued behind the stop continuation.
			loop.Post(func() { sh.Shutdown(context.Background()) })
		})
	})

	loop.Run(context.Background())
	logger.Debug("Rendered statuses", "history", rec.Seen())
	return startErr
}

// openDirectory resolves the database folder from args or from the last
// used folder, falling back to the default folder after one notice.
func openDirectory(cmd *cobra.Command, g *globalOptions, args []string) (*directory.Model, error) {
	store := g.store()
	model := directory.NewModel(g.fallbackDirectory(), g.validator(), store)
	if len(args) == 1 {
		if _, err := model.Set(args[0]); err != nil {
			return nil, err
		}
		return model, nil
	}
	if err := directory.Recover(model, store, stdinConfirmer(cmd, cmd.ErrOrStderr())); err != nil {
		logger.Warn("Last used folder rejected, using default", "error", err)
	}
	return model, nil
}

// watchProcess requests a stop when the database exits on its own.
func watchProcess(ctx context.Context, ctrl *lifecycle.Controller, runner *dbprocess.Runner, stop func()) {
	ticker := time.NewTicker(processCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctrl.Current() == status.Started && !runner.Running() {
				logger.Warn("Database process exited unexpectedly")
				stop()
				return
			}
		}
	}
}
