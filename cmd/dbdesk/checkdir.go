package main

import (
	"fmt"

	"github.com/oukeidos/dbdesk/internal/directory"
	"github.com/spf13/cobra"
)

func newCheckDirCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check-dir [folder]",
		Short:   "Check whether a folder can hold the database",
		Example: "  dbdesk check-dir ~/Documents/dbdesk/graph.db",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckDir(cmd, g, args)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runCheckDir(cmd *cobra.Command, g *globalOptions, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		path = g.store().LoadLastLocation(g.fallbackDirectory())
	}

	resolved, err := g.validator().Validate(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OK: %s\n", resolved)
	if pid, alive, err := directory.LockedBy(resolved); err == nil && pid > 0 && !alive {
		fmt.Fprintf(out, "Stale lock from pid %d (ignored)\n", pid)
	}
	return nil
}
