package main

import (
	"fmt"
	"os"

	"github.com/oukeidos/dbdesk/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create config.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, g)
		},
	}
	cmd.SetUsageTemplate(groupUsageTemplate)

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), g.resolvedConfigPath())
		},
	}
	path.SetUsageTemplate(subcommandUsageTemplate)

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (default if no action given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, g)
		},
	}
	show.SetUsageTemplate(subcommandUsageTemplate)

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, g, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "yes", "y", false, "Overwrite an existing config file")
	initCmd.SetUsageTemplate(subcommandUsageTemplate)

	cmd.AddCommand(path, show, initCmd)
	return cmd
}

func runConfigShow(cmd *cobra.Command, g *globalOptions) error {
	data, err := config.Encode(g.cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, g *globalOptions, force bool) error {
	path := g.resolvedConfigPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; use -y to overwrite", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
