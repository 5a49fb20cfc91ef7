package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the database password in the OS Keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswordStatus(cmd)
		},
	}
	cmd.SetUsageTemplate(groupUsageTemplate)

	var yes bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Save the database password to the keychain (prompt only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswordSet(cmd)
		},
	}
	set.SetUsageTemplate(subcommandUsageTemplate)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the database password from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswordClear(cmd, yes)
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	clearCmd.SetUsageTemplate(subcommandUsageTemplate)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a password is stored (default if no action given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswordStatus(cmd)
		},
	}
	statusCmd.SetUsageTemplate(subcommandUsageTemplate)

	cmd.AddCommand(set, clearCmd, statusCmd)
	return cmd
}

func runPasswordSet(cmd *cobra.Command) error {
	if !isTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("password set needs an interactive terminal")
	}
	pw, err := promptPassword("Database password: ")
	if err != nil {
		return fmt.Errorf("error reading password: %w", err)
	}
	if pw == "" {
		return fmt.Errorf("password is required")
	}
	if err := savePassword(pw); err != nil {
		return fmt.Errorf("error saving password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved database password to keychain.")
	return nil
}

func runPasswordClear(cmd *cobra.Command, yes bool) error {
	ok, err := stdinConfirmer(cmd, cmd.OutOrStdout()).Confirm("Remove the stored database password?", yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	if err := deletePassword(); err != nil {
		return fmt.Errorf("error deleting password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted database password from keychain.")
	return nil
}

func runPasswordStatus(cmd *cobra.Command) error {
	if hasPassword() {
		fmt.Fprintln(cmd.OutOrStdout(), "Database password: Found (source=Keychain)")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Database password: Not Found")
	return nil
}
