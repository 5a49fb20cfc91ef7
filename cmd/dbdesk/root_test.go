package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/dbdesk/internal/version"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

func executeCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRoot_ShowsHelp(t *testing.T) {
	out, err := executeCommand(t)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	for _, want := range []string{"run", "check-dir", "password", "config", "DBDESK_PASSWORD"} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q:\n%s", want, out)
		}
	}
}

func TestRunHelp_ShowsExamples(t *testing.T) {
	out, err := executeCommand(t, "run", "--help")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	for _, want := range []string{"Examples:", "dbdesk run ~/Documents/dbdesk/graph.db", "--no-watch"} {
		if !strings.Contains(out, want) {
			t.Fatalf("run help missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Environment:") {
		t.Fatalf("subcommand help should not repeat the environment section:\n%s", out)
	}
}

func TestRoot_RejectsArgs(t *testing.T) {
	if _, err := executeCommand(t, "stray"); err == nil {
		t.Fatal("expected error for unknown argument")
	}
}

func TestRoot_FlagsWithoutSubcommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	_, err := executeCommand(t, "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "subcommand is required") {
		t.Fatalf("expected subcommand error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "dbdesk "+version.Version) {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = executeCommand(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(out, "commit:") {
		t.Fatalf("unexpected --version output: %s", out)
	}
}

func TestAbout(t *testing.T) {
	out, err := executeCommand(t, "about")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "https://github.com/oukeidos/dbdesk") {
		t.Fatalf("unexpected output: %s", out)
	}
}
