package main

import (
	"errors"
	"strings"
	"testing"
)

func withPasswordStubs(t *testing.T, stored bool) *int {
	t.Helper()
	deletes := 0
	prevHas, prevDelete := hasPassword, deletePassword
	hasPassword = func() bool { return stored }
	deletePassword = func() error { deletes++; return nil }
	t.Cleanup(func() {
		hasPassword = prevHas
		deletePassword = prevDelete
	})
	return &deletes
}

func TestPasswordStatus(t *testing.T) {
	withPasswordStubs(t, true)
	out, err := executeCommand(t, "password")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "Found (source=Keychain)") {
		t.Fatalf("unexpected output: %s", out)
	}

	withPasswordStubs(t, false)
	out, err = executeCommand(t, "password", "status")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "Not Found") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestPasswordClear_Yes(t *testing.T) {
	deletes := withPasswordStubs(t, true)
	out, err := executeCommand(t, "password", "clear", "-y")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if *deletes != 1 {
		t.Fatalf("deletes = %d, want 1", *deletes)
	}
	if !strings.Contains(out, "Deleted database password") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func withTerminal(t *testing.T, interactive bool) {
	t.Helper()
	prev := isTerminal
	isTerminal = func(int) bool { return interactive }
	t.Cleanup(func() { isTerminal = prev })
}

func TestPasswordClear_NonInteractiveNeedsYes(t *testing.T) {
	deletes := withPasswordStubs(t, true)
	withTerminal(t, false)
	_, err := executeCommand(t, "password", "clear")
	if err == nil || !strings.Contains(err.Error(), "use -y") {
		t.Fatalf("error = %v, want a hint to use -y", err)
	}
	if *deletes != 0 {
		t.Fatalf("deletes = %d, want 0", *deletes)
	}
}

func TestPasswordClear_InteractiveAnswer(t *testing.T) {
	tests := []struct {
		answer  string
		deletes int
		output  string
	}{
		{answer: "y\n", deletes: 1, output: "Deleted database password"},
		{answer: "n\n", deletes: 0, output: "Aborted."},
		{answer: "", deletes: 0, output: "Aborted."},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			deletes := withPasswordStubs(t, true)
			withTerminal(t, true)
			out, err := executeCommandWithInput(t, tt.answer, "password", "clear")
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if *deletes != tt.deletes {
				t.Fatalf("deletes = %d, want %d", *deletes, tt.deletes)
			}
			if !strings.Contains(out, tt.output) {
				t.Fatalf("output = %q, want %q", out, tt.output)
			}
		})
	}
}

func TestPasswordSet(t *testing.T) {
	prevTerm, prevPrompt, prevSave := isTerminal, promptPassword, savePassword
	t.Cleanup(func() {
		isTerminal, promptPassword, savePassword = prevTerm, prevPrompt, prevSave
	})

	isTerminal = func(int) bool { return false }
	if _, err := executeCommand(t, "password", "set"); err == nil {
		t.Fatal("expected error without a terminal")
	}

	var saved string
	isTerminal = func(int) bool { return true }
	promptPassword = func(string) (string, error) { return "s3cret", nil }
	savePassword = func(pw string) error { saved = pw; return nil }
	out, err := executeCommand(t, "password", "set")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if saved != "s3cret" || !strings.Contains(out, "Saved database password") {
		t.Fatalf("saved = %q, output = %s", saved, out)
	}

	savePassword = func(string) error { return errors.New("keychain locked") }
	if _, err := executeCommand(t, "password", "set"); err == nil || !strings.Contains(err.Error(), "keychain locked") {
		t.Fatalf("error = %v, want keychain failure", err)
	}
}
