package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks questions on In and writes prompts to Out. IsInteractive
// decides whether a human can answer at all.
type Confirmer struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
}

// Acknowledge shows a notice and waits for Enter on an interactive terminal.
// Without a terminal the notice is printed and the call returns at once.
func (c Confirmer) Acknowledge(title, message string) {
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s\n%s\n", title, message)
	}
	if c.IsInteractive == nil || !c.IsInteractive() || c.In == nil {
		return
	}
	if c.Out != nil {
		fmt.Fprint(c.Out, "Press Enter to continue...")
	}
	reader := bufio.NewReader(c.In)
	_, _ = reader.ReadString('\n')
}

// Confirm asks a yes/no question. force skips the question.
func (c Confirmer) Confirm(question string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if c.IsInteractive == nil || !c.IsInteractive() {
		return false, fmt.Errorf("non-interactive stdin: use -y to confirm")
	}
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s (y/n): ", question)
	}
	reader := bufio.NewReader(c.In)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y", nil
}
