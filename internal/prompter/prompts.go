// Package prompter asks the user yes/no questions on stderr.
package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/schmitthub/gitmerge/internal/iostreams"
)

// Prompter provides interactive prompting functionality.
// It uses IOStreams for testable I/O.
type Prompter struct {
	ios *iostreams.IOStreams
}

// NewPrompter creates a new Prompter with the given IOStreams.
func NewPrompter(ios *iostreams.IOStreams) *Prompter {
	return &Prompter{ios: ios}
}

// Confirm prompts the user for a yes/no confirmation.
// In non-interactive mode, returns the default without prompting.
func (p *Prompter) Confirm(message string, defaultYes bool) (bool, error) {
	if !p.ios.IsInteractive() {
		return defaultYes, nil
	}

	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.ios.ErrOut, "%s %s ", message, hint)

	response, err := bufio.NewReader(p.ios.In).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.ios.ErrOut)
			return defaultYes, nil
		}
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.TrimSpace(strings.ToLower(response)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
