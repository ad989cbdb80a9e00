package utils

import (
	"bytes"
	"fmt"
	"os/exec"
)

// Exec runs a command and returns its stdout. On failure the returned string
// carries stderr for diagnostics.
func Exec(command ...string) (string, error) {
	if len(command) == 0 {
		return "", fmt.Errorf("empty command")
	}

	cmd := exec.Command(command[0], command[1:]...)
	var out bytes.Buffer
	var errout bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errout

	if err := cmd.Run(); err != nil {
		return errout.String(), fmt.Errorf("%s: %w", command[0], err)
	}
	return out.String(), nil
}
