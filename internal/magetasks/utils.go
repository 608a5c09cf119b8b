package magetasks

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
)

// IsCommandNotFound reports whether err means the program is not installed.
// mage's sh package formats exec errors with %v, so the message is checked
// as well as the chain.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") ||
		strings.Contains(msg, "no such file or directory")
}

// Run prints a section header and runs cmd with its output on the console.
func Run(name, cmd string, args ...string) error {
	PrintH2Header(name)
	return sh.RunV(cmd, args...)
}
