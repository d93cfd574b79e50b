package terraform

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrBinaryNotFound = errors.New("terraform binary not found")
	ErrCommandFailed  = errors.New("terraform command failed")
)

// CommandError describes a terraform invocation that did not succeed.
type CommandError struct {
	Command  string   // init, plan or show
	Args     []string // full argument list passed to the binary
	ExitCode int      // -1 when the process never ran
	Stderr   string   // captured standard error, trimmed
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("terraform %s", e.Command)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" exited with code %d", e.ExitCode)
	}
	msg += ": " + e.Err.Error()
	if e.Stderr != "" {
		msg += ": " + lastLine(e.Stderr)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, args []string, exitCode int, stderr string, err error) *CommandError {
	return &CommandError{
		Command:  command,
		Args:     args,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Err:      err,
	}
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
