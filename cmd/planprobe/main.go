package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/artpar/planprobe/internal/core/mode"
	"github.com/artpar/planprobe/internal/core/plan"
	"github.com/artpar/planprobe/internal/shell/terraform"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess          = 0
	ExitConfigError      = 1
	ExitMissingParameter = 2
	ExitTerraformError   = 3
	ExitOutputError      = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "planprobe: %v\n", err)
		return exitCode(err)
	}
	return ExitSuccess
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	var rErr *RunError
	if errors.As(err, &rErr) {
		return rErr.ExitCode
	}
	switch {
	case errors.Is(err, mode.ErrMissingParameters):
		return ExitMissingParameter
	case errors.Is(err, terraform.ErrCommandFailed), errors.Is(err, terraform.ErrBinaryNotFound):
		return ExitTerraformError
	case errors.Is(err, plan.ErrEmptyInput), errors.Is(err, plan.ErrInvalidJSON), errors.Is(err, plan.ErrNotAnObject):
		return ExitOutputError
	}
	return ExitConfigError
}

// =============================================================================
// Run Error
// =============================================================================

// RunError represents a failure with a specific exit code.
type RunError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *RunError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}
