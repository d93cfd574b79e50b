// Package terraform runs the terraform binary for the init, plan and show steps.
package terraform

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/artpar/planprobe/internal/core/invocation"
	"github.com/artpar/planprobe/internal/core/params"
)

// DefaultBinary is the executable looked up on PATH when none is configured.
const DefaultBinary = "terraform"

// =============================================================================
// Tool Interface
// =============================================================================

// Tool is the external tool surface the orchestrator drives. Each operation
// receives the fully merged parameter set for its step.
type Tool interface {
	Init(ctx context.Context, p params.Set) error
	Plan(ctx context.Context, p params.Set) error
	Show(ctx context.Context, p params.Set, out io.Writer) error
}

// =============================================================================
// CLI Implementation
// =============================================================================

// Options configures a CLI.
type Options struct {
	Binary string
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// CLI implements Tool by executing the terraform binary.
type CLI struct {
	binary string
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCLI creates a CLI. Unset options fall back to DefaultBinary,
// slog.Default() and the process's standard streams.
func NewCLI(opts Options) *CLI {
	c := &CLI{
		binary: opts.Binary,
		logger: opts.Logger,
		stdin:  opts.Stdin,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}
	if c.binary == "" {
		c.binary = DefaultBinary
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.stdin == nil {
		c.stdin = os.Stdin
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	return c
}

// Binary returns the executable this CLI runs.
func (c *CLI) Binary() string {
	return c.binary
}

// Init runs terraform init.
func (c *CLI) Init(ctx context.Context, p params.Set) error {
	return c.run(ctx, "init", invocation.Init(p), c.stdout)
}

// Plan runs terraform plan. With detailed_exitcode set, exit code 2
// (changes present) counts as success.
func (c *CLI) Plan(ctx context.Context, p params.Set) error {
	var accept []int
	if invocation.Truthy(p[invocation.OptDetailedExitcode]) {
		accept = append(accept, 2)
	}
	return c.run(ctx, "plan", invocation.Plan(p), c.stdout, accept...)
}

// Show runs terraform show and writes its standard output to out.
func (c *CLI) Show(ctx context.Context, p params.Set, out io.Writer) error {
	return c.run(ctx, "show", invocation.Show(p), out)
}

// run executes one command synchronously. Exit codes listed in accept are
// treated as success in addition to zero.
func (c *CLI) run(ctx context.Context, command string, args []string, stdout io.Writer, accept ...int) error {
	c.logger.Info("running terraform",
		"command", command,
		"binary", c.binary,
		"args", args,
	)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdin = c.stdin
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(c.stderr, &stderr)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			for _, ok := range accept {
				if code == ok {
					c.logger.Debug("terraform finished", "command", command, "exit_code", code, "duration", elapsed)
					return nil
				}
			}
			c.logger.Error("terraform failed", "command", command, "exit_code", code, "duration", elapsed)
			return NewCommandError(command, args, code, stderr.String(), ErrCommandFailed)
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			c.logger.Error("terraform binary not found", "binary", c.binary, "error", err)
			return NewCommandError(command, args, -1, err.Error(), ErrBinaryNotFound)
		}
		c.logger.Error("terraform could not start", "command", command, "error", err)
		return NewCommandError(command, args, -1, err.Error(), ErrCommandFailed)
	}

	c.logger.Debug("terraform finished", "command", command, "duration", elapsed)
	return nil
}
