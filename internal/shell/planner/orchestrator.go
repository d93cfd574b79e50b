// Package planner runs the init, plan, show sequence that turns a terraform
// configuration into a decoded plan.
// This is part of the Imperative Shell - it touches the filesystem and runs
// the terraform binary, deferring every decision to internal/core.
package planner

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/artpar/planprobe/internal/core/invocation"
	"github.com/artpar/planprobe/internal/core/mode"
	"github.com/artpar/planprobe/internal/core/params"
	"github.com/artpar/planprobe/internal/core/plan"
	"github.com/artpar/planprobe/internal/shell/terraform"
)

// =============================================================================
// Orchestrator - Runs one plan per Execute call
// =============================================================================

// Options configures an Orchestrator. Zero values select defaults.
type Options struct {
	Binary   string
	Logger   *slog.Logger
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Mode     mode.Mode
	Provider params.Provider
	Fs       afero.Fs
	Tool     terraform.Tool
}

// Orchestrator produces plan models. Its mode is fixed at construction.
//
// Execute is not safe for concurrent use against the same configuration
// directory; callers must serialize such runs.
type Orchestrator struct {
	mode     mode.Mode
	provider params.Provider
	fs       afero.Fs
	tool     terraform.Tool
	logger   *slog.Logger
}

// NewOrchestrator creates a new orchestrator.
// Without a Tool it drives the terraform binary named by Binary.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Mode
	if m == "" {
		m = mode.Default
	}
	provider := opts.Provider
	if provider == nil {
		provider = params.IdentityProvider{}
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	tool := opts.Tool
	if tool == nil {
		tool = terraform.NewCLI(terraform.Options{
			Binary: opts.Binary,
			Logger: logger,
			Stdin:  opts.Stdin,
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
		})
	}
	return &Orchestrator{
		mode:     m,
		provider: provider,
		fs:       fs,
		tool:     tool,
		logger:   logger,
	}
}

// Mode returns the execution mode.
func (o *Orchestrator) Mode() mode.Mode {
	return o.mode
}

// =============================================================================
// Execute
// =============================================================================

// Execute checks the mode, resolves parameters, validates them for the orchestrator's mode,
// then cleans (isolated mode only), initializes, plans, renders, deletes the
// plan file and decodes the rendered JSON.
//
// Errors are returned unmodified and stop the sequence. A failed render
// leaves the plan file in the configuration directory.
func (o *Orchestrator) Execute(ctx context.Context, overrides params.Set, capture params.CaptureFunc) (*plan.Model, error) {
	if err := o.mode.Check(); err != nil {
		return nil, err
	}
	p, err := params.Resolve(o.provider, overrides, capture)
	if err != nil {
		return nil, err
	}
	if err := mode.Validate(o.mode, p); err != nil {
		return nil, err
	}

	configDir, _ := params.String(p, params.KeyConfigurationDirectory)
	o.logger.Info("executing plan",
		"mode", o.mode.String(),
		"configuration_directory", configDir,
	)

	// 1. Clean
	if err := o.clean(configDir); err != nil {
		return nil, err
	}

	// 2. Initialize
	if err := o.tool.Init(ctx, o.initParams(p, configDir)); err != nil {
		return nil, err
	}

	// 3. Plan
	planFile := plan.FileName(p)
	if err := o.tool.Plan(ctx, o.planParams(p, configDir, planFile)); err != nil {
		return nil, err
	}
	o.logger.Debug("plan written", "plan_file", planFile)

	// 4. Render
	var rendered bytes.Buffer
	if err := o.tool.Show(ctx, o.showParams(p, configDir, planFile), &rendered); err != nil {
		return nil, err
	}

	// 5. Delete
	if err := o.removePlanFile(configDir, planFile); err != nil {
		return nil, err
	}

	model, err := plan.Decode(rendered.Bytes())
	if err != nil {
		return nil, err
	}

	o.logger.Info("plan decoded",
		"configuration_directory", configDir,
		"resource_changes", len(model.ResourceChanges()),
	)
	return model, nil
}

// =============================================================================
// Steps
// =============================================================================

// clean empties the configuration directory when the mode stages it fresh.
func (o *Orchestrator) clean(configDir string) error {
	if !o.mode.ResetsConfigurationDirectory() {
		return nil
	}
	o.logger.Debug("resetting configuration directory", "path", configDir)
	if err := o.fs.RemoveAll(configDir); err != nil {
		return err
	}
	return o.fs.MkdirAll(configDir, 0o755)
}

func (o *Orchestrator) initParams(p params.Set, configDir string) params.Set {
	step := params.Set{
		invocation.OptChdir: configDir,
		invocation.OptInput: false,
	}
	if o.mode.InitializesFromSource() {
		source, _ := params.String(p, params.KeySourceDirectory)
		step[invocation.OptFromModule] = source
	}
	return params.Merge(p, step)
}

func (o *Orchestrator) planParams(p params.Set, configDir, planFile string) params.Set {
	step := params.Set{
		invocation.OptChdir: configDir,
		invocation.OptInput: false,
		invocation.OptOut:   planFile,
	}
	if state, ok := params.String(p, params.KeyStateFile); ok {
		step[invocation.OptState] = state
	}
	return params.Merge(p, step)
}

func (o *Orchestrator) showParams(p params.Set, configDir, planFile string) params.Set {
	return params.Merge(p, params.Set{
		invocation.OptChdir:   configDir,
		invocation.OptPath:    planFile,
		invocation.OptJSON:    true,
		invocation.OptNoColor: true,
	})
}

// removePlanFile deletes the transient plan file. A file that is already
// gone is not an error.
func (o *Orchestrator) removePlanFile(configDir, planFile string) error {
	path := filepath.Join(configDir, planFile)
	if err := o.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	o.logger.Debug("removed plan file", "path", path)
	return nil
}
