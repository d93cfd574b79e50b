// Package planprobe produces decoded terraform plans for use in tests.
//
// A run initializes a configuration directory, saves a plan, renders it with
// terraform show -json, deletes the plan file and returns the decoded result:
//
//	probe := planprobe.New(planprobe.Options{Mode: planprobe.Isolated})
//	p, err := probe.Execute(ctx, planprobe.Parameters{
//	    "configuration_directory": t.TempDir(),
//	    "source_directory":        "../modules/bucket",
//	}, func(v *planprobe.VarCaptor) {
//	    v.Set("bucket_name", "probe-test")
//	})
//	changes := p.ResourceChangesMatching(planprobe.ResourceFilter{Type: "aws_s3_bucket"})
package planprobe

import (
	"context"

	"github.com/artpar/planprobe/internal/core/mode"
	"github.com/artpar/planprobe/internal/core/params"
	"github.com/artpar/planprobe/internal/core/plan"
	"github.com/artpar/planprobe/internal/shell/planner"
	"github.com/artpar/planprobe/internal/shell/provider"
)

type (
	Parameters             = params.Set
	Vars                   = params.Vars
	VarCaptor              = params.VarCaptor
	CaptureFunc            = params.CaptureFunc
	Provider               = params.Provider
	IdentityProvider       = params.IdentityProvider
	FileProvider           = provider.FileProvider
	Mode                   = mode.Mode
	MissingParametersError = mode.MissingParametersError
	Plan                   = plan.Model
	ResourceChange         = plan.ResourceChange
	ResourceFilter         = plan.ResourceFilter
	OutputChange           = plan.OutputChange
	Options                = planner.Options
	Orchestrator           = planner.Orchestrator
)

const (
	InPlace  = mode.InPlace
	Isolated = mode.Isolated
)

// Parameter names understood by every run.
const (
	ConfigurationDirectory = params.KeyConfigurationDirectory
	SourceDirectory        = params.KeySourceDirectory
	StateFile              = params.KeyStateFile
	PlanFileName           = params.KeyPlanFileName
	VarsKey                = params.KeyVars
)

var ErrMissingParameters = mode.ErrMissingParameters

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	return planner.NewOrchestrator(opts)
}

// NewFileProvider creates a Provider that reads baseline parameters from a
// parameter file and PLANPROBE_* environment variables.
func NewFileProvider(path string) *FileProvider {
	return provider.NewFileProvider(path, nil, nil)
}

// Execute runs a single plan with a one-off Orchestrator.
func Execute(ctx context.Context, opts Options, overrides Parameters, capture CaptureFunc) (*Plan, error) {
	return New(opts).Execute(ctx, overrides, capture)
}
