package planner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/planprobe/internal/core/mode"
	"github.com/artpar/planprobe/internal/core/params"
	"github.com/artpar/planprobe/internal/core/plan"
	"github.com/artpar/planprobe/internal/shell/terraform"
)

const samplePlan = `{
  "format_version": "1.2",
  "resource_changes": [
    {"address": "null_resource.this", "type": "null_resource", "name": "this",
     "change": {"actions": ["create"], "before": null, "after": {}}}
  ]
}`

var generatedPlanFile = regexp.MustCompile(`^[0-9a-f]{8}\.tfplan$`)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Recording Tool
// =============================================================================

type call struct {
	command string
	params  params.Set
	// dirEntries is the number of entries in the configuration directory when
	// the call was made, -1 if the directory did not exist.
	dirEntries int
}

type recordingTool struct {
	fs       afero.Fs
	calls    []call
	output   string
	failOn   string
	failWith error
}

func newRecordingTool(fs afero.Fs) *recordingTool {
	return &recordingTool{fs: fs, output: samplePlan}
}

func (r *recordingTool) record(command string, p params.Set) error {
	entries := -1
	if dir, ok := params.String(p, "chdir"); ok {
		if infos, err := afero.ReadDir(r.fs, dir); err == nil {
			entries = len(infos)
		}
	}
	r.calls = append(r.calls, call{command: command, params: p, dirEntries: entries})
	if r.failOn == command {
		return r.failWith
	}
	return nil
}

func (r *recordingTool) Init(_ context.Context, p params.Set) error {
	return r.record("init", p)
}

func (r *recordingTool) Plan(_ context.Context, p params.Set) error {
	if err := r.record("plan", p); err != nil {
		return err
	}
	dir, _ := params.String(p, "chdir")
	out, _ := params.String(p, "out")
	return afero.WriteFile(r.fs, filepath.Join(dir, out), []byte("binary plan"), 0o644)
}

func (r *recordingTool) Show(_ context.Context, p params.Set, w io.Writer) error {
	if err := r.record("show", p); err != nil {
		return err
	}
	_, err := io.WriteString(w, r.output)
	return err
}

func (r *recordingTool) commands() []string {
	var names []string
	for _, c := range r.calls {
		names = append(names, c.command)
	}
	return names
}

func newTestOrchestrator(m mode.Mode, fs afero.Fs, tool terraform.Tool) *Orchestrator {
	return NewOrchestrator(Options{
		Mode:   m,
		Fs:     fs,
		Tool:   tool,
		Logger: setupTestLogger(),
	})
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewOrchestrator_Defaults(t *testing.T) {
	o := NewOrchestrator(Options{})

	assert.Equal(t, mode.InPlace, o.Mode())
	assert.IsType(t, params.IdentityProvider{}, o.provider)
	assert.IsType(t, &terraform.CLI{}, o.tool)
	assert.NotNil(t, o.fs)
	assert.NotNil(t, o.logger)
}

func TestNewOrchestrator_BinaryOption(t *testing.T) {
	o := NewOrchestrator(Options{Binary: "/opt/bin/tofu"})

	cli, ok := o.tool.(*terraform.CLI)
	require.True(t, ok)
	assert.Equal(t, "/opt/bin/tofu", cli.Binary())
}

// =============================================================================
// In Place Mode Tests
// =============================================================================

func TestExecute_InPlace(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/tmp/proj", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/tmp/proj/main.tf", []byte(""), 0o644))
	tool := newRecordingTool(fs)
	o := newTestOrchestrator(mode.InPlace, fs, tool)

	model, err := o.Execute(context.Background(), params.Set{"configuration_directory": "/tmp/proj"}, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"init", "plan", "show"}, tool.commands())

	initCall := tool.calls[0]
	assert.Equal(t, "/tmp/proj", initCall.params["chdir"])
	assert.Equal(t, false, initCall.params["input"])
	assert.NotContains(t, initCall.params, "from_module")
	assert.Equal(t, 1, initCall.dirEntries, "in place mode must not clear the directory")

	planCall := tool.calls[1]
	assert.Equal(t, "/tmp/proj", planCall.params["chdir"])
	assert.Equal(t, false, planCall.params["input"])
	assert.NotContains(t, planCall.params, "state")
	planFile, _ := planCall.params["out"].(string)
	assert.Regexp(t, generatedPlanFile, planFile)

	showCall := tool.calls[2]
	assert.Equal(t, "/tmp/proj", showCall.params["chdir"])
	assert.Equal(t, planFile, showCall.params["path"])
	assert.Equal(t, true, showCall.params["json"])
	assert.Equal(t, true, showCall.params["no_color"])

	exists, err := afero.Exists(fs, filepath.Join("/tmp/proj", planFile))
	require.NoError(t, err)
	assert.False(t, exists, "plan file should be removed")

	exists, err = afero.Exists(fs, "/tmp/proj/main.tf")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "1.2", model.FormatVersion())
	require.Len(t, model.ResourceChanges(), 1)
	assert.True(t, model.ResourceChanges()[0].Is("create"))
}

func TestExecute_StateFileAndPlanFileName(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newRecordingTool(fs)
	o := newTestOrchestrator(mode.InPlace, fs, tool)

	_, err := o.Execute(context.Background(), params.Set{
		"configuration_directory": "/tmp/proj",
		"state_file":              "/tmp/state/terraform.tfstate",
		"plan_file_name":          "fixed.tfplan",
	}, nil)
	require.NoError(t, err)

	planCall := tool.calls[1]
	assert.Equal(t, "/tmp/state/terraform.tfstate", planCall.params["state"])
	assert.Equal(t, "fixed.tfplan", planCall.params["out"])
	assert.Equal(t, "fixed.tfplan", tool.calls[2].params["path"])
}

func TestExecute_GeneratedPlanFileDiffersAcrossRuns(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newRecordingTool(fs)
	o := newTestOrchestrator(mode.InPlace, fs, tool)
	overrides := params.Set{"configuration_directory": "/tmp/proj"}

	_, err := o.Execute(context.Background(), overrides, nil)
	require.NoError(t, err)
	_, err = o.Execute(context.Background(), overrides, nil)
	require.NoError(t, err)

	assert.NotEqual(t, tool.calls[1].params["out"], tool.calls[4].params["out"])
}

func TestExecute_PassesThroughExtraOptions(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newRecordingTool(fs)
	o := newTestOrchestrator(mode.InPlace, fs, tool)

	_, err := o.Execute(context.Background(), params.Set{
		"configuration_directory": "/tmp/proj",
		"parallelism":             3,
		"input":                   true,
	}, nil)
	require.NoError(t, err)

	for _, c := range tool.calls {
		assert.Equal(t, 3, c.params["parallelism"], c.command)
	}
	assert.Equal(t, false, tool.calls[0].params["input"], "step overrides win over caller options")
}

// =============================================================================
// Isolated Mode Tests
// =============================================================================

func TestExecute_Isolated_RecreatesDirectoryBeforeInit(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/tmp/proj/.terraform", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/tmp/proj/stale.tf", []byte("old"), 0o644))
	tool := newRecordingTool(fs)
	o := newTestOrchestrator(mode.Isolated, fs, tool)

	_, err := o.Execute(context.Background(), params.Set{
		"configuration_directory": "/tmp/proj",
		"source_directory":        "/src/module",
	}, nil)
	require.NoError(t, err)

	initCall := tool.calls[0]
	assert.Equal(t, 0, initCall.dirEntries, "directory must exist and be empty at init")
	assert.Equal(t, "/src/module", initCall.params["from_module"])
	assert.Equal(t, false, initCall.params["input"])

	exists, err := afero.Exists(fs, "/tmp/proj/stale.tf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExecute_Isolated_CreatesMissingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newRecordingTool(fs)
	o := newTestOrchestrator(mode.Isolated, fs, tool)

	_, err := o.Execute(context.Background(), params.Set{
		"configuration_directory": "/tmp/fresh",
		"source_directory":        "/src/module",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, tool.calls[0].dirEntries)
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestExecute_UnknownMode_NoSideEffects(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/proj/main.tf", []byte(""), 0o644))
	tool := newRecordingTool(fs)
	o := newTestOrchestrator(mode.Mode("bogus"), fs, tool)

	model, err := o.Execute(context.Background(), params.Set{"configuration_directory": "/tmp/proj"}, nil)
	assert.Nil(t, model)
	assert.ErrorIs(t, err, mode.ErrUnknownMode)

	assert.Empty(t, tool.calls)
	exists, _ := afero.Exists(fs, "/tmp/proj/main.tf")
	assert.True(t, exists)
}

func TestExecute_MissingParameters_NoSideEffects(t *testing.T) {
	tests := []struct {
		name      string
		mode      mode.Mode
		overrides params.Set
		missing   []string
	}{
		{"in place without directory", mode.InPlace, params.Set{}, []string{"configuration_directory"}},
		{"isolated without source", mode.Isolated, params.Set{"configuration_directory": "/tmp/proj"}, []string{"source_directory"}},
		{"isolated without both", mode.Isolated, params.Set{}, []string{"configuration_directory", "source_directory"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/tmp/proj/main.tf", []byte(""), 0o644))
			tool := newRecordingTool(fs)
			o := newTestOrchestrator(tt.mode, fs, tool)

			model, err := o.Execute(context.Background(), tt.overrides, nil)
			assert.Nil(t, model)

			var missingErr *mode.MissingParametersError
			require.True(t, errors.As(err, &missingErr))
			assert.Equal(t, tt.missing, missingErr.Names)

			assert.Empty(t, tool.calls)
			exists, _ := afero.Exists(fs, "/tmp/proj/main.tf")
			assert.True(t, exists)
		})
	}
}

// =============================================================================
// Variable Capture Tests
// =============================================================================

func TestExecute_CapturedVarsReachEveryStep(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newRecordingTool(fs)
	o := newTestOrchestrator(mode.InPlace, fs, tool)

	_, err := o.Execute(context.Background(), params.Set{
		"configuration_directory": "/tmp/proj",
		"vars":                    map[string]any{"region": "us-east-1", "env": "test"},
	}, func(c *params.VarCaptor) {
		c.Set("region", "eu-west-2")
	})
	require.NoError(t, err)

	expected := params.Vars{"region": "eu-west-2", "env": "test"}
	for _, c := range tool.calls {
		assert.Equal(t, expected, c.params["vars"], c.command)
	}
}

type staticProvider struct {
	baseline params.Set
}

func (s staticProvider) Resolve(overrides params.Set) (params.Set, error) {
	return params.Merge(s.baseline, overrides), nil
}

func TestExecute_UsesProviderBaseline(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newRecordingTool(fs)
	o := NewOrchestrator(Options{
		Mode:     mode.InPlace,
		Fs:       fs,
		Tool:     tool,
		Logger:   setupTestLogger(),
		Provider: staticProvider{baseline: params.Set{"configuration_directory": "/from/provider"}},
	})

	_, err := o.Execute(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "/from/provider", tool.calls[0].params["chdir"])
}

// =============================================================================
// Failure Tests
// =============================================================================

func TestExecute_StepFailureStopsSequence(t *testing.T) {
	tests := []struct {
		failOn   string
		expected []string
	}{
		{"init", []string{"init"}},
		{"plan", []string{"init", "plan"}},
		{"show", []string{"init", "plan", "show"}},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			tool := newRecordingTool(fs)
			boom := terraform.NewCommandError(tt.failOn, nil, 1, "", terraform.ErrCommandFailed)
			tool.failOn = tt.failOn
			tool.failWith = boom
			o := newTestOrchestrator(mode.InPlace, fs, tool)

			_, err := o.Execute(context.Background(), params.Set{"configuration_directory": "/tmp/proj"}, nil)

			assert.Same(t, boom, err, "errors propagate unmodified")
			assert.Equal(t, tt.expected, tool.commands())
		})
	}
}

func TestExecute_RenderFailureLeavesPlanFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newRecordingTool(fs)
	tool.failOn = "show"
	tool.failWith = errors.New("show failed")
	o := newTestOrchestrator(mode.InPlace, fs, tool)

	_, err := o.Execute(context.Background(), params.Set{
		"configuration_directory": "/tmp/proj",
		"plan_file_name":          "orphan.tfplan",
	}, nil)
	require.Error(t, err)

	exists, err := afero.Exists(fs, "/tmp/proj/orphan.tfplan")
	require.NoError(t, err)
	assert.True(t, exists, "plan file is not cleaned up when rendering fails")
}

func TestExecute_DecodeFailureAfterCleanup(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := newRecordingTool(fs)
	tool.output = "not json"
	o := newTestOrchestrator(mode.InPlace, fs, tool)

	_, err := o.Execute(context.Background(), params.Set{
		"configuration_directory": "/tmp/proj",
		"plan_file_name":          "p.tfplan",
	}, nil)

	var decodeErr *plan.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.ErrorIs(t, err, plan.ErrInvalidJSON)

	exists, _ := afero.Exists(fs, "/tmp/proj/p.tfplan")
	assert.False(t, exists)
}

func TestExecute_PlanFileAlreadyGone(t *testing.T) {
	fs := afero.NewMemMapFs()
	o := newTestOrchestrator(mode.InPlace, fs, &noFileTool{})

	model, err := o.Execute(context.Background(), params.Set{"configuration_directory": "/tmp/proj"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, model.Content())
}

// noFileTool succeeds without writing a plan file.
type noFileTool struct{}

func (noFileTool) Init(context.Context, params.Set) error { return nil }
func (noFileTool) Plan(context.Context, params.Set) error { return nil }
func (noFileTool) Show(_ context.Context, _ params.Set, w io.Writer) error {
	_, err := io.WriteString(w, "{}")
	return err
}
