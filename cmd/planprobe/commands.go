package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artpar/planprobe/internal/core/mode"
	"github.com/artpar/planprobe/internal/core/params"
	"github.com/artpar/planprobe/internal/core/plan"
	"github.com/artpar/planprobe/internal/shell/planner"
	"github.com/artpar/planprobe/internal/shell/provider"
)

// planFlags holds the flags of the plan command.
type planFlags struct {
	configPath             string
	paramsFile             string
	mode                   string
	binary                 string
	configurationDirectory string
	sourceDirectory        string
	stateFile              string
	planFileName           string
	vars                   []string
	output                 string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "planprobe",
		Short: "Render a terraform plan as structured data",
		Long: `planprobe runs terraform init, plan and show against a configuration
directory and prints the decoded plan, removing the saved plan file afterwards.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newPlanCmd(stdout, stderr))
	root.AddCommand(newVersionCmd(stdout))
	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(stdout, "planprobe %s (built %s)\n", Version, BuildTime)
			return err
		},
	}
}

func newPlanCmd(stdout, stderr io.Writer) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a configuration and print the decoded plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, &f, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Path to config file")
	flags.StringVar(&f.paramsFile, "params", "", "Parameter file supplying baseline parameters")
	flags.StringVar(&f.mode, "mode", "", "Execution mode: in_place or isolated")
	flags.StringVar(&f.binary, "binary", "", "Terraform binary name or path")
	flags.StringVar(&f.configurationDirectory, "configuration-directory", "", "Directory terraform runs in")
	flags.StringVar(&f.sourceDirectory, "source-directory", "", "Module copied into the configuration directory (isolated mode)")
	flags.StringVar(&f.stateFile, "state-file", "", "State file to plan against")
	flags.StringVar(&f.planFileName, "plan-file-name", "", "Plan file name (generated when empty)")
	flags.StringArrayVar(&f.vars, "var", nil, "Variable as name=value (repeatable)")
	flags.StringVarP(&f.output, "output", "o", "json", "Output format: json or yaml")

	return cmd
}

func runPlan(cmd *cobra.Command, f *planFlags, stdout, stderr io.Writer) error {
	cfg, err := LoadConfig(f.configPath)
	if err != nil {
		return &RunError{Op: "load config", Err: err, ExitCode: ExitConfigError}
	}
	if f.binary != "" {
		cfg.Terraform.Binary = f.binary
	}
	if f.mode != "" {
		cfg.Terraform.Mode = f.mode
	}
	if f.paramsFile != "" {
		cfg.Params.File = f.paramsFile
		cfg.Params.Provider = "file"
	}

	m, err := mode.Parse(cfg.Terraform.Mode)
	if err != nil {
		return &RunError{Op: "parse mode", Err: err, ExitCode: ExitConfigError}
	}
	captured, err := parseVars(f.vars)
	if err != nil {
		return &RunError{Op: "parse vars", Err: err, ExitCode: ExitConfigError}
	}
	if f.output != "json" && f.output != "yaml" {
		return &RunError{Op: "parse output", Err: fmt.Errorf("unsupported output format %q", f.output), ExitCode: ExitConfigError}
	}

	logger := SetupLogger(cfg, stderr)
	fs := afero.NewOsFs()

	prov, err := provider.NewProvider(cfg.Params.Provider, cfg.Params.File, fs, logger)
	if err != nil {
		return &RunError{Op: "create provider", Err: err, ExitCode: ExitConfigError}
	}
	if fp, ok := prov.(*provider.FileProvider); ok && cfg.Params.EnvPrefix != "" {
		prov = fp.WithEnvPrefix(cfg.Params.EnvPrefix)
	}

	o := planner.NewOrchestrator(planner.Options{
		Binary:   cfg.Terraform.Binary,
		Logger:   logger,
		Stdin:    cmd.InOrStdin(),
		Stdout:   stderr,
		Stderr:   stderr,
		Mode:     m,
		Provider: prov,
		Fs:       fs,
	})

	var capture params.CaptureFunc
	if len(captured) > 0 {
		capture = func(c *params.VarCaptor) {
			for name, value := range captured {
				c.Set(name, value)
			}
		}
	}

	model, err := o.Execute(cmd.Context(), overridesFromFlags(f), capture)
	if err != nil {
		return err
	}

	if err := writePlan(stdout, model, f.output); err != nil {
		return &RunError{Op: "write output", Err: err, ExitCode: ExitOutputError}
	}
	return nil
}

// overridesFromFlags returns the parameters set on the command line.
// Unset flags are left out so the provider's baseline shows through.
func overridesFromFlags(f *planFlags) params.Set {
	overrides := params.Set{}
	for key, value := range map[string]string{
		params.KeyConfigurationDirectory: f.configurationDirectory,
		params.KeySourceDirectory:        f.sourceDirectory,
		params.KeyStateFile:              f.stateFile,
		params.KeyPlanFileName:           f.planFileName,
	} {
		if value != "" {
			overrides[key] = value
		}
	}
	return overrides
}

// parseVars splits name=value pairs. The value may itself contain "=".
func parseVars(pairs []string) (params.Vars, error) {
	vars := params.Vars{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q, expected name=value", pair)
		}
		vars[name] = value
	}
	return vars, nil
}

// writePlan prints the decoded plan document.
func writePlan(w io.Writer, model *plan.Model, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlValue(model.Content())); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(model.Content())
}

// yamlValue replaces json.Number leaves with native numbers so YAML
// prints them unquoted. Integers too large for int64 stay verbatim.
func yamlValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = yamlValue(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = yamlValue(item)
		}
		return out
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return i
		}
		if !strings.ContainsAny(value.String(), ".eE") {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: value.String()}
		}
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	default:
		return v
	}
}
