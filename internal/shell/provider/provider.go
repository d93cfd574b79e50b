// Package provider implements configuration providers that supply the
// baseline parameter set for a plan run.
// This is part of the Imperative Shell - reads parameter files and the environment.
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/artpar/planprobe/internal/core/params"
)

// DefaultEnvPrefix prefixes environment variables read by FileProvider,
// e.g. PLANPROBE_CONFIGURATION_DIRECTORY.
const DefaultEnvPrefix = "PLANPROBE"

// envKeys are the parameters FileProvider reads from the environment.
var envKeys = []string{
	params.KeyConfigurationDirectory,
	params.KeySourceDirectory,
	params.KeyStateFile,
	params.KeyPlanFileName,
}

// =============================================================================
// File Provider
// =============================================================================

// FileProvider reads baseline parameters from an optional YAML, JSON or TOML
// file plus environment variables. Caller overrides win over both.
//
// Top-level keys are case-insensitive. Variable names under vars keep the
// case they have in the file.
type FileProvider struct {
	path      string
	envPrefix string
	fs        afero.Fs
	logger    *slog.Logger
}

// NewFileProvider creates a provider for the parameter file at path.
// An empty path reads only the environment. A nil fs uses the OS filesystem.
func NewFileProvider(path string, fs afero.Fs, logger *slog.Logger) *FileProvider {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProvider{
		path:      path,
		envPrefix: DefaultEnvPrefix,
		fs:        fs,
		logger:    logger,
	}
}

// WithEnvPrefix returns a copy of the provider reading a different prefix.
func (p *FileProvider) WithEnvPrefix(prefix string) *FileProvider {
	cp := *p
	cp.envPrefix = prefix
	return &cp
}

// Resolve merges the file and environment baseline with overrides.
// Variables under vars are merged entry by entry, overrides winning.
func (p *FileProvider) Resolve(overrides params.Set) (params.Set, error) {
	v := viper.New()
	v.SetFs(p.fs)

	fileRead := false
	if p.path != "" {
		v.SetConfigFile(p.path)
		if err := v.ReadInConfig(); err != nil {
			// Only a file that exists and fails to parse is an error
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse parameter file %s: %w", p.path, err)
			}
			p.logger.Debug("parameter file not read", "path", p.path, "error", err)
		} else {
			fileRead = true
		}
	}

	v.SetEnvPrefix(p.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	baseline := params.Set(v.AllSettings())
	if fileRead {
		vars, found, err := p.readVars()
		if err != nil {
			return nil, fmt.Errorf("failed to read vars from %s: %w", p.path, err)
		}
		if found {
			baseline[params.KeyVars] = vars
		}
	}
	resolved := params.Merge(baseline, overrides)

	if params.Present(baseline, params.KeyVars) || params.Present(overrides, params.KeyVars) {
		vars := params.ToVars(baseline[params.KeyVars])
		for name, value := range params.ToVars(overrides[params.KeyVars]) {
			vars[name] = value
		}
		resolved[params.KeyVars] = vars
	}

	p.logger.Debug("resolved parameters", "path", p.path, "keys", len(resolved))
	return resolved, nil
}

// readVars decodes the vars block of the parameter file without viper so
// variable names keep their case. found is false when the format is not
// one FileProvider decodes itself, leaving viper's copy in place.
func (p *FileProvider) readVars() (vars params.Vars, found bool, err error) {
	data, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		return nil, false, err
	}

	var doc map[string]any
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(p.path), ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &doc)
	case "json":
		err = json.Unmarshal(data, &doc)
	case "toml":
		err = toml.Unmarshal(data, &doc)
	default:
		p.logger.Debug("vars read through viper", "path", p.path)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	for key, value := range doc {
		if strings.EqualFold(key, params.KeyVars) {
			return params.ToVars(value), true, nil
		}
	}
	return nil, false, nil
}
