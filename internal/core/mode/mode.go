// Package mode defines how a plan run treats its configuration directory and
// which parameters it needs before anything touches disk.
// This is part of the Functional Core - all functions are pure with no I/O.
package mode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/artpar/planprobe/internal/core/params"
)

// =============================================================================
// Mode
// =============================================================================

// Mode is the execution mode of an orchestrator.
type Mode string

const (
	// InPlace plans against an existing configuration directory.
	InPlace Mode = "in_place"
	// Isolated resets the configuration directory and populates it from a
	// source module on every run.
	Isolated Mode = "isolated"
)

// Default is the mode used when none is configured.
const Default = InPlace

// behaviour is the per-mode lookup table. Every difference between the
// modes is recorded here.
type behaviour struct {
	required       []string
	resetDirectory bool
	initFromSource bool
}

var behaviours = map[Mode]behaviour{
	InPlace: {
		required: []string{params.KeyConfigurationDirectory},
	},
	Isolated: {
		required:       []string{params.KeyConfigurationDirectory, params.KeySourceDirectory},
		resetDirectory: true,
		initFromSource: true,
	},
}

// ErrUnknownMode is returned by Parse and Check for unrecognised modes.
var ErrUnknownMode = errors.New("unknown execution mode")

// Parse converts a configured name into a Mode. Hyphens are accepted in
// place of underscores and an empty string yields Default.
func Parse(s string) (Mode, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if normalized == "" {
		return Default, nil
	}
	m := Mode(normalized)
	if _, ok := behaviours[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Check returns ErrUnknownMode unless m is one of the defined modes.
func (m Mode) Check() error {
	if _, ok := behaviours[m]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMode, string(m))
	}
	return nil
}

func (m Mode) String() string {
	return string(m)
}

// RequiredParameters returns the parameter names this mode cannot run without.
func (m Mode) RequiredParameters() []string {
	required := behaviours[m].required
	out := make([]string, len(required))
	copy(out, required)
	return out
}

// ResetsConfigurationDirectory reports whether the configuration directory is
// deleted and recreated before initialization.
func (m Mode) ResetsConfigurationDirectory() bool {
	return behaviours[m].resetDirectory
}

// InitializesFromSource reports whether initialization copies the source module
// into the configuration directory.
func (m Mode) InitializesFromSource() bool {
	return behaviours[m].initFromSource
}
