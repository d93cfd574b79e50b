package mode

import (
	"errors"
	"strings"

	"github.com/artpar/planprobe/internal/core/params"
)

// =============================================================================
// Error Types
// =============================================================================

// ErrMissingParameters marks a run rejected for missing required parameters.
var ErrMissingParameters = errors.New("missing required parameters")

// MissingParametersError names every required parameter that was absent.
type MissingParametersError struct {
	Names []string
}

func (e *MissingParametersError) Error() string {
	if len(e.Names) == 1 {
		return "required parameter " + e.Names[0] + " is missing"
	}
	return "required parameters " + joinNames(e.Names) + " are missing"
}

func (e *MissingParametersError) Unwrap() error {
	return ErrMissingParameters
}

// joinNames renders "a", "a and b", "a, b and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks that p holds every parameter m requires.
// A parameter is missing when its key is absent or its value is nil.
// Returns nil or a *MissingParametersError listing the names in table order.
func Validate(m Mode, p params.Set) error {
	var missing []string
	for _, name := range m.RequiredParameters() {
		if !params.Present(p, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingParametersError{Names: missing}
}
