package params

import "fmt"

// =============================================================================
// Parameter Keys
// =============================================================================

const (
	KeyConfigurationDirectory = "configuration_directory"
	KeySourceDirectory        = "source_directory"
	KeyStateFile              = "state_file"
	KeyPlanFileName           = "plan_file_name"
	KeyVars                   = "vars"
)

// =============================================================================
// Types
// =============================================================================

// Set maps a symbolic parameter name to its value. Values are strings,
// booleans, numbers, lists or nested maps (vars).
type Set map[string]any

// Vars maps a variable name to its value.
type Vars map[string]any

// =============================================================================
// Set Functions
// =============================================================================

// Merge returns a new Set holding base with each overlay applied in order.
// Later overlays win key by key. Neither base nor the overlays are modified.
func Merge(base Set, overlays ...Set) Set {
	size := len(base)
	for _, o := range overlays {
		size += len(o)
	}
	merged := make(Set, size)
	for k, v := range base {
		merged[k] = v
	}
	for _, o := range overlays {
		for k, v := range o {
			merged[k] = v
		}
	}
	return merged
}

// Present reports whether key exists in p with a non-nil value.
func Present(p Set, key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value for key formatted as a string.
// The second result is false when the key is absent or nil.
func String(p Set, key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// ToVars coerces a decoded variable mapping into Vars.
// Supports map[string]any, map[string]string and the map[any]any shape some
// YAML decoders produce. Any other value yields an empty Vars.
func ToVars(v any) Vars {
	vars := Vars{}
	switch m := v.(type) {
	case Vars:
		for k, val := range m {
			vars[k] = val
		}
	case map[string]any:
		for k, val := range m {
			vars[k] = val
		}
	case map[string]string:
		for k, val := range m {
			vars[k] = val
		}
	case map[any]any:
		for k, val := range m {
			vars[fmt.Sprint(k)] = val
		}
	}
	return vars
}
