package params

// =============================================================================
// Variable Captor
// =============================================================================

// VarCaptor accumulates variable overrides set by caller code.
// It is handed to a CaptureFunc and read back once the callback returns.
type VarCaptor struct {
	vars Vars
}

// CaptureFunc is invoked synchronously with a VarCaptor during resolution.
type CaptureFunc func(*VarCaptor)

// NewVarCaptor creates a captor seeded with a copy of initial.
// A nil initial mapping starts the captor empty.
func NewVarCaptor(initial Vars) *VarCaptor {
	return &VarCaptor{vars: ToVars(initial)}
}

// Set sets the named variable, overwriting any existing value.
// Names and values are passed through unchecked.
func (c *VarCaptor) Set(name string, value any) {
	c.vars[name] = value
}

// Vars returns a snapshot of the captured variables.
func (c *VarCaptor) Vars() Vars {
	return ToVars(c.vars)
}
