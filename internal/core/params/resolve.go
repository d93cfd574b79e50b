package params

// =============================================================================
// Providers
// =============================================================================

// Provider turns caller overrides into the baseline parameter set.
type Provider interface {
	Resolve(overrides Set) (Set, error)
}

// IdentityProvider returns the overrides unchanged.
type IdentityProvider struct{}

// Resolve returns a copy of overrides.
func (IdentityProvider) Resolve(overrides Set) (Set, error) {
	return Merge(overrides), nil
}

// =============================================================================
// Resolution
// =============================================================================

// Resolve builds the parameter set for a run.
//
// The provider supplies the baseline from overrides; a nil provider behaves
// as IdentityProvider. When capture is non-nil it receives a VarCaptor seeded
// with the baseline's vars, and the captured snapshot replaces the vars entry
// wholesale. Captured variables only ever land under KeyVars.
func Resolve(provider Provider, overrides Set, capture CaptureFunc) (Set, error) {
	if provider == nil {
		provider = IdentityProvider{}
	}

	baseline, err := provider.Resolve(overrides)
	if err != nil {
		return nil, err
	}
	if capture == nil {
		return baseline, nil
	}

	captor := NewVarCaptor(ToVars(baseline[KeyVars]))
	capture(captor)

	return Merge(baseline, Set{KeyVars: captor.Vars()}), nil
}
