// Package params provides pure functions for building the parameter set that
// drives a plan run.
//
// This package is part of the functional core: no I/O, no side effects.
// Inputs are never mutated; every operation returns a fresh Set.
//
// # Functions
//
//   - Merge: Overlay parameter sets, later sets winning key by key
//   - Resolve: Ask a Provider for a baseline, then fold in captured variables
//   - VarCaptor: Accumulate variable overrides from a caller callback
//
// # Usage
//
//	resolved, err := params.Resolve(provider, overrides, func(c *params.VarCaptor) {
//	    c.Set("region", "eu-west-2")
//	})
package params
