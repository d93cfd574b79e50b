// Package invocation provides pure functions that turn a merged parameter set
// into terraform command-line arguments.
//
// Each builder receives the full parameter set of a run plus the step's own
// overrides. Keys a step does not understand are ignored, so callers can pass
// extra tool options through without the orchestrator knowing about them.
//
// # Functions
//
//   - Init: terraform -chdir=DIR init ...
//   - Plan: terraform -chdir=DIR plan ...
//   - Show: terraform -chdir=DIR show ...
package invocation
