// Package solver dispatches an Options value to one of the decision
// procedure backends it selects, mirroring CBMC's solver_factoryt: at
// most one of DIMACS, Refine, RefineStrings, or SMT2 may be requested,
// and the unadorned default falls back to an in-process SAT-based
// solver. Every backend implements symex.Solver, so the interpreter's
// own Equation.Steps feed it identically regardless of which one was
// chosen.
package solver

import (
	"fmt"

	"github.com/symexgo/engine"
)

// NewBackend returns the Solver opts selects, or a *symex.ConfigError if
// opts names a self-contradictory combination (callers that already
// called (*symex.Options).Validate() will never see that error here;
// NewBackend calls it again defensively since a factory is often
// constructed independently of the interpreter that produced opts).
func NewBackend(opts symex.Options) (symex.Solver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch {
	case opts.DIMACS:
		return newDIMACSBackend(opts)
	case opts.Refine:
		return newRefinementBackend(opts, false)
	case opts.RefineStrings:
		return newRefinementBackend(opts, true)
	case opts.SMT2:
		return newSMT2Backend(opts)
	default:
		return newDefaultBackend(opts)
	}
}

// unsupportedf formats the same complaint CBMC's no_beautification/
// no_incremental_check helpers raise, for backends that accept the
// option syntactically (Options has no backend-specific struct tags)
// but cannot honor it.
func unsupportedf(backend, option string) error {
	return fmt.Errorf("solver: %s backend does not support %s", backend, option)
}
