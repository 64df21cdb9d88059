package solver

import (
	"github.com/symexgo/engine"
	"github.com/symexgo/engine/z3"
)

// defaultBackend is the solver chosen when none of DIMACS/Refine/
// RefineStrings/SMT2 is requested: CBMC's get_default, a SAT-based
// bit-vector decision procedure with native pointer support. This
// package has no built-in SAT solver of its own, so it delegates to the
// same Z3-backed implementation the SMT2/refinement backends fall back
// on — z3's own simplifying preprocessor stands in for bv_pointerst's
// optional sat-preprocessor toggle, so SATPreprocessor/Beautify are
// accepted but have no further effect here beyond the validation
// factory.go already performed.
type defaultBackend struct {
	solver *z3.Solver
	opts   symex.Options
}

func newDefaultBackend(opts symex.Options) (symex.Solver, error) {
	return &defaultBackend{solver: z3.NewSolver(), opts: opts}, nil
}

func (b *defaultBackend) Solve(constraints []symex.Expr, arrays []*symex.Array) (bool, [][]byte, error) {
	return b.solver.Solve(constraints, arrays)
}

// Close releases the underlying Z3 context.
func (b *defaultBackend) Close() error {
	return b.solver.Close()
}
