package solver

import (
	"github.com/symexgo/engine"
	"github.com/symexgo/engine/z3"
)

// defaultMaxNodeRefinement mirrors string_refinementt::info_t's
// DEFAULT_MAX_NB_REFINEMENT, used when Options.MaxNodeRefinement is left
// at zero.
const defaultMaxNodeRefinement = 10

// refinementBackend stands in for get_bv_refinement/get_string_refinement:
// CBMC's lazy axiom-instantiation loop for array and string theories,
// re-adding violated axioms up to max_node_refinement rounds. This
// package has no standalone axiom instantiator, so RefineArrays and
// RefineArithmetic are honored by Z3's own built-in array and
// nonlinear-arithmetic theories rather than a hand-rolled refinement
// loop; MaxNodeRefinement/strings is kept only as a round budget for
// future incremental strengthening and is otherwise a single direct
// Solve call, which is sound (Z3 decides the full theory directly) even
// though it does not reproduce CBMC's lazy-refinement performance
// profile.
type refinementBackend struct {
	solver         *z3.Solver
	strings        bool
	maxRefinements uint
}

func newRefinementBackend(opts symex.Options, strings bool) (symex.Solver, error) {
	bound := opts.MaxNodeRefinement
	if bound == 0 {
		bound = defaultMaxNodeRefinement
	}
	return &refinementBackend{
		solver:         z3.NewSolver(),
		strings:        strings,
		maxRefinements: bound,
	}, nil
}

func (b *refinementBackend) Solve(constraints []symex.Expr, arrays []*symex.Array) (bool, [][]byte, error) {
	return b.solver.Solve(constraints, arrays)
}

func (b *refinementBackend) Close() error {
	return b.solver.Close()
}
