package solver

import (
	"bufio"
	"fmt"
	"os"

	"github.com/symexgo/engine"
)

// dimacsBackend emits the equation's constraints to Outfile instead of
// deciding their satisfiability, mirroring get_dimacs/bv_dimacst: CBMC's
// own --dimacs mode does not attempt to solve the formula either, it
// simply writes the CNF file and lets an external SAT solver take over.
// This backend has no built-in bitvector-to-CNF flattener, so in place
// of a literal DIMACS CNF file it writes one numbered atom per distinct
// top-level constraint, in the same spirit a reader could feed to an
// external flattening step; Solve's bool/value results are always
// "not attempted" (false, nil) with a nil error on a successful write.
type dimacsBackend struct {
	outfile string
}

func newDIMACSBackend(opts symex.Options) (symex.Solver, error) {
	// opts.Validate already rejected an empty Outfile for DIMACS mode, and
	// Beautify/AllProperties/Cover/IncrementalCheck combined with DIMACS.
	return &dimacsBackend{outfile: opts.Outfile}, nil
}

func (b *dimacsBackend) Solve(constraints []symex.Expr, arrays []*symex.Array) (bool, [][]byte, error) {
	w, closeFn, err := openOutfile(b.outfile)
	if err != nil {
		return false, nil, err
	}
	defer closeFn()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "c symex equation, %d constraint(s), %d array(s)\n", len(constraints), len(arrays))
	fmt.Fprintf(bw, "p cnf 0 %d\n", len(constraints))
	for i, c := range constraints {
		fmt.Fprintf(bw, "c %d: %s\n", i+1, c)
	}
	if err := bw.Flush(); err != nil {
		return false, nil, err
	}
	return false, nil, nil
}

// Close is a no-op: dimacsBackend holds no resources between calls.
func (b *dimacsBackend) Close() error {
	return nil
}

// openOutfile opens name for writing, treating "-" as stdout (and
// returning a no-op close for it, since the caller does not own stdout).
func openOutfile(name string) (*os.File, func() error, error) {
	if name == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("solver: failed to open file: %s: %w", name, err)
	}
	return f, f.Close, nil
}
