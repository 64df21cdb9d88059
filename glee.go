package symex

import (
	"errors"
	"fmt"
)

// Standard widths.
const (
	WidthBool = 1
	Width8    = 8
	Width16   = 16
	Width32   = 32
	Width64   = 64
)

var (
	ErrSolverTimeout       = errors.New("Solver timeout")
	ErrSolverCanceled      = errors.New("Solver canceled")
	ErrSolverResourceLimit = errors.New("Solver resource limit")
	ErrSolverUnknown       = errors.New("Solver unknown error")
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}

// Solver represents a decision procedure capable of checking the
// satisfiability of a set of constraints drawn from an Equation, and
// producing a witness value for each symbolic array involved when one
// exists. Every backend the solver factory can hand back (Z3, a SAT-
// based default, DIMACS emission, SMT2 emission, bit-vector or string
// refinement) implements this single method.
type Solver interface {
	// Solve returns the satisfiability of constraints. If satisfiable,
	// values holds one entry per array in arrays, in the same order,
	// giving a byte-for-byte witness assignment.
	Solve(constraints []Expr, arrays []*Array) (satisfiable bool, values [][]byte, err error)

	// Close releases any resources the backend holds (e.g. a Z3
	// context). Backends that hold nothing return nil.
	Close() error
}
