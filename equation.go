package symex

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// StepKind enumerates the kinds of steps an Equation can hold.
type StepKind int

const (
	// StepAssign records an SSA assignment x!l1@l2 := rhs.
	StepAssign StepKind = iota
	// StepAssume records a guarded path-condition restriction.
	StepAssume
	// StepAssert records a guarded property obligation.
	StepAssert
	// StepLocation records a source-location marker with no semantic effect.
	StepLocation
	// StepDecl records the birth of an L1 instance of a variable.
	StepDecl
	// StepDead records the end of an L1 instance's scope.
	StepDead
	// StepConstraint records a state-wide constraint.
	StepConstraint
	// StepSharedRead records a read of a variable shared across threads.
	StepSharedRead
	// StepSharedWrite records a write of a variable shared across threads.
	StepSharedWrite
	// StepAtomicBegin records the start of an atomic section.
	StepAtomicBegin
	// StepAtomicEnd records the end of an atomic section.
	StepAtomicEnd
	// StepSpawn records the creation of a new thread.
	StepSpawn
)

// String returns the name of the step kind.
func (k StepKind) String() string {
	switch k {
	case StepAssign:
		return "ASSIGN"
	case StepAssume:
		return "ASSUME"
	case StepAssert:
		return "ASSERT"
	case StepLocation:
		return "LOCATION"
	case StepDecl:
		return "DECL"
	case StepDead:
		return "DEAD"
	case StepConstraint:
		return "CONSTRAINT"
	case StepSharedRead:
		return "SHARED_READ"
	case StepSharedWrite:
		return "SHARED_WRITE"
	case StepAtomicBegin:
		return "ATOMIC_BEGIN"
	case StepAtomicEnd:
		return "ATOMIC_END"
	case StepSpawn:
		return "SPAWN"
	default:
		return "UNKNOWN"
	}
}

// Step is a single entry in an Equation's append-only log.
type Step struct {
	Kind    StepKind
	Thread  int
	Guard   Expr // the full path condition in force when the step was taken
	LHS     *SSASymbolExpr
	RHS     Expr
	Cond    Expr
	Comment string
	Source  SourceLocation
}

// Equation is the append-only sequence of steps produced by symbolic
// execution: SSA assignments, assumptions, and assertions characterizing
// every feasible finite execution up to the configured bounds.
type Equation struct {
	steps         []Step
	totalVCCs     int
	remainingVCCs int
}

// NewEquation returns a new, empty Equation.
func NewEquation() *Equation {
	return &Equation{}
}

// Append adds step to the end of the equation.
func (eq *Equation) Append(step Step) {
	eq.steps = append(eq.steps, step)
}

// Steps returns the equation's steps in emission order. The returned
// slice must not be mutated.
func (eq *Equation) Steps() []Step {
	return eq.steps
}

// Len returns the number of steps recorded so far.
func (eq *Equation) Len() int {
	return len(eq.steps)
}

// TotalVCCs returns the number of verification conditions emitted so far,
// counting every ASSERT step regardless of whether it was later found
// trivially true.
func (eq *Equation) TotalVCCs() int {
	return eq.totalVCCs
}

// RemainingVCCs returns the number of verification conditions that were
// not trivially discharged at emission time (i.e. whose guard was not
// is_false and whose condition was not is_true).
func (eq *Equation) RemainingVCCs() int {
	return eq.remainingVCCs
}

// recordVCC updates the VCC counters for a just-appended ASSERT step.
func (eq *Equation) recordVCC(trivial bool) {
	eq.totalVCCs++
	if !trivial {
		eq.remainingVCCs++
	}
}

// Validate checks the structural invariants an Equation must hold:
// SSA freshness (no ASSIGN step's LHS SSA symbol is ever re-assigned),
// and that every step's guard follows the same thread's previous guard
// by one of the two changes guardFollows accepts: growth by further
// conjuncts, or an OR-merge at a join point. This check is O(n) and is only run when the
// validate-ssa-equation option is set, matching its cost in CBMC.
func (eq *Equation) Validate() error {
	seen := make(map[SSASymbolExpr]bool)
	lastGuard := make(map[int]Expr)
	for i, step := range eq.steps {
		if step.Kind == StepAssign {
			if step.LHS == nil {
				return fmt.Errorf("equation: step %d: ASSIGN with nil lhs", i)
			}
			key := *step.LHS
			if seen[key] {
				return fmt.Errorf("equation: step %d: SSA symbol %s re-assigned", i, step.LHS)
			}
			seen[key] = true
		}

		if step.Guard != nil {
			if prev, ok := lastGuard[step.Thread]; ok && !guardFollows(step.Guard, prev) {
				return fmt.Errorf("equation: step %d: guard %s does not monotonically follow thread %d's prior guard %s", i, step.Guard, step.Thread, prev)
			}
			lastGuard[step.Thread] = step.Guard
		}
	}
	return nil
}

// guardFollows reports whether newer is a legitimate successor to older
// on the same thread, under the only two operations that ever change a
// thread's guard in this engine: conjunction growth (an ASSUME or a
// GOTO branch's guard.Add of one more condition) and disjunctive merge
// widening (mergeGoto replacing the guard with the OR of the two arms
// it is joining). Anything else — a guard replaced wholesale outside
// those two paths — is the bug class this check exists to catch; full
// semantic entailment would need a solver call, which Validate's
// documented O(n)/no-solver cost does not afford.
func guardFollows(newer, older Expr) bool {
	if IsConstantTrue(older) {
		return true // the empty guard is a prefix of every conjunction
	}
	if newer.String() == older.String() {
		return true
	}
	if isSubsetOf(flattenConjuncts(older), flattenConjuncts(newer)) {
		return true
	}
	if or, ok := newer.(*BinaryExpr); ok && or.Op == OR {
		return or.LHS.String() == older.String() || or.RHS.String() == older.String()
	}
	return false
}

// flattenConjuncts splits a top-level AND-chain into its leaf conjuncts,
// rendered as strings for cheap structural comparison.
func flattenConjuncts(e Expr) []string {
	if b, ok := e.(*BinaryExpr); ok && b.Op == AND {
		return append(flattenConjuncts(b.LHS), flattenConjuncts(b.RHS)...)
	}
	return []string{e.String()}
}

// isSubsetOf reports whether every element of subset also appears in
// superset.
func isSubsetOf(subset, superset []string) bool {
	set := make(map[string]bool, len(superset))
	for _, s := range superset {
		set[s] = true
	}
	for _, s := range subset {
		if !set[s] {
			return false
		}
	}
	return true
}

// String returns a line-oriented rendering of the equation, one step per
// line, in the style of a CBMC --show-goto-symex-steps dump.
func (eq *Equation) String() string {
	var b strings.Builder
	for i, step := range eq.steps {
		fmt.Fprintf(&b, "%d: thread %d: %s", i, step.Thread, step.Kind)
		switch step.Kind {
		case StepAssign:
			fmt.Fprintf(&b, " %s := %s", step.LHS, step.RHS)
		case StepAssume, StepAssert:
			fmt.Fprintf(&b, " %s", step.Cond)
		}
		if step.Guard != nil {
			fmt.Fprintf(&b, "  guard: %s", step.Guard)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Dump returns a deep, field-level rendering of the equation for
// debugging, using spew to avoid hand-writing recursive printers for the
// update-chain-shaped Array and expression trees embedded in each step.
func (eq *Equation) Dump() string {
	return spew.Sdump(eq.steps)
}
