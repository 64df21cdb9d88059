package symex

// Guard represents a path condition: a conjunction of boolean expressions
// that must hold for the owning state's remaining steps to be reachable.
// Guard is an immutable value; Add/Negate return a new Guard rather than
// mutating the receiver, so it can be shared freely across forked states.
type Guard struct {
	conjuncts []Expr
}

// NewGuard returns the trivially-true guard (the empty conjunction).
func NewGuard() Guard {
	return Guard{}
}

// Add returns a new Guard with expr conjoined on. A top-level AND is split
// into its operands so is_false/is_true can observe each conjunct
// individually.
func (g Guard) Add(expr Expr) Guard {
	if expr == nil {
		return g
	}
	if c, ok := expr.(*ConstantExpr); ok && c.IsTrue() {
		return g
	}
	if b, ok := expr.(*BinaryExpr); ok && b.Op == AND {
		return g.Add(b.LHS).Add(b.RHS)
	}
	next := make([]Expr, len(g.conjuncts), len(g.conjuncts)+1)
	copy(next, g.conjuncts)
	next = append(next, expr)
	return Guard{conjuncts: next}
}

// Negate returns the logical negation of the guard's full conjunction as a
// new single-conjunct Guard. Used when pushing the not-taken branch of a
// GOTO onto path storage.
func (g Guard) Negate() Guard {
	return NewGuard().Add(NewNotExpr(g.AsExpr()))
}

// GuardExpr returns `guard => e`, expressed as `!guard || e`, the shape
// used to guard every ASSUME/ASSERT step so it is vacuously satisfied on
// infeasible paths.
func (g Guard) GuardExpr(e Expr) Expr {
	if g.IsTrue() {
		return e
	}
	return NewBinaryExpr(OR, NewNotExpr(g.AsExpr()), e)
}

// AsExpr returns the guard's full conjunction as a single expression.
func (g Guard) AsExpr() Expr {
	if len(g.conjuncts) == 0 {
		return NewBoolConstantExpr(true)
	}
	result := g.conjuncts[0]
	for _, c := range g.conjuncts[1:] {
		result = NewBinaryExpr(AND, result, c)
	}
	return result
}

// IsFalse reports whether any conjunct is the literal constant false,
// i.e. whether this guard can never be satisfied. Callers short-circuit
// symbolic execution under a false guard, though scoped resources (DEAD
// declarations, end-of-atomic-section bookkeeping) are still released.
func (g Guard) IsFalse() bool {
	for _, c := range g.conjuncts {
		if c, ok := c.(*ConstantExpr); ok && c.IsFalse() {
			return true
		}
	}
	return false
}

// IsTrue reports whether the guard is the trivial empty conjunction.
func (g Guard) IsTrue() bool {
	return len(g.conjuncts) == 0
}

// Conjuncts returns the guard's conjuncts in the order they were added.
// The returned slice must not be mutated.
func (g Guard) Conjuncts() []Expr {
	return g.conjuncts
}

// String returns the string representation of the guard.
func (g Guard) String() string {
	return g.AsExpr().String()
}
