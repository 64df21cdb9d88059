package symex

// rewriteQuantifiers pushes negations inward through quantifiers
// (NOT(forall x. P) becomes exists x. NOT P, and NOT(exists x. P)
// becomes forall x. NOT P) and gives each bound variable a fresh SSA
// identity distinct from any outer binding of the same source name,
// before the expression is cleaned and L1/L2-renamed the ordinary way.
// Mirrors goto_symex.h's rewrite_quantifiers; vcc is the sole caller,
// since a quantified condition only ever reaches the equation through a
// verification condition.
func (interp *Interpreter) rewriteQuantifiers(state *SymbolicState, expr Expr) Expr {
	switch e := expr.(type) {
	case *NotExpr:
		if q, ok := e.Expr.(*QuantifierExpr); ok {
			pushed := &QuantifierExpr{Kind: oppositeQuantifier(q.Kind), Bound: q.Bound, Body: NewNotExpr(q.Body)}
			return interp.rewriteQuantifiers(state, pushed)
		}
		return NewNotExpr(interp.rewriteQuantifiers(state, e.Expr))

	case *QuantifierExpr:
		body := interp.rewriteQuantifiers(state, e.Body)
		return interp.freshenBoundVariable(state, e.Kind, e.Bound, body)

	case *BinaryExpr:
		return NewBinaryExpr(e.Op, interp.rewriteQuantifiers(state, e.LHS), interp.rewriteQuantifiers(state, e.RHS))

	case *IfExpr:
		return NewIfExpr(interp.rewriteQuantifiers(state, e.Cond), interp.rewriteQuantifiers(state, e.Then), interp.rewriteQuantifiers(state, e.Else))

	case *CastExpr:
		return NewCastExpr(interp.rewriteQuantifiers(state, e.Src), e.Width, e.Signed)

	default:
		return expr
	}
}

// oppositeQuantifier returns Exists for Forall and vice versa, De
// Morgan's dual used when a negation is pushed through a quantifier.
func oppositeQuantifier(k QuantifierKind) QuantifierKind {
	if k == Forall {
		return Exists
	}
	return Forall
}

// freshenBoundVariable mints a brand-new, frame-scoped SSA version for
// bound and substitutes it for every free occurrence of bound's bare
// SymbolExpr within body, so the generic L1/L2 renaming pass that runs
// afterwards treats the bound variable as already fully renamed instead
// of mistaking it for a reference to the enclosing scope's variable of
// the same source name.
func (interp *Interpreter) freshenBoundVariable(state *SymbolicState, kind QuantifierKind, bound Symbol, body Expr) *QuantifierExpr {
	frame := state.Frame()
	width := boundVariableWidth(body, bound)
	l2 := state.Thread().NextL2(bound, frame.L1, width)
	versioned := NewSSASymbolExpr(bound, frame.L1, l2, width)
	return &QuantifierExpr{Kind: kind, Bound: bound, Body: substituteSymbol(body, bound, versioned)}
}

// boundVariableWidth returns the declared width of bound's first free
// occurrence in body, defaulting to Width32 if body never mentions it
// (a vacuously true/false quantifier, e.g. `forall x. true`).
func boundVariableWidth(body Expr, bound Symbol) uint {
	width := uint(Width32)
	var visit exprVisitorFunc
	visit = func(e Expr) (Expr, ExprVisitor) {
		if sym, ok := e.(*SymbolExpr); ok && sym.Name == bound {
			width = sym.Width
			return e, nil
		}
		return e, visit
	}
	WalkExpr(visit, body)
	return width
}

// substituteSymbol replaces every bare SymbolExpr named name within
// expr with replacement.
func substituteSymbol(expr Expr, name Symbol, replacement Expr) Expr {
	return WalkExpr(&substituteVisitor{name: name, replacement: replacement}, expr)
}

type substituteVisitor struct {
	name        Symbol
	replacement Expr
}

func (v *substituteVisitor) Visit(expr Expr) (Expr, ExprVisitor) {
	if sym, ok := expr.(*SymbolExpr); ok && sym.Name == v.name {
		return v.replacement, nil
	}
	return expr, v
}
