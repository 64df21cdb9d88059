package symex

// cleanExpr removes side effects and eliminates every SideEffectExpr and
// DereferenceExpr from expr before it is L2-renamed and recorded into
// the equation, mirroring goto-symex's clean_expr/dereference_rec. isWrite
// indicates expr is being cleaned as an lvalue (the target of an
// ASSIGN); it is passed on to dereferenceRec, which builds the same
// IfExpr chain over the value-set targets either way. Dereferences on the
// left of an ASSIGN are lowered by symexAssignDereference instead.
func (interp *Interpreter) cleanExpr(state *SymbolicState, expr Expr, isWrite bool) Expr {
	return WalkExpr(&cleanVisitor{interp: interp, state: state, isWrite: isWrite}, expr)
}

type cleanVisitor struct {
	interp  *Interpreter
	state   *SymbolicState
	isWrite bool
}

func (v *cleanVisitor) Visit(expr Expr) (Expr, ExprVisitor) {
	switch e := expr.(type) {
	case *SideEffectExpr:
		return v.interp.eliminateSideEffect(v.state, e), nil
	case *DereferenceExpr:
		return v.interp.dereferenceRec(v.state, e, v.isWrite), nil
	default:
		return expr, v
	}
}

// eliminateSideEffect replaces a non-deterministic choice with a fresh
// SSA symbol, declared via its own DECL step: its L2 version starts at 0
// and is never assigned, so it is free to take any value consistent with
// the rest of the equation. The frame records the symbol so its matching
// DEAD is emitted when the frame that introduced it ends.
func (interp *Interpreter) eliminateSideEffect(state *SymbolicState, e *SideEffectExpr) Expr {
	frame := state.Frame()
	sym := state.Symtab.Fresh("nondet")
	frame.PushNondetDecl(sym)
	if err := interp.appendStep(state, Step{Kind: StepDecl, Comment: interp.Symtab.Name(sym)}); err != nil {
		interp.logf(1, "[symex] failed to record DECL for nondet symbol: %v", err)
	}
	return NewSSASymbolExpr(sym, frame.L1, 0, e.Width)
}

// dereferenceRec lowers *pointer into a guarded if-then-else chain over
// every candidate target the active ValueSet reports, falling back to a
// failed_object symbol if the set is empty. Each target is an expression
// denoting the pointed-to object itself (e.g. an SSASymbolExpr for a
// local variable whose address may have been taken) rather than a raw
// address, so the chain's leaves can be read directly with no further
// indirection — matching how CBMC's value-set entries name objects, not
// byte offsets, leaving offset arithmetic to the pointer expression's
// own encoding.
func (interp *Interpreter) dereferenceRec(state *SymbolicState, e *DereferenceExpr, isWrite bool) Expr {
	cleanedPtr := interp.cleanAndRenameL2(state, e.Pointer)

	var targets []Expr
	if sym, ok := baseSymbol(e.Pointer); ok {
		if overridden, ok := state.ValueSetOverride(sym); ok {
			targets = overridden
		}
	}
	if targets == nil {
		targets = interp.Options.valueSets().Targets(state, cleanedPtr)
	}

	if len(targets) == 0 {
		if !interp.Options.AllowPointerUnsoundness {
			// Sound mode: record the failure as a real, checkable
			// verification condition (CBMC's assert(!is_unknown(p))) rather
			// than silently making something up. The value-set is
			// statically known to be empty here, so is_unknown(p) is
			// statically true and the assertion is a guaranteed failure on
			// any path that reaches it feasibly.
			if err := interp.vcc(state, NewBoolConstantExpr(false), "dereference of pointer with unresolved value-set (is_unknown(p))", SourceLocation{}); err != nil {
				interp.logf(1, "[symex] failed to record is_unknown assertion: %v", err)
			}
		}
		return interp.failedObject(state, e.Width)
	}

	result := targets[len(targets)-1]
	for i := len(targets) - 2; i >= 0; i-- {
		cond := NewBinaryExpr(EQ, cleanedPtr, interp.addressOf(targets[i]))
		result = NewIfExpr(cond, targets[i], result)
	}
	return result
}

// addressOf returns the address expression a ValueSet target should be
// compared against when deciding whether a pointer denotes it. Objects
// reached via a ValueSet are expected to carry their address as metadata
// the caller attached when constructing the target list (typically
// `&x`); this engine represents that simply as wrapping the object
// expression in AddressOfExpr, since no ValueSet implementation ships in
// this package (it is an injected analysis, see services.go).
func (interp *Interpreter) addressOf(target Expr) Expr {
	return NewAddressOfExpr(target)
}

// failedObject returns a fresh, unconstrained symbol standing in for a
// dereference whose target could not be determined, CBMC's
// failed_object construction.
func (interp *Interpreter) failedObject(state *SymbolicState, width uint) Expr {
	sym := state.Symtab.Fresh("failed_object")
	return NewSSASymbolExpr(sym, state.Frame().L1, 0, width)
}

// baseSymbol returns the underlying declared Symbol of expr if expr is
// (possibly after unwrapping an AddressOfExpr) a direct symbol
// reference, used to look up a per-symbol ValueSet override.
func baseSymbol(expr Expr) (Symbol, bool) {
	switch e := expr.(type) {
	case *SymbolExpr:
		return e.Name, true
	case *SSASymbolExpr:
		return e.Name, true
	case *AddressOfExpr:
		return baseSymbol(e.Operand)
	default:
		return 0, false
	}
}
