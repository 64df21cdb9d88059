package symex

// symexAssign implements the assignment half of an ASSIGN instruction:
// a recursive descent over the shape of lhs (Symbol, Typecast, Index,
// Member, If, byte-extract) that eventually bottoms out in one or more
// ASSIGN steps against plain SSA symbols, mirroring goto_symex.h's
// symex_assign_rec family. rhs is cleaned and L2-renamed once, up front;
// only lhs is walked recursively.
func (interp *Interpreter) symexAssign(state *SymbolicState, lhs, rhs Expr) error {
	cleanedRHS := interp.cleanAndRenameL2(state, rhs)
	return interp.symexAssignRec(state, lhs, cleanedRHS, NewGuard())
}

// symexAssignRec assigns rhs to lhs under guard (the guard accumulated
// so far by this specific recursive descent, separate from the state's
// own path-condition guard — both are applied: the emitted step carries
// the state guard, and a non-trivial local guard is folded into the
// step's RHS as ite(guard, rhs, previous value)).
func (interp *Interpreter) symexAssignRec(state *SymbolicState, lhs, rhs Expr, guard Guard) error {
	switch l := lhs.(type) {
	case *SymbolExpr:
		return interp.symexAssignSymbol(state, l, rhs, guard)

	case *SSASymbolExpr:
		return interp.symexAssignSSASymbol(state, l, rhs, guard)

	case *CastExpr:
		// a := (T)rhs, where a's own width differs from rhs's: widen or
		// truncate rhs to a's declared width before recursing.
		return interp.symexAssignRec(state, l.Src, NewCastExpr(rhs, ExprWidth(l.Src), l.Signed), guard)

	case *IndexExpr:
		// a[i] := v  =>  a := with(a, i, v)
		newBase := interp.storeAt(l.Base, l.Index, rhs, l.Width)
		return interp.symexAssignRec(state, l.Base, newBase, guard)

	case *MemberExpr:
		// a.f := v  =>  a := with-member(a, f, v)
		newBase := NewMemberStoreExpr(l.Base, l.Field, l.Width, rhs)
		return interp.symexAssignRec(state, l.Base, newBase, guard)

	case *IfExpr:
		// (if c t e) := v: split into two guarded recursive assignments,
		// one per branch, each with c (or !c) conjoined into the local
		// assignment guard.
		thenGuard := guard.Add(l.Cond)
		if err := interp.symexAssignRec(state, l.Then, rhs, thenGuard); err != nil {
			return err
		}
		elseGuard := guard.Add(NewNotExpr(l.Cond))
		return interp.symexAssignRec(state, l.Else, rhs, elseGuard)

	case *DereferenceExpr:
		// *p := v: lower into one guarded recursive assignment per
		// value-set target, exactly mirroring the read-side ite chain
		// dereferenceRec builds, but assigning into each target instead
		// of reading from it.
		return interp.symexAssignDereference(state, l, rhs, guard)

	case *ExtractExpr:
		// byte-extract-on-lhs: extract[e, offset, width] := v is a
		// read-modify-write of the underlying symbol: clear the bits at
		// [offset, offset+width) and OR in v shifted into place.
		full := l.Expr
		fullWidth := ExprWidth(full)
		widened := NewCastExpr(rhs, fullWidth, false)
		shifted := NewBinaryExpr(SHL, widened, NewConstantExpr(uint64(l.Offset), fullWidth))
		mask := bitmaskRange(l.Width, fullWidth) // ...11110000... at [offset,offset+width)
		shiftedMask := NewBinaryExpr(SHL, NewConstantExpr(mask, fullWidth), NewConstantExpr(uint64(l.Offset), fullWidth))
		cleared := NewBinaryExpr(AND, full, NewNotExpr(shiftedMask))
		merged := NewBinaryExpr(OR, cleared, shifted)
		return interp.symexAssignRec(state, full, merged, guard)

	default:
		return &ErrUnsupportedOperation{Op: "symex_assign", Detail: "unsupported lhs shape"}
	}
}

// symexAssignSymbol handles an L0-level assignment target by renaming it
// to L1 (using the current frame's instance tag) and delegating to the
// SSA-level assignment.
func (interp *Interpreter) symexAssignSymbol(state *SymbolicState, sym *SymbolExpr, rhs Expr, guard Guard) error {
	frame := state.Frame()
	ssa := NewSSASymbolExpr(sym.Name, frame.L1, 0, sym.Width)
	return interp.symexAssignSSASymbol(state, ssa, rhs, guard)
}

// symexAssignSSASymbol mints a fresh L2 version for sym's (name, L1) and
// emits the ASSIGN step under the state's own guard. A non-trivial local
// recursion guard, accumulated while descending through If/Index/Member
// shapes, turns the RHS into ite(guard, rhs, previous version).
func (interp *Interpreter) symexAssignSSASymbol(state *SymbolicState, sym *SSASymbolExpr, rhs Expr, guard Guard) error {
	thread := state.Thread()
	l2 := thread.NextL2(sym.Name, sym.L1, sym.Width)
	versioned := NewSSASymbolExpr(sym.Name, sym.L1, l2, sym.Width)

	finalRHS := rhs
	if !guard.IsTrue() {
		prior := NewSSASymbolExpr(sym.Name, sym.L1, l2-1, sym.Width)
		finalRHS = NewIfExpr(guard.AsExpr(), rhs, prior)
	}

	if interp.Options.Propagation {
		if c, ok := finalRHS.(*ConstantExpr); ok {
			state.Propagate(*versioned, c)
		} else {
			state.ForgetPropagated(*versioned)
		}
	}

	return interp.appendStep(state, Step{Kind: StepAssign, LHS: versioned, RHS: finalRHS})
}

// symexAssignDereference lowers `*p := v` by assigning v into every
// object the active ValueSet reports p may point to, each guarded by
// `p == target` conjoined onto the caller's local recursion guard.
func (interp *Interpreter) symexAssignDereference(state *SymbolicState, deref *DereferenceExpr, rhs Expr, guard Guard) error {
	cleanedPtr := interp.cleanAndRenameL2(state, deref.Pointer)
	targets := interp.Options.valueSets().Targets(state, cleanedPtr)
	if len(targets) == 0 {
		if !interp.Options.AllowPointerUnsoundness {
			// Sound mode: record the failure as a checkable verification
			// condition (CBMC's assert(!is_unknown(p))) instead of aborting
			// symbolic execution outright.
			return interp.vcc(state, NewBoolConstantExpr(false), "write through pointer with unresolved value-set (is_unknown(p))", SourceLocation{})
		}
		return nil // unsound: write to an unknown target is dropped
	}
	for _, target := range targets {
		targetGuard := guard.Add(NewBinaryExpr(EQ, cleanedPtr, interp.addressOf(target)))
		if err := interp.symexAssignRec(state, target, rhs, targetGuard); err != nil {
			return err
		}
	}
	return nil
}

// storeAt returns base with its element at index replaced by value, as
// a single with-expression (NewArrayWithExpr); no case split over
// concrete indices is made here.
func (interp *Interpreter) storeAt(base, index, value Expr, width uint) Expr {
	return NewArrayWithExpr(base, index, value, width)
}

// bitmaskLow returns a mask with the `n` low-order bits set (all 64 bits
// when n >= 64), used by byte-extract-on-lhs lowering. width is not
// consulted; bitmaskRange does the truncation to the full width.
func bitmaskLow(n, width uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// bitmaskRange returns a `fullWidth`-bit mask with exactly `width` bits set at
// bit position 0 (the caller shifts it into place).
func bitmaskRange(width, fullWidth uint) uint64 {
	m := bitmaskLow(width, fullWidth)
	if fullWidth < 64 {
		m &= (uint64(1) << fullWidth) - 1
	}
	return m
}
