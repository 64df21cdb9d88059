package symex

import "testing"

// TestCleanAndRenameL2_DoesNotCorruptSharedInstruction exercises the
// scenario that motivates cloneExpr: the same *BinaryExpr object backing
// an AssertCode.Condition (or any other Instruction.Code expression) is
// evaluated twice under different propagated values for its referenced
// symbol, as it would be on two passes through the same loop-head
// ASSERT. Each evaluation must reflect only its own context. Before
// cloneExpr was wired in, WalkExpr's in-place substitution would bake
// the first evaluation's renamed/propagated child directly onto the
// shared node, so the second evaluation would silently reuse the first
// one's answer instead of re-deriving its own.
func TestCleanAndRenameL2_DoesNotCorruptSharedInstruction(t *testing.T) {
	symtab := NewSymbolTable()
	fn := symtab.Intern("main")
	x := symtab.Intern("x")

	program := &Program{
		Instructions: []Instruction{{PC: 0, Kind: EndFunction}},
		EntryPoints:  map[Symbol]int{fn: 0},
		ReturnTypes:  map[Symbol]uint{},
		ParamTypes:   map[Symbol][]uint{},
		ParamNames:   map[Symbol][]Symbol{},
	}

	interp, state, err := NewInterpreter(program, Options{Propagation: true, Simplify: true}, symtab, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shared, Program-level expression: as if it were an ASSERT's
	// condition read straight out of Instruction.Code.
	shared, ok := NewBinaryExpr(EQ, NewSymbolExpr(x, Width32), NewConstantExpr32(0)).(*BinaryExpr)
	if !ok {
		t.Fatalf("expected NewBinaryExpr to return an unfolded *BinaryExpr for a symbol operand")
	}
	origLHS := shared.LHS

	frame := state.Frame()
	thread := state.Thread()

	// First pass: x (L1=frame.L1, L2=0) propagated as 5. x == 0 is false.
	key1 := SSASymbolExpr{Name: x, L1: frame.L1, L2: thread.CurrentL2(x, frame.L1), Width: Width32}
	state.Propagate(key1, NewConstantExpr32(5))

	got1 := interp.cleanAndRenameL2(state, shared)
	c1, ok := got1.(*ConstantExpr)
	if !ok || !c1.IsFalse() {
		t.Fatalf("first evaluation: expected constant false (5 == 0), got %T %v", got1, got1)
	}

	if shared.LHS != origLHS {
		t.Fatalf("shared instruction's LHS field was mutated in place by the first evaluation")
	}

	// Second pass: x gets a fresh L2 version (as a write would mint) and
	// is now propagated as 0. x == 0 is true.
	freshL2 := thread.NextL2(x, frame.L1, Width32)
	key2 := SSASymbolExpr{Name: x, L1: frame.L1, L2: freshL2, Width: Width32}
	state.Propagate(key2, NewConstantExpr32(0))

	got2 := interp.cleanAndRenameL2(state, shared)
	c2, ok := got2.(*ConstantExpr)
	if !ok || !c2.IsTrue() {
		t.Fatalf("second evaluation: expected constant true (0 == 0), got %T %v — stale first-pass rewrite leaked through", got2, got2)
	}

	if shared.LHS != origLHS {
		t.Fatalf("shared instruction's LHS field was mutated in place by the second evaluation")
	}
}

func TestCloneExpr_DeepCopiesCompositeNodes(t *testing.T) {
	symtab := NewSymbolTable()
	x := symtab.Intern("x")

	original := NewNotExpr(NewBinaryExpr(EQ, NewSymbolExpr(x, Width32), NewConstantExpr32(0)))
	clone := cloneExpr(original)

	cloned, ok := clone.(*NotExpr)
	if !ok {
		t.Fatalf("expected *NotExpr, got %T", clone)
	}
	if cloned == original {
		t.Fatal("expected a distinct NotExpr allocation")
	}
	innerClone, ok := cloned.Expr.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected *BinaryExpr, got %T", cloned.Expr)
	}
	innerOrig := original.(*NotExpr).Expr.(*BinaryExpr)
	if innerClone == innerOrig {
		t.Fatal("expected a distinct BinaryExpr allocation")
	}
	if innerClone.LHS != innerOrig.LHS {
		t.Fatal("expected leaf SymbolExpr to be shared, not cloned")
	}
}

func TestCloneExpr_NilIsNil(t *testing.T) {
	if cloneExpr(nil) != nil {
		t.Fatal("expected cloneExpr(nil) to return nil")
	}
}
