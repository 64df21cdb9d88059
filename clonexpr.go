package symex

// cloneExpr returns a structurally identical copy of expr in which every
// composite node is a fresh allocation. WalkExpr mutates a node's child
// fields in place whenever a visitor replaces a descendant, which is safe
// for an expression tree built fresh for one use — but every rvalue this
// engine walks (an ASSIGN's RHS, an ASSERT/ASSUME's condition, a CALL's
// arguments) originates from the static Program's Instruction.Code, the
// same *Instruction read every time its PC is reached. Without cloning
// first, renaming or propagating a substitution into that shared tree on
// its first visit (binding it to one call frame's L1, or to one path's
// propagated constant) would corrupt every future visit to the same
// instruction from a different frame, loop iteration, or path — mirroring
// why CBMC's own goto_symex operates on a copy of the instruction's
// guarded expression, never the goto_programt's own stored one.
//
// Leaf kinds (ConstantExpr, SymbolExpr, SSASymbolExpr, SideEffectExpr) are
// never mutated by WalkExpr in place, so they are returned as-is.
// SelectExpr is returned as-is too, without copying its Index or its
// Array. WalkExpr does rewrite a SelectExpr's Index and its Array's
// update entries in place, so a SelectExpr inside an Instruction template
// is shared by every visit to that instruction.
func cloneExpr(expr Expr) Expr {
	switch e := expr.(type) {
	case nil:
		return nil
	case *BinaryExpr:
		return &BinaryExpr{Op: e.Op, LHS: cloneExpr(e.LHS), RHS: cloneExpr(e.RHS)}
	case *CastExpr:
		return &CastExpr{Src: cloneExpr(e.Src), Width: e.Width, Signed: e.Signed}
	case *ConcatExpr:
		return &ConcatExpr{MSB: cloneExpr(e.MSB), LSB: cloneExpr(e.LSB)}
	case *ExtractExpr:
		return &ExtractExpr{Expr: cloneExpr(e.Expr), Offset: e.Offset, Width: e.Width}
	case *NotExpr:
		return &NotExpr{Expr: cloneExpr(e.Expr)}
	case *NotOptimizedExpr:
		return &NotOptimizedExpr{Src: cloneExpr(e.Src)}
	case *IfExpr:
		return &IfExpr{Cond: cloneExpr(e.Cond), Then: cloneExpr(e.Then), Else: cloneExpr(e.Else)}
	case *MemberExpr:
		return &MemberExpr{Base: cloneExpr(e.Base), Field: e.Field, Width: e.Width}
	case *IndexExpr:
		return &IndexExpr{Base: cloneExpr(e.Base), Index: cloneExpr(e.Index), Width: e.Width}
	case *AddressOfExpr:
		return &AddressOfExpr{Operand: cloneExpr(e.Operand)}
	case *DereferenceExpr:
		return &DereferenceExpr{Pointer: cloneExpr(e.Pointer), Width: e.Width}
	case *QuantifierExpr:
		return &QuantifierExpr{Kind: e.Kind, Bound: e.Bound, Body: cloneExpr(e.Body)}
	case *ArrayUpdateExpr:
		return &ArrayUpdateExpr{Base: cloneExpr(e.Base), Index: cloneExpr(e.Index), Value: cloneExpr(e.Value), Width: e.Width}
	case *StructUpdateExpr:
		return &StructUpdateExpr{Base: cloneExpr(e.Base), Field: e.Field, Width: e.Width, Value: cloneExpr(e.Value)}
	default:
		// ConstantExpr, SymbolExpr, SSASymbolExpr, SideEffectExpr, SelectExpr.
		return expr
	}
}
