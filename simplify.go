package symex

// simplifyExpr rebuilds expr bottom-up through its own constant-folding
// constructors (NewBinaryExpr, NewNotExpr, NewCastExpr, NewIfExpr, ...),
// so a substitution made earlier in the pipeline (propagation substituting
// a ConstantExpr for an SSASymbolExpr, say) has a chance to fold all the
// way up to a literal rather than sitting inertly under an unreduced
// BinaryExpr/IfExpr, mirroring CBMC's simplify_expr pass. Only run when
// Options.Simplify is set, matching its cost in CBMC.
func simplifyExpr(expr Expr) Expr {
	switch e := expr.(type) {
	case *BinaryExpr:
		return NewBinaryExpr(e.Op, simplifyExpr(e.LHS), simplifyExpr(e.RHS))
	case *NotExpr:
		return NewNotExpr(simplifyExpr(e.Expr))
	case *CastExpr:
		return NewCastExpr(simplifyExpr(e.Src), e.Width, e.Signed)
	case *IfExpr:
		return NewIfExpr(simplifyExpr(e.Cond), simplifyExpr(e.Then), simplifyExpr(e.Else))
	case *ExtractExpr:
		return NewExtractExpr(simplifyExpr(e.Expr), e.Offset, e.Width)
	case *ConcatExpr:
		return NewConcatExpr(simplifyExpr(e.MSB), simplifyExpr(e.LSB))
	default:
		return expr
	}
}
