package symex

import "errors"

// errUnrenamedSymbol is returned by Renamer.Validate when an expression
// still carries a bare L0 SymbolExpr where a fully SSA-renamed
// SSASymbolExpr was expected.
var errUnrenamedSymbol = errors.New("symex: unrenamed symbol in SSA equation")

// Renamer performs SSA renaming of expressions in a GOTO program: L0
// resolves a bare declaration to the specific lexical declaration it
// refers to (disambiguating shadowed locals with the same source name),
// L1 tags it with the current call-frame instance, and L2 tags it with
// the most recent write's version within that instance.
//
// This engine's SymbolTable already interns one Symbol per distinct
// declaration (shadowing is resolved by the lowering step that produced
// the Program, mirroring CBMC's own assumption that its front end has
// already disambiguated declarations before goto-symex ever runs), so L0
// renaming here is the identity function on Symbol; Renamer's job is L1
// and L2.
type Renamer struct{}

// NewRenamer returns a new Renamer.
func NewRenamer() *Renamer { return &Renamer{} }

// RenameLevel0 resolves expr's declarations to the specific lexical
// declaration each refers to. This engine's SymbolTable interns one
// Symbol per distinct declaration before a Program is ever built, so L0
// resolution has already happened by construction and this is the
// identity function; it exists so Renamer's public surface names all
// three levels explicitly, matching how L1/L2 are named.
func (r *Renamer) RenameLevel0(expr Expr) Expr {
	return expr
}

// RenameLevel1 rewrites every SymbolExpr in expr into an SSASymbolExpr
// carrying frame's L1 instance tag and L2 version 0 (the symbol's value
// as of frame entry, before any writes in this instance).
func (r *Renamer) RenameLevel1(expr Expr, frame *StackFrame) Expr {
	return WalkExpr(&level1Visitor{l1: frame.L1}, expr)
}

type level1Visitor struct{ l1 uint32 }

func (v *level1Visitor) Visit(expr Expr) (Expr, ExprVisitor) {
	if sym, ok := expr.(*SymbolExpr); ok {
		return NewSSASymbolExpr(sym.Name, v.l1, 0, sym.Width), nil
	}
	return expr, v
}

// RenameLevel2 rewrites every SSASymbolExpr in expr to carry its current
// L2 version as tracked by thread, reading (not advancing) the version
// counter — a read never mints a new version, only an ASSIGN does.
func (r *Renamer) RenameLevel2(expr Expr, thread *ThreadState) Expr {
	return WalkExpr(&level2Visitor{thread: thread}, expr)
}

type level2Visitor struct{ thread *ThreadState }

func (v *level2Visitor) Visit(expr Expr) (Expr, ExprVisitor) {
	if sym, ok := expr.(*SSASymbolExpr); ok {
		l2 := v.thread.CurrentL2(sym.Name, sym.L1)
		return NewSSASymbolExpr(sym.Name, sym.L1, l2, sym.Width), nil
	}
	return expr, v
}

// FreshLevel2 rewrites every SSASymbolExpr in expr to a brand-new L2
// version on thread, the write-side counterpart of RenameLevel2. The
// interpreter's own writes (an ASSIGN's LHS, a quantifier's bound
// variable in vcc) mint their versions with ThreadState.NextL2 directly.
func (r *Renamer) FreshLevel2(expr Expr, thread *ThreadState) Expr {
	return WalkExpr(&freshLevel2Visitor{thread: thread}, expr)
}

type freshLevel2Visitor struct{ thread *ThreadState }

func (v *freshLevel2Visitor) Visit(expr Expr) (Expr, ExprVisitor) {
	if sym, ok := expr.(*SSASymbolExpr); ok {
		l2 := v.thread.NextL2(sym.Name, sym.L1, sym.Width)
		return NewSSASymbolExpr(sym.Name, sym.L1, l2, sym.Width), nil
	}
	return expr, v
}

// exprVisitorFunc adapts a plain function to the ExprVisitor interface.
type exprVisitorFunc func(Expr) (Expr, ExprVisitor)

func (f exprVisitorFunc) Visit(expr Expr) (Expr, ExprVisitor) { return f(expr) }

// Validate reports whether expr contains any un-renamed SymbolExpr, which
// would indicate a renaming pass was skipped. validate-ssa-equation uses
// this, in addition to Equation.Validate, to check every step's operands
// were fully SSA-renamed before being added to the equation.
func (r *Renamer) Validate(expr Expr) error {
	var err error
	var visit exprVisitorFunc
	visit = func(e Expr) (Expr, ExprVisitor) {
		if _, ok := e.(*SymbolExpr); ok {
			err = errUnrenamedSymbol
			return e, nil
		}
		return e, visit
	}
	WalkExpr(visit, expr)
	return err
}
