package symex

import "fmt"

// Symbol is an interned program identifier. Two symbols are equal iff they
// were interned from the same name by the same SymbolTable.
type Symbol uint32

// SymbolExpr represents an L0 reference to a program variable: the bare
// declared identifier, before any SSA renaming has been applied.
type SymbolExpr struct {
	Name  Symbol
	Width uint
}

// NewSymbolExpr returns a new instance of SymbolExpr.
func NewSymbolExpr(name Symbol, width uint) *SymbolExpr {
	return &SymbolExpr{Name: name, Width: width}
}

// String returns the string representation of the expression.
func (e *SymbolExpr) String() string {
	return fmt.Sprintf("%s", symbolName(e.Name))
}

// SSASymbolExpr represents a fully SSA-renamed reference to a program
// variable: the (name, L1, L2) triple described by the renaming scheme.
// Two SSASymbolExprs denote the same value iff all three fields match.
type SSASymbolExpr struct {
	Name  Symbol
	L1    uint32
	L2    uint32
	Width uint
}

// NewSSASymbolExpr returns a new instance of SSASymbolExpr.
func NewSSASymbolExpr(name Symbol, l1, l2 uint32, width uint) *SSASymbolExpr {
	return &SSASymbolExpr{Name: name, L1: l1, L2: l2, Width: width}
}

// String returns the string representation of the expression.
func (e *SSASymbolExpr) String() string {
	return fmt.Sprintf("%s!%d@%d", symbolName(e.Name), e.L1, e.L2)
}

// IfExpr represents a ternary if-then-else expression. It is the explicit
// analogue of the implicit ite chains produced by Array update compaction,
// used for pointer dereference lowering and goto-merge phi-functions.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

// NewIfExpr returns a new instance of IfExpr, folding constant conditions
// and collapsing a no-op branch (then == else).
func NewIfExpr(cond, then, els Expr) Expr {
	if c, ok := cond.(*ConstantExpr); ok {
		if c.IsTrue() {
			return then
		}
		return els
	}
	if CompareExpr(then, els) == 0 {
		return then
	}
	return &IfExpr{Cond: cond, Then: then, Else: els}
}

// String returns the string representation of the expression.
func (e *IfExpr) String() string {
	return fmt.Sprintf("(if %s %s %s)", e.Cond, e.Then, e.Else)
}

// MemberExpr addresses a struct field of Base by numeric offset. Used by
// symexAssign's recursive descent when the lhs shape is a struct member.
type MemberExpr struct {
	Base  Expr
	Field uint
	Width uint
}

// NewMemberExpr returns a new instance of MemberExpr.
func NewMemberExpr(base Expr, field, width uint) *MemberExpr {
	return &MemberExpr{Base: base, Field: field, Width: width}
}

// String returns the string representation of the expression.
func (e *MemberExpr) String() string {
	return fmt.Sprintf("(member %s %d)", e.Base, e.Field)
}

// IndexExpr addresses an element of an array-typed Base by symbolic Index.
// symexAssign lowers `a[i] := v` into `a := with(a, i, v)`, of which this
// is the read-side counterpart.
type IndexExpr struct {
	Base  Expr
	Index Expr
	Width uint
}

// NewIndexExpr returns a new instance of IndexExpr.
func NewIndexExpr(base, index Expr, width uint) *IndexExpr {
	return &IndexExpr{Base: base, Index: index, Width: width}
}

// String returns the string representation of the expression.
func (e *IndexExpr) String() string {
	return fmt.Sprintf("(index %s %s)", e.Base, e.Index)
}

// AddressOfExpr represents the address of an lvalue operand.
type AddressOfExpr struct {
	Operand Expr
}

// NewAddressOfExpr returns a new instance of AddressOfExpr.
func NewAddressOfExpr(operand Expr) *AddressOfExpr {
	return &AddressOfExpr{Operand: operand}
}

// String returns the string representation of the expression.
func (e *AddressOfExpr) String() string {
	return fmt.Sprintf("(address-of %s)", e.Operand)
}

// DereferenceExpr represents *Pointer before the expression cleaner has
// lowered it to a value-set-driven guarded if-then-else chain.
type DereferenceExpr struct {
	Pointer Expr
	Width   uint
}

// NewDereferenceExpr returns a new instance of DereferenceExpr.
func NewDereferenceExpr(pointer Expr, width uint) *DereferenceExpr {
	return &DereferenceExpr{Pointer: pointer, Width: width}
}

// String returns the string representation of the expression.
func (e *DereferenceExpr) String() string {
	return fmt.Sprintf("(dereference %s)", e.Pointer)
}

// QuantifierKind distinguishes universal from existential quantification.
type QuantifierKind int

const (
	// Forall represents universal quantification.
	Forall QuantifierKind = iota
	// Exists represents existential quantification.
	Exists
)

// String returns the string representation of the quantifier kind.
func (k QuantifierKind) String() string {
	if k == Forall {
		return "forall"
	}
	return "exists"
}

// QuantifierExpr represents a quantified boolean expression. vcc rewrites
// these before emission: a NOT wrapping a quantifier is pushed inward
// (NOT(forall x. P) becomes exists x. NOT P, and vice versa) and the
// bound variable is given a fresh SSA version distinct from any outer
// binding of the same source name. See rewriteQuantifiers.
type QuantifierExpr struct {
	Kind  QuantifierKind
	Bound Symbol
	Body  Expr
}

// NewQuantifierExpr returns a new instance of QuantifierExpr.
func NewQuantifierExpr(kind QuantifierKind, bound Symbol, body Expr) *QuantifierExpr {
	return &QuantifierExpr{Kind: kind, Bound: bound, Body: body}
}

// String returns the string representation of the expression.
func (e *QuantifierExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Kind, symbolName(e.Bound), e.Body)
}

// ArrayUpdateExpr represents the functional update `with(Base, Index,
// Value)` produced by lowering `a[i] := v` on the write side. Distinct
// from the byte-addressable Array/ArrayUpdate heap model: this is a
// whole-value update of an SSA-level array-typed variable.
type ArrayUpdateExpr struct {
	Base  Expr
	Index Expr
	Value Expr
	Width uint
}

// NewArrayWithExpr returns a new instance of ArrayUpdateExpr.
func NewArrayWithExpr(base, index, value Expr, width uint) Expr {
	return &ArrayUpdateExpr{Base: base, Index: index, Value: value, Width: width}
}

// String returns the string representation of the expression.
func (e *ArrayUpdateExpr) String() string {
	return fmt.Sprintf("(with %s %s %s)", e.Base, e.Index, e.Value)
}

// StructUpdateExpr represents the functional update `with-member(Base,
// Field, Value)` produced by lowering `a.f := v` on the write side.
type StructUpdateExpr struct {
	Base  Expr
	Field uint
	Value Expr
	Width uint
}

// NewMemberStoreExpr returns a new instance of StructUpdateExpr.
func NewMemberStoreExpr(base Expr, field, width uint, value Expr) Expr {
	return &StructUpdateExpr{Base: base, Field: field, Width: width, Value: value}
}

// String returns the string representation of the expression.
func (e *StructUpdateExpr) String() string {
	return fmt.Sprintf("(with-member %s %d %s)", e.Base, e.Field, e.Value)
}

// SideEffectExpr represents a non-deterministic choice (nondet()). The
// expression cleaner replaces every occurrence with a fresh SSA symbol via
// an implicit DECL, so no SideEffectExpr should ever reach the equation.
type SideEffectExpr struct {
	ID    uint64
	Width uint
}

// NewSideEffectExpr returns a new instance of SideEffectExpr.
func NewSideEffectExpr(id uint64, width uint) *SideEffectExpr {
	return &SideEffectExpr{ID: id, Width: width}
}

// String returns the string representation of the expression.
func (e *SideEffectExpr) String() string {
	return fmt.Sprintf("(nondet #%d %d)", e.ID, e.Width)
}
