package symex

// ValueSet approximates the set of objects a pointer-typed expression may
// point to at a given program point. The interpreter consults a ValueSet
// to lower dereferences into guarded if-then-else chains over candidate
// targets; it never computes points-to information itself.
//
// Concrete points-to analysis is out of scope: callers inject an
// implementation (flow-insensitive, flow-sensitive, or a trivial
// single-target stub for testing) through Options.ValueSets.
type ValueSet interface {
	// Targets returns the objects pointer may refer to at state. Each
	// target is itself an expression denoting the base address of an
	// object; the caller builds Offset logic around it.
	Targets(state *SymbolicState, pointer Expr) []Expr
}

// DirtyVariables reports which program variables may have had their
// address taken and stored outside of the current scope, meaning writes
// to them can alias through pointers the engine cannot enumerate
// precisely. Symbols the interpreter cannot prove clean are treated
// conservatively when propagation is enabled.
type DirtyVariables interface {
	// IsDirty reports whether sym may be aliased.
	IsDirty(sym Symbol) bool
}

// alwaysCleanDirtyVariables is the default DirtyVariables implementation
// used when Options.Dirty is nil: it assumes no variable is dirty, which
// is sound only when the caller's GOTO program never takes the address of
// a local that outlives its frame. Options.Dirty should be set to a real
// analysis for any program that takes addresses of locals.
type alwaysCleanDirtyVariables struct{}

func (alwaysCleanDirtyVariables) IsDirty(Symbol) bool { return false }

// emptyValueSet is the default ValueSet implementation used when
// Options.ValueSets is nil. It reports no targets for any pointer, which
// causes the expression cleaner to fall back to failed_object semantics,
// preceded by an ASSERT false verification condition unless
// AllowPointerUnsoundness is set.
type emptyValueSet struct{}

func (emptyValueSet) Targets(*SymbolicState, Expr) []Expr { return nil }
