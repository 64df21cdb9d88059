package symex

// CatchTarget is one entry of a frame's active-handler stack, pushed by a
// CATCH instruction and consulted by THROW.
type CatchTarget struct {
	Types  []Symbol
	Target int
}

// LoopCounter tracks how many times a particular backwards GOTO has been
// taken within the current frame instance, for unwind-bound checking.
type LoopCounter struct {
	Iterations int
}

// StackFrame is one activation record on a SymbolicState's call stack. It
// owns the L1 instance tag that distinguishes this call's local variables
// from any other concurrently-live call to the same function (recursion,
// or the same function called from two different threads).
type StackFrame struct {
	Function Symbol
	L1       uint32

	// ReturnPC is where control resumes in the caller after this frame's
	// END_FUNCTION step, or -1 for the outermost frame of a thread.
	ReturnPC int
	// ReturnLHS receives the callee's return value, if any.
	ReturnLHS Expr
	// ReturnValue holds the cleaned value a RETURN instruction computed,
	// staged here until the frame's END_FUNCTION step pops the frame and
	// assigns it into the caller's ReturnLHS.
	ReturnValue Expr
	// EndPC is this frame's END_FUNCTION instruction's program counter.
	EndPC int

	// Hidden marks a frame synthesized by the interpreter itself
	// (e.g. a function pointer's ite-dispatch wrapper) rather than a
	// frame the source program's call graph would show a user.
	Hidden bool

	// decls is a stack of Symbols DECLared in this frame, popped by DEAD
	// or by the frame's own end-of-function cleanup.
	decls []Symbol

	// nondetDecls holds the fresh SSA symbols minted for non-deterministic
	// choices (SideEffectExpr) encountered while executing this frame.
	// Each got its own DECL step at mint time; the frame's own
	// end-of-function cleanup emits the matching DEAD.
	nondetDecls []Symbol

	// loopIterations tracks unwind progress per loop head, keyed by the
	// head instruction's LoopID, scoped to this frame instance so that
	// recursive calls each get a fresh counter.
	loopIterations map[LoopID]*LoopCounter

	// catchTargets is the stack of active exception handlers, most
	// recently pushed CATCH on top.
	catchTargets []CatchTarget
}

// NewStackFrame returns a new frame for an invocation of function with L1
// instance tag l1.
func NewStackFrame(function Symbol, l1 uint32, returnPC int, returnLHS Expr, endPC int) *StackFrame {
	return &StackFrame{
		Function:       function,
		L1:             l1,
		ReturnPC:       returnPC,
		ReturnLHS:      returnLHS,
		EndPC:          endPC,
		loopIterations: make(map[LoopID]*LoopCounter),
	}
}

// Clone returns a deep-enough copy of the frame for use in a forked
// state: decls/loopIterations/catchTargets are independent slices/maps so
// mutating the clone never affects the original.
func (f *StackFrame) Clone() *StackFrame {
	clone := &StackFrame{
		Function:    f.Function,
		L1:          f.L1,
		ReturnPC:    f.ReturnPC,
		ReturnLHS:   f.ReturnLHS,
		ReturnValue: f.ReturnValue,
		EndPC:       f.EndPC,
		Hidden:      f.Hidden,
	}
	if len(f.decls) > 0 {
		clone.decls = append([]Symbol(nil), f.decls...)
	}
	if len(f.nondetDecls) > 0 {
		clone.nondetDecls = append([]Symbol(nil), f.nondetDecls...)
	}
	if len(f.loopIterations) > 0 {
		clone.loopIterations = make(map[LoopID]*LoopCounter, len(f.loopIterations))
		for id, counter := range f.loopIterations {
			c := *counter
			clone.loopIterations[id] = &c
		}
	} else {
		clone.loopIterations = make(map[LoopID]*LoopCounter)
	}
	if len(f.catchTargets) > 0 {
		clone.catchTargets = append([]CatchTarget(nil), f.catchTargets...)
	}
	return clone
}

// PushDecl records sym as declared in this frame's current scope.
func (f *StackFrame) PushDecl(sym Symbol) {
	f.decls = append(f.decls, sym)
}

// PopDead removes the most recent declaration of sym, if present,
// mirroring the usual DECL/DEAD nesting; falls back to scanning the
// whole stack for out-of-order DEAD (which CBMC also tolerates).
func (f *StackFrame) PopDead(sym Symbol) {
	for i := len(f.decls) - 1; i >= 0; i-- {
		if f.decls[i] == sym {
			f.decls = append(f.decls[:i], f.decls[i+1:]...)
			return
		}
	}
}

// loopCounter returns the (possibly newly created) counter for id.
func (f *StackFrame) loopCounter(id LoopID) *LoopCounter {
	c, ok := f.loopIterations[id]
	if !ok {
		c = &LoopCounter{}
		f.loopIterations[id] = c
	}
	return c
}

// PushNondetDecl records sym as a fresh non-deterministic symbol minted
// while executing this frame, for DEAD release at end of function.
func (f *StackFrame) PushNondetDecl(sym Symbol) {
	f.nondetDecls = append(f.nondetDecls, sym)
}

// PushCatch pushes a new active handler target.
func (f *StackFrame) PushCatch(target CatchTarget) {
	f.catchTargets = append(f.catchTargets, target)
}

// FindCatch searches the active handler stack, most recent first, for a
// target that handles typ. Returns ok=false if none matches.
func (f *StackFrame) FindCatch(typ Symbol) (CatchTarget, bool) {
	for i := len(f.catchTargets) - 1; i >= 0; i-- {
		for _, t := range f.catchTargets[i].Types {
			if t == typ {
				return f.catchTargets[i], true
			}
		}
	}
	return CatchTarget{}, false
}
