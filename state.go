package symex

import (
	"bytes"
	"fmt"

	"github.com/benbjohnson/immutable"
)

// SymbolicState is one path under exploration: a full snapshot of every
// thread's program counter and guard, and the propagation cache, cheap
// to clone because its maps are persistent (structural sharing via
// benbjohnson/immutable rather than deep copy).
type SymbolicState struct {
	id int

	// Symtab mints fresh declarations introduced dynamically during
	// execution (non-deterministic choice, loop bound temporaries).
	Symtab *SymbolTable

	// Threads holds every cooperative thread spawned so far; Threads[0]
	// is the entry point's thread. Active is the index of the thread
	// currently being stepped.
	Threads []*ThreadState
	Active  int

	// propagation maps an SSA symbol to the constant expression last
	// assigned to it, consulted only when Options.Propagation is set.
	propagation *immutable.Map

	// dirty is the injected may-alias analysis consulted before trusting
	// a propagated value: a symbol it reports dirty may have been
	// written through a pointer alias this engine's value-set couldn't
	// enumerate. nil means "nothing has been injected yet", treated the
	// same as alwaysCleanDirtyVariables by Dirty().
	dirty DirtyVariables

	// valueSetOverrides lets callers seed or refine a ValueSet's answer
	// for a specific symbol without replacing the whole ValueSet
	// implementation; consulted before the injected ValueSet.
	valueSetOverrides map[Symbol][]Expr

	// savedJumpTargets is the worklist of not-yet-explored GOTO
	// successors accumulated in path-exploration mode.
	savedJumpTargets []*SavedState

	// Depth is the number of interpreter steps taken so far along this
	// path, checked against Options.Depth.
	Depth int

	totalVCCs     int
	remainingVCCs int
}

// SavedState is a suspended continuation: a GOTO's not-taken successor,
// parked on a state's savedJumpTargets for later resumption in
// path-exploration mode.
type SavedState struct {
	State *SymbolicState
	PC    int
}

var ssaSymbolHasher ssaSymbolExprHasher

// ssaSymbolExprHasher hashes and compares SSASymbolExpr values so they can
// key an immutable.Map. Implements immutable.Hasher.
type ssaSymbolExprHasher struct{}

func (ssaSymbolExprHasher) Hash(value interface{}) uint32 {
	k := value.(SSASymbolExpr)
	h := uint32(2166136261)
	for _, b := range [...]uint32{uint32(k.Name), k.L1, k.L2} {
		h ^= b
		h *= 16777619
	}
	return h
}

func (ssaSymbolExprHasher) Equal(a, b interface{}) bool {
	return a.(SSASymbolExpr) == b.(SSASymbolExpr)
}

// NewSymbolicState returns the initial state for symbolic execution of
// the function at entryPC.
func NewSymbolicState(symtab *SymbolTable, entryFunction Symbol, entryPC, endPC int) *SymbolicState {
	frame := NewStackFrame(entryFunction, 1, -1, nil, endPC)
	return &SymbolicState{
		Symtab:      symtab,
		Threads:     []*ThreadState{NewThreadState(entryPC, NewGuard(), frame)},
		Active:      0,
		propagation: immutable.NewMap(ssaSymbolHasher),
	}
}

// Thread returns the currently active thread.
func (s *SymbolicState) Thread() *ThreadState {
	return s.Threads[s.Active]
}

// Frame returns the current thread's innermost stack frame.
func (s *SymbolicState) Frame() *StackFrame {
	return s.Thread().TopFrame()
}

// Guard returns the current thread's guard.
func (s *SymbolicState) Guard() Guard {
	return s.Thread().Guard
}

// SetGuard replaces the current thread's guard.
func (s *SymbolicState) SetGuard(g Guard) {
	s.Thread().Guard = g
}

// PC returns the current thread's program counter.
func (s *SymbolicState) PC() int {
	return s.Thread().PC
}

// SetPC sets the current thread's program counter.
func (s *SymbolicState) SetPC(pc int) {
	s.Thread().PC = pc
}

// Clone returns a deep-enough copy of the state for forking: threads and
// their frames are copied (so each fork's call stack and loop counters
// are independent), while the propagation map is a shared persistent
// structure that only diverges on the next write.
func (s *SymbolicState) Clone() *SymbolicState {
	threads := make([]*ThreadState, len(s.Threads))
	for i, t := range s.Threads {
		threads[i] = t.Clone()
	}

	var overrides map[Symbol][]Expr
	if len(s.valueSetOverrides) > 0 {
		overrides = make(map[Symbol][]Expr, len(s.valueSetOverrides))
		for k, v := range s.valueSetOverrides {
			overrides[k] = v
		}
	}

	return &SymbolicState{
		Symtab:            s.Symtab,
		Threads:           threads,
		Active:            s.Active,
		propagation:       s.propagation,
		dirty:             s.dirty,
		valueSetOverrides: overrides,
		Depth:             s.Depth,
		totalVCCs:         s.totalVCCs,
		remainingVCCs:     s.remainingVCCs,
	}
}

// Fork returns a clone of s with constraint additionally conjoined into
// the current thread's guard. Used by symexGoto to split execution at a
// conditional branch in eager-merge mode.
func (s *SymbolicState) Fork(constraint Expr) *SymbolicState {
	child := s.Clone()
	if constraint != nil {
		child.SetGuard(child.Guard().Add(constraint))
	}
	return child
}

// PushSavedJumpTarget parks a suspended continuation for later resumption
// in path-exploration mode.
func (s *SymbolicState) PushSavedJumpTarget(saved *SavedState) {
	s.savedJumpTargets = append(s.savedJumpTargets, saved)
}

// PopSavedJumpTarget removes and returns the most recently parked
// continuation, or nil if none remain.
func (s *SymbolicState) PopSavedJumpTarget() *SavedState {
	if len(s.savedJumpTargets) == 0 {
		return nil
	}
	n := len(s.savedJumpTargets) - 1
	saved := s.savedJumpTargets[n]
	s.savedJumpTargets = s.savedJumpTargets[:n]
	return saved
}

// Propagate records that the SSA symbol key now carries the constant
// value, for substitution at later reads. Only meaningful when
// Options.Propagation is set; callers elsewhere must not rely on it.
func (s *SymbolicState) Propagate(key SSASymbolExpr, value *ConstantExpr) {
	s.propagation = s.propagation.Set(key, value)
}

// Propagated returns the propagated constant for key, if any.
func (s *SymbolicState) Propagated(key SSASymbolExpr) (*ConstantExpr, bool) {
	v, ok := s.propagation.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*ConstantExpr), true
}

// ForgetPropagated removes any propagated value for key, used when a
// variable is DEAD or reassigned non-constantly.
func (s *SymbolicState) ForgetPropagated(key SSASymbolExpr) {
	s.propagation = s.propagation.Delete(key)
}

// SetDirty injects the may-alias analysis NewInterpreter seeds from
// Options.Dirty.
func (s *SymbolicState) SetDirty(d DirtyVariables) {
	s.dirty = d
}

// Dirty returns the injected may-alias analysis, or a conservative
// always-clean stub if none was injected.
func (s *SymbolicState) Dirty() DirtyVariables {
	if s.dirty != nil {
		return s.dirty
	}
	return alwaysCleanDirtyVariables{}
}

// SetValueSetOverride seeds the targets a pointer symbol may refer to,
// consulted by the expression cleaner before the injected ValueSet.
func (s *SymbolicState) SetValueSetOverride(sym Symbol, targets []Expr) {
	if s.valueSetOverrides == nil {
		s.valueSetOverrides = make(map[Symbol][]Expr)
	}
	s.valueSetOverrides[sym] = targets
}

// ValueSetOverride returns the overridden targets for sym, if any.
func (s *SymbolicState) ValueSetOverride(sym Symbol) ([]Expr, bool) {
	targets, ok := s.valueSetOverrides[sym]
	return targets, ok
}

// Dump returns a human-readable rendering of the state, one section per
// thread, for diagnostics.
func (s *SymbolicState) Dump() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "STATE depth=%d\n", s.Depth)
	for i, t := range s.Threads {
		fmt.Fprintf(&buf, "== THREAD %d pc=%d guard=%s\n", i, t.PC, t.Guard)
		for j := len(t.Stack) - 1; j >= 0; j-- {
			fmt.Fprintf(&buf, "  frame %d: %s!%d\n", j, s.Symtab.Name(t.Stack[j].Function), t.Stack[j].L1)
		}
	}
	return buf.String()
}
