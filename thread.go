package symex

// ThreadState is one cooperative thread of execution within a
// SymbolicState. Thread 0 always exists and represents the entry point's
// initial thread; START_THREAD appends new entries.
type ThreadState struct {
	PC    int
	Guard Guard

	// Stack is this thread's call stack, outermost frame first.
	Stack []*StackFrame

	// AtomicSectionDepth counts nested ATOMIC_BEGIN/ATOMIC_END pairs;
	// the scheduler never switches away from a thread while it is
	// positive.
	AtomicSectionDepth int

	// l2 is this thread's next-version counter per SSA symbol base
	// (name, L1), used to mint fresh SSASymbolExpr versions on write.
	l2 map[l2Key]uint32

	// widths records the declared width of each SSA symbol base
	// (name, L1) as of its most recent write, so a later φ-merge can
	// look up the right width instead of guessing one.
	widths map[l2Key]uint

	// Ended marks a thread that has taken END_THREAD; the scheduler
	// skips it permanently.
	Ended bool
}

type l2Key struct {
	Name Symbol
	L1   uint32
}

// NewThreadState returns a new thread starting at pc with the given
// initial guard and outermost frame.
func NewThreadState(pc int, guard Guard, frame *StackFrame) *ThreadState {
	return &ThreadState{
		PC:     pc,
		Guard:  guard,
		Stack:  []*StackFrame{frame},
		l2:     make(map[l2Key]uint32),
		widths: make(map[l2Key]uint),
	}
}

// Clone returns a deep-enough copy for use in a forked SymbolicState.
func (t *ThreadState) Clone() *ThreadState {
	clone := &ThreadState{
		PC:                 t.PC,
		Guard:              t.Guard,
		AtomicSectionDepth: t.AtomicSectionDepth,
		Ended:              t.Ended,
		l2:                 make(map[l2Key]uint32, len(t.l2)),
		widths:             make(map[l2Key]uint, len(t.widths)),
		Stack:              make([]*StackFrame, len(t.Stack)),
	}
	for k, v := range t.l2 {
		clone.l2[k] = v
	}
	for k, v := range t.widths {
		clone.widths[k] = v
	}
	for i, f := range t.Stack {
		clone.Stack[i] = f.Clone()
	}
	return clone
}

// TopFrame returns the innermost stack frame, or nil if the stack is
// empty (the thread has returned from its entry function).
func (t *ThreadState) TopFrame() *StackFrame {
	if len(t.Stack) == 0 {
		return nil
	}
	return t.Stack[len(t.Stack)-1]
}

// PushFrame pushes a new innermost frame.
func (t *ThreadState) PushFrame(f *StackFrame) {
	t.Stack = append(t.Stack, f)
}

// PopFrame removes and returns the innermost frame.
func (t *ThreadState) PopFrame() *StackFrame {
	f := t.Stack[len(t.Stack)-1]
	t.Stack = t.Stack[:len(t.Stack)-1]
	return f
}

// NextL2 mints and returns the next L2 version for (name, l1), starting
// at 1 (L2 version 0 is reserved for the symbol's as-yet-unwritten
// initial value). width is the declared width of the symbol being
// written, recorded so a later φ-merge can look it up via WidthOf
// instead of guessing one.
func (t *ThreadState) NextL2(name Symbol, l1 uint32, width uint) uint32 {
	key := l2Key{Name: name, L1: l1}
	next := t.l2[key] + 1
	t.l2[key] = next
	t.widths[key] = width
	return next
}

// CurrentL2 returns the current L2 version for (name, l1) without
// advancing it.
func (t *ThreadState) CurrentL2(name Symbol, l1 uint32) uint32 {
	return t.l2[l2Key{Name: name, L1: l1}]
}

// WidthOf returns the declared width last recorded for (name, l1) by
// NextL2, or ok=false if the symbol has never been written on this
// thread.
func (t *ThreadState) WidthOf(name Symbol, l1 uint32) (uint, bool) {
	w, ok := t.widths[l2Key{Name: name, L1: l1}]
	return w, ok
}
