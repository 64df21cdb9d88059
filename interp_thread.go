package symex

// symexStartThread spawns a new cooperative thread sharing the caller's
// guard (threads share the propagation map already, by virtue of living
// in the same SymbolicState) but with its
// own call stack, rooted at the function named by the instruction's
// target PC. The new thread is appended to Threads; scheduling order
// among runnable threads is round-robin, decided by symexThreadedStep.
func (interp *Interpreter) symexStartThread(state *SymbolicState, instr *Instruction) error {
	code := instr.Code.(GotoCode)
	if len(code.Targets) == 0 {
		return &ErrUnsupportedOperation{Op: "symex_start_thread", Detail: "missing thread entry target"}
	}
	entryPC := code.Targets[0]

	caller := state.Frame()
	l1 := caller.L1
	frame := NewStackFrame(caller.Function, l1, -1, nil, findEndFunction(interp.Program, entryPC))
	frame.Hidden = true

	thread := NewThreadState(entryPC, state.Guard(), frame)
	state.Threads = append(state.Threads, thread)

	if err := interp.appendStep(state, Step{Kind: StepSpawn, Comment: "start_thread", Source: instr.Source}); err != nil {
		return err
	}

	state.SetPC(state.PC() + 1)
	return nil
}

// symexEndThread pops the thread's remaining frame (mirroring
// symexEndOfFunction's pop, minus any return-value plumbing, since a
// thread has no caller to resume) and marks the thread Ended so the
// scheduler permanently skips it. Its guard is left intact, still
// needed when later merges consult it.
func (interp *Interpreter) symexEndThread(state *SymbolicState) error {
	thread := state.Thread()
	frame := thread.PopFrame()

	// Unlike a FUNCTION_CALL frame, this one was never counted against
	// activeCalls (symexStartThread does not call checkRecursionBound),
	// so there is nothing to decrement here.

	for i := len(frame.decls) - 1; i >= 0; i-- {
		key := SSASymbolExpr{Name: frame.decls[i], L1: frame.L1, L2: thread.CurrentL2(frame.decls[i], frame.L1)}
		state.ForgetPropagated(key)
	}

	for i := len(frame.nondetDecls) - 1; i >= 0; i-- {
		sym := frame.nondetDecls[i]
		key := SSASymbolExpr{Name: sym, L1: frame.L1, L2: thread.CurrentL2(sym, frame.L1)}
		state.ForgetPropagated(key)
		if err := interp.appendStep(state, Step{Kind: StepDead, Comment: interp.Symtab.Name(sym)}); err != nil {
			return err
		}
	}

	thread.Ended = true
	return nil
}

// symexAtomicBegin opens an atomic section: while AtomicSectionDepth is
// positive, symexThreadedStep will not switch away from this thread,
// mirroring goto-symex's treatment of ATOMIC_BEGIN/ATOMIC_END as a
// scheduling fence rather than a semantic effect on any variable.
func (interp *Interpreter) symexAtomicBegin(state *SymbolicState) {
	state.Thread().AtomicSectionDepth++
}

// symexAtomicEnd closes one level of atomic section.
func (interp *Interpreter) symexAtomicEnd(state *SymbolicState) {
	thread := state.Thread()
	if thread.AtomicSectionDepth > 0 {
		thread.AtomicSectionDepth--
	}
}

// symexThreadedStep is called whenever the currently active thread has
// run out of frames (it executed its END_FUNCTION/END_THREAD and popped
// its last frame) and also whenever Step wants to know if execution has
// fully terminated. It switches state.Active to the next runnable thread
// — the first one, in round-robin order starting after the current
// thread, that is not Ended and has at least one frame — and returns true
// if one was found. AtomicSectionDepth is not consulted here.
func (interp *Interpreter) symexThreadedStep(state *SymbolicState) bool {
	current := state.Active
	n := len(state.Threads)
	for offset := 1; offset <= n; offset++ {
		idx := (current + offset) % n
		t := state.Threads[idx]
		if t.Ended || t.TopFrame() == nil {
			continue
		}
		state.Active = idx
		return true
	}
	return false
}
