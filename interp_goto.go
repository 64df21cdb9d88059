package symex

// symexGoto handles a GOTO instruction: computing the cleaned condition,
// checking the per-loop unwind bound if this is a backwards edge, and
// then either forking eagerly (default mode) or pushing the not-taken
// branch onto path storage and pausing (Options.Paths).
func (interp *Interpreter) symexGoto(state *SymbolicState, instr *Instruction) error {
	code := instr.Code.(GotoCode)

	if instr.LoopHead != 0 && interp.isBackwardsEdge(instr) {
		stop, err := interp.handleLoopBound(state, instr)
		if err != nil {
			return err
		}
		if stop {
			return nil // handleLoopBound already redirected the PC
		}
	}

	if code.Condition == nil {
		state.SetPC(code.Targets[0])
		return nil
	}

	cond := interp.cleanAndRenameL2(state, code.Condition)
	if c, ok := cond.(*ConstantExpr); ok {
		if c.IsTrue() {
			state.SetPC(code.Targets[0])
		} else {
			state.SetPC(state.PC() + 1)
		}
		return nil
	}

	if interp.Options.Paths {
		return interp.symexGotoPathExploration(state, cond, code.Targets[0])
	}
	return interp.symexGotoEagerMerge(state, cond, code.Targets[0])
}

// isBackwardsEdge reports whether instr's GOTO target is at or before
// its own program counter.
func (interp *Interpreter) isBackwardsEdge(instr *Instruction) bool {
	code := instr.Code.(GotoCode)
	for _, t := range code.Targets {
		if t <= instr.PC {
			return true
		}
	}
	return false
}

// handleLoopBound increments the current frame's iteration counter for
// this loop head and, if the bound configured for it is exceeded,
// applies PartialLoops/UnwindingAssertions semantics instead of taking
// the backwards edge. Returns stop=true if the caller should not
// proceed with the normal GOTO semantics (the PC was already set).
func (interp *Interpreter) handleLoopBound(state *SymbolicState, instr *Instruction) (bool, error) {
	frame := state.Frame()
	counter := frame.loopCounter(instr.LoopHead)
	counter.Iterations++

	bound := interp.Options.UnwindBound
	if b, ok := interp.Options.UnwindBounds[instr.LoopHead]; ok {
		bound = b
	}
	if bound <= 0 || counter.Iterations <= bound {
		return false, nil
	}

	interp.logf(1, "[symex] unwind bound %d exceeded for loop %d", bound, instr.LoopHead)

	if interp.Options.SelfLoopsToAssumptions && isSelfLoop(instr) {
		if err := interp.symexAssume(state, NewBoolConstantExpr(false)); err != nil {
			return true, err
		}
		state.SetPC(state.PC() + 1)
		return true, nil
	}

	if interp.Options.PartialLoops {
		state.SetPC(state.PC() + 1) // cut the back-edge silently
		return true, nil
	}

	if interp.Options.UnwindingAssertions {
		if err := interp.vcc(state, NewBoolConstantExpr(false), "unwinding assertion loop "+instr.Kind.String(), instr.Source); err != nil {
			return true, err
		}
	} else {
		if err := interp.symexAssume(state, NewBoolConstantExpr(false)); err != nil {
			return true, err
		}
	}
	state.SetPC(state.PC() + 1)
	return true, nil
}

func isSelfLoop(instr *Instruction) bool {
	code := instr.Code.(GotoCode)
	for _, t := range code.Targets {
		if t == instr.PC {
			return true
		}
	}
	return false
}

// symexGotoEagerMerge is the default-mode GOTO handling: the state is
// cloned, the taken-branch guard is conjoined onto the clone and queued
// under mergePending for its target PC, and the not-taken branch
// continues in place (the receiver state) with its own guard conjoined.
// The queued clone is merged back in by MergeGotos when the continuing
// state reaches the target PC (see Run).
func (interp *Interpreter) symexGotoEagerMerge(state *SymbolicState, cond Expr, target int) error {
	taken := state.Fork(cond)
	taken.SetPC(target)
	interp.mergePending[target] = append(interp.mergePending[target], taken)

	state.SetGuard(state.Guard().Add(NewNotExpr(cond)))
	state.SetPC(state.PC() + 1)
	return nil
}

// symexGotoPathExploration is path-exploration-mode GOTO handling: the
// not-taken branch is parked as a SavedState for later resumption, and
// the receiver state continues down the taken branch immediately,
// pausing symbolic execution (shouldPauseSymex) so the caller can decide
// whether to resume the saved path now or later.
func (interp *Interpreter) symexGotoPathExploration(state *SymbolicState, cond Expr, target int) error {
	notTaken := state.Fork(NewNotExpr(cond))
	state.PushSavedJumpTarget(&SavedState{State: notTaken, PC: state.PC() + 1})

	state.SetGuard(state.Guard().Add(cond))
	state.SetPC(target)
	interp.shouldPauseSymex = true
	return nil
}

// MergeGotos merges every state queued under mergePending[pc] into base,
// which must already be positioned at pc, producing the φ-function steps
// goto-symex calls merge_goto: for every SSA symbol whose L2 version
// differs between base and an incoming state, emit
// `x_fresh := ite(incoming.guard, x_incoming, x_base)`, union the two
// guards, and continue with the merged state as the sole survivor at pc.
func (interp *Interpreter) MergeGotos(base *SymbolicState, pc int) error {
	incoming := interp.mergePending[pc]
	delete(interp.mergePending, pc)

	for _, other := range incoming {
		if err := interp.mergeGoto(base, other); err != nil {
			return err
		}
	}
	return nil
}

// mergeGoto merges other into base in place. base and other must denote
// the same thread/PC; every variable base's thread has ever written gets
// a phi step if its current L2 version differs between the two.
func (interp *Interpreter) mergeGoto(base, other *SymbolicState) error {
	baseThread, otherThread := base.Thread(), other.Thread()
	baseGuardExpr, otherGuardExpr := baseThread.Guard.AsExpr(), otherThread.Guard.AsExpr()

	seen := map[l2Key]bool{}
	for key := range baseThread.l2 {
		seen[key] = true
	}
	for key := range otherThread.l2 {
		seen[key] = true
	}

	for key := range seen {
		baseL2 := baseThread.l2[key]
		otherL2 := otherThread.l2[key]
		if baseL2 == otherL2 {
			continue
		}
		width, ok := baseThread.WidthOf(key.Name, key.L1)
		if !ok {
			width, ok = otherThread.WidthOf(key.Name, key.L1)
		}
		if !ok {
			width = Width64 // neither branch ever wrote it; fall back rather than fail the merge.
		}
		baseVal := NewSSASymbolExpr(key.Name, key.L1, baseL2, width)
		otherVal := NewSSASymbolExpr(key.Name, key.L1, otherL2, width)
		fresh := baseThread.NextL2(key.Name, key.L1, width)
		merged := NewSSASymbolExpr(key.Name, key.L1, fresh, width)

		phi := NewIfExpr(otherThread.Guard.AsExpr(), otherVal, baseVal)
		if err := interp.appendStep(base, Step{Kind: StepAssign, LHS: merged, RHS: phi}); err != nil {
			return err
		}
	}

	baseThread.Guard = NewGuard().Add(NewBinaryExpr(OR, baseGuardExpr, otherGuardExpr))
	return nil
}
