package symex

// Step executes exactly one instruction at state's current thread's
// program counter and advances the PC (or transfers control, for
// GOTO/FUNCTION_CALL/RETURN/THROW/CATCH), mirroring goto-symex's
// symex_step dispatch over every instruction kind named in the GOTO
// program taxonomy. Returns done=true if the whole run has terminated
// (no thread left runnable).
func (interp *Interpreter) Step(state *SymbolicState) (done bool, err error) {
	frame := state.Frame()
	if frame == nil {
		return true, nil
	}
	instr := interp.Program.Instr(state.PC())
	interp.steps++
	state.Depth++

	if state.Guard().IsFalse() {
		// Infeasible path: still release scoped resources so decls/
		// frames/atomic-section bookkeeping stay balanced, but skip any
		// semantic effect.
		interp.skipInfeasible(state, instr)
		return interp.advanceOrEnd(state, instr)
	}

	switch instr.Kind {
	case NoInstructionType:
		return false, ErrNoInstructionType

	case Skip, Location:
		state.SetPC(state.PC() + 1)

	case Decl:
		code := instr.Code.(DeclCode)
		frame.PushDecl(code.Symbol)
		if err := interp.appendStep(state, Step{Kind: StepDecl, Comment: interp.Symtab.Name(code.Symbol), Source: instr.Source}); err != nil {
			return false, err
		}
		state.SetPC(state.PC() + 1)

	case Dead:
		code := instr.Code.(DeadCode)
		frame.PopDead(code.Symbol)
		key := SSASymbolExpr{Name: code.Symbol, L1: frame.L1, L2: state.Thread().CurrentL2(code.Symbol, frame.L1)}
		state.ForgetPropagated(key)
		if err := interp.appendStep(state, Step{Kind: StepDead, Comment: interp.Symtab.Name(code.Symbol), Source: instr.Source}); err != nil {
			return false, err
		}
		state.SetPC(state.PC() + 1)

	case Assign:
		code := instr.Code.(AssignCode)
		if err := interp.symexAssign(state, code.LHS, code.RHS); err != nil {
			return false, err
		}
		state.SetPC(state.PC() + 1)

	case Assume:
		code := instr.Code.(AssumeCode)
		if err := interp.symexAssume(state, code.Condition); err != nil {
			return false, err
		}
		state.SetPC(state.PC() + 1)

	case Assert:
		code := instr.Code.(AssertCode)
		if err := interp.vcc(state, code.Condition, code.Comment, instr.Source); err != nil {
			return false, err
		}
		state.SetPC(state.PC() + 1)

	case Goto:
		if err := interp.symexGoto(state, instr); err != nil {
			return false, err
		}

	case FunctionCall:
		if err := interp.symexFunctionCall(state, instr); err != nil {
			return false, err
		}

	case Return:
		if err := interp.symexReturn(state, instr); err != nil {
			return false, err
		}

	case EndFunction:
		if err := interp.symexEndOfFunction(state); err != nil {
			return false, err
		}

	case Other:
		code := instr.Code.(OtherCode)
		interp.logf(2, "[symex] OTHER: %s", code.Statement)
		state.SetPC(state.PC() + 1)

	case StartThread:
		if err := interp.symexStartThread(state, instr); err != nil {
			return false, err
		}

	case EndThread:
		if err := interp.symexEndThread(state); err != nil {
			return false, err
		}

	case AtomicBegin:
		interp.symexAtomicBegin(state)
		state.SetPC(state.PC() + 1)

	case AtomicEnd:
		interp.symexAtomicEnd(state)
		state.SetPC(state.PC() + 1)

	case Catch:
		code := instr.Code.(CatchCode)
		frame.PushCatch(CatchTarget{Types: code.Types, Target: code.Target})
		state.SetPC(state.PC() + 1)

	case Throw:
		if err := interp.symexThrow(state, instr); err != nil {
			return false, err
		}

	default:
		return false, ErrNoInstructionType
	}

	if interp.Frame(state) == nil {
		return !interp.symexThreadedStep(state), nil
	}
	return false, nil
}

// skipInfeasible performs the bookkeeping that must happen even when a
// path is unreachable: DECL/DEAD still balance the frame's declaration
// stack, ATOMIC_BEGIN/END still balance the atomic-section depth, and
// the PC still advances so the dead path eventually reaches its
// END_FUNCTION/RETURN and unwinds instead of looping forever.
func (interp *Interpreter) skipInfeasible(state *SymbolicState, instr *Instruction) {
	frame := state.Frame()
	switch instr.Kind {
	case Decl:
		frame.PushDecl(instr.Code.(DeclCode).Symbol)
	case Dead:
		frame.PopDead(instr.Code.(DeadCode).Symbol)
	case AtomicBegin:
		state.Thread().AtomicSectionDepth++
	case AtomicEnd:
		if state.Thread().AtomicSectionDepth > 0 {
			state.Thread().AtomicSectionDepth--
		}
	}
}

// advanceOrEnd advances the PC for a skipped instruction, following
// GOTO's unconditional target if present so a dead branch doesn't
// silently fall through into live code.
func (interp *Interpreter) advanceOrEnd(state *SymbolicState, instr *Instruction) (bool, error) {
	switch instr.Kind {
	case Goto:
		code := instr.Code.(GotoCode)
		if len(code.Targets) > 0 {
			state.SetPC(code.Targets[0])
		} else {
			state.SetPC(state.PC() + 1)
		}
	case EndFunction:
		return interp.symexEndOfFunction(state) == nil && interp.Frame(state) == nil, nil
	default:
		state.SetPC(state.PC() + 1)
	}
	if interp.Frame(state) == nil {
		return !interp.symexThreadedStep(state), nil
	}
	return false, nil
}

// symexAssume records an ASSUME step and conjoins condition into the
// current thread's guard, after cleaning and L2-renaming it. If the
// resulting guard becomes false, subsequent steps on this thread are
// skipped (but not removed) until the thread ends or control merges
// with a feasible guard.
func (interp *Interpreter) symexAssume(state *SymbolicState, condition Expr) error {
	cleaned := interp.cleanAndRenameL2(state, condition)
	if err := interp.appendStep(state, Step{Kind: StepAssume, Cond: cleaned}); err != nil {
		return err
	}
	state.SetGuard(state.Guard().Add(cleaned))
	return nil
}

// vcc emits a verification condition: an ASSERT step whose recorded
// condition is `guard => condition`, so the step is vacuously satisfied
// on any path where guard does not hold. This is the engine's sole
// means of reporting a property obligation; it never itself decides
// satisfiability.
func (interp *Interpreter) vcc(state *SymbolicState, condition Expr, comment string, src SourceLocation) error {
	rewritten := interp.rewriteQuantifiers(state, condition)
	cleaned := interp.cleanAndRenameL2(state, rewritten)
	guarded := state.Guard().GuardExpr(cleaned)
	return interp.appendStep(state, Step{Kind: StepAssert, Cond: guarded, Comment: comment, Source: src})
}
