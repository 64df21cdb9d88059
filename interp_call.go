package symex

// symexFunctionCall implements a direct or function-pointer call:
// argument evaluation, the recursion-bound check, a fresh L1 instance
// for the callee, parameter-to-argument assignment, and pushing the new
// frame. Unknown function pointers (Code.Function == 0) fork one branch
// per value-set target, each guarded by `pointer == &target`; every
// branch runs its callee to the return PC and is queued there for
// MergeGotos, while the calling state continues under a false guard.
func (interp *Interpreter) symexFunctionCall(state *SymbolicState, instr *Instruction) error {
	code := instr.Code.(CallCode)

	// Arguments are cleaned in the order they are written here. Which
	// order CBMC itself guarantees is not specified by the GOTO program
	// format it consumes (see the Open Question this decision resolves);
	// this engine cleans left-to-right, matching normal Go evaluation
	// order and the order parameters are then bound in.
	cleanedArgs := make([]Expr, len(code.Arguments))
	for i, arg := range code.Arguments {
		cleanedArgs[i] = interp.cleanAndRenameL2(state, arg)
	}

	if code.Function != 0 {
		return interp.symexFunctionCallDirect(state, instr, code.Function, code.LHS, cleanedArgs)
	}

	cleanedPtr := interp.cleanAndRenameL2(state, code.Pointer)
	targets := interp.Options.valueSets().Targets(state, cleanedPtr)
	if len(targets) == 0 {
		return &ErrUnsupportedOperation{Op: "symex_function_call", Detail: "function pointer with empty value set"}
	}

	returnPC := instr.PC + 1
	callerDepth := len(state.Thread().Stack)
	baseGuard := state.Guard()
	resolved := 0
	for _, target := range targets {
		fn, ok := baseSymbol(target)
		if !ok {
			continue
		}
		branch := state.Fork(NewBinaryExpr(EQ, cleanedPtr, interp.addressOf(target)))
		if err := interp.symexFunctionCallDirect(branch, instr, fn, code.LHS, cleanedArgs); err != nil {
			return err
		}
		// Unlike a GOTO's taken edge, the edge from this call site to
		// returnPC is not empty, it is fn's entire body: run it to
		// completion now so the branch actually arrives at returnPC
		// before mergeGoto treats it as a finished path to join.
		if err := interp.runCallBranch(branch, returnPC, callerDepth); err != nil {
			return err
		}
		interp.mergePending[returnPC] = append(interp.mergePending[returnPC], branch)
		resolved++
	}
	if resolved == 0 {
		return &ErrUnsupportedOperation{Op: "symex_function_call", Detail: "no resolvable function pointer target"}
	}
	state.SetGuard(baseGuard.Add(NewBoolConstantExpr(false)))
	return nil
}

// runCallBranch drives branch forward, one Step at a time, until its
// active thread's call stack returns to depth with its PC at returnPC,
// i.e. until the callee frame symexFunctionCallDirect just pushed has
// run to its own END_FUNCTION and popped back out. Used for each
// candidate branch of an unresolved function-pointer call, since
// mergePending normally expects the state queued under it to have
// already reached that PC on its own (true for a GOTO's zero-
// instruction taken edge, not true for a whole callee body).
func (interp *Interpreter) runCallBranch(branch *SymbolicState, returnPC, depth int) error {
	for {
		if interp.Options.Depth > 0 && branch.Depth >= interp.Options.Depth {
			return nil
		}
		if branch.PC() == returnPC && len(branch.Thread().Stack) == depth {
			return nil
		}
		if interp.Frame(branch) == nil {
			if !interp.symexThreadedStep(branch) {
				return nil
			}
			continue
		}
		if len(interp.mergePending[branch.PC()]) > 0 {
			if err := interp.MergeGotos(branch, branch.PC()); err != nil {
				return err
			}
		}
		done, err := interp.Step(branch)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// symexFunctionCallDirect pushes a new frame for a known callee.
func (interp *Interpreter) symexFunctionCallDirect(state *SymbolicState, instr *Instruction, function Symbol, lhs Expr, args []Expr) error {
	if err := interp.checkRecursionBound(function); err != nil {
		return err
	}

	entryPC, ok := interp.Program.EntryPoints[function]
	if !ok {
		return &ErrUnsupportedOperation{Op: "symex_function_call", Detail: "callee has no entry point"}
	}
	endPC := findEndFunction(interp.Program, entryPC)

	l1 := interp.nextL1[function]
	if l1 == 0 {
		l1 = 1
	}
	interp.nextL1[function] = l1 + 1

	frame := NewStackFrame(function, l1, instr.PC+1, lhs, endPC)

	names := interp.Program.ParamNames[function]
	widths := interp.Program.ParamTypes[function]
	for i, name := range names {
		if i >= len(args) {
			break
		}
		width := uint(Width64)
		if i < len(widths) {
			width = widths[i]
		}
		param := NewSSASymbolExpr(name, l1, 0, width)
		if err := interp.symexAssignSSASymbol(state, param, args[i], NewGuard()); err != nil {
			return err
		}
		frame.PushDecl(name)
	}

	state.Thread().PushFrame(frame)
	state.SetPC(entryPC)
	return nil
}

// checkRecursionBound increments function's active-call count and
// reports an error if Options.RecursionBound is exceeded.
func (interp *Interpreter) checkRecursionBound(function Symbol) error {
	interp.activeCalls[function]++
	if interp.Options.RecursionBound > 0 && interp.activeCalls[function] > interp.Options.RecursionBound {
		return &ErrUnsupportedOperation{Op: "symex_function_call", Detail: "recursion bound exceeded"}
	}
	return nil
}

// symexReturn handles a RETURN instruction by evaluating its value (if
// any) and recording it for the frame's caller to pick up at
// end-of-function; it does not itself pop the frame — the function body
// still falls through to its END_FUNCTION instruction, which is where
// the actual pop and caller-side assignment happens, exactly mirroring
// CBMC's separation of symex_return from symex_end_of_function.
func (interp *Interpreter) symexReturn(state *SymbolicState, instr *Instruction) error {
	code := instr.Code.(ReturnCode)
	frame := state.Frame()
	if code.Value != nil {
		cleaned := interp.cleanAndRenameL2(state, code.Value)
		frame.ReturnValue = cleaned
	}
	state.SetPC(frame.EndPC)
	return nil
}

// symexEndOfFunction pops the current frame, releases its remaining
// declarations (forgetting their propagated values; a DEAD step is
// emitted only for the nondet symbols the cleaner introduced), assigns the
// caller's result slot if the callee returned a value and the caller
// wanted one, and resumes the caller at its ReturnPC. If the popped
// frame was the thread's outermost, the thread itself is left with an
// empty stack, which Step/Run recognize as "this thread has finished"
// and hand off to symexThreadedStep.
func (interp *Interpreter) symexEndOfFunction(state *SymbolicState) error {
	thread := state.Thread()
	frame := thread.PopFrame()

	interp.activeCalls[frame.Function]--

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

	if frame.ReturnLHS != nil && frame.ReturnValue != nil {
		if err := interp.symexAssignRec(state, frame.ReturnLHS, frame.ReturnValue, NewGuard()); err != nil {
			return err
		}
	}

	if frame.ReturnPC >= 0 {
		thread.PC = frame.ReturnPC
	}
	return nil
}
