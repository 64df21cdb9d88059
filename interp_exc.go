package symex

// symexThrow handles a THROW instruction by searching the active
// thread's call stack, innermost frame first, for a CATCH target
// registered for the thrown type, and redirecting control there exactly
// like a guarded GOTO. Frames between the throw site and the handler are
// popped (their decls released) since control never returns to them,
// mirroring an unwind past intervening stack frames. If no frame
// anywhere on the stack handles the type, the thread's guard is
// conjoined with false: this path has reached an uncaught exception, the
// same treatment goto-symex gives an unsupported corner case it cannot
// model further, and it simply never produces a VCC beyond this point.
func (interp *Interpreter) symexThrow(state *SymbolicState, instr *Instruction) error {
	code := instr.Code.(ThrowCode)
	thread := state.Thread()

	var value Expr
	if code.Value != nil {
		value = interp.cleanAndRenameL2(state, code.Value)
	}

	for depth := len(thread.Stack) - 1; depth >= 0; depth-- {
		frame := thread.Stack[depth]
		target, ok := frame.FindCatch(code.Type)
		if !ok {
			continue
		}

		for i := len(thread.Stack) - 1; i > depth; i-- {
			popped := thread.PopFrame()
			interp.activeCalls[popped.Function]--
		}

		if value != nil {
			handlerFrame := thread.TopFrame()
			exc := NewSSASymbolExpr(state.Symtab.Fresh("exception"), handlerFrame.L1, 0, ExprWidth(value))
			if err := interp.symexAssignSSASymbol(state, exc, value, NewGuard()); err != nil {
				return err
			}
		}

		state.SetPC(target.Target)
		return nil
	}

	state.SetGuard(state.Guard().Add(NewBoolConstantExpr(false)))
	state.SetPC(state.PC() + 1)
	return nil
}
