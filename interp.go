package symex

import (
	"fmt"
	"log"
	"os"
)

// Logger is the package-wide trace logger. Swap it out (e.g. to silence
// output in tests) by assigning a new *log.Logger before running the
// interpreter.
var Logger = log.New(os.Stderr, "", log.LstdFlags)

// ErrNoEntryPoint is returned by NewInterpreter when the program has no
// instruction for the requested entry function.
var ErrNoEntryPoint = fmt.Errorf("symex: no entry point")

// ErrNoInstructionType is returned by Step if it reaches an instruction
// whose Kind is NoInstructionType, indicating the GOTO program was never
// fully lowered.
var ErrNoInstructionType = fmt.Errorf("symex: NO_INSTRUCTION_TYPE reached")

// ErrUnsupportedOperation is returned for operations the interpreter
// recognizes but does not (yet) implement for the encountered operand
// shapes.
type ErrUnsupportedOperation struct {
	Op     string
	Detail string
}

func (e *ErrUnsupportedOperation) Error() string {
	return fmt.Sprintf("symex: unsupported operation %s: %s", e.Op, e.Detail)
}

// ValidationError is returned when ValidateSSAEquation catches a
// violated invariant.
type ValidationError struct {
	Step int
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("symex: validation failed at step %d: %v", e.Step, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Interpreter executes a single Program under a set of Options, emitting
// an Equation. One Interpreter is good for exactly one call to Run (or a
// chain of Run/Resume); construct a new one per top-level analysis.
type Interpreter struct {
	Program *Program
	Options Options
	Symtab  *SymbolTable
	Equation *Equation

	renamer *Renamer
	ns      *namespace

	shouldPauseSymex bool
	steps            int

	nextL1      map[Symbol]uint32
	activeCalls map[Symbol]int // recursion depth per function

	// mergePending holds, per target PC, the set of states waiting to be
	// merged by mergeGotos before execution resumes at that PC in
	// eager-merge mode.
	mergePending map[int][]*SymbolicState
}

// NewInterpreter returns a new Interpreter for program under opts, ready
// to Run from entryFunction. Returns a *ConfigError if opts is
// self-contradictory, or ErrNoEntryPoint if entryFunction has no
// registered entry PC.
func NewInterpreter(program *Program, opts Options, symtab *SymbolTable, entryFunction Symbol) (*Interpreter, *SymbolicState, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	entryPC, ok := program.EntryPoints[entryFunction]
	if !ok {
		return nil, nil, ErrNoEntryPoint
	}
	endPC := findEndFunction(program, entryPC)

	interp := &Interpreter{
		Program:      program,
		Options:      opts,
		Symtab:       symtab,
		Equation:     NewEquation(),
		renamer:      NewRenamer(),
		ns:           newNamespace(program, program.ReturnTypes),
		nextL1:       make(map[Symbol]uint32),
		activeCalls:  make(map[Symbol]int),
		mergePending: make(map[int][]*SymbolicState),
	}
	interp.nextL1[entryFunction] = 2 // frame already used L1=1
	interp.activeCalls[entryFunction] = 1

	state := NewSymbolicState(symtab, entryFunction, entryPC, endPC)
	state.SetDirty(opts.dirty())
	return interp, state, nil
}

// findEndFunction scans forward from entryPC for the nearest END_FUNCTION
// instruction, the entry function's own end-of-body marker.
func findEndFunction(program *Program, entryPC int) int {
	for pc := entryPC; pc < len(program.Instructions); pc++ {
		if program.Instructions[pc].Kind == EndFunction {
			return pc
		}
	}
	return len(program.Instructions) - 1
}

// TotalVCCs returns the number of ASSERT steps emitted so far.
func (interp *Interpreter) TotalVCCs() int { return interp.Equation.TotalVCCs() }

// RemainingVCCs returns the number of ASSERT steps not trivially
// discharged at emission time.
func (interp *Interpreter) RemainingVCCs() int { return interp.Equation.RemainingVCCs() }

// Run drives state forward, one Step at a time, in eager-merge mode
// until either the path terminates (the active thread's stack empties
// and no other thread is runnable), the depth bound is hit, or
// shouldPauseSymex is set (path-exploration mode requests a pause after
// pushing a saved jump target). Returns the final state reached, or nil
// if the path was infeasible throughout (guard went false and stayed
// false).
func (interp *Interpreter) Run(state *SymbolicState) (*SymbolicState, error) {
	for {
		if interp.Options.Depth > 0 && state.Depth >= interp.Options.Depth {
			interp.logf(1, "[symex] depth bound %d reached, stopping", interp.Options.Depth)
			return state, nil
		}
		if interp.Frame(state) == nil {
			if !interp.symexThreadedStep(state) {
				return state, nil
			}
			continue
		}

		if len(interp.mergePending[state.PC()]) > 0 {
			if err := interp.MergeGotos(state, state.PC()); err != nil {
				return state, err
			}
		}

		done, err := interp.Step(state)
		if err != nil {
			return state, err
		}
		if done {
			return state, nil
		}
		if interp.shouldPauseSymex {
			interp.shouldPauseSymex = false
			return state, nil
		}
	}
}

// Resume continues execution from a previously suspended state using a
// fresh Equation; the state's old equation is considered stale and is
// discarded, matching resume_symex_from_saved_state's contract that the
// caller never reuses the old equation object.
func (interp *Interpreter) Resume(state *SymbolicState) (*SymbolicState, error) {
	interp.Equation = NewEquation()
	return interp.Run(state)
}

// Frame returns state's current thread's innermost frame.
func (interp *Interpreter) Frame(state *SymbolicState) *StackFrame {
	return state.Frame()
}

func (interp *Interpreter) logf(level int, format string, args ...interface{}) {
	if interp.Options.DebugLevel >= level {
		Logger.Printf(format, args...)
	}
}

// cleanAndRenameL2 is the composition the interpreter applies to every
// rvalue expression before it is recorded into the equation: clean
// (dereference lowering, side-effect elimination), L1-rename any bare
// L0 symbol reference to this frame's instance, then L2-rename to the
// most recent write each renamed symbol has seen.
func (interp *Interpreter) cleanAndRenameL2(state *SymbolicState, expr Expr) Expr {
	cleaned := interp.cleanExpr(state, cloneExpr(expr), false)
	l1 := interp.renamer.RenameLevel1(cleaned, state.Frame())
	renamed := interp.renamer.RenameLevel2(l1, state.Thread())
	propagated := interp.propagate(state, renamed)
	if interp.Options.Simplify {
		return simplifyExpr(propagated)
	}
	return propagated
}

// propagate substitutes a propagated constant for any SSASymbolExpr expr
// mentions, when Options.Propagation is set; a no-op otherwise. This is
// the read-side half of the propagation Options.Propagation documents:
// symexAssignSSASymbol populates the map on write, this consults it on
// every subsequent read. A symbol Options.Dirty reports as dirty is
// never substituted, even if the propagation cache holds a value for
// it: a dirty variable may have been written through a pointer alias
// this engine's value-set could not enumerate, so the cached constant
// is not trustworthy — services.go's DirtyVariables doc comment
// promises exactly this conservatism.
func (interp *Interpreter) propagate(state *SymbolicState, expr Expr) Expr {
	if !interp.Options.Propagation {
		return expr
	}
	return WalkExpr(&propagateVisitor{state: state, dirty: state.Dirty()}, expr)
}

type propagateVisitor struct {
	state *SymbolicState
	dirty DirtyVariables
}

func (v *propagateVisitor) Visit(expr Expr) (Expr, ExprVisitor) {
	if sym, ok := expr.(*SSASymbolExpr); ok {
		if v.dirty.IsDirty(sym.Name) {
			return expr, v
		}
		if c, ok := v.state.Propagated(*sym); ok {
			return c, nil
		}
	}
	return expr, v
}

// appendStep appends step to the equation, validating it first if
// ValidateSSAEquation is set, and updates VCC bookkeeping for ASSERT
// steps.
func (interp *Interpreter) appendStep(state *SymbolicState, step Step) error {
	step.Guard = state.Guard().AsExpr()
	step.Thread = state.Active
	interp.Equation.Append(step)

	if step.Kind == StepAssert {
		trivial := state.Guard().IsFalse() || isTriviallyTrue(step.Cond)
		interp.Equation.recordVCC(trivial)
	}

	if interp.Options.ValidateSSAEquation {
		if err := interp.Equation.Validate(); err != nil {
			return &ValidationError{Step: interp.Equation.Len() - 1, Err: err}
		}
	}
	return nil
}

func isTriviallyTrue(e Expr) bool {
	c, ok := e.(*ConstantExpr)
	return ok && c.IsTrue()
}
