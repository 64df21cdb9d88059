package symex

// InstructionKind enumerates every GOTO-program instruction type the
// interpreter dispatches on. This mirrors the taxonomy CBMC's
// goto_program_instruction_typet defines, less the front-end-only forms
// that never survive lowering.
type InstructionKind int

const (
	// NoInstructionType marks an instruction that failed to lower. The
	// interpreter reports ErrNoInstructionType and aborts if it is ever
	// reached.
	NoInstructionType InstructionKind = iota

	// Skip is a no-op, used as a placeholder target for jumps.
	Skip
	// Location carries only a source-location update, no semantic effect.
	Location
	// EndFunction marks the implicit return point of a function body.
	EndFunction
	// Goto transfers control, conditionally or unconditionally.
	Goto
	// Assume records a path-condition restriction.
	Assume
	// Assert records a property obligation.
	Assert
	// Return transfers a value back to the caller's result slot.
	Return
	// Assign performs a symbolic store.
	Assign
	// FunctionCall invokes another function, known or through a pointer.
	FunctionCall
	// Other is an escape hatch for target-specific side effects
	// (inline asm, built-in intrinsics) with no further structure.
	Other
	// Decl introduces a new L1 instance of a local variable.
	Decl
	// Dead ends the lexical scope of a local variable.
	Dead
	// StartThread spawns a new cooperative thread of execution.
	StartThread
	// EndThread terminates the current thread.
	EndThread
	// AtomicBegin opens an atomic section.
	AtomicBegin
	// AtomicEnd closes an atomic section.
	AtomicEnd
	// Catch pushes an active exception handler target.
	Catch
	// Throw raises an exception, transferring to the nearest handler.
	Throw
)

// String returns the name of the instruction kind.
func (k InstructionKind) String() string {
	switch k {
	case NoInstructionType:
		return "NO_INSTRUCTION_TYPE"
	case Skip:
		return "SKIP"
	case Location:
		return "LOCATION"
	case EndFunction:
		return "END_FUNCTION"
	case Goto:
		return "GOTO"
	case Assume:
		return "ASSUME"
	case Assert:
		return "ASSERT"
	case Return:
		return "RETURN"
	case Assign:
		return "ASSIGN"
	case FunctionCall:
		return "FUNCTION_CALL"
	case Other:
		return "OTHER"
	case Decl:
		return "DECL"
	case Dead:
		return "DEAD"
	case StartThread:
		return "START_THREAD"
	case EndThread:
		return "END_THREAD"
	case AtomicBegin:
		return "ATOMIC_BEGIN"
	case AtomicEnd:
		return "ATOMIC_END"
	case Catch:
		return "CATCH"
	case Throw:
		return "THROW"
	default:
		return "UNKNOWN"
	}
}

// SourceLocation identifies where an instruction originated, carried
// through purely for diagnostics and LOCATION steps.
type SourceLocation struct {
	File     string
	Line     int
	Function string
}

// Edge is an incoming control-flow edge into an instruction.
type Edge struct {
	From      int  // program counter of the predecessor instruction
	Backwards bool // true if From >= the target's program counter
}

// Code is the optional per-kind payload of an Instruction.
type Code interface {
	code()
}

// AssignCode is the payload of an Assign instruction.
type AssignCode struct {
	LHS Expr
	RHS Expr
}

func (AssignCode) code() {}

// DeclCode is the payload of a Decl instruction.
type DeclCode struct {
	Symbol Symbol
	Width  uint
}

func (DeclCode) code() {}

// DeadCode is the payload of a Dead instruction.
type DeadCode struct {
	Symbol Symbol
}

func (DeadCode) code() {}

// GotoCode is the payload of a Goto instruction.
type GotoCode struct {
	Condition Expr // nil means unconditional
	Targets   []int
}

func (GotoCode) code() {}

// AssumeCode/AssertCode carry the property expression for ASSUME/ASSERT.
type AssumeCode struct {
	Condition Expr
}

func (AssumeCode) code() {}

// AssertCode is the payload of an Assert instruction.
type AssertCode struct {
	Condition Expr
	Comment   string
}

func (AssertCode) code() {}

// ReturnCode is the payload of a Return instruction.
type ReturnCode struct {
	Value Expr // nil for void returns
}

func (ReturnCode) code() {}

// CallCode is the payload of a FunctionCall instruction.
type CallCode struct {
	LHS       Expr   // nil if the result is discarded
	Function  Symbol // zero if called through a function pointer
	Pointer   Expr   // non-nil if Function is zero
	Arguments []Expr
}

func (CallCode) code() {}

// OtherCode carries an opaque, target-specific payload.
type OtherCode struct {
	Statement string
}

func (OtherCode) code() {}

// CatchCode pushes an active handler target for the given exception types.
type CatchCode struct {
	Types  []Symbol
	Target int
}

func (CatchCode) code() {}

// ThrowCode is the payload of a Throw instruction.
type ThrowCode struct {
	Type  Symbol
	Value Expr
}

func (ThrowCode) code() {}

// LoopID identifies a back-edge target for per-loop unwind-bound tracking.
type LoopID int

// Instruction is a single GOTO-program instruction.
type Instruction struct {
	PC     int
	Kind   InstructionKind
	Source SourceLocation
	Code   Code
	Edges  []Edge

	// LoopHead is non-zero when this instruction is the target of at
	// least one backwards GOTO, i.e. a loop head as CBMC defines it.
	LoopHead LoopID
}

// Program is a flat, indexable GOTO program: the unit the interpreter
// consumes. Functions are represented as contiguous PC ranges with a
// name-to-entry-PC table, the GOTO-program analogue of an object file's
// symbol table.
type Program struct {
	Instructions []Instruction
	EntryPoints  map[Symbol]int // function symbol -> entry PC
	ReturnTypes  map[Symbol]uint
	ParamTypes   map[Symbol][]uint
	ParamNames   map[Symbol][]Symbol
}

// Instr returns the instruction at pc.
func (p *Program) Instr(pc int) *Instruction {
	return &p.Instructions[pc]
}
