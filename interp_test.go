package symex_test

import (
	"testing"

	symex "github.com/symexgo/engine"
)

// buildStraightLineProgram builds: DECL x; x := 5; ASSERT x == 5; END_FUNCTION.
func buildStraightLineProgram(t *testing.T, symtab *symex.SymbolTable, fn symex.Symbol, x symex.Symbol) *symex.Program {
	t.Helper()
	lhs := symex.NewSymbolExpr(x, symex.Width32)
	five := symex.NewConstantExpr32(5)
	cond := symex.NewBinaryExpr(symex.EQ, lhs, five)

	instrs := []symex.Instruction{
		{PC: 0, Kind: symex.Decl, Code: symex.DeclCode{Symbol: x, Width: symex.Width32}},
		{PC: 1, Kind: symex.Assign, Code: symex.AssignCode{LHS: lhs, RHS: five}},
		{PC: 2, Kind: symex.Assert, Code: symex.AssertCode{Condition: cond, Comment: "x equals 5"}},
		{PC: 3, Kind: symex.EndFunction},
	}
	return &symex.Program{
		Instructions: instrs,
		EntryPoints:  map[symex.Symbol]int{fn: 0},
		ReturnTypes:  map[symex.Symbol]uint{},
		ParamTypes:   map[symex.Symbol][]uint{},
		ParamNames:   map[symex.Symbol][]symex.Symbol{},
	}
}

func TestInterpreter_Run_StraightLine(t *testing.T) {
	symtab := symex.NewSymbolTable()
	fn := symtab.Intern("main")
	x := symtab.Intern("x")
	program := buildStraightLineProgram(t, symtab, fn, x)

	interp, state, err := symex.NewInterpreter(program, symex.Options{Propagation: true, Simplify: true}, symtab, fn)
	if err != nil {
		t.Fatalf("unexpected error constructing interpreter: %v", err)
	}

	final, err := interp.Run(state)
	if err != nil {
		t.Fatalf("unexpected error running: %v", err)
	}
	if final.Frame() != nil {
		t.Fatal("expected the entry frame to have been popped at END_FUNCTION")
	}

	if got := interp.TotalVCCs(); got != 1 {
		t.Fatalf("expected exactly one verification condition, got %d", got)
	}
	if got := interp.RemainingVCCs(); got != 0 {
		t.Fatalf("expected x == 5 to be discharged trivially (guard true, condition constant-folds to true), got %d remaining", got)
	}

	var sawAssign, sawAssert bool
	for _, step := range interp.Equation.Steps() {
		switch step.Kind {
		case symex.StepAssign:
			sawAssign = true
		case symex.StepAssert:
			sawAssert = true
		}
	}
	if !sawAssign || !sawAssert {
		t.Fatalf("expected both an ASSIGN and an ASSERT step in the equation, got assign=%v assert=%v", sawAssign, sawAssert)
	}
}

func TestInterpreter_NoEntryPoint(t *testing.T) {
	symtab := symex.NewSymbolTable()
	fn := symtab.Intern("main")
	missing := symtab.Intern("missing")
	program := buildStraightLineProgram(t, symtab, fn, symtab.Intern("x"))

	_, _, err := symex.NewInterpreter(program, symex.Options{}, symtab, missing)
	if err != symex.ErrNoEntryPoint {
		t.Fatalf("expected ErrNoEntryPoint, got %v", err)
	}
}

func TestInterpreter_InvalidOptionsRejected(t *testing.T) {
	symtab := symex.NewSymbolTable()
	fn := symtab.Intern("main")
	program := buildStraightLineProgram(t, symtab, fn, symtab.Intern("x"))

	_, _, err := symex.NewInterpreter(program, symex.Options{DIMACS: true, Refine: true}, symtab, fn)
	if err == nil {
		t.Fatal("expected an error for a self-contradictory Options value")
	}
}
