package symex_test

import (
	"testing"

	symex "github.com/symexgo/engine"
)

// buildDereferenceReadProgram builds:
//
//	DECL p; DECL y; y := *p; ASSERT true "after-read"; END_FUNCTION
//
// No ValueSet is installed, so p's value-set is statically empty and the
// dereference is unresolved regardless of AllowPointerUnsoundness.
func buildDereferenceReadProgram(t *testing.T, symtab *symex.SymbolTable, fn, p, y symex.Symbol) *symex.Program {
	t.Helper()
	pExpr := symex.NewSymbolExpr(p, symex.Width64)
	yExpr := symex.NewSymbolExpr(y, symex.Width32)

	instrs := []symex.Instruction{
		{PC: 0, Kind: symex.Decl, Code: symex.DeclCode{Symbol: p, Width: symex.Width64}},
		{PC: 1, Kind: symex.Decl, Code: symex.DeclCode{Symbol: y, Width: symex.Width32}},
		{PC: 2, Kind: symex.Assign, Code: symex.AssignCode{LHS: yExpr, RHS: symex.NewDereferenceExpr(pExpr, symex.Width32)}},
		{PC: 3, Kind: symex.Assert, Code: symex.AssertCode{Condition: symex.NewBoolConstantExpr(true), Comment: "after-read"}},
		{PC: 4, Kind: symex.EndFunction},
	}
	return &symex.Program{
		Instructions: instrs,
		EntryPoints:  map[symex.Symbol]int{fn: 0},
		ReturnTypes:  map[symex.Symbol]uint{},
		ParamTypes:   map[symex.Symbol][]uint{},
		ParamNames:   map[symex.Symbol][]symex.Symbol{},
	}
}

// buildDereferenceWriteProgram builds:
//
//	DECL p; *p := 5; ASSERT true "after-write"; END_FUNCTION
func buildDereferenceWriteProgram(t *testing.T, symtab *symex.SymbolTable, fn, p symex.Symbol) *symex.Program {
	t.Helper()
	pExpr := symex.NewSymbolExpr(p, symex.Width64)

	instrs := []symex.Instruction{
		{PC: 0, Kind: symex.Decl, Code: symex.DeclCode{Symbol: p, Width: symex.Width64}},
		{PC: 1, Kind: symex.Assign, Code: symex.AssignCode{LHS: symex.NewDereferenceExpr(pExpr, symex.Width32), RHS: symex.NewConstantExpr32(5)}},
		{PC: 2, Kind: symex.Assert, Code: symex.AssertCode{Condition: symex.NewBoolConstantExpr(true), Comment: "after-write"}},
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

// TestInterpreter_UnresolvedDereference_SoundnessOption is a regression
// test for AllowPointerUnsoundness being honored on both the read side
// (dereferenceRec) and the write side (symexAssignDereference): sound mode
// must record a real, non-trivial verification condition for an
// unresolved pointer; unsound mode must not.
func TestInterpreter_UnresolvedDereference_SoundnessOption(t *testing.T) {
	tests := []struct {
		name          string
		write         bool
		allowUnsound  bool
		wantTotalVCCs int
		wantRemaining int
	}{
		{name: "read/sound", write: false, allowUnsound: false, wantTotalVCCs: 2, wantRemaining: 1},
		{name: "read/unsound", write: false, allowUnsound: true, wantTotalVCCs: 1, wantRemaining: 0},
		{name: "write/sound", write: true, allowUnsound: false, wantTotalVCCs: 2, wantRemaining: 1},
		{name: "write/unsound", write: true, allowUnsound: true, wantTotalVCCs: 1, wantRemaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symtab := symex.NewSymbolTable()
			fn := symtab.Intern("main")
			p := symtab.Intern("p")

			var program *symex.Program
			if tt.write {
				program = buildDereferenceWriteProgram(t, symtab, fn, p)
			} else {
				y := symtab.Intern("y")
				program = buildDereferenceReadProgram(t, symtab, fn, p, y)
			}

			interp, state, err := symex.NewInterpreter(program, symex.Options{AllowPointerUnsoundness: tt.allowUnsound}, symtab, fn)
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

			if got := interp.TotalVCCs(); got != tt.wantTotalVCCs {
				t.Fatalf("TotalVCCs() = %d, want %d", got, tt.wantTotalVCCs)
			}
			if got := interp.RemainingVCCs(); got != tt.wantRemaining {
				t.Fatalf("RemainingVCCs() = %d, want %d", got, tt.wantRemaining)
			}
		})
	}
}
