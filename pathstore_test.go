package symex_test

import (
	"testing"

	symex "github.com/symexgo/engine"
)

func newTestState(t *testing.T) *symex.SymbolicState {
	t.Helper()
	symtab := symex.NewSymbolTable()
	fn := symtab.Intern("main")
	return symex.NewSymbolicState(symtab, fn, 0, 100)
}

func TestPathStorage_LIFOOrder(t *testing.T) {
	ps := symex.NewPathStorage()
	if ps.Len() != 0 {
		t.Fatalf("expected an empty storage, got length %d", ps.Len())
	}

	s1, s2 := newTestState(t), newTestState(t)
	ps.Push(&symex.SavedState{State: s1, PC: 10})
	ps.Push(&symex.SavedState{State: s2, PC: 20})

	if ps.Len() != 2 {
		t.Fatalf("expected 2 parked continuations, got %d", ps.Len())
	}

	first := ps.Pop()
	if first == nil || first.PC != 20 {
		t.Fatalf("expected the most recently pushed continuation first, got %+v", first)
	}

	second := ps.Pop()
	if second == nil || second.PC != 10 {
		t.Fatalf("expected the earlier continuation second, got %+v", second)
	}

	if ps.Pop() != nil {
		t.Fatal("expected nil once storage is drained")
	}
}
