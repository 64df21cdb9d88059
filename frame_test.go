package symex_test

import (
	"testing"

	symex "github.com/symexgo/engine"
)

func TestStackFrame_DeclDead(t *testing.T) {
	// PushDecl/PopDead have no externally observable state of their own;
	// this just exercises that popping a mid-stack decl and then cloning
	// doesn't panic or corrupt the frame's other bookkeeping.
	f := symex.NewStackFrame(1, 0, -1, nil, 10)
	f.PushDecl(5)
	f.PushDecl(6)
	f.PopDead(5)
	f.PopDead(5) // popping an already-removed decl must be a no-op, not a panic

	clone := f.Clone()
	clone.PushDecl(7)
}

func TestStackFrame_FindCatch(t *testing.T) {
	f := symex.NewStackFrame(1, 0, -1, nil, 10)
	f.PushCatch(symex.CatchTarget{Types: []symex.Symbol{2}, Target: 40})
	f.PushCatch(symex.CatchTarget{Types: []symex.Symbol{3, 4}, Target: 50})

	t.Run("MatchesInnermostFirst", func(t *testing.T) {
		got, ok := f.FindCatch(4)
		if !ok {
			t.Fatal("expected a match")
		}
		if got.Target != 50 {
			t.Fatalf("expected innermost handler, got target %d", got.Target)
		}
	})

	t.Run("FallsBackToOuterHandler", func(t *testing.T) {
		got, ok := f.FindCatch(2)
		if !ok || got.Target != 40 {
			t.Fatalf("expected outer handler for type 2, got %+v, ok=%v", got, ok)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		if _, ok := f.FindCatch(99); ok {
			t.Fatal("expected no match for an unhandled type")
		}
	})
}

func TestStackFrame_CloneIndependence(t *testing.T) {
	f := symex.NewStackFrame(1, 0, -1, nil, 10)
	f.PushCatch(symex.CatchTarget{Types: []symex.Symbol{1}, Target: 10})

	clone := f.Clone()
	clone.PushCatch(symex.CatchTarget{Types: []symex.Symbol{2}, Target: 20})

	if _, ok := f.FindCatch(2); ok {
		t.Fatal("mutating the clone's catch stack must not affect the original frame")
	}
	if _, ok := clone.FindCatch(1); !ok {
		t.Fatal("the clone must still see the handler it was cloned from")
	}
}
