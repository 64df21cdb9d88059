package symex

// PathStorage is the global worklist of suspended continuations
// accumulated across an entire path-exploration-mode analysis: every
// GOTO's not-taken branch parked by symexGotoPathExploration, drained by
// the top-level driver (RunToCompletion) one at a time until empty.
//
// A SymbolicState's own savedJumpTargets field also exists (see
// state.go) for the case where a single Interpreter instance drives
// several paths without a separate top-level driver; PathStorage is the
// analogue used when the driver wants visibility into how many paths
// remain queued, for reporting or for bounding total path count.
type PathStorage struct {
	saved []*SavedState
}

// NewPathStorage returns a new, empty PathStorage.
func NewPathStorage() *PathStorage {
	return &PathStorage{}
}

// Push parks saved for later exploration.
func (ps *PathStorage) Push(saved *SavedState) {
	ps.saved = append(ps.saved, saved)
}

// Pop removes and returns the most recently parked continuation (depth-
// first draining order), or nil if storage is empty.
func (ps *PathStorage) Pop() *SavedState {
	if len(ps.saved) == 0 {
		return nil
	}
	n := len(ps.saved) - 1
	saved := ps.saved[n]
	ps.saved = ps.saved[:n]
	return saved
}

// Len returns the number of continuations currently parked.
func (ps *PathStorage) Len() int {
	return len(ps.saved)
}

// RunToCompletion drives interp through every reachable path starting
// from initial: it runs initial, drains initial's own savedJumpTargets
// into storage, then repeatedly pops and resumes a saved continuation
// (re-seating its PC) until both the state's own worklist and storage
// are empty. Returns every terminal state reached, in the order they
// finished.
func RunToCompletion(interp *Interpreter, initial *SymbolicState, storage *PathStorage) ([]*SymbolicState, error) {
	var finals []*SymbolicState

	current := initial
	first := true
	for {
		var final *SymbolicState
		var err error
		if first {
			final, err = interp.Run(current)
			first = false
		} else {
			final, err = interp.Resume(current)
		}
		if err != nil {
			return finals, err
		}
		finals = append(finals, final)

		for saved := final.PopSavedJumpTarget(); saved != nil; saved = final.PopSavedJumpTarget() {
			storage.Push(saved)
		}

		next := storage.Pop()
		if next == nil {
			return finals, nil
		}
		next.State.SetPC(next.PC)
		current = next.State
	}
}
