package position

// StateInfo is one entry of a StateList: what is needed to undo the move that
// produced it and to reason about repetitions and the fifty-move rule.
type StateInfo struct {
	Key           uint64
	Rule50        int
	PliesFromNull int
	Move          Move

	undo func()
}

// StateList is the append-only arena that backs a Position's history. A
// Position refers to its current entry by index, so the list can grow without
// invalidating anything the Position holds. Replacing a session's StateList
// always goes together with setting the Position on the new list.
type StateList struct {
	states []StateInfo
}

// NewStateList returns a list holding the single root entry a Position is set on.
func NewStateList() *StateList {
	return &StateList{states: make([]StateInfo, 1, 64)}
}

// Len reports the number of entries, root included.
func (l *StateList) Len() int { return len(l.states) }

// At returns a copy of entry i.
func (l *StateList) At(i int) StateInfo { return l.states[i] }

func (l *StateList) push(st StateInfo) int {
	l.states = append(l.states, st)
	return len(l.states) - 1
}

func (l *StateList) truncate(n int) {
	for i := n; i < len(l.states); i++ {
		l.states[i].undo = nil
	}
	l.states = l.states[:n]
}

// snapshot copies the list without undo closures. Entries in a snapshot can be
// read for repetition detection but never undone.
func (l *StateList) snapshot() *StateList {
	cp := make([]StateInfo, len(l.states), len(l.states)+64)
	copy(cp, l.states)
	for i := range cp {
		cp[i].undo = nil
	}
	return &StateList{states: cp}
}
