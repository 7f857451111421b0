package search

import (
	"unsafe"

	"goose-uci/eval"
	"goose-uci/position"
)

// Bound tells how a stored score relates to the true value.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundUpper
	BoundLower
	BoundExact
)

const clusterSize = 4

// TTEntry is one transposition table slot.
type TTEntry struct {
	Key   uint64
	Move  position.Move
	Score int16
	Depth int8
	Bound Bound
}

// TransTable is a hash table of search results, grouped in clusters of four
// entries that share an index.
type TransTable struct {
	entries      []TTEntry
	clusterCount uint64
}

// NewTransTable returns a table using about mb megabytes.
func NewTransTable(mb int) *TransTable {
	tt := &TransTable{}
	tt.Resize(mb)
	return tt
}

// Resize reallocates the table to about mb megabytes, dropping its content.
func (tt *TransTable) Resize(mb int) {
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	clusterCount := uint64(mb) * 1024 * 1024 / (entrySize * clusterSize)
	if clusterCount == 0 {
		clusterCount = 1
	}
	tt.clusterCount = clusterCount
	tt.entries = make([]TTEntry, clusterCount*clusterSize)
}

// Clear empties the table without reallocating it.
func (tt *TransTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
}

func (tt *TransTable) cluster(key uint64) []TTEntry {
	base := (key % tt.clusterCount) * clusterSize
	return tt.entries[base : base+clusterSize]
}

// Probe returns the entry stored for key.
func (tt *TransTable) Probe(key uint64) (TTEntry, bool) {
	for _, e := range tt.cluster(key) {
		if e.Key == key && e.Bound != BoundNone {
			return e, true
		}
	}
	return TTEntry{}, false
}

// Store saves a search result. Mate scores are made relative to the stored
// node so they stay valid at any ply. The entry for the same key is updated,
// else an empty slot is used, else the shallowest entry is replaced.
func (tt *TransTable) Store(key uint64, depth, ply int, m position.Move, v eval.Value, b Bound) {
	cl := tt.cluster(key)
	target := -1
	for i := range cl {
		if cl[i].Key == key {
			target = i
			break
		}
	}
	if target == -1 {
		for i := range cl {
			if cl[i].Bound == BoundNone {
				target = i
				break
			}
		}
	}
	if target == -1 {
		target = 0
		for i := 1; i < clusterSize; i++ {
			if cl[i].Depth < cl[target].Depth {
				target = i
			}
		}
	}

	e := &cl[target]
	if m == position.MoveNone && e.Key == key {
		m = e.Move
	}
	e.Key = key
	e.Move = m
	e.Score = int16(valueToTT(v, ply))
	e.Depth = int8(clamp(depth, -1, 127))
	e.Bound = b
}

// Usable returns the entry's score at ply when it is deep enough and its
// bound decides the alpha-beta window.
func (e TTEntry) Usable(depth, ply int, alpha, beta eval.Value) (eval.Value, bool) {
	if int(e.Depth) < depth {
		return 0, false
	}
	v := valueFromTT(eval.Value(e.Score), ply)
	switch e.Bound {
	case BoundExact:
		return v, true
	case BoundUpper:
		return v, v <= alpha
	case BoundLower:
		return v, v >= beta
	}
	return 0, false
}

// Hashfull returns the permille of used slots, sampled over the first
// thousand entries.
func (tt *TransTable) Hashfull() int {
	n := min(1000, len(tt.entries))
	used := 0
	for i := 0; i < n; i++ {
		if tt.entries[i].Bound != BoundNone {
			used++
		}
	}
	return used * 1000 / n
}

func valueToTT(v eval.Value, ply int) eval.Value {
	switch {
	case v >= eval.ValueMateInMaxPly:
		return v + eval.Value(ply)
	case v <= eval.ValueMatedInMaxPly:
		return v - eval.Value(ply)
	}
	return v
}

func valueFromTT(v eval.Value, ply int) eval.Value {
	switch {
	case v >= eval.ValueMateInMaxPly:
		return v - eval.Value(ply)
	case v <= eval.ValueMatedInMaxPly:
		return v + eval.Value(ply)
	}
	return v
}
