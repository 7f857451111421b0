package search

import (
	"time"

	"goose-uci/position"
)

// Limits is what a "go" command asks of a search. Times are in milliseconds
// and indexed by position.Color. A Limits value is built once per command and
// not modified afterwards.
type Limits struct {
	SearchMoves []position.Move
	Time        [2]int64
	Inc         [2]int64
	MovesToGo   int
	Depth       int
	Nodes       uint64
	MoveTime    int64
	Mate        int
	Perft       int
	Infinite    bool
	StartTime   time.Time
}

// UseTimeManagement reports whether the search budget must be derived from
// the clock rather than from a fixed limit.
func (l Limits) UseTimeManagement() bool {
	return l.Mate == 0 && l.MoveTime == 0 && l.Depth == 0 && l.Nodes == 0 && l.Perft == 0 && !l.Infinite
}
