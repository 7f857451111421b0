package search

import (
	"time"

	"golang.org/x/exp/constraints"

	"goose-uci/position"
)

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Engine-side safety knobs
const (
	minMoveMs     = 5    // never less than this
	maxFrac       = 0.7  // never spend >70% of remaining time
	panicThreshMs = 1000 // below this we live off the increment
	panicFrac     = 0.90 // use 90% of inc in panic
)

// timeManager turns the clock into a soft (optimum) and a hard (maximum)
// budget for one search. With nodesTime set, time is counted in nodes: one
// millisecond stands for nodesTime nodes.
type timeManager struct {
	start     time.Time
	optimum   int64
	maximum   int64
	enabled   bool
	nodesTime int64
}

func (tm *timeManager) init(l Limits, us position.Color, phase int, overhead, slowMover, nodesTime int64) {
	tm.start = l.StartTime
	if tm.start.IsZero() {
		tm.start = time.Now()
	}
	tm.nodesTime = nodesTime
	tm.enabled = l.UseTimeManagement() && l.Time[us] > 0
	if !tm.enabled {
		return
	}

	rem := l.Time[us]
	inc := l.Inc[us]
	if nodesTime > 0 {
		rem *= nodesTime
		inc *= nodesTime
		overhead = 0
	}

	movesLeft := int64(estimateMovesRemaining(phase))
	if l.MovesToGo > 0 {
		movesLeft = clamp(int64(l.MovesToGo), 1, movesLeft)
	}

	var moveTime int64
	switch {
	case inc > 0 && rem < panicThreshMs:
		moveTime = int64(float64(inc) * panicFrac)
	default:
		moveTime = rem/movesLeft + inc
	}
	moveTime = moveTime * slowMover / 100

	ceiling := min(int64(float64(rem)*maxFrac), rem-overhead)
	tm.optimum = clamp(moveTime, minMoveMs, max(ceiling, minMoveMs))
	tm.maximum = clamp(3*tm.optimum, tm.optimum, max(ceiling, tm.optimum))
}

// elapsed returns the time spent so far, in milliseconds or in nodes.
func (tm *timeManager) elapsed(nodes uint64) int64 {
	if tm.nodesTime > 0 {
		return int64(nodes)
	}
	return time.Since(tm.start).Milliseconds()
}

func estimateMovesRemaining(phase int) int {
	// Linearly interpolate between 20 (endgame) and 45 (opening/midgame)
	return (clamp(phase, 0, 24)*25)/24 + 20
}
