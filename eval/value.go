// Package eval holds the score scale shared by search and the protocol codec,
// and the static evaluation.
package eval

// Value is a score in internal units, from the side to move's point of view
// unless stated otherwise.
type Value int

const (
	ValueZero     Value = 0
	ValueDraw     Value = 0
	ValueMate     Value = 32000
	ValueInfinite Value = 32001
	ValueNone     Value = 32002

	// MaxPly bounds the search depth and the mate distance that can be
	// represented.
	MaxPly = 246

	ValueMateInMaxPly  = ValueMate - MaxPly
	ValueMatedInMaxPly = -ValueMate + MaxPly

	// PawnValueEg is the divisor that turns internal units into centipawns.
	PawnValueEg Value = 111
)

// MateIn returns the score of giving mate ply plies from the root.
func MateIn(ply int) Value { return ValueMate - Value(ply) }

// MatedIn returns the score of being mated ply plies from the root.
func MatedIn(ply int) Value { return -ValueMate + Value(ply) }

// IsMate reports whether v encodes a forced mate for either side.
func IsMate(v Value) bool { return v >= ValueMateInMaxPly || v <= ValueMatedInMaxPly }
