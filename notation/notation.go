// Package notation translates moves and scores between their internal form and
// UCI text.
package notation

import (
	"fmt"
	"strings"

	"goose-uci/eval"
	"goose-uci/position"
)

// Square returns the algebraic name of sq, a1 being 0.
func Square(sq uint8) string {
	return string([]byte{'a' + sq%8, '1' + sq/8})
}

// Move returns m in coordinate notation. Castling is written king-from
// king-to, which is also how the generator encodes it.
func Move(m position.Move) string {
	switch m {
	case position.MoveNone:
		return "(none)"
	case position.MoveNull:
		return "0000"
	}
	s := Square(m.From()) + Square(m.To())
	if promo := m.Promote(); promo != 0 {
		s += string(" pnbrqk"[promo])
	}
	return s
}

// ParseMove returns the legal move of pos written as str, or MoveNone. A
// promotion letter may be given in either case.
func ParseMove(pos *position.Position, str string) position.Move {
	if len(str) == 5 {
		str = str[:4] + strings.ToLower(str[4:])
	}
	for _, m := range pos.LegalMoves() {
		if Move(m) == str {
			return m
		}
	}
	return position.MoveNone
}

// Value returns v as a UCI score: "cp <x>" or "mate <y>", where y counts full
// moves and is negative when the side to move is getting mated.
func Value(v eval.Value) string {
	if v <= -eval.ValueInfinite || v >= eval.ValueInfinite {
		panic(fmt.Sprintf("notation: value %d out of range", v))
	}
	if abs(v) < eval.ValueMate-eval.MaxPly {
		return fmt.Sprintf("cp %d", v*100/eval.PawnValueEg)
	}
	if v > 0 {
		return fmt.Sprintf("mate %d", (eval.ValueMate-v+1)/2)
	}
	return fmt.Sprintf("mate %d", (-eval.ValueMate-v)/2)
}

func abs(v eval.Value) eval.Value {
	if v < 0 {
		return -v
	}
	return v
}
