package search

import (
	"github.com/dylhunn/dragontoothmg"

	"goose-uci/eval"
	"goose-uci/position"
)

type scoredMove struct {
	move  position.Move
	score int
}

// Most Valuable Victim - Least Valuable Aggressor; used to score & sort captures
var mvvLva = [7][7]int{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

// Ordering bands: hash move, then promotions and captures, then killers,
// then the rest.
const (
	scoreHashMove = 1 << 20
	scoreCapture  = 1 << 16
	scoreKiller   = 1 << 12
)

var promoValue = [7]int{dragontoothmg.Knight: 305, dragontoothmg.Bishop: 333, dragontoothmg.Rook: 535, dragontoothmg.Queen: 963}

// killers keeps two quiet moves per ply that recently caused a cutoff.
type killers [eval.MaxPly + 1][2]position.Move

func (k *killers) insert(m position.Move, ply int) {
	if m != k[ply][0] {
		k[ply][1] = k[ply][0]
		k[ply][0] = m
	}
}

func (k *killers) clear() {
	*k = killers{}
}

// scoreMoves assigns ordering scores. With capturesOnly, quiet non-promoting
// moves are left out.
func (w *Worker) scoreMoves(pos *position.Position, moves []position.Move, hashMove position.Move, ply int, capturesOnly bool) []scoredMove {
	out := make([]scoredMove, 0, len(moves))
	for _, m := range moves {
		mv := m
		capture := pos.IsCapture(m)
		promo := mv.Promote()
		if capturesOnly && !capture && promo == 0 {
			continue
		}

		score := 0
		switch {
		case m == hashMove:
			score = scoreHashMove
		case capture || promo != 0:
			score = scoreCapture + promoValue[promo]
			if capture {
				attacker, _ := pos.PieceOn(mv.From())
				victim, _ := pos.PieceOn(mv.To())
				if victim == dragontoothmg.Nothing {
					victim = dragontoothmg.Pawn // en passant
				}
				score += mvvLva[victim][attacker]
			}
		case m == w.killers[ply][0]:
			score = scoreKiller + 1
		case m == w.killers[ply][1]:
			score = scoreKiller
		}
		out = append(out, scoredMove{move: m, score: score})
	}
	return out
}

// pickNext moves the best scored move at or after i to position i.
func pickNext(moves []scoredMove, i int) {
	best := i
	for j := i + 1; j < len(moves); j++ {
		if moves[j].score > moves[best].score {
			best = j
		}
	}
	moves[i], moves[best] = moves[best], moves[i]
}
