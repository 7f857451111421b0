package eval

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"

	"goose-uci/position"
)

var flip [64]int
var knightMasks [64]uint64

func init() {
	for sq := 0; sq < 64; sq++ {
		flip[sq] = sq ^ 56

		f, r := sq%8, sq/8
		for _, j := range [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}} {
			nf, nr := f+j[0], r+j[1]
			if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
				knightMasks[sq] |= uint64(1) << uint(nr*8+nf)
			}
		}
	}
}

// term indexes the components reported by Trace.
type term int

const (
	termMaterial term = iota
	termPSQT
	termMobility
	termBishopPair
	termCount
)

var termNames = [termCount]string{"Material", "PSQT", "Mobility", "Bishop pair"}

// score is a midgame/endgame pair.
type score struct{ mg, eg Value }

func (s *score) add(mg, eg Value) {
	s.mg += mg
	s.eg += eg
}

// breakdown holds every term per color, White first.
type breakdown struct {
	terms [termCount][2]score
	phase int
}

func (b *breakdown) total(c int) score {
	var s score
	for t := range b.terms {
		s.add(b.terms[t][c].mg, b.terms[t][c].eg)
	}
	return s
}

// taper blends a midgame/endgame pair by the remaining material.
func (b *breakdown) taper(s score) Value {
	return (s.mg*Value(b.phase) + s.eg*Value(totalPhase-b.phase)) / totalPhase
}

func evaluateSide(b *breakdown, c int, us *dragontoothmg.Bitboards, occ uint64) {
	pieces := [7]uint64{
		dragontoothmg.Pawn:   us.Pawns,
		dragontoothmg.Knight: us.Knights,
		dragontoothmg.Bishop: us.Bishops,
		dragontoothmg.Rook:   us.Rooks,
		dragontoothmg.Queen:  us.Queens,
		dragontoothmg.King:   us.Kings,
	}
	for pt := dragontoothmg.Pawn; pt <= dragontoothmg.King; pt++ {
		for x := pieces[pt]; x != 0; x &= x - 1 {
			sq := bits.TrailingZeros64(x)
			idx := sq
			if c == 1 {
				idx = flip[sq]
			}
			b.terms[termMaterial][c].add(pieceValueMG[pt], pieceValueEG[pt])
			b.terms[termPSQT][c].add(psqtMG[pt][idx], psqtEG[pt][idx])

			var attacks uint64
			switch pt {
			case dragontoothmg.Knight:
				attacks = knightMasks[sq]
			case dragontoothmg.Bishop:
				attacks = dragontoothmg.CalculateBishopMoveBitboard(uint8(sq), occ)
			case dragontoothmg.Rook:
				attacks = dragontoothmg.CalculateRookMoveBitboard(uint8(sq), occ)
			case dragontoothmg.Queen:
				attacks = dragontoothmg.CalculateBishopMoveBitboard(uint8(sq), occ) |
					dragontoothmg.CalculateRookMoveBitboard(uint8(sq), occ)
			default:
				continue
			}
			n := Value(bits.OnesCount64(attacks &^ us.All))
			b.terms[termMobility][c].add(n*mobilityValueMG[pt], n*mobilityValueEG[pt])
		}
	}
	if bits.OnesCount64(us.Bishops) >= 2 {
		b.terms[termBishopPair][c].add(bishopPairMG, bishopPairEG)
	}
}

// Phase returns the non-pawn material left on the board, from 24 with all
// pieces present down to 0.
func Phase(pos *position.Position) int {
	return phase(pos.Board())
}

func phase(board *dragontoothmg.Board) int {
	p := bits.OnesCount64(board.White.Knights|board.Black.Knights)*knightPhase +
		bits.OnesCount64(board.White.Bishops|board.Black.Bishops)*bishopPhase +
		bits.OnesCount64(board.White.Rooks|board.Black.Rooks)*rookPhase +
		bits.OnesCount64(board.White.Queens|board.Black.Queens)*queenPhase
	return min(p, totalPhase)
}

func analyse(board *dragontoothmg.Board) *breakdown {
	b := &breakdown{phase: phase(board)}

	occ := board.White.All | board.Black.All
	evaluateSide(b, 0, &board.White, occ)
	evaluateSide(b, 1, &board.Black, occ)
	return b
}

// whiteScore returns the tapered evaluation from White's point of view,
// without tempo.
func (b *breakdown) whiteScore() Value {
	w, bl := b.total(0), b.total(1)
	return b.taper(score{w.mg - bl.mg, w.eg - bl.eg})
}

// Evaluate returns the static evaluation of pos from the side to move's point
// of view.
func Evaluate(pos *position.Position) Value {
	board := pos.Board()
	v := analyse(board).whiteScore()
	if !board.Wtomove {
		v = -v
	}
	return v + tempo
}

// Trace returns a human readable breakdown of the evaluation, in pawns and from
// White's point of view, for the "eval" command.
func Trace(pos *position.Position) string {
	if pos.InCheck() {
		return "Final evaluation: none (in check)"
	}
	b := analyse(pos.Board())

	var sb strings.Builder
	sb.WriteString("     Term    |    White    |    Black    |    Total   \n")
	sb.WriteString("             |   MG    EG  |   MG    EG  |   MG    EG \n")
	sb.WriteString(" ------------+-------------+-------------+------------\n")
	for t := term(0); t < termCount; t++ {
		w, bl := b.terms[t][0], b.terms[t][1]
		fmt.Fprintf(&sb, "%12s | %5.2f %5.2f | %5.2f %5.2f | %5.2f %5.2f \n",
			termNames[t], pawns(w.mg), pawns(w.eg), pawns(bl.mg), pawns(bl.eg),
			pawns(w.mg-bl.mg), pawns(w.eg-bl.eg))
	}
	sb.WriteString(" ------------+-------------+-------------+------------\n")
	w, bl := b.total(0), b.total(1)
	fmt.Fprintf(&sb, "%12s | %5.2f %5.2f | %5.2f %5.2f | %5.2f %5.2f \n",
		"Total", pawns(w.mg), pawns(w.eg), pawns(bl.mg), pawns(bl.eg), pawns(w.mg-bl.mg), pawns(w.eg-bl.eg))

	v := Evaluate(pos)
	if pos.SideToMove() == position.Black {
		v = -v
	}
	fmt.Fprintf(&sb, "\nPhase: %d/%d\nFinal evaluation: %+.2f (white side)", b.phase, totalPhase, pawns(v))
	return sb.String()
}

func pawns(v Value) float64 { return float64(v) / float64(PawnValueEg) }
