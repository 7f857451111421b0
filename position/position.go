// Package position owns the live board state and the history arena needed to
// apply and undo moves. Move legality is delegated to dragontoothmg.
package position

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// Move is a move in the generator's encoding.
type Move = dragontoothmg.Move

// Sentinel moves. Neither can appear in a legal-move list: from and to are the
// same square.
const (
	MoveNone Move = 0
	MoveNull Move = 65 // b1b1
)

// Color identifies a side.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Position is the mutable board state plus an index into the StateList that
// backs its history. A Position must not be copied after a move was applied:
// the undo closures refer to the board in place.
type Position struct {
	board    dragontoothmg.Board
	states   *StateList
	st       int
	chess960 bool
}

// New returns a Position set to the initial position on a fresh StateList.
func New() (*Position, *StateList) {
	p := &Position{}
	states := NewStateList()
	if err := p.Set(StartFEN, false, states); err != nil {
		panic(err)
	}
	return p, states
}

// Set initializes the position from a FEN string on a fresh, one-element
// StateList. On error the position is left untouched.
func (p *Position) Set(fen string, chess960 bool, states *StateList) (err error) {
	if states == nil || states.Len() != 1 {
		panic("position: Set requires a fresh state list")
	}
	fen, err = normalizeFEN(fen)
	if err != nil {
		return err
	}

	var board dragontoothmg.Board
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fenError("%v", r)
			}
		}()
		board = dragontoothmg.ParseFen(fen)
	}()
	if err != nil {
		return err
	}
	// A king that can be captured leaves the generator without a king to index.
	opp := board
	opp.Wtomove = !opp.Wtomove
	if opp.OurKingInCheck() {
		return fenError("side not to move is in check")
	}

	p.board = board
	p.states = states
	p.st = 0
	p.chess960 = chess960
	states.states[0] = StateInfo{
		Key:    board.Hash(),
		Rule50: int(board.Halfmoveclock),
	}
	return nil
}

// check panics when the position no longer points into a live entry of its
// StateList.
func (p *Position) check() {
	if p.states == nil || p.st < 0 || p.st >= len(p.states.states) {
		panic("position: state history no longer backs this position")
	}
}

// DoMove applies a legal move in place and appends its entry to the StateList.
func (p *Position) DoMove(m Move) {
	p.check()
	if p.st != len(p.states.states)-1 {
		panic("position: DoMove on a position that is not at the head of its history")
	}
	undo := p.board.Apply(m)

	prev := &p.states.states[p.st]
	p.st = p.states.push(StateInfo{
		Key:           p.board.Hash(),
		Rule50:        int(p.board.Halfmoveclock),
		PliesFromNull: prev.PliesFromNull + 1,
		Move:          m,
		undo:          undo,
	})
}

// UndoMove takes back the last move applied with DoMove.
func (p *Position) UndoMove() {
	p.check()
	st := &p.states.states[p.st]
	if st.undo == nil {
		panic("position: no move to undo")
	}
	st.undo()
	p.states.truncate(p.st)
	p.st--
}

// Clone returns an independent copy of the position whose history is a
// read-only snapshot of the current one. Moves applied to the clone can be
// undone back to the snapshot head, never past it.
func (p *Position) Clone() *Position {
	p.check()
	return &Position{
		board:    p.board,
		states:   p.states.snapshot(),
		st:       p.st,
		chess960: p.chess960,
	}
}

// States returns the StateList backing the position.
func (p *Position) States() *StateList { return p.states }

// StateIndex returns the index of the current entry in the StateList.
func (p *Position) StateIndex() int { return p.st }

// State returns the current history entry.
func (p *Position) State() StateInfo {
	p.check()
	return p.states.states[p.st]
}

// Board exposes the underlying board for read-only use.
func (p *Position) Board() *dragontoothmg.Board { return &p.board }

// FEN returns the FEN string of the current position.
func (p *Position) FEN() string { return p.board.ToFen() }

// Key returns the Zobrist key of the current position.
func (p *Position) Key() uint64 { return p.board.Hash() }

// Chess960 reports the variant flag the position was set with.
func (p *Position) Chess960() bool { return p.chess960 }

// SideToMove reports which side is to play.
func (p *Position) SideToMove() Color {
	if p.board.Wtomove {
		return White
	}
	return Black
}

// Rule50 returns the halfmove clock.
func (p *Position) Rule50() int { return int(p.board.Halfmoveclock) }

// GamePly returns the number of plies played since the start of the game.
func (p *Position) GamePly() int {
	ply := 2 * (int(p.board.Fullmoveno) - 1)
	if !p.board.Wtomove {
		ply++
	}
	return ply
}

// LegalMoves enumerates the legal moves of the side to move.
func (p *Position) LegalMoves() []Move { return p.board.GenerateLegalMoves() }

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool { return len(p.board.GenerateLegalMoves()) > 0 }

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.board.OurKingInCheck() }

// IsCapture reports whether m captures a piece, en passant included.
func (p *Position) IsCapture(m Move) bool { return dragontoothmg.IsCapture(m, &p.board) }

// PieceOn returns the piece type and color on sq, or dragontoothmg.Nothing.
func (p *Position) PieceOn(sq uint8) (dragontoothmg.Piece, Color) {
	bb := uint64(1) << sq
	if p.board.White.All&bb != 0 {
		return pieceType(&p.board.White, bb), White
	}
	if p.board.Black.All&bb != 0 {
		return pieceType(&p.board.Black, bb), Black
	}
	return dragontoothmg.Nothing, White
}

func pieceType(bbs *dragontoothmg.Bitboards, bb uint64) dragontoothmg.Piece {
	switch {
	case bbs.Pawns&bb != 0:
		return dragontoothmg.Pawn
	case bbs.Knights&bb != 0:
		return dragontoothmg.Knight
	case bbs.Bishops&bb != 0:
		return dragontoothmg.Bishop
	case bbs.Rooks&bb != 0:
		return dragontoothmg.Rook
	case bbs.Queens&bb != 0:
		return dragontoothmg.Queen
	case bbs.Kings&bb != 0:
		return dragontoothmg.King
	}
	return dragontoothmg.Nothing
}

// IsDraw reports a draw by the fifty-move rule or by repetition. A single
// repetition inside the searched line (within ply plies of the current
// position) already counts; older ones need to occur twice.
func (p *Position) IsDraw(ply int) bool {
	cur := p.State()
	if cur.Rule50 > 99 && (!p.InCheck() || p.HasLegalMoves()) {
		return true
	}
	end := min(cur.Rule50, cur.PliesFromNull)
	count := 0
	for i := 4; i <= end && p.st-i >= 0; i += 2 {
		if p.states.states[p.st-i].Key != cur.Key {
			continue
		}
		if i < ply {
			return true
		}
		count++
		if count >= 2 {
			return true
		}
	}
	return false
}

// Flip mirrors the position, swapping colors, and sets it on the fresh
// StateList given.
func (p *Position) Flip(states *StateList) error {
	return p.Set(flipFEN(p.FEN()), p.chess960, states)
}

// Checkers returns the bitboard of enemy pieces giving check.
func (p *Position) Checkers() uint64 {
	us, them := &p.board.White, &p.board.Black
	if !p.board.Wtomove {
		us, them = them, us
	}
	if us.Kings == 0 {
		return 0
	}
	ksq := uint8(bits.TrailingZeros64(us.Kings))
	occ := us.All | them.All

	checkers := knightAttacks[ksq] & them.Knights
	checkers |= dragontoothmg.CalculateRookMoveBitboard(ksq, occ) & (them.Rooks | them.Queens)
	checkers |= dragontoothmg.CalculateBishopMoveBitboard(ksq, occ) & (them.Bishops | them.Queens)
	checkers |= pawnAttackers(ksq, p.board.Wtomove) & them.Pawns
	return checkers
}

var knightAttacks [64]uint64

func init() {
	jumps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	for sq := 0; sq < 64; sq++ {
		f, r := sq%8, sq/8
		for _, j := range jumps {
			nf, nr := f+j[0], r+j[1]
			if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
				knightAttacks[sq] |= uint64(1) << uint(nr*8+nf)
			}
		}
	}
}

// pawnAttackers returns the squares from which an enemy pawn attacks sq.
func pawnAttackers(sq uint8, whiteKing bool) uint64 {
	f, r := int(sq%8), int(sq/8)
	dr := 1
	if !whiteKing {
		dr = -1
	}
	var bb uint64
	nr := r + dr
	if nr < 0 || nr > 7 {
		return 0
	}
	if f > 0 {
		bb |= uint64(1) << uint(nr*8+f-1)
	}
	if f < 7 {
		bb |= uint64(1) << uint(nr*8+f+1)
	}
	return bb
}

// String renders the board, FEN, key and checkers for the "d" command.
func (p *Position) String() string {
	const separator = "\n +---+---+---+---+---+---+---+---+\n"
	var sb strings.Builder
	sb.WriteString(separator)
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			pt, c := p.PieceOn(uint8(r*8 + f))
			ch := " pnbrqk"[pt]
			if c == White && pt != dragontoothmg.Nothing {
				ch -= 'a' - 'A'
			}
			sb.WriteString(" | ")
			sb.WriteByte(ch)
		}
		fmt.Fprintf(&sb, " | %d%s", r+1, separator)
	}
	sb.WriteString("   a   b   c   d   e   f   g   h\n")

	fmt.Fprintf(&sb, "\nFen: %s\nKey: %016X\nCheckers: ", p.FEN(), p.Key())
	for checkers := p.Checkers(); checkers != 0; checkers &= checkers - 1 {
		sq := uint8(bits.TrailingZeros64(checkers))
		sb.WriteByte('a' + sq%8)
		sb.WriteByte('1' + sq/8)
		sb.WriteByte(' ')
	}
	return sb.String()
}
