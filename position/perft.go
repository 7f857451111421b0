package position

import "github.com/dylhunn/dragontoothmg"

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	board := p.board
	return perft(&board, depth)
}

func perft(b *dragontoothmg.Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, mv := range moves {
		unapply := b.Apply(mv)
		nodes += perft(b, depth-1)
		unapply()
	}
	return nodes
}

// DivideEntry is the subtree size below one root move.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Divide returns the perft count below each legal root move, in generation
// order. stop, if not nil, is polled before each root move; once it reports
// true the entries counted so far are returned.
func (p *Position) Divide(depth int, stop func() bool) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	board := p.board
	moves := board.GenerateLegalMoves()
	out := make([]DivideEntry, 0, len(moves))
	for _, mv := range moves {
		if stop != nil && stop() {
			break
		}
		unapply := board.Apply(mv)
		out = append(out, DivideEntry{Move: mv, Nodes: perft(&board, depth-1)})
		unapply()
	}
	return out
}
