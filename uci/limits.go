package uci

import (
	"strconv"
	"time"

	"goose-uci/notation"
	"goose-uci/position"
	"goose-uci/search"
)

// ParseGo builds the search limits of a "go" command from the tokens after
// "go", and reports whether the search must start pondering. Unknown tokens
// are skipped, and so are "searchmoves" entries that are not legal in pos.
// "searchmoves" takes every token left on the line.
func ParseGo(pos *position.Position, tokens []string) (search.Limits, bool) {
	// As early as possible
	limits := search.Limits{StartTime: time.Now()}
	ponder := false

	i := 0
	arg := func() int64 {
		if i+1 >= len(tokens) {
			return 0
		}
		i++
		n, err := strconv.ParseInt(tokens[i], 10, 64)
		if err != nil {
			return 0
		}
		return n
	}

	for ; i < len(tokens); i++ {
		switch tokens[i] {
		case "searchmoves":
			for _, tok := range tokens[i+1:] {
				if m := notation.ParseMove(pos, tok); m != position.MoveNone {
					limits.SearchMoves = append(limits.SearchMoves, m)
				}
			}
			i = len(tokens)
		case "wtime":
			limits.Time[position.White] = arg()
		case "btime":
			limits.Time[position.Black] = arg()
		case "winc":
			limits.Inc[position.White] = arg()
		case "binc":
			limits.Inc[position.Black] = arg()
		case "movestogo":
			limits.MovesToGo = int(arg())
		case "depth":
			limits.Depth = int(arg())
		case "nodes":
			limits.Nodes = uint64(max(arg(), 0))
		case "movetime":
			limits.MoveTime = arg()
		case "mate":
			limits.Mate = int(arg())
		case "perft":
			limits.Perft = int(arg())
		case "infinite":
			limits.Infinite = true
		case "ponder":
			ponder = true
		}
	}
	return limits, ponder
}
