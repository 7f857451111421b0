package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// StartFEN is the FEN string for the standard initial chess position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is returned (wrapped) for any FEN the position cannot be set from.
var ErrInvalidFEN = errors.New("invalid FEN")

func fenError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, fmt.Sprintf(format, args...))
}

// normalizeFEN checks a FEN string and returns it with all six fields present.
// Missing clocks default to "0 1". The move generator indexes its kings blindly,
// so malformed placement is rejected here; Set checks the king safety.
func normalizeFEN(fen string) (string, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return "", fenError("not enough fields in %q", fen)
	}
	if len(fields) > 6 {
		return "", fenError("too many fields in %q", fen)
	}

	// 1. Piece placement
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return "", fenError("incorrect number of ranks")
	}
	var kings [2]int
	var grid [8][8]rune
	for i, rankStr := range ranks {
		if len(rankStr) == 0 {
			return "", fenError("empty rank description")
		}
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file > 7 {
				return "", fenError("rank %d does not have 8 columns", 8-i)
			}
			if !strings.ContainsRune("pnbrqkPNBRQK", ch) {
				return "", fenError("unrecognized piece character %q", ch)
			}
			if (ch == 'p' || ch == 'P') && (i == 0 || i == 7) {
				return "", fenError("pawn on back rank")
			}
			grid[i][file] = ch
			switch ch {
			case 'K':
				kings[White]++
			case 'k':
				kings[Black]++
			}
			file++
		}
		if file != 8 {
			return "", fenError("rank %d does not have 8 columns", 8-i)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return "", fenError("each side needs exactly one king")
	}

	// 2. Side to move
	if fields[1] != "w" && fields[1] != "b" {
		return "", fenError("side to move must be 'w' or 'b'")
	}

	// 3. Castling rights
	if fields[2] != "-" {
		for _, ch := range fields[2] {
			if !strings.ContainsRune("KQkq", ch) {
				return "", fenError("invalid castling rights character %q", ch)
			}
		}
	}

	// 4. En passant target square. The generator trusts it, so a square with
	// no double-pushed pawn in front of it is cleared.
	if ep := fields[3]; ep != "-" {
		want := byte('6')
		if fields[1] == "b" {
			want = '3'
		}
		if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' || ep[1] != want {
			return "", fenError("invalid en passant square %q", ep)
		}
		if !doublePushed(&grid, int(ep[0]-'a'), fields[1] == "w") {
			fields[3] = "-"
		}
	}

	// 5-6. Clocks
	if len(fields) < 5 {
		fields = append(fields, "0")
	}
	if len(fields) < 6 {
		fields = append(fields, "1")
	}
	half, err := strconv.Atoi(fields[4])
	if err != nil || half < 0 || half > 255 {
		return "", fenError("halfmove clock %q is not a number in range", fields[4])
	}
	full, err := strconv.Atoi(fields[5])
	if err != nil || full < 1 || full > 65535 {
		return "", fenError("fullmove number %q is not a number in range", fields[5])
	}
	return strings.Join(fields, " "), nil
}

// doublePushed reports whether a pawn of the side not to move could have just
// advanced two squares on file f. Rows count from rank 8.
func doublePushed(grid *[8][8]rune, f int, whiteToMove bool) bool {
	if whiteToMove {
		return grid[3][f] == 'p' && grid[2][f] == 0 && grid[1][f] == 0
	}
	return grid[4][f] == 'P' && grid[5][f] == 0 && grid[6][f] == 0
}

// flipFEN mirrors a normalized FEN vertically and swaps the colors.
func flipFEN(fen string) string {
	fields := strings.Fields(fen)

	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}

	if fields[2] != "-" {
		var sb strings.Builder
		swapped := swapCase(fields[2])
		for _, ch := range "KQkq" {
			if strings.ContainsRune(swapped, ch) {
				sb.WriteRune(ch)
			}
		}
		fields[2] = sb.String()
	}

	if ep := fields[3]; ep != "-" {
		rank := byte('3')
		if ep[1] == '3' {
			rank = '6'
		}
		fields[3] = string([]byte{ep[0], rank})
	}
	return strings.Join(fields, " ")
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, s)
}
