package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"goose-uci/config"
	"goose-uci/eval"
)

var defaultFENs = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 10",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 11",
	"4rrk1/pp1n3p/3q2pQ/2p1pb2/2PP4/2P3N1/P2B2PP/4RRK1 b - - 7 19",
	"rq3rk1/ppp2ppp/1bnpb3/3N2B1/3NP3/7P/PPPQ1PP1/2KR3R w - - 7 14",
	"r1bq1r1k/1pp1n1pp/1p1p4/4p2Q/4Pp2/1BNP4/PPP2PPP/3R1RK1 w - - 2 14",
	"r3r1k1/2p2ppp/p1p1bn2/8/1q2P3/2NPQN2/PPP3PP/R4RK1 b - - 2 15",
	"r1bbk1nr/pp3p1p/2n5/1N4p1/2Np1B2/8/PPP2PPP/2KR1B1R w kq - 0 13",
	"r1bq1rk1/ppp1nppp/4n3/3p3Q/3P4/1BP1B3/PP1N2PP/R4RK1 w - - 1 16",
	"4r1k1/r1q2ppp/ppp2n2/4P3/5Rb1/1N1BQ3/PPP3PP/R5K1 w - - 1 17",
	"2rqkb1r/ppp2p2/2npb1p1/1N1Nn2p/2P1PP2/8/PP2B1PP/R1BQK2R b KQ - 0 11",
	"r1bq1r1k/b1p1npp1/p2p3p/1p6/3PP3/1B2NN2/PP3PPP/R2Q1RK1 w - - 1 16",
	"3r1rk1/p5pp/bpp1pp2/8/q1PP1P2/b3P3/P2NQRPP/1R2B1K1 b - - 6 22",
	"r1q2rk1/2p1bppp/2Pp4/p6b/Q1PNp3/4B3/PP1R1PPP/2K4R w - - 2 18",
	"4k2r/1pb2ppp/1p2p3/1R1p4/3P4/2r1PN2/P4PPP/1R4K1 b - - 3 22",
	"3q2k1/pb3p1p/4pbp1/2r5/PpN2N2/1P2P2P/5PP1/Q2R2K1 b - - 4 26",
	"6k1/6p1/6Pp/ppp5/3pn2P/1P3K2/1PP2P2/8 b - - 0 1",
	"8/8/8/8/5kp1/P7/8/1K1N4 w - - 0 1",
	"8/8/8/5N2/8/p7/8/2NK3k w - - 0 1",
	"8/3k4/8/8/8/4B3/4KB2/2B5 w - - 0 1",
	"8/8/1P6/5pr1/8/4R3/7k/2K5 w - - 0 1",
}

// BenchResult is what a bench run measured. Elapsed excludes the time spent
// clearing caches on "ucinewgame".
type BenchResult struct {
	Positions int
	Nodes     uint64
	Elapsed   time.Duration
}

// NPS returns the nodes searched per second.
func (r BenchResult) NPS() uint64 {
	return r.Nodes * 1000 / uint64(max(r.Elapsed.Milliseconds(), 1))
}

// Bench runs "bench [ttSize] [threads] [limit] [fenFile] [limitType]" and
// writes its progress and report to the diagnostics stream.
func (e *Engine) Bench(args []string) (BenchResult, error) {
	script, err := e.benchScript(args)
	if err != nil {
		return BenchResult{}, err
	}
	res := e.runBench(script)
	fmt.Fprintf(e.diag, "\n===========================\nTotal time (ms) : %d\nNodes searched  : %d\nNodes/second    : %d\n",
		res.Elapsed.Milliseconds(), res.Nodes, res.NPS())
	e.log.Info("bench done", "positions", res.Positions, "nodes", res.Nodes, "ms", res.Elapsed.Milliseconds())
	return res, nil
}

// benchScript turns the bench arguments into the command lines to replay.
func (e *Engine) benchScript(args []string) ([]string, error) {
	arg := func(i int, def string) string {
		if i < len(args) {
			return args[i]
		}
		return def
	}
	b := e.cfg.Bench
	ttSize := arg(0, strconv.Itoa(b.Hash))
	threads := arg(1, strconv.Itoa(b.Threads))
	limit := arg(2, strconv.Itoa(b.Limit))
	fenFile := arg(3, "default")
	limitType := arg(4, b.LimitType)

	if !slices.Contains(config.LimitTypes, limitType) {
		return nil, fmt.Errorf("unknown bench limit type '%s'", limitType)
	}
	goCmd := "go " + limitType + " " + limit
	if limitType == "eval" {
		goCmd = "eval"
	}

	var fens []string
	switch fenFile {
	case "default":
		fens = defaultFENs
	case "current":
		fens = []string{e.pos.FEN()}
	default:
		var err error
		if fens, err = readLines(fenFile); err != nil {
			return nil, err
		}
	}

	script := []string{
		"setoption name Threads value " + threads,
		"setoption name Hash value " + ttSize,
		"ucinewgame",
	}
	for _, fen := range fens {
		if strings.Contains(fen, "setoption") {
			script = append(script, fen)
			continue
		}
		script = append(script, "position fen "+fen, goCmd)
	}
	return script, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open bench file '%s': %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bench file '%s': %w", path, err)
	}
	return lines, nil
}

// runBench replays script through the command handlers, searching
// synchronously, and sums the nodes of every search.
func (e *Engine) runBench(script []string) BenchResult {
	total := 0
	for _, cmd := range script {
		if strings.HasPrefix(cmd, "go ") || cmd == "eval" {
			total++
		}
	}

	var res BenchResult
	start := time.Now()
	for _, cmd := range script {
		tokens := strings.Fields(cmd)
		if len(tokens) == 0 {
			continue
		}
		switch token, args := tokens[0], tokens[1:]; token {
		case "go", "eval":
			res.Positions++
			fmt.Fprintf(e.diag, "\nPosition: %d/%d\n", res.Positions, total)
			if token == "eval" {
				e.out.Println(eval.Trace(e.pos))
				continue
			}
			e.goCmd(args)
			e.pool.WaitForSearchFinished()
			res.Nodes += e.pool.NodesSearched()
		case "setoption":
			e.setOption(args)
		case "position":
			e.position(args)
		case "ucinewgame":
			// Clearing may take a while and is not search time.
			e.pool.Clear()
			start = time.Now()
		}
	}
	// +1 keeps the nodes per second finite.
	res.Elapsed = time.Since(start) + time.Millisecond
	return res
}
