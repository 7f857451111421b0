package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"goose-uci/config"
	"goose-uci/logging"
	"goose-uci/uci"
)

// Runs the engine's "bench" command with flag-driven parameters and logs the
// search speed every second while it runs.
// Usage: go run ./cmd/benchrun -limit 8 -limittype depth
func main() {
	defaults := config.Default().Bench
	hash := flag.Int("hash", defaults.Hash, "Transposition table size in MB")
	threads := flag.Int("threads", defaults.Threads, "Search threads")
	limit := flag.Int("limit", defaults.Limit, "Limit value per position")
	limitType := flag.String("limittype", defaults.LimitType, "depth, perft, nodes, movetime, mate or eval")
	fens := flag.String("fens", "default", "default, current, or a file with one FEN per line")
	verbose := flag.Bool("v", false, "Print the engine's protocol output")
	flag.Parse()

	logger := logging.New("", "console", nil)
	var out io.Writer = io.Discard
	if *verbose {
		out = os.Stdout
	}
	engine := uci.New(config.Default(), out, os.Stderr, logger)
	defer engine.Close()

	args := []string{strconv.Itoa(*hash), strconv.Itoa(*threads), strconv.Itoa(*limit), *fens, *limitType}

	g := &errgroup.Group{}
	done := make(chan struct{})
	var res uci.BenchResult

	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				logger.Debug("searching", "nodes", engine.NodesSearched())
			}
		}
	})

	g.Go(func() error {
		defer close(done)
		var err error
		res, err = engine.Bench(args)
		return err
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "bench failed:", err)
		os.Exit(1)
	}
	fmt.Printf("Positions: %d\tNodes: %d\tTime: %s\tNPS: %d\n", res.Positions, res.Nodes, res.Elapsed, res.NPS())
}
