package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"goose-uci/config"
	"goose-uci/logging"
	"goose-uci/uci"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run starts the engine and returns the process exit code. Arguments left
// after the flags form a one-shot command, e.g. "bench" or "go perft 5".
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("goose-uci", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Path to a YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			fmt.Fprintln(stderr, "Failed to load configuration:", err)
			return 1
		}
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, zapcore.Lock(zapcore.AddSync(stderr)))
	engine := uci.New(cfg, stdout, stderr, logger)
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := &errgroup.Group{}
	done := make(chan struct{})

	// SIGINT and SIGTERM end the session like "quit".
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-done:
		case sig := <-sigCh:
			logger.Info("Received shutdown signal", "signal", sig.String())
			cancel()
		}
		return nil
	})

	g.Go(func() error {
		defer close(done)
		return engine.Loop(ctx, stdin, fs.Args())
	})

	if err := g.Wait(); err != nil {
		logger.Error("Engine stopped", "error", err)
		return 1
	}
	return 0
}
