// Package uci implements the protocol loop: it parses controller commands,
// keeps the live position and drives searches through a search.Pool.
package uci

import (
	"io"
	"os"

	"goose-uci/config"
	"goose-uci/logging"
	"goose-uci/options"
	"goose-uci/output"
	"goose-uci/position"
	"goose-uci/search"
)

const (
	defaultHashMB = 16
	maxHashMB     = 33554432
)

// Engine is one protocol session: the live position with its state history,
// the option registry and the search pool. Only the protocol goroutine calls
// its methods.
type Engine struct {
	cfg  *config.Config
	out  *output.Writer
	diag io.Writer
	log  logging.Logger

	opts   *options.Registry
	pool   *search.Pool
	pos    *position.Position
	states *position.StateList

	trafficLog *os.File
}

// Option customizes an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	searcher search.Searcher
}

// WithSearcher replaces the default alpha-beta worker.
func WithSearcher(s search.Searcher) Option {
	return func(o *engineOptions) { o.searcher = s }
}

// The default worker's knobs, reached through the Searcher the pool drives.
type (
	resizer interface{ Resize(mb int) }
	timeKnobs interface {
		SetMoveOverhead(ms int)
		SetSlowMover(pct int)
		SetNodesTime(n int)
	}
)

// New returns a session on the initial position. Protocol responses go to
// stdout; bench progress and reports go to diag.
func New(cfg *config.Config, stdout, diag io.Writer, log logging.Logger, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.searcher == nil {
		o.searcher = search.NewWorker(defaultHashMB, log.With("component", "search"))
	}

	e := &Engine{
		cfg:  cfg,
		out:  output.New(stdout),
		diag: diag,
		log:  log,
		opts: options.New(),
	}
	e.pool = search.NewPool(o.searcher, e.out, log.With("component", "pool"))
	e.pos, e.states = position.New()
	e.addOptions()

	for _, name := range cfg.OptionNames() {
		if err := e.opts.Set(name, cfg.Options[name]); err != nil {
			e.log.Warn("skipping configured option", "name", name, "error", err)
		}
	}
	return e
}

func (e *Engine) addOptions() {
	e.opts.Add(options.String("Debug Log File", "<empty>", e.onDebugLogFile))
	e.opts.Add(options.Spin("Threads", 1, 1, 512, nil))
	e.opts.Add(options.Spin("Hash", defaultHashMB, 1, maxHashMB, func(o *options.Option) {
		if r, ok := e.pool.Searcher().(resizer); ok {
			e.pool.WaitForSearchFinished()
			r.Resize(o.Int())
		}
	}))
	e.opts.Add(options.Button("Clear Hash", func(*options.Option) { e.pool.Clear() }))
	e.opts.Add(options.Check("Ponder", false, nil))
	e.opts.Add(options.Spin("MultiPV", 1, 1, 500, nil))
	e.opts.Add(options.Spin("Move Overhead", search.DefaultMoveOverhead, 0, 5000, func(o *options.Option) {
		if k, ok := e.pool.Searcher().(timeKnobs); ok {
			k.SetMoveOverhead(o.Int())
		}
	}))
	e.opts.Add(options.Spin("Slow Mover", search.DefaultSlowMover, 10, 1000, func(o *options.Option) {
		if k, ok := e.pool.Searcher().(timeKnobs); ok {
			k.SetSlowMover(o.Int())
		}
	}))
	e.opts.Add(options.Spin("nodestime", 0, 0, 10000, func(o *options.Option) {
		if k, ok := e.pool.Searcher().(timeKnobs); ok {
			k.SetNodesTime(o.Int())
		}
	}))
	e.opts.Add(options.Check("UCI_Chess960", false, nil))
	e.opts.Add(options.Check("UCI_AnalyseMode", false, nil))
}

// onDebugLogFile starts or stops copying the protocol traffic to a file.
func (e *Engine) onDebugLogFile(o *options.Option) {
	e.closeTrafficLog()
	name := o.Value()
	if name == "" || name == "<empty>" {
		return
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		e.log.Warn("cannot open debug log file", "path", name, "error", err)
		e.out.Println("info string Unable to open debug log file " + name)
		return
	}
	e.trafficLog = f
	e.out.SetLog(f)
}

func (e *Engine) closeTrafficLog() {
	if e.trafficLog == nil {
		return
	}
	e.out.SetLog(nil)
	if err := e.trafficLog.Close(); err != nil {
		e.log.Warn("closing debug log file", "error", err)
	}
	e.trafficLog = nil
}

// Options returns the option registry.
func (e *Engine) Options() *options.Registry { return e.opts }

// Position returns the live position.
func (e *Engine) Position() *position.Position { return e.pos }

// States returns the history backing the live position.
func (e *Engine) States() *position.StateList { return e.states }

// Searching reports whether a search is running.
func (e *Engine) Searching() bool { return e.pool.Searching() }

// NodesSearched returns the node count of the current or last search.
func (e *Engine) NodesSearched() uint64 { return e.pool.NodesSearched() }

// Close stops any search, waits for it and releases the session's resources.
// The Engine cannot search afterwards.
func (e *Engine) Close() {
	e.pool.Quit()
	e.closeTrafficLog()
}
