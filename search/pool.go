package search

import (
	"sync"
	"sync/atomic"

	"goose-uci/logging"
	"goose-uci/notation"
	"goose-uci/position"
)

// Pool owns the search goroutine and its run, ponder and stop flags. The
// protocol loop starts searches and signals them through it; the search only
// observes the flags through its Context.
type Pool struct {
	searcher Searcher
	out      Printer
	log      logging.Logger

	mu      sync.Mutex
	running bool
	quit    bool
	done    chan struct{}

	stop   atomic.Bool
	ponder atomic.Bool
	nodes  atomic.Uint64

	// wake nudges a finished search waiting for stop or ponderhit.
	wake chan struct{}
}

// NewPool returns an idle Pool driving s.
func NewPool(s Searcher, out Printer, log logging.Logger) *Pool {
	return &Pool{
		searcher: s,
		out:      out,
		log:      log,
		wake:     make(chan struct{}, 1),
	}
}

// Searcher returns the computation the Pool drives.
func (p *Pool) Searcher() Searcher { return p.searcher }

// StartThinking starts a search on a copy of pos, history included, and
// returns immediately. It returns false, and does nothing, when a search is
// already running or the Pool was shut down.
func (p *Pool) StartThinking(pos *position.Position, limits Limits, ponder bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quit || p.running {
		return false
	}

	p.running = true
	p.stop.Store(false)
	p.ponder.Store(ponder)
	p.nodes.Store(0)
	select {
	case <-p.wake:
	default:
	}

	done := make(chan struct{})
	p.done = done
	ctx := &Context{pos: pos.Clone(), limits: limits, pool: p}
	p.log.Debug("search started", "ponder", ponder, "infinite", limits.Infinite, "depth", limits.Depth)
	go p.run(ctx, done)
	return true
}

func (p *Pool) run(ctx *Context, done chan struct{}) {
	defer close(done)

	res := p.searcher.Search(ctx)

	// A search started with ponder or infinite may finish on its own, but
	// bestmove must wait for stop or ponderhit.
	for !p.stop.Load() && (p.ponder.Load() || ctx.limits.Infinite) {
		<-p.wake
	}
	p.stop.Store(true)

	if ctx.limits.Perft == 0 {
		line := "bestmove " + notation.Move(res.Best)
		if res.Ponder != position.MoveNone {
			line += " ponder " + notation.Move(res.Ponder)
		}
		p.out.Println(line)
	}
	p.log.Debug("search finished", "nodes", p.nodes.Load(), "depth", res.Depth)

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

func (p *Pool) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stop asks the running search to finish. It is a no-op when idle.
func (p *Pool) Stop() {
	p.stop.Store(true)
	p.signal()
}

// PonderHit turns a pondering search into a normal one without restarting
// it. It is a no-op unless a search is pondering.
func (p *Pool) PonderHit() {
	if !p.ponder.CompareAndSwap(true, false) {
		return
	}
	p.signal()
}

// WaitForSearchFinished blocks until the current search, if any, is done.
func (p *Pool) WaitForSearchFinished() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Searching reports whether a search is running.
func (p *Pool) Searching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Pondering reports whether the running search is pondering.
func (p *Pool) Pondering() bool { return p.Searching() && p.ponder.Load() }

// Stopping reports whether a running search has been asked to stop.
func (p *Pool) Stopping() bool { return p.Searching() && p.stop.Load() }

// NodesSearched returns the node count of the current or last search.
func (p *Pool) NodesSearched() uint64 { return p.nodes.Load() }

// Clear waits for the search to finish and resets the searcher's caches.
func (p *Pool) Clear() {
	p.WaitForSearchFinished()
	p.searcher.Clear()
}

// Quit stops the search, waits for it and refuses any further start.
func (p *Pool) Quit() {
	p.mu.Lock()
	p.quit = true
	p.mu.Unlock()
	p.Stop()
	p.WaitForSearchFinished()
}
