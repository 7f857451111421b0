//go:generate mockgen -destination=mocks/mock_searcher.go -package=mocks goose-uci/search Searcher

// Package search runs searches on a goroutine on behalf of the protocol loop
// and provides the default alpha-beta worker.
package search

import (
	"goose-uci/eval"
	"goose-uci/position"
)

// Searcher is the computation a Pool drives. Search must poll ctx.Stopped
// often and return promptly once it is set.
type Searcher interface {
	Search(ctx *Context) Result
	Clear()
}

// Result is what a finished search reports. Best is MoveNone when the root
// position has no legal move.
type Result struct {
	Best   position.Move
	Ponder position.Move
	Depth  int
	Score  eval.Value
}

// Printer receives protocol output. Each call is written atomically.
type Printer interface {
	Println(lines ...string)
}

// Context is a running search's view of its Pool.
type Context struct {
	pos    *position.Position
	limits Limits
	pool   *Pool
}

// Position returns the search's private copy of the root position.
func (c *Context) Position() *position.Position { return c.pos }

// Limits returns the limits the search was started with.
func (c *Context) Limits() Limits { return c.limits }

// Stopped reports whether the search has been asked to stop.
func (c *Context) Stopped() bool { return c.pool.stop.Load() }

// Pondering reports whether the search is still pondering. It turns false on
// ponderhit.
func (c *Context) Pondering() bool { return c.pool.ponder.Load() }

// Stop ends the search from the inside, when a limit was reached.
func (c *Context) Stop() { c.pool.Stop() }

// AddNodes adds n to the Pool's node counter.
func (c *Context) AddNodes(n uint64) { c.pool.nodes.Add(n) }

// Nodes returns the nodes searched so far.
func (c *Context) Nodes() uint64 { return c.pool.nodes.Load() }

// Println emits protocol output.
func (c *Context) Println(lines ...string) { c.pool.out.Println(lines...) }
