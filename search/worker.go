package search

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/time/rate"

	"goose-uci/eval"
	"goose-uci/logging"
	"goose-uci/notation"
	"goose-uci/position"
)

const (
	// Nodes between two polls of the stop flag and the limits.
	checkInterval = 1024

	// currmove lines start after this long and are rate limited.
	currmoveDelay    = 3 * time.Second
	currmoveInterval = 500 * time.Millisecond

	DefaultMoveOverhead = 30
	DefaultSlowMover    = 100
)

type pvLine []position.Move

func (pv *pvLine) update(m position.Move, child pvLine) {
	*pv = append(append((*pv)[:0], m), child...)
}

// Worker is the default Searcher: iterative deepening negamax with
// quiescence, a transposition table, and MVV-LVA plus killer move ordering.
type Worker struct {
	tt      *TransTable
	killers killers
	log     logging.Logger

	moveOverhead atomic.Int64
	slowMover    atomic.Int64
	nodesTime    atomic.Int64

	// Per search, only touched by the search goroutine.
	ctx       *Context
	limits    Limits
	tm        timeManager
	calls     uint64
	seldepth  int
	stopped   bool
	rootMoves []position.Move
	currmove  *rate.Limiter
}

// NewWorker returns a Worker with a hashMB megabytes transposition table.
func NewWorker(hashMB int, log logging.Logger) *Worker {
	w := &Worker{tt: NewTransTable(hashMB), log: log}
	w.moveOverhead.Store(DefaultMoveOverhead)
	w.slowMover.Store(DefaultSlowMover)
	return w
}

// Resize reallocates the transposition table. Call it only while idle.
func (w *Worker) Resize(mb int) {
	w.tt.Resize(mb)
	w.log.Debug("transposition table resized", "mb", mb)
}

// Clear forgets everything learnt in previous searches.
func (w *Worker) Clear() {
	w.tt.Clear()
	w.killers.clear()
}

// SetMoveOverhead sets the time reserved per move for communication lag.
func (w *Worker) SetMoveOverhead(ms int) { w.moveOverhead.Store(int64(ms)) }

// SetSlowMover scales the time spent per move, in percent.
func (w *Worker) SetSlowMover(pct int) { w.slowMover.Store(int64(pct)) }

// SetNodesTime makes time management count n nodes per millisecond instead of
// reading the clock. Zero disables it.
func (w *Worker) SetNodesTime(n int) { w.nodesTime.Store(int64(n)) }

// Search implements Searcher.
func (w *Worker) Search(ctx *Context) Result {
	w.ctx = ctx
	w.limits = ctx.Limits()
	w.calls = 0
	w.seldepth = 0
	w.stopped = false
	pos := ctx.Position()

	w.tm.init(w.limits, pos.SideToMove(), eval.Phase(pos),
		w.moveOverhead.Load(), w.slowMover.Load(), w.nodesTime.Load())

	if w.limits.Perft > 0 {
		return w.perft(pos, w.limits.Perft)
	}

	w.rootMoves = pos.LegalMoves()
	if len(w.limits.SearchMoves) > 0 {
		filtered := w.rootMoves[:0]
		for _, m := range w.rootMoves {
			if slices.Contains(w.limits.SearchMoves, m) {
				filtered = append(filtered, m)
			}
		}
		w.rootMoves = filtered
	}
	if len(w.rootMoves) == 0 {
		v := eval.ValueDraw
		if pos.InCheck() {
			v = -eval.ValueMate
		}
		ctx.Println("info depth 0 score " + notation.Value(v))
		return Result{Best: position.MoveNone, Score: v}
	}

	w.currmove = rate.NewLimiter(rate.Every(currmoveInterval), 1)
	w.killers.clear()

	maxDepth := eval.MaxPly - 1
	if w.limits.Depth > 0 {
		maxDepth = min(w.limits.Depth, maxDepth)
	}

	res := Result{Best: w.rootMoves[0]}
	for depth := 1; depth <= maxDepth; depth++ {
		var pv pvLine
		v := w.negamax(pos, -eval.ValueInfinite, eval.ValueInfinite, depth, 0, &pv)
		if w.stopped || len(pv) == 0 {
			// Keep a partial first iteration: it is better than nothing.
			if depth == 1 && len(pv) > 0 {
				res.Best = pv[0]
			}
			break
		}

		res.Best, res.Ponder = pv[0], position.MoveNone
		if len(pv) > 1 {
			res.Ponder = pv[1]
		}
		res.Depth, res.Score = depth, v
		w.report(depth, v, pv)

		if w.limits.Mate > 0 && v >= eval.ValueMateInMaxPly && eval.ValueMate-v <= eval.Value(2*w.limits.Mate-1) {
			break
		}
		if w.tm.enabled && !ctx.Pondering() && w.tm.elapsed(ctx.Nodes()) >= w.tm.optimum {
			break
		}
	}

	if res.Ponder == position.MoveNone {
		res.Ponder = w.ponderFromTT(pos, res.Best)
	}
	return res
}

func (w *Worker) negamax(pos *position.Position, alpha, beta eval.Value, depth, ply int, pv *pvLine) eval.Value {
	inCheck := pos.InCheck()
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return w.quiescence(pos, alpha, beta, ply)
	}
	w.visit(ply)
	if w.stopped {
		return 0
	}

	if ply > 0 {
		if pos.IsDraw(ply) {
			return eval.ValueDraw
		}
		if ply >= eval.MaxPly-1 {
			return eval.Evaluate(pos)
		}
		// Mate distance pruning
		alpha = max(eval.MatedIn(ply), alpha)
		beta = min(eval.MateIn(ply+1), beta)
		if alpha >= beta {
			return alpha
		}
	}

	key := pos.Key()
	hashMove := position.MoveNone
	if e, ok := w.tt.Probe(key); ok {
		hashMove = e.Move
		if ply > 0 {
			if v, ok := e.Usable(depth, ply, alpha, beta); ok {
				return v
			}
		}
	}

	moves := w.rootMoves
	if ply > 0 {
		moves = pos.LegalMoves()
	}
	if len(moves) == 0 {
		if inCheck {
			return eval.MatedIn(ply)
		}
		return eval.ValueDraw
	}

	scored := w.scoreMoves(pos, moves, hashMove, ply, false)
	best, bestMove, bound := -eval.ValueInfinite, position.MoveNone, BoundUpper
	for i := range scored {
		pickNext(scored, i)
		m := scored[i].move
		if ply == 0 {
			w.reportCurrMove(depth, m, i+1)
		}

		capture := pos.IsCapture(m)
		var child pvLine
		pos.DoMove(m)
		v := -w.negamax(pos, -beta, -alpha, depth-1, ply+1, &child)
		pos.UndoMove()
		if w.stopped {
			return 0
		}

		if v > best {
			best, bestMove = v, m
			if v > alpha {
				alpha = v
				bound = BoundExact
				pv.update(m, child)
				if v >= beta {
					bound = BoundLower
					if !capture {
						w.killers.insert(m, ply)
					}
					break
				}
			}
		}
	}

	w.tt.Store(key, depth, ply, bestMove, best, bound)
	return best
}

func (w *Worker) quiescence(pos *position.Position, alpha, beta eval.Value, ply int) eval.Value {
	w.visit(ply)
	if w.stopped {
		return 0
	}
	if pos.IsDraw(ply) {
		return eval.ValueDraw
	}

	inCheck := pos.InCheck()
	if ply >= eval.MaxPly-1 {
		if inCheck {
			return eval.ValueDraw
		}
		return eval.Evaluate(pos)
	}

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if inCheck {
			return eval.MatedIn(ply)
		}
		return eval.ValueDraw
	}

	best := -eval.ValueInfinite
	if !inCheck {
		best = eval.Evaluate(pos)
		if best >= beta {
			return best
		}
		alpha = max(alpha, best)
	}

	// In check every evasion is searched, otherwise only captures and
	// promotions.
	scored := w.scoreMoves(pos, moves, position.MoveNone, ply, !inCheck)
	for i := range scored {
		pickNext(scored, i)
		pos.DoMove(scored[i].move)
		v := -w.quiescence(pos, -beta, -alpha, ply+1)
		pos.UndoMove()
		if w.stopped {
			return 0
		}
		if v > best {
			best = v
			if v > alpha {
				alpha = v
				if v >= beta {
					break
				}
			}
		}
	}
	return best
}

// visit counts a node and polls the limits every checkInterval nodes.
func (w *Worker) visit(ply int) {
	w.ctx.AddNodes(1)
	w.seldepth = max(w.seldepth, ply)
	w.calls++
	if w.calls%checkInterval == 0 {
		w.checkLimits()
	}
}

func (w *Worker) checkLimits() {
	if w.ctx.Stopped() {
		w.stopped = true
		return
	}
	// While pondering only stop or ponderhit end the search.
	if w.ctx.Pondering() {
		return
	}
	nodes := w.ctx.Nodes()
	elapsed := time.Since(w.tm.start).Milliseconds()
	if (w.limits.Nodes > 0 && nodes >= w.limits.Nodes) ||
		(w.limits.MoveTime > 0 && elapsed >= w.limits.MoveTime) ||
		(w.tm.enabled && w.tm.elapsed(nodes) >= w.tm.maximum) {
		w.stopped = true
		w.ctx.Stop()
	}
}

func (w *Worker) report(depth int, v eval.Value, pv pvLine) {
	elapsed := time.Since(w.tm.start).Milliseconds()
	nodes := w.ctx.Nodes()
	nps := nodes * 1000 / uint64(max(elapsed, 1))

	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d seldepth %d multipv 1 score %s nodes %d nps %d hashfull %d time %d pv",
		depth, w.seldepth, notation.Value(v), nodes, nps, w.tt.Hashfull(), elapsed)
	for _, m := range pv {
		sb.WriteByte(' ')
		sb.WriteString(notation.Move(m))
	}
	w.ctx.Println(sb.String())
}

func (w *Worker) reportCurrMove(depth int, m position.Move, n int) {
	if time.Since(w.tm.start) < currmoveDelay || !w.currmove.Allow() {
		return
	}
	w.ctx.Println(fmt.Sprintf("info depth %d currmove %s currmovenumber %d", depth, notation.Move(m), n))
}

// ponderFromTT guesses the reply to best from the transposition table when
// the principal variation is too short to provide one.
func (w *Worker) ponderFromTT(pos *position.Position, best position.Move) position.Move {
	if best == position.MoveNone {
		return position.MoveNone
	}
	pos.DoMove(best)
	defer pos.UndoMove()
	if e, ok := w.tt.Probe(pos.Key()); ok && slices.Contains(pos.LegalMoves(), e.Move) {
		return e.Move
	}
	return position.MoveNone
}

func (w *Worker) perft(pos *position.Position, depth int) Result {
	var total uint64
	lines := make([]string, 0, 64)
	for _, e := range pos.Divide(depth, w.ctx.Stopped) {
		lines = append(lines, fmt.Sprintf("%s: %d", notation.Move(e.Move), e.Nodes))
		total += e.Nodes
	}
	lines = append(lines, "", fmt.Sprintf("Nodes searched: %d", total), "")
	w.ctx.AddNodes(total)
	w.ctx.Println(lines...)
	return Result{}
}
