package uci

import (
	"errors"
	"strings"

	"goose-uci/eval"
	"goose-uci/notation"
	"goose-uci/options"
	"goose-uci/position"
)

// Execute runs one command line and reports whether the loop should go on
// reading, which is false only after "quit".
func (e *Engine) Execute(line string) bool {
	e.out.LogInput(line)
	e.log.Debug("command", "line", line)

	tokens := strings.Fields(line)
	token, args := "", []string(nil)
	if len(tokens) > 0 {
		token, args = tokens[0], tokens[1:]
	}

	switch token {
	case "":
		// blank line
	case "quit", "stop":
		e.pool.Stop()
	case "ponderhit":
		// The controller played the expected move: keep searching, no
		// longer pondering.
		e.pool.PonderHit()
	case "uci":
		e.out.Println("id name " + e.cfg.Engine.Name + "\nid author " + e.cfg.Engine.Author + "\n" +
			e.opts.String() + "\nuciok")
	case "isready":
		e.out.Println("readyok")
	case "setoption":
		if e.idle(token) {
			e.setOption(args)
		}
	case "go":
		if e.idle(token) {
			e.goCmd(args)
		}
	case "position":
		if e.idle(token) {
			e.position(args)
		}
	case "ucinewgame":
		if e.idle(token) {
			e.pool.Clear()
		}
	case "flip":
		if e.idle(token) {
			e.flip()
		}
	case "bench":
		if e.idle(token) {
			if _, err := e.Bench(args); err != nil {
				e.out.Println("info string " + err.Error())
			}
		}
	case "d":
		e.out.Println(e.pos.String())
	case "eval":
		e.out.Println(eval.Trace(e.pos))
	default:
		e.out.Println("Unknown command: " + line)
	}
	return token != "quit"
}

// idle reports whether cmd may touch the session. A search that was asked to
// stop is waited for; a running one makes cmd rejected with a diagnostic.
func (e *Engine) idle(cmd string) bool {
	if !e.pool.Searching() {
		return true
	}
	if e.pool.Stopping() {
		e.pool.WaitForSearchFinished()
		return true
	}
	e.log.Warn("command rejected while searching", "command", cmd)
	e.out.Println("info string " + cmd + " ignored: search in progress")
	return false
}

// position sets the position from "startpos" or "fen <fen>" on a fresh state
// history, then plays the moves that follow "moves" up to the first one that
// is not legal.
func (e *Engine) position(args []string) {
	if len(args) == 0 {
		return
	}

	var fen string
	rest := args[1:]
	switch args[0] {
	case "startpos":
		fen = position.StartFEN
	case "fen":
		i := 0
		for i < len(rest) && rest[i] != "moves" {
			i++
		}
		fen = strings.Join(rest[:i], " ")
		rest = rest[i:]
	default:
		return
	}

	states := position.NewStateList()
	if err := e.pos.Set(fen, e.opts.Bool("UCI_Chess960"), states); err != nil {
		e.log.Warn("rejected position", "fen", fen, "error", err)
		e.out.Println("info string " + err.Error())
		return
	}
	e.states = states

	if len(rest) == 0 || rest[0] != "moves" {
		return
	}
	for _, tok := range rest[1:] {
		m := notation.ParseMove(e.pos, tok)
		if m == position.MoveNone {
			e.log.Debug("move list truncated", "token", tok)
			break
		}
		e.pos.DoMove(m)
	}
}

// setOption handles "setoption name <name...> [value <value...>]". Both the
// name and the value may contain spaces.
func (e *Engine) setOption(args []string) {
	if len(args) > 0 {
		args = args[1:] // "name"
	}
	var name, value []string
	i := 0
	for ; i < len(args) && args[i] != "value"; i++ {
		name = append(name, args[i])
	}
	if i < len(args) {
		value = args[i+1:]
	}

	n, v := strings.Join(name, " "), strings.Join(value, " ")
	err := e.opts.Set(n, v)
	switch {
	case err == nil:
		e.log.Debug("option set", "name", n, "value", v)
	case errors.Is(err, options.ErrUnknownOption):
		e.out.Println("No such option: " + n)
	default:
		e.out.Println("info string " + err.Error())
	}
}

func (e *Engine) goCmd(args []string) {
	limits, ponder := ParseGo(e.pos, args)
	if !e.pool.StartThinking(e.pos, limits, ponder) {
		e.out.Println("info string go ignored: search in progress")
	}
}

// flip mirrors the live position on a fresh state history.
func (e *Engine) flip() {
	states := position.NewStateList()
	if err := e.pos.Flip(states); err != nil {
		e.out.Println("info string " + err.Error())
		return
	}
	e.states = states
}
