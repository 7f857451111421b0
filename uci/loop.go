package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const maxLineSize = 1 << 20

// Loop reads commands from in until "quit", end of input or ctx is done,
// which all count as "quit". With args, the arguments form a single command
// line that is executed once instead, and Loop returns when it is done.
func (e *Engine) Loop(ctx context.Context, in io.Reader, args []string) error {
	if len(args) > 0 {
		cmd := strings.Join(args, " ")
		e.log.Info("one-shot mode", "command", cmd)
		e.Execute(cmd)
		e.waitSearch(ctx)
		return nil
	}

	e.log.Info("interactive mode")
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("interrupted, quitting")
			e.Execute("quit")
			return nil
		case line, ok := <-lines:
			if !ok {
				e.log.Debug("end of input")
				e.Execute("quit")
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read commands: %w", err)
					}
				default:
				}
				return nil
			}
			if !e.Execute(line) {
				return nil
			}
		}
	}
}

// waitSearch waits for a search started in one-shot mode, stopping it when
// ctx is done.
func (e *Engine) waitSearch(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		e.pool.WaitForSearchFinished()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		e.pool.Stop()
		<-done
	}
}
