// Package output serializes protocol output shared by the protocol loop and
// the search goroutine.
package output

import (
	"io"
	"strings"
	"sync"
)

// Writer emits whole responses with a single Write under a lock, so lines from
// different goroutines never interleave.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	log io.Writer
}

// New wraps w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Println writes lines as one block, each terminated by a newline.
func (o *Writer) Println(lines ...string) {
	if len(lines) == 0 {
		return
	}
	o.write(strings.Join(lines, "\n") + "\n")
}

// SetLog starts copying the traffic to w, or stops when w is nil. Output
// lines are prefixed with ">> " and input lines with "<< ".
func (o *Writer) SetLog(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.log = w
}

// LogInput records a line read from the controller in the traffic log.
func (o *Writer) LogInput(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.log != nil {
		_, _ = io.WriteString(o.log, "<< "+line+"\n")
	}
}

func (o *Writer) write(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	// Nowhere to report a failed write to the controller; the loop notices EOF
	// on its input instead.
	_, _ = io.WriteString(o.w, s)
	if o.log != nil {
		_, _ = io.WriteString(o.log, prefixLines(">> ", s))
	}
}

func prefixLines(prefix, s string) string {
	var sb strings.Builder
	for _, line := range strings.SplitAfter(strings.TrimSuffix(s, "\n"), "\n") {
		sb.WriteString(prefix)
		sb.WriteString(line)
	}
	sb.WriteByte('\n')
	return sb.String()
}
