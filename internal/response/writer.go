// FILE: internal/response/writer.go
package response

import (
	"bufio"
	"io"
	"sync"

	"gambit/internal/core"
)

// Writer emits protocol lines. Each call writes one complete line and flushes
// before returning, so line order is call order across goroutines.
type Writer struct {
	mu  sync.Mutex
	out *bufio.Writer
	err error
	tap func(line string)
}

// NewWriter creates a writer that emits one line per call to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
}

// Tap registers a callback that sees every emitted line
func (w *Writer) Tap(fn func(line string)) {
	w.mu.Lock()
	w.tap = fn
	w.mu.Unlock()
}

// Err returns the first write error. Writes after an error are dropped.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Writer) ID(name, author string) {
	w.emit("id name "+name, "id author "+author)
}

func (w *Writer) UCIOK() {
	w.emit("uciok")
}

func (w *Writer) ReadyOK() {
	w.emit("readyok")
}

// Option writes the declaration of opt
func (w *Writer) Option(opt core.EngineOption) {
	w.emit(FormatOption(opt))
}

// Info writes one info line. An info with no fields writes nothing.
func (w *Writer) Info(info core.Info) {
	if info.Empty() {
		return
	}
	w.emit(FormatInfo(info))
}

func (w *Writer) InfoString(s string) {
	w.emit(FormatInfo(core.Info{String: s}))
}

// BestMove writes the final answer of a search
func (w *Writer) BestMove(best, ponder string) {
	w.emit(FormatBestMove(best, ponder))
}

func (w *Writer) emit(lines ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return
	}
	for _, line := range lines {
		if _, err := w.out.WriteString(line + "\n"); err != nil {
			w.err = err
			return
		}
		if w.tap != nil {
			w.tap(line)
		}
	}
	w.err = w.out.Flush()
}
