// FILE: internal/processor/run.go
package processor

import (
	"context"
	"errors"
	"io"

	"gambit/internal/command"
)

// LineReader yields input lines; io.EOF ends the session
type LineReader interface {
	ReadLine() (string, error)
}

type readResult struct {
	line string
	err  error
}

// Run reads and executes commands until quit, end of input or ctx is done.
// Reading happens on a helper goroutine so ctx is honoured while input blocks;
// commands still execute one at a time, in order, on the calling goroutine.
func (p *Processor) Run(ctx context.Context, in LineReader) error {
	lines := make(chan readResult)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		for {
			line, err := in.ReadLine()
			select {
			case lines <- readResult{line: line, err: err}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			p.shutdown("interrupted")
			return ctx.Err()

		case r := <-lines:
			if r.err != nil {
				// a last line without a newline still counts
				if r.line != "" {
					if !p.Execute(command.Parse(r.line)) {
						return nil
					}
				}
				p.shutdown("end of input")
				if errors.Is(r.err, io.EOF) {
					return nil
				}
				return r.err
			}
			if !p.Execute(command.Parse(r.line)) {
				return nil
			}
		}
	}
}
