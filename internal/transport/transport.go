// FILE: internal/transport/transport.go
package transport

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// LineReader yields one protocol line per call and io.EOF at the end
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

// Mode selects between pipe and terminal input
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeOn   Mode = "on"
	ModeOff  Mode = "off"
)

// Open picks a terminal reader with history when stdin is a terminal and the
// mode allows it, and a plain scanner otherwise.
func Open(mode Mode, historyFile string) (LineReader, error) {
	interactive := mode == ModeOn || (mode == ModeAuto && term.IsTerminal(int(os.Stdin.Fd())))
	if interactive {
		return NewTerminal(historyFile)
	}
	return NewScanner(os.Stdin), nil
}

const maxLine = 1024 * 1024

// Scanner reads newline-delimited input; a trailing \r is dropped.
// A line longer than maxLine is discarded and read as an empty line.
type Scanner struct {
	r  io.Reader
	br *bufio.Reader
}

// NewScanner reads lines from r
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r, br: bufio.NewReaderSize(r, 64*1024)}
}

// ReadLine returns the next line without its terminator, and io.EOF after
// the last one
func (s *Scanner) ReadLine() (string, error) {
	var buf []byte
	oversized := false
	for {
		chunk, err := s.br.ReadSlice('\n')
		if !oversized {
			if len(buf)+len(chunk) > maxLine+2 {
				oversized, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case err == nil:
			return s.finish(buf, oversized), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && (len(buf) > 0 || oversized):
			// a last line without a newline still counts
			return s.finish(buf, oversized), nil
		default:
			return "", err
		}
	}
}

func (s *Scanner) finish(buf []byte, oversized bool) string {
	if oversized {
		return ""
	}
	line := strings.TrimSuffix(string(buf), "\n")
	return strings.TrimSuffix(line, "\r")
}

func (s *Scanner) Close() error {
	if c, ok := s.r.(io.Closer); ok && s.r != os.Stdin {
		return c.Close()
	}
	return nil
}
