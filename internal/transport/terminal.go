// FILE: internal/transport/terminal.go
package transport

import (
	"errors"
	"io"
	"os"

	"github.com/chzyer/readline"
)

// Terminal reads from an interactive terminal with line editing and history.
// Prompts go to stderr so stdout carries protocol lines only.
type Terminal struct {
	rl *readline.Instance
}

// NewTerminal opens an interactive readline session. historyFile may be
// empty to keep no history.
func NewTerminal(historyFile string) (*Terminal, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "uci> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	return &Terminal{rl: rl}, nil
}

// ReadLine maps Ctrl-C and Ctrl-D to end of input
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (t *Terminal) Close() error {
	return t.rl.Close()
}
