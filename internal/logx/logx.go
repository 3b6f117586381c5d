// FILE: internal/logx/logx.go
package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Options selects where and how much to log. Standard output is never used:
// it carries the protocol.
type Options struct {
	Level string
	File  string
}

// New returns a console logger on stderr, or a JSON logger appending to
// File when one is given. The closer releases the file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	if opts.File == "" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		return build(output, level), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("log directory: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
	}
	return build(f, level), f, nil
}

// NewWriter builds a logger over any writer, used in tests
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return build(w, level)
}

func build(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		// keep just the file name
		return fmt.Sprintf("%-24s", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	return zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
}

// ParseLevel accepts zerolog level names; empty means warn
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
