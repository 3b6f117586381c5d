// FILE: internal/engine/proxy/proxy.go
package proxy

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gambit/internal/core"
	"gambit/internal/engine"
	"gambit/internal/option"
)

const (
	defaultHandshake = 5 * time.Second
	pollInterval     = 5 * time.Millisecond
)

// Engine relays everything to a child UCI engine. The child does its own
// time management; stop and ponderhit are forwarded as they happen.
type Engine struct {
	proc      *process
	log       zerolog.Logger
	handshake time.Duration
	args      []string
	env       []string

	name     string
	author   string
	options  []core.EngineOption
	position core.Position
}

type Option func(*Engine)

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithArgs sets the child command line arguments
func WithArgs(args ...string) Option {
	return func(e *Engine) { e.args = args }
}

// WithEnv appends to the child environment
func WithEnv(env ...string) Option {
	return func(e *Engine) { e.env = env }
}

// WithHandshakeTimeout bounds the uci/uciok exchange at startup
func WithHandshakeTimeout(d time.Duration) Option {
	return func(e *Engine) { e.handshake = d }
}

// New starts the child and completes the uci handshake
func New(path string, opts ...Option) (*Engine, error) {
	e := &Engine{
		log:       zerolog.Nop(),
		handshake: defaultHandshake,
	}
	for _, opt := range opts {
		opt(e)
	}

	proc, err := startProcess(path, e.args, e.env, e.log)
	if err != nil {
		return nil, err
	}
	e.proc = proc

	if err := e.initialize(); err != nil {
		proc.close(time.Second)
		return nil, err
	}
	e.log.Info().Str("path", path).Str("name", e.name).Int("options", len(e.options)).Msg("engine attached")
	return e, nil
}

func (e *Engine) initialize() error {
	if err := e.proc.send("uci"); err != nil {
		return err
	}

	seen := func(line string) {
		switch {
		case strings.HasPrefix(line, "id name "):
			e.name = strings.TrimPrefix(line, "id name ")
		case strings.HasPrefix(line, "id author "):
			e.author = strings.TrimPrefix(line, "id author ")
		case strings.HasPrefix(line, "option "):
			if opt, ok := parseOption(line); ok {
				e.options = append(e.options, opt)
			} else {
				e.log.Warn().Str("line", line).Msg("unreadable option from engine")
			}
		}
	}
	if _, err := e.proc.await(context.Background(), e.handshake, equals("uciok"), seen); err != nil {
		return fmt.Errorf("waiting for uciok: %w", err)
	}
	return e.waitReady()
}

func (e *Engine) waitReady() error {
	if err := e.proc.send("isready"); err != nil {
		return err
	}
	if _, err := e.proc.await(context.Background(), e.handshake, equals("readyok"), nil); err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}
	return nil
}

func (e *Engine) Identify() (string, string) {
	return e.name, e.author
}

func (e *Engine) Options() []core.EngineOption {
	return e.options
}

func (e *Engine) NewGame() error {
	if err := e.proc.send("ucinewgame"); err != nil {
		return err
	}
	e.position = core.StartPosition()
	return e.waitReady()
}

// SetPosition checks legality locally so a bad position never reaches the child
func (e *Engine) SetPosition(pos core.Position) error {
	if _, err := engine.Resolve(pos); err != nil {
		return err
	}
	e.position = pos
	return nil
}

// ApplyOption forwards a setoption to the child engine. Buttons are sent
// without a value.
func (e *Engine) ApplyOption(name string, value any) error {
	line := "setoption name " + name
	switch v := value.(type) {
	case core.ButtonPress:
	case bool:
		line += " value " + strconv.FormatBool(v)
	case int:
		line += " value " + strconv.Itoa(v)
	case string:
		if v == "" {
			v = option.EmptyValue
		}
		line += " value " + v
	case core.Opponent:
		line += " value " + option.FormatOpponent(v)
	case core.PositionValue:
		line += " value " + option.FormatPositionValue(v)
	default:
		return fmt.Errorf("%w: %s has unsupported value %T", core.ErrInvalidValue, name, value)
	}
	return e.proc.send(line)
}

// Search sends position and go to the child and relays its info lines
// until bestmove. Cancelling ctx sends stop; a ponderhit on ctl is forwarded.
func (e *Engine) Search(ctx context.Context, cfg core.SearchConfig, ctl core.SearchControl) (core.SearchResult, error) {
	if err := e.proc.send("position " + e.position.String()); err != nil {
		return core.SearchResult{}, err
	}
	if err := e.proc.send(strings.TrimSpace("go " + cfg.String())); err != nil {
		return core.SearchResult{}, err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	done := ctx.Done()
	pondering := cfg.Ponder
	for {
		select {
		case <-done:
			done = nil
			if err := e.proc.send("stop"); err != nil {
				return core.SearchResult{}, err
			}
		case <-ticker.C:
			if pondering && !ctl.Pondering() {
				pondering = false
				if err := e.proc.send("ponderhit"); err != nil {
					return core.SearchResult{}, err
				}
			}
		case line, ok := <-e.proc.lines:
			if !ok {
				return core.SearchResult{}, errExited
			}
			if strings.HasPrefix(line, "info ") {
				if info, ok := parseInfo(line); ok {
					ctl.Report(info)
				}
				continue
			}
			if best, ponder, ok := parseBestMove(line); ok {
				return core.SearchResult{BestMove: best, PonderMove: ponder}, nil
			}
		}
	}
}

// Close sends quit and waits for the child to exit, killing it when it
// does not.
func (e *Engine) Close() error {
	return e.proc.close(2 * time.Second)
}

func equals(want string) func(string) bool {
	return func(line string) bool { return strings.TrimSpace(line) == want }
}
