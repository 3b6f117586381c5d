// FILE: internal/engine/random/random.go
package random

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"gambit/internal/core"
	"gambit/internal/engine"
	"gambit/internal/option"
)

const (
	StyleRandom = "random"
	StyleGreedy = "greedy"

	OptClearHash    = "Clear Hash"
	OptStyle        = "Style"
	OptMoveOverhead = "Move Overhead"

	defaultDepth = 4
	maxDepth     = 64
	defaultTick  = 5 * time.Millisecond
	about        = "Gambit plays legal moves, picked at random or by material"
)

// Engine picks legal moves at random, or greedily by material balance.
// It iterates in small ticks so stop and ponderhit are seen promptly.
type Engine struct {
	mu       sync.Mutex
	name     string
	author   string
	log      zerolog.Logger
	rng      *rand.Rand
	tick     time.Duration
	position *chess.Position
	style    string
	hashMB   int
	ponder   bool
	overhead time.Duration
	opponent core.Opponent
	values   map[string]int
}

type Option func(*Engine)

// WithSeed fixes the move generator seed
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithIdentity overrides the reported id name and id author
func WithIdentity(name, author string) Option {
	return func(e *Engine) { e.name, e.author = name, author }
}

// WithTick sets the pause between iterations
func WithTick(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

// New creates a random mover
func New(opts ...Option) *Engine {
	e := &Engine{
		name:     "Gambit",
		author:   "The Gambit authors",
		log:      zerolog.Nop(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		tick:     defaultTick,
		position: chess.StartingPosition(),
		style:    StyleRandom,
		hashMB:   16,
		overhead: 10 * time.Millisecond,
		values:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Identify() (string, string) {
	return e.name, e.author
}

func (e *Engine) Options() []core.EngineOption {
	return []core.EngineOption{
		core.SpinOption(option.Hash, 16, 1, 1024),
		core.ButtonOption(OptClearHash),
		core.CheckOption(option.Ponder, false),
		core.ComboOption(OptStyle, StyleRandom, StyleRandom, StyleGreedy),
		core.SpinOption(OptMoveOverhead, 10, 0, 5000),
		core.StringOption(option.UCIOpponent, ""),
		core.StringOption(option.UCISetPositionValue, ""),
		core.StringOption(option.UCIEngineAbout, about),
	}
}

func (e *Engine) NewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.position = chess.StartingPosition()
	e.log.Debug().Msg("new game")
	return nil
}

// SetPosition resolves pos against the rules. Illegal moves are rejected
// and the previous position is kept.
func (e *Engine) SetPosition(pos core.Position) error {
	resolved, err := engine.Resolve(pos)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.position = resolved
	e.mu.Unlock()
	return nil
}

func (e *Engine) ApplyOption(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch v := value.(type) {
	case int:
		switch name {
		case option.Hash:
			e.hashMB = v
			return nil
		case OptMoveOverhead:
			e.overhead = time.Duration(v) * time.Millisecond
			return nil
		}
	case bool:
		if name == option.Ponder {
			e.ponder = v
			return nil
		}
	case string:
		switch name {
		case OptStyle:
			e.style = v
			return nil
		case option.UCIEngineAbout:
			return nil
		}
	case core.ButtonPress:
		if name == OptClearHash {
			e.log.Debug().Int("hash_mb", e.hashMB).Msg("hash cleared")
			return nil
		}
	case core.Opponent:
		e.opponent = v
		e.log.Info().Str("opponent", v.Name).Bool("computer", v.Computer).Msg("opponent set")
		return nil
	case core.PositionValue:
		switch {
		case v.ClearAll:
			e.values = make(map[string]int)
		case v.Clear:
			delete(e.values, boardKey(v.FEN))
		default:
			e.values[boardKey(v.FEN)] = v.Value
		}
		return nil
	}
	return fmt.Errorf("%w: %s=%v", core.ErrUnknownOption, name, value)
}

// Search picks a random legal move, reporting one info line per depth.
// With no legal move it answers the null move.
func (e *Engine) Search(ctx context.Context, cfg core.SearchConfig, ctl core.SearchControl) (core.SearchResult, error) {
	e.mu.Lock()
	pos, style, overhead := e.position, e.style, e.overhead
	values := make(map[string]int, len(e.values))
	for k, v := range e.values {
		values[k] = v
	}
	e.mu.Unlock()

	moves := engine.Candidates(pos, cfg.SearchMoves)
	if len(moves) == 0 {
		score := core.Centipawns(0)
		if pos.Status() == chess.Checkmate {
			score = core.MateIn(0)
		}
		return core.SearchResult{
			BestMove: core.NullMove,
			Infos:    []core.Info{{Depth: core.Some(0), Score: core.Some(score)}},
		}, nil
	}

	budget := engine.Plan(cfg, engine.WhiteToMove(pos), overhead)
	limit := budget.Depth
	if limit == 0 {
		limit = defaultDepth
		if budget.Time > 0 || cfg.Holds() {
			limit = maxDepth
		}
	}

	var (
		start     = time.Now()
		clock     = start
		pondering = ctl.Pondering()
		nodes     uint64
		best      *chess.Move
		score     core.Score
		depth     int
	)
	for {
		// the first iteration always runs so there is a move to return
		if ctx.Err() != nil && depth > 0 {
			break
		}
		if pondering && !ctl.Pondering() {
			pondering = false
			clock = time.Now()
		}

		if depth < limit {
			depth++
			best, score = e.pick(pos, moves, style, values)
			nodes += uint64(len(moves))
			elapsed := time.Since(start)
			ctl.Report(core.Info{
				Depth: core.Some(depth),
				Score: core.Some(score),
				Nodes: core.Some(nodes),
				NPS:   core.Some(nps(nodes, elapsed)),
				Time:  core.Some(elapsed),
				PV:    e.line(pos, best),
			})
		}

		if !cfg.Infinite && !pondering {
			if depth >= limit || score.IsMate {
				break
			}
			if budget.Nodes > 0 && nodes >= budget.Nodes {
				break
			}
			if budget.Time > 0 && time.Since(clock) >= budget.Time {
				break
			}
		}

		select {
		case <-ctx.Done():
		case <-time.After(e.tick):
		}
	}

	pv := e.line(pos, best)
	res := core.SearchResult{BestMove: pv[0]}
	if len(pv) > 1 {
		res.PonderMove = pv[1]
	}
	return res, nil
}

// pick scores the candidates and returns the chosen move with its score
func (e *Engine) pick(pos *chess.Position, moves []*chess.Move, style string, values map[string]int) (*chess.Move, core.Score) {
	if style != StyleGreedy {
		m := moves[e.rng.IntN(len(moves))]
		return m, e.evaluate(pos.Update(m), values)
	}

	var best *chess.Move
	var bestScore core.Score
	bestKey, ties := 0, 0
	for _, m := range moves {
		s := e.evaluate(pos.Update(m), values)
		key := rank(s)
		switch {
		case best == nil || key > bestKey:
			best, bestScore, bestKey, ties = m, s, key, 1
		case key == bestKey:
			// reservoir sampling keeps ties uniform
			ties++
			if e.rng.IntN(ties) == 0 {
				best, bestScore = m, s
			}
		}
	}
	return best, bestScore
}

// evaluate scores the position after our move, from our point of view
func (e *Engine) evaluate(after *chess.Position, values map[string]int) core.Score {
	switch after.Status() {
	case chess.Checkmate:
		return core.MateIn(1)
	case chess.Stalemate:
		return core.Centipawns(0)
	}
	cp := -engine.Material(after)
	if v, ok := values[boardKey(after.String())]; ok {
		cp += v
	}
	return core.Centipawns(cp)
}

// line is the chosen move plus a random reply, in coordinate notation
func (e *Engine) line(pos *chess.Position, m *chess.Move) []string {
	out := []string{m.String()}
	replies := pos.Update(m).ValidMoves()
	if len(replies) > 0 {
		out = append(out, replies[e.rng.IntN(len(replies))].String())
	}
	return out
}

func rank(s core.Score) int {
	if s.IsMate {
		return 1 << 20
	}
	return s.Centipawns
}

func nps(nodes uint64, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(nodes) / elapsed.Seconds())
}

// boardKey drops the move counters so transpositions share a value
func boardKey(fen string) string {
	fields := 0
	for i := 0; i < len(fen); i++ {
		if fen[i] == ' ' {
			fields++
			if fields == 4 {
				return fen[:i]
			}
		}
	}
	return fen
}
