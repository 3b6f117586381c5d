// FILE: internal/match/match.go
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog"
)

// Player picks a move for the side to move
type Player interface {
	Name() string
	BestMove(ctx context.Context, pos *chess.Position) (*chess.Move, error)
}

// Config bounds one game
type Config struct {
	FEN      string
	MaxPlies int // 0 means play to the end
	Event    string
}

// Result is a finished or adjudicated game
type Result struct {
	Outcome chess.Outcome
	Method  string
	Plies   int
	PGN     string
	Moves   []string
}

var ErrNoMove = errors.New("player returned no move")

// Play runs one game between white and black. A player that fails or
// returns an illegal move forfeits.
func Play(ctx context.Context, white, black Player, cfg Config, log zerolog.Logger) (Result, error) {
	var opts []func(*chess.Game)
	if cfg.FEN != "" {
		fen, err := chess.FEN(cfg.FEN)
		if err != nil {
			return Result{}, fmt.Errorf("start position: %w", err)
		}
		opts = append(opts, fen)
	}
	opts = append(opts, chess.UseNotation(chess.UCINotation{}))
	game := chess.NewGame(opts...)

	event := cfg.Event
	if event == "" {
		event = "gambit match"
	}
	game.AddTagPair("Event", event)
	game.AddTagPair("Date", time.Now().UTC().Format("2006.01.02"))
	game.AddTagPair("White", white.Name())
	game.AddTagPair("Black", black.Name())

	var moves []string
	method := ""
	for game.Outcome() == chess.NoOutcome {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if cfg.MaxPlies > 0 && len(moves) >= cfg.MaxPlies {
			if err := game.Draw(chess.DrawOffer); err != nil {
				return Result{}, err
			}
			method = "adjudicated"
			break
		}

		mover, color := white, chess.White
		if game.Position().Turn() == chess.Black {
			mover, color = black, chess.Black
		}

		move, err := mover.BestMove(ctx, game.Position())
		if err == nil && move == nil {
			err = ErrNoMove
		}
		if err == nil {
			err = game.Move(move)
		}
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			log.Warn().Err(err).Str("player", mover.Name()).Msg("player forfeits")
			game.Resign(color)
			method = "forfeit"
			break
		}

		moves = append(moves, move.String())
		log.Debug().Str("player", mover.Name()).Str("move", move.String()).Int("ply", len(moves)).Msg("move")
	}

	if method == "" {
		method = game.Method().String()
	}
	return Result{
		Outcome: game.Outcome(),
		Method:  method,
		Plies:   len(moves),
		PGN:     game.String(),
		Moves:   moves,
	}, nil
}

// EnginePlayer drives an external UCI engine
type EnginePlayer struct {
	eng      *uci.Engine
	name     string
	moveTime time.Duration
}

// NewEnginePlayer starts path and completes the handshake. Options are
// sent as setoption before the game.
func NewEnginePlayer(path string, moveTime time.Duration, options map[string]string) (*EnginePlayer, error) {
	eng, err := uci.New(path)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}

	cmds := []uci.Cmd{uci.CmdUCI, uci.CmdIsReady}
	for name, value := range options {
		cmds = append(cmds, uci.CmdSetOption{Name: name, Value: value})
	}
	cmds = append(cmds, uci.CmdUCINewGame, uci.CmdIsReady)
	if err := eng.Run(cmds...); err != nil {
		eng.Close()
		return nil, fmt.Errorf("handshake %s: %w", path, err)
	}

	name := eng.ID()["name"]
	if name == "" {
		name = path
	}
	return &EnginePlayer{eng: eng, name: name, moveTime: moveTime}, nil
}

func (p *EnginePlayer) Name() string { return p.name }

// BestMove runs a fixed movetime search. The uci client blocks without a
// context, so ctx is only checked before the search starts.
func (p *EnginePlayer) BestMove(ctx context.Context, pos *chess.Position) (*chess.Move, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmdPos := uci.CmdPosition{Position: pos}
	cmdGo := uci.CmdGo{MoveTime: p.moveTime}
	if err := p.eng.Run(cmdPos, cmdGo); err != nil {
		return nil, err
	}
	return p.eng.SearchResults().BestMove, nil
}

// Close quits the engine process
func (p *EnginePlayer) Close() error {
	return p.eng.Close()
}
