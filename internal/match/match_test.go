package match

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

// scripted plays moves from a list, then the first legal move
type scripted struct {
	name  string
	moves []string
	err   error
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) BestMove(_ context.Context, pos *chess.Position) (*chess.Move, error) {
	if s.err != nil {
		return nil, s.err
	}
	valid := pos.ValidMoves()
	if len(s.moves) > 0 {
		want := s.moves[0]
		s.moves = s.moves[1:]
		for _, m := range valid {
			if m.String() == want {
				return m, nil
			}
		}
		return nil, errors.New("scripted move not legal: " + want)
	}
	return valid[0], nil
}

func TestPlayFoolsMate(t *testing.T) {
	white := &scripted{name: "W", moves: []string{"f2f3", "g2g4"}}
	black := &scripted{name: "B", moves: []string{"e7e5", "d8h4"}}

	res, err := Play(context.Background(), white, black, Config{}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != chess.BlackWon || res.Method != chess.Checkmate.String() || res.Plies != 4 {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(res.PGN, `[White "W"]`) || !strings.Contains(res.PGN, "0-1") {
		t.Errorf("pgn = %s", res.PGN)
	}
}

func TestPlayAdjudicates(t *testing.T) {
	res, err := Play(context.Background(), &scripted{name: "W"}, &scripted{name: "B"}, Config{MaxPlies: 6}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != chess.Draw || res.Method != "adjudicated" || res.Plies != 6 {
		t.Errorf("result = %+v", res)
	}
}

func TestPlayForfeit(t *testing.T) {
	white := &scripted{name: "W", moves: []string{"e2e4"}}
	black := &scripted{name: "B", err: errors.New("engine crashed")}

	res, err := Play(context.Background(), white, black, Config{}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != chess.WhiteWon || res.Method != "forfeit" || res.Plies != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestPlayFromFEN(t *testing.T) {
	// white mates in one with Ra8
	cfg := Config{FEN: "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"}
	white := &scripted{name: "W", moves: []string{"a1a8"}}

	res, err := Play(context.Background(), white, &scripted{name: "B"}, cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != chess.WhiteWon || len(res.Moves) != 1 || res.Moves[0] != "a1a8" {
		t.Errorf("result = %+v", res)
	}

	if _, err := Play(context.Background(), white, white, Config{FEN: "not a fen"}, zerolog.Nop()); err == nil {
		t.Error("expected bad FEN error")
	}
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Play(ctx, &scripted{name: "W"}, &scripted{name: "B"}, Config{}, zerolog.Nop()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v", err)
	}
}
