package engine

import (
	"errors"
	"testing"

	"gambit/internal/core"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		pos  core.Position
		fen  string
	}{
		{
			name: "startpos",
			pos:  core.StartPosition(),
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		},
		{
			name: "open game",
			pos:  core.Position{Moves: []string{"e2e4", "e7e5"}},
			fen:  "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		},
		{
			name: "castling from fen",
			pos:  core.Position{FEN: "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", Moves: []string{"e1g1"}},
			fen:  "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 1 1",
		},
		{
			name: "null move passes the turn",
			pos:  core.Position{Moves: []string{core.NullMove}},
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 1 1",
		},
		{
			name: "null move between real moves",
			pos:  core.Position{Moves: []string{"e2e4", core.NullMove, "d2d4"}},
			fen:  "rnbqkbnr/pppppppp/8/8/3PP3/8/PPP2PPP/RNBQKBNR b KQkq d3 0 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := Resolve(tt.pos)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got := pos.String(); got != tt.fen {
				t.Errorf("fen = %q, want %q", got, tt.fen)
			}
		})
	}
}

func TestResolveRejects(t *testing.T) {
	if _, err := Resolve(core.Position{Moves: []string{"e2e5"}}); !errors.Is(err, core.ErrIllegalMove) {
		t.Errorf("illegal move error = %v", err)
	}
	if _, err := Resolve(core.Position{FEN: "garbage"}); !errors.Is(err, core.ErrInvalidFEN) {
		t.Errorf("bad fen error = %v", err)
	}
}

func TestResolveNullMoveSideToMove(t *testing.T) {
	pos, err := Resolve(core.Position{Moves: []string{core.NullMove}})
	if err != nil {
		t.Fatal(err)
	}
	if WhiteToMove(pos) {
		t.Error("white still to move after a null move")
	}
	if _, err := LegalMove(pos, "e7e5"); err != nil {
		t.Errorf("black reply after a null move: %v", err)
	}

	if _, err := Resolve(core.Position{Moves: []string{core.NullMove, "e2e4"}}); !errors.Is(err, core.ErrIllegalMove) {
		t.Errorf("white move after null move error = %v", err)
	}
}

func TestCandidates(t *testing.T) {
	pos, err := Resolve(core.StartPosition())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(Candidates(pos, nil)); n != 20 {
		t.Errorf("startpos has %d moves, want 20", n)
	}
	got := Candidates(pos, []string{"e2e4", "d2d4", "e2e5"})
	if len(got) != 2 {
		t.Fatalf("restricted to %d moves, want 2", len(got))
	}
	if Material(pos) != 0 {
		t.Errorf("startpos material = %d", Material(pos))
	}
}
