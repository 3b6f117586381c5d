// FILE: internal/engine/board.go
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"gambit/internal/core"
)

var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
}

// Resolve plays the move list from the root and returns the final position.
// Every move must be legal where it is played; a null move passes the turn.
func Resolve(p core.Position) (*chess.Position, error) {
	game := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	if !p.IsStart() {
		fen, err := chess.FEN(p.FEN)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidFEN, err)
		}
		game = chess.NewGame(fen, chess.UseNotation(chess.UCINotation{}))
	}

	pos := game.Position()
	for i, s := range p.Moves {
		if s == core.NullMove {
			next, err := passTurn(pos)
			if err != nil {
				return nil, fmt.Errorf("move %d: %w", i+1, err)
			}
			pos = next
			continue
		}
		m, err := LegalMove(pos, s)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		pos = pos.Update(m)
	}
	return pos, nil
}

// passTurn gives the move to the other side with the board unchanged.
// The en passant square is cleared and the move counters advance.
func passTurn(pos *chess.Position) (*chess.Position, error) {
	fields := strings.Fields(pos.String())
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidFEN, pos.String())
	}
	halfmove, _ := strconv.Atoi(fields[4])
	fullmove, _ := strconv.Atoi(fields[5])

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
		fullmove++
	}
	fields[3] = "-"
	fields[4] = strconv.Itoa(halfmove + 1)
	fields[5] = strconv.Itoa(fullmove)

	fen, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: null move: %v", core.ErrIllegalMove, err)
	}
	return chess.NewGame(fen, chess.UseNotation(chess.UCINotation{})).Position(), nil
}

// LegalMove finds the legal move spelled s in coordinate notation
func LegalMove(pos *chess.Position, s string) (*chess.Move, error) {
	for _, m := range pos.ValidMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", core.ErrIllegalMove, s, pos.String())
}

// Candidates returns the legal moves, limited to searchMoves when given.
// Entries of searchMoves that are not legal are ignored.
func Candidates(pos *chess.Position, searchMoves []string) []*chess.Move {
	moves := pos.ValidMoves()
	if len(searchMoves) == 0 {
		return moves
	}

	allowed := make(map[string]bool, len(searchMoves))
	for _, s := range searchMoves {
		allowed[s] = true
	}
	var out []*chess.Move
	for _, m := range moves {
		if allowed[m.String()] {
			out = append(out, m)
		}
	}
	return out
}

// Material is the piece balance in centipawns from the side to move
func Material(pos *chess.Position) int {
	score := 0
	for _, piece := range pos.Board().SquareMap() {
		v := pieceValues[piece.Type()]
		if piece.Color() == pos.Turn() {
			score += v
		} else {
			score -= v
		}
	}
	return score
}

// WhiteToMove reports the side to move
func WhiteToMove(pos *chess.Position) bool {
	return pos.Turn() == chess.White
}
