// FILE: internal/core/position.go
package core

import "strings"

// Position is a root position plus the moves played from it.
// An empty FEN stands for the standard starting position.
type Position struct {
	FEN   string
	Moves []string
}

// StartPosition returns the standard initial position with no moves
func StartPosition() Position {
	return Position{}
}

func (p Position) IsStart() bool {
	return p.FEN == ""
}

// Equal compares root and move list
func (p Position) Equal(o Position) bool {
	if p.FEN != o.FEN || len(p.Moves) != len(o.Moves) {
		return false
	}
	for i := range p.Moves {
		if p.Moves[i] != o.Moves[i] {
			return false
		}
	}
	return true
}

// String renders the position the way the position command spells it
func (p Position) String() string {
	var b strings.Builder
	if p.IsStart() {
		b.WriteString("startpos")
	} else {
		b.WriteString("fen ")
		b.WriteString(p.FEN)
	}
	if len(p.Moves) > 0 {
		b.WriteString(" moves ")
		b.WriteString(strings.Join(p.Moves, " "))
	}
	return b.String()
}
