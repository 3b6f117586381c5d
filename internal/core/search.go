// FILE: internal/core/search.go
package core

import (
	"strconv"
	"strings"
	"time"
)

// SearchConfig carries the go command arguments. Bounds are not exclusive;
// the engine stops at whichever it reaches first unless Infinite is set.
type SearchConfig struct {
	SearchMoves []string
	Ponder      bool
	WhiteTime   Opt[time.Duration]
	BlackTime   Opt[time.Duration]
	WhiteInc    Opt[time.Duration]
	BlackInc    Opt[time.Duration]
	MovesToGo   Opt[int]
	Depth       Opt[int]
	Nodes       Opt[uint64]
	Mate        Opt[int]
	MoveTime    Opt[time.Duration]
	Infinite    bool
}

// Bounded reports whether any limit was given
func (c SearchConfig) Bounded() bool {
	return c.WhiteTime.Set || c.BlackTime.Set || c.MoveTime.Set ||
		c.Depth.Set || c.Nodes.Set || c.Mate.Set
}

// Holds reports whether bestmove must wait for stop or ponderhit
func (c SearchConfig) Holds() bool {
	return c.Infinite || c.Ponder
}

// String renders the arguments as they would follow "go"
func (c SearchConfig) String() string {
	var parts []string
	if len(c.SearchMoves) > 0 {
		parts = append(parts, "searchmoves "+strings.Join(c.SearchMoves, " "))
	}
	if c.Ponder {
		parts = append(parts, "ponder")
	}
	ms := func(key string, d Opt[time.Duration]) {
		if d.Set {
			parts = append(parts, key+" "+strconv.FormatInt(d.Value.Milliseconds(), 10))
		}
	}
	num := func(key string, n Opt[int]) {
		if n.Set {
			parts = append(parts, key+" "+strconv.Itoa(n.Value))
		}
	}
	ms("wtime", c.WhiteTime)
	ms("btime", c.BlackTime)
	ms("winc", c.WhiteInc)
	ms("binc", c.BlackInc)
	num("movestogo", c.MovesToGo)
	num("depth", c.Depth)
	if c.Nodes.Set {
		parts = append(parts, "nodes "+strconv.FormatUint(c.Nodes.Value, 10))
	}
	num("mate", c.Mate)
	ms("movetime", c.MoveTime)
	if c.Infinite {
		parts = append(parts, "infinite")
	}
	return strings.Join(parts, " ")
}

type ScoreBound int

const (
	BoundExact ScoreBound = iota
	BoundLower
	BoundUpper
)

// Score is either centipawns or moves to mate (negative when being mated)
type Score struct {
	Centipawns int
	Mate       int
	IsMate     bool
	Bound      ScoreBound
}

// Centipawns returns a score in hundredths of a pawn
func Centipawns(cp int) Score {
	return Score{Centipawns: cp}
}

// MateIn returns a mate score. Negative n means the engine is mated.
func MateIn(n int) Score {
	return Score{Mate: n, IsMate: true}
}

// Info is one line of search progress
type Info struct {
	Depth          Opt[int]
	SelDepth       Opt[int]
	MultiPV        Opt[int]
	Score          Opt[Score]
	Nodes          Opt[uint64]
	NPS            Opt[uint64]
	Time           Opt[time.Duration]
	HashFull       Opt[int]
	CurrMove       string
	CurrMoveNumber Opt[int]
	PV             []string
	String         string
}

// Empty reports whether the info carries nothing to print
func (i Info) Empty() bool {
	return !i.Depth.Set && !i.SelDepth.Set && !i.MultiPV.Set && !i.Score.Set &&
		!i.Nodes.Set && !i.NPS.Set && !i.Time.Set && !i.HashFull.Set &&
		i.CurrMove == "" && !i.CurrMoveNumber.Set && len(i.PV) == 0 && i.String == ""
}

// SearchResult is what a finished search hands back. Infos are emitted before bestmove.
type SearchResult struct {
	BestMove   string
	PonderMove string
	Infos      []Info
}
