// FILE: internal/option/standard.go
package option

import (
	"fmt"
	"strconv"
	"strings"

	"gambit/internal/command"
	"gambit/internal/core"
)

// Option names with a meaning fixed by the protocol
const (
	Hash                 = "Hash"
	NalimovPath          = "NalimovPath"
	NalimovCache         = "NalimovCache"
	Ponder               = "Ponder"
	OwnBook              = "OwnBook"
	MultiPV              = "MultiPV"
	UCIShowCurrLine      = "UCI_ShowCurrLine"
	UCIShowRefutations   = "UCI_ShowRefutations"
	UCILimitStrength     = "UCI_LimitStrength"
	UCIElo               = "UCI_Elo"
	UCIAnalyseMode       = "UCI_AnalyseMode"
	UCIOpponent          = "UCI_Opponent"
	UCIEngineAbout       = "UCI_EngineAbout"
	UCIShredderbasesPath = "UCI_ShredderbasesPath"
	UCISetPositionValue  = "UCI_SetPositionValue"
)

// EmptyValue spells the empty string in option lines
const EmptyValue = "<empty>"

// ParseOpponent reads "<title> <elo> <computer|human> <name>", for example
// "GM 2800 human Gary Kasparov" or "none none computer Shredder".
// An empty value means no opponent is known.
func ParseOpponent(value string) (core.Opponent, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return core.Opponent{Title: core.TitleNone}, nil
	}
	if len(fields) < 3 {
		return core.Opponent{}, fmt.Errorf("%w: %s needs title, elo and player type", core.ErrInvalidValue, UCIOpponent)
	}

	var opp core.Opponent
	switch t := core.Title(fields[0]); t {
	case core.TitleGM, core.TitleIM, core.TitleFM, core.TitleWGM, core.TitleWIM, core.TitleNone:
		opp.Title = t
	default:
		return core.Opponent{}, fmt.Errorf("%w: %s title %q", core.ErrInvalidValue, UCIOpponent, fields[0])
	}

	if fields[1] != "none" {
		elo, err := strconv.Atoi(fields[1])
		if err != nil || elo < 0 {
			return core.Opponent{}, fmt.Errorf("%w: %s elo %q", core.ErrInvalidValue, UCIOpponent, fields[1])
		}
		opp.Elo = core.Some(elo)
	}

	switch fields[2] {
	case "computer":
		opp.Computer = true
	case "human":
	default:
		return core.Opponent{}, fmt.Errorf("%w: %s player type %q", core.ErrInvalidValue, UCIOpponent, fields[2])
	}

	opp.Name = strings.Join(fields[3:], " ")
	return opp, nil
}

// FormatOpponent renders o back in UCI_Opponent form
func FormatOpponent(o core.Opponent) string {
	title := o.Title
	if title == "" {
		title = core.TitleNone
	}
	elo := "none"
	if o.Elo.Set {
		elo = strconv.Itoa(o.Elo.Value)
	}
	kind := "human"
	if o.Computer {
		kind = "computer"
	}
	return strings.TrimSpace(strings.Join([]string{string(title), elo, kind, o.Name}, " "))
}

// ParsePositionValue reads "<value> <fen>", "clear <fen>" or "clearall"
func ParsePositionValue(value string) (core.PositionValue, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return core.PositionValue{}, fmt.Errorf("%w: %s is empty", core.ErrInvalidValue, UCISetPositionValue)
	}
	if fields[0] == "clearall" {
		return core.PositionValue{ClearAll: true}, nil
	}

	var pv core.PositionValue
	if fields[0] == "clear" {
		pv.Clear = true
	} else {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return core.PositionValue{}, fmt.Errorf("%w: %s value %q", core.ErrInvalidValue, UCISetPositionValue, fields[0])
		}
		pv.Value = n
	}

	fen, ok := command.NormalizeFEN(fields[1:])
	if !ok {
		return core.PositionValue{}, fmt.Errorf("%w: %s fen %q", core.ErrInvalidValue, UCISetPositionValue, strings.Join(fields[1:], " "))
	}
	pv.FEN = fen
	return pv, nil
}

func FormatPositionValue(pv core.PositionValue) string {
	switch {
	case pv.ClearAll:
		return "clearall"
	case pv.Clear:
		return "clear " + pv.FEN
	default:
		return strconv.Itoa(pv.Value) + " " + pv.FEN
	}
}
