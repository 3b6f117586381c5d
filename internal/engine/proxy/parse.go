// FILE: internal/engine/proxy/parse.go
package proxy

import (
	"strconv"
	"strings"
	"time"

	"gambit/internal/command"
	"gambit/internal/core"
	"gambit/internal/option"
)

// parseInfo reads an info line from the child engine. Fields it does not
// know are skipped.
func parseInfo(line string) (core.Info, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return core.Info{}, false
	}

	var info core.Info
	for i := 1; i < len(fields); i++ {
		key := fields[i]
		next := ""
		if i+1 < len(fields) {
			next = fields[i+1]
		}

		switch key {
		case "depth", "seldepth", "multipv", "hashfull", "currmovenumber":
			n, err := strconv.Atoi(next)
			if err != nil {
				continue
			}
			i++
			switch key {
			case "depth":
				info.Depth = core.Some(n)
			case "seldepth":
				info.SelDepth = core.Some(n)
			case "multipv":
				info.MultiPV = core.Some(n)
			case "hashfull":
				info.HashFull = core.Some(n)
			case "currmovenumber":
				info.CurrMoveNumber = core.Some(n)
			}
		case "nodes", "nps":
			n, err := strconv.ParseUint(next, 10, 64)
			if err != nil {
				continue
			}
			i++
			if key == "nodes" {
				info.Nodes = core.Some(n)
			} else {
				info.NPS = core.Some(n)
			}
		case "time":
			n, err := strconv.ParseInt(next, 10, 64)
			if err != nil {
				continue
			}
			i++
			info.Time = core.Some(time.Duration(n) * time.Millisecond)
		case "score":
			if i+2 >= len(fields) {
				continue
			}
			n, err := strconv.Atoi(fields[i+2])
			if err != nil {
				continue
			}
			var s core.Score
			switch fields[i+1] {
			case "cp":
				s = core.Centipawns(n)
			case "mate":
				s = core.MateIn(n)
			default:
				continue
			}
			i += 2
			if i+1 < len(fields) {
				switch fields[i+1] {
				case "lowerbound":
					s.Bound = core.BoundLower
					i++
				case "upperbound":
					s.Bound = core.BoundUpper
					i++
				}
			}
			info.Score = core.Some(s)
		case "currmove":
			if command.IsMove(next) {
				info.CurrMove = next
				i++
			}
		case "pv":
			for i+1 < len(fields) && command.IsMove(fields[i+1]) {
				info.PV = append(info.PV, fields[i+1])
				i++
			}
		case "refutation", "currline":
			for i+1 < len(fields) && (command.IsMove(fields[i+1]) || isNumber(fields[i+1])) {
				i++
			}
		case "string":
			info.String = strings.Join(fields[i+1:], " ")
			i = len(fields)
		}
	}
	return info, !info.Empty()
}

// parseBestMove reads "bestmove <m> [ponder <m>]". "(none)" is the null move.
func parseBestMove(line string) (best, ponder string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return "", "", false
	}
	best = fields[1]
	if !command.IsMove(best) {
		best = core.NullMove
	}
	if len(fields) >= 4 && fields[2] == "ponder" && command.IsMove(fields[3]) {
		ponder = fields[3]
	}
	return best, ponder, true
}

var optionKeywords = map[string]bool{"type": true, "default": true, "min": true, "max": true, "var": true}

// parseOption reads an option declaration line from the child engine
func parseOption(line string) (core.EngineOption, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "option" || fields[1] != "name" {
		return core.EngineOption{}, false
	}

	typeAt := -1
	for i := 2; i < len(fields); i++ {
		if fields[i] == "type" {
			typeAt = i
			break
		}
	}
	if typeAt <= 2 || typeAt+1 >= len(fields) {
		return core.EngineOption{}, false
	}

	opt := core.EngineOption{Name: strings.Join(fields[2:typeAt], " ")}
	switch fields[typeAt+1] {
	case "check":
		opt.Type = core.OptionCheck
	case "spin":
		opt.Type = core.OptionSpin
	case "combo":
		opt.Type = core.OptionCombo
	case "button":
		opt.Type = core.OptionButton
	case "string":
		opt.Type = core.OptionString
	default:
		return core.EngineOption{}, false
	}

	// collect the words after a keyword up to the next keyword
	for i := typeAt + 2; i < len(fields); {
		key := fields[i]
		j := i + 1
		for j < len(fields) && !optionKeywords[fields[j]] {
			j++
		}
		value := strings.Join(fields[i+1:j], " ")
		switch key {
		case "default":
			if value == option.EmptyValue {
				value = ""
			}
			opt.Default = value
		case "min":
			opt.Min, _ = strconv.Atoi(value)
		case "max":
			opt.Max, _ = strconv.Atoi(value)
		case "var":
			opt.Vars = append(opt.Vars, value)
		}
		i = j
	}
	return opt, true
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
