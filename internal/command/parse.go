// FILE: internal/command/parse.go
package command

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gambit/internal/core"
)

var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+ \d+ \d+$`)

// Parse turns one input line into a Command. It never fails; anything it
// cannot make sense of comes back as Unknown.
func Parse(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Unknown{Line: line, Reason: "empty line"}
	}

	args := fields[1:]
	switch fields[0] {
	case "uci":
		return UCI{}
	case "debug":
		return parseDebug(line, args)
	case "isready":
		return IsReady{}
	case "setoption":
		return parseSetOption(line, args)
	case "register":
		return parseRegister(line, args)
	case "ucinewgame":
		return NewGame{}
	case "position":
		return parsePosition(line, args)
	case "go":
		return Go{Config: parseGo(args)}
	case "stop":
		return Stop{}
	case "ponderhit":
		return PonderHit{}
	case "quit":
		return Quit{}
	default:
		return Unknown{Line: line, Reason: "unknown command " + strconv.Quote(fields[0])}
	}
}

func parseDebug(line string, args []string) Command {
	for _, a := range args {
		switch a {
		case "on":
			return Debug{On: true}
		case "off":
			return Debug{On: false}
		}
	}
	return Unknown{Line: line, Reason: "debug needs on or off"}
}

// parseSetOption splits on the name and value keywords. Both name and value
// may contain spaces.
func parseSetOption(line string, args []string) Command {
	nameAt := index(args, "name", 0)
	if nameAt < 0 {
		return Unknown{Line: line, Reason: "setoption without name"}
	}
	valueAt := index(args, "value", nameAt+1)

	var nameTokens, valueTokens []string
	if valueAt < 0 {
		nameTokens = args[nameAt+1:]
	} else {
		nameTokens = args[nameAt+1 : valueAt]
		valueTokens = args[valueAt+1:]
	}
	if len(nameTokens) == 0 {
		return Unknown{Line: line, Reason: "setoption with empty name"}
	}

	return SetOption{
		Name:     strings.Join(nameTokens, " "),
		Value:    strings.Join(valueTokens, " "),
		HasValue: valueAt >= 0,
	}
}

func parseRegister(line string, args []string) Command {
	if len(args) > 0 && args[0] == "later" {
		return Register{Later: true}
	}

	nameAt := index(args, "name", 0)
	codeAt := index(args, "code", 0)
	var reg Register
	switch {
	case nameAt >= 0 && codeAt > nameAt:
		reg.Name = strings.Join(args[nameAt+1:codeAt], " ")
		reg.Code = strings.Join(args[codeAt+1:], " ")
	case codeAt >= 0 && nameAt > codeAt:
		reg.Code = strings.Join(args[codeAt+1:nameAt], " ")
		reg.Name = strings.Join(args[nameAt+1:], " ")
	case nameAt >= 0:
		reg.Name = strings.Join(args[nameAt+1:], " ")
	case codeAt >= 0:
		reg.Code = strings.Join(args[codeAt+1:], " ")
	}
	if reg.Name == "" && reg.Code == "" {
		return Unknown{Line: line, Reason: "register needs later, name or code"}
	}
	return reg
}

func parsePosition(line string, args []string) Command {
	if len(args) == 0 {
		return Unknown{Line: line, Reason: "position without startpos or fen"}
	}

	var pos core.Position
	rest := args[1:]
	switch args[0] {
	case "startpos":
	case "fen":
		end := index(rest, "moves", 0)
		if end < 0 {
			end = len(rest)
		}
		fen, ok := NormalizeFEN(rest[:end])
		if !ok {
			return Unknown{Line: line, Reason: "malformed fen"}
		}
		pos.FEN = fen
		rest = rest[end:]
	default:
		return Unknown{Line: line, Reason: "position without startpos or fen"}
	}

	movesAt := index(rest, "moves", 0)
	if movesAt < 0 {
		return Position{Position: pos}
	}
	for _, m := range rest[movesAt+1:] {
		if !IsMove(m) {
			return Unknown{Line: line, Reason: "malformed move " + strconv.Quote(m)}
		}
		pos.Moves = append(pos.Moves, m)
	}
	return Position{Position: pos}
}

// NormalizeFEN joins FEN fields, accepting the four-field form by filling in the clocks
func NormalizeFEN(fields []string) (string, bool) {
	switch len(fields) {
	case 4:
		fields = append(append([]string(nil), fields...), "0", "1")
	case 6:
	default:
		return "", false
	}
	fen := strings.Join(fields, " ")
	return fen, fenPattern.MatchString(fen)
}

func parseGo(args []string) core.SearchConfig {
	var cfg core.SearchConfig
	for i := 0; i < len(args); i++ {
		key := args[i]
		switch key {
		case "ponder":
			cfg.Ponder = true
			continue
		case "infinite":
			cfg.Infinite = true
			continue
		case "searchmoves":
			for i+1 < len(args) && IsMove(args[i+1]) {
				cfg.SearchMoves = append(cfg.SearchMoves, args[i+1])
				i++
			}
			continue
		}

		if i+1 >= len(args) {
			break
		}
		n, err := strconv.ParseInt(args[i+1], 10, 64)
		if err != nil {
			// leave the token for the next round, it may be a keyword
			continue
		}

		consumed := true
		switch key {
		case "wtime":
			cfg.WhiteTime = core.Some(millis(n))
		case "btime":
			cfg.BlackTime = core.Some(millis(n))
		case "winc":
			cfg.WhiteInc = core.Some(millis(n))
		case "binc":
			cfg.BlackInc = core.Some(millis(n))
		case "movestogo":
			cfg.MovesToGo = core.Some(int(n))
		case "depth":
			cfg.Depth = core.Some(int(n))
		case "nodes":
			if n >= 0 {
				cfg.Nodes = core.Some(uint64(n))
			}
		case "mate":
			cfg.Mate = core.Some(int(n))
		case "movetime":
			cfg.MoveTime = core.Some(millis(n))
		default:
			consumed = false
		}
		if consumed {
			i++
		}
	}
	return cfg
}

// IsMove checks coordinate notation: [a-h][1-8][a-h][1-8][qrbn]? or the null move
func IsMove(move string) bool {
	if move == core.NullMove {
		return true
	}
	for _, r := range move {
		if unicode.IsControl(r) {
			return false
		}
	}
	if len(move) < 4 || len(move) > 5 {
		return false
	}
	if move[0] < 'a' || move[0] > 'h' ||
		move[1] < '1' || move[1] > '8' ||
		move[2] < 'a' || move[2] > 'h' ||
		move[3] < '1' || move[3] > '8' {
		return false
	}
	if len(move) == 5 {
		switch move[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}
	return true
}

func millis(n int64) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func index(tokens []string, word string, from int) int {
	for i := from; i < len(tokens); i++ {
		if tokens[i] == word {
			return i
		}
	}
	return -1
}
