// FILE: internal/response/format.go
package response

import (
	"strconv"
	"strings"

	"gambit/internal/core"
)

// FormatOption renders an option declaration line
func FormatOption(opt core.EngineOption) string {
	var b strings.Builder
	b.WriteString("option name ")
	b.WriteString(opt.Name)
	b.WriteString(" type ")
	b.WriteString(opt.Type.String())

	switch opt.Type {
	case core.OptionCheck:
		b.WriteString(" default ")
		b.WriteString(opt.Default)
	case core.OptionSpin:
		b.WriteString(" default ")
		b.WriteString(opt.Default)
		b.WriteString(" min ")
		b.WriteString(strconv.Itoa(opt.Min))
		b.WriteString(" max ")
		b.WriteString(strconv.Itoa(opt.Max))
	case core.OptionCombo:
		b.WriteString(" default ")
		b.WriteString(opt.Default)
		for _, v := range opt.Vars {
			b.WriteString(" var ")
			b.WriteString(v)
		}
	case core.OptionString:
		b.WriteString(" default ")
		if opt.Default == "" {
			b.WriteString("<empty>")
		} else {
			b.WriteString(opt.Default)
		}
	}
	return b.String()
}

// FormatInfo puts fields in the conventional order with string last,
// since it swallows the rest of the line.
func FormatInfo(info core.Info) string {
	parts := []string{"info"}
	num := func(key string, v core.Opt[int]) {
		if v.Set {
			parts = append(parts, key, strconv.Itoa(v.Value))
		}
	}
	unum := func(key string, v core.Opt[uint64]) {
		if v.Set {
			parts = append(parts, key, strconv.FormatUint(v.Value, 10))
		}
	}

	num("depth", info.Depth)
	num("seldepth", info.SelDepth)
	num("multipv", info.MultiPV)
	if s, ok := info.Score.Get(); ok {
		parts = append(parts, "score")
		if s.IsMate {
			parts = append(parts, "mate", strconv.Itoa(s.Mate))
		} else {
			parts = append(parts, "cp", strconv.Itoa(s.Centipawns))
		}
		switch s.Bound {
		case core.BoundLower:
			parts = append(parts, "lowerbound")
		case core.BoundUpper:
			parts = append(parts, "upperbound")
		}
	}
	unum("nodes", info.Nodes)
	unum("nps", info.NPS)
	if d, ok := info.Time.Get(); ok {
		parts = append(parts, "time", strconv.FormatInt(d.Milliseconds(), 10))
	}
	num("hashfull", info.HashFull)
	if info.CurrMove != "" {
		parts = append(parts, "currmove", info.CurrMove)
	}
	num("currmovenumber", info.CurrMoveNumber)
	if len(info.PV) > 0 {
		parts = append(parts, "pv")
		parts = append(parts, info.PV...)
	}
	if info.String != "" {
		parts = append(parts, "string", strings.ReplaceAll(info.String, "\n", " "))
	}
	return strings.Join(parts, " ")
}

// FormatBestMove renders bestmove, with ponder only when set
func FormatBestMove(best, ponder string) string {
	if best == "" {
		best = core.NullMove
	}
	if ponder == "" {
		return "bestmove " + best
	}
	return "bestmove " + best + " ponder " + ponder
}
