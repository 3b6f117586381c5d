package proxy

import (
	"reflect"
	"testing"
	"time"

	"gambit/internal/core"
)

func TestParseInfo(t *testing.T) {
	tests := []struct {
		line string
		want core.Info
		ok   bool
	}{
		{
			line: "info depth 12 seldepth 18 multipv 1 score cp 31 nodes 120000 nps 950000 time 126 pv e2e4 e7e5 g1f3",
			want: core.Info{
				Depth: core.Some(12), SelDepth: core.Some(18), MultiPV: core.Some(1),
				Score: core.Some(core.Centipawns(31)), Nodes: core.Some(uint64(120000)),
				NPS: core.Some(uint64(950000)), Time: core.Some(126 * time.Millisecond),
				PV: []string{"e2e4", "e7e5", "g1f3"},
			},
			ok: true,
		},
		{
			line: "info depth 5 score mate -3 upperbound",
			want: core.Info{Depth: core.Some(5), Score: core.Some(core.Score{Mate: -3, IsMate: true, Bound: core.BoundUpper})},
			ok:   true,
		},
		{
			line: "info currmove d2d4 currmovenumber 2 hashfull 311",
			want: core.Info{CurrMove: "d2d4", CurrMoveNumber: core.Some(2), HashFull: core.Some(311)},
			ok:   true,
		},
		{
			line: "info refutation d1h5 g6h5 depth 3",
			want: core.Info{Depth: core.Some(3)},
			ok:   true,
		},
		{
			line: "info string NNUE evaluation using nn.bin depth 9",
			want: core.Info{String: "NNUE evaluation using nn.bin depth 9"},
			ok:   true,
		},
		{line: "info depth x", ok: false},
		{line: "bestmove e2e4", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseInfo(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tt.ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseInfo = %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestParseBestMove(t *testing.T) {
	tests := []struct {
		line, best, ponder string
		ok                 bool
	}{
		{"bestmove e2e4", "e2e4", "", true},
		{"bestmove e7e8q ponder d2d1", "e7e8q", "d2d1", true},
		{"bestmove (none)", core.NullMove, "", true},
		{"bestmove 0000", core.NullMove, "", true},
		{"bestmove a1a2 ponder (none)", "a1a2", "", true},
		{"bestmove", "", "", false},
		{"info depth 1", "", "", false},
	}

	for _, tt := range tests {
		best, ponder, ok := parseBestMove(tt.line)
		if best != tt.best || ponder != tt.ponder || ok != tt.ok {
			t.Errorf("parseBestMove(%q) = %q %q %v", tt.line, best, ponder, ok)
		}
	}
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		line string
		want core.EngineOption
		ok   bool
	}{
		{"option name Hash type spin default 16 min 1 max 33554432", core.SpinOption("Hash", 16, 1, 33554432), true},
		{"option name Clear Hash type button", core.ButtonOption("Clear Hash"), true},
		{"option name Ponder type check default false", core.CheckOption("Ponder", false), true},
		{"option name Style type combo default Normal var Solid var Normal var Risky", core.ComboOption("Style", "Normal", "Solid", "Normal", "Risky"), true},
		{"option name NalimovPath type string default <empty>", core.StringOption("NalimovPath", ""), true},
		{"option name SyzygyPath type string default c:\\tb\\a b", core.StringOption("SyzygyPath", "c:\\tb\\a b"), true},
		{"option name Threads type dial default 1", core.EngineOption{}, false},
		{"option name type spin", core.EngineOption{}, false},
		{"id name Foo", core.EngineOption{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseOption(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v", ok)
			}
			if tt.ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseOption = %+v\nwant %+v", got, tt.want)
			}
		})
	}
}
