package response

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gambit/internal/core"
)

func TestFormatOption(t *testing.T) {
	tests := []struct {
		opt  core.EngineOption
		want string
	}{
		{core.CheckOption("Nullmove", true), "option name Nullmove type check default true"},
		{core.SpinOption("Selectivity", 2, 0, 4), "option name Selectivity type spin default 2 min 0 max 4"},
		{core.ComboOption("Style", "Normal", "Solid", "Normal", "Risky"), "option name Style type combo default Normal var Solid var Normal var Risky"},
		{core.StringOption("NalimovPath", "c:\\"), "option name NalimovPath type string default c:\\"},
		{core.StringOption("UCI_Opponent", ""), "option name UCI_Opponent type string default <empty>"},
		{core.ButtonOption("Clear Hash"), "option name Clear Hash type button"},
	}

	for _, tt := range tests {
		t.Run(tt.opt.Name, func(t *testing.T) {
			if got := FormatOption(tt.opt); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatInfo(t *testing.T) {
	tests := []struct {
		name string
		info core.Info
		want string
	}{
		{
			name: "full",
			info: core.Info{
				Depth:    core.Some(12),
				SelDepth: core.Some(18),
				Score:    core.Some(core.Centipawns(35)),
				Nodes:    core.Some(uint64(123456)),
				NPS:      core.Some(uint64(980000)),
				Time:     core.Some(126 * time.Millisecond),
				PV:       []string{"e2e4", "e7e5", "g1f3"},
			},
			want: "info depth 12 seldepth 18 score cp 35 nodes 123456 nps 980000 time 126 pv e2e4 e7e5 g1f3",
		},
		{
			name: "mate",
			info: core.Info{Depth: core.Some(5), Score: core.Some(core.MateIn(-3))},
			want: "info depth 5 score mate -3",
		},
		{
			name: "bound",
			info: core.Info{Score: core.Some(core.Score{Centipawns: 20, Bound: core.BoundLower})},
			want: "info score cp 20 lowerbound",
		},
		{
			name: "currmove",
			info: core.Info{CurrMove: "e2e4", CurrMoveNumber: core.Some(1), HashFull: core.Some(250)},
			want: "info hashfull 250 currmove e2e4 currmovenumber 1",
		},
		{
			name: "string last",
			info: core.Info{Depth: core.Some(1), String: "hello\nthere"},
			want: "info depth 1 string hello there",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatInfo(tt.info); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatBestMove(t *testing.T) {
	if got := FormatBestMove("e2e4", ""); got != "bestmove e2e4" {
		t.Errorf("got %q", got)
	}
	if got := FormatBestMove("e2e4", "e7e5"); got != "bestmove e2e4 ponder e7e5" {
		t.Errorf("got %q", got)
	}
	if got := FormatBestMove("", "e7e5"); got != "bestmove 0000 ponder e7e5" {
		t.Errorf("got %q", got)
	}
}

func TestWriterSequence(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.ID("Gambit", "The Gambit authors")
	w.Option(core.SpinOption("Hash", 16, 1, 1024))
	w.UCIOK()
	w.ReadyOK()
	w.Info(core.Info{})
	w.InfoString("ready")
	w.BestMove("e2e4", "")

	want := strings.Join([]string{
		"id name Gambit",
		"id author The Gambit authors",
		"option name Hash type spin default 16 min 1 max 1024",
		"uciok",
		"readyok",
		"info string ready",
		"bestmove e2e4",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

type lineCounter struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCounter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")...)
	return len(p), nil
}

func TestWriterFlushesEachLine(t *testing.T) {
	c := &lineCounter{}
	w := NewWriter(c)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); w.ReadyOK() }()
		go func() { defer wg.Done(); w.Info(core.Info{Depth: core.Some(1), PV: []string{"e2e4"}}) }()
	}
	wg.Wait()

	if len(c.lines) != 100 {
		t.Fatalf("got %d lines, want 100", len(c.lines))
	}
	for _, l := range c.lines {
		if l != "readyok" && l != "info depth 1 pv e2e4" {
			t.Errorf("torn line %q", l)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed pipe")
}

func TestWriterKeepsFirstError(t *testing.T) {
	w := NewWriter(failingWriter{})
	w.ReadyOK()
	w.ReadyOK()
	if w.Err() == nil {
		t.Fatal("expected write error")
	}
}
