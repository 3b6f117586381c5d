package proxy

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gambit/internal/command"
	"gambit/internal/core"
	"gambit/internal/engine/random"
	"gambit/internal/processor"
	"gambit/internal/response"
	"gambit/internal/transport"
)

const helperEnv = "GAMBIT_PROXY_HELPER"

// TestHelperProcess is not a real test. It is the child engine for the
// tests below: the random engine served over stdin and stdout.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	eng := random.New(random.WithSeed(7), random.WithIdentity("Helper", "Tester"), random.WithTick(time.Millisecond))
	p := processor.New(eng, response.NewWriter(os.Stdout))
	p.Run(context.Background(), transport.NewScanner(os.Stdin))
	os.Exit(0)
}

func startHelper(t *testing.T) *Engine {
	t.Helper()
	e, err := New(os.Args[0],
		WithArgs("-test.run=^TestHelperProcess$"),
		WithEnv(helperEnv+"=1"),
		WithHandshakeTimeout(10*time.Second),
	)
	if err != nil {
		t.Fatalf("start helper: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

type control struct {
	pondering atomic.Bool
	mu        sync.Mutex
	infos     []core.Info
}

func (c *control) Pondering() bool { return c.pondering.Load() }

func (c *control) Report(info core.Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos = append(c.infos, info)
}

func (c *control) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.infos)
}

func TestHandshake(t *testing.T) {
	e := startHelper(t)

	name, author := e.Identify()
	if name != "Helper" || author != "Tester" {
		t.Errorf("identify = %q %q", name, author)
	}

	found := map[string]core.EngineOption{}
	for _, opt := range e.Options() {
		found[opt.Name] = opt
	}
	if hash := found["Hash"]; hash.Type != core.OptionSpin || hash.Max != 1024 {
		t.Errorf("Hash = %+v", hash)
	}
	if style := found[random.OptStyle]; len(style.Vars) != 2 {
		t.Errorf("Style = %+v", style)
	}
	if _, ok := found[random.OptClearHash]; !ok {
		t.Errorf("missing button option, got %v", e.Options())
	}
}

func TestBoundedSearch(t *testing.T) {
	e := startHelper(t)
	if err := e.SetPosition(core.Position{Moves: []string{"e2e4", "e7e5"}}); err != nil {
		t.Fatal(err)
	}

	ctl := &control{}
	res, err := e.Search(context.Background(), core.SearchConfig{Depth: core.Some(2)}, ctl)
	if err != nil {
		t.Fatal(err)
	}
	if !command.IsMove(res.BestMove) || res.BestMove == core.NullMove {
		t.Errorf("best move = %q", res.BestMove)
	}
	if ctl.count() != 2 {
		t.Errorf("got %d infos, want 2", ctl.count())
	}
}

func TestInfiniteSearchStops(t *testing.T) {
	e := startHelper(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	res, err := e.Search(ctx, core.SearchConfig{Infinite: true}, &control{})
	if err != nil {
		t.Fatal(err)
	}
	if res.BestMove == "" || res.BestMove == core.NullMove {
		t.Errorf("best move = %q", res.BestMove)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Error("search returned before stop")
	}
}

func TestPonderHitForwarded(t *testing.T) {
	e := startHelper(t)
	if err := e.ApplyOption("Ponder", true); err != nil {
		t.Fatal(err)
	}

	ctl := &control{}
	ctl.pondering.Store(true)
	time.AfterFunc(40*time.Millisecond, func() { ctl.pondering.Store(false) })

	done := make(chan core.SearchResult, 1)
	go func() {
		res, err := e.Search(context.Background(), core.SearchConfig{Ponder: true, Depth: core.Some(1)}, ctl)
		if err != nil {
			t.Error(err)
		}
		done <- res
	}()

	select {
	case res := <-done:
		if res.BestMove == "" {
			t.Error("empty best move")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ponderhit was not forwarded")
	}
}

func TestSetPositionRejectedLocally(t *testing.T) {
	e := startHelper(t)
	err := e.SetPosition(core.Position{Moves: []string{"e2e5"}})
	if !errors.Is(err, core.ErrIllegalMove) {
		t.Errorf("error = %v", err)
	}
}

func TestApplyOptionValues(t *testing.T) {
	e := startHelper(t)
	values := map[string]any{
		"Hash":                 64,
		random.OptClearHash:    core.ButtonPress{},
		random.OptStyle:        random.StyleGreedy,
		"UCI_Opponent":         core.Opponent{Title: core.TitleGM, Elo: core.Some(2800), Name: "Magnus"},
		"UCI_SetPositionValue": core.PositionValue{ClearAll: true},
	}
	for name, v := range values {
		if err := e.ApplyOption(name, v); err != nil {
			t.Errorf("ApplyOption(%s) = %v", name, err)
		}
	}
	if err := e.ApplyOption("Hash", 1.5); !errors.Is(err, core.ErrInvalidValue) {
		t.Errorf("float value error = %v", err)
	}
	if err := e.NewGame(); err != nil {
		t.Errorf("NewGame after options = %v", err)
	}
}
