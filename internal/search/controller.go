// FILE: internal/search/controller.go
package search

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"gambit/internal/core"
	"gambit/internal/response"
)

// maxTranscript caps the info lines kept per search for the journal
const maxTranscript = 512

// Searcher is the part of the engine the controller drives
type Searcher interface {
	Search(ctx context.Context, cfg core.SearchConfig, ctl core.SearchControl) (core.SearchResult, error)
}

// Summary describes a settled search
type Summary struct {
	ID       string
	Position core.Position
	Config   core.SearchConfig
	Result   core.SearchResult
	Infos    []core.Info
	Outcome  Outcome
	Started  time.Time
	Finished time.Time
	Err      error
}

// Recorder receives every settled search
type Recorder interface {
	Record(s Summary)
}

type Option func(*Controller)

// WithLogger sets the controller logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithRecorder receives every settled search
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// Controller runs at most one search at a time on its own goroutine.
// Start, Cancel, PonderHit and Forfeit are called from the command loop only.
type Controller struct {
	engine   Searcher
	out      *response.Writer
	log      zerolog.Logger
	recorder Recorder
	live     *Handle
}

// NewController creates a controller that runs searches on engine and
// writes their output to out. At most one search runs at a time.
func NewController(engine Searcher, out *response.Writer, opts ...Option) *Controller {
	c := &Controller{
		engine: engine,
		out:    out,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches a search and returns immediately. It refuses while another
// search has not settled.
func (c *Controller) Start(pos core.Position, cfg core.SearchConfig) (*Handle, error) {
	if prev := c.live; prev != nil {
		if !prev.Settled() {
			return nil, fmt.Errorf("%w: %s", core.ErrSearchActive, prev.ID())
		}
		// the previous bestmove must be on the wire before new output
		prev.mu.Lock()
		prev.mu.Unlock()
	}

	h := newHandle(pos, cfg)
	c.live = h
	c.log.Debug().
		Str("search_id", h.ID()).
		Str("position", pos.String()).
		Str("go", cfg.String()).
		Msg("search started")

	go c.run(h)
	return h, nil
}

// Active returns the unsettled search, if any
func (c *Controller) Active() *Handle {
	if c.live == nil || c.live.Settled() {
		return nil
	}
	return c.live
}

// Cancel asks the engine to stop and lifts any hold on bestmove.
// It does not wait; a second call is a no-op.
func (c *Controller) Cancel(h *Handle) {
	h.cancel()

	h.mu.Lock()
	if !h.completed {
		h.stopped = true
	}
	h.held = false
	settled := c.releaseLocked(h)
	h.mu.Unlock()

	if settled {
		c.record(h)
	}
}

// PonderHit turns a ponder search into a normal one in place. The engine sees
// Pondering flip to false and starts its clock.
func (c *Controller) PonderHit(h *Handle) bool {
	if !h.pondering.CompareAndSwap(true, false) {
		return false
	}

	h.mu.Lock()
	if !h.config.Infinite {
		h.held = false
	}
	settled := c.releaseLocked(h)
	h.mu.Unlock()

	if settled {
		c.record(h)
	}
	c.log.Debug().Str("search_id", h.ID()).Msg("ponderhit")
	return true
}

// Forfeit cancels the search and discards its result. No further info or
// bestmove is written for it.
func (c *Controller) Forfeit(h *Handle) {
	h.mu.Lock()
	h.forfeited = true
	settled := false
	if h.completed && !h.done {
		h.done = true
		close(h.settled)
		settled = true
	}
	h.mu.Unlock()

	h.cancel()
	if settled {
		c.record(h)
	}
}

// Await blocks until the engine call returns or the timeout passes.
// A zero timeout waits forever.
func (c *Controller) Await(h *Handle, timeout time.Duration) (core.SearchResult, bool) {
	if timeout <= 0 {
		<-h.returned
		return h.Result(), true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.returned:
		return h.Result(), true
	case <-timer.C:
		return core.SearchResult{}, false
	}
}

func (c *Controller) run(h *Handle) {
	res, err := c.search(h)

	h.mu.Lock()
	h.completed = true
	h.result = res
	h.err = err
	h.finished = time.Now()
	close(h.returned)

	settled := false
	if h.forfeited {
		h.done = true
		close(h.settled)
		settled = true
	} else {
		settled = c.releaseLocked(h)
	}
	h.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Str("search_id", h.ID()).Msg("search failed")
	}
	if settled {
		c.record(h)
	}
}

// search calls the engine and turns a panic into an error
func (c *Controller) search(h *Handle) (res core.SearchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = core.SearchResult{}
			err = fmt.Errorf("engine panic: %v", r)
			c.log.Error().
				Str("search_id", h.ID()).
				Str("stack", string(debug.Stack())).
				Msg("engine panicked during search")
		}
	}()
	return c.engine.Search(h.ctx, h.config, control{c: c, h: h})
}

// releaseLocked writes bestmove once the engine is done and nothing holds it.
// It reports whether the handle settled.
func (c *Controller) releaseLocked(h *Handle) bool {
	if !h.completed || h.held || h.forfeited || h.done {
		return false
	}

	// settle first so a frontend that has read bestmove can start the next
	// search; Start waits on h.mu until the lines below are written
	h.done = true
	close(h.settled)

	for _, info := range h.result.Infos {
		c.keepLocked(h, info)
		c.out.Info(info)
	}

	best, ponder := h.result.BestMove, h.result.PonderMove
	if best == "" {
		best = core.NullMove
	}
	if best == core.NullMove || ponder == core.NullMove {
		ponder = ""
	}
	c.out.BestMove(best, ponder)
	return true
}

func (c *Controller) report(h *Handle, info core.Info) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.forfeited || h.done || h.completed {
		return
	}
	c.keepLocked(h, info)
	c.out.Info(info)
}

func (c *Controller) keepLocked(h *Handle, info core.Info) {
	if len(h.infos) < maxTranscript && !info.Empty() {
		h.infos = append(h.infos, info)
	}
}

func (c *Controller) record(h *Handle) {
	s := h.summary()
	c.log.Debug().
		Str("search_id", s.ID).
		Str("outcome", s.Outcome.String()).
		Str("bestmove", s.Result.BestMove).
		Dur("dur", s.Finished.Sub(s.Started)).
		Msg("search settled")
	if c.recorder != nil {
		c.recorder.Record(s)
	}
}
