// FILE: internal/search/handle.go
package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gambit/internal/core"
)

// Outcome classifies how a search ended
type Outcome int

const (
	OutcomeCompleted Outcome = iota // Engine reached its own bound
	OutcomeStopped                  // Cancelled by stop
	OutcomeForfeited                // Cancelled by quit, no bestmove
	OutcomeFailed                   // Engine error or panic
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeStopped:
		return "stopped"
	case OutcomeForfeited:
		return "forfeited"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle is one running search. The context is its cancellation flag: it is
// cancelled at most once and only ever read by the engine.
type Handle struct {
	id       uuid.UUID
	position core.Position
	config   core.SearchConfig
	started  time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	pondering atomic.Bool

	returned chan struct{} // closed when the engine call is over
	settled  chan struct{} // closed when bestmove is out or the result is forfeited

	mu        sync.Mutex
	held      bool // infinite or ponder: bestmove waits for stop or ponderhit
	stopped   bool
	forfeited bool
	completed bool
	done      bool
	err       error
	result    core.SearchResult
	infos     []core.Info
	finished  time.Time
}

func newHandle(pos core.Position, cfg core.SearchConfig) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		id:       uuid.New(),
		position: pos,
		config:   cfg,
		started:  time.Now(),
		ctx:      ctx,
		cancel:   cancel,
		returned: make(chan struct{}),
		settled:  make(chan struct{}),
		held:     cfg.Holds(),
	}
	h.pondering.Store(cfg.Ponder)
	return h
}

// ID returns the search id assigned at start
func (h *Handle) ID() string {
	return h.id.String()
}

func (h *Handle) Position() core.Position {
	return h.position
}

func (h *Handle) Config() core.SearchConfig {
	return h.config
}

func (h *Handle) Started() time.Time {
	return h.started
}

// Pondering is true from a go ponder until ponderhit
func (h *Handle) Pondering() bool {
	return h.pondering.Load()
}

// Done is closed once the search needs nothing more from the command loop
func (h *Handle) Done() <-chan struct{} {
	return h.settled
}

// Wait blocks until the search has settled and its last line is written
func (h *Handle) Wait() {
	<-h.settled
	h.mu.Lock()
	h.mu.Unlock()
}

// Settled reports whether the search has finished and its bestmove,
// if any, has been written.
func (h *Handle) Settled() bool {
	select {
	case <-h.settled:
		return true
	default:
		return false
	}
}

// Returned is closed when the engine's Search call has returned
func (h *Handle) Returned() <-chan struct{} {
	return h.returned
}

// Result is valid after Returned is closed
func (h *Handle) Result() core.SearchResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

func (h *Handle) summary() Summary {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Summary{
		ID:       h.ID(),
		Position: h.position,
		Config:   h.config,
		Result:   h.result,
		Infos:    append([]core.Info(nil), h.infos...),
		Started:  h.started,
		Finished: h.finished,
		Err:      h.err,
	}
	switch {
	case h.forfeited:
		s.Outcome = OutcomeForfeited
	case h.err != nil:
		s.Outcome = OutcomeFailed
	case h.stopped:
		s.Outcome = OutcomeStopped
	default:
		s.Outcome = OutcomeCompleted
	}
	return s
}

// control is the engine's side of a handle
type control struct {
	c *Controller
	h *Handle
}

func (ctl control) Pondering() bool {
	return ctl.h.Pondering()
}

func (ctl control) Report(info core.Info) {
	ctl.c.report(ctl.h, info)
}
