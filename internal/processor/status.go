// FILE: internal/processor/status.go
package processor

import (
	"time"

	"gambit/internal/core"
	"gambit/internal/search"
)

// Status is a read-only view of the session for observers on other goroutines
type Status struct {
	State    string            `json:"state"`
	Position string            `json:"position"`
	Debug    bool              `json:"debug"`
	Search   *SearchStatus     `json:"search,omitempty"`
	Options  map[string]string `json:"options"`
	Commands uint64            `json:"commands"`
	Searches uint64            `json:"searches"`
}

type SearchStatus struct {
	ID        string `json:"id"`
	Go        string `json:"go"`
	Pondering bool   `json:"pondering"`
	AgeMillis int64  `json:"ageMs"`
}

type snapshot struct {
	state    core.State
	position core.Position
	debug    bool
	handle   *search.Handle
}

func (p *Processor) publish() {
	p.snapshot.Store(&snapshot{
		state:    p.state,
		position: p.position,
		debug:    p.debug,
		handle:   p.handle,
	})
}

// Status may be called from any goroutine
func (p *Processor) Status() Status {
	snap := p.snapshot.Load()
	st := Status{
		State:    snap.state.String(),
		Position: snap.position.String(),
		Debug:    snap.debug,
		Options:  p.registry.Values(),
		Commands: p.commands.Load(),
		Searches: p.searches.Load(),
	}

	if h := snap.handle; h != nil {
		if h.Settled() {
			// bestmove is out; the loop has not seen another command yet
			st.State = core.StateReady.String()
		} else {
			st.Search = &SearchStatus{
				ID:        h.ID(),
				Go:        h.Config().String(),
				Pondering: h.Pondering(),
				AgeMillis: time.Since(h.Started()).Milliseconds(),
			}
		}
	}
	return st
}

// Declarations lists the options announced on uci
func (p *Processor) Declarations() []core.EngineOption {
	return p.registry.Declarations()
}
