// FILE: internal/core/engine.go
package core

import "context"

// Engine is the chess logic plugged into the protocol host.
// All methods except Search are called from the command loop while no search runs.
type Engine interface {
	Identify() (name, author string)
	Options() []EngineOption
	NewGame() error
	// SetPosition must leave the previous position in place when it fails
	SetPosition(pos Position) error
	// ApplyOption receives bool, int, string, ButtonPress, Opponent or PositionValue
	ApplyOption(name string, value any) error
	// Search runs until a bound is reached or ctx is cancelled. The engine polls
	// ctx cooperatively; nothing preempts it.
	Search(ctx context.Context, cfg SearchConfig, ctl SearchControl) (SearchResult, error)
}

// SearchControl is the engine's view of its running search
type SearchControl interface {
	// Pondering is true until ponderhit converts the search
	Pondering() bool
	// Report emits an info line
	Report(info Info)
}
