// FILE: internal/core/core.go
package core

// State is the protocol session state
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateSearching
	StatePondering
	StateQuitting
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateSearching:
		return "searching"
	case StatePondering:
		return "pondering"
	case StateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Active reports whether a search handle may be live in this state
func (s State) Active() bool {
	return s == StateSearching || s == StatePondering
}

// NullMove is sent as bestmove when no move can be produced
const NullMove = "0000"

// Opt is a value that may be absent.
type Opt[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Opt holding v
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// Get returns the value and whether it is set
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// Or returns the value, or def when absent
func (o Opt[T]) Or(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}
