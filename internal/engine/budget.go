// FILE: internal/engine/budget.go
package engine

import (
	"time"

	"gambit/internal/core"
)

const (
	defaultMovesToGo = 30
	minThink         = 10 * time.Millisecond
)

// Budget is the search allowance derived from go arguments.
// Zero fields mean no limit of that kind.
type Budget struct {
	Time  time.Duration
	Depth int
	Nodes uint64
}

func (b Budget) Unbounded() bool {
	return b.Time == 0 && b.Depth == 0 && b.Nodes == 0
}

// Plan turns the go arguments into a budget for the side to move.
// overhead is subtracted from every clock based allowance.
func Plan(cfg core.SearchConfig, white bool, overhead time.Duration) Budget {
	var b Budget
	if d, ok := cfg.Depth.Get(); ok && d > 0 {
		b.Depth = d
	}
	if n, ok := cfg.Mate.Get(); ok && n > 0 && (b.Depth == 0 || 2*n < b.Depth) {
		b.Depth = 2 * n
	}
	if n, ok := cfg.Nodes.Get(); ok && n > 0 {
		b.Nodes = n
	}
	if cfg.Infinite {
		return b
	}

	if mt, ok := cfg.MoveTime.Get(); ok {
		b.Time = clamp(mt - overhead)
		return b
	}

	remaining, inc := cfg.WhiteTime, cfg.WhiteInc
	if !white {
		remaining, inc = cfg.BlackTime, cfg.BlackInc
	}
	if !remaining.Set {
		return b
	}

	mtg := cfg.MovesToGo.Or(defaultMovesToGo)
	if mtg <= 0 {
		mtg = defaultMovesToGo
	}
	alloc := remaining.Value/time.Duration(mtg) + inc.Or(0)*3/4
	if limit := remaining.Value / 2; alloc > limit {
		alloc = limit
	}
	b.Time = clamp(alloc - overhead)
	return b
}

func clamp(d time.Duration) time.Duration {
	if d < minThink {
		return minThink
	}
	return d
}
