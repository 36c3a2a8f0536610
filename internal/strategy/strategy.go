// Package strategy defines the contract the harness drives, plus a builtin
// market maker used for paper trading and as the reference harness workload.
package strategy

import (
	"context"
	"time"
)

// Strategy is one trading algorithm driven tick by tick. The harness owns
// scheduling, auditing and retries; a strategy only decides what to quote.
type Strategy interface {
	Name() string

	// Tick runs one decision cycle: read the market, place and cancel orders,
	// account fills into the ledger.
	Tick(ctx context.Context) error

	// PostTick is housekeeping after a successful tick.
	PostTick(tickCount int)

	// WindDown flattens best effort: cancel open orders, stop quoting. Called
	// on shutdown and when a startup audit finds unclean state.
	WindDown(ctx context.Context) error

	// IsComplete reports that the strategy has nothing more to do and the
	// harness should exit cleanly.
	IsComplete() bool

	// TickDelay is the pause before the next tick.
	TickDelay() time.Duration
}
