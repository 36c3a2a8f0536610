// Package venue defines the trading-venue surface the runtime depends on.
// One concrete adapter per venue implements Client; everything above it
// (harness, auditors, strategies) sees only the interface.
package venue

import (
	"context"

	"main/internal/model"
	"main/internal/model/enum"
)

// Client is a venue account we can trade and audit against. Implementations
// map venue-specific failures onto the typed variants in pkg/exception so
// callers can switch on them instead of matching message strings.
//
// Calls are synchronous; the runtime is single threaded and never issues
// overlapping calls on one client. Timeouts belong to the implementation.
type Client interface {
	Name() string

	// Balance fetches the venue's own view of the account balance.
	Balance(ctx context.Context) (model.Balance, error)

	// PlaceOrder submits a limit order and returns the venue order id.
	// Volume is in the volume currency, price is per unit.
	PlaceOrder(ctx context.Context, side enum.Side, volume, price model.Money) (string, error)

	// CancelOrder cancels a resting order. exception.ErrCancelNoEffect means
	// the order was already gone (filled or cancelled).
	CancelOrder(ctx context.Context, venueOrderID string) error

	OpenOrders(ctx context.Context) ([]*model.Order, error)

	// OrderAuditData reports filled volume by venue order id, excluding the
	// most recent skipRecent orders. Venue pagination lags on the newest
	// orders, so auditors skip them rather than chase the boundary.
	OrderAuditData(ctx context.Context, skipRecent int) (map[string]model.Money, error)
}
