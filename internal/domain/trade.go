package domain

import "time"

// TradeEvent is a single recorded buy or sell. Events are immutable once
// created; edits go through the store as explicit update/delete.
type TradeEvent struct {
	ID         string    `json:"id"`         // Unique identifier (UUID, assigned at creation)
	UserID     string    `json:"userId"`     // Owner of the record
	Ticker     string    `json:"ticker"`     // Normalized uppercase symbol (e.g., "AAPL")
	Side       Side      `json:"side"`       // buy or sell
	Shares     float64   `json:"shares"`     // Positive share count
	Price      float64   `json:"price"`      // Positive per-share execution price
	Commission float64   `json:"commission"` // Commission paid; defaulted from the commission model when absent
	Kind       EventKind `json:"kind"`       // trade (executed) or order (pending, excluded from aggregation)
	CreatedAt  time.Time `json:"createdAt"`  // Used for history ordering only; aggregation is order-independent
}

// IsExecuted reports whether the event contributes to positions and cash.
func (t *TradeEvent) IsExecuted() bool {
	return t.Kind == KindTrade
}

// CashImpact returns the signed cash flow of an executed event: sells add
// proceeds net of commission, buys consume cost plus commission. Pending
// orders have no cash impact.
func (t *TradeEvent) CashImpact() float64 {
	if !t.IsExecuted() {
		return 0
	}
	gross := t.Shares * t.Price
	if t.Side == Sell {
		return gross - t.Commission
	}
	return -(gross + t.Commission)
}
