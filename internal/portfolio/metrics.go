package portfolio

import "runtimetrade/internal/domain"

// WithPrice joins a position with a current market price. It is re-run on
// every price tick without re-deriving cost basis.
//
// A price <= 0 signals "unknown": market value and unrealized P&L are
// zeroed and the price is reported as 0 rather than echoing a stale
// value. The engine never substitutes average cost as a fake current
// price; display layers may choose to, this function does not. Positions
// with no remaining shares get the same zeroing regardless of price.
func WithPrice(pos *domain.Position, currentPrice float64) *domain.LivePosition {
	live := &domain.LivePosition{Position: *pos}

	if pos.Shares <= 0 {
		live.CurrentPrice = currentPrice
		return live
	}
	if currentPrice <= 0 {
		live.CurrentPrice = 0
		return live
	}

	live.CurrentPrice = currentPrice
	live.MarketValue = pos.Shares * currentPrice
	live.UnrealizedPnL = live.MarketValue - pos.CostBasis
	if pos.CostBasis > 0 {
		live.UnrealizedPnLPercent = live.UnrealizedPnL / pos.CostBasis * 100
	}
	return live
}
