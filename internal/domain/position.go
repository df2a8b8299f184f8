package domain

import "time"

// Position is the derived per-ticker state after folding all executed
// trades. It is recomputed wholesale on every aggregation run and never
// mutated incrementally.
type Position struct {
	Ticker string  `json:"ticker"` // Normalized uppercase symbol
	Shares float64 `json:"shares"` // Net quantity = total bought - total sold; may go negative on over-sell

	// AvgCostPerShare is the weighted average of price plus allocated buy
	// commission across all buy trades ever, not just remaining shares.
	AvgCostPerShare float64 `json:"avgCostPerShare"`

	// CostBasis is the portion of total buy cost (commissions included)
	// attributable to the currently held shares:
	// (shares / totalBuyShares) * totalBuyCost. Zero when net shares <= 0.
	CostBasis float64 `json:"costBasis"`

	// BreakEvenPrice is the per-share price at which selling the whole
	// remaining position nets exactly zero after the sell commission.
	BreakEvenPrice float64 `json:"breakEvenPrice"`

	// Realized figures are matched against the blended average buy cost,
	// not specific lots. Because the average is blended across all buys
	// regardless of order, a buy recorded after a sell retroactively moves
	// RealizedCostBasis and RealizedPnL for that earlier sell. That is the
	// intended blended-average-cost policy, not lot accounting.
	RealizedPnL       float64 `json:"realizedPnL"`
	RealizedCostBasis float64 `json:"realizedCostBasis"`
	RealizedProceeds  float64 `json:"realizedProceeds"` // Sale proceeds net of sell commissions
	SellAvgPrice      float64 `json:"sellAvgPrice"`     // RealizedProceeds / TotalSellShares
	TotalSellShares   float64 `json:"totalSellShares"`

	// TotalCommissions is every commission (buy and sell) ever paid on
	// this ticker.
	TotalCommissions float64 `json:"totalCommissions"`

	// TradeHistory lists the executed trades behind this position, in the
	// order they were supplied to the aggregator.
	TradeHistory []*TradeEvent `json:"tradeHistory"`
}

// IsOpen reports whether the position holds shares and belongs in
// display-facing open-position lists. Closed and over-sold positions are
// filtered out, but their realized figures still count toward history.
func (p *Position) IsOpen() bool {
	return p.Shares > 0
}

// LivePosition joins a Position with an externally supplied current price.
// Price 0 means "unknown", never "worthless": market value and unrealized
// P&L are zeroed rather than reporting a phantom loss.
type LivePosition struct {
	Position
	CurrentPrice         float64 `json:"currentPrice"`
	MarketValue          float64 `json:"marketValue"`
	UnrealizedPnL        float64 `json:"unrealizedPnL"`
	UnrealizedPnLPercent float64 `json:"unrealizedPnLPercent"`
}

// PortfolioSummary aggregates all live positions plus cash flow into
// portfolio-level totals.
type PortfolioSummary struct {
	NetLiquidationValue       float64 `json:"netLiquidationValue"` // Open-position value (market or cost-basis fallback) + cash balance
	CashBalance               float64 `json:"cashBalance"`         // Deposits - withdrawals + executed-trade cash impact
	TotalCostBasis            float64 `json:"totalCostBasis"`      // Over open positions only
	TotalUnrealizedPnL        float64 `json:"totalUnrealizedPnL"`
	TotalUnrealizedPnLPercent float64 `json:"totalUnrealizedPnLPercent"`
	TotalRealizedPnL          float64 `json:"totalRealizedPnL"` // Over all positions, open and closed
	TotalRealizedCostBasis    float64 `json:"totalRealizedCostBasis"`
	TotalReturnPercent        float64 `json:"totalReturnPercent"` // (unrealized + realized) / (open basis + realized basis), 0 on zero denominator
	TotalCommissions          float64 `json:"totalCommissions"`   // Over all positions, open and closed
	PositionCount             int     `json:"positionCount"`      // Open positions only
}

// Quote is a single price observation from an external quote source.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"` // 0 means unknown
	Timestamp time.Time `json:"timestamp"`
}
