package portfolio

import (
	"sort"

	"runtimetrade/internal/domain"
)

// accumulator collects the running per-ticker sums while folding trades.
type accumulator struct {
	ticker                            string
	totalBuyShares                    float64
	totalBuyCost                      float64 // sum of shares*price + commission over buys
	totalSellShares                   float64
	totalSaleProceeds                 float64 // sum of shares*price - commission over sells
	totalSaleProceedsBeforeCommission float64 // gross sale value, kept for average-price diagnostics
	totalCommissionsPaid              float64
	trades                            []*domain.TradeEvent
}

// Aggregate folds the full list of trade events into per-ticker
// positions. The operation is pure and order-independent except for each
// position's TradeHistory, which preserves input order. It recomputes
// everything from scratch: callers must not patch positions incrementally.
//
// Pending orders and records with non-positive shares or price contribute
// nothing and are silently skipped. A missing or non-positive commission
// is replaced by the commission model. Sells exceeding recorded buys are
// surfaced as negative net shares rather than rejected; validating that
// belongs at the input boundary, not here.
func Aggregate(trades []*domain.TradeEvent) []*domain.Position {
	if len(trades) == 0 {
		return []*domain.Position{}
	}

	accs := make(map[string]*accumulator)
	order := make([]string, 0)

	for _, t := range trades {
		if t.Kind == domain.KindOrder {
			continue
		}
		ticker := domain.NormalizeTicker(t.Ticker)
		if ticker == "" || t.Shares <= 0 || t.Price <= 0 {
			continue
		}
		commission := t.Commission
		if commission <= 0 {
			commission = Commission(t.Shares)
		}

		acc, ok := accs[ticker]
		if !ok {
			acc = &accumulator{ticker: ticker}
			accs[ticker] = acc
			order = append(order, ticker)
		}
		acc.trades = append(acc.trades, t)

		switch t.Side {
		case domain.Buy:
			acc.totalBuyShares += t.Shares
			acc.totalBuyCost += t.Shares*t.Price + commission
			acc.totalCommissionsPaid += commission
		case domain.Sell:
			acc.totalSellShares += t.Shares
			acc.totalSaleProceedsBeforeCommission += t.Shares * t.Price
			acc.totalSaleProceeds += t.Shares*t.Price - commission
			acc.totalCommissionsPaid += commission
		}
	}

	positions := make([]*domain.Position, 0, len(accs))
	for _, ticker := range order {
		positions = append(positions, accs[ticker].finalize())
	}
	// Deterministic output regardless of input permutation.
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Ticker < positions[j].Ticker
	})
	return positions
}

// finalize converts the running sums into a Position.
func (acc *accumulator) finalize() *domain.Position {
	netShares := acc.totalBuyShares - acc.totalSellShares

	var avgCostPerShare float64
	if acc.totalBuyShares > 0 {
		avgCostPerShare = acc.totalBuyCost / acc.totalBuyShares
	}

	// Cost basis allocates total buy cost (commissions included)
	// proportionally to the shares still held. Commissions on shares
	// already sold therefore keep weighing on the remaining lot; that is
	// the blended-average-cost policy, not lot selection.
	var costBasis float64
	if netShares > 0 && acc.totalBuyShares > 0 {
		costBasis = (netShares / acc.totalBuyShares) * acc.totalBuyCost
	}

	var breakEvenPrice float64
	if netShares > 0 {
		breakEvenPrice = (costBasis + Commission(netShares)) / netShares
	}

	var realizedCostBasis, realizedProceeds, realizedPnL, sellAvgPrice float64
	if acc.totalSellShares > 0 {
		// Matched against the current blended average over all buys, so a
		// later buy shifts realized figures reported for earlier sells.
		realizedCostBasis = avgCostPerShare * acc.totalSellShares
		realizedProceeds = acc.totalSaleProceeds
		realizedPnL = realizedProceeds - realizedCostBasis
		sellAvgPrice = acc.totalSaleProceeds / acc.totalSellShares
	}

	return &domain.Position{
		Ticker:            acc.ticker,
		Shares:            netShares,
		AvgCostPerShare:   avgCostPerShare,
		CostBasis:         costBasis,
		BreakEvenPrice:    breakEvenPrice,
		RealizedPnL:       realizedPnL,
		RealizedCostBasis: realizedCostBasis,
		RealizedProceeds:  realizedProceeds,
		SellAvgPrice:      sellAvgPrice,
		TotalSellShares:   acc.totalSellShares,
		TotalCommissions:  acc.totalCommissionsPaid,
		TradeHistory:      acc.trades,
	}
}
