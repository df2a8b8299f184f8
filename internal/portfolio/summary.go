package portfolio

import "runtimetrade/internal/domain"

// Summarize reduces all live positions plus the full cash and trade event
// lists into portfolio-level totals. It is re-run whenever positions,
// prices, trades, or cash events change.
//
// Open positions (shares > 0) drive net liquidation value, unrealized
// P&L, and the open cost basis; realized figures and commissions sum over
// every position regardless of open or closed state. Positions with an
// unknown price fall back to cost basis in net liquidation as a
// conservative stand-in for market value. Percentages with a zero
// denominator are reported as 0, never NaN.
func Summarize(live []*domain.LivePosition, cash []*domain.CashEvent, trades []*domain.TradeEvent) *domain.PortfolioSummary {
	s := &domain.PortfolioSummary{}

	for _, pos := range live {
		s.TotalCommissions += pos.TotalCommissions
		s.TotalRealizedPnL += pos.RealizedPnL
		s.TotalRealizedCostBasis += pos.RealizedCostBasis

		if !pos.IsOpen() {
			continue
		}
		s.PositionCount++
		s.TotalCostBasis += pos.CostBasis
		s.TotalUnrealizedPnL += pos.UnrealizedPnL
		if pos.CurrentPrice > 0 {
			s.NetLiquidationValue += pos.MarketValue
		} else {
			s.NetLiquidationValue += pos.CostBasis
		}
	}

	// Cash balance: deposits minus withdrawals, plus the cash impact of
	// executed trades. Pending orders never touch cash.
	for _, c := range cash {
		s.CashBalance += c.Signed()
	}
	for _, t := range trades {
		s.CashBalance += t.CashImpact()
	}
	s.NetLiquidationValue += s.CashBalance

	if s.TotalCostBasis > 0 {
		s.TotalUnrealizedPnLPercent = s.TotalUnrealizedPnL / s.TotalCostBasis * 100
	}

	totalPnL := s.TotalUnrealizedPnL + s.TotalRealizedPnL
	totalBasis := s.TotalCostBasis + s.TotalRealizedCostBasis
	if totalBasis > 0 {
		s.TotalReturnPercent = totalPnL / totalBasis * 100
	}
	return s
}
