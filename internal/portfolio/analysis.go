package portfolio

// ProfitAnalysis is a hypothetical full-exit evaluation of a holding at a
// target price, with both commissions (buy side already in the cost
// basis, sell side charged on exit) accounted for.
type ProfitAnalysis struct {
	Shares            float64 `json:"shares"`
	AvgPrice          float64 `json:"avgPrice"`
	TargetPrice       float64 `json:"targetPrice"`
	GrossCost         float64 `json:"grossCost"` // shares * avgPrice
	BuyCommission     float64 `json:"buyCommission"`
	TotalCostBasis    float64 `json:"totalCostBasis"` // gross cost + buy commission
	CostBasisPerShare float64 `json:"costBasisPerShare"`
	SellCommission    float64 `json:"sellCommission"`
	MarketValue       float64 `json:"marketValue"` // shares * targetPrice
	GrossPnL          float64 `json:"grossPnL"`    // before sell commission
	NetPnL            float64 `json:"netPnL"`      // after sell commission
	GrossPnLPercent   float64 `json:"grossPnLPercent"`
	NetPnLPercent     float64 `json:"netPnLPercent"`
	BreakEvenPrice    float64 `json:"breakEvenPrice"`
	ProfitPerCent     float64 `json:"profitPerCent"`    // net profit of a $0.01 favorable move
	ProfitPerPercent  float64 `json:"profitPerPercent"` // net profit of a 1% favorable move
}

// AnalyzeProfit evaluates selling the whole holding at targetPrice.
// Inputs are the held share count and the average buy price per share;
// commissions come from the commission model. Non-positive shares yield a
// zero analysis.
func AnalyzeProfit(shares, avgPrice, targetPrice float64) ProfitAnalysis {
	if shares <= 0 {
		return ProfitAnalysis{AvgPrice: avgPrice, TargetPrice: targetPrice}
	}

	buyCommission := Commission(shares)
	grossCost := shares * avgPrice
	totalCostBasis := grossCost + buyCommission
	sellCommission := Commission(shares)
	marketValue := shares * targetPrice
	grossPnL := marketValue - totalCostBasis
	netPnL := grossPnL - sellCommission

	a := ProfitAnalysis{
		Shares:            shares,
		AvgPrice:          avgPrice,
		TargetPrice:       targetPrice,
		GrossCost:         grossCost,
		BuyCommission:     buyCommission,
		TotalCostBasis:    totalCostBasis,
		CostBasisPerShare: totalCostBasis / shares,
		SellCommission:    sellCommission,
		MarketValue:       marketValue,
		GrossPnL:          grossPnL,
		NetPnL:            netPnL,
		BreakEvenPrice:    (totalCostBasis + sellCommission) / shares,
		ProfitPerCent:     shares*0.01 - sellCommission,
		ProfitPerPercent:  shares*avgPrice*0.01 - sellCommission,
	}
	if totalCostBasis > 0 {
		a.GrossPnLPercent = grossPnL / totalCostBasis * 100
		a.NetPnLPercent = netPnL / totalCostBasis * 100
	}
	return a
}

// AnalyzeDollarMove evaluates the holding at avgPrice shifted by a dollar
// amount.
func AnalyzeDollarMove(shares, avgPrice, dollarMove float64) ProfitAnalysis {
	return AnalyzeProfit(shares, avgPrice, avgPrice+dollarMove)
}

// AnalyzePercentMove evaluates the holding at avgPrice shifted by a
// percentage (5 means 5%).
func AnalyzePercentMove(shares, avgPrice, percentMove float64) ProfitAnalysis {
	return AnalyzeProfit(shares, avgPrice, avgPrice*(1+percentMove/100))
}
