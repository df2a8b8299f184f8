package portfolio

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runtimetrade/internal/domain"
)

func makeTrade(ticker string, side domain.Side, shares, price, commission float64) *domain.TradeEvent {
	return &domain.TradeEvent{
		ID:         ticker + "-" + string(side),
		UserID:     "local",
		Ticker:     ticker,
		Side:       side,
		Shares:     shares,
		Price:      price,
		Commission: commission,
		Kind:       domain.KindTrade,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestAggregate_SingleBuy(t *testing.T) {
	// 100 shares @ $10, commission max(100*0.005, 1) = 1.
	positions := Aggregate([]*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
	})
	require.Len(t, positions, 1)

	pos := positions[0]
	assert.Equal(t, "AAPL", pos.Ticker)
	assert.InDelta(t, 100.0, pos.Shares, 1e-9)
	assert.InDelta(t, 10.01, pos.AvgCostPerShare, 1e-9)
	assert.InDelta(t, 1001.0, pos.CostBasis, 1e-9)
	assert.InDelta(t, 10.02, pos.BreakEvenPrice, 1e-9) // (1001 + 1) / 100
	assert.InDelta(t, 0.0, pos.RealizedPnL, 1e-9)
	assert.InDelta(t, 1.0, pos.TotalCommissions, 1e-9)
	assert.Len(t, pos.TradeHistory, 1)
}

func TestAggregate_PartialSell(t *testing.T) {
	// Buy 100 @ $10 then sell 40 @ $12, both with defaulted $1 commission.
	positions := Aggregate([]*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
		makeTrade("AAPL", domain.Sell, 40, 12, 0),
	})
	require.Len(t, positions, 1)

	pos := positions[0]
	assert.InDelta(t, 60.0, pos.Shares, 1e-9)
	assert.InDelta(t, 40.0, pos.TotalSellShares, 1e-9)
	assert.InDelta(t, 600.6, pos.CostBasis, 1e-9)           // (60/100) * 1001
	assert.InDelta(t, 400.4, pos.RealizedCostBasis, 1e-9)   // 10.01 * 40
	assert.InDelta(t, 479.0, pos.RealizedProceeds, 1e-9)    // 40*12 - 1
	assert.InDelta(t, 78.6, pos.RealizedPnL, 1e-9)          // 479 - 400.4
	assert.InDelta(t, 479.0/40, pos.SellAvgPrice, 1e-9)
	assert.InDelta(t, 2.0, pos.TotalCommissions, 1e-9)
}

func TestAggregate_FullSellOut(t *testing.T) {
	positions := Aggregate([]*domain.TradeEvent{
		makeTrade("TSLA", domain.Buy, 50, 200, 0),
		makeTrade("TSLA", domain.Sell, 50, 250, 0),
	})
	require.Len(t, positions, 1)

	pos := positions[0]
	assert.InDelta(t, 0.0, pos.Shares, 1e-9)
	assert.False(t, pos.IsOpen())
	assert.InDelta(t, 0.0, pos.CostBasis, 1e-9)
	assert.InDelta(t, 0.0, pos.BreakEvenPrice, 1e-9)
	// Realized figures survive the close-out.
	assert.Greater(t, pos.RealizedPnL, 0.0)
	assert.InDelta(t, 50*250-1-(50*200+1), pos.RealizedPnL, 1e-9)
}

func TestAggregate_OverSellSurfacedNotRejected(t *testing.T) {
	positions := Aggregate([]*domain.TradeEvent{
		makeTrade("NVDA", domain.Buy, 10, 100, 0),
		makeTrade("NVDA", domain.Sell, 25, 110, 0),
	})
	require.Len(t, positions, 1)

	pos := positions[0]
	assert.InDelta(t, -15.0, pos.Shares, 1e-9)
	assert.False(t, pos.IsOpen())
	assert.InDelta(t, 0.0, pos.CostBasis, 1e-9)
	assert.InDelta(t, 0.0, pos.BreakEvenPrice, 1e-9)
}

func TestAggregate_PendingOrdersExcluded(t *testing.T) {
	order := makeTrade("AAPL", domain.Buy, 500, 9, 0)
	order.Kind = domain.KindOrder

	withOrder := Aggregate([]*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
		order,
	})
	withoutOrder := Aggregate([]*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
	})

	require.Len(t, withOrder, 1)
	require.Len(t, withoutOrder, 1)
	assert.Equal(t, withoutOrder[0].Shares, withOrder[0].Shares)
	assert.Equal(t, withoutOrder[0].CostBasis, withOrder[0].CostBasis)
	assert.Equal(t, withoutOrder[0].TotalCommissions, withOrder[0].TotalCommissions)
	assert.Len(t, withOrder[0].TradeHistory, 1)
}

func TestAggregate_InvalidRecordsSkipped(t *testing.T) {
	positions := Aggregate([]*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
		makeTrade("AAPL", domain.Buy, 0, 10, 0),    // zero shares
		makeTrade("AAPL", domain.Buy, 100, -5, 0),  // negative price
		makeTrade("", domain.Buy, 100, 10, 0),      // missing ticker
	})
	require.Len(t, positions, 1)
	assert.InDelta(t, 100.0, positions[0].Shares, 1e-9)
	assert.InDelta(t, 1001.0, positions[0].CostBasis, 1e-9)
}

func TestAggregate_ExplicitCommissionRespected(t *testing.T) {
	positions := Aggregate([]*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 2.5),
	})
	require.Len(t, positions, 1)
	assert.InDelta(t, 1002.5, positions[0].CostBasis, 1e-9)
	assert.InDelta(t, 2.5, positions[0].TotalCommissions, 1e-9)
}

func TestAggregate_TickerNormalized(t *testing.T) {
	positions := Aggregate([]*domain.TradeEvent{
		makeTrade("aapl", domain.Buy, 10, 10, 0),
		makeTrade(" AAPL ", domain.Buy, 10, 10, 0),
	})
	require.Len(t, positions, 1)
	assert.Equal(t, "AAPL", positions[0].Ticker)
	assert.InDelta(t, 20.0, positions[0].Shares, 1e-9)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	trades := []*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
		makeTrade("AAPL", domain.Sell, 40, 12, 0),
		makeTrade("AAPL", domain.Buy, 20, 15, 0),
		makeTrade("TSLA", domain.Buy, 5, 200, 0),
		makeTrade("TSLA", domain.Sell, 5, 180, 0),
		makeTrade("NVDA", domain.Buy, 30, 50, 0),
	}
	want := Aggregate(trades)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]*domain.TradeEvent, len(trades))
		copy(shuffled, trades)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Aggregate(shuffled)
		require.Len(t, got, len(want))
		for j := range want {
			assert.Equal(t, want[j].Ticker, got[j].Ticker)
			assert.InDelta(t, want[j].Shares, got[j].Shares, 1e-9)
			assert.InDelta(t, want[j].AvgCostPerShare, got[j].AvgCostPerShare, 1e-9)
			assert.InDelta(t, want[j].CostBasis, got[j].CostBasis, 1e-9)
			assert.InDelta(t, want[j].BreakEvenPrice, got[j].BreakEvenPrice, 1e-9)
			assert.InDelta(t, want[j].RealizedPnL, got[j].RealizedPnL, 1e-9)
			assert.InDelta(t, want[j].TotalCommissions, got[j].TotalCommissions, 1e-9)
		}
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	trades := []*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
		makeTrade("AAPL", domain.Sell, 40, 12, 0),
	}
	first := Aggregate(trades)
	second := Aggregate(trades)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Ticker, second[i].Ticker)
		assert.Equal(t, first[i].Shares, second[i].Shares)
		assert.Equal(t, first[i].CostBasis, second[i].CostBasis)
		assert.Equal(t, first[i].RealizedPnL, second[i].RealizedPnL)
	}
}

func TestAggregate_BreakEvenIdentity(t *testing.T) {
	// Selling all remaining shares at break-even must net exactly the
	// cost basis after the sell commission.
	cases := [][]*domain.TradeEvent{
		{makeTrade("AAPL", domain.Buy, 100, 10, 0)},
		{makeTrade("AAPL", domain.Buy, 1000, 3.5, 0)},
		{
			makeTrade("AAPL", domain.Buy, 100, 10, 0),
			makeTrade("AAPL", domain.Sell, 40, 12, 0),
		},
		{
			makeTrade("AAPL", domain.Buy, 10, 99.99, 0),
			makeTrade("AAPL", domain.Buy, 5, 101.25, 0),
			makeTrade("AAPL", domain.Sell, 3, 105, 0),
		},
	}

	for _, trades := range cases {
		positions := Aggregate(trades)
		require.Len(t, positions, 1)
		pos := positions[0]
		if pos.Shares <= 0 {
			continue
		}
		netAtBreakEven := pos.BreakEvenPrice*pos.Shares - Commission(pos.Shares)
		assert.InDelta(t, pos.CostBasis, netAtBreakEven, 1e-6)
	}
}

func TestAggregate_RetroactiveRealizedPnL(t *testing.T) {
	// A buy after a sell shifts the blended average and therefore the
	// realized figures reported for the earlier sell. Deliberate policy.
	before := Aggregate([]*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
		makeTrade("AAPL", domain.Sell, 40, 12, 0),
	})
	after := Aggregate([]*domain.TradeEvent{
		makeTrade("AAPL", domain.Buy, 100, 10, 0),
		makeTrade("AAPL", domain.Sell, 40, 12, 0),
		makeTrade("AAPL", domain.Buy, 100, 20, 0),
	})
	require.Len(t, before, 1)
	require.Len(t, after, 1)
	assert.Greater(t, math.Abs(before[0].RealizedPnL-after[0].RealizedPnL), 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]*domain.TradeEvent{}))
}
