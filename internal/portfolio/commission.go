// Package portfolio implements the position aggregation and P&L engine:
// pure, synchronous functions that fold trade events into per-ticker
// positions, re-price them against live quotes, and reduce the result
// into portfolio-level totals. Nothing here performs I/O or holds state;
// callers keep only the event lists as durable state and recompute from
// scratch on every change.
package portfolio

// IBKR Pro fixed commission structure: $0.005 per share, $1 minimum.
const (
	CommissionPerShare = 0.005
	CommissionMin      = 1.0
)

// Commission returns the commission charged for trading the given number
// of shares. It is the single source of truth for both defaulting a
// missing commission on a recorded trade and for break-even and
// hypothetical-sell math. Total for all shares >= 0; for zero shares it
// returns the minimum, so callers should not invoke it where a zero-share
// charge is meaningless.
func Commission(shares float64) float64 {
	c := shares * CommissionPerShare
	if c < CommissionMin {
		return CommissionMin
	}
	return c
}
