package domain

import "time"

// CashEvent is a deposit into or withdrawal from the account.
type CashEvent struct {
	ID          string    `json:"id"`          // Unique identifier (UUID, assigned at creation)
	UserID      string    `json:"userId"`      // Owner of the record
	Kind        CashKind  `json:"kind"`        // deposit or withdrawal
	Amount      float64   `json:"amount"`      // Positive amount
	Description string    `json:"description"` // Free-form note
	CreatedAt   time.Time `json:"createdAt"`   // Timestamp for history ordering
}

// Signed returns the amount with its cash-balance sign: deposits add,
// withdrawals subtract.
func (c *CashEvent) Signed() float64 {
	if c.Kind == Withdrawal {
		return -c.Amount
	}
	return c.Amount
}
