package ports

import (
	"context"

	"runtimetrade/internal/domain"
)

// QuoteProvider defines the interface for a best-effort external quote
// source. A returned error (or a zero price) means the price is unknown;
// callers must treat unknown as "no information", never as "worthless".
type QuoteProvider interface {
	// GetQuote retrieves the latest price observation for a symbol.
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
}
