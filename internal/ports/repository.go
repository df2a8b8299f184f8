package ports

import (
	"context"

	"runtimetrade/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving trade
// events. The engine only ever consumes the full snapshot returned by
// ListByUser and re-derives positions from scratch.
type TradeRepository interface {
	// CreateTrade persists a new trade event.
	CreateTrade(ctx context.Context, trade *domain.TradeEvent) error
	// UpdateTrade replaces the stored event with the given ID.
	// Returns ErrNotFound if no such event exists.
	UpdateTrade(ctx context.Context, trade *domain.TradeEvent) error
	// DeleteTrade removes the event with the given ID for the user.
	// Returns ErrNotFound if no such event exists.
	DeleteTrade(ctx context.Context, userID, id string) error
	// FindTradeByID retrieves a single event. Returns nil, nil when not found.
	FindTradeByID(ctx context.Context, userID, id string) (*domain.TradeEvent, error)
	// ListTrades retrieves all trade events for a user ordered by creation time.
	ListTrades(ctx context.Context, userID string) ([]*domain.TradeEvent, error)
}

// CashEventRepository defines the interface for storing and retrieving
// deposits and withdrawals.
type CashEventRepository interface {
	// CreateCashEvent persists a new cash event.
	CreateCashEvent(ctx context.Context, event *domain.CashEvent) error
	// DeleteCashEvent removes the event with the given ID for the user.
	// Returns ErrNotFound if no such event exists.
	DeleteCashEvent(ctx context.Context, userID, id string) error
	// ListCashEvents retrieves all cash events for a user ordered by creation time.
	ListCashEvents(ctx context.Context, userID string) ([]*domain.CashEvent, error)
}
