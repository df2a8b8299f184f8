package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"runtimetrade/config"
	"runtimetrade/internal/domain"
	"runtimetrade/internal/portfolio"
	"runtimetrade/internal/ports"
)

// PortfolioService orchestrates the dashboard: it validates and persists
// trade/cash events through the store, keeps a price cache fed by the
// quote provider, and derives positions and summaries on demand. The
// durable state is only the event lists; every read recomputes positions
// from scratch rather than patching them incrementally.
type PortfolioService struct {
	cfg    *config.Config
	logger ports.Logger
	trades ports.TradeRepository
	cash   ports.CashEventRepository
	quotes ports.QuoteProvider
	cron   *cron.Cron

	// The price cache is the only mutable state. Quote refreshes and
	// reads race harmlessly: a stale or zero price just means "unknown"
	// until the next tick.
	mu     sync.RWMutex
	prices map[string]float64
}

// NewPortfolioService creates a new application service instance.
func NewPortfolioService(
	cfg *config.Config,
	logger ports.Logger,
	trades ports.TradeRepository,
	cash ports.CashEventRepository,
	quotes ports.QuoteProvider,
) (*PortfolioService, error) {
	if cfg == nil || logger == nil || trades == nil || cash == nil || quotes == nil {
		return nil, fmt.Errorf("missing required dependencies for PortfolioService")
	}
	if cfg.QuoteRefreshInterval <= 0 {
		return nil, fmt.Errorf("configuration QuoteRefreshInterval must be positive")
	}
	return &PortfolioService{
		cfg:    cfg,
		logger: logger,
		trades: trades,
		cash:   cash,
		quotes: quotes,
		cron:   cron.New(),
		prices: make(map[string]float64),
	}, nil
}

// Start schedules the periodic quote refresh and primes the price cache.
func (s *PortfolioService) Start(ctx context.Context) error {
	spec := "@every " + s.cfg.QuoteRefreshInterval.String()
	_, err := s.cron.AddFunc(spec, func() {
		s.RefreshQuotes(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule quote refresh (%s): %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info(ctx, "Quote refresh scheduled", map[string]interface{}{"interval": s.cfg.QuoteRefreshInterval.String()})

	// Prime the cache without blocking startup.
	go s.RefreshQuotes(ctx)
	return nil
}

// Stop halts the quote refresh schedule.
func (s *PortfolioService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info(context.Background(), "Quote refresh stopped")
}

// --- Trade Mutations ---

// TradeInput carries raw, unvalidated trade fields from the presentation
// layer. The service normalizes it into a domain.TradeEvent at this
// boundary so the engine can assume fully populated records.
type TradeInput struct {
	Ticker     string
	Side       string
	Shares     float64
	Price      float64
	Commission float64 // <= 0 means "derive from the commission model"
	Kind       string  // "trade" (default) or "order"
}

func (s *PortfolioService) normalizeTrade(in TradeInput) (*domain.TradeEvent, error) {
	ticker := domain.NormalizeTicker(in.Ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", ports.ErrInvalidRequest)
	}
	side, ok := domain.ParseSide(in.Side)
	if !ok {
		return nil, fmt.Errorf("side must be 'buy' or 'sell', got %q: %w", in.Side, ports.ErrInvalidRequest)
	}
	kind, ok := domain.ParseEventKind(in.Kind)
	if !ok {
		return nil, fmt.Errorf("kind must be 'trade' or 'order', got %q: %w", in.Kind, ports.ErrInvalidRequest)
	}
	if in.Shares <= 0 {
		return nil, fmt.Errorf("shares must be positive: %w", ports.ErrInvalidRequest)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", ports.ErrInvalidRequest)
	}
	commission := in.Commission
	if commission <= 0 {
		commission = portfolio.Commission(in.Shares)
	}
	return &domain.TradeEvent{
		ID:         uuid.NewString(),
		UserID:     s.cfg.UserID,
		Ticker:     ticker,
		Side:       side,
		Shares:     in.Shares,
		Price:      in.Price,
		Commission: commission,
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// AddTrade validates, normalizes and persists a new trade or pending order.
func (s *PortfolioService) AddTrade(ctx context.Context, in TradeInput) (*domain.TradeEvent, error) {
	op := "AddTrade"
	trade, err := s.normalizeTrade(in)
	if err != nil {
		return nil, err
	}
	if err := s.trades.CreateTrade(ctx, trade); err != nil {
		s.logger.Error(ctx, err, op+": failed to persist trade", map[string]interface{}{"ticker": trade.Ticker})
		return nil, err
	}
	s.logger.Info(ctx, op+": trade recorded", map[string]interface{}{
		"tradeID": trade.ID,
		"ticker":  trade.Ticker,
		"side":    trade.Side,
		"shares":  trade.Shares,
		"price":   trade.Price,
		"kind":    trade.Kind,
	})
	return trade, nil
}

// UpdateTrade replaces the fields of an existing event with newly
// normalized input. The ID and creation time are preserved.
func (s *PortfolioService) UpdateTrade(ctx context.Context, id string, in TradeInput) (*domain.TradeEvent, error) {
	existing, err := s.trades.FindTradeByID(ctx, s.cfg.UserID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("trade %s: %w", id, ports.ErrNotFound)
	}
	updated, err := s.normalizeTrade(in)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.trades.UpdateTrade(ctx, updated); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Trade updated", map[string]interface{}{"tradeID": id})
	return updated, nil
}

// DeleteTrade removes a trade or pending order.
func (s *PortfolioService) DeleteTrade(ctx context.Context, id string) error {
	if err := s.trades.DeleteTrade(ctx, s.cfg.UserID, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// FillOrder converts a pending order into an executed trade, which pulls
// it into aggregation and cash flow on the next recompute.
func (s *PortfolioService) FillOrder(ctx context.Context, id string) (*domain.TradeEvent, error) {
	existing, err := s.trades.FindTradeByID(ctx, s.cfg.UserID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("order %s: %w", id, ports.ErrNotFound)
	}
	if existing.Kind != domain.KindOrder {
		return nil, fmt.Errorf("trade %s is not a pending order: %w", id, ports.ErrInvalidRequest)
	}
	existing.Kind = domain.KindTrade
	if err := s.trades.UpdateTrade(ctx, existing); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Order filled", map[string]interface{}{"tradeID": id, "ticker": existing.Ticker})
	return existing, nil
}

// --- Cash Mutations ---

// CashInput carries raw cash event fields from the presentation layer.
type CashInput struct {
	Kind        string // "deposit" or "withdrawal"
	Amount      float64
	Description string
}

// AddCashEvent validates and persists a deposit or withdrawal.
func (s *PortfolioService) AddCashEvent(ctx context.Context, in CashInput) (*domain.CashEvent, error) {
	kind, ok := domain.ParseCashKind(in.Kind)
	if !ok {
		return nil, fmt.Errorf("kind must be 'deposit' or 'withdrawal', got %q: %w", in.Kind, ports.ErrInvalidRequest)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", ports.ErrInvalidRequest)
	}
	event := &domain.CashEvent{
		ID:          uuid.NewString(),
		UserID:      s.cfg.UserID,
		Kind:        kind,
		Amount:      in.Amount,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.cash.CreateCashEvent(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Cash event recorded", map[string]interface{}{"cashEventID": event.ID, "kind": kind, "amount": in.Amount})
	return event, nil
}

// DeleteCashEvent removes a deposit or withdrawal.
func (s *PortfolioService) DeleteCashEvent(ctx context.Context, id string) error {
	return s.cash.DeleteCashEvent(ctx, s.cfg.UserID, id)
}

// --- Reads ---

// ListTrades returns all trade events, oldest first.
func (s *PortfolioService) ListTrades(ctx context.Context) ([]*domain.TradeEvent, error) {
	return s.trades.ListTrades(ctx, s.cfg.UserID)
}

// ListCashEvents returns all cash events, oldest first.
func (s *PortfolioService) ListCashEvents(ctx context.Context) ([]*domain.CashEvent, error) {
	return s.cash.ListCashEvents(ctx, s.cfg.UserID)
}

// Snapshot is the full derived dashboard state for one user.
type Snapshot struct {
	Positions     []*domain.LivePosition   `json:"positions"` // open positions only
	PendingOrders []*domain.TradeEvent     `json:"pendingOrders"`
	Trades        []*domain.TradeEvent     `json:"trades"`
	CashEvents    []*domain.CashEvent      `json:"cashEvents"`
	Summary       *domain.PortfolioSummary `json:"summary"`
}

// Snapshot recomputes the whole derived state from the stored events and
// the current price cache.
func (s *PortfolioService) Snapshot(ctx context.Context) (*Snapshot, error) {
	trades, err := s.trades.ListTrades(ctx, s.cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	cashEvents, err := s.cash.ListCashEvents(ctx, s.cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash events: %w", err)
	}

	positions := portfolio.Aggregate(trades)
	live := make([]*domain.LivePosition, 0, len(positions))
	open := make([]*domain.LivePosition, 0, len(positions))
	for _, pos := range positions {
		lp := portfolio.WithPrice(pos, s.CurrentPrice(pos.Ticker))
		live = append(live, lp)
		if lp.IsOpen() {
			open = append(open, lp)
		}
	}

	pending := make([]*domain.TradeEvent, 0)
	for _, t := range trades {
		if t.Kind == domain.KindOrder {
			pending = append(pending, t)
		}
	}

	return &Snapshot{
		Positions:     open,
		PendingOrders: pending,
		Trades:        trades,
		CashEvents:    cashEvents,
		Summary:       portfolio.Summarize(live, cashEvents, trades),
	}, nil
}

// Analysis evaluates a hypothetical full exit of an open position at the
// given target price.
func (s *PortfolioService) Analysis(ctx context.Context, ticker string, targetPrice float64) (*portfolio.ProfitAnalysis, error) {
	ticker = domain.NormalizeTicker(ticker)
	trades, err := s.trades.ListTrades(ctx, s.cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	for _, pos := range portfolio.Aggregate(trades) {
		if pos.Ticker == ticker && pos.IsOpen() {
			a := portfolio.AnalyzeProfit(pos.Shares, pos.AvgCostPerShare, targetPrice)
			return &a, nil
		}
	}
	return nil, fmt.Errorf("no open position for %s: %w", ticker, ports.ErrNotFound)
}

// --- Quotes ---

// GetQuote proxies a single quote lookup to the provider.
func (s *PortfolioService) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	return s.quotes.GetQuote(ctx, symbol)
}

// CurrentPrice returns the cached price for a ticker, 0 when unknown.
func (s *PortfolioService) CurrentPrice(ticker string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices[domain.NormalizeTicker(ticker)]
}

// RefreshQuotes fetches fresh prices for every ticker with an open
// position. A failed lookup records price 0 ("unknown") so downstream
// metrics zero out instead of showing phantom values; it never aborts
// the refresh of the remaining tickers.
func (s *PortfolioService) RefreshQuotes(ctx context.Context) {
	op := "RefreshQuotes"
	trades, err := s.trades.ListTrades(ctx, s.cfg.UserID)
	if err != nil {
		s.logger.Error(ctx, err, op+": failed to load trades, keeping previous prices")
		return
	}

	for _, pos := range portfolio.Aggregate(trades) {
		if !pos.IsOpen() {
			continue
		}
		quote, err := s.quotes.GetQuote(ctx, pos.Ticker)
		if err != nil || quote.Price <= 0 {
			s.logger.Warn(ctx, op+": quote unavailable, price marked unknown", map[string]interface{}{
				"ticker": pos.Ticker,
				"error":  fmt.Sprintf("%v", err),
			})
			s.setPrice(pos.Ticker, 0)
			continue
		}
		s.setPrice(pos.Ticker, quote.Price)
		s.logger.Debug(ctx, op+": price updated", map[string]interface{}{"ticker": pos.Ticker, "price": quote.Price})
	}
}

func (s *PortfolioService) setPrice(ticker string, price float64) {
	s.mu.Lock()
	s.prices[ticker] = price
	s.mu.Unlock()
}
