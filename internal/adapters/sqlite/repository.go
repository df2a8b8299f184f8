package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"runtimetrade/internal/domain"
	"runtimetrade/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.TradeRepository and ports.CashEventRepository
// using SQLite. It is the durable trade/cash event store the engine
// recomputes from.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/runtimetrade.db"
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency between the API and the quote refresher.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite event store ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		ticker TEXT NOT NULL,
		side TEXT NOT NULL,
		shares REAL NOT NULL,
		price REAL NOT NULL,
		commission REAL NOT NULL,
		kind TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cash_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount REAL NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user_created ON trades (user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_cash_events_user_created ON cash_events (user_id, created_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- TradeRepository Implementation ---

// CreateTrade persists a new trade event.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.TradeEvent) error {
	const query = `
	INSERT INTO trades (id, user_id, ticker, side, shares, price, commission, kind, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.UserID, trade.Ticker, trade.Side, trade.Shares, trade.Price,
		trade.Commission, trade.Kind, trade.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trade %s for %s: %w", trade.ID, trade.Ticker, err)
	}
	r.logger.Debug(ctx, "Trade event created", map[string]interface{}{"tradeID": trade.ID, "ticker": trade.Ticker, "side": trade.Side})
	return nil
}

// UpdateTrade replaces the stored event with the given ID.
func (r *Repository) UpdateTrade(ctx context.Context, trade *domain.TradeEvent) error {
	const query = `
	UPDATE trades
	SET ticker = ?, side = ?, shares = ?, price = ?, commission = ?, kind = ?
	WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		trade.Ticker, trade.Side, trade.Shares, trade.Price, trade.Commission, trade.Kind,
		trade.ID, trade.UserID)
	if err != nil {
		return fmt.Errorf("failed to update trade %s: %w", trade.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for trade %s: %w", trade.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for update: %w", trade.ID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade event updated", map[string]interface{}{"tradeID": trade.ID, "kind": trade.Kind})
	return nil
}

// DeleteTrade removes the event with the given ID for the user.
func (r *Repository) DeleteTrade(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete trade %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade event deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// FindTradeByID retrieves a single event. Returns nil, nil when not found.
func (r *Repository) FindTradeByID(ctx context.Context, userID, id string) (*domain.TradeEvent, error) {
	const query = `
	SELECT id, user_id, ticker, side, shares, price, commission, kind, created_at
	FROM trades
	WHERE id = ? AND user_id = ?`

	row := r.db.QueryRowContext(ctx, query, id, userID)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query trade %s: %w", id, err)
	}
	return trade, nil
}

// ListTrades retrieves all trade events for a user ordered by creation time.
func (r *Repository) ListTrades(ctx context.Context, userID string) ([]*domain.TradeEvent, error) {
	const query = `
	SELECT id, user_id, ticker, side, shares, price, commission, kind, created_at
	FROM trades
	WHERE user_id = ?
	ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for user %s: %w", userID, err)
	}
	defer rows.Close()

	trades := make([]*domain.TradeEvent, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during ListTrades: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// --- CashEventRepository Implementation ---

// CreateCashEvent persists a new cash event.
func (r *Repository) CreateCashEvent(ctx context.Context, event *domain.CashEvent) error {
	const query = `
	INSERT INTO cash_events (id, user_id, kind, amount, description, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.UserID, event.Kind, event.Amount, event.Description, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cash event %s: %w", event.ID, err)
	}
	r.logger.Debug(ctx, "Cash event created", map[string]interface{}{"cashEventID": event.ID, "kind": event.Kind, "amount": event.Amount})
	return nil
}

// DeleteCashEvent removes the event with the given ID for the user.
func (r *Repository) DeleteCashEvent(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cash_events WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cash event %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete cash event %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("cash event %s not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Cash event deleted", map[string]interface{}{"cashEventID": id})
	return nil
}

// ListCashEvents retrieves all cash events for a user ordered by creation time.
func (r *Repository) ListCashEvents(ctx context.Context, userID string) ([]*domain.CashEvent, error) {
	const query = `
	SELECT id, user_id, kind, amount, description, created_at
	FROM cash_events
	WHERE user_id = ?
	ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash events for user %s: %w", userID, err)
	}
	defer rows.Close()

	events := make([]*domain.CashEvent, 0)
	for rows.Next() {
		event, err := scanCashEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash event during ListCashEvents: %w", err)
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash event rows: %w", err)
	}
	return events, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(s scanner) (*domain.TradeEvent, error) {
	t := &domain.TradeEvent{}
	var side, kind string
	err := s.Scan(&t.ID, &t.UserID, &t.Ticker, &side, &t.Shares, &t.Price, &t.Commission, &kind, &t.CreatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Side = domain.Side(side)
	t.Kind = domain.EventKind(kind)
	return t, nil
}

func scanCashEvent(s scanner) (*domain.CashEvent, error) {
	c := &domain.CashEvent{}
	var kind string
	err := s.Scan(&c.ID, &c.UserID, &kind, &c.Amount, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Kind = domain.CashKind(kind)
	return c, nil
}
