package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runtimetrade/config"
	"runtimetrade/internal/app"
	"runtimetrade/internal/domain"
	"runtimetrade/internal/portfolio"
	"runtimetrade/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// stubPortfolio returns canned values per method so handler behavior can
// be tested without the real service.
type stubPortfolio struct {
	trade    *domain.TradeEvent
	cash     *domain.CashEvent
	snapshot *app.Snapshot
	analysis *portfolio.ProfitAnalysis
	quote    domain.Quote
	quoteErr error
	err      error

	lastTradeInput app.TradeInput
	lastID         string
}

func (s *stubPortfolio) AddTrade(ctx context.Context, in app.TradeInput) (*domain.TradeEvent, error) {
	s.lastTradeInput = in
	return s.trade, s.err
}

func (s *stubPortfolio) UpdateTrade(ctx context.Context, id string, in app.TradeInput) (*domain.TradeEvent, error) {
	s.lastID = id
	s.lastTradeInput = in
	return s.trade, s.err
}

func (s *stubPortfolio) DeleteTrade(ctx context.Context, id string) error {
	s.lastID = id
	return s.err
}

func (s *stubPortfolio) FillOrder(ctx context.Context, id string) (*domain.TradeEvent, error) {
	s.lastID = id
	return s.trade, s.err
}

func (s *stubPortfolio) AddCashEvent(ctx context.Context, in app.CashInput) (*domain.CashEvent, error) {
	return s.cash, s.err
}

func (s *stubPortfolio) DeleteCashEvent(ctx context.Context, id string) error {
	s.lastID = id
	return s.err
}

func (s *stubPortfolio) ListTrades(ctx context.Context) ([]*domain.TradeEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.trade == nil {
		return nil, nil
	}
	return []*domain.TradeEvent{s.trade}, nil
}

func (s *stubPortfolio) ListCashEvents(ctx context.Context) ([]*domain.CashEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func (s *stubPortfolio) Snapshot(ctx context.Context) (*app.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubPortfolio) Analysis(ctx context.Context, ticker string, targetPrice float64) (*portfolio.ProfitAnalysis, error) {
	return s.analysis, s.err
}

func (s *stubPortfolio) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	return s.quote, s.quoteErr
}

func newTestServer(stub *stubPortfolio) *Server {
	return New(&config.Config{HTTPAddr: ":0"}, &mockLogger{}, stub)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubPortfolio{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateTrade(t *testing.T) {
	stub := &stubPortfolio{trade: &domain.TradeEvent{ID: "t1", Ticker: "AAPL", Side: domain.Buy, Shares: 100, Price: 10}}
	rec := doRequest(t, newTestServer(stub), http.MethodPost, "/api/trades", map[string]interface{}{
		"ticker": "AAPL",
		"side":   "buy",
		"shares": 100,
		"price":  10,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "AAPL", stub.lastTradeInput.Ticker)
	assert.Equal(t, 100.0, stub.lastTradeInput.Shares)

	var got domain.TradeEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "t1", got.ID)
}

func TestCreateTrade_BadJSON(t *testing.T) {
	s := newTestServer(&stubPortfolio{})
	req := httptest.NewRequest(http.MethodPost, "/api/trades", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: fmt.Errorf("trade x: %w", ports.ErrNotFound), want: http.StatusNotFound},
		{name: "invalid", err: fmt.Errorf("bad side: %w", ports.ErrInvalidRequest), want: http.StatusBadRequest},
		{name: "internal", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPortfolio{err: tt.err}
			rec := doRequest(t, newTestServer(stub), http.MethodPost, "/api/trades/t9/fill", nil)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUpdateAndDeleteTrade(t *testing.T) {
	stub := &stubPortfolio{trade: &domain.TradeEvent{ID: "t1"}}
	s := newTestServer(stub)

	rec := doRequest(t, s, http.MethodPut, "/api/trades/t1", map[string]interface{}{
		"ticker": "AAPL", "side": "buy", "shares": 50, "price": 11,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", stub.lastID)

	rec = doRequest(t, s, http.MethodDelete, "/api/trades/t1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListTrades_EmptyIsArray(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubPortfolio{}), http.MethodGet, "/api/trades", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetPortfolio(t *testing.T) {
	stub := &stubPortfolio{snapshot: &app.Snapshot{
		Positions: []*domain.LivePosition{
			{Position: domain.Position{Ticker: "AAPL", Shares: 60}, CurrentPrice: 12, MarketValue: 720},
		},
		Summary: &domain.PortfolioSummary{NetLiquidationValue: 1198, CashBalance: 478, PositionCount: 1},
	}}
	rec := doRequest(t, newTestServer(stub), http.MethodGet, "/api/portfolio", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, "positions")
	assert.Contains(t, got, "summary")

	// Embedded position fields must flatten into each live position.
	var positions []map[string]interface{}
	require.NoError(t, json.Unmarshal(got["positions"], &positions))
	require.Len(t, positions, 1)
	assert.Equal(t, "AAPL", positions[0]["ticker"])
	assert.Equal(t, 720.0, positions[0]["marketValue"])
}

func TestCreateCashEvent(t *testing.T) {
	stub := &stubPortfolio{cash: &domain.CashEvent{ID: "c1", Kind: domain.Deposit, Amount: 1000}}
	rec := doRequest(t, newTestServer(stub), http.MethodPost, "/api/cash", map[string]interface{}{
		"kind": "deposit", "amount": 1000,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deposit"`)
}

func TestGetQuote_UpstreamFailureDegradesToZero(t *testing.T) {
	stub := &stubPortfolio{quoteErr: ports.ErrQuoteUnavailable}
	rec := doRequest(t, newTestServer(stub), http.MethodGet, "/api/quote/AAPL", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got domain.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Zero(t, got.Price)
}

func TestGetQuote_Success(t *testing.T) {
	stub := &stubPortfolio{quote: domain.Quote{Symbol: "AAPL", Price: 189.5, Timestamp: time.Now().UTC()}}
	rec := doRequest(t, newTestServer(stub), http.MethodGet, "/api/quote/AAPL", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "189.5")
}

func TestAnalysis(t *testing.T) {
	stub := &stubPortfolio{analysis: &portfolio.ProfitAnalysis{Shares: 100, TargetPrice: 12, NetPnL: 197}}
	s := newTestServer(stub)

	rec := doRequest(t, s, http.MethodGet, "/api/positions/AAPL/analysis?target=12", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"netPnL":197`)

	rec = doRequest(t, s, http.MethodGet, "/api/positions/AAPL/analysis", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/positions/AAPL/analysis?target=-3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
