package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"runtimetrade/internal/app"
	"runtimetrade/internal/domain"
	"runtimetrade/internal/ports"
)

type tradeRequest struct {
	Ticker     string  `json:"ticker"`
	Side       string  `json:"side"`
	Shares     float64 `json:"shares"`
	Price      float64 `json:"price"`
	Commission float64 `json:"commission"`
	Kind       string  `json:"kind"`
}

func (r tradeRequest) toInput() app.TradeInput {
	return app.TradeInput{
		Ticker:     r.Ticker,
		Side:       r.Side,
		Shares:     r.Shares,
		Price:      r.Price,
		Commission: r.Commission,
		Kind:       r.Kind,
	}
}

type cashRequest struct {
	Kind        string  `json:"kind"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := s.portfolio.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.portfolio.ListTrades(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if trades == nil {
		trades = []*domain.TradeEvent{}
	}
	s.writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("invalid request body: %w", ports.ErrInvalidRequest))
		return
	}
	trade, err := s.portfolio.AddTrade(r.Context(), req.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("invalid request body: %w", ports.ErrInvalidRequest))
		return
	}
	trade, err := s.portfolio.UpdateTrade(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.portfolio.DeleteTrade(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFillOrder(w http.ResponseWriter, r *http.Request) {
	trade, err := s.portfolio.FillOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleListCashEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.portfolio.ListCashEvents(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.CashEvent{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateCashEvent(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("invalid request body: %w", ports.ErrInvalidRequest))
		return
	}
	event, err := s.portfolio.AddCashEvent(r.Context(), app.CashInput{
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleDeleteCashEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.portfolio.DeleteCashEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetQuote proxies a lookup to the configured provider. Upstream
// failures degrade to a zero price so the dashboard keeps rendering.
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	quote, err := s.portfolio.GetQuote(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidRequest) {
			s.writeError(w, r, err)
			return
		}
		s.logger.Warn(r.Context(), "Quote lookup failed, returning zero price", map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		})
		quote = domain.Quote{Symbol: domain.NormalizeTicker(symbol)}
	}
	s.writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	target, err := strconv.ParseFloat(r.URL.Query().Get("target"), 64)
	if err != nil || target <= 0 {
		s.writeError(w, r, fmt.Errorf("target must be a positive number: %w", ports.ErrInvalidRequest))
		return
	}
	analysis, err := s.portfolio.Analysis(r.Context(), chi.URLParam(r, "ticker"), target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), err, "Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ports.ErrInvalidRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), err, "Request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
