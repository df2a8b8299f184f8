// Package server exposes the portfolio dashboard over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"runtimetrade/config"
	"runtimetrade/internal/app"
	"runtimetrade/internal/domain"
	"runtimetrade/internal/portfolio"
	"runtimetrade/internal/ports"
)

// Portfolio is the application surface the HTTP layer depends on.
type Portfolio interface {
	AddTrade(ctx context.Context, in app.TradeInput) (*domain.TradeEvent, error)
	UpdateTrade(ctx context.Context, id string, in app.TradeInput) (*domain.TradeEvent, error)
	DeleteTrade(ctx context.Context, id string) error
	FillOrder(ctx context.Context, id string) (*domain.TradeEvent, error)
	AddCashEvent(ctx context.Context, in app.CashInput) (*domain.CashEvent, error)
	DeleteCashEvent(ctx context.Context, id string) error
	ListTrades(ctx context.Context) ([]*domain.TradeEvent, error)
	ListCashEvents(ctx context.Context) ([]*domain.CashEvent, error)
	Snapshot(ctx context.Context) (*app.Snapshot, error)
	Analysis(ctx context.Context, ticker string, targetPrice float64) (*portfolio.ProfitAnalysis, error)
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
}

// Server wraps the chi router and the underlying http.Server.
type Server struct {
	cfg       *config.Config
	logger    ports.Logger
	portfolio Portfolio
	router    chi.Router
	http      *http.Server
}

// New builds the router with middleware and routes registered.
func New(cfg *config.Config, logger ports.Logger, p Portfolio) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		portfolio: p,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.http = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/portfolio", s.handleGetPortfolio)

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", s.handleListTrades)
			r.Post("/", s.handleCreateTrade)
			r.Put("/{id}", s.handleUpdateTrade)
			r.Delete("/{id}", s.handleDeleteTrade)
			r.Post("/{id}/fill", s.handleFillOrder)
		})

		r.Route("/cash", func(r chi.Router) {
			r.Get("/", s.handleListCashEvents)
			r.Post("/", s.handleCreateCashEvent)
			r.Delete("/{id}", s.handleDeleteCashEvent)
		})

		r.Get("/quote/{symbol}", s.handleGetQuote)
		r.Get("/positions/{ticker}/analysis", s.handleAnalysis)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "HTTP request", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called; a clean shutdown returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": s.cfg.HTTPAddr})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
