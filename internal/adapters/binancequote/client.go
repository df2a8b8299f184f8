// Package binancequote implements ports.QuoteProvider against the Binance
// spot API, for portfolios holding crypto tickers (e.g., "BTCUSDT").
// Only the public price endpoint is used; no API keys are required.
package binancequote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"runtimetrade/internal/domain"
	"runtimetrade/internal/ports"
)

// Client implements the ports.QuoteProvider interface using go-binance.
type Client struct {
	spot   *binance.Client
	logger ports.Logger
}

// Config holds configuration specific to the Binance quote adapter.
type Config struct {
	Logger ports.Logger
}

// New creates a new Binance quote adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance quote client")
	}
	// Public endpoints only; empty credentials are fine.
	return &Client{
		spot:   binance.NewClient("", ""),
		logger: cfg.Logger,
	}, nil
}

// GetQuote retrieves the latest spot price for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	op := "GetQuote"
	symbol = domain.NormalizeTicker(symbol)

	prices, err := c.spot.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return domain.Quote{Symbol: symbol}, c.handleError(ctx, err, op, symbol)
	}
	if len(prices) == 0 {
		err := fmt.Errorf("no price data returned for symbol %s: %w", symbol, ports.ErrQuoteNotFound)
		c.logger.Warn(ctx, op+": empty price response", map[string]interface{}{"symbol": symbol})
		return domain.Quote{Symbol: symbol}, err
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s' for %s: %w", prices[0].Price, symbol, err)
		c.logger.Error(ctx, parseErr, op+": parse failure", map[string]interface{}{"symbol": symbol})
		return domain.Quote{Symbol: symbol}, parseErr
	}

	return domain.Quote{
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}, nil
}

// handleError maps go-binance API errors onto the standard port errors.
func (c *Client) handleError(ctx context.Context, err error, op, symbol string) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		c.logger.Warn(ctx, op+": Binance API error", map[string]interface{}{
			"symbol": symbol,
			"code":   apiErr.Code,
			"msg":    apiErr.Message,
		})
		switch apiErr.Code {
		case -1121: // invalid symbol
			return fmt.Errorf("binance: %s: %w", apiErr.Message, ports.ErrQuoteNotFound)
		case -1003: // too many requests
			return fmt.Errorf("binance: %s: %w", apiErr.Message, ports.ErrRateLimited)
		default:
			return fmt.Errorf("binance: %s: %w", apiErr.Message, ports.ErrQuoteUnavailable)
		}
	}
	c.logger.Warn(ctx, op+": request failed", map[string]interface{}{"symbol": symbol, "error": err.Error()})
	return fmt.Errorf("binance request for %s failed: %w", symbol, ports.ErrQuoteUnavailable)
}
