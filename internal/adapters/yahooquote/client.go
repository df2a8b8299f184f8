// Package yahooquote implements ports.QuoteProvider against the Yahoo
// Finance v8 chart endpoint, with a small TTL cache so the refresh job
// and quote proxy do not hammer the upstream.
package yahooquote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"runtimetrade/internal/domain"
	"runtimetrade/internal/ports"
)

const defaultBaseURL = "https://query2.finance.yahoo.com"

// Client implements the ports.QuoteProvider interface using the Yahoo
// Finance chart API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	ttl        time.Duration
	logger     ports.Logger

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

type cachedQuote struct {
	quote   domain.Quote
	fetched time.Time
}

// Config holds configuration specific to the Yahoo quote adapter.
type Config struct {
	Logger   ports.Logger
	Timeout  time.Duration // HTTP timeout (default 8s)
	CacheTTL time.Duration // Quote cache TTL (default 60s)
	BaseURL  string        // Override for tests
}

// New creates a new Yahoo quote adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Yahoo quote client")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		ttl:        ttl,
		logger:     cfg.Logger,
		cache:      make(map[string]cachedQuote),
	}, nil
}

// chartResponse mirrors the subset of the v8 chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// GetQuote retrieves the latest price observation for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	op := "GetQuote"
	symbol = domain.NormalizeTicker(symbol)
	if symbol == "" {
		return domain.Quote{}, fmt.Errorf("empty symbol: %w", ports.ErrInvalidRequest)
	}

	c.mu.RLock()
	if cached, ok := c.cache[symbol]; ok && time.Since(cached.fetched) < c.ttl {
		c.mu.RUnlock()
		return cached.quote, nil
	}
	c.mu.RUnlock()

	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Quote{Symbol: symbol}, fmt.Errorf("failed to build quote request for %s: %w", symbol, err)
	}
	req.Header.Set("User-Agent", "runtimetrade/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(ctx, op+": request failed", map[string]interface{}{"symbol": symbol, "error": err.Error()})
		return domain.Quote{Symbol: symbol}, fmt.Errorf("yahoo request for %s failed: %w", symbol, ports.ErrQuoteUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.Quote{Symbol: symbol}, fmt.Errorf("yahoo http %d for %s: %w", resp.StatusCode, symbol, ports.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn(ctx, op+": unexpected status", map[string]interface{}{"symbol": symbol, "status": resp.StatusCode})
		return domain.Quote{Symbol: symbol}, fmt.Errorf("yahoo http %d for %s: %w", resp.StatusCode, symbol, ports.ErrQuoteUnavailable)
	}

	var raw chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domain.Quote{Symbol: symbol}, fmt.Errorf("failed to decode quote response for %s: %w", symbol, err)
	}
	if len(raw.Chart.Result) == 0 {
		return domain.Quote{Symbol: symbol}, fmt.Errorf("no chart result for %s: %w", symbol, ports.ErrQuoteNotFound)
	}

	result := raw.Chart.Result[0]
	price := result.Meta.RegularMarketPrice
	asOf := time.Unix(result.Meta.RegularMarketTime, 0)

	// Fall back to the last non-zero close when meta is missing or stale.
	if (price <= 0 || result.Meta.RegularMarketTime == 0) &&
		len(result.Timestamp) > 0 &&
		len(result.Indicators.Quote) > 0 &&
		len(result.Indicators.Quote[0].Close) == len(result.Timestamp) {
		closes := result.Indicators.Quote[0].Close
		for i := len(result.Timestamp) - 1; i >= 0; i-- {
			if closes[i] > 0 {
				price = closes[i]
				asOf = time.Unix(result.Timestamp[i], 0)
				break
			}
		}
	}

	if price <= 0 {
		return domain.Quote{Symbol: symbol}, fmt.Errorf("no usable price for %s: %w", symbol, ports.ErrQuoteNotFound)
	}
	if asOf.IsZero() || asOf.Unix() <= 0 {
		asOf = time.Now()
	}

	quote := domain.Quote{Symbol: symbol, Price: price, Timestamp: asOf.UTC()}
	c.mu.Lock()
	c.cache[symbol] = cachedQuote{quote: quote, fetched: time.Now()}
	c.mu.Unlock()

	c.logger.Debug(ctx, op+": quote fetched", map[string]interface{}{"symbol": symbol, "price": price})
	return quote, nil
}
