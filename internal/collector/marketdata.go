package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockSentinel/internal/model"
)

// DefaultBaseURL is the marketdata.app stocks endpoint root.
const DefaultBaseURL = "https://api.marketdata.app/v1/stocks"

// maxBodyBytes caps how much of a candles reply is read.
var maxBodyBytes int64 = 32 << 20

// MarketDataFetcher implements Fetcher against the marketdata.app candles API.
type MarketDataFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewMarketDataFetcher creates a fetcher with optional proxy support.
// One client is shared by every request so connections are reused.
func NewMarketDataFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *MarketDataFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MarketDataFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *MarketDataFetcher) Name() string { return "marketdata" }

// CandlesURL builds the daily candles endpoint for ticker and range.
func (f *MarketDataFetcher) CandlesURL(ticker string, from, to time.Time) string {
	return fmt.Sprintf("%s/candles/D/%s/?from=%s&to=%s",
		f.BaseURL, url.PathEscape(ticker), from.Format(model.DateLayout), to.Format(model.DateLayout))
}

// FetchCandles performs a single GET with no retries. Network errors and
// non-2xx replies wrap model.ErrTransport; an undecodable body wraps
// model.ErrMalformedResponse.
func (f *MarketDataFetcher) FetchCandles(ctx context.Context, ticker string, from, to time.Time) (*RawCandles, error) {
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", model.ErrInvalidRequest)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from %s after to %s", model.ErrInvalidRequest,
			from.Format(model.DateLayout), to.Format(model.DateLayout))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.CandlesURL(ticker, from, to), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", model.ErrTransport, err)
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch candles %s: %w", model.ErrTransport, ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body %s: %w", model.ErrTransport, ticker, err)
	}
	if int64(len(body)) > maxBodyBytes {
		return nil, fmt.Errorf("%w: candles %s: body exceeds %d bytes", model.ErrMalformedResponse, ticker, maxBodyBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch candles %s: status %d, body: %s",
			model.ErrTransport, ticker, resp.StatusCode, truncate(body, 256))
	}

	var raw RawCandles
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode candles %s: %w", model.ErrMalformedResponse, ticker, err)
	}
	return &raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
