package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"StockSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Tickers listed in Errors fail; tickers in Responses return the canned
// payload; everything else gets a generated series around BasePrice.
type MockFetcher struct {
	BasePrice decimal.Decimal
	Responses map[string]*RawCandles
	Errors    map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(ctx context.Context, ticker string, from, to time.Time) (*RawCandles, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ticker)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTransport, err)
	}
	if err, ok := m.Errors[ticker]; ok {
		return nil, err
	}
	if raw, ok := m.Responses[ticker]; ok {
		return raw, nil
	}
	return generateMockCandles(m.BasePrice, from, to), nil
}

// Calls returns the tickers requested so far, in request order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func generateMockCandles(base decimal.Decimal, from, to time.Time) *RawCandles {
	if base.IsZero() {
		base = decimal.NewFromInt(100)
	}
	status := StatusOK
	raw := &RawCandles{Status: &status}
	step := base.Div(decimal.NewFromInt(1000))
	spread := base.Div(decimal.NewFromInt(200))
	i := int64(0)
	for d := model.Day(from); !d.After(model.Day(to)); d = d.AddDate(0, 0, 1) {
		mid := base.Add(step.Mul(decimal.NewFromInt(i)))
		raw.High = append(raw.High, decimal.NewNullDecimal(mid.Add(spread)))
		raw.Low = append(raw.Low, decimal.NewNullDecimal(mid.Sub(spread)))
		raw.Timestamps = append(raw.Timestamps, d.Unix())
		i++
	}
	return raw
}
