package collector

import (
	"context"
	"time"
)

// Fetcher retrieves raw daily candles for one ticker over a date range.
type Fetcher interface {
	FetchCandles(ctx context.Context, ticker string, from, to time.Time) (*RawCandles, error)
	Name() string
}
