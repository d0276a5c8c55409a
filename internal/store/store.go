// Package store persists price observations, daily conditions and
// ingestion run summaries.
package store

import (
	"context"

	"StockSentinel/internal/model"
)

// Store is the durable owner of observations and conditions. Each method is
// an independent unit of work; AppendObservations is atomic per ticker.
type Store interface {
	// AppendObservations upserts one ticker's observations keyed by
	// (ticker, date). A later write for the same day replaces the earlier one.
	AppendObservations(ctx context.Context, ticker, runID string, obs []model.PriceObservation) error
	// Tickers lists every symbol with at least one observation, sorted.
	Tickers(ctx context.Context) ([]string, error)
	// Observations returns a ticker's observations ordered by date ascending.
	Observations(ctx context.Context, ticker string) ([]model.PriceObservation, error)
	AppendCondition(ctx context.Context, c *model.DailyCondition) error
	// LatestCondition returns the record with the greatest analysis time.
	// The bool is false when the ticker has no condition records.
	LatestCondition(ctx context.Context, ticker string) (*model.DailyCondition, bool, error)
	RecordRun(ctx context.Context, run *model.RunRecord) error
	LastRun(ctx context.Context) (*model.RunRecord, bool, error)
	Close() error
}
