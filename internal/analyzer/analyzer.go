// Package analyzer derives day-over-day movement conditions from stored
// observations.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// Store is what the analyzer reads from and appends to.
type Store interface {
	Tickers(ctx context.Context) ([]string, error)
	Observations(ctx context.Context, ticker string) ([]model.PriceObservation, error)
	AppendCondition(ctx context.Context, c *model.DailyCondition) error
}

// Analyzer computes one DailyCondition per ticker with enough history.
type Analyzer struct {
	store Store
	now   func() time.Time
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(store Store) *Analyzer {
	return &Analyzer{store: store, now: time.Now}
}

// Analyze walks every stored ticker. Tickers with fewer than two
// observations are skipped. All conditions from one pass share the same
// analysis time. Store errors abort the pass.
func (a *Analyzer) Analyze(ctx context.Context) ([]model.DailyCondition, error) {
	tickers, err := a.store.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}

	analyzedAt := a.now()
	var conds []model.DailyCondition
	for _, ticker := range tickers {
		obs, err := a.store.Observations(ctx, ticker)
		if err != nil {
			return conds, fmt.Errorf("load observations %s: %w", ticker, err)
		}

		c, err := Condition(ticker, obs, analyzedAt)
		if errors.Is(err, model.ErrInsufficientHistory) {
			log.Printf("[INFO] analyze %s: %d observation(s), skipping", ticker, len(obs))
			continue
		}
		if err != nil {
			return conds, fmt.Errorf("analyze %s: %w", ticker, err)
		}

		if err := a.store.AppendCondition(ctx, c); err != nil {
			return conds, fmt.Errorf("append condition %s: %w", ticker, err)
		}
		conds = append(conds, *c)
	}
	log.Printf("[INFO] analysis finished: %d conditions from %d tickers", len(conds), len(tickers))
	return conds, nil
}

// Condition classifies the last two observations of a date-ascending series.
func Condition(ticker string, obs []model.PriceObservation, analyzedAt time.Time) (*model.DailyCondition, error) {
	prev, cur, err := calculator.LatestChange(obs)
	if err != nil {
		return nil, err
	}
	return &model.DailyCondition{
		Ticker:        ticker,
		PreviousPrice: prev,
		CurrentPrice:  cur,
		Movement:      calculator.Classify(prev, cur),
		AnalyzedAt:    analyzedAt,
	}, nil
}
