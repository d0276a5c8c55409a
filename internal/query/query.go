// Package query answers latest-condition lookups for interactive callers.
package query

import (
	"context"
	"fmt"

	"StockSentinel/internal/model"
)

// ConditionReader is the read side of the store used for lookups.
type ConditionReader interface {
	LatestCondition(ctx context.Context, ticker string) (*model.DailyCondition, bool, error)
}

// Service resolves ticker lookups against a ConditionReader.
type Service struct {
	reader ConditionReader
}

func NewService(reader ConditionReader) *Service {
	return &Service{reader: reader}
}

// LatestCondition returns the most recently analyzed condition for ticker.
// found is false when nothing has been recorded; that is not an error.
func (s *Service) LatestCondition(ctx context.Context, ticker string) (cond *model.DailyCondition, found bool, err error) {
	sym := model.NormalizeTicker(ticker)
	if sym == "" {
		return nil, false, nil
	}
	cond, found, err = s.reader.LatestCondition(ctx, sym)
	if err != nil {
		return nil, false, fmt.Errorf("latest condition %s: %w", sym, err)
	}
	return cond, found, nil
}
