package store

import (
	"context"
	"sort"
	"sync"

	"StockSentinel/internal/model"
)

// MemoryStore is a process-local Store used when SQLite is not configured.
// It follows the same per-day upsert and latest-condition rules.
type MemoryStore struct {
	mu           sync.RWMutex
	observations map[string]map[string]model.PriceObservation
	conditions   map[string][]model.DailyCondition
	runs         []model.RunRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		observations: make(map[string]map[string]model.PriceObservation),
		conditions:   make(map[string][]model.DailyCondition),
	}
}

func (m *MemoryStore) AppendObservations(ctx context.Context, ticker, _ string, obs []model.PriceObservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(obs) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	days, ok := m.observations[ticker]
	if !ok {
		days = make(map[string]model.PriceObservation)
		m.observations[ticker] = days
	}
	for _, o := range obs {
		o.Ticker = ticker
		o.Date = model.Day(o.Date)
		days[o.Date.Format(model.DateLayout)] = o
	}
	return nil
}

func (m *MemoryStore) Tickers(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.observations))
	for sym := range m.observations {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryStore) Observations(_ context.Context, ticker string) ([]model.PriceObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	days := m.observations[ticker]
	out := make([]model.PriceObservation, 0, len(days))
	for _, o := range days {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) AppendCondition(ctx context.Context, c *model.DailyCondition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conditions[c.Ticker] = append(m.conditions[c.Ticker], *c)
	return nil
}

func (m *MemoryStore) LatestCondition(_ context.Context, ticker string) (*model.DailyCondition, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conds := m.conditions[ticker]
	if len(conds) == 0 {
		return nil, false, nil
	}
	best := conds[0]
	for _, c := range conds[1:] {
		// later insertion wins ties, matching ORDER BY analyzed_at, id
		if !c.AnalyzedAt.Before(best.AnalyzedAt) {
			best = c
		}
	}
	return &best, true, nil
}

func (m *MemoryStore) RecordRun(_ context.Context, run *model.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *MemoryStore) LastRun(_ context.Context) (*model.RunRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.runs) == 0 {
		return nil, false, nil
	}
	best := m.runs[0]
	for _, r := range m.runs[1:] {
		if !r.StartedAt.Before(best.StartedAt) {
			best = r
		}
	}
	return &best, true, nil
}

func (m *MemoryStore) Close() error { return nil }
