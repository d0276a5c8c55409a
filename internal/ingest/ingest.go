// Package ingest drives the per-ticker fetch, normalize and store sequence
// for one batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/model"
	"StockSentinel/internal/pacer"
)

// ObservationWriter is the slice of the store the ingestor writes to.
type ObservationWriter interface {
	AppendObservations(ctx context.Context, ticker, runID string, obs []model.PriceObservation) error
}

// Config tunes a batch. Workers <= 1 processes tickers strictly in order.
type Config struct {
	Workers      int
	FetchTimeout time.Duration
	MaxRetries   int
}

// Ingestor runs batches. Every fetch attempt, retries included, waits on the
// shared pacer first, so request starts stay spaced regardless of Workers.
type Ingestor struct {
	fetcher collector.Fetcher
	store   ObservationWriter
	pacer   *pacer.Pacer
	cfg     Config
}

// NewIngestor creates an Ingestor.
func NewIngestor(fetcher collector.Fetcher, store ObservationWriter, p *pacer.Pacer, cfg Config) *Ingestor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if p == nil {
		p = pacer.New(0)
	}
	return &Ingestor{fetcher: fetcher, store: store, pacer: p, cfg: cfg}
}

// Run ingests every ticker and returns once each has reached a terminal
// outcome. A failing ticker is logged and skipped; it never aborts the batch.
func (in *Ingestor) Run(ctx context.Context, tickers []string, from, to time.Time) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		From:      from,
		To:        to,
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome, len(tickers)),
	}
	log.Printf("[INFO] ingestion run %s: %d tickers, %s..%s, workers=%d, pacing=%v",
		report.RunID, len(tickers), from.Format(model.DateLayout), to.Format(model.DateLayout),
		in.cfg.Workers, in.pacer.Interval())

	var g errgroup.Group
	g.SetLimit(in.cfg.Workers)
	for i, ticker := range tickers {
		g.Go(func() error {
			report.Outcomes[i] = in.process(ctx, report.RunID, ticker, from, to)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = time.Now()
	log.Printf("[INFO] ingestion run %s finished: %d stored, %d skipped in %v",
		report.RunID, report.Stored(), report.Skipped(), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report
}

func (in *Ingestor) process(ctx context.Context, runID, ticker string, from, to time.Time) Outcome {
	out := Outcome{Ticker: ticker, Status: StatusSkipped}

	raw, attempts, err := in.fetch(ctx, ticker, from, to)
	out.Attempts = attempts
	if err != nil {
		out.Err = err
		log.Printf("[WARN] skip %s: %v", ticker, err)
		return out
	}

	obs, err := collector.Normalize(ticker, raw, from)
	if err != nil {
		out.Err = err
		log.Printf("[WARN] skip %s: %v", ticker, err)
		return out
	}

	if err := in.store.AppendObservations(ctx, ticker, runID, obs); err != nil {
		out.Err = fmt.Errorf("store observations: %w", err)
		log.Printf("[ERROR] skip %s: %v", ticker, out.Err)
		return out
	}

	last := obs[len(obs)-1]
	out.Status = StatusStored
	out.Observations = len(obs)
	out.LatestDate = last.Date
	out.LatestMid = calculator.ObservationMid(last)
	log.Printf("[INFO] %s: %s, %s (%d candles)", ticker, last.Date.Format(model.DateLayout), out.LatestMid, len(obs))
	return out
}

// fetch calls the fetcher, retrying transport failures up to MaxRetries.
func (in *Ingestor) fetch(ctx context.Context, ticker string, from, to time.Time) (*collector.RawCandles, int, error) {
	for attempt := 1; ; attempt++ {
		if err := in.pacer.Wait(ctx); err != nil {
			return nil, attempt - 1, fmt.Errorf("%w: wait for pacer: %w", model.ErrTransport, err)
		}

		fctx, cancel := ctx, context.CancelFunc(func() {})
		if in.cfg.FetchTimeout > 0 {
			fctx, cancel = context.WithTimeout(ctx, in.cfg.FetchTimeout)
		}
		raw, err := in.fetcher.FetchCandles(fctx, ticker, from, to)
		cancel()
		if err == nil {
			return raw, attempt, nil
		}
		if !errors.Is(err, model.ErrTransport) || attempt > in.cfg.MaxRetries || ctx.Err() != nil {
			return nil, attempt, err
		}
		log.Printf("[WARN] fetch %s failed (attempt %d/%d): %v, retrying", ticker, attempt, in.cfg.MaxRetries+1, err)
	}
}
