package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"StockSentinel/internal/analyzer"
	"StockSentinel/internal/ingest"
	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/query"
	"StockSentinel/internal/store"
)

// DateRangeFunc resolves the ingestion window for a run started at now.
type DateRangeFunc func(now time.Time) (from, to time.Time, err error)

// Pipeline runs ingestion followed by analysis and answers lookups.
type Pipeline struct {
	Ingestor  *ingest.Ingestor
	Analyzer  *analyzer.Analyzer
	Query     *query.Service
	Store     store.Store
	Notifier  *notifier.TelegramNotifier
	Tickers   func() (symbols []string, checksum string, err error)
	DateRange DateRangeFunc

	mu      sync.Mutex
	running bool
}

// RunResult is what one RunOnce produced.
type RunResult struct {
	Report     *ingest.Report
	Conditions []model.DailyCondition
}

// RunOnce ingests every ticker, waits for the whole batch, then analyzes.
// Ticker failures are absorbed by the ingestor; store failures during
// analysis are returned.
func (p *Pipeline) RunOnce(ctx context.Context) (*RunResult, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, fmt.Errorf("pipeline already running")
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	symbols, checksum, err := p.Tickers()
	if err != nil {
		return nil, fmt.Errorf("load tickers: %w", err)
	}
	from, to, err := p.DateRange(time.Now())
	if err != nil {
		return nil, fmt.Errorf("resolve date range: %w", err)
	}

	report := p.Ingestor.Run(ctx, symbols, from, to)

	conds, err := p.Analyzer.Analyze(ctx)
	if err != nil {
		return &RunResult{Report: report, Conditions: conds}, fmt.Errorf("analyze: %w", err)
	}

	if err := p.Store.RecordRun(ctx, &model.RunRecord{
		ID:             report.RunID,
		StartedAt:      report.StartedAt,
		FinishedAt:     time.Now(),
		TickerChecksum: checksum,
		From:           from,
		To:             to,
		Tickers:        len(symbols),
		Stored:         report.Stored(),
		Skipped:        report.Skipped(),
		Conditions:     len(conds),
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	if p.Notifier.Enabled() {
		if err := p.Notifier.SendWithRetry(ctx, notifier.FormatRunReport(report, conds), 3); err != nil {
			log.Printf("[ERROR] send notification: %v", err)
		}
	}
	return &RunResult{Report: report, Conditions: conds}, nil
}

// HandleCommand answers one console lookup.
func (p *Pipeline) HandleCommand(ctx context.Context, command string) string {
	ticker := model.NormalizeTicker(command)
	cond, found, err := p.Query.LatestCondition(ctx, ticker)
	if err != nil {
		log.Printf("[ERROR] lookup %s: %v", ticker, err)
		return fmt.Sprintf("%s: lookup failed", ticker)
	}
	if !found {
		return notifier.FormatNoData(ticker)
	}
	return notifier.FormatCondition(cond)
}

// Scheduler runs the pipeline on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *Pipeline
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *Pipeline) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Ctx:      ctx,
	}
}

// Register adds the pipeline run under spec (6-field, seconds first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register pipeline task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the pipeline immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.runTask()
}

func (s *Scheduler) runTask() {
	log.Println("[INFO] running scheduled pipeline")
	res, err := s.Pipeline.RunOnce(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] pipeline run: %v", err)
		return
	}
	log.Printf("[INFO] pipeline run %s: %d stored, %d skipped, %d conditions",
		res.Report.RunID, res.Report.Stored(), res.Report.Skipped(), len(res.Conditions))
}
