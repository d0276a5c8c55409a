package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"StockSentinel/internal/analyzer"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/config"
	"StockSentinel/internal/ingest"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/pacer"
	"StockSentinel/internal/query"
	"StockSentinel/internal/scheduler"
	"StockSentinel/internal/store"
	"StockSentinel/internal/tickers"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	fetcher := collector.NewMarketDataFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init store
	var st store.Store
	if cfg.Database.Driver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0755); err != nil {
			log.Fatalf("[FATAL] create data dir: %v", err)
		}
		sq, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("[FATAL] open sqlite store: %v", err)
		}
		st = sq
	} else {
		log.Println("[WARN] using in-memory store, data is lost on exit")
		st = store.NewMemoryStore()
	}
	defer st.Close()

	if last, found, err := st.LastRun(context.Background()); err == nil && found {
		log.Printf("[INFO] last run %s at %s: %d stored, %d skipped",
			last.ID, last.FinishedAt.Format("2006-01-02 15:04"), last.Stored, last.Skipped)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline := &scheduler.Pipeline{
		Ingestor: ingest.NewIngestor(fetcher, st, pacer.New(cfg.Ingestion.Pacing), ingest.Config{
			Workers:      cfg.Ingestion.Workers,
			FetchTimeout: cfg.Ingestion.FetchTimeout,
			MaxRetries:   cfg.Ingestion.MaxRetries,
		}),
		Analyzer: analyzer.NewAnalyzer(st),
		Query:    query.NewService(st),
		Store:    st,
		Notifier: notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy),
		Tickers: func() ([]string, string, error) {
			list, err := tickers.Load(cfg.Ingestion.TickersFile)
			if err != nil {
				return nil, "", err
			}
			return list.Symbols, list.Checksum, nil
		},
		DateRange: cfg.DateRange,
	}

	if cfg.Schedule.Cron != "" {
		runDaemon(ctx, cancel, pipeline, cfg.Schedule.Cron, cfg.Schedule.RunOnStart)
		return
	}

	// One-shot: ingest, analyze, then answer lookups on the console.
	res, err := pipeline.RunOnce(ctx)
	if err != nil {
		log.Fatalf("[FATAL] pipeline: %v", err)
	}
	log.Printf("[INFO] stock prices saved: %d stored, %d skipped, %d conditions",
		res.Report.Stored(), res.Report.Skipped(), len(res.Conditions))

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
		os.Stdin.Close()
	}()

	if err := notifier.RunConsole(ctx, os.Stdin, os.Stdout, pipeline.HandleCommand); err != nil {
		log.Printf("[ERROR] console: %v", err)
	}
	log.Println("[INFO] StockSentinel stopped")
}

func runDaemon(ctx context.Context, cancel context.CancelFunc, p *scheduler.Pipeline, spec string, runOnStart bool) {
	sched := scheduler.NewScheduler(ctx, p)
	if err := sched.Register(spec); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if runOnStart {
		log.Println("[INFO] run_on_start enabled, executing pipeline now")
		go sched.RunNow()
	}

	log.Printf("[INFO] StockSentinel is running on %q. Press Ctrl+C to stop.", spec)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
}
