package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"StockSentinel/internal/model"
)

// SQLiteStore persists pipeline data to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	// WAL mode so the query console can read while a batch is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tickers (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS price_observations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker_id   INTEGER NOT NULL REFERENCES tickers(id),
			date        TEXT NOT NULL,
			high        TEXT NOT NULL,
			low         TEXT NOT NULL,
			run_id      TEXT,
			ingested_at INTEGER NOT NULL,
			UNIQUE (ticker_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS daily_conditions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker_id      INTEGER NOT NULL REFERENCES tickers(id),
			previous_price TEXT NOT NULL,
			current_price  TEXT NOT NULL,
			movement       TEXT NOT NULL,
			analyzed_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conditions_ticker_ts ON daily_conditions(ticker_id, analyzed_at)`,

		`CREATE TABLE IF NOT EXISTS ingestion_runs (
			id              TEXT PRIMARY KEY,
			started_at      INTEGER NOT NULL,
			finished_at     INTEGER NOT NULL,
			ticker_checksum TEXT,
			from_date       TEXT,
			to_date         TEXT,
			tickers         INTEGER,
			stored          INTEGER,
			skipped         INTEGER,
			conditions      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON ingestion_runs(started_at)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

// tickerID returns the surrogate key for symbol, assigning one on first sight.
func tickerID(ctx context.Context, tx *sql.Tx, symbol string) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tickers (symbol) VALUES (?) ON CONFLICT(symbol) DO NOTHING`, symbol); err != nil {
		return 0, fmt.Errorf("insert ticker %s: %w", symbol, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM tickers WHERE symbol = ?`, symbol).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup ticker %s: %w", symbol, err)
	}
	return id, nil
}

func (s *SQLiteStore) AppendObservations(ctx context.Context, ticker, runID string, obs []model.PriceObservation) (err error) {
	if len(obs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	id, err := tickerID(ctx, tx, ticker)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_observations
		(ticker_id, date, high, low, run_id, ingested_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(ticker_id, date) DO UPDATE SET
			high = excluded.high,
			low = excluded.low,
			run_id = excluded.run_id,
			ingested_at = excluded.ingested_at`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, o := range obs {
		if _, err = stmt.ExecContext(ctx, id, o.Date.UTC().Format(model.DateLayout),
			o.High.String(), o.Low.String(), runID, now); err != nil {
			return fmt.Errorf("insert observation %s %s: %w", ticker, o.Date.Format(model.DateLayout), err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT t.symbol
		FROM tickers t JOIN price_observations p ON p.ticker_id = t.id
		ORDER BY t.symbol`)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Observations(ctx context.Context, ticker string) ([]model.PriceObservation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.date, p.high, p.low
		FROM price_observations p JOIN tickers t ON t.id = p.ticker_id
		WHERE t.symbol = ?
		ORDER BY p.date ASC`, ticker)
	if err != nil {
		return nil, fmt.Errorf("query observations %s: %w", ticker, err)
	}
	defer rows.Close()

	var out []model.PriceObservation
	for rows.Next() {
		var (
			date      string
			high, low decimal.Decimal
		)
		if err := rows.Scan(&date, &high, &low); err != nil {
			return nil, fmt.Errorf("scan observation %s: %w", ticker, err)
		}
		day, err := time.Parse(model.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		out = append(out, model.PriceObservation{Ticker: ticker, Date: day, High: high, Low: low})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendCondition(ctx context.Context, c *model.DailyCondition) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	id, err := tickerID(ctx, tx, c.Ticker)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO daily_conditions
		(ticker_id, previous_price, current_price, movement, analyzed_at)
		VALUES (?,?,?,?,?)`,
		id, c.PreviousPrice.String(), c.CurrentPrice.String(), string(c.Movement), c.AnalyzedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert condition %s: %w", c.Ticker, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) LatestCondition(ctx context.Context, ticker string) (*model.DailyCondition, bool, error) {
	var (
		c          = model.DailyCondition{Ticker: ticker}
		movement   string
		analyzedAt int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT c.previous_price, c.current_price, c.movement, c.analyzed_at
		FROM daily_conditions c JOIN tickers t ON t.id = c.ticker_id
		WHERE t.symbol = ?
		ORDER BY c.analyzed_at DESC, c.id DESC
		LIMIT 1`, ticker).Scan(&c.PreviousPrice, &c.CurrentPrice, &movement, &analyzedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query latest condition %s: %w", ticker, err)
	}
	c.Movement = model.Movement(movement)
	c.AnalyzedAt = time.Unix(0, analyzedAt)
	return &c, true, nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run *model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO ingestion_runs
		(id, started_at, finished_at, ticker_checksum, from_date, to_date, tickers, stored, skipped, conditions)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(), run.TickerChecksum,
		run.From.Format(model.DateLayout), run.To.Format(model.DateLayout),
		run.Tickers, run.Stored, run.Skipped, run.Conditions,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLiteStore) LastRun(ctx context.Context) (*model.RunRecord, bool, error) {
	var (
		r                 model.RunRecord
		started, finished int64
		from, to          string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, started_at, finished_at, ticker_checksum,
		from_date, to_date, tickers, stored, skipped, conditions
		FROM ingestion_runs ORDER BY started_at DESC LIMIT 1`).Scan(
		&r.ID, &started, &finished, &r.TickerChecksum, &from, &to,
		&r.Tickers, &r.Stored, &r.Skipped, &r.Conditions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query last run: %w", err)
	}
	r.StartedAt = time.Unix(0, started)
	r.FinishedAt = time.Unix(0, finished)
	if r.From, err = time.Parse(model.DateLayout, from); err != nil {
		return nil, false, fmt.Errorf("parse run from date %q: %w", from, err)
	}
	if r.To, err = time.Parse(model.DateLayout, to); err != nil {
		return nil, false, fmt.Errorf("parse run to date %q: %w", to, err)
	}
	return &r, true, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
