package model

import "time"

// RunRecord summarizes one ingestion batch.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	TickerChecksum string
	From           time.Time
	To             time.Time
	Tickers        int
	Stored         int
	Skipped        int
	Conditions     int
}
