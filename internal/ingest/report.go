package ingest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the terminal state of one ticker within a batch.
type Status string

const (
	StatusStored  Status = "stored"
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to one ticker.
type Outcome struct {
	Ticker       string
	Status       Status
	Observations int
	Attempts     int
	LatestDate   time.Time
	LatestMid    decimal.Decimal
	Err          error
}

// Report lists outcomes in input order.
type Report struct {
	RunID      string
	From       time.Time
	To         time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
}

func (r *Report) Stored() int { return r.count(StatusStored) }

func (r *Report) Skipped() int { return r.count(StatusSkipped) }

func (r *Report) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}
