package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// NormalizeTicker trims and upper-cases a raw ticker symbol.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// PriceObservation is one trading day's high/low range for one ticker.
type PriceObservation struct {
	Ticker string
	Date   time.Time
	High   decimal.Decimal
	Low    decimal.Decimal
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
