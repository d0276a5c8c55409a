package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement classifies the change between two consecutive mid-prices.
type Movement string

const (
	MovementUp        Movement = "Up"
	MovementDown      Movement = "Down"
	MovementUnchanged Movement = "Unchanged"
)

// DailyCondition is the movement derived for one ticker by one analysis pass.
type DailyCondition struct {
	Ticker        string
	PreviousPrice decimal.Decimal
	CurrentPrice  decimal.Decimal
	Movement      Movement
	AnalyzedAt    time.Time
}
