package calculator

import (
	"github.com/shopspring/decimal"

	"StockSentinel/internal/model"
)

var two = decimal.NewFromInt(2)

// MidPrice returns the arithmetic mean of a day's high and low.
func MidPrice(high, low decimal.Decimal) decimal.Decimal {
	return high.Add(low).Div(two)
}

// ObservationMid returns the mid-price of a single observation.
func ObservationMid(o model.PriceObservation) decimal.Decimal {
	return MidPrice(o.High, o.Low)
}

// Classify compares two mid-prices strictly, with no tolerance.
func Classify(previous, current decimal.Decimal) model.Movement {
	switch current.Cmp(previous) {
	case 1:
		return model.MovementUp
	case -1:
		return model.MovementDown
	default:
		return model.MovementUnchanged
	}
}

// LatestChange returns the mid-prices of the last two observations of a
// date-ascending series.
func LatestChange(obs []model.PriceObservation) (previous, current decimal.Decimal, err error) {
	if len(obs) < 2 {
		return decimal.Zero, decimal.Zero, model.ErrInsufficientHistory
	}
	n := len(obs)
	return ObservationMid(obs[n-2]), ObservationMid(obs[n-1]), nil
}
