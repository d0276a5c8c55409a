package collector

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"StockSentinel/internal/model"
)

// StatusOK is the provider status flag for a successful reply.
const StatusOK = "ok"

// RawCandles is the provider's columnar candle payload. Nil slices mean the
// field was absent or null; empty slices mean it was present with no items.
// A null element inside h or l decodes as an invalid NullDecimal.
type RawCandles struct {
	Status     *string               `json:"s"`
	High       []decimal.NullDecimal `json:"h"`
	Low        []decimal.NullDecimal `json:"l"`
	Timestamps []int64               `json:"t"`
	ErrMsg     string                `json:"errmsg,omitempty"`
}

// Normalize converts a raw reply into per-day observations ordered as the
// provider returned them. It never mutates raw. When the payload fails
// validation the result is nil and the error wraps model.ErrMalformedResponse.
func Normalize(ticker string, raw *RawCandles, from time.Time) ([]model.PriceObservation, error) {
	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", model.ErrMalformedResponse, ticker, err)
	}

	start := model.Day(from)
	obs := make([]model.PriceObservation, len(raw.High))
	for i := range raw.High {
		var date time.Time
		if raw.Timestamps != nil {
			date = time.Unix(raw.Timestamps[i], 0).UTC()
		} else {
			date = start.AddDate(0, 0, i)
		}
		obs[i] = model.PriceObservation{
			Ticker: ticker,
			Date:   date,
			High:   raw.High[i].Decimal,
			Low:    raw.Low[i].Decimal,
		}
	}
	return obs, nil
}

func validate(raw *RawCandles) error {
	switch {
	case raw == nil:
		return fmt.Errorf("empty response")
	case raw.Status == nil:
		return fmt.Errorf("status flag absent")
	case *raw.Status != StatusOK:
		if raw.ErrMsg != "" {
			return fmt.Errorf("status %q: %s", *raw.Status, raw.ErrMsg)
		}
		return fmt.Errorf("status %q", *raw.Status)
	case raw.High == nil:
		return fmt.Errorf("high prices absent")
	case raw.Low == nil:
		return fmt.Errorf("low prices absent")
	case len(raw.High) == 0:
		return fmt.Errorf("no candles")
	case len(raw.High) != len(raw.Low):
		return fmt.Errorf("high/low length mismatch: %d vs %d", len(raw.High), len(raw.Low))
	case raw.Timestamps != nil && len(raw.Timestamps) != len(raw.High):
		return fmt.Errorf("timestamp length mismatch: %d vs %d", len(raw.Timestamps), len(raw.High))
	}
	seen := make(map[string]int, len(raw.Timestamps))
	for i := range raw.High {
		if !raw.High[i].Valid || !raw.Low[i].Valid {
			return fmt.Errorf("null price at index %d", i)
		}
		if raw.High[i].Decimal.IsNegative() || raw.Low[i].Decimal.IsNegative() {
			return fmt.Errorf("negative price at index %d", i)
		}
		if raw.Timestamps == nil {
			continue
		}
		// The store keeps one row per calendar day.
		day := time.Unix(raw.Timestamps[i], 0).UTC().Format(model.DateLayout)
		if j, ok := seen[day]; ok {
			return fmt.Errorf("duplicate day %s at index %d and %d", day, j, i)
		}
		seen[day] = i
	}
	return nil
}
