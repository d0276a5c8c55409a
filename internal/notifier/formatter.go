package notifier

import (
	"fmt"
	"strings"
	"time"

	"StockSentinel/internal/ingest"
	"StockSentinel/internal/model"
)

// FormatCondition renders a condition for display.
func FormatCondition(c *model.DailyCondition) string {
	return fmt.Sprintf("%s: %s (current %s, previous %s)",
		c.Ticker, c.Movement, c.CurrentPrice.String(), c.PreviousPrice.String())
}

// FormatNoData is shown when a ticker has no recorded condition.
func FormatNoData(ticker string) string {
	return fmt.Sprintf("%s: no data", ticker)
}

// FormatRunReport summarizes one pipeline run.
func FormatRunReport(report *ingest.Report, conds []model.DailyCondition) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 StockSentinel run %s | %s\n\n", shortID(report.RunID), report.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Range: %s .. %s\n", report.From.Format(model.DateLayout), report.To.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("Tickers: %d stored, %d skipped (%v)\n",
		report.Stored(), report.Skipped(), report.FinishedAt.Sub(report.StartedAt).Round(time.Second)))

	if len(conds) > 0 {
		up, down, flat := 0, 0, 0
		for _, c := range conds {
			switch c.Movement {
			case model.MovementUp:
				up++
			case model.MovementDown:
				down++
			default:
				flat++
			}
		}
		b.WriteString(fmt.Sprintf("Conditions: %d up, %d down, %d unchanged\n", up, down, flat))
	}

	if report.Skipped() > 0 {
		b.WriteString("\nSkipped:\n")
		for _, o := range report.Outcomes {
			if o.Status != ingest.StatusSkipped {
				continue
			}
			reason := "unknown"
			if o.Err != nil {
				reason = o.Err.Error()
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n", o.Ticker, reason))
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
