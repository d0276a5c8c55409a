package collector

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/model"
)

func decode(t *testing.T, body string) *RawCandles {
	t.Helper()
	var raw RawCandles
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return &raw
}

func TestNormalize_WithTimestamps(t *testing.T) {
	raw := decode(t, `{"s":"ok","h":[10,12.5],"l":[8,10.25],"t":[1700110800,1700197200]}`)

	obs, err := Normalize("AAPL", raw, testFrom)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	assert.Equal(t, int64(1700110800), obs[0].Date.Unix())
	assert.Equal(t, int64(1700197200), obs[1].Date.Unix())
	assert.Equal(t, "AAPL", obs[1].Ticker)
	assert.True(t, obs[1].High.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, obs[1].Low.Equal(decimal.RequireFromString("10.25")))
}

func TestNormalize_SynthesizesDatesWithoutTimestamps(t *testing.T) {
	raw := decode(t, `{"s":"ok","h":[1,2,3,4],"l":[1,2,3,4]}`)
	from := time.Date(2024, 2, 27, 15, 30, 0, 0, time.UTC)

	obs, err := Normalize("MSFT", raw, from)
	require.NoError(t, err)
	require.Len(t, obs, 4)

	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}
	for i, o := range obs {
		assert.Equal(t, want[i], o.Date.Format(model.DateLayout))
		if i > 0 {
			assert.Equal(t, 24*time.Hour, o.Date.Sub(obs[i-1].Date))
		}
	}
}

func TestNormalize_SinglePoint(t *testing.T) {
	raw := decode(t, `{"s":"ok","h":[10],"l":[8]}`)
	obs, err := Normalize("ONE", raw, testFrom)
	require.NoError(t, err)
	assert.Len(t, obs, 1)
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  *RawCandles
	}{
		{"nil response", nil},
		{"status absent", decode(t, `{"h":[1],"l":[1]}`)},
		{"status not ok", decode(t, `{"s":"error","errmsg":"bad token","h":[1],"l":[1]}`)},
		{"no_data", decode(t, `{"s":"no_data"}`)},
		{"high absent", decode(t, `{"s":"ok","l":[1]}`)},
		{"high null", decode(t, `{"s":"ok","h":null,"l":[1]}`)},
		{"low absent", decode(t, `{"s":"ok","h":[1]}`)},
		{"empty arrays", decode(t, `{"s":"ok","h":[],"l":[]}`)},
		{"length mismatch", decode(t, `{"s":"ok","h":[1,2],"l":[1]}`)},
		{"timestamp mismatch", decode(t, `{"s":"ok","h":[1,2],"l":[1,2],"t":[1700110800]}`)},
		{"negative price", decode(t, `{"s":"ok","h":[1,2],"l":[1,-2]}`)},
		{"null element", decode(t, `{"s":"ok","h":[10,null],"l":[8,null]}`)},
		{"null low only", decode(t, `{"s":"ok","h":[10,11],"l":[8,null]}`)},
		{"duplicate day", decode(t, `{"s":"ok","h":[1,2],"l":[1,2],"t":[1700110800,1700125200]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := Normalize("BAD", tt.raw, testFrom)
			assert.Empty(t, obs)
			assert.ErrorIs(t, err, model.ErrMalformedResponse)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := decode(t, `{"s":"ok","h":[10,11,12],"l":[9,10,11]}`)

	first, err := Normalize("IBM", raw, testFrom)
	require.NoError(t, err)
	second, err := Normalize("IBM", raw, testFrom)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMockFetcher_GeneratesOneCandlePerDay(t *testing.T) {
	m := &MockFetcher{}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	raw, err := m.FetchCandles(t.Context(), "GEN", from, from.AddDate(0, 0, 4))
	require.NoError(t, err)

	obs, err := Normalize("GEN", raw, from)
	require.NoError(t, err)
	assert.Len(t, obs, 5)
	assert.Equal(t, []string{"GEN"}, m.Calls())
}
