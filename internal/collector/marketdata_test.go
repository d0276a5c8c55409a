package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/model"
)

var (
	testFrom = time.Date(2023, 11, 16, 0, 0, 0, 0, time.UTC)
	testTo   = time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
)

func TestMarketDataFetcher_RequestShape(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"s":"ok","h":[10,12],"l":[8,10],"t":[1700110800,1700197200]}`))
	}))
	defer srv.Close()

	f := NewMarketDataFetcher(srv.URL+"/", "secret", "", time.Second)
	raw, err := f.FetchCandles(context.Background(), "AAPL", testFrom, testTo)
	require.NoError(t, err)

	assert.Equal(t, "/candles/D/AAPL/", gotPath)
	assert.Equal(t, "from=2023-11-16&to=2024-11-15", gotQuery)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.NotNil(t, raw.Status)
	assert.Equal(t, "ok", *raw.Status)
	assert.Len(t, raw.High, 2)
	assert.Len(t, raw.Low, 2)
	assert.Equal(t, []int64{1700110800, 1700197200}, raw.Timestamps)
}

func TestMarketDataFetcher_Non2xxIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewMarketDataFetcher(srv.URL, "k", "", time.Second)
	_, err := f.FetchCandles(context.Background(), "MSFT", testFrom, testTo)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransport)
	assert.Contains(t, err.Error(), "429")
}

func TestMarketDataFetcher_TimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewMarketDataFetcher(srv.URL, "k", "", 50*time.Millisecond)
	_, err := f.FetchCandles(context.Background(), "MSFT", testFrom, testTo)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransport)
}

func TestMarketDataFetcher_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	f := NewMarketDataFetcher(srv.URL, "k", "", time.Second)
	_, err := f.FetchCandles(context.Background(), "MSFT", testFrom, testTo)
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}

func TestMarketDataFetcher_InvalidRequest(t *testing.T) {
	f := NewMarketDataFetcher("http://127.0.0.1:1", "k", "", time.Second)

	_, err := f.FetchCandles(context.Background(), "", testFrom, testTo)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = f.FetchCandles(context.Background(), "AAPL", testTo, testFrom)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestMarketDataFetcher_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"s":"no_data"}`))
	}))
	defer srv.Close()

	f := NewMarketDataFetcher(srv.URL, "", "", time.Second)
	raw, err := f.FetchCandles(context.Background(), "AAPL", testFrom, testTo)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "no_data", *raw.Status)
	assert.Nil(t, raw.High)
}

func TestMarketDataFetcher_OversizedBodyRejected(t *testing.T) {
	old := maxBodyBytes
	maxBodyBytes = 64
	defer func() { maxBodyBytes = old }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"ok","h":[` + strings.Repeat("1,", 100) + `1],"l":[1]}`))
	}))
	defer srv.Close()

	f := NewMarketDataFetcher(srv.URL, "k", "", time.Second)
	raw, err := f.FetchCandles(context.Background(), "AAPL", testFrom, testTo)
	assert.Nil(t, raw)
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
	assert.ErrorContains(t, err, "exceeds 64 bytes")
}
