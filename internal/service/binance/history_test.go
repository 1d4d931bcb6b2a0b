package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xhttp "PairWatch/pkg/http"

	"github.com/stretchr/testify/require"
)

func TestKlinesFetchDropsOpenCandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		require.Equal(t, "1m", r.URL.Query().Get("interval"))
		require.Equal(t, "1000", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		// [openTime, open, high, low, close, volume, ...]; last row is still open
		_, _ = w.Write([]byte(`[
			[1700000000000, "60000", "60100", "59900", "60050.5", "10"],
			[1700000060000, "60050", "60200", "60000", "60150.25", "12"],
			[1700000120000, "60150", "60300", "60100", "60250.0", "3"]
		]`))
	}))
	defer srv.Close()

	src := NewKlinesSource(xhttp.NewClient(xhttp.WithTimeout(5*time.Second)), srv.URL, srv.URL, "1m", 1000)

	points, err := src.Fetch(context.Background(), MarketSpot, "btcusdt")
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, int64(1700000000000), points[0].Timestamp)
	require.Equal(t, 60050.5, points[0].Price)
	require.Equal(t, int64(1700000060000), points[1].Timestamp)
	require.Equal(t, 60150.25, points[1].Price)
}

func TestKlinesFetchFuturesPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fapi/v1/klines", r.URL.Path)
		require.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[1700000000000, "2000", "2010", "1990", "2005.5", "100"]]`))
	}))
	defer srv.Close()

	src := NewKlinesSource(xhttp.NewClient(xhttp.WithTimeout(5*time.Second)), srv.URL, srv.URL, "1m", 1000)

	// the single (still open) row is dropped
	points, err := src.Fetch(context.Background(), MarketFutures, "ethusdt")
	require.NoError(t, err)
	require.Empty(t, points)
}

func TestKlinesFetchUnknownMarket(t *testing.T) {
	src := NewKlinesSource(xhttp.NewClient(), "http://unused", "http://unused", "1m", 1000)

	_, err := src.Fetch(context.Background(), "margin", "ethusdt")
	require.Error(t, err)
}

func TestParseKlineRowErrors(t *testing.T) {
	_, err := parseKlineRow([]interface{}{1.0, "a", "b"})
	require.Error(t, err)

	_, err = parseKlineRow([]interface{}{"not-a-number", "o", "h", "l", "c"})
	require.Error(t, err)

	_, err = parseKlineRow([]interface{}{1.0, "o", "h", "l", 42.0})
	require.Error(t, err)

	_, err = parseKlineRow([]interface{}{1.0, "o", "h", "l", "not-a-price"})
	require.Error(t, err)
}
