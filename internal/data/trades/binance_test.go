package trades

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinanceTradeFeed_RecentTrades(t *testing.T) {
	tradeTime := time.Now().Add(-time.Minute).UnixMilli()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/aggTrades", r.URL.Path)
		assert.Equal(t, "PEPEUSDT", r.URL.Query().Get("symbol"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
            {"a":1,"p":"0.0000125","q":"1000000","f":1,"l":1,"T":` + itoa(tradeTime) + `,"m":false,"M":true},
            {"a":2,"p":"0.0000124","q":"500000","f":2,"l":2,"T":` + itoa(tradeTime) + `,"m":true,"M":true}
        ]`))
	}))
	defer server.Close()

	feed := NewBinanceTradeFeed("", "")
	feed.client.BaseURL = server.URL
	feed.client.HTTPClient = server.Client()

	trades, err := feed.RecentTrades(context.Background(), "PEPEUSDT", 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// 吃单买入
	assert.Equal(t, models.TradeBuy, trades[0].Type)
	assert.InDelta(t, 0.0000125, trades[0].Price, 1e-12)
	assert.InDelta(t, 1000000, trades[0].Amount, 1e-9)
	assert.Equal(t, tradeTime, trades[0].Timestamp.UnixMilli())

	// 吃单卖出
	assert.Equal(t, models.TradeSell, trades[1].Type)
}

func TestBinanceTradeFeed_RecentTrades_BadPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"a":1,"p":"not-a-number","q":"1","f":1,"l":1,"T":1700000000000,"m":false,"M":true}]`))
	}))
	defer server.Close()

	feed := NewBinanceTradeFeed("", "")
	feed.client.BaseURL = server.URL
	feed.client.HTTPClient = server.Client()

	_, err := feed.RecentTrades(context.Background(), "PEPEUSDT", 5*time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse price")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
