package trades

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/songzhibin97/memepulse/internal/models"
)

// BinanceTradeFeed implements TradeFeed interface for Binance
type BinanceTradeFeed struct {
	client *binance.Client
}

// NewBinanceTradeFeed creates a new BinanceTradeFeed instance
func NewBinanceTradeFeed(apiKey, secretKey string, debug ...bool) *BinanceTradeFeed {
	debug = append(debug, false)
	if debug[0] {
		binance.UseTestnet = true
	}

	return &BinanceTradeFeed{
		client: binance.NewClient(apiKey, secretKey),
	}
}

// RecentTrades implements trade retrieval for Binance.
// 归集成交按吃单方向映射买卖：IsBuyerMaker 为真表示卖方主动，计为 sell。
func (b *BinanceTradeFeed) RecentTrades(ctx context.Context, symbol string, window time.Duration) ([]models.TradeData, error) {
	end := time.Now()
	start := end.Add(-window)

	aggTrades, err := b.client.NewAggTradesService().
		Symbol(symbol).
		StartTime(start.UnixMilli()).
		EndTime(end.UnixMilli()).
		Limit(1000).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agg trades: %w", err)
	}

	trades := make([]models.TradeData, 0, len(aggTrades))
	for _, t := range aggTrades {
		price, err := strconv.ParseFloat(t.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price %q: %w", t.Price, err)
		}

		amount, err := strconv.ParseFloat(t.Quantity, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quantity %q: %w", t.Quantity, err)
		}

		side := models.TradeBuy
		if t.IsBuyerMaker {
			side = models.TradeSell
		}

		trades = append(trades, models.TradeData{
			Type:      side,
			Amount:    amount,
			Price:     price,
			Timestamp: time.UnixMilli(t.Timestamp),
		})
	}

	return trades, nil
}
