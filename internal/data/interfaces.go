package data

import (
	"context"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"
)

// SignalCollector 负责从各种源收集社交提及
type SignalCollector interface {
	// CollectMentions retrieves recent mentions for the tracked symbols
	CollectMentions(ctx context.Context, symbols []string) ([]models.RawDataItem, error)

	// SubscribeToMentions returns a channel delivering mention batches on an interval
	SubscribeToMentions(ctx context.Context, symbols []string, refreshInterval time.Duration) (<-chan []models.RawDataItem, error)
}

// TradeFeed 负责提供代币的近期交易事实
type TradeFeed interface {
	// RecentTrades retrieves trades for symbol within the given window ending now
	RecentTrades(ctx context.Context, symbol string, window time.Duration) ([]models.TradeData, error)
}

// ResultStorage 处理扫描结果的持久化
type ResultStorage interface {
	// SaveTDIResult stores one per-symbol TDI result
	SaveTDIResult(ctx context.Context, result *models.TDIResult) error

	// SaveEvaluation stores one evaluation result for a token
	SaveEvaluation(ctx context.Context, token string, result *models.EvaluationResult) error

	// GetTDIHistory retrieves stored TDI results for a symbol
	GetTDIHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.TDIResult, error)
}
