package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/songzhibin97/memepulse/internal/configs"
	"github.com/songzhibin97/memepulse/internal/data"
	"github.com/songzhibin97/memepulse/internal/data/collector"
	"github.com/songzhibin97/memepulse/internal/data/collector/rss"
	"github.com/songzhibin97/memepulse/internal/data/collector/twitter"
	"github.com/songzhibin97/memepulse/internal/data/storage"
	"github.com/songzhibin97/memepulse/internal/data/trades"
	"github.com/songzhibin97/memepulse/internal/models"
	sentimentOpenAI "github.com/songzhibin97/memepulse/internal/sentiment/openai"
	"github.com/songzhibin97/memepulse/internal/signal"
	"github.com/songzhibin97/memepulse/internal/tdi"
)

type PulseSystem struct {
	config    *configs.Config
	collector data.SignalCollector
	storage   data.ResultStorage
	tradeFeed data.TradeFeed
	engine    *tdi.Engine
	evaluator *signal.Evaluator
}

func NewPulseSystem(
	config *configs.Config,
	signalCollector data.SignalCollector,
	resultStorage data.ResultStorage,
	tradeFeed data.TradeFeed,
	engine *tdi.Engine,
	evaluator *signal.Evaluator,
) *PulseSystem {
	return &PulseSystem{
		config:    config,
		collector: signalCollector,
		storage:   resultStorage,
		tradeFeed: tradeFeed,
		engine:    engine,
		evaluator: evaluator,
	}
}

// Run 运行扫描循环
func (s *PulseSystem) Run(ctx context.Context) error {
	refreshInterval, err := time.ParseDuration(s.config.RefreshInterval)
	if err != nil {
		refreshInterval = time.Minute
	}

	// 订阅社交提及
	mentionCh, err := s.collector.SubscribeToMentions(ctx, s.config.Symbols, refreshInterval)
	if err != nil {
		return err
	}

	log.Debug("subscribe to mentions ok!")

	// 主循环
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case mentions, ok := <-mentionCh:
			if !ok {
				return nil
			}
			log.Debug("received mention batch", "count", len(mentions))

			if err := s.handleScan(ctx, mentions); err != nil {
				log.Error("error handling scan", "err", err)
			}
		}
	}
}

// handleScan 处理一轮扫描
func (s *PulseSystem) handleScan(ctx context.Context, mentions []models.RawDataItem) error {
	now := time.Now()

	// 1. 计算各代币的讨论指数
	results := s.engine.CalculateTDI(mentions, s.config.Symbols, now)

	for i := range results {
		result := &results[i]

		// 2. 保存 TDI 结果
		if err := s.storage.SaveTDIResult(ctx, result); err != nil {
			log.Error("failed to save tdi result", "symbol", result.Symbol, "err", err)
		}

		// 3. 只对热度异动的代币做综合评估
		if result.Status != models.StatusSurging && result.Status != models.StatusBrewing {
			continue
		}

		if err := s.evaluateSymbol(ctx, result, mentions, now); err != nil {
			log.Error("failed to evaluate symbol", "symbol", result.Symbol, "err", err)
		}
	}

	return nil
}

// evaluateSymbol 收集交易事实后做单代币综合评估
func (s *PulseSystem) evaluateSymbol(ctx context.Context, tdiResult *models.TDIResult, mentions []models.RawDataItem, now time.Time) error {
	window := time.Duration(s.config.Evaluator.BuyPressureWindowMinutes) * time.Minute
	if window <= 0 {
		window = 5 * time.Minute
	}

	// 混合批次先收窄到本代币，避免别的代币的讨论污染情绪分量
	symbolMentions := tdi.FilterBySymbol(mentions, tdiResult.Symbol)

	recentTrades, err := s.tradeFeed.RecentTrades(ctx, tdiResult.Symbol, window)
	if err != nil {
		// 交易数据缺失不阻塞评估，按空交易处理
		log.Error("failed to fetch recent trades", "symbol", tdiResult.Symbol, "err", err)
		recentTrades = []models.TradeData{}
	}

	// 讨论激增本身构成一个已触发信号
	triggered := []models.TriggeredSignal{}
	if tdiResult.Status == models.StatusSurging {
		triggered = append(triggered, models.TriggeredSignal{
			Kind: models.SignalSocialUpdate,
			Data: models.SocialUpdateData{Platform: "aggregate", Content: "discussion surge"},
		})
	}

	input := signal.Input{
		Signal: signal.TokenSignal{
			Token:  tdiResult.Symbol,
			Kind:   models.SignalSocialUpdate,
			Source: "tdi",
		},
		Mentions:  symbolMentions,
		Trades:    recentTrades,
		Triggered: triggered,
		Now:       now,
	}

	result, err := s.evaluator.Evaluate(ctx, input)
	if err != nil {
		return err
	}

	if err := s.storage.SaveEvaluation(ctx, tdiResult.Symbol, result); err != nil {
		return err
	}

	log.Info("signal evaluated",
		"symbol", tdiResult.Symbol,
		"status", tdiResult.Status,
		"tdi_growth", tdiResult.GrowthRate,
		"score", result.TotalScore,
		"confidence", result.Confidence,
		"reasons", result.Reasons,
	)

	return nil
}

var (
	flagconf string

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
)

func init() {
	flag.StringVar(&flagconf, "conf", "../configs", "config path, eg: -conf config.yaml")
}

func loadConfig(path string) (*configs.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &configs.Config{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}

	return config, nil
}

func main() {
	flag.Parse()

	// 加载配置
	config, err := loadConfig(flagconf)
	if err != nil {
		log.Error("error loading config", "err", err)
		return
	}

	log.Debug("loaded config", "config", config)

	if config.Proxy != "" {
		_ = os.Setenv("HTTP_PROXY", config.Proxy)
		_ = os.Setenv("HTTPS_PROXY", config.Proxy)
		log.Debug("set proxy ok", "proxy", config.Proxy)
	}

	// 初始化各个组件
	sources := []collector.MentionSource{}
	if config.Sources.TwitterBearerToken != "" {
		sources = append(sources, twitter.NewTwitterMentionSource(config.Sources.TwitterBearerToken))
	}
	if len(config.Sources.RSSFeeds) > 0 {
		sources = append(sources, rss.NewRSSMentionSource(config.Sources.RSSFeeds))
	}

	signalCollector := collector.NewMultiSourceCollector(sources, log)

	log.Debug("init collector", "sources", len(sources))

	resultStorage, err := storage.NewPostgresStorage(config.Database.ConnStr)
	if err != nil {
		log.Error("error creating storage", "err", err)
		return
	}

	log.Debug("init storage")

	tradeFeed := trades.NewBinanceTradeFeed(config.Exchange.APIKey, config.Exchange.SecretKey, config.Exchange.Debug)

	log.Debug("init trade feed")

	engine := tdi.NewEngine(config.TDI, log)

	log.Debug("init tdi engine")

	var evaluator *signal.Evaluator
	if config.Sentiment.Enabled {
		provider := sentimentOpenAI.NewProvider(config.Sentiment.APIKey, config.Sentiment.Model)
		evaluator = signal.NewEvaluator(config.Evaluator, provider, log)
	} else {
		evaluator = signal.NewEvaluator(config.Evaluator, nil, log)
	}

	log.Debug("init evaluator")

	// 创建扫描系统
	system := NewPulseSystem(
		config,
		signalCollector,
		resultStorage,
		tradeFeed,
		engine,
		evaluator,
	)

	// 运行系统
	ctx := context.Background()
	if err := system.Run(ctx); err != nil {
		log.Error("system error", "err", err)
	}
}
