package signal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"
	"github.com/songzhibin97/memepulse/internal/sentiment"
	"github.com/songzhibin97/memepulse/internal/tdi"
)

// ErrInvalidInput 输入形状校验失败，评估中止，不产生部分结果
var ErrInvalidInput = errors.New("invalid evaluation input")

// Logger 评估器使用的日志接口，由调用方注入
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Triple 阈值/权重三元组（高/中/低）
type Triple struct {
	High   float64 `json:"high" yaml:"high"`
	Medium float64 `json:"medium" yaml:"medium"`
	Low    float64 `json:"low" yaml:"low"`
}

// Config 评估器配置，构造后不可变
type Config struct {
	SentimentWindowMinutes   int     `json:"sentiment_window_minutes" yaml:"sentiment_window_minutes"`
	SentimentGrowthLevels    Triple  `json:"sentiment_growth_levels" yaml:"sentiment_growth_levels"`
	SentimentWeights         Triple  `json:"sentiment_weights" yaml:"sentiment_weights"`
	BuyPressureWindowMinutes int     `json:"buy_pressure_window_minutes" yaml:"buy_pressure_window_minutes"`
	BuyCountLevels           Triple  `json:"buy_count_levels" yaml:"buy_count_levels"`
	BuyPressureWeights       Triple  `json:"buy_pressure_weights" yaml:"buy_pressure_weights"`
	BlacklistPenalties       Triple  `json:"blacklist_penalties" yaml:"blacklist_penalties"` // 按严重程度的惩罚幅度，应用时取负
	BlacklistAgeFactor       float64 `json:"blacklist_age_factor" yaml:"blacklist_age_factor"`
	ResonanceLevels          Triple  `json:"resonance_levels" yaml:"resonance_levels"`
	ResonanceWeights         Triple  `json:"resonance_weights" yaml:"resonance_weights"`
}

// DefaultConfig returns the evaluator configuration with default thresholds.
func DefaultConfig() Config {
	return Config{
		SentimentWindowMinutes:   60,
		SentimentGrowthLevels:    Triple{High: 0.5, Medium: 0.3, Low: 0.1},
		SentimentWeights:         Triple{High: 40, Medium: 30, Low: 20},
		BuyPressureWindowMinutes: 5,
		BuyCountLevels:           Triple{High: 10, Medium: 5, Low: 3},
		BuyPressureWeights:       Triple{High: 30, Medium: 20, Low: 10},
		BlacklistPenalties:       Triple{High: 20, Medium: 10, Low: 5},
		BlacklistAgeFactor:       0.05,
		ResonanceLevels:          Triple{High: 4, Medium: 2, Low: 1},
		ResonanceWeights:         Triple{High: 30, Medium: 20, Low: 10},
	}
}

// withDefaults 对零值字段回填默认配置
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SentimentWindowMinutes <= 0 {
		c.SentimentWindowMinutes = def.SentimentWindowMinutes
	}
	if c.SentimentGrowthLevels == (Triple{}) {
		c.SentimentGrowthLevels = def.SentimentGrowthLevels
	}
	if c.SentimentWeights == (Triple{}) {
		c.SentimentWeights = def.SentimentWeights
	}
	if c.BuyPressureWindowMinutes <= 0 {
		c.BuyPressureWindowMinutes = def.BuyPressureWindowMinutes
	}
	if c.BuyCountLevels == (Triple{}) {
		c.BuyCountLevels = def.BuyCountLevels
	}
	if c.BuyPressureWeights == (Triple{}) {
		c.BuyPressureWeights = def.BuyPressureWeights
	}
	if c.BlacklistPenalties == (Triple{}) {
		c.BlacklistPenalties = def.BlacklistPenalties
	}
	if c.BlacklistAgeFactor == 0 {
		c.BlacklistAgeFactor = def.BlacklistAgeFactor
	}
	if c.ResonanceLevels == (Triple{}) {
		c.ResonanceLevels = def.ResonanceLevels
	}
	if c.ResonanceWeights == (Triple{}) {
		c.ResonanceWeights = def.ResonanceWeights
	}
	return c
}

// TokenSignal 待评估信号，Token 不可为空
type TokenSignal struct {
	Token  string            `json:"token"`
	Kind   models.SignalKind `json:"kind"`
	Source string            `json:"source"`
}

// Input 单次评估的全部输入。切片字段必须非 nil（可为空），
// 以区分"无数据"与"字段缺失"。Now 为零值时取当前时间。
type Input struct {
	Signal    TokenSignal
	Mentions  []models.RawDataItem
	Trades    []models.TradeData
	Triggered []models.TriggeredSignal
	Blacklist *models.BlacklistEntry
	Now       time.Time
}

// Evaluator 信号评估器，无跨调用可变状态，可并发使用
type Evaluator struct {
	cfg      Config
	provider sentiment.Provider // 可选，nil 时用提及数推导增长率
	logger   Logger
}

// NewEvaluator creates a signal evaluator. provider may be nil, in which case
// sentiment growth is derived from mention counts.
func NewEvaluator(cfg Config, provider sentiment.Provider, logger Logger) *Evaluator {
	return &Evaluator{
		cfg:      cfg.withDefaults(),
		provider: provider,
		logger:   logger,
	}
}

// Evaluate 将各分量合成为 0-100 的综合评分。
// 输入校验失败立即返回 ErrInvalidInput；单个分量计算失败只记日志并按 0 计，
// 评估本身不会因此中止。
func (ev *Evaluator) Evaluate(ctx context.Context, input Input) (*models.EvaluationResult, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	sentimentScore := ev.safeComponent("sentiment", func() (float64, error) {
		return ev.sentimentScore(ctx, input, now)
	})
	buyPressure := ev.safeComponent("buy_pressure", func() (float64, error) {
		return ev.buyPressureScore(input.Trades, now), nil
	})
	penalty := ev.safeComponent("blacklist", func() (float64, error) {
		return ev.blacklistPenalty(input.Blacklist), nil
	})
	resonance := ev.safeComponent("resonance", func() (float64, error) {
		return ev.resonanceScore(input.Triggered), nil
	})

	components := models.ScoreComponents{
		Sentiment:        sentimentScore,
		BuyPressure:      buyPressure,
		BlacklistPenalty: penalty,
		Resonance:        resonance,
	}

	total := Compose(map[string]float64{
		"sentiment":    sentimentScore,
		"buy_pressure": buyPressure,
		"blacklist":    penalty,
		"resonance":    resonance,
	}, nil)

	// 黑名单是风险信号而非证据信号，不计入置信度分母
	maxEvidence := ev.cfg.SentimentWeights.High + ev.cfg.BuyPressureWeights.High + ev.cfg.ResonanceWeights.High
	confidence := ConfidenceOf([]float64{sentimentScore, buyPressure, resonance}, maxEvidence)

	return &models.EvaluationResult{
		TotalScore: clamp(total, 0, 100),
		Components: components,
		Confidence: confidence,
		Timestamp:  now,
		Reasons:    buildReasons(components),
	}, nil
}

func validate(input Input) error {
	if input.Signal.Token == "" {
		return fmt.Errorf("%w: signal token is empty", ErrInvalidInput)
	}
	if input.Mentions == nil {
		return fmt.Errorf("%w: mentions must be non-nil", ErrInvalidInput)
	}
	if input.Trades == nil {
		return fmt.Errorf("%w: trades must be non-nil", ErrInvalidInput)
	}
	if input.Triggered == nil {
		return fmt.Errorf("%w: triggered signals must be non-nil", ErrInvalidInput)
	}
	return nil
}

// safeComponent 单分量计算的隔离层：出错或 panic 都按 0 贡献处理
func (ev *Evaluator) safeComponent(name string, fn func() (float64, error)) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			if ev.logger != nil {
				ev.logger.Error("score component panicked", "component", name, "panic", r)
			}
			score = 0
		}
	}()

	score, err := fn()
	if err != nil {
		if ev.logger != nil {
			ev.logger.Error("score component failed", "component", name, "error", err)
		}
		return 0
	}
	return score
}

// sentimentScore 当前窗口对等长前窗的提及增长率，映射为加权分后按最近提及的
// 年龄施加时间衰减。配置了 Provider 时增长率改由外部服务给出。
func (ev *Evaluator) sentimentScore(ctx context.Context, input Input, now time.Time) (float64, error) {
	window := time.Duration(ev.cfg.SentimentWindowMinutes) * time.Minute

	var growth float64
	if ev.provider != nil {
		rate, err := ev.provider.ScoreGrowth(ctx, input.Signal.Token, input.Mentions, window)
		if err != nil {
			return 0, fmt.Errorf("sentiment provider: %w", err)
		}
		growth = rate
	} else {
		totals := tdi.Aggregate(input.Mentions, now, window, window,
			func(models.RawDataItem) float64 { return 1 })
		if totals.Baseline > 0 {
			growth = (totals.Current - totals.Baseline) / totals.Baseline
		}
	}

	points := mapLevel(growth, ev.cfg.SentimentGrowthLevels, ev.cfg.SentimentWeights)
	if points == 0 {
		return 0, nil
	}

	if latest, ok := latestMention(input.Mentions); ok {
		points *= TimeDecay(latest, now, window)
	}
	return points, nil
}

// buyPressureScore 统计短窗口内的有效买单数（buy 且数量、价格为正）
func (ev *Evaluator) buyPressureScore(trades []models.TradeData, now time.Time) float64 {
	window := time.Duration(ev.cfg.BuyPressureWindowMinutes) * time.Minute
	cutoff := now.Add(-window)

	var count int
	for _, t := range trades {
		if t.Type != models.TradeBuy || t.Amount <= 0 || t.Price <= 0 {
			continue
		}
		if t.Timestamp.After(cutoff) && !t.Timestamp.After(now) {
			count++
		}
	}

	return mapLevel(float64(count), ev.cfg.BuyCountLevels, ev.cfg.BuyPressureWeights)
}

// blacklistPenalty 按严重程度取基础惩罚，再按标记天数放大
func (ev *Evaluator) blacklistPenalty(entry *models.BlacklistEntry) float64 {
	if entry == nil {
		return 0
	}

	var base float64
	switch entry.Severity {
	case models.SeverityHigh:
		base = ev.cfg.BlacklistPenalties.High
	case models.SeverityMedium:
		base = ev.cfg.BlacklistPenalties.Medium
	case models.SeverityLow:
		base = ev.cfg.BlacklistPenalties.Low
	default:
		return 0
	}

	age := entry.AgeDays
	if age < 0 {
		age = 0
	}
	return -base * (1 + age*ev.cfg.BlacklistAgeFactor)
}

// resonanceScore 去重后统计有效信号类别数，未知类别静默丢弃
func (ev *Evaluator) resonanceScore(triggered []models.TriggeredSignal) float64 {
	distinct := make(map[models.SignalKind]struct{})
	for _, s := range triggered {
		if s.Kind.Valid() {
			distinct[s.Kind] = struct{}{}
		}
	}

	return mapLevel(float64(len(distinct)), ev.cfg.ResonanceLevels, ev.cfg.ResonanceWeights)
}

// mapLevel 将数值对照阈值三元组映射为对应权重，低于 Low 为 0
func mapLevel(value float64, levels, weights Triple) float64 {
	switch {
	case value >= levels.High:
		return weights.High
	case value >= levels.Medium:
		return weights.Medium
	case value >= levels.Low:
		return weights.Low
	default:
		return 0
	}
}

func latestMention(mentions []models.RawDataItem) (time.Time, bool) {
	var latest time.Time
	for _, m := range mentions {
		if m.Timestamp.After(latest) {
			latest = m.Timestamp
		}
	}
	return latest, !latest.IsZero()
}

func buildReasons(c models.ScoreComponents) []string {
	var reasons []string
	if c.Sentiment != 0 {
		reasons = append(reasons, fmt.Sprintf("sentiment %.1f: discussion growth detected", c.Sentiment))
	}
	if c.BuyPressure != 0 {
		reasons = append(reasons, fmt.Sprintf("buy pressure %.1f: clustered buy trades", c.BuyPressure))
	}
	if c.BlacklistPenalty != 0 {
		reasons = append(reasons, fmt.Sprintf("blacklist %.1f: known risk association", c.BlacklistPenalty))
	}
	if c.Resonance != 0 {
		reasons = append(reasons, fmt.Sprintf("resonance %.1f: multiple independent signals", c.Resonance))
	}
	return reasons
}
