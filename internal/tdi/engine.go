package tdi

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"
)

// 历史保留时长，超出即剪除
const historyRetention = 7 * 24 * time.Hour

// z-score 需要的最小历史条数
const minHistoryForZScore = 10

// z-score 计算时历史切分的块数
const zScoreChunks = 10

// Logger 引擎使用的日志接口，由调用方注入
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// EngagementWeights 互动指标权重，均为非负
type EngagementWeights struct {
	Mentions float64 `json:"mentions" yaml:"mentions"`
	Likes    float64 `json:"likes" yaml:"likes"`
	Shares   float64 `json:"shares" yaml:"shares"`
	Comments float64 `json:"comments" yaml:"comments"`
}

// Thresholds 状态分类阈值
type Thresholds struct {
	BrewingGrowthRate float64 `json:"brewing_growth_rate" yaml:"brewing_growth_rate"`
	SurgingGrowthRate float64 `json:"surging_growth_rate" yaml:"surging_growth_rate"`
	BrewingZScore     float64 `json:"brewing_z_score" yaml:"brewing_z_score"`
	SurgingZScore     float64 `json:"surging_z_score" yaml:"surging_z_score"`
}

// Config TDI 引擎配置，构造后不可变
type Config struct {
	CurrentWindowMinutes int                `json:"current_window_minutes" yaml:"current_window_minutes"`
	BaselineWindowHours  int                `json:"baseline_window_hours" yaml:"baseline_window_hours"`
	PlatformWeights      map[string]float64 `json:"platform_weights" yaml:"platform_weights"`
	EngagementWeights    EngagementWeights  `json:"engagement_weights" yaml:"engagement_weights"`
	Thresholds           Thresholds         `json:"thresholds" yaml:"thresholds"`
}

// DefaultConfig returns the engine configuration with default windows and weights.
func DefaultConfig() Config {
	return Config{
		CurrentWindowMinutes: 10,
		BaselineWindowHours:  6,
		EngagementWeights: EngagementWeights{
			Mentions: 1.0,
			Likes:    0.1,
			Shares:   0.3,
			Comments: 0.2,
		},
		Thresholds: Thresholds{
			BrewingGrowthRate: 0.3,
			SurgingGrowthRate: 1.0,
			BrewingZScore:     1.5,
			SurgingZScore:     2.5,
		},
	}
}

// withDefaults 对零值字段回填默认配置
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CurrentWindowMinutes <= 0 {
		c.CurrentWindowMinutes = def.CurrentWindowMinutes
	}
	if c.BaselineWindowHours <= 0 {
		c.BaselineWindowHours = def.BaselineWindowHours
	}
	if c.EngagementWeights == (EngagementWeights{}) {
		c.EngagementWeights = def.EngagementWeights
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = def.Thresholds
	}
	return c
}

// Engine 话题讨论指数引擎，按代币维护滚动历史
type Engine struct {
	cfg    Config
	logger Logger

	mu        sync.Mutex
	histories map[string]History
}

// NewEngine creates a TDI engine with the given configuration and logger.
func NewEngine(cfg Config, logger Logger) *Engine {
	return &Engine{
		cfg:       cfg.withDefaults(),
		logger:    logger,
		histories: make(map[string]History),
	}
}

// CalculateTDI 为每个跟踪代币计算一次讨论指数。
// 无匹配事件的代币返回全零的 silent 结果，不报错。
// 结果按 0.6*growthRate + 0.4*zScore 降序排列。
func (e *Engine) CalculateTDI(events []models.RawDataItem, trackedSymbols []string, now time.Time) []models.TDIResult {
	currentWindow := time.Duration(e.cfg.CurrentWindowMinutes) * time.Minute
	baselineWindow := time.Duration(e.cfg.BaselineWindowHours) * time.Hour

	results := make([]models.TDIResult, 0, len(trackedSymbols))

	for _, symbol := range trackedSymbols {
		matched := FilterBySymbol(events, symbol)

		history := e.historyFor(symbol)
		history.Append(matched...)
		history.PruneOlderThan(now.Add(-historyRetention))
		retained := history.Snapshot()

		totals := AggregateGrouped(retained, now, currentWindow, baselineWindow,
			e.eventWeight,
			func(item models.RawDataItem) string { return item.Source },
			e.platformWeight,
		)

		growthRate := 0.0
		if totals.Baseline > 0 {
			growthRate = (totals.Current - totals.Baseline) / totals.Baseline
		}

		zScore := e.zScore(retained, totals.Current)

		results = append(results, models.TDIResult{
			Symbol:          symbol,
			CurrentValue:    totals.Current,
			BaselineValue:   totals.Baseline,
			GrowthRate:      growthRate,
			ZScore:          zScore,
			Status:          e.classify(growthRate, zScore),
			Confidence:      e.confidence(retained),
			SourceBreakdown: e.sourceBreakdown(retained, now, currentWindow),
			WindowStart:     now.Add(-currentWindow),
			WindowEnd:       now,
		})
	}

	// 按综合爆发优先级排序
	sort.SliceStable(results, func(i, j int) bool {
		return surgePriority(results[i]) > surgePriority(results[j])
	})

	if e.logger != nil {
		e.logger.Info("tdi scan complete", "symbols", len(trackedSymbols), "events", len(events))
	}

	return results
}

func surgePriority(r models.TDIResult) float64 {
	return 0.6*r.GrowthRate + 0.4*r.ZScore
}

func (e *Engine) historyFor(symbol string) History {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.histories[symbol]
	if !ok {
		h = NewHistory()
		e.histories[symbol] = h
	}
	return h
}

// FilterBySymbol 子串匹配代币及其变体（$SYMBOL、#symbol、大小写变体），
// 不区分大小写。模糊的部分匹配会被接受，属于已知局限。
// 调用方做单代币评估前应先用它收窄混合批次，避免跨代币串扰。
func FilterBySymbol(events []models.RawDataItem, symbol string) []models.RawDataItem {
	lower := strings.ToLower(symbol)
	variants := []string{lower, "$" + lower, "#" + lower}

	matched := []models.RawDataItem{}
	for _, e := range events {
		content := strings.ToLower(e.Content)
		hit := false
		for _, v := range variants {
			if strings.Contains(content, v) {
				hit = true
				break
			}
		}
		if !hit {
			for _, tag := range e.Hashtags {
				if strings.Contains(strings.ToLower(tag), lower) {
					hit = true
					break
				}
			}
		}
		if hit {
			matched = append(matched, e)
		}
	}
	return matched
}

// eventWeight 单条事件的互动加权贡献（提及隐含计 1）
func (e *Engine) eventWeight(item models.RawDataItem) float64 {
	w := e.cfg.EngagementWeights
	return w.Mentions +
		w.Likes*float64(item.Engagement.Likes) +
		w.Shares*float64(item.Engagement.Shares) +
		w.Comments*float64(item.Engagement.Comments)
}

// platformWeight 未配置的平台权重默认为 1
func (e *Engine) platformWeight(platform string) float64 {
	if w, ok := e.cfg.PlatformWeights[platform]; ok {
		return w
	}
	return 1.0
}

// heatOf 一组事件的平台加权热度（不做窗口切分）
func (e *Engine) heatOf(events []models.RawDataItem) float64 {
	perPlatform := make(map[string]float64)
	for _, item := range events {
		perPlatform[item.Source] += e.eventWeight(item)
	}

	var total float64
	for platform, sum := range perPlatform {
		total += sum * e.platformWeight(platform)
	}
	return total
}

// zScore 历史不足 10 条时返回 0。历史切成 10 个大致等长的连续块，
// 逐块计算热度后取均值/标准差。标准差为 0 时返回 0。
func (e *Engine) zScore(history []models.RawDataItem, currentTDI float64) float64 {
	n := len(history)
	if n < minHistoryForZScore {
		return 0
	}

	heats := make([]float64, 0, zScoreChunks)
	for i := 0; i < zScoreChunks; i++ {
		start := i * n / zScoreChunks
		end := (i + 1) * n / zScoreChunks
		heats = append(heats, e.heatOf(history[start:end]))
	}

	var mean float64
	for _, h := range heats {
		mean += h
	}
	mean /= float64(len(heats))

	var variance float64
	for _, h := range heats {
		variance += (h - mean) * (h - mean)
	}
	variance /= float64(len(heats))

	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}
	return (currentTDI - mean) / stddev
}

// classify 按优先级分类：surging > brewing > declining > peaked > silent
func (e *Engine) classify(growthRate, zScore float64) models.TDIStatus {
	t := e.cfg.Thresholds
	switch {
	case growthRate >= t.SurgingGrowthRate || zScore >= t.SurgingZScore:
		return models.StatusSurging
	case growthRate >= t.BrewingGrowthRate || zScore >= t.BrewingZScore:
		return models.StatusBrewing
	case growthRate < -0.3:
		return models.StatusDeclining
	case growthRate > 0.1:
		return models.StatusPeaked
	default:
		return models.StatusSilent
	}
}

// confidence 0.7 取决于事件量（50 封顶），0.3 取决于平台多样性（3 封顶）
func (e *Engine) confidence(history []models.RawDataItem) float64 {
	platforms := make(map[string]struct{})
	for _, item := range history {
		platforms[item.Source] = struct{}{}
	}

	volume := math.Min(1, float64(len(history))/50.0)
	diversity := math.Min(1, float64(len(platforms))/3.0)
	return 0.7*volume + 0.3*diversity
}

// sourceBreakdown 仅统计当前窗口内各平台的热度贡献
func (e *Engine) sourceBreakdown(history []models.RawDataItem, now time.Time, currentWindow time.Duration) map[string]float64 {
	breakdown := make(map[string]float64)
	currentStart := now.Add(-currentWindow)

	for _, item := range history {
		if item.Timestamp.After(currentStart) && !item.Timestamp.After(now) {
			breakdown[item.Source] += e.eventWeight(item)
		}
	}
	for platform := range breakdown {
		breakdown[platform] *= e.platformWeight(platform)
	}
	return breakdown
}
