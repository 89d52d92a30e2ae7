package models

import "time"

// Engagement 单条内容的互动指标（提及本身隐含计 1 次）
type Engagement struct {
	Likes    int `json:"likes"`
	Shares   int `json:"shares"`
	Comments int `json:"comments"`
}

// RawDataItem 一条原始社交提及/帖子，由采集器产生，引擎只读
type RawDataItem struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Source     string     `json:"source"` // twitter, telegram, discord, rss 等
	Engagement Engagement `json:"engagement"`
	Hashtags   []string   `json:"hashtags"`
}

// TDIStatus 讨论热度状态分类
type TDIStatus string

const (
	StatusSilent    TDIStatus = "silent"
	StatusBrewing   TDIStatus = "brewing"
	StatusSurging   TDIStatus = "surging"
	StatusPeaked    TDIStatus = "peaked"
	StatusDeclining TDIStatus = "declining"
)

// TDIResult 单个代币单次扫描的话题讨论指数结果
type TDIResult struct {
	Symbol          string             `json:"symbol"`
	CurrentValue    float64            `json:"current_value"`
	BaselineValue   float64            `json:"baseline_value"`
	GrowthRate      float64            `json:"growth_rate"`
	ZScore          float64            `json:"z_score"`
	Status          TDIStatus          `json:"status"`
	Confidence      float64            `json:"confidence"`
	SourceBreakdown map[string]float64 `json:"source_breakdown"`
	WindowStart     time.Time          `json:"window_start"`
	WindowEnd       time.Time          `json:"window_end"`
}

// TradeType 交易方向
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// TradeData 一笔上游交易事实，评估器只读
type TradeData struct {
	Type      TradeType `json:"type"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// BlacklistSeverity 黑名单严重程度
type BlacklistSeverity string

const (
	SeverityLow    BlacklistSeverity = "low"
	SeverityMedium BlacklistSeverity = "medium"
	SeverityHigh   BlacklistSeverity = "high"
)

// BlacklistEntry 代币的黑名单记录，AgeDays 为首次标记至今的天数
type BlacklistEntry struct {
	Severity BlacklistSeverity `json:"severity"`
	Reason   string            `json:"reason"`
	AgeDays  float64           `json:"age_days"`
}

// SignalKind 已触发信号的封闭类别集合
type SignalKind string

const (
	SignalPriceSpike   SignalKind = "price_spike"
	SignalVolumeSpike  SignalKind = "volume_spike"
	SignalTokenBurn    SignalKind = "token_burn"
	SignalLargeBuy     SignalKind = "large_buy"
	SignalSocialUpdate SignalKind = "social_update"
)

// Valid reports whether the kind belongs to the known signal set.
func (k SignalKind) Valid() bool {
	switch k {
	case SignalPriceSpike, SignalVolumeSpike, SignalTokenBurn, SignalLargeBuy, SignalSocialUpdate:
		return true
	}
	return false
}

// SignalData 信号负载的标记接口，每种信号类别对应一个具体负载类型
type SignalData interface {
	signalData()
}

// PriceData 价格类信号负载
type PriceData struct {
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// VolumeData 成交量类信号负载
type VolumeData struct {
	Volume float64 `json:"volume"`
}

// BurnData 销毁类信号负载
type BurnData struct {
	Amount float64 `json:"amount"`
}

// SocialUpdateData 社交动态类信号负载
type SocialUpdateData struct {
	Platform string `json:"platform"`
	Content  string `json:"content"`
}

func (PriceData) signalData()        {}
func (VolumeData) signalData()       {}
func (BurnData) signalData()         {}
func (SocialUpdateData) signalData() {}

// TriggeredSignal 上游已触发的信号事实
type TriggeredSignal struct {
	Kind SignalKind `json:"kind"`
	Data SignalData `json:"-"`
}

// ScoreComponents 各评分分量，BlacklistPenalty 恒 ≤ 0
type ScoreComponents struct {
	Sentiment        float64 `json:"sentiment"`
	BuyPressure      float64 `json:"buy_pressure"`
	BlacklistPenalty float64 `json:"blacklist_penalty"`
	Resonance        float64 `json:"resonance"`
}

// EvaluationResult 单次信号评估结果
type EvaluationResult struct {
	TotalScore float64         `json:"total_score"`
	Components ScoreComponents `json:"components"`
	Confidence float64         `json:"confidence"`
	Timestamp  time.Time       `json:"timestamp"`
	Reasons    []string        `json:"reasons"`
}
