package configs

import (
	"github.com/songzhibin97/memepulse/internal/signal"
	"github.com/songzhibin97/memepulse/internal/tdi"
)

type Config struct {
	// 基础配置
	Symbols         []string `json:"symbols" yaml:"symbols"`                   // 跟踪的代币列表
	RefreshInterval string   `json:"refresh_interval" yaml:"refresh_interval"` // 扫描间隔
	Proxy           string   `json:"proxy" yaml:"proxy"`

	Database Database `json:"database" yaml:"database"`

	// TDI 引擎参数
	TDI tdi.Config `json:"tdi" yaml:"tdi"`

	// 信号评估参数
	Evaluator signal.Config `json:"evaluator" yaml:"evaluator"`

	// 情绪服务参数
	Sentiment SentimentConfig `json:"sentiment" yaml:"sentiment"`

	// 数据源配置
	Sources SourcesConfig `json:"sources" yaml:"sources"`

	// 交易所配置
	Exchange ExchangeConfig `json:"exchange" yaml:"exchange"`
}

type SentimentConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`   // 是否启用外部情绪服务
	APIKey  string `json:"api_key" yaml:"api_key"`   // AI服务API密钥
	Model   string `json:"model" yaml:"model"`       // AI模型类型
}

type SourcesConfig struct {
	TwitterBearerToken string   `json:"twitter_bearer_token" yaml:"twitter_bearer_token"`
	RSSFeeds           []string `json:"rss_feeds" yaml:"rss_feeds"`
}

type Database struct {
	ConnStr string `json:"conn_str" yaml:"conn_str"` // 数据库连接字符串
}

type ExchangeConfig struct {
	Debug     bool   `json:"debug" yaml:"debug"`
	APIKey    string `json:"api_key" yaml:"api_key"`       // 交易所API密钥
	SecretKey string `json:"secret_key" yaml:"secret_key"` // 交易所密钥
}
