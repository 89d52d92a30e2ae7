package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/songzhibin97/memepulse/internal/models"
)

// 送入提示词的提及条数上限，避免超出上下文
const maxPromptMentions = 50

// Provider implements the sentiment.Provider interface using OpenAI
type Provider struct {
	client *openai.Client
	model  string
}

// NewProvider creates a new OpenAI sentiment provider instance
func NewProvider(apiKey string, model string) *Provider {
	client := openai.NewClient(apiKey)
	if model == "" {
		model = openai.GPT4 // 默认使用GPT-4
	}
	return &Provider{
		client: client,
		model:  model,
	}
}

// ScoreGrowth implements the sentiment.Provider interface
func (p *Provider) ScoreGrowth(ctx context.Context, symbol string, mentions []models.RawDataItem, window time.Duration) (float64, error) {
	var sb strings.Builder
	count := len(mentions)
	if count > maxPromptMentions {
		mentions = mentions[count-maxPromptMentions:]
	}
	for _, m := range mentions {
		sb.WriteString(fmt.Sprintf("[%s][%s] %s\n",
			m.Timestamp.Format("2006-01-02 15:04:05"), m.Source, m.Content))
	}

	prompt := fmt.Sprintf(`以下是关于代币 %s 最近的社交媒体提及（共 %d 条，窗口 %s）：

%s

请评估该代币讨论热度的增长率：当前窗口相对于前一个等长窗口的相对变化。
例如 0.5 表示增长 50%%，-0.2 表示下降 20%%，0 表示无变化。

输出格式为JSON:
{
    "growth_rate": float
}`, symbol, count, window, sb.String())

	resp, err := p.createChatCompletion(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("failed to score growth: %w", err)
	}

	var result struct {
		GrowthRate float64 `json:"growth_rate"`
	}

	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return 0, fmt.Errorf("failed to parse growth results: %w", err)
	}

	return result.GrowthRate, nil
}

// createChatCompletion is a helper function to make OpenAI API calls
func (p *Provider) createChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "你是一个专业的加密货币社交数据分析师，擅长评估代币讨论热度的变化趋势。请始终以JSON格式返回分析结果。",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3, // 使用较低的temperature以获得更稳定的输出
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
