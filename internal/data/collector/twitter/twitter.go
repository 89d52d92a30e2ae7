package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/songzhibin97/memepulse/internal/utils/request"

	"github.com/songzhibin97/memepulse/internal/models"
)

// TwitterMentionSource 通过 Twitter v2 recent search 拉取代币提及
type TwitterMentionSource struct {
	baseURL     string
	bearerToken string
	httpClient  *resty.Client
}

func NewTwitterMentionSource(bearerToken string) *TwitterMentionSource {
	return &TwitterMentionSource{
		baseURL:     "https://api.twitter.com",
		bearerToken: bearerToken,
		httpClient:  request.Request,
	}
}

func (t *TwitterMentionSource) Name() string {
	return "twitter"
}

type searchResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		CreatedAt     time.Time `json:"created_at"`
		PublicMetrics struct {
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
			LikeCount    int `json:"like_count"`
			QuoteCount   int `json:"quote_count"`
		} `json:"public_metrics"`
		Entities struct {
			Hashtags []struct {
				Tag string `json:"tag"`
			} `json:"hashtags"`
		} `json:"entities"`
	} `json:"data"`
}

// FetchMentions implements the collector.MentionSource interface
func (t *TwitterMentionSource) FetchMentions(ctx context.Context, symbols []string) ([]models.RawDataItem, error) {
	var items []models.RawDataItem

	for _, symbol := range symbols {
		batch, err := t.searchSymbol(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to search mentions for %s: %w", symbol, err)
		}
		items = append(items, batch...)
	}

	return items, nil
}

func (t *TwitterMentionSource) searchSymbol(ctx context.Context, symbol string) ([]models.RawDataItem, error) {
	url := fmt.Sprintf("%s/2/tweets/search/recent", t.baseURL)

	resp, err := t.httpClient.R().
		SetContext(ctx).
		SetAuthToken(t.bearerToken).
		SetQueryParams(map[string]string{
			"query":        fmt.Sprintf("(%s OR $%s OR #%s) -is:retweet", symbol, symbol, symbol),
			"tweet.fields": "created_at,public_metrics,entities",
			"max_results":  "50",
		}).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	var result searchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]models.RawDataItem, 0, len(result.Data))
	for _, tweet := range result.Data {
		hashtags := make([]string, 0, len(tweet.Entities.Hashtags))
		for _, h := range tweet.Entities.Hashtags {
			hashtags = append(hashtags, h.Tag)
		}

		items = append(items, models.RawDataItem{
			ID:        "twitter:" + tweet.ID,
			Content:   tweet.Text,
			Timestamp: tweet.CreatedAt,
			Source:    "twitter",
			Engagement: models.Engagement{
				Likes:    tweet.PublicMetrics.LikeCount,
				Shares:   tweet.PublicMetrics.RetweetCount + tweet.PublicMetrics.QuoteCount,
				Comments: tweet.PublicMetrics.ReplyCount,
			},
			Hashtags: hashtags,
		})
	}

	return items, nil
}
