package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/songzhibin97/memepulse/internal/utils/request"

	"github.com/songzhibin97/memepulse/internal/models"
)

// RSSMentionSource 抓取配置的 RSS 源（新闻站、RSSHub 镜像的 Telegram 频道等）
type RSSMentionSource struct {
	feedURLs   []string
	httpClient *resty.Client
}

func NewRSSMentionSource(feedURLs []string) *RSSMentionSource {
	return &RSSMentionSource{
		feedURLs:   feedURLs,
		httpClient: request.Request,
	}
}

func (r *RSSMentionSource) Name() string {
	return "rss"
}

type rssFeed struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title       string   `xml:"title"`
			Description string   `xml:"description"`
			Link        string   `xml:"link"`
			GUID        string   `xml:"guid"`
			PubDate     string   `xml:"pubDate"`
			Categories  []string `xml:"category"`
		} `xml:"item"`
	} `xml:"channel"`
}

// FetchMentions implements the collector.MentionSource interface.
// RSS 条目不携带符号信息，全部返回，由 TDI 引擎自行做符号匹配。
func (r *RSSMentionSource) FetchMentions(ctx context.Context, symbols []string) ([]models.RawDataItem, error) {
	var items []models.RawDataItem
	var lastErr error

	for _, feedURL := range r.feedURLs {
		batch, err := r.fetchFeed(ctx, feedURL)
		if err != nil {
			lastErr = err
			continue
		}
		items = append(items, batch...)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("failed to fetch all feeds: %w", lastErr)
	}

	return items, nil
}

func (r *RSSMentionSource) fetchFeed(ctx context.Context, feedURL string) ([]models.RawDataItem, error) {
	resp, err := r.httpClient.R().SetContext(ctx).Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	items := make([]models.RawDataItem, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		id := item.GUID
		if id == "" {
			id = item.Link
		}

		timestamp := parsePubDate(item.PubDate)

		items = append(items, models.RawDataItem{
			ID:        "rss:" + id,
			Content:   item.Title + " " + item.Description,
			Timestamp: timestamp,
			Source:    "rss",
			Hashtags:  item.Categories,
		})
	}

	return items, nil
}

// parsePubDate RSS 的时间格式不统一，逐个尝试常见格式，全部失败时取当前时间
func parsePubDate(raw string) time.Time {
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, raw); err == nil {
			return t
		}
	}
	return time.Now()
}
