package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"
)

// MultiSourceCollector implements SignalCollector interface by aggregating multiple mention sources
type MultiSourceCollector struct {
	sources []MentionSource
	logger  Logger
}

type Logger interface {
	Error(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
}

type MentionSource interface {
	Name() string
	FetchMentions(ctx context.Context, symbols []string) ([]models.RawDataItem, error)
}

func NewMultiSourceCollector(sources []MentionSource, logger Logger) *MultiSourceCollector {
	return &MultiSourceCollector{
		sources: sources,
		logger:  logger,
	}
}

// CollectMentions implements SignalCollector interface.
// 各数据源并发拉取，结果按 ID 去重合并；全部失败时才报错，
// 来源正常但没有提及属于合法的安静市场，返回空集。
func (c *MultiSourceCollector) CollectMentions(ctx context.Context, symbols []string) ([]models.RawDataItem, error) {
	var mu sync.Mutex
	var wg sync.WaitGroup

	seen := make(map[string]struct{})
	merged := []models.RawDataItem{}
	var failed int

	for _, source := range c.sources {
		wg.Add(1)
		go func(src MentionSource) {
			defer wg.Done()

			items, err := src.FetchMentions(ctx, symbols)
			if err != nil {
				c.logger.Error("failed to fetch mentions", "source", src.Name(), "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			mu.Lock()
			for _, item := range items {
				if _, ok := seen[item.ID]; ok {
					continue
				}
				seen[item.ID] = struct{}{}
				merged = append(merged, item)
			}
			mu.Unlock()

			c.logger.Info("fetched mentions", "source", src.Name(), "count", len(items))
		}(source)
	}

	wg.Wait()

	if len(c.sources) > 0 && failed == len(c.sources) {
		return nil, fmt.Errorf("failed to collect mentions from all sources")
	}

	return merged, nil
}

// SubscribeToMentions implements SignalCollector interface
func (c *MultiSourceCollector) SubscribeToMentions(ctx context.Context, symbols []string, refreshInterval time.Duration) (<-chan []models.RawDataItem, error) {
	out := make(chan []models.RawDataItem, 16)

	go func() {
		defer close(out)

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				items, err := c.CollectMentions(ctx, symbols)
				if err != nil {
					c.logger.Error("failed to collect mentions", "error", err)
					continue
				}

				select {
				case out <- items:
				default:
					c.logger.Error("channel full, dropping mention batch", "count", len(items))
				}
			}
		}
	}()

	return out, nil
}
