package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSource struct {
	name  string
	items []models.RawDataItem
	err   error
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) FetchMentions(ctx context.Context, symbols []string) ([]models.RawDataItem, error) {
	return f.items, f.err
}

func TestMultiSourceCollector_CollectMentions_MergesAndDeduplicates(t *testing.T) {
	now := time.Now()

	c := NewMultiSourceCollector([]MentionSource{
		fakeSource{name: "a", items: []models.RawDataItem{
			{ID: "1", Timestamp: now},
			{ID: "2", Timestamp: now},
		}},
		fakeSource{name: "b", items: []models.RawDataItem{
			{ID: "2", Timestamp: now}, // 跨源重复
			{ID: "3", Timestamp: now},
		}},
	}, testLogger)

	items, err := c.CollectMentions(context.Background(), []string{"PEPE"})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestMultiSourceCollector_CollectMentions_ToleratesPartialFailure(t *testing.T) {
	now := time.Now()

	c := NewMultiSourceCollector([]MentionSource{
		fakeSource{name: "broken", err: errors.New("boom")},
		fakeSource{name: "ok", items: []models.RawDataItem{{ID: "1", Timestamp: now}}},
	}, testLogger)

	items, err := c.CollectMentions(context.Background(), []string{"PEPE"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMultiSourceCollector_CollectMentions_QuietMarketIsNotAnError(t *testing.T) {
	c := NewMultiSourceCollector([]MentionSource{
		fakeSource{name: "a"},
		fakeSource{name: "b"},
	}, testLogger)

	items, err := c.CollectMentions(context.Background(), []string{"PEPE"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMultiSourceCollector_CollectMentions_AllSourcesFail(t *testing.T) {
	c := NewMultiSourceCollector([]MentionSource{
		fakeSource{name: "a", err: errors.New("boom")},
		fakeSource{name: "b", err: errors.New("boom")},
	}, testLogger)

	_, err := c.CollectMentions(context.Background(), []string{"PEPE"})
	require.Error(t, err)
}

func TestMultiSourceCollector_SubscribeToMentions_DeliversBatches(t *testing.T) {
	now := time.Now()

	c := NewMultiSourceCollector([]MentionSource{
		fakeSource{name: "a", items: []models.RawDataItem{{ID: "1", Timestamp: now}}},
	}, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.SubscribeToMentions(ctx, []string{"PEPE"}, 10*time.Millisecond)
	require.NoError(t, err)

	select {
	case batch := <-ch:
		assert.Len(t, batch, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for mention batch")
	}

	cancel()
	// 取消后通道应当关闭
	for range ch {
	}
}
