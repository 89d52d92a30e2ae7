package tdi

import (
	"testing"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AppendDeduplicatesByID(t *testing.T) {
	h := NewHistory()
	now := time.Now()

	h.Append(
		models.RawDataItem{ID: "a", Timestamp: now},
		models.RawDataItem{ID: "b", Timestamp: now.Add(time.Minute)},
	)
	h.Append(models.RawDataItem{ID: "a", Timestamp: now})

	assert.Equal(t, 2, h.Len())
}

func TestHistory_SnapshotIsTimeOrdered(t *testing.T) {
	h := NewHistory()
	now := time.Now()

	// 乱序写入
	h.Append(
		models.RawDataItem{ID: "c", Timestamp: now.Add(2 * time.Minute)},
		models.RawDataItem{ID: "a", Timestamp: now},
		models.RawDataItem{ID: "b", Timestamp: now.Add(time.Minute)},
	)

	snapshot := h.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "a", snapshot[0].ID)
	assert.Equal(t, "b", snapshot[1].ID)
	assert.Equal(t, "c", snapshot[2].ID)
}

func TestHistory_PruneOlderThan(t *testing.T) {
	h := NewHistory()
	now := time.Now()
	cutoff := now.Add(-7 * 24 * time.Hour)

	h.Append(
		models.RawDataItem{ID: "old", Timestamp: cutoff.Add(-time.Hour)},
		models.RawDataItem{ID: "edge", Timestamp: cutoff},
		models.RawDataItem{ID: "fresh", Timestamp: now},
	)

	h.PruneOlderThan(cutoff)

	snapshot := h.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "edge", snapshot[0].ID)
	assert.Equal(t, "fresh", snapshot[1].ID)

	// 保留项均不早于 cutoff
	for _, item := range snapshot {
		assert.False(t, item.Timestamp.Before(cutoff))
	}
}

func TestHistory_PrunedIDCanReenter(t *testing.T) {
	h := NewHistory()
	now := time.Now()

	h.Append(models.RawDataItem{ID: "x", Timestamp: now.Add(-time.Hour)})
	h.PruneOlderThan(now)
	assert.Equal(t, 0, h.Len())

	h.Append(models.RawDataItem{ID: "x", Timestamp: now})
	assert.Equal(t, 1, h.Len())
}

func TestHistory_SnapshotIsACopy(t *testing.T) {
	h := NewHistory()
	now := time.Now()

	h.Append(models.RawDataItem{ID: "a", Timestamp: now, Content: "original"})

	snapshot := h.Snapshot()
	snapshot[0].Content = "mutated"

	assert.Equal(t, "original", h.Snapshot()[0].Content)
}
