package tdi

import (
	"sort"
	"sync"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"
)

// History 单个代币的滚动历史存储
type History interface {
	// Append adds items to the history, ignoring IDs already present.
	Append(items ...models.RawDataItem)

	// PruneOlderThan drops all items with timestamp before cutoff.
	PruneOlderThan(cutoff time.Time)

	// Snapshot returns a time-ordered copy of the retained items.
	Snapshot() []models.RawDataItem

	// Len returns the number of retained items.
	Len() int
}

// timeOrderedHistory 按时间排序的有界历史，写入按 ID 去重。
// 每个代币持有独立实例，内部锁保证单代币写入不交错。
type timeOrderedHistory struct {
	mu    sync.Mutex
	items []models.RawDataItem
	seen  map[string]struct{}
}

// NewHistory creates an empty rolling history.
func NewHistory() History {
	return &timeOrderedHistory{
		seen: make(map[string]struct{}),
	}
}

func (h *timeOrderedHistory) Append(items ...models.RawDataItem) {
	h.mu.Lock()
	defer h.mu.Unlock()

	added := false
	for _, item := range items {
		if _, ok := h.seen[item.ID]; ok {
			continue
		}
		h.seen[item.ID] = struct{}{}
		h.items = append(h.items, item)
		added = true
	}

	if added {
		sort.SliceStable(h.items, func(i, j int) bool {
			return h.items[i].Timestamp.Before(h.items[j].Timestamp)
		})
	}
}

func (h *timeOrderedHistory) PruneOlderThan(cutoff time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// items 已按时间排序，找到第一个保留位置即可
	idx := sort.Search(len(h.items), func(i int) bool {
		return !h.items[i].Timestamp.Before(cutoff)
	})
	if idx == 0 {
		return
	}

	for _, dropped := range h.items[:idx] {
		delete(h.seen, dropped.ID)
	}
	h.items = append([]models.RawDataItem(nil), h.items[idx:]...)
}

func (h *timeOrderedHistory) Snapshot() []models.RawDataItem {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.RawDataItem, len(h.items))
	copy(out, h.items)
	return out
}

func (h *timeOrderedHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}
