package tdi

import (
	"time"

	"github.com/songzhibin97/memepulse/internal/models"
)

// WeightFunc 将单条事件映射为一个标量贡献值
type WeightFunc func(item models.RawDataItem) float64

// WindowTotals 当前窗口与基线窗口的聚合值
type WindowTotals struct {
	Current  float64
	Baseline float64
}

// Aggregate 将事件按时间切入两个子窗口并分别加权求和。
// 当前子窗口为 (now-currentWindow, now]，基线子窗口为
// (now-baselineWindow-currentWindow, now-currentWindow]，即基线紧邻当前窗口向前延伸。
// 空窗口聚合为 0，内部不做任何除法。
func Aggregate(events []models.RawDataItem, now time.Time, currentWindow, baselineWindow time.Duration, weight WeightFunc) WindowTotals {
	var totals WindowTotals

	currentStart := now.Add(-currentWindow)
	baselineStart := currentStart.Add(-baselineWindow)

	for _, e := range events {
		switch {
		case e.Timestamp.After(currentStart) && !e.Timestamp.After(now):
			totals.Current += weight(e)
		case e.Timestamp.After(baselineStart) && !e.Timestamp.After(currentStart):
			totals.Baseline += weight(e)
		}
	}

	return totals
}

// AggregateGrouped 与 Aggregate 类似，但先按 groupKey 分组求和，
// 再按每组的乘数重新加权后汇总（TDI 用它施加平台权重）。
func AggregateGrouped(events []models.RawDataItem, now time.Time, currentWindow, baselineWindow time.Duration,
	weight WeightFunc, groupKey func(models.RawDataItem) string, groupWeight func(key string) float64) WindowTotals {

	currentStart := now.Add(-currentWindow)
	baselineStart := currentStart.Add(-baselineWindow)

	currentGroups := make(map[string]float64)
	baselineGroups := make(map[string]float64)

	for _, e := range events {
		switch {
		case e.Timestamp.After(currentStart) && !e.Timestamp.After(now):
			currentGroups[groupKey(e)] += weight(e)
		case e.Timestamp.After(baselineStart) && !e.Timestamp.After(currentStart):
			baselineGroups[groupKey(e)] += weight(e)
		}
	}

	var totals WindowTotals
	for key, sum := range currentGroups {
		totals.Current += sum * groupWeight(key)
	}
	for key, sum := range baselineGroups {
		totals.Baseline += sum * groupWeight(key)
	}

	return totals
}
