package signal

import (
	"time"
)

// 衰减因子下限，避免过旧输入完全归零
const decayFloor = 0.1

// TimeDecay 按输入年龄计算衰减因子，取值 (0,1]。
// 未来或当下的时间戳不衰减，之后随年龄单调递减：1/(1+age/decayWindow)，
// 下限钳制在 0.1。
func TimeDecay(ts, now time.Time, decayWindow time.Duration) float64 {
	age := now.Sub(ts)
	if age <= 0 || decayWindow <= 0 {
		return 1
	}

	factor := 1 / (1 + age.Seconds()/decayWindow.Seconds())
	if factor < decayFloor {
		factor = decayFloor
	}
	return factor
}

// Compose 纯加权求和，未给权重的分量按 1 计
func Compose(components map[string]float64, weights map[string]float64) float64 {
	var total float64
	for name, value := range components {
		weight, ok := weights[name]
		if !ok {
			weight = 1
		}
		total += value * weight
	}
	return total
}

// ConfidenceOf 正分量之和相对最大可能值的占比，封顶 1。
// maxPossible 非正时返回 0，不做除法。
func ConfidenceOf(components []float64, maxPossible float64) float64 {
	if maxPossible <= 0 {
		return 0
	}

	var sum float64
	for _, c := range components {
		if c > 0 {
			sum += c
		}
	}

	confidence := sum / maxPossible
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
