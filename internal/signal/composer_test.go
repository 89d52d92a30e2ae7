package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeDecay(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	tests := []struct {
		name string
		ts   time.Time
		want float64
	}{
		{name: "future timestamp", ts: now.Add(time.Minute), want: 1},
		{name: "zero age", ts: now, want: 1},
		{name: "age equals window", ts: now.Add(-time.Hour), want: 0.5},
		{name: "very old clamps to floor", ts: now.Add(-100 * time.Hour), want: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TimeDecay(tt.ts, now, window), 1e-9)
		})
	}
}

func TestTimeDecay_Monotonic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	prev := 1.0
	for age := time.Minute; age <= 10*time.Hour; age += 30 * time.Minute {
		factor := TimeDecay(now.Add(-age), now, window)
		assert.LessOrEqual(t, factor, prev)
		assert.Greater(t, factor, 0.0)
		prev = factor
	}
}

func TestCompose(t *testing.T) {
	components := map[string]float64{
		"sentiment": 40,
		"blacklist": -30,
		"resonance": 10,
	}

	// 未给权重时按 1 计
	assert.InDelta(t, 20, Compose(components, nil), 1e-9)

	weights := map[string]float64{"sentiment": 0.5, "blacklist": 1, "resonance": 2}
	assert.InDelta(t, 10, Compose(components, weights), 1e-9)
}

func TestConfidenceOf(t *testing.T) {
	tests := []struct {
		name        string
		components  []float64
		maxPossible float64
		want        float64
	}{
		{name: "half of max", components: []float64{30, 20}, maxPossible: 100, want: 0.5},
		{name: "negative components ignored", components: []float64{50, -30}, maxPossible: 100, want: 0.5},
		{name: "capped at one", components: []float64{80, 80}, maxPossible: 100, want: 1},
		{name: "zero max avoids division", components: []float64{50}, maxPossible: 0, want: 0},
		{name: "empty components", components: nil, maxPossible: 100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ConfidenceOf(tt.components, tt.maxPossible), 1e-9)
		})
	}
}
