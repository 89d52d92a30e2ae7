package sentiment

import (
	"context"
	"time"

	"github.com/songzhibin97/memepulse/internal/models"
)

// Provider defines the capability to score discussion growth for a token.
type Provider interface {
	// ScoreGrowth estimates the discussion growth rate for symbol over the
	// given window based on the supplied mentions. The returned rate is a
	// relative change, e.g. 0.5 for +50%.
	ScoreGrowth(ctx context.Context, symbol string, mentions []models.RawDataItem, window time.Duration) (float64, error)
}
