package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/songzhibin97/memepulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestProvider(t *testing.T, content string) (*httptest.Server, *Provider) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
            "choices": [{"message": {"role": "assistant", "content": ` + content + `}}]
        }`))
	}))

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	config.HTTPClient = server.Client()

	provider := NewProvider("test-key", "gpt-4")
	provider.client = openai.NewClientWithConfig(config)

	return server, provider
}

func TestProvider_ScoreGrowth(t *testing.T) {
	server, provider := setupTestProvider(t, `"{\"growth_rate\": 0.42}"`)
	defer server.Close()

	mentions := []models.RawDataItem{
		{ID: "1", Content: "$PEPE is trending", Source: "twitter", Timestamp: time.Now()},
	}

	rate, err := provider.ScoreGrowth(context.Background(), "PEPE", mentions, time.Hour)
	require.NoError(t, err)
	assert.InDelta(t, 0.42, rate, 1e-9)
}

func TestProvider_ScoreGrowth_MalformedResponse(t *testing.T) {
	server, provider := setupTestProvider(t, `"definitely going up"`)
	defer server.Close()

	_, err := provider.ScoreGrowth(context.Background(), "PEPE", nil, time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse growth results")
}
