package ai

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/config"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

func intPtr(v int) *int { return &v }

func TestReasoningEffortMapping(t *testing.T) {
	assert.Equal(t, "", reasoningEffort(nil))
	assert.Equal(t, "", reasoningEffort(intPtr(0)))
	assert.Equal(t, "low", reasoningEffort(intPtr(512)))
	assert.Equal(t, "low", reasoningEffort(intPtr(1024)))
	assert.Equal(t, "medium", reasoningEffort(intPtr(2048)))
	assert.Equal(t, "medium", reasoningEffort(intPtr(8192)))
	assert.Equal(t, "high", reasoningEffort(intPtr(16384)))
}

func TestClassifyOpenAIErrorQuota(t *testing.T) {
	err := classifyOpenAIError(&openaigo.APIError{
		HTTPStatusCode: http.StatusTooManyRequests,
		Message:        "rate limit reached",
	})

	var provErr *models.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, models.ProviderErrQuota, provErr.Kind)
}

func TestClassifyOpenAIErrorPolicy(t *testing.T) {
	err := classifyOpenAIError(&openaigo.APIError{
		HTTPStatusCode: http.StatusBadRequest,
		Type:           "content_policy_violation",
		Message:        "rejected by content policy",
	})

	var provErr *models.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, models.ProviderErrPolicy, provErr.Kind)
}

func TestClassifyOpenAIErrorTransportFallback(t *testing.T) {
	err := classifyOpenAIError(errors.New("connection refused"))

	var provErr *models.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, models.ProviderErrTransport, provErr.Kind)
}

func TestRawSchemaMarshalsAsPlainObject(t *testing.T) {
	s := rawSchema{"type": "object", "required": []string{"title"}}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "object", decoded["type"])
}

func TestNewAIClientFactory(t *testing.T) {
	cfg := &config.Config{
		AIClientType: "OpenAI",
		AIBaseURL:    "https://api.openai.com/v1",
		AIModel:      "gpt-4o-mini",
		AIAPIKey:     "test-key",
		AITimeout:    30 * time.Second,
	}

	client, err := NewAIClient(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &openAIClient{}, client)

	cfg.AIClientType = "ollama"
	cfg.AIBaseURL = "http://localhost:11434/v1"
	client, err = NewAIClient(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ollamaClient{}, client)

	cfg.AIClientType = "anthropic"
	_, err = NewAIClient(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestParamDefaults(t *testing.T) {
	assert.Equal(t, float32(1.0), float32Val(nil))
	temp := 0.7
	assert.InDelta(t, 0.7, float64(float32Val(&temp)), 0.0001)
	assert.Equal(t, 0, intVal(nil))
	assert.Equal(t, 4096, intVal(intPtr(4096)))
}
