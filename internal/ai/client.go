// Package ai wraps the generation providers behind a single interface. Every
// pipeline phase issues exactly one request through it; retry policy, if any,
// belongs to the caller.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/config"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

const (
	pricePerMillionInputTokensUSD  = 0.1
	pricePerMillionOutputTokensUSD = 0.4
)

// ErrGenerationFailed marks any failure to obtain generated text.
var ErrGenerationFailed = errors.New("AI text generation failed")

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status", "phase"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forge_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. 256s
		},
		[]string{"model", "phase"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forge_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.ExponentialBuckets(256, 2, 9), // 256, 512, ..., 65536
		},
		[]string{"model", "phase"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forge_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.ExponentialBuckets(256, 2, 9), // 256, 512, ..., 65536
		},
		[]string{"model", "phase"},
	)
	aiEstimatedCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of AI requests in USD.",
		},
		[]string{"model", "phase"},
	)
)

// GenerationParams tunes a single request. Pointer fields distinguish an
// explicit zero from an absent value.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
	ThinkBudget *int
}

// UsageInfo reports token consumption and estimated cost for one request.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// Request is one schema-constrained generation call. Schema may be nil for
// free-form output; when set, SchemaName must name it.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       map[string]interface{}
	Params       GenerationParams
}

// AIClient is the provider capability the pipeline is constructed with. The
// phase argument labels logs and metrics only; it never changes behavior.
type AIClient interface {
	Generate(ctx context.Context, phase string, req Request) (string, UsageInfo, error)
}

func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

// rawSchema adapts a schema map to the json.Marshaler the OpenAI response
// format field expects.
type rawSchema map[string]interface{}

func (s rawSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(s))
}

// reasoningEffort maps a token think budget onto the coarse effort levels the
// OpenAI API accepts. Absent or non-positive budgets leave the field unset.
func reasoningEffort(budget *int) string {
	if budget == nil || *budget <= 0 {
		return ""
	}
	switch {
	case *budget <= 1024:
		return "low"
	case *budget <= 8192:
		return "medium"
	default:
		return "high"
	}
}

// --- OpenAI client ---

type openAIClient struct {
	client *openaigo.Client
	model  string
	log    *zap.Logger
}

func (c *openAIClient) Generate(ctx context.Context, phase string, req Request) (string, UsageInfo, error) {
	usage := UsageInfo{}

	if strings.TrimSpace(req.SystemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "phase": phase}).Inc()
		return "", usage, fmt.Errorf("%w: system prompt is empty", ErrGenerationFailed)
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: req.SystemPrompt},
	}
	if req.UserPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: req.UserPrompt,
		})
	}

	chatReq := openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32Val(req.Params.Temperature),
		MaxTokens:   intVal(req.Params.MaxTokens),
		TopP:        float32Val(req.Params.TopP),
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openaigo.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Schema: rawSchema(req.Schema),
				// Strict mode rejects optional fields; our schemas carry them.
				Strict: false,
			},
		}
	}
	if effort := reasoningEffort(req.Params.ThinkBudget); effort != "" {
		chatReq.ReasoningEffort = effort
	}

	startTime := time.Now()
	c.log.Debug("sending request to OpenAI",
		zap.String("model", c.model),
		zap.String("phase", phase),
		zap.Int("system_prompt_bytes", len(req.SystemPrompt)),
		zap.Int("user_prompt_bytes", len(req.UserPrompt)))

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(startTime)

	if err != nil {
		c.log.Error("OpenAI request failed",
			zap.String("phase", phase),
			zap.Duration("duration", duration),
			zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "phase": phase}).Inc()
		return "", usage, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.log.Error("OpenAI returned an empty response",
			zap.String("phase", phase),
			zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response", "phase": phase}).Inc()
		return "", usage, models.NewProviderError(models.ProviderErrTransport,
			fmt.Errorf("%w: empty response received", ErrGenerationFailed))
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success", "phase": phase}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "phase": phase}).Observe(duration.Seconds())

	generatedText := resp.Choices[0].Message.Content
	c.log.Debug("OpenAI response received",
		zap.String("phase", phase),
		zap.Duration("duration", duration),
		zap.Int("response_chars", len(generatedText)))

	if resp.Usage.TotalTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model, "phase": phase}).Observe(float64(resp.Usage.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model, "phase": phase}).Observe(float64(resp.Usage.CompletionTokens))

		usage.PromptTokens = resp.Usage.PromptTokens
		usage.CompletionTokens = resp.Usage.CompletionTokens
		usage.TotalTokens = resp.Usage.TotalTokens
		usage.EstimatedCostUSD = calculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		if usage.EstimatedCostUSD > 0 {
			aiEstimatedCostUSD.With(prometheus.Labels{"model": c.model, "phase": phase}).Add(usage.EstimatedCostUSD)
		}
		c.log.Debug("OpenAI usage",
			zap.String("phase", phase),
			zap.Int("prompt_tokens", usage.PromptTokens),
			zap.Int("completion_tokens", usage.CompletionTokens),
			zap.Float64("estimated_cost_usd", usage.EstimatedCostUSD))
	}

	return generatedText, usage, nil
}

// classifyOpenAIError sorts an API failure into the provider error taxonomy:
// quota exhaustion and content policy rejections are distinguishable from
// plain transport faults.
func classifyOpenAIError(err error) error {
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return models.NewProviderError(models.ProviderErrQuota, err)
		case isPolicyViolation(apiErr):
			return models.NewProviderError(models.ProviderErrPolicy, err)
		}
		return models.NewProviderError(models.ProviderErrTransport, err)
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return models.NewProviderError(models.ProviderErrQuota, err)
	}
	return models.NewProviderError(models.ProviderErrTransport, err)
}

func isPolicyViolation(apiErr *openaigo.APIError) bool {
	if strings.Contains(apiErr.Type, "content_policy") || strings.Contains(apiErr.Type, "content_filter") {
		return true
	}
	if code, ok := apiErr.Code.(string); ok {
		return strings.Contains(code, "content_policy") || strings.Contains(code, "content_filter")
	}
	return false
}

func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 1.0
	}
	return float32(*f64)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// --- Ollama client ---

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func newOllamaClient(cfg *config.Config, log *zap.Logger) (AIClient, error) {
	httpClient := &http.Client{
		Timeout: cfg.AITimeout,
	}

	// api.NewClient wants the bare host URL, without the /v1 suffix the
	// OpenAI-compatible endpoint uses.
	ollamaBaseURL := strings.TrimSuffix(cfg.AIBaseURL, "/v1")
	ollamaBaseURL = strings.TrimSuffix(ollamaBaseURL, "/")

	parsedURL, err := url.Parse(ollamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Ollama base URL '%s': %w", ollamaBaseURL, err)
	}

	client := api.NewClient(parsedURL, httpClient)

	log.Info("Ollama client created",
		zap.String("base_url", ollamaBaseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout))

	return &ollamaClient{
		client:  client,
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
		log:     log,
	}, nil
}

func (c *ollamaClient) Generate(ctx context.Context, phase string, req Request) (string, UsageInfo, error) {
	usage := UsageInfo{EstimatedCostUSD: 0} // local inference, no cost

	if strings.TrimSpace(req.SystemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "phase": phase}).Inc()
		return "", usage, fmt.Errorf("%w: system prompt is empty", ErrGenerationFailed)
	}

	messages := []api.Message{
		{Role: "system", Content: req.SystemPrompt},
	}
	if req.UserPrompt != "" {
		messages = append(messages, api.Message{Role: "user", Content: req.UserPrompt})
	}

	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false),
		Options: map[string]interface{}{
			"temperature": req.Params.Temperature,
			"top_p":       req.Params.TopP,
			"num_predict": intVal(req.Params.MaxTokens),
		},
	}
	if req.Schema != nil {
		format, err := json.Marshal(req.Schema)
		if err != nil {
			return "", usage, fmt.Errorf("failed to serialize response schema: %w", err)
		}
		chatReq.Format = format
	}
	if req.Params.ThinkBudget != nil {
		c.log.Debug("think budget is not supported by the Ollama API, ignoring",
			zap.Int("think_budget", *req.Params.ThinkBudget))
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	c.log.Debug("sending request to Ollama",
		zap.String("model", c.model),
		zap.String("phase", phase),
		zap.Int("system_prompt_bytes", len(req.SystemPrompt)),
		zap.Int("user_prompt_bytes", len(req.UserPrompt)))

	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, chatReq, func(r api.ChatResponse) error {
		resp = r // non-streaming call still delivers through the callback
		return nil
	})
	duration := time.Since(startTime)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.log.Error("Ollama request timed out",
				zap.String("phase", phase),
				zap.Duration("timeout", c.timeout),
				zap.Duration("duration", duration),
				zap.Error(err))
		} else {
			c.log.Error("Ollama request failed",
				zap.String("phase", phase),
				zap.Duration("duration", duration),
				zap.Error(err))
		}
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "phase": phase}).Inc()
		return "", usage, models.NewProviderError(models.ProviderErrTransport,
			fmt.Errorf("%w: %v", ErrGenerationFailed, err))
	}

	if resp.Message.Content == "" {
		c.log.Error("Ollama returned an empty response",
			zap.String("phase", phase),
			zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response", "phase": phase}).Inc()
		return "", usage, models.NewProviderError(models.ProviderErrTransport,
			fmt.Errorf("%w: empty response received", ErrGenerationFailed))
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success", "phase": phase}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "phase": phase}).Observe(duration.Seconds())

	generatedText := resp.Message.Content
	c.log.Debug("Ollama response received",
		zap.String("phase", phase),
		zap.Duration("duration", duration),
		zap.Int("response_chars", len(generatedText)))

	usage.PromptTokens = resp.PromptEvalCount
	usage.CompletionTokens = resp.EvalCount
	usage.TotalTokens = resp.PromptEvalCount + resp.EvalCount
	if usage.TotalTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model, "phase": phase}).Observe(float64(usage.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model, "phase": phase}).Observe(float64(usage.CompletionTokens))
	}

	return generatedText, usage, nil
}

// --- Factory ---

// NewAIClient builds the provider implementation selected by configuration.
func NewAIClient(cfg *config.Config, log *zap.Logger) (AIClient, error) {
	switch strings.ToLower(cfg.AIClientType) {
	case "openai":
		openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
		openaiConfig.BaseURL = cfg.AIBaseURL
		openaiConfig.HTTPClient = &http.Client{
			Timeout: cfg.AITimeout,
		}
		client := openaigo.NewClientWithConfig(openaiConfig)
		log.Info("OpenAI client created",
			zap.String("base_url", cfg.AIBaseURL),
			zap.String("model", cfg.AIModel),
			zap.Duration("timeout", cfg.AITimeout))
		return &openAIClient{
			client: client,
			model:  cfg.AIModel,
			log:    log,
		}, nil
	case "ollama":
		return newOllamaClient(cfg, log)
	default:
		return nil, fmt.Errorf("unknown AI client type: '%s'", cfg.AIClientType)
	}
}
