package provider

import (
	"context"
	"math"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/tlrouter"
)

// OpenAIAdapter implements tlrouter.Adapter for the OpenAI-compatible chat
// completions API shared by OpenAI, Groq, Cerebras and xAI.
type OpenAIAdapter struct {
	provider    tlrouter.ProviderID
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for an OpenAI-compatible adapter.
type OpenAIConfig struct {
	Provider    tlrouter.ProviderID // Vendor id (default: openai)
	APIKey      string              // Bearer token
	Model       string              // Model to use (default: the vendor preset)
	BaseURL     string              // Custom base URL (default: the vendor preset)
	Temperature float64             // Sampling temperature, 0 included
	HTTPClient  *http.Client        // Transport (default: http.DefaultClient)
}

// NewOpenAIAdapter creates an adapter for an OpenAI-compatible vendor.
func NewOpenAIAdapter(cfg OpenAIConfig) *OpenAIAdapter {
	if cfg.Provider == "" {
		cfg.Provider = tlrouter.ProviderOpenAI
	}
	model, baseURL := resolve(tlrouter.ProviderConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Endpoint: cfg.BaseURL,
	})

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = baseURL
	config.HTTPClient = userAgentDoer{client: httpClient}

	return &OpenAIAdapter{
		provider:    cfg.Provider,
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: wireTemperature(cfg.Temperature),
	}
}

// wireTemperature converts t for go-openai, whose omitempty tag would drop an
// exact 0 and let the vendor default apply.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// Model implements tlrouter.Adapter.
func (a *OpenAIAdapter) Model() string {
	return a.model
}

// TranslateText implements tlrouter.Adapter.
func (a *OpenAIAdapter) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	content, err := a.complete(ctx, translationPrompt(text, sourceLang, targetLang))
	if err != nil {
		return "", err
	}
	return tlrouter.NormalizeTranslation(content), nil
}

// Analyze implements tlrouter.Adapter.
func (a *OpenAIAdapter) Analyze(ctx context.Context, req tlrouter.AnalysisRequest) (*tlrouter.TranslationResult, error) {
	content, err := a.complete(ctx, analysisPrompt(req))
	if err != nil {
		return nil, err
	}
	return tlrouter.NormalizeAnalysis(content), nil
}

func (a *OpenAIAdapter) complete(ctx context.Context, p prompt) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: a.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", openAIError(a.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", &tlrouter.ProviderError{
			Provider: a.provider,
			Message:  "empty response: no choices returned",
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// Verify OpenAIAdapter implements Adapter
var _ tlrouter.Adapter = (*OpenAIAdapter)(nil)
