package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/tlrouter"
)

// GeminiAdapter implements tlrouter.Adapter for Google's generateContent API.
type GeminiAdapter struct {
	client      *resty.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
}

// GeminiConfig holds configuration for the Gemini adapter.
type GeminiConfig struct {
	APIKey      string       // Sent as the "key" query parameter
	Model       string       // Model to use (default: the gemini preset)
	BaseURL     string       // Custom base URL (default: the gemini preset)
	Temperature float64      // Sampling temperature, sent verbatim
	HTTPClient  *http.Client // Transport (default: http.DefaultClient)
}

// NewGeminiAdapter creates a Gemini adapter.
func NewGeminiAdapter(cfg GeminiConfig) *GeminiAdapter {
	model, baseURL := resolve(tlrouter.ProviderConfig{
		Provider: tlrouter.ProviderGemini,
		Model:    cfg.Model,
		Endpoint: cfg.BaseURL,
	})

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client := resty.NewWithClient(httpClient).
		SetHeader("User-Agent", tlrouter.UserAgent()).
		SetHeader("Content-Type", "application/json")

	return &GeminiAdapter{
		client:      client,
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: cfg.Temperature,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Model implements tlrouter.Adapter.
func (a *GeminiAdapter) Model() string {
	return a.model
}

// TranslateText implements tlrouter.Adapter.
func (a *GeminiAdapter) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	content, err := a.generate(ctx, translationPrompt(text, sourceLang, targetLang))
	if err != nil {
		return "", err
	}
	return tlrouter.NormalizeTranslation(content), nil
}

// Analyze implements tlrouter.Adapter.
func (a *GeminiAdapter) Analyze(ctx context.Context, req tlrouter.AnalysisRequest) (*tlrouter.TranslationResult, error) {
	content, err := a.generate(ctx, analysisPrompt(req))
	if err != nil {
		return nil, err
	}
	return tlrouter.NormalizeAnalysis(content), nil
}

func (a *GeminiAdapter) generate(ctx context.Context, p prompt) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: p.User}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      a.temperature,
			ResponseMimeType: "application/json",
		},
	}
	if p.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: p.System}}}
	}

	var result geminiResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("key", a.apiKey).
		SetBody(body).
		SetResult(&result).
		Post(a.endpoint())
	if err != nil {
		return "", transportError(tlrouter.ProviderGemini, err)
	}

	if resp.IsError() {
		providerErr := statusError(tlrouter.ProviderGemini, resp.StatusCode(), resp.Body())
		// Gemini answers an invalid key with 400 API_KEY_INVALID.
		if resp.StatusCode() == http.StatusBadRequest && strings.Contains(string(resp.Body()), "API_KEY_INVALID") {
			providerErr.StatusCode = http.StatusUnauthorized
		}
		return "", providerErr
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		msg := "empty response: no candidates returned"
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			msg = "empty response: prompt blocked (" + result.PromptFeedback.BlockReason + ")"
		}
		return "", &tlrouter.ProviderError{
			Provider: tlrouter.ProviderGemini,
			Message:  msg,
		}
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

func (a *GeminiAdapter) endpoint() string {
	return a.baseURL + "/v1beta/models/" + url.PathEscape(a.model) + ":generateContent"
}

// Verify GeminiAdapter implements Adapter
var _ tlrouter.Adapter = (*GeminiAdapter)(nil)
