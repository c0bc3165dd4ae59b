// Package provider implements tlrouter.Adapter for each supported vendor and
// a Registry that instantiates them from a tlrouter.ProviderConfig.
//
// Two wire families are supported: the OpenAI-compatible chat completions API
// (OpenAI, Groq, Cerebras, xAI) and Google's generateContent API (Gemini).
package provider

import (
	"net/http"
	"strings"

	"github.com/ZaguanLabs/tlrouter"
)

// Preset holds the defaults for one vendor.
type Preset struct {
	BaseURL string
	Model   string
}

// Presets lists the built-in vendors with their default endpoint and model.
var Presets = map[tlrouter.ProviderID]Preset{
	tlrouter.ProviderOpenAI:   {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
	tlrouter.ProviderGroq:     {BaseURL: "https://api.groq.com/openai/v1", Model: "llama-3.3-70b-versatile"},
	tlrouter.ProviderCerebras: {BaseURL: "https://api.cerebras.ai/v1", Model: "llama-3.3-70b"},
	tlrouter.ProviderXAI:      {BaseURL: "https://api.x.ai/v1", Model: "grok-3-mini"},
	tlrouter.ProviderGemini:   {BaseURL: "https://generativelanguage.googleapis.com", Model: "gemini-2.0-flash"},
}

// resolve fills the model and endpoint of cfg from the vendor preset.
func resolve(cfg tlrouter.ProviderConfig) (model, baseURL string) {
	preset := Presets[cfg.Provider]

	model = cfg.Model
	if model == "" {
		model = preset.Model
	}
	baseURL = cfg.Endpoint
	if baseURL == "" {
		baseURL = preset.BaseURL
	}
	return model, strings.TrimRight(baseURL, "/")
}

// userAgentDoer stamps every outgoing request with the library User-Agent.
type userAgentDoer struct {
	client *http.Client
}

func (d userAgentDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", tlrouter.UserAgent())
	return d.client.Do(req)
}
