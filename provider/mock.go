package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZaguanLabs/tlrouter"
)

// MockAdapter is an offline adapter for tests and dry runs.
type MockAdapter struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned by every call when set

	mu          sync.Mutex
	callCount   int
	lastRequest *tlrouter.AnalysisRequest
}

// NewMockAdapter creates a new mock adapter with default translations.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Good morning":         "Buenos días",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Model implements tlrouter.Adapter.
func (m *MockAdapter) Model() string {
	return "mock"
}

// TranslateText returns the canned translation, or the text in brackets.
func (m *MockAdapter) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}

	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", text), nil
}

// Analyze returns a small fixed analysis of the requested kind.
func (m *MockAdapter) Analyze(ctx context.Context, req tlrouter.AnalysisRequest) (*tlrouter.TranslationResult, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	result := &tlrouter.TranslationResult{}
	switch req.Kind {
	case tlrouter.AnalysisVocabulary:
		result.Words = []tlrouter.Word{{
			Original:   req.SourceText,
			Translated: req.TranslatedText,
			Meaning:    "mock meaning",
		}}
	case tlrouter.AnalysisGrammar:
		result.Grammar = &tlrouter.GrammarExplanation{
			Structure: "mock structure",
			Points: []tlrouter.GrammarPoint{{
				Point:       "mock point",
				Quote:       req.SourceText,
				Explanation: "mock explanation",
			}},
		}
	case tlrouter.AnalysisNuance:
		result.Nuance = &tlrouter.NuanceExplanation{
			Tone:            "neutral",
			CulturalContext: "mock context",
		}
	}
	return result, nil
}

// CallCount returns the number of calls received.
func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the last analysis request received.
func (m *MockAdapter) LastRequest() *tlrouter.AnalysisRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockAdapter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

// Verify MockAdapter implements Adapter
var _ tlrouter.Adapter = (*MockAdapter)(nil)
