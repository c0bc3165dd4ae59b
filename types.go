package tlrouter

import (
	"context"
	"fmt"
	"strings"
)

// ProviderID identifies a supported AI vendor.
type ProviderID string

const (
	// ProviderOpenAI is OpenAI's chat completions API.
	ProviderOpenAI ProviderID = "openai"
	// ProviderGroq is Groq's OpenAI-compatible API.
	ProviderGroq ProviderID = "groq"
	// ProviderCerebras is Cerebras' OpenAI-compatible API.
	ProviderCerebras ProviderID = "cerebras"
	// ProviderXAI is xAI's (Grok) OpenAI-compatible API.
	ProviderXAI ProviderID = "xai"
	// ProviderGemini is Google's generateContent API.
	ProviderGemini ProviderID = "gemini"
	// ProviderMock is an offline adapter for tests and dry runs.
	ProviderMock ProviderID = "mock"
)

// KnownProviders lists the vendors a configuration may name. The mock
// adapter is only reachable through dry runs and tests.
var KnownProviders = map[ProviderID]bool{
	ProviderOpenAI:   true,
	ProviderGroq:     true,
	ProviderCerebras: true,
	ProviderXAI:      true,
	ProviderGemini:   true,
}

// TaskKind selects between a plain translation and a linguistic analysis.
type TaskKind string

const (
	// TaskTranslate produces a translation only.
	TaskTranslate TaskKind = "translate"
	// TaskAnalyze produces a translation plus one analysis.
	TaskAnalyze TaskKind = "analyze"
)

// AnalysisKind selects which analysis an analyze task performs.
type AnalysisKind string

const (
	// AnalysisVocabulary extracts a word list.
	AnalysisVocabulary AnalysisKind = "vocabulary"
	// AnalysisGrammar explains sentence structure.
	AnalysisGrammar AnalysisKind = "grammar"
	// AnalysisNuance explains tone and cultural context.
	AnalysisNuance AnalysisKind = "nuance"
)

// Valid reports whether k is one of the known analysis kinds.
func (k AnalysisKind) Valid() bool {
	switch k {
	case AnalysisVocabulary, AnalysisGrammar, AnalysisNuance:
		return true
	}
	return false
}

const (
	// DefaultTemperature is used when a config leaves Temperature unset.
	DefaultTemperature = 0.7
	// MaxTemperature is the upper bound accepted by every vendor.
	MaxTemperature = 2.0
	// MaxRoutingSteps bounds the length of a RoutingPlan.
	MaxRoutingSteps = 5
)

// TranslationRequest is a caller-issued request. It is never mutated by the router.
type TranslationRequest struct {
	Text            string       // Source text, non-empty after trimming
	SourceLang      string       // Source language code (e.g. "en", "ja_JP")
	TargetLang      string       // Target language code
	Task            TaskKind     // translate (default) or analyze
	Analysis        AnalysisKind // Only used when Task == TaskAnalyze
	ExplanationLang string       // Language for analysis explanations (default: SourceLang)
}

// Validate checks the request before any vendor is contacted.
func (r TranslationRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &ValidationError{Field: "text", Message: "must not be empty"}
	}
	switch r.Task {
	case "", TaskTranslate:
	case TaskAnalyze:
		if !r.Analysis.Valid() {
			return &ValidationError{Field: "analysis", Message: fmt.Sprintf("unknown analysis kind %q", r.Analysis)}
		}
	default:
		return &ValidationError{Field: "task", Message: fmt.Sprintf("unknown task kind %q", r.Task)}
	}
	return nil
}

// AnalysisRequest is the adapter-level input for an analysis call.
type AnalysisRequest struct {
	SourceText      string
	TranslatedText  string
	SourceLang      string
	TargetLang      string
	ExplanationLang string
	Kind            AnalysisKind
}

// Validate checks the analysis request before any vendor is contacted.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.SourceText) == "" {
		return &ValidationError{Field: "source_text", Message: "must not be empty"}
	}
	if !r.Kind.Valid() {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown analysis kind %q", r.Kind)}
	}
	return nil
}

// ProviderConfig holds everything needed to instantiate one Adapter.
// It is passed by value and never persisted.
type ProviderConfig struct {
	Provider    ProviderID
	APIKey      string   // Secret; print only through RedactKey
	Model       string   // Optional model override
	Endpoint    string   // Optional base URL override
	Temperature *float64 // nil means DefaultTemperature
}

// EffectiveTemperature returns the configured temperature or the default.
func (c ProviderConfig) EffectiveTemperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// Validate checks that a provider is named and the temperature is in range.
// Whether the provider is supported is decided by the AdapterFactory.
func (c ProviderConfig) Validate() error {
	if c.Provider == "" {
		return &ValidationError{Field: "provider", Message: "must not be empty"}
	}
	if t := c.EffectiveTemperature(); t < 0 || t > MaxTemperature {
		return &ValidationError{Field: "temperature", Message: fmt.Sprintf("%.2f is outside [0, %.0f]", t, MaxTemperature)}
	}
	return nil
}

// String implements fmt.Stringer without leaking the API key.
func (c ProviderConfig) String() string {
	return fmt.Sprintf("%s(model=%q key=%s)", c.Provider, c.Model, RedactKey(c.APIKey))
}

// Float64 returns a pointer to v, for optional temperature fields.
func Float64(v float64) *float64 {
	return &v
}

// RoutingStep is one (provider, model) entry of a RoutingPlan. The API key is
// looked up from the KeyStore at call time.
type RoutingStep struct {
	Provider    ProviderID `yaml:"provider" json:"provider"`
	Model       string     `yaml:"model,omitempty" json:"model,omitempty"`
	Endpoint    string     `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Temperature *float64   `yaml:"temperature,omitempty" json:"temperature,omitempty"`
}

// Config builds the ProviderConfig for this step with the given key.
func (s RoutingStep) Config(apiKey string) ProviderConfig {
	return ProviderConfig{
		Provider:    s.Provider,
		APIKey:      apiKey,
		Model:       s.Model,
		Endpoint:    s.Endpoint,
		Temperature: s.Temperature,
	}
}

// RoutingPlan is the ordered fallback chain.
type RoutingPlan []RoutingStep

// Depth clamps a requested routing depth to 1..min(MaxRoutingSteps, len(p)).
func (p RoutingPlan) Depth(requested int) int {
	n := len(p)
	if n > MaxRoutingSteps {
		n = MaxRoutingSteps
	}
	if n == 0 {
		return 0
	}
	if requested < 1 {
		return 1
	}
	if requested > n {
		return n
	}
	return requested
}

// Word is one vocabulary entry.
type Word struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Meaning    string `json:"meaning"`
}

// GrammarPoint explains one construction, quoting the source segment it covers.
type GrammarPoint struct {
	Point       string `json:"point"`
	Quote       string `json:"quote"`
	Explanation string `json:"explanation"`
}

// GrammarExplanation is the structured result of a grammar analysis.
type GrammarExplanation struct {
	Structure  string         `json:"structure"`
	Points     []GrammarPoint `json:"points,omitempty"`
	Politeness string         `json:"politeness,omitempty"`
}

// NuanceAlternative suggests a replacement phrase for part of the translation.
type NuanceAlternative struct {
	Phrase   string `json:"phrase"`
	Original string `json:"original"`
	Reason   string `json:"reason"`
}

// NuanceExplanation is the structured result of a nuance analysis.
type NuanceExplanation struct {
	Tone            string              `json:"tone"`
	CulturalContext string              `json:"culturalContext,omitempty"`
	Alternatives    []NuanceAlternative `json:"alternatives,omitempty"`
}

// TranslationResult is returned fresh for every call. Any subset of fields may
// be populated depending on the task.
type TranslationResult struct {
	Translation string              `json:"translation,omitempty"`
	Words       []Word              `json:"words,omitempty"`
	Grammar     *GrammarExplanation `json:"grammar,omitempty"`
	Nuance      *NuanceExplanation  `json:"nuance,omitempty"`
}

// IsEmpty reports whether no field carries content.
func (r *TranslationResult) IsEmpty() bool {
	return r == nil || (r.Translation == "" && len(r.Words) == 0 && r.Grammar == nil && r.Nuance == nil)
}

// merge copies the analysis parts of other into r.
func (r *TranslationResult) merge(other *TranslationResult) {
	if other == nil {
		return
	}
	if r.Translation == "" {
		r.Translation = other.Translation
	}
	if len(other.Words) > 0 {
		r.Words = other.Words
	}
	if other.Grammar != nil {
		r.Grammar = other.Grammar
	}
	if other.Nuance != nil {
		r.Nuance = other.Nuance
	}
}

// RouteResult reports which step of the plan produced the result.
type RouteResult struct {
	Result   TranslationResult `json:"result"`
	Provider ProviderID        `json:"provider"`
	Model    string            `json:"model"`
	Attempts int               `json:"attempts"`
}

// Adapter is implemented once per vendor wire protocol.
//
// Each call performs exactly one outbound request and must honor ctx.
// Non-2xx responses are returned as *ProviderError.
type Adapter interface {
	// Model returns the model the adapter sends requests to.
	Model() string
	TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	Analyze(ctx context.Context, req AnalysisRequest) (*TranslationResult, error)
}

// AdapterFactory instantiates an Adapter for a per-call configuration.
type AdapterFactory interface {
	New(cfg ProviderConfig) (Adapter, error)
}

// KeyStore is the read-only source of per-provider API keys.
// An unconfigured provider returns "" and a nil error.
type KeyStore interface {
	APIKey(ctx context.Context, provider ProviderID) (string, error)
}

// StaticKeys is a KeyStore backed by a fixed map.
type StaticKeys map[ProviderID]string

// APIKey implements KeyStore.
func (k StaticKeys) APIKey(_ context.Context, provider ProviderID) (string, error) {
	return strings.TrimSpace(k[provider]), nil
}

// RedactKey renders an API key safe for logs: the last four characters only.
func RedactKey(key string) string {
	if key == "" {
		return "<none>"
	}
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
