package provider

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/ZaguanLabs/tlrouter"
)

// Factory builds an adapter from a validated configuration.
type Factory func(cfg tlrouter.ProviderConfig, client *http.Client) (tlrouter.Adapter, error)

// Registry maps provider ids to adapter factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[tlrouter.ProviderID]Factory
	client    *http.Client
}

// Option is a functional option for configuring the Registry.
type Option func(*Registry)

// WithHTTPClient sets the HTTP client every adapter sends requests through.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registry) {
		r.client = client
	}
}

// WithMock registers m under tlrouter.ProviderMock.
func WithMock(m *MockAdapter) Option {
	return func(r *Registry) {
		r.factories[tlrouter.ProviderMock] = func(tlrouter.ProviderConfig, *http.Client) (tlrouter.Adapter, error) {
			return m, nil
		}
	}
}

// NewRegistry creates a registry with every built-in vendor registered.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		factories: map[tlrouter.ProviderID]Factory{
			tlrouter.ProviderOpenAI:   newOpenAICompatible,
			tlrouter.ProviderGroq:     newOpenAICompatible,
			tlrouter.ProviderCerebras: newOpenAICompatible,
			tlrouter.ProviderXAI:      newOpenAICompatible,
			tlrouter.ProviderGemini:   newGemini,
		},
		client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds or replaces the factory for id.
func (r *Registry) Register(id tlrouter.ProviderID, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
}

// New implements tlrouter.AdapterFactory.
func (r *Registry) New(cfg tlrouter.ProviderConfig) (tlrouter.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	factory, ok := r.factories[cfg.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, &tlrouter.ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("unsupported provider %q", cfg.Provider),
		}
	}

	return factory(cfg, r.client)
}

// Providers returns the registered provider ids, sorted.
func (r *Registry) Providers() []tlrouter.ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]tlrouter.ProviderID, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func newOpenAICompatible(cfg tlrouter.ProviderConfig, client *http.Client) (tlrouter.Adapter, error) {
	return NewOpenAIAdapter(OpenAIConfig{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.Endpoint,
		Temperature: cfg.EffectiveTemperature(),
		HTTPClient:  client,
	}), nil
}

func newGemini(cfg tlrouter.ProviderConfig, client *http.Client) (tlrouter.Adapter, error) {
	return NewGeminiAdapter(GeminiConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.Endpoint,
		Temperature: cfg.EffectiveTemperature(),
		HTTPClient:  client,
	}), nil
}

// Verify Registry implements AdapterFactory
var _ tlrouter.AdapterFactory = (*Registry)(nil)
