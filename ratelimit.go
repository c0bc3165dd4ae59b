package tlrouter

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces outbound calls to one vendor with a token bucket.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// reserve takes a token, or reports how long until one is available.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}

	deficit := 1 - r.tokens
	return time.Duration(deficit / r.refillRate * float64(time.Second)), false
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedFactory wraps an AdapterFactory so that every adapter it returns
// shares one limiter per provider. Waiting for a token happens before the
// request is sent and never counts as an attempt.
type RateLimitedFactory struct {
	factory  AdapterFactory
	config   RateLimitConfig
	mu       sync.Mutex
	limiters map[ProviderID]*RateLimiter
}

// NewRateLimitedFactory creates a rate-limited factory.
func NewRateLimitedFactory(factory AdapterFactory, cfg RateLimitConfig) *RateLimitedFactory {
	return &RateLimitedFactory{
		factory:  factory,
		config:   cfg,
		limiters: make(map[ProviderID]*RateLimiter),
	}
}

// New implements AdapterFactory.
func (f *RateLimitedFactory) New(cfg ProviderConfig) (Adapter, error) {
	adapter, err := f.factory.New(cfg)
	if err != nil {
		return nil, err
	}
	return &rateLimitedAdapter{adapter: adapter, limiter: f.Limiter(cfg.Provider)}, nil
}

// Limiter returns the limiter shared by all adapters for provider.
func (f *RateLimitedFactory) Limiter(provider ProviderID) *RateLimiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[provider]
	if !ok {
		l = NewRateLimiter(f.config)
		f.limiters[provider] = l
	}
	return l
}

type rateLimitedAdapter struct {
	adapter Adapter
	limiter *RateLimiter
}

func (a *rateLimitedAdapter) Model() string {
	return a.adapter.Model()
}

func (a *rateLimitedAdapter) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return a.adapter.TranslateText(ctx, text, sourceLang, targetLang)
}

func (a *rateLimitedAdapter) Analyze(ctx context.Context, req AnalysisRequest) (*TranslationResult, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return a.adapter.Analyze(ctx, req)
}
