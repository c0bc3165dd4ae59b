package tlrouter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ZaguanLabs/tlrouter/metrics"
)

// Router executes routing plans against vendor adapters. It holds no mutable
// state between calls, so one Router may serve concurrent operations.
type Router struct {
	factory          AdapterFactory
	keys             KeyStore
	logger           *slog.Logger
	metrics          *metrics.Collector
	translateTimeout time.Duration
	analyzeTimeout   time.Duration
}

// RouterOption is a functional option for configuring the Router.
type RouterOption func(*Router)

// WithKeyStore sets the source of per-provider API keys used by routed calls.
func WithKeyStore(keys KeyStore) RouterOption {
	return func(r *Router) {
		r.keys = keys
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(c *metrics.Collector) RouterOption {
	return func(r *Router) {
		r.metrics = c
	}
}

// WithTranslateTimeout sets the per-call timeout for translation calls.
func WithTranslateTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		r.translateTimeout = d
	}
}

// WithAnalyzeTimeout sets the per-call timeout for analysis calls.
func WithAnalyzeTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		r.analyzeTimeout = d
	}
}

// NewRouter creates a Router that instantiates adapters through factory.
func NewRouter(factory AdapterFactory, opts ...RouterOption) *Router {
	r := &Router{
		factory:          factory,
		keys:             StaticKeys{},
		logger:           slog.New(slog.DiscardHandler),
		translateTimeout: DefaultTranslateTimeout,
		analyzeTimeout:   DefaultAnalyzeTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Translate runs req against a single provider configuration. For an analyze
// task it issues the translation and then the analysis, sharing ctx.
func (r *Router) Translate(ctx context.Context, req TranslationRequest, cfg ProviderConfig) (*TranslationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoUsableConfig
	}

	adapter, err := r.factory.New(cfg)
	if err != nil {
		return nil, err
	}

	logger := r.logger.With("operation_id", uuid.NewString(), "operation", "translate")
	return r.runRequest(ctx, logger, cfg.Provider, adapter, req)
}

// RouteTranslate runs req through plan, trying at most depth steps, and
// returns the first success along with the provider and model that produced it.
func (r *Router) RouteTranslate(ctx context.Context, req TranslationRequest, plan RoutingPlan, depth int) (*RouteResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return r.route(ctx, "route_translate", plan, depth, func(ctx context.Context, logger *slog.Logger, provider ProviderID, adapter Adapter) (*TranslationResult, error) {
		return r.runRequest(ctx, logger, provider, adapter, req)
	})
}

// RouteAnalyze runs an analysis through plan, trying at most depth steps.
func (r *Router) RouteAnalyze(ctx context.Context, req AnalysisRequest, plan RoutingPlan, depth int) (*RouteResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ExplanationLang == "" {
		req.ExplanationLang = explanationLang(req.SourceLang)
	}

	return r.route(ctx, "route_analyze", plan, depth, func(ctx context.Context, logger *slog.Logger, provider ProviderID, adapter Adapter) (*TranslationResult, error) {
		result, err := r.attempt(ctx, logger, provider, adapter, r.analyzeTimeout, func(ctx context.Context) (*TranslationResult, error) {
			return adapter.Analyze(ctx, req)
		})
		if err != nil {
			return nil, err
		}
		if result.Translation == "" {
			result.Translation = req.TranslatedText
		}
		return result, nil
	})
}

// stepCall performs the operation against one adapter.
type stepCall func(ctx context.Context, logger *slog.Logger, provider ProviderID, adapter Adapter) (*TranslationResult, error)

// eligibleStep is a plan step that has an API key.
type eligibleStep struct {
	index int
	cfg   ProviderConfig
}

func (r *Router) route(ctx context.Context, op string, plan RoutingPlan, depth int, call stepCall) (*RouteResult, error) {
	logger := r.logger.With("operation_id", uuid.NewString(), "operation", op)

	steps, err := r.eligibleSteps(ctx, logger, plan, depth)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, ErrNoUsableConfig
	}

	for i, step := range steps {
		if ctx.Err() != nil {
			return nil, aborted(ctx)
		}

		adapter, err := r.factory.New(step.cfg)
		if err != nil {
			return nil, err
		}

		result, err := call(ctx, logger, step.cfg.Provider, adapter)
		if err == nil {
			return &RouteResult{
				Result:   *result,
				Provider: step.cfg.Provider,
				Model:    adapter.Model(),
				Attempts: i + 1,
			}, nil
		}

		last := i == len(steps)-1
		if last || IsAborted(err) || !IsCongestion(err) {
			return nil, err
		}

		var providerErr *ProviderError
		errors.As(err, &providerErr)
		r.metrics.ObserveFallback(string(step.cfg.Provider), providerErr.StatusCode)
		logger.Warn("provider congested, falling back",
			"step", step.index,
			"provider", step.cfg.Provider,
			"model", adapter.Model(),
			"status", providerErr.StatusCode,
			"next_provider", steps[i+1].cfg.Provider,
		)
	}

	// Unreachable: the last step always returns.
	return nil, ErrNoUsableConfig
}

// eligibleSteps resolves keys for the first depth steps and drops the
// unconfigured ones. Dropped steps are not failures.
func (r *Router) eligibleSteps(ctx context.Context, logger *slog.Logger, plan RoutingPlan, depth int) ([]eligibleStep, error) {
	depth = plan.Depth(depth)
	steps := make([]eligibleStep, 0, depth)

	for i, step := range plan[:depth] {
		if ctx.Err() != nil {
			return nil, aborted(ctx)
		}

		key, err := r.keys.APIKey(ctx, step.Provider)
		if err != nil {
			if ctx.Err() != nil {
				return nil, aborted(ctx)
			}
			return nil, &KeyStoreError{Provider: step.Provider, Cause: err}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			logger.Debug("skipping step without API key", "step", i, "provider", step.Provider)
			continue
		}

		logger.Debug("step eligible", "step", i, "provider", step.Provider, "model", step.Model, "key", RedactKey(key))
		steps = append(steps, eligibleStep{index: i, cfg: step.Config(key)})
	}

	return steps, nil
}

// runRequest performs the translation and, for analyze tasks, the follow-up analysis.
func (r *Router) runRequest(ctx context.Context, logger *slog.Logger, provider ProviderID, adapter Adapter, req TranslationRequest) (*TranslationResult, error) {
	result, err := r.attempt(ctx, logger, provider, adapter, r.translateTimeout, func(ctx context.Context) (*TranslationResult, error) {
		text, err := adapter.TranslateText(ctx, req.Text, req.SourceLang, req.TargetLang)
		if err != nil {
			return nil, err
		}
		return &TranslationResult{Translation: text}, nil
	})
	if err != nil {
		return nil, err
	}

	if req.Task != TaskAnalyze {
		return result, nil
	}

	explain := req.ExplanationLang
	if explain == "" {
		explain = explanationLang(req.SourceLang)
	}

	analysis, err := r.attempt(ctx, logger, provider, adapter, r.analyzeTimeout, func(ctx context.Context) (*TranslationResult, error) {
		return adapter.Analyze(ctx, AnalysisRequest{
			SourceText:      req.Text,
			TranslatedText:  result.Translation,
			SourceLang:      req.SourceLang,
			TargetLang:      req.TargetLang,
			ExplanationLang: explain,
			Kind:            req.Analysis,
		})
	})
	if err != nil {
		return nil, err
	}

	result.merge(analysis)
	return result, nil
}

// attempt performs one adapter call under the per-call timeout and records it.
func (r *Router) attempt(ctx context.Context, logger *slog.Logger, provider ProviderID, adapter Adapter, timeout time.Duration, fn func(ctx context.Context) (*TranslationResult, error)) (*TranslationResult, error) {
	start := time.Now()
	result, err := invoke(ctx, provider, timeout, fn)
	elapsed := time.Since(start)

	r.metrics.ObserveStep(string(provider), adapter.Model(), outcome(err), elapsed)
	if err != nil {
		logger.Debug("adapter call failed", "provider", provider, "model", adapter.Model(), "elapsed", elapsed, "error", err)
		return nil, err
	}
	if result == nil {
		result = &TranslationResult{}
	}
	logger.Debug("adapter call succeeded", "provider", provider, "model", adapter.Model(), "elapsed", elapsed)
	return result, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case IsAborted(err):
		return metrics.OutcomeAborted
	case IsCongestion(err):
		return metrics.OutcomeCongested
	case IsAuth(err):
		return metrics.OutcomeAuth
	case IsTimeout(err):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}

// explanationLang picks the explanation language when the caller left it unset.
func explanationLang(sourceLang string) string {
	if sourceLang == "" || sourceLang == "auto" {
		return "en"
	}
	return sourceLang
}
