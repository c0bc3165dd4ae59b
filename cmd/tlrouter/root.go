package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/tlrouter"
	"github.com/ZaguanLabs/tlrouter/config"
	"github.com/ZaguanLabs/tlrouter/metrics"
	"github.com/ZaguanLabs/tlrouter/provider"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tlrouter",
		Short:         tlrouter.Description,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: $TLROUTER_CONFIG or ./tlrouter.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	root.AddCommand(
		newTranslateCmd(a),
		newAnalyzeCmd(a),
		newServeCmd(a),
		newProvidersCmd(a),
		newKeysCmd(a),
		newVersionCmd(a),
	)

	return root
}

// stepFlags select a single step instead of the configured plan.
type stepFlags struct {
	provider string
	model    string
	endpoint string
	depth    int
	dryRun   bool
}

func (f *stepFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Use a single provider instead of the configured plan")
	cmd.Flags().StringVar(&f.model, "model", "", "Model override (with --provider)")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Base URL override (with --provider)")
	cmd.Flags().IntVar(&f.depth, "depth", 0, "Routing depth (default: from config)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Route to the offline mock provider")
}

// runtime is everything a command needs to route requests.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *provider.Registry
	router   *tlrouter.Router
	plan     tlrouter.RoutingPlan
	depth    int
	keys     tlrouter.KeyStore
	limits   *tlrouter.RateLimitedFactory // nil when rate limiting is off
	close    func() error
}

// setup loads the configuration and wires the router. The caller must call
// rt.close when done.
func (a *app) setup(ctx context.Context, flags *stepFlags, m *metrics.Collector) (*runtime, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger := cfg.Log.NewLogger(a.stderr)

	opts := append([]provider.Option{}, a.registryOptions...)
	if flags != nil && flags.dryRun {
		opts = append(opts, provider.WithMock(provider.NewMockAdapter()))
	}
	registry := provider.NewRegistry(opts...)

	keys, closeFn, err := cfg.Keys.KeyStore(ctx)
	if err != nil {
		return nil, err
	}

	plan, depth := cfg.Plan, cfg.Depth
	if flags != nil {
		switch {
		case flags.dryRun:
			plan, depth = tlrouter.RoutingPlan{{Provider: tlrouter.ProviderMock}}, 1
			keys = tlrouter.StaticKeys{tlrouter.ProviderMock: "dry-run"}
		case flags.provider != "":
			plan = tlrouter.RoutingPlan{{
				Provider: tlrouter.ProviderID(strings.ToLower(flags.provider)),
				Model:    flags.model,
				Endpoint: flags.endpoint,
			}}
			depth = 1
		}
		if flags.depth > 0 {
			depth = flags.depth
		}
	}

	var (
		factory tlrouter.AdapterFactory = registry
		limits  *tlrouter.RateLimitedFactory
	)
	if cfg.RateLimit.Enabled() {
		limits = tlrouter.NewRateLimitedFactory(registry, tlrouter.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			BurstSize:         cfg.RateLimit.Burst,
		})
		factory = limits
	}

	router := tlrouter.NewRouter(factory,
		tlrouter.WithKeyStore(keys),
		tlrouter.WithLogger(logger),
		tlrouter.WithMetrics(m),
		tlrouter.WithTranslateTimeout(cfg.Timeouts.Translate),
		tlrouter.WithAnalyzeTimeout(cfg.Timeouts.Analyze),
	)

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		router:   router,
		plan:     plan,
		depth:    depth,
		keys:     keys,
		limits:   limits,
		close:    closeFn,
	}, nil
}

// readText joins args, or reads stdin when args are empty or "-".
func readText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}
